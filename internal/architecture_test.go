package internal

import (
	"testing"

	"github.com/kcmvp/archunit"
)

func TestArchitecture(t *testing.T) {
	engine := archunit.Packages("engine", []string{
		".../internal/device",
		".../internal/state",
		".../internal/reconcile",
		".../internal/control",
		".../internal/binding",
	})
	presentation := archunit.Packages("presentation", []string{".../internal/ui/..."})
	collaborators := archunit.Packages("collaborators", []string{".../internal/checklist/..."})

	// The synchronization engine never reaches up into the UI.
	if err := engine.ShouldNotReferLayers(presentation); err != nil {
		t.Errorf("Architecture violation: engine depends on the UI: %v", err)
	}
	// It neither calls nor is called by the checklist.
	if err := engine.ShouldNotReferLayers(collaborators); err != nil {
		t.Errorf("Architecture violation: engine depends on the checklist: %v", err)
	}
	if err := collaborators.ShouldNotReferLayers(engine); err != nil {
		t.Errorf("Architecture violation: checklist depends on the engine: %v", err)
	}
}

func TestEnginePackagesPresent(t *testing.T) {
	for _, name := range []string{"device", "reconcile", "control"} {
		layer := archunit.Packages(name, []string{".../internal/" + name})
		if len(layer.Packages()) == 0 {
			t.Errorf("no %s package found", name)
		}
	}
}
