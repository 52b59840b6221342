// Package binding defines the two physical-to-app bindings of the kitchen
// device: the dishwasher lights and the timer button.
package binding

import (
	"fmt"
	"strings"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/control"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/device"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// Display values.
const (
	Dirty state.Display = "dirty"
	Clean state.Display = "clean"

	Idle     state.Display = "idle"
	Running  state.Display = "running"
	Paused   state.Display = "paused"
	Finished state.Display = "finished"
)

// Intents.
const (
	Toggle   control.Intent = "toggle"
	Start    control.Intent = "start"
	Pause    control.Intent = "pause"
	Reset    control.Intent = "reset"
	Complete control.Intent = "complete"
)

// Signal names on the device.
const (
	LightsSignal = "lights"
	TimerSignal  = "timer"
)

// Binding is everything the engine needs to synchronize one signal.
type Binding struct {
	Name     string
	Endpoint device.Endpoint
	Table    control.Table
	Decode   control.Decoder
	Initial  state.Display
}

// ControllerOptions returns the control options for b.
func (b Binding) ControllerOptions() control.Options {
	return control.Options{
		Signal: b.Name,
		Table:  b.Table,
		Decode: b.Decode,
	}
}

var (
	lightsEndpoint = device.MustEndpoint(LightsSignal,
		map[string][]string{
			"redLight":   {"on", "off"},
			"greenLight": {"on", "off"},
		},
		"redLight/on", "redLight/off", "greenLight/on", "greenLight/off",
	)

	timerEndpoint = device.MustEndpoint(TimerSignal,
		map[string][]string{
			TimerSignal: {"running", "paused", "stopped"},
		},
		"start", "pause", "stop",
	)
)

// Lights returns the dishwasher binding. initial seeds the display and must
// be "dirty" or "clean"; empty means dirty.
func Lights(initial string) (Binding, error) {
	display := Dirty
	switch strings.ToLower(strings.TrimSpace(initial)) {
	case "", string(Dirty):
	case string(Clean):
		display = Clean
	default:
		return Binding{}, fmt.Errorf("invalid lights initial state %q (want dirty or clean)", initial)
	}

	return Binding{
		Name:     LightsSignal,
		Endpoint: lightsEndpoint,
		Table: control.Table{
			Clean: {Toggle: {To: Dirty, Commands: []string{"greenLight/off", "redLight/on"}}},
			Dirty: {Toggle: {To: Clean, Commands: []string{"redLight/off", "greenLight/on"}}},
		},
		Decode:  decodeLights,
		Initial: display,
	}, nil
}

// Timer returns the timer-button binding, starting idle.
func Timer() Binding {
	return Binding{
		Name:     TimerSignal,
		Endpoint: timerEndpoint,
		Table: control.Table{
			Idle: {
				Start: {To: Running, Commands: []string{"start"}},
			},
			Running: {
				Pause:    {To: Paused, Commands: []string{"pause"}},
				Reset:    {To: Idle, Commands: []string{"stop"}},
				Complete: {To: Finished, Commands: []string{"stop"}},
			},
			Paused: {
				Start: {To: Running, Commands: []string{"start"}},
				Reset: {To: Idle, Commands: []string{"stop"}},
			},
			Finished: {
				Start: {To: Idle, Commands: []string{"stop"}},
				Reset: {To: Idle, Commands: []string{"stop"}},
			},
		},
		Decode:  decodeTimer,
		Initial: Idle,
	}
}

// decodeLights maps exactly one light on to a display value. Both on or both
// off are transitional and ignored.
func decodeLights(s device.State) (state.Display, bool) {
	red, green := s["redLight"], s["greenLight"]
	switch {
	case red == "on" && green == "off":
		return Dirty, true
	case green == "on" && red == "off":
		return Clean, true
	}
	return "", false
}

// decodeTimer maps running and paused. "stopped" is ignored: the app decides
// between idle and finished on its own.
func decodeTimer(s device.State) (state.Display, bool) {
	switch s[TimerSignal] {
	case "running":
		return Running, true
	case "paused":
		return Paused, true
	}
	return "", false
}
