package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/binding"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/control"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/reconcile"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// Device is one signal of the device: pollable and commandable.
// *device.Signal implements it.
type Device interface {
	reconcile.Reader
	control.Sender
}

// SessionOptions tune a Session.
type SessionOptions struct {
	PollInterval  time.Duration
	InitialHealth state.Health
	NewTicker     func(time.Duration) reconcile.Ticker
	Logger        *logger.Logger
}

// Session runs one binding: a state store, the controller that applies
// intents to it, and the reconciler that keeps it in line with the device.
type Session struct {
	binding    binding.Binding
	store      *state.Store
	controller *control.Controller
	dev        Device
	opts       SessionOptions
	log        *logger.Logger

	mu         sync.Mutex
	reconciler *reconcile.Reconciler
	stopped    bool
}

// StartSession builds a session for b against dev and starts polling.
func StartSession(ctx context.Context, b binding.Binding, dev Device, opts SessionOptions) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	store := state.NewStore(b.Initial, opts.InitialHealth)
	copts := b.ControllerOptions()
	copts.Logger = log
	controller, err := control.New(store, dev, copts)
	if err != nil {
		return nil, fmt.Errorf("init %s controller: %w", b.Name, err)
	}

	s := &Session{
		binding:    b,
		store:      store,
		controller: controller,
		dev:        dev,
		opts:       opts,
		log:        log.Named("session").With("signal", b.Name),
	}
	s.reconciler = s.newReconciler()
	s.reconciler.Start(ctx)
	s.log.Infow("session started", "interval", opts.PollInterval, "initial", b.Initial)
	return s, nil
}

func (s *Session) newReconciler() *reconcile.Reconciler {
	return reconcile.New(s.dev, reconcile.Options{
		Signal:        s.binding.Name,
		Interval:      s.opts.PollInterval,
		InitialHealth: s.opts.InitialHealth,
		OnChange:      s.controller.OnRemoteChanged,
		OnPoll:        s.store.RecordPoll,
		NewTicker:     s.opts.NewTicker,
		Logger:        s.opts.Logger,
	})
}

// Name returns the binding name.
func (s *Session) Name() string { return s.binding.Name }

// Snapshot returns the binding's current display and health.
func (s *Session) Snapshot() state.Snapshot { return s.store.Snapshot() }

// Controller exposes the intent surface.
func (s *Session) Controller() *control.Controller { return s.controller }

// Do applies an intent; see control.Controller.Do.
func (s *Session) Do(intent control.Intent) bool { return s.controller.Do(intent) }

// Restart replaces the reconciler with a fresh one, so the next poll is a
// new baseline. The display value and pending dispatches are kept; health
// starts over from the configured initial health.
func (s *Session) Restart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.reconciler.Stop()
	s.store.ResetHealth(s.opts.InitialHealth)
	s.reconciler = s.newReconciler()
	s.reconciler.Start(ctx)
	s.log.Infow("session restarted")
}

// Stop ends polling and waits for in-flight commands to finish or time
// out. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	r := s.reconciler
	s.mu.Unlock()

	r.Stop()
	s.controller.Wait()
	s.log.Infow("session stopped")
}
