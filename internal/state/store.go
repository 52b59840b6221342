package state

import (
	"fmt"
	"sync"
	"time"
)

// Display is the value a binding renders, e.g. "dirty" or "running".
type Display string

// Health is the connection health derived from the most recent poll.
type Health int

const (
	Connected Health = iota
	Disconnected
)

func (h Health) String() string {
	switch h {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("health(%d)", int(h))
	}
}

// Snapshot represents the latest data available to the UI for one binding.
type Snapshot struct {
	Display             Display
	Health              Health
	LastPoll            time.Time
	LastChange          time.Time // last time Display changed, locally or remotely
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the binding's controls should be disabled.
func (s Snapshot) IsOffline() bool {
	return s.Health == Disconnected
}

// Store holds one binding's display state and health. Every mutation
// replaces the snapshot under one lock, so readers never observe a partial
// update, and the two writers of Display (local intents and remote changes)
// are serialized against each other.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// NewStore seeds a store with the initial display value and health.
func NewStore(initial Display, health Health) *Store {
	return &Store{
		snapshot: Snapshot{Display: initial, Health: health},
		now:      time.Now,
	}
}

// Apply runs fn against the current display value and stores its result when
// fn reports ok. The read and the write happen under the same lock.
func (s *Store) Apply(fn func(current Display) (next Display, ok bool)) (from, to Display, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = s.snapshot.Display
	to, ok = fn(from)
	if !ok {
		return from, from, false
	}
	s.setDisplayLocked(to)
	return from, to, true
}

// Overwrite replaces the display value unconditionally and returns the
// previous one.
func (s *Store) Overwrite(d Display) Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot.Display
	s.setDisplayLocked(d)
	return prev
}

func (s *Store) setDisplayLocked(d Display) {
	if s.snapshot.Display != d {
		s.snapshot.LastChange = s.now()
	}
	s.snapshot.Display = d
}

// RecordPoll folds a poll outcome into the health fields. A nil err marks the
// binding connected; anything else marks it disconnected and keeps the
// display value untouched.
func (s *Store) RecordPoll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastPoll = s.now()
	if err != nil {
		s.snapshot.Health = Disconnected
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.Health = Connected
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// ResetHealth sets health to h and clears the failure record. LastPoll and
// the display value are kept.
func (s *Store) ResetHealth(h Health) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Health = h
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
