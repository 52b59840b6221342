// Package state holds the UI-facing state of one device binding.
//
// # Overview
//
// A Store carries two things the presentation layer renders for a binding:
// the Display value (what the user sees, e.g. "dirty" or "running") and the
// connection Health derived from the most recent poll. The controller and
// the reconciler write it; the UI reads snapshots on its own refresh tick.
//
//	Writers:                          Reader:
//	┌──────────────────────────┐     ┌─────────────────┐
//	│ controller.Do(intent)    │     │                 │
//	│   → store.Apply()        │     │                 │
//	│ controller.OnRemote...() │────→│ store.Snapshot()│
//	│   → store.Overwrite()    │(lock)│      ↓          │
//	│ reconciler poll          │     │   render card   │
//	│   → store.RecordPoll()   │     │                 │
//	└──────────────────────────┘     └─────────────────┘
//
// # Concurrency Model
//
// All mutations take the write lock and replace fields of the snapshot as a
// unit; Snapshot takes the read lock and returns a copy. Apply runs its
// transition function under the same lock as the write, so a local intent
// and a remote overwrite can never interleave between the read of the
// current value and the store of the next one.
//
// # Health
//
// Health follows the latest poll only: one failure is enough to go
// Disconnected, one success is enough to come back. ConsecutiveFailures is
// kept for display ("offline for 12 polls") and never gates health.
//
// The initial Health is whatever NewStore is given; sessions seed it from the
// reconciler's initial state, which defaults to Connected.
package state
