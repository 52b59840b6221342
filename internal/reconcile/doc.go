// Package reconcile polls a device signal and reports remote transitions.
//
// A Reconciler owns the last observed remote state. The first successful
// poll only records a baseline; later polls emit a Change when the state
// differs structurally from that snapshot. Every poll outcome, success or
// failure, also updates the connection health. Failed polls never touch the
// snapshot and never escape the poll loop.
package reconcile
