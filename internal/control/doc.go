// Package control applies user intents to a binding's display state.
//
// Intents are resolved against a transition table. A legal intent updates
// the display immediately and dispatches its device commands on a
// background goroutine; dispatch failures are logged and never surface to
// the caller. Remote changes reported by the reconciler overwrite the
// display, so the device is authoritative once it has been observed.
package control
