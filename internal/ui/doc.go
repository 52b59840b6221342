// Package ui provides the kitchenhub terminal dashboard.
//
// The UI is a Bubble Tea program with three views:
//
//   - Dashboard: the dishwasher lights card and the timer card with its
//     countdown. Keys map to binding intents; a binding that is offline has
//     its controls disabled and shows an OFFLINE badge.
//   - Checklist: the shopping list, live through a store subscription.
//   - Logs: the tail of the kitchenhub log file with a level filter.
//
// The model never talks to the device. It reads snapshots from the running
// bindings on every refresh tick and forwards intents, which apply at once
// and dispatch their commands in the background. The countdown advances on
// those ticks and completes the timer when it runs out.
package ui
