// Package app wires configuration, logging, the device bindings, the
// checklist and the UI together.
//
// Run is the composition root:
//
//	config.Load()         read ~/.config/kitchenhub/config.toml
//	logger.NewFile()      log to a file; the terminal belongs to the UI
//	device.NewClient()    one HTTP client for the ESP32
//	StartSession() x2     lights and timer: store, controller, reconciler
//	checklist.OpenDB()    SQLite shopping list
//	ui.Run()              blocks until the user quits
//
// A Session owns one binding. Its reconciler polls the device and feeds
// remote changes to the controller; the controller applies user intents to
// the shared state store at once and sends the device commands in the
// background. Stopping a session ends polling and waits for commands in
// flight. Restart swaps in a fresh reconciler, so the next successful poll
// is a new baseline.
//
// Only startup failures (config, log file, checklist database) are
// returned from Run. Device trouble is never fatal: it shows up as an
// offline binding.
package app
