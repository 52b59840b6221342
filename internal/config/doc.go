// Package config loads the kitchenhub client configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path
//  2. ~/.config/kitchenhub/config.toml
//  3. Built-in defaults when the file does not exist
//
// Keys that are missing or blank keep their defaults, so a file only needs
// the values it changes.
//
// # TOML Format
//
//	[device]
//	base_url = "http://10.0.0.122"
//	request_timeout = "1s"
//
//	[lights]
//	poll_interval = "500ms"
//	initial = "dirty"
//
//	[timer]
//	poll_interval = "300ms"
//	duration = "5m"
//
//	[checklist]
//	db_path = "~/.local/share/kitchenhub/checklist.db"
//
//	[log]
//	path = "~/.local/share/kitchenhub/kitchenhub.log"
//	level = "info"
//
// Durations use Go syntax and must be positive. Paths may start with ~.
//
// # Error Handling
//
// Load returns errors for unreadable files, malformed TOML, bad durations,
// an unknown log level and a lights initial state other than dirty or clean.
// A missing file is not an error.
package config
