// Package config loads finder's client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/finder/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are blank, use defaults for those fields
//  5. FINDER_API_URL, when set and non-blank, replaces api_url
//
// # Default Values
//
//   - API URL: http://localhost:8000
//   - Request timeout: 30s
//   - Upload timeout: 2m
//   - Poll interval: 30s
//   - Log file: ~/.local/state/finder/finder.log
//   - Log level: info
//
// # TOML Format
//
//	api_url = "http://192.168.1.20:8000"
//	timeout = "30s"
//	upload_timeout = "2m"
//	poll_interval = "30s"
//	log_file = "~/.local/state/finder/finder.log"
//	log_level = "debug"
//
// Durations use Go syntax and must be positive. log_level accepts the slog
// level names (debug, info, warn, error).
//
// # Error Handling
//
// Load returns errors for unreadable files, invalid TOML, and invalid field
// values; the message names the offending field. A missing file is not an
// error, so finder works without any configuration.
package config
