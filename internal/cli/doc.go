// Package cli defines the finder command line. Each subcommand maps onto one
// finder.Service operation; running finder with no subcommand opens the TUI.
//
// Global flags (--config, --api-url, --json) apply to every command. Errors
// are printed as "finder: <message>" and exit with status 1.
package cli
