// Package app is the composition root for finder.
//
// # Overview
//
// Setup turns Options into an Env (config, prefs, slog logger, finder client)
// and is shared by the TUI and the CLI subcommands. Run adds the shared
// state.Store, the background poller and the bubbletea program on top.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> Setup()
//	       │         ├─> config.Load()     file, env, then flag overrides
//	       │         ├─> prefs.Load()      theme, recent queries
//	       │         ├─> OpenLogger()      slog text handler on the log file
//	       │         └─> finder.NewClient()
//	       ├─────> StartPoller()           background refresh
//	       └─────> ui.Run()                TUI (blocks)
//
//	Poller loop (every poll_interval, 30s by default):
//	┌─────────────────────────────────────────┐
//	│ Refresh()  errgroup, four sources       │
//	│  ├─> CheckHealth()      → UpdateHealth  │
//	│  ├─> ListTrackedObjects → UpdateObjects │
//	│  ├─> GetSearchHistory   → UpdateHistory │
//	│  └─> suggestions+common → UpdateSugg... │
//	└─────────────────────────────────────────┘
//
// Each source writes its own result to the store, so a failing history
// endpoint does not hide a healthy object list. The UI calls Refresh directly
// after teaching or deleting an object instead of waiting for the next tick.
//
// # Error Handling
//
// Setup errors (bad config, unwritable log file, bad API URL) are returned
// and end the process. Refresh errors are logged and recorded in the store;
// polling continues.
//
// # Logging
//
// All logging goes to the configured log file through log/slog. The TUI owns
// the terminal and the Activity view tails the same file.
package app
