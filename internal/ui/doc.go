// Package ui provides the terminal user interface for finder.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds all state and is copied on every
// Update; long-running work (requests, uploads, log reads) runs inside tea.Cmd
// functions and reports back with messages. Background polling is owned by the
// app package, which keeps a state.Store current. The UI re-reads that store
// once per DefaultUIInterval and only calls the service directly for
// operations the user starts.
//
// # Package Structure
//
//   - app.go: Model, Options, message routing and Run
//   - header.go: status bar, command bar and footer
//   - objects.go: tracked object list, teach form and quick-add templates
//   - search.go: query input, suggestions, results and search history
//   - upload.go: video upload with progress and processing status
//   - activity.go: colorized tail of the client log file
//   - modal.go: confirmation dialog
//   - keys.go, help.go: key bindings and the help overlay generated from them
//   - theme.go, style_helpers.go: color themes and background-safe rendering
//
// # Views
//
//   - Objects (o): what is tracked, when and where each object was last seen
//   - Search (s): "where are my keys?" queries
//   - Upload (u): send a video for the service to scan
//   - Activity (a): the request log written by the finder client
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Client:  client,
//		Store:   store,
//		LogPath: cfg.LogFile,
//	})
package ui
