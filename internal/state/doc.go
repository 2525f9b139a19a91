// Package state provides thread-safe state management for the finder TUI.
//
// # Overview
//
// The Store is where background refreshes meet UI rendering. The poller
// writes health, tracked objects, search history and suggestions into it; the
// UI reads immutable snapshots on its own tick.
//
// # Update Semantics
//
// Every Update* method follows the same rule:
//
//	// Success: replace that slice of state, clear that source's error
//	store.UpdateObjects(objects, nil)
//
//	// Failure: keep the previous data, record the error
//	store.UpdateObjects(nil, err)
//
// Errors are kept per source (HealthErr, ObjectsErr, HistoryErr,
// SuggestionsErr), so a success from one call never hides a failure from
// another. LastError in a snapshot is the first outstanding one, health first.
//
// Only UpdateHealth touches ConsecutiveFailures; a healthy check resets it. APIStatus reports "checking" before the first health check and
// "error" while checks are failing, which drives the Online / Checking... /
// Offline label in the header.
//
// # Concurrency Model
//
// Updates take the write lock; Snapshot takes the read lock. Slices and
// pointer fields are deep-copied in both directions, so neither the poller
// nor the UI can mutate what the other sees.
//
// The zero Store is ready to use.
package state
