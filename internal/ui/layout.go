package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutSplitWidth is the minimum width for the side-by-side objects layout.
	LayoutSplitWidth = 110
)

// Log display limits.
const (
	// ActivityLineLimit is how many log lines the Activity view tails.
	ActivityLineLimit = 500
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the store.
	DefaultUIInterval = time.Second

	// FlashDuration is how long a status message stays in the footer.
	FlashDuration = 6 * time.Second
)

// chromeHeight is the number of lines used by header, command bar and footer.
const chromeHeight = 3
