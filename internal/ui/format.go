package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/five82/finder/internal/finder"
)

// apiStatusLabel is the header label for a service status.
func apiStatusLabel(status finder.HealthStatus) string {
	switch status {
	case finder.HealthHealthy:
		return "Online"
	case finder.HealthChecking:
		return "Checking..."
	default:
		return "Offline"
	}
}

// relativeTime renders t relative to now, or "never" for the zero time.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if d := now.Sub(t); d >= 0 && d < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// formatSeenAt renders a sighting time as "Jan 2 15:04 (3 hours ago)".
func formatSeenAt(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", t.In(time.Local).Format("Jan 2 15:04"), relativeTime(t, now))
}

// formatConfidence renders a confidence as "92% · Very Confident".
func formatConfidence(c *float64) string {
	if c == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d%% · %s", finder.ConfidencePercent(*c), finder.ConfidenceLabel(*c))
}

// errorText is the message to show for an error from the client.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	return singleLine(err.Error())
}
