package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/finder/internal/finder"
)

func TestAPIStatusLabel(t *testing.T) {
	cases := map[finder.HealthStatus]string{
		finder.HealthHealthy:  "Online",
		finder.HealthChecking: "Checking...",
		finder.HealthDegraded: "Offline",
		finder.HealthError:    "Offline",
	}
	for status, want := range cases {
		if got := apiStatusLabel(status); got != want {
			t.Fatalf("apiStatusLabel(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := relativeTime(time.Time{}, now); got != "never" {
		t.Fatalf("relativeTime(zero) = %q, want never", got)
	}
	if got := relativeTime(now.Add(-20*time.Second), now); got != "just now" {
		t.Fatalf("relativeTime(-20s) = %q, want just now", got)
	}
	if got := relativeTime(now.Add(-3*time.Hour), now); got != "3 hours ago" {
		t.Fatalf("relativeTime(-3h) = %q, want 3 hours ago", got)
	}
}

func TestFormatConfidence(t *testing.T) {
	if got := formatConfidence(nil); got != "n/a" {
		t.Fatalf("formatConfidence(nil) = %q, want n/a", got)
	}
	c := 0.92
	if got := formatConfidence(&c); got != "92% · Very Confident" {
		t.Fatalf("formatConfidence(0.92) = %q", got)
	}
	low := 0.31
	if got := formatConfidence(&low); got != "31% · Low Confidence" {
		t.Fatalf("formatConfidence(0.31) = %q", got)
	}
}

func TestErrorTextCollapsesLines(t *testing.T) {
	if got := errorText(nil); got != "" {
		t.Fatalf("errorText(nil) = %q, want empty", got)
	}
	if got := errorText(errors.New("line one\n  line two")); got != "line one line two" {
		t.Fatalf("errorText = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Fatalf("truncate = %q, want short", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("truncate = %q, want abc...", got)
	}
	if got := truncate("čšžčšžčšž", 5); got != "čš..." {
		t.Fatalf("truncate runes = %q, want čš...", got)
	}
}

func TestTruncateMiddleKeepsFileName(t *testing.T) {
	got := truncateMiddle("/home/user/videos/kitchen-morning.mp4", 20)
	if len([]rune(got)) != 20 {
		t.Fatalf("truncateMiddle length = %d, want 20 (%q)", len([]rune(got)), got)
	}
	if got[len(got)-4:] != ".mp4" {
		t.Fatalf("truncateMiddle = %q, want .mp4 suffix", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q", got)
	}
}

func TestFitHeight(t *testing.T) {
	if got := fitHeight("a\nb\nc", 2); got != "a\nb" {
		t.Fatalf("fitHeight clip = %q", got)
	}
	if got := fitHeight("a", 3); got != "a\n\n" {
		t.Fatalf("fitHeight pad = %q", got)
	}
	if got := fitHeight("a", 0); got != "" {
		t.Fatalf("fitHeight zero = %q", got)
	}
}

func TestUploadFraction(t *testing.T) {
	if got := uploadFraction(5, 0); got != 0 {
		t.Fatalf("uploadFraction(5,0) = %v, want 0", got)
	}
	if got := uploadFraction(50, 200); got != 0.25 {
		t.Fatalf("uploadFraction(50,200) = %v, want 0.25", got)
	}
	if got := uploadFraction(300, 200); got != 1 {
		t.Fatalf("uploadFraction(300,200) = %v, want 1", got)
	}
}
