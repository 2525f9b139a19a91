package logtail

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "zero lines",
			maxLines: 0,
			expected: nil,
		},
		{
			name:     "negative",
			maxLines: -1,
			expected: nil,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFileReturnsNil(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", lines, err)
	}
}

func TestParseLine_SlogTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("component", "api")
	logger.Warn("api request failed", "url", "http://localhost:8000/health?_t=1", "error", `dial tcp: "refused"`)

	entry, ok := ParseLine(strings.TrimSpace(buf.String()))
	if !ok {
		t.Fatalf("ParseLine(%q) ok = false", buf.String())
	}
	if entry.Level != "WARN" || entry.Message != "api request failed" {
		t.Fatalf("entry = %#v, want WARN api request failed", entry)
	}
	if entry.Time.IsZero() {
		t.Fatalf("Time not parsed")
	}
	want := []Attr{
		{Key: "component", Value: "api"},
		{Key: "url", Value: "http://localhost:8000/health?_t=1"},
		{Key: "error", Value: `dial tcp: "refused"`},
	}
	if !reflect.DeepEqual(entry.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", entry.Attrs, want)
	}
}

func TestParseLine_PlainText(t *testing.T) {
	for _, line := range []string{
		"panic: something broke",
		"goroutine 1 [running]:",
		"",
		`level="unterminated`,
	} {
		entry, ok := ParseLine(line)
		if ok {
			t.Fatalf("ParseLine(%q) ok = true, want false", line)
		}
		if entry.Message != line {
			t.Fatalf("Message = %q, want raw line", entry.Message)
		}
	}
}
