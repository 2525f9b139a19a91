package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/five82/finder/internal/finder"
)

// now is swapped in tests.
var now = time.Now

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func relative(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now(), "ago", "from now")
}

func field(out io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "%-12s%s\n", label+":", value)
}

func printHealth(out io.Writer, h *finder.Health) {
	field(out, "Status", string(h.Status))
	field(out, "Service", h.Service)
	field(out, "Version", h.Version)
	field(out, "Database", h.Database)
}

func printUpload(out io.Writer, r *finder.UploadResult) {
	fmt.Fprintf(out, "Uploaded %s as video %s\n", r.FileName, r.VideoNo)
	if r.FileSize > 0 {
		field(out, "Size", humanize.IBytes(uint64(r.FileSize)))
	}
	field(out, "Message", r.Message)
}

func printStatus(out io.Writer, s *finder.UploadStatus) {
	field(out, "Video", s.VideoNo)
	field(out, "Status", s.Status)
	field(out, "Message", s.Message)
	field(out, "Processed", s.ProcessedAt)
	field(out, "ETA", s.EstimatedCompletion)
}

func printObject(out io.Writer, o *finder.TrackedObject) {
	field(out, "ID", string(o.ID))
	field(out, "Name", o.Name)
	field(out, "Description", o.Alias)
	if created := o.ParsedCreatedAt(); !created.IsZero() {
		field(out, "Added", fmt.Sprintf("%s (%s)", created.Format(time.DateTime), relative(created)))
	}
	seen := o.LastSeenAt()
	if seen.IsZero() {
		field(out, "Last seen", "not seen yet")
		return
	}
	field(out, "Last seen", fmt.Sprintf("%s (%s)", seen.Format(time.DateTime), relative(seen)))
	field(out, "Where", o.LocationPhrase)
	if o.Confidence != nil {
		field(out, "Confidence", confidence(*o.Confidence))
	}
	field(out, "Video", o.VideoNo)
}

func confidence(c float64) string {
	return fmt.Sprintf("%d%% (%s)", finder.ConfidencePercent(c), finder.ConfidenceLabel(c))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func printObjects(out io.Writer, objects []finder.TrackedObject) {
	t := newTable("ID", "NAME", "DESCRIPTION", "LAST SEEN", "WHERE")
	for _, o := range objects {
		seen := "not seen yet"
		if at := o.LastSeenAt(); !at.IsZero() {
			seen = relative(at)
		}
		t.Row(string(o.ID), o.Name, truncate(o.Alias, 40), seen, truncate(o.LocationPhrase, 40))
	}
	fmt.Fprintln(out, t.Render())
}

func printSearch(out io.Writer, r *finder.SearchResult) {
	if !r.Found {
		fmt.Fprintln(out, r.Message)
		return
	}
	fmt.Fprintln(out, r.Location)
	if r.Confidence != nil {
		field(out, "Confidence", confidence(*r.Confidence))
	}
	if seen := r.SeenAt(); !seen.IsZero() {
		field(out, "Seen", fmt.Sprintf("%s (%s)", seen.Format(time.DateTime), relative(seen)))
	}
	field(out, "Video", r.VideoNo)
	if r.ObjectInfo != nil {
		field(out, "Object", r.ObjectInfo.Name)
	}
	field(out, "Message", r.Message)
}

func printHistory(out io.Writer, h *finder.SearchHistory) {
	fmt.Fprintf(out, "%d of %d tracked objects located\n", h.TotalFound, h.TotalTracked)
	if len(h.FoundObjects) == 0 {
		return
	}
	t := newTable("NAME", "WHERE", "SEEN", "CONFIDENCE")
	for _, o := range h.FoundObjects {
		conf := "n/a"
		if o.Confidence != nil {
			conf = confidence(*o.Confidence)
		}
		t.Row(o.Name, truncate(o.LocationPhrase, 48), relative(o.LastSeenAt()), conf)
	}
	fmt.Fprintln(out, t.Render())
}

// newProgressPrinter reports upload progress on a single terminal line,
// redrawing at most once per percent.
func newProgressPrinter(out io.Writer, name string) func(sent, total int64) {
	last := -1
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(out, "\rUploading %s %3d%% (%s of %s)", name, pct,
			humanize.IBytes(uint64(sent)), humanize.IBytes(uint64(total)))
		if sent >= total {
			fmt.Fprintln(out)
		}
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
