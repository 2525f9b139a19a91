package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/finder"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	content := m.buildStatusContent(styles, bg)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(1).
		Render(content)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	status := m.snapshot.APIStatus()

	parts := []string{
		bg.Render("finder", styles.Logo),
		styles.StatusStyle(status).Render("● " + apiStatusLabel(status)),
	}

	if m.snapshot.HasObjects {
		parts = append(parts,
			bg.Render("Objects:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(m.snapshot.Objects)), styles.Text),
		)
	}

	if h := m.snapshot.History; h.TotalTracked > 0 {
		label := "Located:"
		if compact {
			label = "L:"
		}
		parts = append(parts,
			bg.Render(label, styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", h.TotalFound, h.TotalTracked), styles.InfoText),
		)
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	if !compact && m.apiURL != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.apiURL, 40), styles.FaintText))
	}

	if m.snapshot.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		label := "ERROR"
		if m.snapshot.IsOffline() {
			label = "OFFLINE"
		}
		parts = append(parts,
			bg.Render(label, styles.DangerText)+bg.Space()+
				bg.Render(truncate(errorText(m.snapshot.LastError), maxErr), styles.DangerText),
		)
	}

	return bg.Join(parts, "  ")
}

// renderCommandBar renders the command hints for the current view.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewSearch:
		if m.search.input.Focused() {
			commands = []cmd{{"Enter", "Search"}, {"↑/↓", "Recent"}, {"Esc", "Done"}}
		} else {
			commands = []cmd{{"/", "Query"}, {"1-4", "Suggestion"}}
		}
	case ViewUpload:
		if m.upload.input.Focused() {
			commands = []cmd{{"Enter", "Upload"}, {"Esc", "Done"}}
		} else {
			commands = []cmd{{"/", "Path"}, {"Enter", "Upload"}, {"p", "Status"}}
		}
	case ViewActivity:
		followLabel := "Pause"
		if !m.activity.follow {
			followLabel = "Follow"
		}
		commands = []cmd{{"Space", followLabel}, {"j/k", "Scroll"}, {"g/G", "Top/Bottom"}}
	default:
		if m.objects.form.active {
			commands = []cmd{{"Tab", "Field"}, {"Ctrl+S", "Save"}, {"Esc", "Cancel"}}
		} else {
			commands = []cmd{{"j/k", "Navigate"}, {"n", "Teach"}, {"c", "Common"}, {"d", "Delete"}, {"Enter", "Details"}}
		}
	}

	if !m.typing() {
		commands = append(commands, cmd{"o/s/u/a", "Views"}, cmd{"?", "More"})
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	segments = append(segments, bg.Render(strings.ToUpper(m.currentView.String()), styles.AccentText))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, sep))
}

// renderFooter shows the most recent flash message.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.flash.text == "" {
		return styles.FaintText.Render(truncate(m.footerHint(), m.width))
	}
	style := styles.SuccessText
	if m.flash.isError {
		style = styles.DangerText
	}
	return style.Render(truncate(m.flash.text, m.width))
}

func (m Model) footerHint() string {
	switch m.snapshot.APIStatus() {
	case finder.HealthChecking:
		return "Contacting the finder service..."
	case finder.HealthHealthy:
		return "Press ? for all keys"
	default:
		return "Service unavailable. Press r to retry"
	}
}
