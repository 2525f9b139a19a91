package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/logtail"
)

// activityState holds the Activity view state: a tail of the client log.
type activityState struct {
	viewport viewport.Model
	follow   bool
	lines    []string
	err      string
}

func newActivityState() activityState {
	return activityState{
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

type logLinesMsg struct {
	lines []string
	err   error
}

func (m Model) loadActivityCmd() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, ActivityLineLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.err != nil {
		m.activity.err = errorText(msg.err)
		return
	}
	m.activity.err = ""
	m.activity.lines = msg.lines
	m.activity.render(m.theme)
}

// render pushes the colorized lines into the viewport.
func (a *activityState) render(theme Theme) {
	rendered := make([]string, 0, len(a.lines))
	for _, line := range a.lines {
		rendered = append(rendered, renderLogLine(theme, line))
	}
	a.viewport.SetContent(strings.Join(rendered, "\n"))
	if a.follow {
		a.viewport.GotoBottom()
	}
}

// renderLogLine colorizes one slog text line.
func renderLogLine(theme Theme, line string) string {
	styles := theme.Styles()
	entry, ok := logtail.ParseLine(line)
	if !ok {
		return styles.FaintText.Render(line)
	}

	var b strings.Builder
	if !entry.Time.IsZero() {
		b.WriteString(styles.MutedText.Render(entry.Time.Format("15:04:05")))
		b.WriteString(" ")
	}
	level := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LevelColor(entry.Level)))
	b.WriteString(level.Render(padRight(entry.Level, 5)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(entry.Message))
	for _, attr := range entry.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(attr.Key + "="))
		valueStyle := styles.MutedText
		if attr.Key == "error" {
			valueStyle = styles.DangerText
		}
		b.WriteString(valueStyle.Render(attr.Value))
	}
	return b.String()
}

// handleActivityKey handles keys in the Activity view.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.activity.follow = !m.activity.follow
		if m.activity.follow {
			m.activity.viewport.GotoBottom()
			return m, m.loadActivityCmd()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.activity.follow = false
		m.activity.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.activity.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		// Scrolling by hand pauses follow mode
		m.activity.follow = false
	}

	var cmd tea.Cmd
	m.activity.viewport, cmd = m.activity.viewport.Update(msg)
	return m, cmd
}

// renderActivity renders the Activity view.
func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	switch {
	case m.logPath == "":
		return styles.MutedText.Render("Logging to a file is disabled. Set log_file in the config to see activity here.")
	case m.activity.err != "":
		return styles.DangerText.Render(m.activity.err)
	case len(m.activity.lines) == 0:
		return styles.MutedText.Render("No activity yet: " + truncateMiddle(m.logPath, 60))
	}
	return m.activity.viewport.View()
}
