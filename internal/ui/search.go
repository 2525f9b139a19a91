package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/finder"
)

// maxSuggestions is how many suggestions get a number key.
const maxSuggestions = 4

// searchState holds the Search view state.
type searchState struct {
	input     textinput.Model
	result    *finder.SearchResult
	lastQuery string
	busy      bool
	recentIdx int // index into prefs.RecentQueries while recalling, -1 otherwise
}

func newSearchState() searchState {
	input := textinput.New()
	input.Placeholder = "where are my keys?"
	input.Prompt = "? "
	input.CharLimit = finder.MaxQueryLen
	return searchState{input: input, recentIdx: -1}
}

type searchResultMsg struct {
	query  string
	result *finder.SearchResult
	err    error
}

func (m Model) searchCmd(query string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		res, err := client.Search(ctx, query)
		return searchResultMsg{query: query, result: res, err: err}
	}
}

// handleSearchKey handles keys in the Search view when the input is blurred.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Focus):
		m.search.recentIdx = -1
		return m, m.search.input.Focus()
	case key.Matches(msg, m.keys.Suggestion):
		idx := int(msg.String()[0] - '1')
		if idx < 0 || idx >= len(m.snapshot.Suggestions) {
			return m, nil
		}
		m.search.input.SetValue(m.snapshot.Suggestions[idx])
		return m.submitSearch()
	case key.Matches(msg, m.keys.Confirm):
		return m.submitSearch()
	}
	return m, nil
}

// handleSearchInputKey handles keys while the query input is focused.
func (m Model) handleSearchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.input.Blur()
		return m.submitSearch()
	case tea.KeyEsc:
		m.search.input.Blur()
		m.search.recentIdx = -1
		return m, nil
	case tea.KeyUp:
		m.recallQuery(1)
		return m, nil
	case tea.KeyDown:
		m.recallQuery(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	return m, cmd
}

// recallQuery walks the recent query list; positive steps go further back.
func (m *Model) recallQuery(step int) {
	recent := m.prefs.RecentQueries
	if len(recent) == 0 {
		return
	}
	idx := m.search.recentIdx + step
	if idx < 0 {
		m.search.recentIdx = -1
		m.search.input.SetValue("")
		return
	}
	idx = min(idx, len(recent)-1)
	m.search.recentIdx = idx
	m.search.input.SetValue(recent[idx])
	m.search.input.CursorEnd()
}

func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	if m.search.busy || m.client == nil {
		return m, nil
	}
	m.search.busy = true
	m.search.recentIdx = -1
	return m, m.searchCmd(m.search.input.Value())
}

func (m Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	m.search.busy = false
	if msg.err != nil {
		m.search.result = nil
		m.setFlash(errorText(msg.err), true)
		return m, nil
	}
	m.search.result = msg.result
	m.search.lastQuery = strings.TrimSpace(msg.query)

	// Only queries the service actually answered are worth recalling.
	if msg.result != nil && msg.result.Failure == nil {
		m.prefs.RememberQuery(msg.query)
		m.savePrefs()
	}
	return m, nil
}

// renderSearch renders the Search view.
func (m Model) renderSearch() string {
	styles := m.theme.Styles()

	inputStyle := styles.Card
	if m.search.input.Focused() {
		inputStyle = styles.FocusedCard
	}

	sections := []string{
		inputStyle.Render(m.search.input.View()),
		m.renderSuggestions(styles),
	}
	if m.search.busy {
		sections = append(sections, styles.InfoText.Render("Searching..."))
	} else if m.search.result != nil {
		sections = append(sections, m.renderSearchResult(styles, *m.search.result))
	}
	sections = append(sections, m.renderHistory(styles))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSuggestions(styles Styles) string {
	if len(m.snapshot.Suggestions) == 0 {
		return ""
	}
	parts := make([]string, 0, maxSuggestions)
	for i, s := range m.snapshot.Suggestions {
		if i >= maxSuggestions {
			break
		}
		parts = append(parts, styles.AccentText.Render(fmt.Sprintf("%d", i+1))+" "+styles.MutedText.Render(s))
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderSearchResult(styles Styles, r finder.SearchResult) string {
	var b strings.Builder
	title := fmt.Sprintf("%q", m.search.lastQuery)

	if !r.Found {
		b.WriteString(styles.WarningText.Bold(true).Render("Not found " + title))
		b.WriteString("\n")
		if r.Failure != nil {
			b.WriteString(styles.DangerText.Render("[" + r.Failure.Kind.String() + "] "))
		}
		b.WriteString(styles.MutedText.Render(r.Message))
		return styles.Card.Render(b.String())
	}

	b.WriteString(styles.SuccessText.Render("Found " + title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Bold(true).Render(r.Location))
	b.WriteString("\n\n")
	if r.Confidence != nil {
		b.WriteString(styles.MutedText.Render(padRight("Confidence", 11)))
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.ConfidenceColor(*r.Confidence))).
			Render(formatConfidence(r.Confidence)))
		b.WriteString("\n")
	}
	writeField(&b, styles, "Seen", formatSeenAt(r.SeenAt(), m.now()))
	if r.VideoNo != "" {
		writeField(&b, styles, "Video", r.VideoNo)
	}
	if r.ObjectInfo != nil {
		writeField(&b, styles, "Object", r.ObjectInfo.Name)
	}
	if r.Message != "" {
		b.WriteString(styles.FaintText.Render(r.Message))
	}

	return styles.FocusedCard.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderHistory(styles Styles) string {
	var b strings.Builder
	h := m.snapshot.History

	b.WriteString(styles.AccentText.Bold(true).Render("Recently located"))
	if h.TotalTracked > 0 {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("  %d of %d objects located", h.TotalFound, h.TotalTracked)))
	}
	b.WriteString("\n")

	if len(h.FoundObjects) == 0 {
		b.WriteString(styles.MutedText.Render("No sightings yet. Upload a video to get started."))
	}
	now := m.now()
	for _, obj := range h.FoundObjects {
		where := obj.LocationPhrase
		if where == "" {
			where = "location unknown"
		}
		b.WriteString(styles.Text.Render(padRight(truncate(obj.Name, 18), 19)))
		b.WriteString(styles.MutedText.Render(truncate(where, 48)))
		b.WriteString(styles.FaintText.Render("  " + relativeTime(obj.LastSeenAt(), now)))
		b.WriteString("\n")
	}

	if recent := m.prefs.RecentQueries; len(recent) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Recent queries"))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(strings.Join(recent, " · ")))
	}
	return strings.TrimRight(b.String(), "\n")
}
