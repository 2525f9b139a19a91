package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/finder/internal/finder"
	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewObjects View = iota
	ViewSearch
	ViewUpload
	ViewActivity
)

var viewOrder = []View{ViewObjects, ViewSearch, ViewUpload, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "Search"
	case ViewUpload:
		return "Upload"
	case ViewActivity:
		return "Activity"
	default:
		return "Objects"
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    finder.Service
	Store     *state.Store
	Refresh   func(context.Context) error // refreshes Store out of band; optional
	LogPath   string
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	APIURL    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    finder.Service
	store     *state.Store
	refresh   func(context.Context) error
	logPath   string
	prefsPath string
	apiURL    string
	prefs     prefs.Prefs
	pollTick  time.Duration
	keys      keyMap
	now       func() time.Time

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	objects  objectsState
	search   searchState
	upload   uploadState
	activity activityState

	flash flashMessage
}

type flashMessage struct {
	text    string
	isError bool
	at      time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 || pollTick > DefaultUIInterval {
		// The poller owns network cadence; the UI only re-reads the store.
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		refresh:     opts.Refresh,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		apiURL:      opts.APIURL,
		prefs:       opts.Prefs,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewObjects,
		objects:     newObjectsState(),
		search:      newSearchState(),
		upload:      newUploadState(),
		activity:    newActivityState(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		m.clampSelection()
		return m, nil

	case refreshedMsg:
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case objectTaughtMsg:
		return m.handleObjectTaught(msg)
	case objectDeletedMsg:
		return m.handleObjectDeleted(msg)
	case objectDetailMsg:
		return m.handleObjectDetail(msg)

	case searchResultMsg:
		return m.handleSearchResult(msg)

	case uploadStartedMsg:
		return m.handleUploadStarted(msg)
	case uploadProgressMsg:
		return m.handleUploadProgress(msg)
	case uploadDoneMsg:
		return m.handleUploadDone(msg)
	case uploadStatusMsg:
		return m.handleUploadStatus(msg)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.upload.uploading {
			return m, nil
		}
		var cmd tea.Cmd
		m.upload.spinner, cmd = m.upload.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// typing reports whether keystrokes belong to a text input.
func (m Model) typing() bool {
	switch m.currentView {
	case ViewObjects:
		return m.objects.form.active
	case ViewSearch:
		return m.search.input.Focused()
	case ViewUpload:
		return m.upload.input.Focused()
	}
	return false
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.typing() {
		switch m.currentView {
		case ViewObjects:
			return m.handleFormKey(msg)
		case ViewSearch:
			return m.handleSearchInputKey(msg)
		case ViewUpload:
			return m.handleUploadInputKey(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.setFlash("Refreshing...", false)
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.offsetView(1))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.offsetView(-1))
	case key.Matches(msg, m.keys.ViewObjects):
		return m.switchView(ViewObjects)
	case key.Matches(msg, m.keys.ViewSearch):
		return m.switchView(ViewSearch)
	case key.Matches(msg, m.keys.ViewUpload):
		return m.switchView(ViewUpload)
	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)
	}

	switch m.currentView {
	case ViewObjects:
		return m.handleObjectsKey(msg)
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewUpload:
		return m.handleUploadKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) offsetView(delta int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+delta+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewObjects
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewActivity {
		return m, m.loadActivityCmd()
	}
	return m, nil
}

// handleTick processes the UI refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewActivity && m.activity.follow {
		if cmd := m.loadActivityCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if !m.flash.at.IsZero() && m.now().Sub(m.flash.at) > FlashDuration {
		m.flash = flashMessage{}
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = flashMessage{text: singleLine(text), isError: isError, at: m.now()}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.setFlash("Could not save preferences: "+err.Error(), true)
	}
}

func (m *Model) resize() {
	bodyWidth := max(m.width-4, 10)
	m.search.input.Width = max(bodyWidth-4, 10)
	m.upload.input.Width = max(bodyWidth-4, 10)
	m.upload.progress.Width = min(max(bodyWidth-10, 10), 80)
	m.objects.form.resize(bodyWidth)
	m.activity.viewport.Width = m.width
	m.activity.viewport.Height = max(m.contentHeight(), 1)
	m.activity.render(m.theme)
}

func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 0)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(fitHeight(m.renderContent(), m.contentHeight()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSearch:
		return m.renderSearch()
	case ViewUpload:
		return m.renderUpload()
	case ViewActivity:
		return m.renderActivity()
	default:
		return m.renderObjects()
	}
}

// fitHeight pads or clips content to exactly height lines.
func fitHeight(content string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type refreshedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) refreshCmd() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	refresh, ctx := m.refresh, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: refresh(ctx)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
