package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/finder/internal/finder"
	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/state"
)

type fakeService struct {
	finder.Service // unused operations panic

	mu        sync.Mutex
	taught    []finder.ObjectTemplate
	teachErr  error
	deleted   []finder.ObjectID
	queries   []string
	search    *finder.SearchResult
	uploaded  []string
	statusFor []string
}

func (f *fakeService) TeachObject(_ context.Context, name, alias string) (*finder.TrackedObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.teachErr != nil {
		return nil, f.teachErr
	}
	f.taught = append(f.taught, finder.ObjectTemplate{Name: name, Alias: alias})
	return &finder.TrackedObject{ID: "42", Name: name, Alias: alias}, nil
}

func (f *fakeService) DeleteTrackedObject(_ context.Context, id finder.ObjectID) (*finder.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return &finder.Confirmation{Success: true, Message: "Object deleted"}, nil
}

func (f *fakeService) GetTrackedObject(_ context.Context, id finder.ObjectID) (*finder.TrackedObject, error) {
	return &finder.TrackedObject{ID: id, Name: "wallet", LocationPhrase: "on the hallway shelf"}, nil
}

func (f *fakeService) Search(_ context.Context, query string) (*finder.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.search != nil {
		return f.search, nil
	}
	c := 0.92
	return &finder.SearchResult{Found: true, Location: "on the kitchen counter", Confidence: &c}, nil
}

func (f *fakeService) UploadVideo(_ context.Context, file *finder.VideoFile) (*finder.UploadResult, error) {
	n, err := io.Copy(io.Discard, file.Body)
	if err != nil {
		return nil, err
	}
	if file.Progress != nil {
		file.Progress(n, file.Size)
	}
	f.mu.Lock()
	f.uploaded = append(f.uploaded, file.Name)
	f.mu.Unlock()
	return &finder.UploadResult{Success: true, VideoNo: "vid-1", FileName: file.Name, FileSize: n}, nil
}

func (f *fakeService) GetUploadStatus(_ context.Context, videoNo string) (*finder.UploadStatus, error) {
	f.mu.Lock()
	f.statusFor = append(f.statusFor, videoNo)
	f.mu.Unlock()
	return &finder.UploadStatus{VideoNo: videoNo, Status: "processing", Message: "Scanning frames"}, nil
}

func newTestModel(t *testing.T, svc finder.Service) Model {
	t.Helper()
	m := New(Options{
		Client:    svc,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Prefs:     prefs.Prefs{Theme: "Nightfox"},
	})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabCyclesViews(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	want := []View{ViewSearch, ViewUpload, ViewActivity, ViewObjects}
	for _, v := range want {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.currentView != v {
			t.Fatalf("currentView = %v, want %v", m.currentView, v)
		}
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewActivity {
		t.Fatalf("shift+tab view = %v, want Activity", m.currentView)
	}
}

func TestCtrlCQuitsWhileTyping(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, keyRunes("s"))
	m, _ = update(t, m, keyRunes("/"))
	if !m.search.input.Focused() {
		t.Fatal("search input not focused")
	}

	// "e" is the quit key outside inputs but must be typed here.
	m, _ = update(t, m, keyRunes("e"))
	if got := m.search.input.Value(); got != "e" {
		t.Fatalf("input = %q, want e", got)
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned nil cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c did not quit")
	}
}

func TestTeachFormSubmits(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)

	m, _ = update(t, m, keyRunes("n"))
	if !m.objects.form.active {
		t.Fatal("teach form not opened")
	}
	m, _ = update(t, m, keyRunes("keys"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, keyRunes("car keys, blue keychain"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("submit returned nil cmd")
	}
	if !m.objects.busy {
		t.Fatal("busy not set while saving")
	}

	m, _ = update(t, m, cmd())
	if len(svc.taught) != 1 || svc.taught[0].Name != "keys" || svc.taught[0].Alias != "car keys, blue keychain" {
		t.Fatalf("taught = %#v", svc.taught)
	}
	if m.objects.form.active {
		t.Fatal("form still open after success")
	}
	if !strings.Contains(m.flash.text, `"keys"`) || m.flash.isError {
		t.Fatalf("flash = %#v", m.flash)
	}
}

func TestTeachFormShowsValidationError(t *testing.T) {
	svc := &fakeService{teachErr: &finder.Error{Kind: finder.InvalidInput, Op: "teach object", Message: "object name is required"}}
	m := newTestModel(t, svc)

	m, _ = update(t, m, keyRunes("n"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, cmd())

	if !m.objects.form.active {
		t.Fatal("form closed on error")
	}
	if !strings.Contains(m.objects.form.err, "object name is required") {
		t.Fatalf("form.err = %q", m.objects.form.err)
	}
}

func TestEscapeClosesTeachForm(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, keyRunes("n"))
	m, _ = update(t, m, keyRunes("wal"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.objects.form.active {
		t.Fatal("form still active after esc")
	}
	m, _ = update(t, m, keyRunes("n"))
	if got := m.objects.form.name.Value(); got != "" {
		t.Fatalf("reopened form name = %q, want empty", got)
	}
}

func TestQuickAddPrefillsForm(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, snapshotMsg(state.Snapshot{
		CommonObjects: []finder.ObjectTemplate{
			{Name: "keys", Alias: "house keys"},
			{Name: "wallet", Alias: "brown leather wallet"},
		},
	}))

	m, _ = update(t, m, keyRunes("c"))
	if !m.objects.quickAdd {
		t.Fatal("quick-add not shown")
	}
	m, _ = update(t, m, keyRunes("2"))
	if !m.objects.form.active {
		t.Fatal("form not opened from template")
	}
	if got := m.objects.form.name.Value(); got != "wallet" {
		t.Fatalf("name = %q, want wallet", got)
	}
	if got := m.objects.form.alias.Value(); got != "brown leather wallet" {
		t.Fatalf("alias = %q", got)
	}
}

func objectsSnapshot() snapshotMsg {
	return snapshotMsg(state.Snapshot{
		HasObjects: true,
		Objects: []finder.TrackedObject{
			{ID: "3", Name: "keys"},
			{ID: "7", Name: "wallet"},
		},
	})
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)
	m, _ = update(t, m, objectsSnapshot())
	m, _ = update(t, m, keyRunes("j"))

	m, _ = update(t, m, keyRunes("d"))
	if m.modal == nil {
		t.Fatal("delete did not open a confirmation")
	}
	m, cmd := update(t, m, keyRunes("y"))
	if m.modal != nil {
		t.Fatal("modal still open after confirming")
	}
	if cmd == nil {
		t.Fatal("confirm returned nil cmd")
	}
	m, _ = update(t, m, cmd())

	if len(svc.deleted) != 1 || svc.deleted[0] != "7" {
		t.Fatalf("deleted = %v, want [7]", svc.deleted)
	}
	if m.flash.text != "Object deleted" {
		t.Fatalf("flash = %q, want Object deleted", m.flash.text)
	}
}

func TestDeleteCancelled(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)
	m, _ = update(t, m, objectsSnapshot())

	m, _ = update(t, m, keyRunes("d"))
	m, cmd := update(t, m, keyRunes("n"))
	if m.modal != nil || cmd != nil {
		t.Fatalf("modal open = %v, cmd set = %v, want neither", m.modal != nil, cmd != nil)
	}
	if len(svc.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", svc.deleted)
	}
}

func TestSelectionClampsWhenObjectsShrink(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, objectsSnapshot())
	m, _ = update(t, m, keyRunes("G"))
	if m.objects.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.objects.selected)
	}
	m, _ = update(t, m, snapshotMsg(state.Snapshot{HasObjects: true, Objects: []finder.TrackedObject{{ID: "3", Name: "keys"}}}))
	if m.objects.selected != 0 {
		t.Fatalf("selected after shrink = %d, want 0", m.objects.selected)
	}
}

func TestDetailsLoadsSelectedObject(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, objectsSnapshot())
	m, _ = update(t, m, keyRunes("j"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned nil cmd")
	}
	m, _ = update(t, m, cmd())
	if m.objects.detail == nil || m.objects.detail.LocationPhrase != "on the hallway shelf" {
		t.Fatalf("detail = %#v", m.objects.detail)
	}
}

func TestSearchRemembersQuery(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)

	m, _ = update(t, m, keyRunes("s"))
	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("keys"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned nil cmd")
	}
	m, _ = update(t, m, cmd())

	if len(svc.queries) != 1 || svc.queries[0] != "keys" {
		t.Fatalf("queries = %v", svc.queries)
	}
	if m.search.result == nil || !m.search.result.Found {
		t.Fatalf("result = %#v", m.search.result)
	}
	if len(m.prefs.RecentQueries) != 1 || m.prefs.RecentQueries[0] != "keys" {
		t.Fatalf("RecentQueries = %v", m.prefs.RecentQueries)
	}

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if len(saved.RecentQueries) != 1 || saved.RecentQueries[0] != "keys" {
		t.Fatalf("saved RecentQueries = %v", saved.RecentQueries)
	}
}

func TestSearchFailureIsNotRemembered(t *testing.T) {
	svc := &fakeService{search: &finder.SearchResult{
		Message: "index unavailable",
		Failure: &finder.Error{Kind: finder.ServerError, Message: "index unavailable"},
	}}
	m := newTestModel(t, svc)

	m, _ = update(t, m, keyRunes("s"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	if m.search.result == nil || m.search.result.Found {
		t.Fatalf("result = %#v, want not found", m.search.result)
	}
	if len(m.prefs.RecentQueries) != 0 {
		t.Fatalf("RecentQueries = %v, want none", m.prefs.RecentQueries)
	}
}

func TestSearchSuggestionKey(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)
	m, _ = update(t, m, snapshotMsg(state.Snapshot{Suggestions: []string{"Where are my keys?", "Where is my wallet?"}}))
	m, _ = update(t, m, keyRunes("s"))

	m, cmd := update(t, m, keyRunes("2"))
	if cmd == nil {
		t.Fatal("suggestion returned nil cmd")
	}
	cmd()
	if len(svc.queries) != 1 || svc.queries[0] != "Where is my wallet?" {
		t.Fatalf("queries = %v", svc.queries)
	}

	// Out of range digits do nothing.
	m.search.busy = false
	if _, cmd := update(t, m, keyRunes("4")); cmd != nil {
		t.Fatal("digit without suggestion returned a cmd")
	}
}

func TestRecallRecentQueries(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m.prefs.RecentQueries = []string{"keys", "wallet"}
	m, _ = update(t, m, keyRunes("s"))
	m, _ = update(t, m, keyRunes("/"))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.search.input.Value(); got != "keys" {
		t.Fatalf("first recall = %q, want keys", got)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.search.input.Value(); got != "wallet" {
		t.Fatalf("recall past end = %q, want wallet", got)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.search.input.Value(); got != "" {
		t.Fatalf("recall back to start = %q, want empty", got)
	}
}

func TestUploadStreamsProgressAndResult(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)

	path := filepath.Join(t.TempDir(), "hallway.mp4")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	msg := m.startUploadCmd(path)()
	started, ok := msg.(uploadStartedMsg)
	if !ok {
		t.Fatalf("start msg = %T, want uploadStartedMsg", msg)
	}
	if started.name != "hallway.mp4" || started.size != 4096 {
		t.Fatalf("started = %+v", started)
	}
	m, _ = update(t, m, started)
	if !m.upload.uploading {
		t.Fatal("uploading not set")
	}

	for m.upload.uploading {
		next := waitForUpload(started.events)()
		if next == nil {
			t.Fatal("events closed before completion")
		}
		m, _ = update(t, m, next)
	}

	if m.upload.result == nil || m.upload.result.VideoNo != "vid-1" {
		t.Fatalf("result = %#v", m.upload.result)
	}
	if m.upload.sent != 4096 {
		t.Fatalf("sent = %d, want 4096", m.upload.sent)
	}

	m, _ = update(t, m, keyRunes("u"))
	m, cmd := update(t, m, keyRunes("p"))
	if cmd == nil {
		t.Fatal("status check returned nil cmd")
	}
	m, _ = update(t, m, cmd())
	if m.upload.status == nil || m.upload.status.Status != "processing" {
		t.Fatalf("status = %#v", m.upload.status)
	}
	if len(svc.statusFor) != 1 || svc.statusFor[0] != "vid-1" {
		t.Fatalf("statusFor = %v", svc.statusFor)
	}
}

func TestUploadMissingFile(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	msg := m.startUploadCmd(filepath.Join(t.TempDir(), "missing.mp4"))()
	m, _ = update(t, m, msg)
	if m.upload.uploading || m.upload.err == "" {
		t.Fatalf("upload state = %+v, want error", m.upload)
	}
}

func TestUploadRequiresPath(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, keyRunes("u"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("empty path started an upload")
	}
	if m.upload.err == "" {
		t.Fatal("no error for empty path")
	}
}

func TestUploadIgnoresEnterWhileOpening(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc)

	path := filepath.Join(t.TempDir(), "porch.mp4")
	if err := os.WriteFile(path, make([]byte, 512), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	m, _ = update(t, m, keyRunes("u"))
	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes(path))
	m, first := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if first == nil {
		t.Fatal("enter did not start an upload")
	}
	if !m.upload.pending {
		t.Fatal("pending not set while the file opens")
	}

	m, second := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if second != nil {
		t.Fatal("second enter started another upload")
	}

	started, ok := first().(uploadStartedMsg)
	if !ok {
		t.Fatal("first upload did not start")
	}
	m, _ = update(t, m, started)
	if m.upload.pending || !m.upload.uploading {
		t.Fatalf("pending = %v uploading = %v, want false/true", m.upload.pending, m.upload.uploading)
	}
	for m.upload.uploading {
		next := waitForUpload(started.events)()
		if next == nil {
			t.Fatal("events closed before completion")
		}
		m, _ = update(t, m, next)
	}
	if len(svc.uploaded) != 1 {
		t.Fatalf("uploads = %v, want 1", svc.uploaded)
	}
}

func TestUploadOpenFailureAllowsRetry(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	missing := filepath.Join(t.TempDir(), "missing.mp4")

	m, _ = update(t, m, keyRunes("u"))
	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes(missing))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter did not start an upload")
	}
	m, _ = update(t, m, cmd())
	if m.upload.pending || m.upload.err == "" {
		t.Fatalf("pending = %v err = %q, want cleared with an error", m.upload.pending, m.upload.err)
	}

	_, retry := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if retry == nil {
		t.Fatal("enter after a failed open did not retry")
	}
}

func TestActivityLoadsLogLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finder.log")
	content := `time=2026-03-01T12:00:00.000Z level=WARN msg="refresh failed" component=health error="unable to connect to server"` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	m := New(Options{Client: &fakeService{}, LogPath: path, PrefsPath: filepath.Join(t.TempDir(), "p.toml")})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, cmd := update(t, m, keyRunes("a"))
	if cmd == nil {
		t.Fatal("activity view returned nil cmd")
	}
	m, _ = update(t, m, cmd())
	if len(m.activity.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(m.activity.lines))
	}
	if view := m.View(); !strings.Contains(view, "refresh failed") {
		t.Fatalf("view missing log message:\n%s", view)
	}

	m, _ = update(t, m, keyRunes(" "))
	if m.activity.follow {
		t.Fatal("space did not pause follow")
	}
}

func TestHeaderShowsStatus(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 30})

	if view := m.View(); !strings.Contains(view, "Checking...") {
		t.Fatalf("view before health:\n%s", view)
	}

	m, _ = update(t, m, snapshotMsg(state.Snapshot{
		HasHealth:  true,
		Health:     finder.Health{Status: finder.HealthHealthy},
		HasObjects: true,
		Objects:    []finder.TrackedObject{{ID: "1", Name: "keys"}},
	}))
	view := m.View()
	for _, want := range []string{"Online", "Objects: 1", "keys"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = update(t, m, snapshotMsg(state.Snapshot{HasHealth: true, ConsecutiveFailures: 2}))
	if view := m.View(); !strings.Contains(view, "Offline") {
		t.Fatalf("view while failing:\n%s", view)
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, keyRunes("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", saved.Theme)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, keyRunes("?"))
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if view := m.View(); !strings.Contains(view, "Keyboard Shortcuts") {
		t.Fatalf("help view:\n%s", view)
	}
	m, _ = update(t, m, keyRunes("x"))
	if m.showHelp {
		t.Fatal("help still shown")
	}
}
