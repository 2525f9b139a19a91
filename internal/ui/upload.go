package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/five82/finder/internal/finder"
)

// uploadState holds the Upload view state.
type uploadState struct {
	input    textinput.Model
	progress progress.Model
	spinner  spinner.Model

	pending   bool // file is being opened, no events yet
	uploading bool
	fileName  string
	sent      int64
	total     int64
	events    <-chan tea.Msg

	result   *finder.UploadResult
	status   *finder.UploadStatus
	checking bool
	err      string
}

func newUploadState() uploadState {
	input := textinput.New()
	input.Placeholder = "~/Videos/living-room.mp4"
	input.Prompt = "file: "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return uploadState{
		input:    input,
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  sp,
	}
}

// Messages

type uploadStartedMsg struct {
	name   string
	size   int64
	events <-chan tea.Msg
}

type uploadProgressMsg struct {
	sent  int64
	total int64
}

type uploadDoneMsg struct {
	result *finder.UploadResult
	err    error
}

type uploadStatusMsg struct {
	status *finder.UploadStatus
	err    error
}

// startUploadCmd opens the file and streams it to the service. Progress and
// completion arrive on the returned channel.
func (m Model) startUploadCmd(path string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		file, err := finder.OpenVideoFile(expandHome(path))
		if err != nil {
			return uploadDoneMsg{err: err}
		}

		events := make(chan tea.Msg, 16)
		file.Progress = func(sent, total int64) {
			select {
			case events <- uploadProgressMsg{sent: sent, total: total}:
			default:
				// Drop intermediate updates when the UI lags.
			}
		}

		go func() {
			defer close(events)
			res, err := client.UploadVideo(ctx, file)
			_ = file.Close()
			events <- uploadDoneMsg{result: res, err: err}
		}()

		return uploadStartedMsg{name: file.Name, size: file.Size, events: events}
	}
}

// waitForUpload delivers the next upload event.
func waitForUpload(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) uploadStatusCmd(videoNo string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		st, err := client.GetUploadStatus(ctx, videoNo)
		return uploadStatusMsg{status: st, err: err}
	}
}

// handleUploadKey handles keys in the Upload view when the input is blurred.
func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Focus):
		return m, m.upload.input.Focus()
	case key.Matches(msg, m.keys.Confirm):
		return m.beginUpload()
	case key.Matches(msg, m.keys.CheckStatus):
		if m.upload.result == nil || m.upload.result.VideoNo == "" || m.client == nil || m.upload.checking {
			return m, nil
		}
		m.upload.checking = true
		return m, m.uploadStatusCmd(m.upload.result.VideoNo)
	}
	return m, nil
}

// handleUploadInputKey handles keys while the path input is focused.
func (m Model) handleUploadInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.upload.input.Blur()
		return m.beginUpload()
	case tea.KeyEsc:
		m.upload.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.upload.input, cmd = m.upload.input.Update(msg)
	return m, cmd
}

func (m Model) beginUpload() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.upload.input.Value())
	if m.upload.pending || m.upload.uploading || m.client == nil {
		return m, nil
	}
	if path == "" {
		m.upload.err = "enter the path of a video file"
		return m, nil
	}
	m.upload.err = ""
	m.upload.result = nil
	m.upload.status = nil
	m.upload.pending = true
	return m, m.startUploadCmd(path)
}

func (m Model) handleUploadStarted(msg uploadStartedMsg) (tea.Model, tea.Cmd) {
	m.upload.pending = false
	m.upload.uploading = true
	m.upload.fileName = msg.name
	m.upload.sent = 0
	m.upload.total = msg.size
	m.upload.events = msg.events
	return m, tea.Batch(waitForUpload(msg.events), m.upload.spinner.Tick)
}

func (m Model) handleUploadProgress(msg uploadProgressMsg) (tea.Model, tea.Cmd) {
	m.upload.sent = msg.sent
	if msg.total > 0 {
		m.upload.total = msg.total
	}
	if m.upload.events == nil {
		return m, nil
	}
	return m, waitForUpload(m.upload.events)
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	m.upload.pending = false
	m.upload.uploading = false
	m.upload.events = nil
	if msg.err != nil {
		m.upload.err = errorText(msg.err)
		m.setFlash("Upload failed: "+m.upload.err, true)
		return m, nil
	}
	m.upload.result = msg.result
	m.upload.sent = m.upload.total
	name := m.upload.fileName
	if msg.result != nil && msg.result.FileName != "" {
		name = msg.result.FileName
	}
	m.setFlash(fmt.Sprintf("Uploaded %s", name), false)
	return m, m.refreshCmd()
}

func (m Model) handleUploadStatus(msg uploadStatusMsg) (tea.Model, tea.Cmd) {
	m.upload.checking = false
	if msg.err != nil {
		m.setFlash("Status check failed: "+errorText(msg.err), true)
		return m, nil
	}
	m.upload.status = msg.status
	return m, nil
}

// renderUpload renders the Upload view.
func (m Model) renderUpload() string {
	styles := m.theme.Styles()
	u := m.upload
	var b strings.Builder

	inputStyle := styles.Card
	if u.input.Focused() {
		inputStyle = styles.FocusedCard
	}
	b.WriteString(inputStyle.Render(u.input.View()))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("Videos up to %s. The service scans them for tracked objects.",
		humanize.IBytes(uint64(finder.MaxVideoSize)))))
	b.WriteString("\n\n")

	switch {
	case u.uploading:
		b.WriteString(u.spinner.View())
		b.WriteString(styles.Text.Render(" Uploading " + truncateMiddle(u.fileName, 50)))
		b.WriteString("\n")
		b.WriteString(u.progress.ViewAs(uploadFraction(u.sent, u.total)))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%s of %s",
			humanize.IBytes(uint64(max(u.sent, 0))), humanize.IBytes(uint64(max(u.total, 0))))))
	case u.pending:
		b.WriteString(styles.MutedText.Render("Opening file..."))
	case u.err != "":
		b.WriteString(styles.DangerText.Render(u.err))
	case u.result != nil:
		b.WriteString(m.renderUploadResult(styles))
	}

	return b.String()
}

func (m Model) renderUploadResult(styles Styles) string {
	r := m.upload.result
	var b strings.Builder

	b.WriteString(styles.SuccessText.Render("Upload complete"))
	b.WriteString("\n\n")
	writeField(&b, styles, "File", r.FileName)
	writeField(&b, styles, "Video", r.VideoNo)
	if r.FileSize > 0 {
		writeField(&b, styles, "Size", humanize.IBytes(uint64(r.FileSize)))
	}
	if r.Message != "" {
		writeField(&b, styles, "Message", r.Message)
	}

	b.WriteString("\n")
	switch st := m.upload.status; {
	case m.upload.checking:
		b.WriteString(styles.InfoText.Render("Checking processing status..."))
	case st != nil:
		writeField(&b, styles, "Status", st.Status)
		if st.Message != "" {
			writeField(&b, styles, "Detail", st.Message)
		}
		if st.ProcessedAt != "" {
			writeField(&b, styles, "Processed", st.ProcessedAt)
		}
		if st.EstimatedCompletion != "" {
			writeField(&b, styles, "ETA", st.EstimatedCompletion)
		}
	default:
		b.WriteString(styles.FaintText.Render("Press p to check processing status"))
	}

	return styles.Card.Render(strings.TrimRight(b.String(), "\n"))
}

func uploadFraction(sent, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return min(max(float64(sent)/float64(total), 0), 1)
}

// expandHome resolves a leading ~/ in a user-typed path.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
