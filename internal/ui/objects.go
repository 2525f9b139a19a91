package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/finder"
)

// objectsState holds the Objects view state.
type objectsState struct {
	selected int
	detail   *finder.TrackedObject // last fetched copy of the selected object
	quickAdd bool
	busy     bool
	form     teachForm
}

func newObjectsState() objectsState {
	return objectsState{form: newTeachForm()}
}

// teachForm collects a name and a description for a new object.
type teachForm struct {
	active bool
	name   textinput.Model
	alias  textarea.Model
	focus  int // 0 name, 1 alias
	err    string
}

func newTeachForm() teachForm {
	name := textinput.New()
	name.Placeholder = "keys"
	name.Prompt = ""
	name.CharLimit = finder.MaxObjectNameLen

	alias := textarea.New()
	alias.Placeholder = "car keys with a blue keychain"
	alias.ShowLineNumbers = false
	alias.CharLimit = finder.MaxObjectAliasLen
	alias.SetHeight(3)
	alias.KeyMap.InsertNewline.SetEnabled(false)

	return teachForm{name: name, alias: alias}
}

func (f *teachForm) open(name, alias string) tea.Cmd {
	f.active = true
	f.err = ""
	f.name.SetValue(name)
	f.alias.SetValue(alias)
	f.focus = 0
	f.alias.Blur()
	return f.name.Focus()
}

func (f *teachForm) close() {
	f.active = false
	f.err = ""
	f.name.Reset()
	f.alias.Reset()
	f.name.Blur()
	f.alias.Blur()
}

func (f *teachForm) toggleFocus() tea.Cmd {
	if f.focus == 0 {
		f.focus = 1
		f.name.Blur()
		return f.alias.Focus()
	}
	f.focus = 0
	f.alias.Blur()
	return f.name.Focus()
}

func (f *teachForm) resize(width int) {
	w := max(min(width-6, 70), 10)
	f.name.Width = w
	f.alias.SetWidth(w)
}

// Messages

type objectTaughtMsg struct {
	object *finder.TrackedObject
	err    error
}

type objectDeletedMsg struct {
	name         string
	confirmation *finder.Confirmation
	err          error
}

type objectDetailMsg struct {
	object *finder.TrackedObject
	err    error
}

// Commands

func (m Model) teachCmd(name, alias string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		obj, err := client.TeachObject(ctx, name, alias)
		return objectTaughtMsg{object: obj, err: err}
	}
}

func (m Model) deleteCmd(obj finder.TrackedObject) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		conf, err := client.DeleteTrackedObject(ctx, obj.ID)
		return objectDeletedMsg{name: obj.Name, confirmation: conf, err: err}
	}
}

func (m Model) detailCmd(id finder.ObjectID) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		obj, err := client.GetTrackedObject(ctx, id)
		return objectDetailMsg{object: obj, err: err}
	}
}

// selectedObject returns the highlighted object, if any.
func (m Model) selectedObject() (finder.TrackedObject, bool) {
	objs := m.snapshot.Objects
	if m.objects.selected < 0 || m.objects.selected >= len(objs) {
		return finder.TrackedObject{}, false
	}
	return objs[m.objects.selected], true
}

func (m *Model) clampSelection() {
	n := len(m.snapshot.Objects)
	switch {
	case n == 0:
		m.objects.selected = 0
	case m.objects.selected >= n:
		m.objects.selected = n - 1
	case m.objects.selected < 0:
		m.objects.selected = 0
	}
	if sel, ok := m.selectedObject(); !ok || m.objects.detail == nil || m.objects.detail.ID != sel.ID {
		m.objects.detail = nil
	}
}

func (m *Model) moveSelection(delta int) {
	m.objects.selected += delta
	m.clampSelection()
}

// handleObjectsKey handles keys in the Objects view when no form is open.
func (m Model) handleObjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.objects.quickAdd {
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 {
			common := m.snapshot.CommonObjects
			if n > len(common) {
				return m, nil
			}
			tpl := common[n-1]
			m.objects.quickAdd = false
			return m, m.objects.form.open(tpl.Name, tpl.Alias)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.objects.quickAdd = false
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Top):
		m.objects.selected = 0
		m.clampSelection()
	case key.Matches(msg, m.keys.Bottom):
		m.objects.selected = len(m.snapshot.Objects) - 1
		m.clampSelection()
	case key.Matches(msg, m.keys.Teach):
		m.objects.quickAdd = false
		return m, m.objects.form.open("", "")
	case key.Matches(msg, m.keys.QuickAdd):
		m.objects.quickAdd = !m.objects.quickAdd
	case key.Matches(msg, m.keys.Delete):
		obj, ok := m.selectedObject()
		if !ok || m.client == nil {
			return m, nil
		}
		deleteCmd := m.deleteCmd(obj)
		m.modal = newConfirmModal(
			"Delete object",
			fmt.Sprintf("Stop tracking %q? Its sighting history is removed too.", obj.Name),
			func() tea.Cmd { return deleteCmd },
		)
	case key.Matches(msg, m.keys.Details):
		obj, ok := m.selectedObject()
		if !ok || m.client == nil {
			return m, nil
		}
		return m, m.detailCmd(obj.ID)
	}
	return m, nil
}

// handleFormKey handles keys while the teach form is open.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := &m.objects.form

	switch {
	case key.Matches(msg, m.keys.Escape):
		form.close()
		return m, nil
	case key.Matches(msg, m.keys.NextItem):
		return m, form.toggleFocus()
	case key.Matches(msg, m.keys.Submit),
		key.Matches(msg, m.keys.Confirm) && form.focus == 1:
		return m.submitTeach()
	case key.Matches(msg, m.keys.Confirm):
		return m, form.toggleFocus()
	}

	var cmd tea.Cmd
	if form.focus == 0 {
		form.name, cmd = form.name.Update(msg)
	} else {
		form.alias, cmd = form.alias.Update(msg)
	}
	return m, cmd
}

func (m Model) submitTeach() (tea.Model, tea.Cmd) {
	if m.objects.busy || m.client == nil {
		return m, nil
	}
	m.objects.busy = true
	m.objects.form.err = ""
	return m, m.teachCmd(m.objects.form.name.Value(), m.objects.form.alias.Value())
}

func (m Model) handleObjectTaught(msg objectTaughtMsg) (tea.Model, tea.Cmd) {
	m.objects.busy = false
	if msg.err != nil {
		if m.objects.form.active {
			m.objects.form.err = errorText(msg.err)
		} else {
			m.setFlash("Teach failed: "+errorText(msg.err), true)
		}
		return m, nil
	}
	m.objects.form.close()
	name := ""
	if msg.object != nil {
		name = msg.object.Name
	}
	m.setFlash(fmt.Sprintf("Now tracking %q", name), false)
	return m, m.refreshCmd()
}

func (m Model) handleObjectDeleted(msg objectDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setFlash("Delete failed: "+errorText(msg.err), true)
		return m, nil
	}
	text := fmt.Sprintf("Deleted %q", msg.name)
	if msg.confirmation != nil && strings.TrimSpace(msg.confirmation.Message) != "" {
		text = msg.confirmation.Message
	}
	m.objects.detail = nil
	m.setFlash(text, false)
	return m, m.refreshCmd()
}

func (m Model) handleObjectDetail(msg objectDetailMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setFlash("Could not load object: "+errorText(msg.err), true)
		return m, nil
	}
	m.objects.detail = msg.object
	return m, nil
}

// renderObjects renders the Objects view.
func (m Model) renderObjects() string {
	list := m.renderObjectList()
	side := m.renderObjectSide()

	if m.width >= LayoutSplitWidth {
		listWidth := m.width * 2 / 5
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(listWidth).Render(list),
			lipgloss.NewStyle().Width(m.width-listWidth).Render(side),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, list, side)
}

func (m Model) renderObjectList() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render("Tracked objects"))
	b.WriteString("\n")

	if !m.snapshot.HasObjects {
		b.WriteString(styles.MutedText.Render("Loading..."))
		return b.String()
	}
	if len(m.snapshot.Objects) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing tracked yet. Press n to teach an object or c for common ones."))
		return b.String()
	}

	now := m.now()
	nameWidth := 18
	for i, obj := range m.snapshot.Objects {
		seen := "not seen yet"
		if t := obj.LastSeenAt(); !t.IsZero() {
			seen = relativeTime(t, now)
		}
		line := fmt.Sprintf(" %s %s", padRight(truncate(obj.Name, nameWidth), nameWidth), seen)
		if i == m.objects.selected {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderObjectSide() string {
	switch {
	case m.objects.form.active:
		return m.renderTeachForm()
	case m.objects.quickAdd:
		return m.renderQuickAdd()
	default:
		return m.renderObjectDetail()
	}
}

func (m Model) renderObjectDetail() string {
	styles := m.theme.Styles()
	obj, ok := m.selectedObject()
	if !ok {
		return ""
	}
	if m.objects.detail != nil && m.objects.detail.ID == obj.ID {
		obj = *m.objects.detail
	}

	now := m.now()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(obj.Name))
	b.WriteString("\n")
	if obj.Alias != "" {
		b.WriteString(styles.MutedText.Render(obj.Alias))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	writeField(&b, styles, "ID", string(obj.ID))
	if created := obj.ParsedCreatedAt(); !created.IsZero() {
		writeField(&b, styles, "Added", formatSeenAt(created, now))
	}
	if seen := obj.LastSeenAt(); !seen.IsZero() {
		writeField(&b, styles, "Last seen", formatSeenAt(seen, now))
		if obj.LocationPhrase != "" {
			writeField(&b, styles, "Where", obj.LocationPhrase)
		}
		if obj.Confidence != nil {
			b.WriteString(styles.MutedText.Render(padRight("Confidence", 11)))
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.ConfidenceColor(*obj.Confidence))).
				Render(formatConfidence(obj.Confidence)))
			b.WriteString("\n")
		}
		if obj.VideoNo != "" {
			writeField(&b, styles, "Video", obj.VideoNo)
		}
	} else {
		writeField(&b, styles, "Last seen", "not seen yet")
	}

	return styles.Card.Render(strings.TrimRight(b.String(), "\n"))
}

func writeField(b *strings.Builder, styles Styles, label, value string) {
	b.WriteString(styles.MutedText.Render(padRight(label, 11)))
	b.WriteString(styles.Text.Render(value))
	b.WriteString("\n")
}

func (m Model) renderTeachForm() string {
	styles := m.theme.Styles()
	form := m.objects.form

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Teach a new object"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Name"))
	b.WriteString("\n")
	b.WriteString(form.name.View())
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Description"))
	b.WriteString("\n")
	b.WriteString(form.alias.View())
	b.WriteString("\n")
	if m.objects.busy {
		b.WriteString(styles.InfoText.Render("Saving..."))
	} else if form.err != "" {
		b.WriteString(styles.DangerText.Render(form.err))
	}

	return styles.FocusedCard.Render(b.String())
}

func (m Model) renderQuickAdd() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Common objects"))
	b.WriteString("\n")
	if len(m.snapshot.CommonObjects) == 0 {
		b.WriteString(styles.MutedText.Render("No templates available"))
		return styles.Card.Render(b.String())
	}
	for i, tpl := range m.snapshot.CommonObjects {
		if i >= 9 {
			break
		}
		b.WriteString(styles.AccentText.Render(fmt.Sprintf("%d ", i+1)))
		b.WriteString(styles.Text.Render(tpl.Name))
		if tpl.Alias != "" {
			b.WriteString(styles.FaintText.Render("  " + truncate(tpl.Alias, 40)))
		}
		b.WriteString("\n")
	}
	return styles.Card.Render(strings.TrimRight(b.String(), "\n"))
}
