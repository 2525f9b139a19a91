package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewObjects  key.Binding
	ViewSearch   key.Binding
	ViewUpload   key.Binding
	ViewActivity key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Objects
	Teach    key.Binding
	QuickAdd key.Binding
	Delete   key.Binding
	Details  key.Binding

	// Search
	Focus      key.Binding
	Suggestion key.Binding

	// Upload
	CheckStatus key.Binding

	// Activity
	ToggleFollow key.Binding

	// Forms
	Confirm  key.Binding
	Submit   key.Binding
	NextItem key.Binding
	Yes      key.Binding
	No       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel / leave input"),
		),

		ViewObjects: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Objects"),
		),
		ViewSearch: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Search"),
		),
		ViewUpload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activity"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Teach: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Teach new object"),
		),
		QuickAdd: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Quick-add common objects"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete object"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Reload details"),
		),

		Focus: key.NewBinding(
			key.WithKeys("/", "i"),
			key.WithHelp("/", "Type a query"),
		),
		Suggestion: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "Use suggestion"),
		),

		CheckStatus: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Processing status"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Submit form"),
		),
		NextItem: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Next field"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewObjects, k.ViewSearch, k.ViewUpload, k.ViewActivity},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Teach, k.QuickAdd, k.Delete, k.Details},
		{k.Focus, k.Suggestion, k.CheckStatus, k.ToggleFollow},
		{k.Refresh, k.CycleTheme, k.Help, k.Quit},
	}
}
