// Package editor is the interactive terminal editor for the bookmark list.
//
// The editor never keeps its own copy of the list's truth: every change
// notification from the list rebuilds the rows from a fresh snapshot.
package editor

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/places/internal/bookmarks"
	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/model"
)

// Mode is the current input mode of the editor.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeRename
	ModeRelocate
)

// changedMsg is delivered once per burst of list notifications.
type changedMsg struct{}

// Model is the bubbletea model of the list editor.
type Model struct {
	list   *bookmarks.List
	keys   KeyMap
	styles Styles
	copyFn func(string) error

	sub     bookmarks.Subscription
	changes chan struct{}

	rows   []model.Entry
	cursor int

	mode  Mode
	input textinput.Model

	message string
	failed  bool

	// For gg command
	lastKeyWasG bool

	width  int
	height int
}

// Params holds parameters for creating a new Model.
type Params struct {
	List   *bookmarks.List
	Keys   *KeyMap            // optional, uses default if nil
	Styles *Styles            // optional, uses default if nil
	Copy   func(string) error // optional, defaults to the system clipboard
}

// New creates an editor bound to list and subscribes to its changes. Call
// Close when the program has finished.
func New(params Params) Model {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	copyFn := params.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	input := textinput.New()
	input.CharLimit = 4096

	m := Model{
		list:    params.List,
		keys:    keys,
		styles:  styles,
		copyFn:  copyFn,
		changes: make(chan struct{}, 1),
		input:   input,
		width:   80,
		height:  24,
	}
	if w, h, ok := parseGeometry(params.List.WindowGeometry()); ok {
		m.width, m.height = w, h
	}

	changes := m.changes
	m.sub = params.List.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
			// a refresh is already pending
		}
	})

	m.refresh()
	return m
}

// Close unsubscribes from the list.
func (m Model) Close() {
	m.list.Unsubscribe(m.sub)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks until the list reports a change.
func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

// refresh rebuilds the rows from the list and keeps the selection on the
// same entry when it still exists.
func (m *Model) refresh() {
	var selected *model.Entry
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		e := m.rows[m.cursor]
		selected = &e
	}

	m.rows = m.list.Snapshot()

	if selected != nil {
		for i, e := range m.rows {
			if sameEntry(e, *selected) {
				m.cursor = i
				return
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func sameEntry(a, b model.Entry) bool {
	if a.URI != b.URI {
		return false
	}
	if a.CustomName == nil || b.CustomName == nil {
		return a.CustomName == nil && b.CustomName == nil
	}
	return *a.CustomName == *b.CustomName
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode != ModeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// gg needs two presses; any other key resets it
	if key.Matches(msg, m.keys.Top) {
		if m.lastKeyWasG {
			m.cursor = 0
			m.lastKeyWasG = false
		} else {
			m.lastKeyWasG = true
		}
		return m, nil
	}
	m.lastKeyWasG = false
	m.message = ""
	m.failed = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.list.SetWindowGeometry(formatGeometry(m.width, m.height))
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Bottom):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}

	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < len(m.rows)-1 {
			// drop below the next entry
			m.apply(m.list.MoveItem(m.cursor, m.cursor+2))
		}

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 && m.cursor < len(m.rows) {
			m.apply(m.list.MoveItem(m.cursor, m.cursor-1))
		}

	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.selected(); ok {
			if err := m.list.DeleteItemAt(m.cursor); err != nil {
				m.apply(err)
			} else {
				m.refresh()
				m.message = fmt.Sprintf("Deleted %s", e.Title())
			}
		}

	case key.Matches(msg, m.keys.YankURI):
		if e, ok := m.selected(); ok {
			if err := m.copyFn(e.URI); err != nil {
				m.setError(fmt.Errorf("copy: %w", err))
			} else {
				m.message = "Copied " + e.URI
			}
		}

	case key.Matches(msg, m.keys.Reload):
		m.list.Reload()
		m.message = "Reloading " + m.list.Path()

	case key.Matches(msg, m.keys.Add):
		return m.startInput(ModeAdd, "")

	case key.Matches(msg, m.keys.Rename):
		if e, ok := m.selected(); ok {
			value := ""
			if e.CustomName != nil {
				value = *e.CustomName
			}
			return m.startInput(ModeRename, value)
		}

	case key.Matches(msg, m.keys.Relocate):
		if e, ok := m.selected(); ok {
			return m.startInput(ModeRelocate, e.URI)
		}
	}

	return m, nil
}

func (m Model) startInput(mode Mode, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch mode {
	case ModeAdd:
		m.input.Placeholder = "/path/or/uri"
	case ModeRename:
		m.input.Placeholder = "name (empty to reset)"
	default:
		m.input.Placeholder = ""
	}
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.endInput()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := m.input.Value()
		mode := m.mode
		m.endInput()
		switch mode {
		case ModeAdd:
			m.addLocation(value)
		case ModeRename:
			m.apply(m.list.RenameItemAt(m.cursor, &value))
		case ModeRelocate:
			m.relocate(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) endInput() {
	m.mode = ModeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) addLocation(value string) {
	loc, err := location.Parse(value)
	if err != nil {
		m.setError(err)
		return
	}
	b := model.NewBookmarkAt(loc, nil, nil)
	defer b.Close()

	if m.list.Contains(b) {
		m.setError(fmt.Errorf("%s is already bookmarked", loc))
		return
	}
	if err := m.list.Append(b); err != nil {
		m.setError(err)
		return
	}
	m.rows = m.list.Snapshot()
	m.cursor = len(m.rows) - 1
	m.message = "Added " + loc.String()
}

func (m *Model) relocate(value string) {
	e, ok := m.selected()
	if !ok {
		return
	}
	loc, err := location.Parse(value)
	if err != nil {
		m.setError(err)
		return
	}
	if loc.String() == e.URI {
		return
	}
	b := model.NewBookmarkAt(loc, e.CustomName, nil)
	defer b.Close()

	index := m.cursor
	if err := m.list.ReplaceItemAt(index, b); err != nil {
		m.apply(err)
		return
	}
	m.rows = m.list.Snapshot()
	m.cursor = index
	m.clampCursor()
}

// apply reports err, or picks up the change a successful mutation made.
func (m *Model) apply(err error) {
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()
}

func (m *Model) setError(err error) {
	m.message = err.Error()
	m.failed = true
}

func (m Model) selected() (model.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Entry{}, false
	}
	return m.rows[m.cursor], true
}

// Mode returns the current input mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Cursor returns the selected row.
func (m Model) Cursor() int {
	return m.cursor
}

// Rows returns the entries currently shown.
func (m Model) Rows() []model.Entry {
	return m.rows
}
