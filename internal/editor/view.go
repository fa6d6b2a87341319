package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/places/internal/model"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string
	Desc string
}

// hints returns the hints for the current mode.
func (m Model) hints() []Hint {
	if m.mode != ModeNormal {
		return []Hint{
			{Key: m.keys.Confirm.Help().Key, Desc: m.keys.Confirm.Help().Desc},
			{Key: m.keys.Cancel.Help().Key, Desc: m.keys.Cancel.Help().Desc},
		}
	}
	return []Hint{
		{Key: "j/k", Desc: "move"},
		{Key: "J/K", Desc: "reorder"},
		{Key: "a", Desc: "add"},
		{Key: "e", Desc: "rename"},
		{Key: "E", Desc: "location"},
		{Key: "d", Desc: "delete"},
		{Key: "y", Desc: "copy"},
		{Key: "r", Desc: "reload"},
		{Key: "q", Desc: "quit"},
	}
}

func (m Model) renderHints() string {
	hints := m.hints()
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = m.styles.HintKey.Render(h.Key) + ":" + m.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}

// View implements tea.Model.
func (m Model) View() string {
	title := m.styles.Title.Render(fmt.Sprintf("Bookmarks (%d)", len(m.rows)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.renderRows(),
		"",
		m.renderMessageLine(),
		m.renderHints(),
	)
	return m.styles.App.Render(content)
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return m.styles.Empty.Render("No bookmarks. Press a to add one.")
	}

	rows := visibleRows(m.height)
	offset := viewportOffset(m.cursor, len(m.rows), rows)
	end := min(offset+rows, len(m.rows))
	// padding of the app style plus the item's own left padding
	width := max(m.width-5, 10)

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(e model.Entry, selected bool, width int) string {
	title := iconGlyph(e) + " " + e.Title()
	suffix := ""
	if e.Missing {
		suffix = " (missing)"
	}

	// the URI only fits when the title leaves room for it
	uri := ""
	if e.URI != e.Title() {
		room := width - len([]rune(title)) - len([]rune(suffix)) - 2
		if room >= 12 {
			uri = "  " + truncate(e.URI, room)
		}
	}
	title = truncate(title, width-len([]rune(suffix)))

	if selected {
		return m.styles.ItemSelected.Render(title + suffix + uri)
	}
	line := m.styles.Item.Render(title)
	if suffix != "" {
		line += m.styles.Missing.Render(suffix)
	}
	if uri != "" {
		line += m.styles.URI.Render(uri)
	}
	return line
}

func (m Model) renderMessageLine() string {
	switch m.mode {
	case ModeAdd:
		return m.styles.Prompt.Render("Add: ") + m.input.View()
	case ModeRename:
		return m.styles.Prompt.Render("Name: ") + m.input.View()
	case ModeRelocate:
		return m.styles.Prompt.Render("Location: ") + m.input.View()
	}

	if m.message != "" {
		if m.failed {
			return m.styles.Error.Render(m.message)
		}
		return m.styles.Message.Render(m.message)
	}
	if busy, kind, _ := m.list.Busy(); busy {
		return m.styles.Message.Render(kind.String() + "…")
	}
	return ""
}

// iconGlyph maps an entry's icon name onto a single terminal glyph.
func iconGlyph(e model.Entry) string {
	if e.Missing {
		return "!"
	}
	switch e.Icon {
	case model.IconHome:
		return "~"
	case model.IconRoot:
		return "/"
	case model.IconRemote:
		return "@"
	case model.IconFolder:
		return "▸"
	default:
		return "·"
	}
}
