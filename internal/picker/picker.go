// Package picker lets the user choose one of several search results.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/places/internal/search"
)

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Underline(true)
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).MarginBottom(1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type keyMap struct {
	Up, Down, First, Last, Choose, Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	First:  key.NewBinding(key.WithKeys("g", "home")),
	Last:   key.NewBinding(key.WithKeys("G", "end")),
	Choose: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
}

// Picker is a one-shot program that returns the chosen search result.
type Picker struct {
	results   []search.SearchResult
	query     string
	cursor    int
	chosen    bool
	cancelled bool
	height    int
}

// New creates a Picker over results. query is only shown in the header.
func New(results []search.SearchResult, query string) Picker {
	return Picker{results: results, query: query, height: 24}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, keys.Choose):
			// nothing to choose from counts as giving up
			p.chosen = len(p.results) > 0
			p.cancelled = !p.chosen
			return p, tea.Quit
		case key.Matches(msg, keys.Down):
			p.cursor = min(p.cursor+1, max(len(p.results)-1, 0))
		case key.Matches(msg, keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, keys.First):
			p.cursor = 0
		case key.Matches(msg, keys.Last):
			p.cursor = max(len(p.results)-1, 0)
		}
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	// two lines per result plus header and footer
	fit := max((p.height-5)/2, 1)
	first := 0
	if p.cursor >= fit {
		first = p.cursor - fit + 1
	}
	last := min(first+fit, len(p.results))

	for i := first; i < last; i++ {
		r := p.results[i]
		marker, style := "  ", titleStyle
		if i == p.cursor {
			marker, style = "> ", cursorStyle
		}

		line := marker + highlight(r.Entry.Title(), r.MatchedIndexes, style)
		if r.Entry.Missing {
			line += missingStyle.Render(" (missing)")
		}
		b.WriteString(line + "\n")
		b.WriteString("   " + targetStyle.Render(r.Entry.URI) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k: move  Enter: open  q/Esc: cancel"))
	return b.String()
}

// highlight renders the characters of s at the matched byte offsets in
// matchStyle and the rest in base.
func highlight(s string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(s)
	}
	hit := make(map[int]struct{}, len(matched))
	for _, i := range matched {
		hit[i] = struct{}{}
	}

	var b strings.Builder
	for i, r := range s {
		if _, ok := hit[i]; ok {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// Selected returns the chosen result, or false if the user cancelled.
func (p Picker) Selected() (search.SearchResult, bool) {
	if !p.chosen || p.cursor >= len(p.results) {
		return search.SearchResult{}, false
	}
	return p.results[p.cursor], true
}

// Cancelled reports whether the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
