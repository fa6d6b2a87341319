package editor

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the editor.
type Styles struct {
	App          lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	URI          lipgloss.Style
	Missing      lipgloss.Style
	Empty        lipgloss.Style
	Prompt       lipgloss.Style
	Message      lipgloss.Style
	Error        lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// DefaultStyles returns the default style configuration: grayscale with a
// single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	warn := lipgloss.AdaptiveColor{Light: "#8A5A44", Dark: "#B07A5F"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		URI: lipgloss.NewStyle().
			Foreground(subtle),

		Missing: lipgloss.NewStyle().
			Foreground(warn),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		Prompt: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Message: lipgloss.NewStyle().
			Foreground(subtle),

		Error: lipgloss.NewStyle().
			Foreground(warn),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
