package editor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	ellipsis = "…"

	// Lines taken by everything but the entry rows: padding, title,
	// blank line, prompt/message line and hints.
	chromeLines = 6

	minRows = 3
)

// truncate shortens text to maxWidth runes, ending it with an ellipsis
// when anything was cut.
func truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	if maxWidth == 1 {
		return ellipsis
	}
	return string(runes[:maxWidth-1]) + ellipsis
}

// visibleRows is how many entry rows fit into a terminal of the given height.
func visibleRows(height int) int {
	rows := height - chromeLines
	if rows < minRows {
		return minRows
	}
	return rows
}

// viewportOffset returns the first row to draw so that selected stays
// visible, keeping it roughly centered.
func viewportOffset(selected, total, rows int) int {
	if total <= rows {
		return 0
	}
	offset := max(selected-rows/2, 0)
	return min(offset, total-rows)
}

// formatGeometry renders a terminal size as "WxH".
func formatGeometry(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// parseGeometry reads a "WxH" geometry string. Anything malformed or
// non-positive is rejected.
func parseGeometry(s string) (width, height int, ok bool) {
	w, h, found := strings.Cut(strings.TrimSpace(s), "x")
	if !found {
		return 0, 0, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, false
	}
	height, err = strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}
