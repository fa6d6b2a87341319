package storage

import (
	"bufio"
	"io"
	"strings"
)

// Line is one decoded entry of the bookmarks file.
type Line struct {
	URI  string
	Name *string // nil = no custom name
}

// maxLineSize bounds a single line. GTK writes short lines, but a pasted label
// can exceed bufio's 64KiB default.
const maxLineSize = 1 << 20

// Decode parses the line format: "<uri>" or "<uri> <label>".
//
// Blank lines and lines starting with whitespace are skipped and counted in
// skipped. The label is everything after the first space, verbatim. URIs are
// not validated here.
func Decode(r io.Reader) (lines []Line, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	for sc.Scan() {
		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" || text[0] == ' ' || text[0] == '\t' {
			skipped++
			continue
		}

		uri, label, found := strings.Cut(text, " ")
		line := Line{URI: uri}
		if found && label != "" {
			line.Name = &label
		}
		lines = append(lines, line)
	}

	return lines, skipped, sc.Err()
}

// Encode writes lines in order. Newlines inside names become spaces, empty
// names are omitted and entries without a URI are dropped.
func Encode(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if l.URI == "" {
			continue
		}
		bw.WriteString(l.URI)
		if l.Name != nil && *l.Name != "" {
			bw.WriteByte(' ')
			bw.WriteString(sanitizeName(*l.Name))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

var nameReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func sanitizeName(name string) string {
	return nameReplacer.Replace(name)
}
