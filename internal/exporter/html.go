package exporter

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nikbrunner/places/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: $XDG_DOWNLOAD_DIR/places-export-YYYY-MM-DD.html
func DefaultExportPath() string {
	filename := fmt.Sprintf("places-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(xdg.UserDirs.Download, filename)
}

// ExportHTML exports the entries, in order, to Netscape bookmark HTML.
// Entries without a custom name are written with their derived name.
func ExportHTML(entries []model.Entry) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, e := range entries {
		fmt.Fprintf(&b,
			"    <DT><A HREF=\"%s\">%s</A>\n",
			html.EscapeString(e.URI),
			html.EscapeString(e.Title()),
		)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}
