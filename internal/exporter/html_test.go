package exporter

import (
	"strings"
	"testing"

	"github.com/nikbrunner/places/internal/importer"
	"github.com/nikbrunner/places/internal/model"
)

func name(s string) *string { return &s }

func TestExportHTML_Empty(t *testing.T) {
	html := ExportHTML(nil)

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
	if strings.Contains(html, "<A ") {
		t.Error("expected no links")
	}
}

func TestExportHTML_SingleEntry(t *testing.T) {
	html := ExportHTML([]model.Entry{{URI: "file:///srv/data", Name: "Shared Data", CustomName: name("Shared Data")}})

	if !strings.Contains(html, `<A HREF="file:///srv/data">Shared Data</A>`) {
		t.Errorf("expected link with title, got:\n%s", html)
	}
}

func TestExportHTML_KeepsOrder(t *testing.T) {
	html := ExportHTML([]model.Entry{
		{URI: "file:///c", Name: "c"},
		{URI: "file:///a", Name: "a"},
		{URI: "file:///b", Name: "b"},
	})

	ic := strings.Index(html, "file:///c")
	ia := strings.Index(html, "file:///a")
	ib := strings.Index(html, "file:///b")
	if !(ic < ia && ia < ib) {
		t.Errorf("expected list order c, a, b; got offsets %d %d %d", ic, ia, ib)
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	html := ExportHTML([]model.Entry{{URI: "https://example.com/?a=1&b=2", Name: `<Tools> & "Things"`}})

	if !strings.Contains(html, "&lt;Tools&gt; &amp; &#34;Things&#34;") {
		t.Errorf("expected escaped title, got:\n%s", html)
	}
	if !strings.Contains(html, "a=1&amp;b=2") {
		t.Errorf("expected escaped URL, got:\n%s", html)
	}
}

func TestExportHTML_ImportRoundTrip(t *testing.T) {
	in := []model.Entry{
		{URI: "file:///srv/data", Name: "Shared Data", CustomName: name("Shared Data")},
		{URI: "smb://nas/media", Name: "media"},
	}

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(ExportHTML(in)))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	if res.Entries[0].CustomName == nil || *res.Entries[0].CustomName != "Shared Data" {
		t.Errorf("expected custom name to survive, got %v", res.Entries[0].CustomName)
	}
	if res.Entries[1].URI != "smb://nas/media" {
		t.Errorf("expected smb://nas/media, got %q", res.Entries[1].URI)
	}
}
