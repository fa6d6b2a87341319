package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/places/internal/importer"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="file:///srv/data" ADD_DATE="1234567890">Shared Data</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Folders != 0 {
		t.Errorf("expected 0 folders, got %d", res.Folders)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}

	e := res.Entries[0]
	if e.URI != "file:///srv/data" {
		t.Errorf("expected URI 'file:///srv/data', got %q", e.URI)
	}
	if e.CustomName == nil || *e.CustomName != "Shared Data" {
		t.Errorf("expected custom name 'Shared Data', got %v", e.CustomName)
	}
}

func TestParseHTML_FlattensFoldersInDocumentOrder(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Work</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">Servers</H3>
        <DL><p>
            <DT><A HREF="sftp://build.example.com/srv">Build Box</A>
        </DL><p>
        <DT><A HREF="file:///home/me/work">Work Tree</A>
    </DL><p>
    <DT><A HREF="smb://nas/media">Media</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Folders != 2 {
		t.Errorf("expected 2 folders flattened, got %d", res.Folders)
	}

	want := []string{"sftp://build.example.com/srv", "file:///home/me/work", "smb://nas/media"}
	if len(res.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(res.Entries))
	}
	for i, uri := range want {
		if res.Entries[i].URI != uri {
			t.Errorf("entry %d: expected %q, got %q", i, uri, res.Entries[i].URI)
		}
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Folders != 0 {
		t.Errorf("expected 0 folders, got %d", res.Folders)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(res.Entries))
	}
}

func TestParseHTML_TitleRepeatingTargetOrNameIsNotACustomName(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="file:///tmp">file:///tmp</A>
    <DT><A HREF="file:///var"></A>
    <DT><A HREF="file:///opt">opt</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(res.Entries))
	}
	for _, e := range res.Entries {
		if e.CustomName != nil {
			t.Errorf("%s: expected no custom name, got %q", e.URI, *e.CustomName)
		}
	}
	if res.Entries[1].Name != "var" {
		t.Errorf("expected derived name 'var', got %q", res.Entries[1].Name)
	}
}

func TestParseHTML_SkipsMissingAndInvalidHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="relative/path">Relative</A>
    <DT><A HREF="file:///valid" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	if res.Skipped != 1 {
		t.Errorf("expected 1 skipped link, got %d", res.Skipped)
	}
	if *res.Entries[0].CustomName != "Valid" {
		t.Errorf("expected 'Valid', got %q", *res.Entries[0].CustomName)
	}
}
