package storage_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"

	"github.com/nikbrunner/places/internal/storage"
)

func name(s string) *string { return &s }

func TestEncode_Golden(t *testing.T) {
	lines := []storage.Line{
		{URI: "file:///home/user/Documents"},
		{URI: "file:///srv/data", Name: name("Shared Data")},
		{URI: "sftp://nas.local/srv/media", Name: name(" indented label")},
		{URI: "smb://fileserver/public", Name: name("Multi\nline name")},
		{URI: "", Name: name("dropped")},
	}

	var buf bytes.Buffer
	assert.NilError(t, storage.Encode(&buf, lines))
	golden.Assert(t, buf.String(), "bookmarks.golden")
}

func TestDecode_SkipsBlankAndIndentedLines(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "mixed.txt"))
	assert.NilError(t, err)
	defer f.Close()

	lines, skipped, err := storage.Decode(f)
	assert.NilError(t, err)
	assert.Equal(t, skipped, 3)
	assert.Assert(t, is.Len(lines, 4))

	assert.Equal(t, lines[0].URI, "file:///home/user/Documents")
	assert.Check(t, lines[0].Name == nil)

	assert.Equal(t, lines[1].URI, "file:///srv/data")
	assert.Equal(t, *lines[1].Name, "Shared Data")

	assert.Equal(t, lines[2].URI, "smb://fileserver/public")
	assert.Equal(t, *lines[2].Name, "Public Share")

	// trailing space with nothing after it is not a name
	assert.Equal(t, lines[3].URI, "file:///tmp")
	assert.Check(t, lines[3].Name == nil)
}

func TestDecode_LabelIsRestOfLine(t *testing.T) {
	lines, _, err := storage.Decode(strings.NewReader("file:///srv/a  two  spaces \n"))
	assert.NilError(t, err)
	assert.Assert(t, is.Len(lines, 1))
	assert.Equal(t, *lines[0].Name, " two  spaces ")
}

func TestLines_RoundTrip(t *testing.T) {
	in := []storage.Line{
		{URI: "file:///a"},
		{URI: "file:///b", Name: name("Bee")},
		{URI: "https://example.com/x%20y", Name: name("  padded  ")},
		{URI: "file:///c"},
	}

	var buf bytes.Buffer
	assert.NilError(t, storage.Encode(&buf, in))

	out, skipped, err := storage.Decode(&buf)
	assert.NilError(t, err)
	assert.Equal(t, skipped, 0)
	assert.DeepEqual(t, out, in)
}
