package bookmarks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/places/internal/storage"
)

func TestRename_EntryReplacedByLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	assert.NilError(t, os.WriteFile(path, []byte("file:///a\n"), 0644))

	l, err := New(Params{Storage: storage.NewFileStorage(path, ""), NoWatch: true})
	assert.NilError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NilError(t, l.Flush(ctx))

	stale, err := l.ItemAt(0)
	assert.NilError(t, err)

	// a reload swaps in fresh entries between lookup and rename
	l.Reload()
	assert.NilError(t, l.Flush(ctx))

	name := "Renamed"
	assert.Check(t, is.ErrorIs(l.rename(stale, &name), ErrEntryReplaced))
	assert.NilError(t, l.Flush(ctx))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "file:///a\n")

	// the live entry still renames normally
	assert.NilError(t, l.RenameItemAt(0, &name))
	assert.NilError(t, l.Flush(ctx))
	data, err = os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "file:///a Renamed\n")
}
