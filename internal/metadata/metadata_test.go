package metadata_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/metadata"
)

func TestLocal_Lookup(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	assert.NilError(t, os.WriteFile(file, []byte("x"), 0644))

	p := metadata.NewLocal(nil)
	defer p.Close()

	dirLoc, err := location.FromPath(dir)
	assert.NilError(t, err)
	info := p.Lookup(dirLoc)
	assert.Check(t, info.Exists)
	assert.Check(t, info.IsDir)

	fileLoc, err := location.FromPath(file)
	assert.NilError(t, err)
	info = p.Lookup(fileLoc)
	assert.Check(t, info.Exists)
	assert.Check(t, !info.IsDir)

	missing, err := location.FromPath(filepath.Join(dir, "gone"))
	assert.NilError(t, err)
	assert.Check(t, !p.Lookup(missing).Exists)

	info = p.Lookup(location.MustParse("sftp://host/srv"))
	assert.Check(t, info.Remote)
}

func TestLocal_WatchReportsTargetCreation(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Projects")
	loc, err := location.FromPath(target)
	assert.NilError(t, err)

	p := metadata.NewLocal(nil)
	defer p.Close()

	fired := make(chan struct{}, 8)
	cancel, err := p.Watch(loc, func() { fired <- struct{}{} })
	assert.NilError(t, err)
	defer cancel()

	// unrelated sibling must not fire
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "other"), nil, 0644))
	assert.NilError(t, os.Mkdir(target, 0755))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watch callback was not called")
	}
}

func TestStatic_TouchAndCancel(t *testing.T) {
	p := metadata.NewStatic(metadata.Info{Exists: true, IsDir: true})
	loc := location.MustParse("file:///srv/data")

	calls := 0
	cancel, err := p.Watch(loc, func() { calls++ })
	assert.NilError(t, err)
	assert.Equal(t, p.Watchers(loc), 1)

	p.Touch(loc)
	assert.Equal(t, calls, 1)

	cancel()
	assert.Equal(t, p.Watchers(loc), 0)
	p.Touch(loc)
	assert.Equal(t, calls, 1)
}

func TestStatic_Lookup(t *testing.T) {
	p := metadata.NewStatic(metadata.Info{Exists: true, IsDir: true})
	loc := location.MustParse("file:///srv/data")

	assert.Check(t, p.Lookup(loc).Exists)

	p.Set(loc, metadata.Info{})
	assert.Check(t, !p.Lookup(loc).Exists)

	assert.Check(t, p.Lookup(location.MustParse("smb://nas/share")).Remote)
}
