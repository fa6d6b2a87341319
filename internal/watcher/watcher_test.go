package watcher_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"

	"github.com/nikbrunner/places/internal/watcher"
)

func newWatcher(t *testing.T, path string, window time.Duration, calls *int32) *watcher.FileWatcher {
	t.Helper()
	fw, err := watcher.New(watcher.Params{
		Path:      path,
		RateLimit: window,
		OnChange:  func() { atomic.AddInt32(calls, 1) },
	})
	assert.NilError(t, err)
	t.Cleanup(func() { fw.Close() })
	return fw
}

func TestFileWatcher_CoalescesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	var calls int32
	newWatcher(t, path, 200*time.Millisecond, &calls)

	for i := 0; i < 5; i++ {
		assert.NilError(t, os.WriteFile(path, []byte("file:///tmp\n"), 0644))
	}

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if atomic.LoadInt32(&calls) >= 1 {
			return poll.Success()
		}
		return poll.Continue("no change reported yet")
	}, poll.WithTimeout(5*time.Second))

	// let any stray timer fire
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, atomic.LoadInt32(&calls), int32(1))
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls int32
	newWatcher(t, filepath.Join(dir, "bookmarks"), 50*time.Millisecond, &calls)

	assert.NilError(t, os.WriteFile(filepath.Join(dir, "settings.ini"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, atomic.LoadInt32(&calls), int32(0))
}

func TestFileWatcher_SuspendDropsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	var calls int32
	fw := newWatcher(t, path, 50*time.Millisecond, &calls)

	fw.Suspend()
	assert.Check(t, fw.Suspended())
	assert.NilError(t, os.WriteFile(path, []byte("file:///tmp\n"), 0644))
	time.Sleep(300 * time.Millisecond)
	fw.Resume()
	assert.Check(t, !fw.Suspended())

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, atomic.LoadInt32(&calls), int32(0))

	assert.NilError(t, os.WriteFile(path, []byte("file:///var\n"), 0644))
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if atomic.LoadInt32(&calls) == 1 {
			return poll.Success()
		}
		return poll.Continue("calls=%d", atomic.LoadInt32(&calls))
	}, poll.WithTimeout(5*time.Second))
}

func TestFileWatcher_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtk-3.0", "bookmarks")
	var calls int32
	newWatcher(t, path, 50*time.Millisecond, &calls)

	fi, err := os.Stat(filepath.Dir(path))
	assert.NilError(t, err)
	assert.Check(t, fi.IsDir())
}

func TestFileWatcher_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	fw, err := watcher.New(watcher.Params{Path: path})
	assert.NilError(t, err)
	assert.NilError(t, fw.Close())
	assert.NilError(t, fw.Close())
}
