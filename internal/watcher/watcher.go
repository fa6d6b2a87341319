// Package watcher reports external changes to a single file.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultRateLimit is the coalescing window for bursts of change events.
const DefaultRateLimit = time.Second

// FileWatcher watches one file and calls OnChange at most once per rate-limit
// window. Events seen while suspended are dropped.
type FileWatcher struct {
	path     string
	window   time.Duration
	onChange func()
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu        sync.Mutex
	suspended int
	timer     *time.Timer
	closed    bool
	done      chan struct{}
}

// Params holds parameters for creating a FileWatcher.
type Params struct {
	Path      string
	RateLimit time.Duration // 0 = DefaultRateLimit
	OnChange  func()
	Logger    *slog.Logger
}

// New starts watching params.Path. The parent directory is watched rather
// than the file itself so that atomic replaces (write + rename) are seen.
// The parent directory is created if it is missing.
func New(params Params) (*FileWatcher, error) {
	window := params.RateLimit
	if window <= 0 {
		window = DefaultRateLimit
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := filepath.Clean(params.Path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	fw := &FileWatcher{
		path:     path,
		window:   window,
		onChange: params.OnChange,
		logger:   logger,
		watcher:  w,
		done:     make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			fw.schedule(ev)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher: error", "path", fw.path, "err", err)
		}
	}
}

func (fw *FileWatcher) schedule(ev fsnotify.Event) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return
	}
	if fw.suspended > 0 {
		fw.logger.Debug("watcher: dropped while suspended", "event", ev.Op.String())
		return
	}
	if fw.timer != nil {
		// already pending, coalesce
		return
	}
	fw.timer = time.AfterFunc(fw.window, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.mu.Lock()
	fw.timer = nil
	if fw.closed || fw.suspended > 0 {
		fw.mu.Unlock()
		return
	}
	fw.mu.Unlock()

	fw.logger.Debug("watcher: change", "path", fw.path)
	if fw.onChange != nil {
		fw.onChange()
	}
}

// Suspend drops events until the matching Resume. Calls nest.
func (fw *FileWatcher) Suspend() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.suspended++
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}

// Resume re-arms the watcher after Suspend.
func (fw *FileWatcher) Resume() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.suspended > 0 {
		fw.suspended--
	}
}

// Suspended reports whether events are currently dropped.
func (fw *FileWatcher) Suspended() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.suspended > 0
}

// Close cancels the watch. No new OnChange calls are scheduled afterwards.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	fw.mu.Unlock()

	err := fw.watcher.Close()
	<-fw.done
	return err
}
