// Package metadata answers questions about bookmark targets: does the target
// exist, is it a directory, and has it changed since we last looked.
package metadata

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/nikbrunner/places/internal/location"
)

// Info describes a target at lookup time.
type Info struct {
	Exists bool
	IsDir  bool
	Remote bool
	Root   bool
	Home   bool
}

// Provider looks up target metadata and notifies about target changes.
type Provider interface {
	Lookup(loc location.Location) Info
	// Watch calls fn whenever the target changes (created, renamed, removed,
	// attributes). The returned cancel func must be called to stop watching.
	Watch(loc location.Location, fn func()) (cancel func(), err error)
}

// Local implements Provider on the local file system. Remote targets are
// reported as Remote and never watched.
type Local struct {
	logger *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dirs    map[string]map[string]subscriber // dir -> id -> subscriber
	closed  bool
}

type subscriber struct {
	target string
	fn     func()
}

// NewLocal creates a Local provider. The fsnotify watcher is created on first Watch.
func NewLocal(logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		logger: logger,
		dirs:   make(map[string]map[string]subscriber),
	}
}

// Lookup stats native targets.
func (l *Local) Lookup(loc location.Location) Info {
	if !loc.IsNative() {
		return Info{Remote: true}
	}

	p := loc.Path()
	info := Info{Root: p == string(filepath.Separator)}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == p {
		info.Home = true
	}

	fi, err := os.Stat(p)
	if err != nil {
		return info
	}
	info.Exists = true
	info.IsDir = fi.IsDir()
	return info
}

// Watch subscribes fn to changes of a native target by watching its parent directory.
func (l *Local) Watch(loc location.Location, fn func()) (func(), error) {
	if !loc.IsNative() || loc.Path() == string(filepath.Separator) {
		return func() {}, nil
	}

	target := loc.Path()
	dir := filepath.Dir(target)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return func() {}, nil
	}

	if l.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		l.watcher = w
		go l.loop(w)
	}

	subs, ok := l.dirs[dir]
	if !ok {
		if err := l.watcher.Add(dir); err != nil {
			// Parent directory is gone; there is nothing to watch until it comes back.
			l.logger.Debug("metadata: cannot watch", "dir", dir, "err", err)
			return func() {}, nil
		}
		subs = make(map[string]subscriber)
		l.dirs[dir] = subs
	}

	id := uuid.NewString()
	subs[id] = subscriber{target: target, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() { l.unwatch(dir, id) })
	}, nil
}

func (l *Local) unwatch(dir, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	subs, ok := l.dirs[dir]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(l.dirs, dir)
		if l.watcher != nil && !l.closed {
			_ = l.watcher.Remove(dir)
		}
	}
}

func (l *Local) loop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			l.dispatch(filepath.Clean(ev.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.logger.Warn("metadata: watch error", "err", err)
		}
	}
}

func (l *Local) dispatch(name string) {
	l.mu.Lock()
	var fns []func()
	for _, s := range l.dirs[filepath.Dir(name)] {
		if s.target == name {
			fns = append(fns, s.fn)
		}
	}
	l.mu.Unlock()

	// call without holding the lock, subscribers may call back into Watch/cancel
	for _, fn := range fns {
		fn()
	}
}

// Close stops the shared watcher. Pending cancel funcs stay safe to call.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.dirs = make(map[string]map[string]subscriber)
	if l.watcher == nil {
		return nil
	}
	return l.watcher.Close()
}
