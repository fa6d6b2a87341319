// Package bookmarks is the ordered, persisted bookmark list.
//
// A List owns its entries. Every mutation updates memory, notifies
// subscribers and then queues a Save. Loads and Saves run one at a time, in
// request order, on a jobs.Queue. External edits to the backing file are
// picked up by a rate-limited watch and queued as Loads.
package bookmarks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nikbrunner/places/internal/jobs"
	"github.com/nikbrunner/places/internal/metadata"
	"github.com/nikbrunner/places/internal/model"
	"github.com/nikbrunner/places/internal/storage"
	"github.com/nikbrunner/places/internal/watcher"
)

var (
	// ErrIndexOutOfRange is returned by index based operations.
	ErrIndexOutOfRange = errors.New("bookmarks: index out of range")
	// ErrClosed is returned by mutations after the last reference was closed.
	ErrClosed = errors.New("bookmarks: list is closed")
	// ErrEntryReplaced is returned when a Load replaced the entry being changed.
	ErrEntryReplaced = errors.New("bookmarks: entry was replaced by a reload")
)

const closeTimeout = 5 * time.Second

// Settings persists state that lives outside the bookmarks file.
type Settings interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Params holds the dependencies of a List.
type Params struct {
	Storage  storage.Storage
	Settings Settings          // optional; window geometry is kept in memory only without it
	Provider metadata.Provider // optional
	Logger   *slog.Logger

	// RateLimit is the coalescing window of the file watch.
	RateLimit time.Duration
	// NoWatch disables the file watch.
	NoWatch bool
	// JobObserver, if set, sees every queue transition.
	JobObserver jobs.Observer
}

// List is the bookmark list service. It is safe for concurrent use.
type List struct {
	store    storage.Storage
	settings Settings
	provider metadata.Provider
	logger   *slog.Logger
	queue    *jobs.Queue
	watch    *watcher.FileWatcher

	mu            sync.Mutex
	entries       []*model.Bookmark
	geometry      string
	geometryDirty bool
	lastSaved     storage.Stamp
	refs          int
	closed        bool
	observers     map[Subscription]func()

	// serializes "changed" delivery
	emitMu sync.Mutex
}

// New creates the list, queues the initial Load and starts watching the
// backing file. The caller holds the first reference.
func New(params Params) (*List, error) {
	if params.Storage == nil {
		return nil, errors.New("bookmarks: storage is required")
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &List{
		store:     params.Storage,
		settings:  params.Settings,
		provider:  params.Provider,
		logger:    logger,
		refs:      1,
		observers: make(map[Subscription]func()),
	}

	if l.settings != nil {
		geometry, ok, err := l.settings.Get(storage.KeyWindowGeometry)
		if err != nil {
			logger.Warn("bookmarks: reading window geometry", "err", err)
		} else if ok {
			l.geometry = geometry
		}
	}

	opts := []jobs.Option{jobs.WithLogger(logger)}
	if params.JobObserver != nil {
		opts = append(opts, jobs.WithObserver(params.JobObserver))
	}
	l.queue = jobs.New(l.run, opts...)

	if !params.NoWatch {
		w, err := watcher.New(watcher.Params{
			Path:      l.store.Path(),
			RateLimit: params.RateLimit,
			OnChange:  l.fileChanged,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		l.watch = w
	}

	l.queue.Request(jobs.KindLoad)
	return l, nil
}

// Ref returns l with one more reference held by the caller. A list whose
// last reference was closed stays closed.
func (l *List) Ref() *List {
	l.mu.Lock()
	if !l.closed {
		l.refs++
	}
	l.mu.Unlock()
	return l
}

// Close drops a reference. When the last one is dropped the watch is
// cancelled, queued jobs are drained and the entries are released. After
// that every mutation fails with ErrClosed.
func (l *List) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.refs--
	if l.refs > 0 {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	var errs []error
	if l.watch != nil {
		errs = append(errs, l.watch.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	errs = append(errs, l.queue.Close(ctx))

	l.mu.Lock()
	old := l.entries
	l.entries = nil
	l.observers = make(map[Subscription]func())
	l.mu.Unlock()
	for _, b := range old {
		b.Close()
	}

	return errors.Join(errs...)
}

// Path returns the backing file path.
func (l *List) Path() string {
	return l.store.Path()
}

// Reload queues a Load of the backing file.
func (l *List) Reload() {
	l.queue.Request(jobs.KindLoad)
}

// Flush waits until no Load or Save is pending.
func (l *List) Flush(ctx context.Context) error {
	return l.queue.Flush(ctx)
}

// Busy reports whether a job is in flight, its kind and how many are queued
// behind it.
func (l *List) Busy() (busy bool, kind jobs.Kind, queued int) {
	return l.queue.State()
}

// WindowGeometry returns the editor geometry saved last.
func (l *List) WindowGeometry() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.geometry
}

// SetWindowGeometry stores the editor geometry and queues a Save. It does
// nothing on a closed list.
func (l *List) SetWindowGeometry(geometry string) {
	l.mu.Lock()
	if l.closed || l.geometry == geometry {
		l.mu.Unlock()
		return
	}
	l.geometry = geometry
	l.geometryDirty = true
	l.mu.Unlock()

	l.queue.Request(jobs.KindSave)
}
