package bookmarks

import (
	"context"
	"errors"

	"github.com/nikbrunner/places/internal/jobs"
	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/model"
	"github.com/nikbrunner/places/internal/storage"
)

// stamper is implemented by storages that can fingerprint their file.
type stamper interface {
	Stamp() (storage.Stamp, error)
}

func (l *List) run(ctx context.Context, kind jobs.Kind) error {
	switch kind {
	case jobs.KindLoad:
		return l.load()
	case jobs.KindSave:
		return l.save()
	default:
		return nil
	}
}

// load replaces the entries with the file contents. On failure the current
// entries are kept.
func (l *List) load() error {
	lines, err := l.store.Load()
	if err != nil {
		var ioErr *storage.IOError
		if !errors.As(err, &ioErr) || !ioErr.NotFound() {
			l.logger.Warn("bookmarks: load failed", "path", l.store.Path(), "err", err)
			return err
		}
		lines = nil
	}

	entries := make([]*model.Bookmark, 0, len(lines))
	invalid := 0
	for _, line := range lines {
		loc, err := location.Parse(line.URI)
		if err != nil {
			invalid++
			continue
		}
		entry := model.NewBookmarkAt(loc, line.Name, l.provider)
		entry.OnNameChanged(l.entryChanged)
		entries = append(entries, entry)
	}
	if invalid > 0 {
		l.logger.Debug("bookmarks: skipped invalid lines", "path", l.store.Path(), "count", invalid)
	}

	// The swap is atomic under the lock, so subscribers only ever see the
	// old or the complete new list.
	l.mu.Lock()
	old := l.entries
	l.entries = entries
	l.mu.Unlock()

	for _, b := range old {
		b.Close()
	}

	l.logger.Debug("bookmarks: loaded", "path", l.store.Path(), "entries", len(entries))
	l.emit()
	return nil
}

// save writes a snapshot of the entries, taken when the job starts, and the
// window geometry if it changed.
func (l *List) save() error {
	l.mu.Lock()
	lines := make([]storage.Line, len(l.entries))
	for i, b := range l.entries {
		lines[i] = storage.Line{URI: b.URI()}
		if name, ok := b.CustomName(); ok {
			lines[i].Name = &name
		}
	}
	geometry, geometryDirty := l.geometry, l.geometryDirty
	l.geometryDirty = false
	l.mu.Unlock()

	// our own write must not come back as a Load
	if l.watch != nil {
		l.watch.Suspend()
		defer l.watch.Resume()
	}

	err := l.store.Save(lines)
	if err != nil {
		l.logger.Error("bookmarks: save failed", "path", l.store.Path(), "err", err)
	} else if st, ok := l.store.(stamper); ok {
		if stamp, serr := st.Stamp(); serr == nil {
			l.mu.Lock()
			l.lastSaved = stamp
			l.mu.Unlock()
		}
	}

	if geometryDirty && l.settings != nil {
		if gerr := l.settings.Set(storage.KeyWindowGeometry, geometry); gerr != nil {
			l.logger.Warn("bookmarks: saving window geometry", "err", gerr)
			l.mu.Lock()
			l.geometryDirty = true
			l.mu.Unlock()
			err = errors.Join(err, gerr)
		}
	}

	if err == nil {
		l.logger.Debug("bookmarks: saved", "path", l.store.Path(), "entries", len(lines))
	}
	return err
}

// fileChanged is called by the watch after a burst of external changes.
func (l *List) fileChanged() {
	if st, ok := l.store.(stamper); ok {
		if cur, err := st.Stamp(); err == nil {
			l.mu.Lock()
			last := l.lastSaved
			l.mu.Unlock()
			if !last.IsZero() && cur.Equal(last) {
				l.logger.Debug("bookmarks: ignoring own write", "path", l.store.Path())
				return
			}
		}
	}
	l.logger.Info("bookmarks: file changed on disk, reloading", "path", l.store.Path())
	l.queue.Request(jobs.KindLoad)
}
