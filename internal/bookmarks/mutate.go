package bookmarks

import (
	"github.com/nikbrunner/places/internal/jobs"
	"github.com/nikbrunner/places/internal/model"
)

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// ItemAt returns the entry at index. The returned Bookmark is owned by the
// list and must be fetched again after any change notification.
func (l *List) ItemAt(index int) (*model.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkIndexLocked(index, len(l.entries)); err != nil {
		return nil, err
	}
	return l.entries[index], nil
}

// Snapshot returns plain copies of all entries in order.
func (l *List) Snapshot() []model.Entry {
	l.mu.Lock()
	entries := make([]*model.Bookmark, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	out := make([]model.Entry, len(entries))
	for i, b := range entries {
		out[i] = b.Entry()
	}
	return out
}

// IndexOf returns the index of the first entry structurally equal to b, or -1.
func (l *List) IndexOf(b *model.Bookmark) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.Equal(b) {
			return i
		}
	}
	return -1
}

// Contains reports whether an entry has the same target and the same custom
// name state as b.
func (l *List) Contains(b *model.Bookmark) bool {
	return l.IndexOf(b) >= 0
}

// Append adds a copy of b at the end. Duplicates are not rejected; callers
// check Contains first.
func (l *List) Append(b *model.Bookmark) error {
	entry := l.adopt(b)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		entry.Close()
		return ErrClosed
	}
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return l.changedAndSave()
}

// InsertItem inserts a copy of b at index, 0 <= index <= Len().
func (l *List) InsertItem(b *model.Bookmark, index int) error {
	l.mu.Lock()
	if err := l.checkIndexLocked(index, len(l.entries)+1); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	entry := l.adopt(b)

	l.mu.Lock()
	// the list may have been replaced by a Load or closed in between
	if err := l.checkIndexLocked(index, len(l.entries)+1); err != nil {
		l.mu.Unlock()
		entry.Close()
		return err
	}
	l.entries = append(l.entries, nil)
	copy(l.entries[index+1:], l.entries[index:])
	l.entries[index] = entry
	l.mu.Unlock()

	return l.changedAndSave()
}

// DeleteItemAt removes the entry at index.
func (l *List) DeleteItemAt(index int) error {
	l.mu.Lock()
	if err := l.checkIndexLocked(index, len(l.entries)); err != nil {
		l.mu.Unlock()
		return err
	}
	removed := l.entries[index]
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	l.mu.Unlock()

	removed.Close()
	return l.changedAndSave()
}

// MoveItem moves the entry at from to the drop position to, where
// 0 <= to <= Len() is counted before the entry is removed. Moving down
// therefore lands the entry at to-1. Moves that leave the order unchanged
// do nothing and notify nobody.
func (l *List) MoveItem(from, to int) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	n := len(l.entries)
	if from < 0 || from >= n || to < 0 || to > n {
		l.mu.Unlock()
		return ErrIndexOutOfRange
	}

	dst := to
	if from < to {
		dst = to - 1
	}
	if dst == from {
		l.mu.Unlock()
		return nil
	}

	entry := l.entries[from]
	l.entries = append(l.entries[:from], l.entries[from+1:]...)
	l.entries = append(l.entries, nil)
	copy(l.entries[dst+1:], l.entries[dst:])
	l.entries[dst] = entry
	l.mu.Unlock()

	return l.changedAndSave()
}

// DeleteItemsWithURI removes every entry whose URI equals uri and returns how
// many were removed. One notification and one Save cover all removals.
func (l *List) DeleteItemsWithURI(uri string) int {
	l.mu.Lock()
	kept := l.entries[:0]
	var removed []*model.Bookmark
	for _, e := range l.entries {
		if e.URI() == uri {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	// clear the tail so released entries are not retained
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = nil
	}
	l.entries = kept
	l.mu.Unlock()

	if len(removed) == 0 {
		return 0
	}
	for _, e := range removed {
		e.Close()
	}
	l.changedAndSave()
	return len(removed)
}

// ReplaceItemAt replaces the entry at index with a copy of b, releasing the
// old one.
func (l *List) ReplaceItemAt(index int, b *model.Bookmark) error {
	l.mu.Lock()
	if err := l.checkIndexLocked(index, len(l.entries)); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	entry := l.adopt(b)

	l.mu.Lock()
	if err := l.checkIndexLocked(index, len(l.entries)); err != nil {
		l.mu.Unlock()
		entry.Close()
		return err
	}
	old := l.entries[index]
	l.entries[index] = entry
	l.mu.Unlock()

	old.Close()
	return l.changedAndSave()
}

// RenameItemAt sets or clears (nil or "") the custom name of the entry at
// index. It fails with ErrEntryReplaced when a Load swapped the entries
// while the rename was applied.
func (l *List) RenameItemAt(index int, name *string) error {
	b, err := l.ItemAt(index)
	if err != nil {
		return err
	}
	return l.rename(b, name)
}

func (l *List) rename(b *model.Bookmark, name *string) error {
	cur, ok := b.CustomName()
	if name == nil || *name == "" {
		if !ok {
			return nil
		}
	} else if ok && cur == *name {
		return nil
	}

	// the entry's name observer reports the change
	b.SetCustomName(name)

	if !l.owns(b) {
		return ErrEntryReplaced
	}
	return l.requestSave()
}

// owns reports whether b is still one of the list's entries.
func (l *List) owns(b *model.Bookmark) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e == b {
			return true
		}
	}
	return false
}

// adopt copies b into a list-owned entry.
func (l *List) adopt(b *model.Bookmark) *model.Bookmark {
	name, ok := b.CustomName()
	var custom *string
	if ok {
		custom = &name
	}
	entry := model.NewBookmarkAt(b.Location(), custom, l.provider)
	entry.OnNameChanged(l.entryChanged)
	return entry
}

// entryChanged reports a name or icon change of a single entry.
func (l *List) entryChanged(*model.Bookmark) {
	l.emit()
}

func (l *List) changedAndSave() error {
	l.emit()
	return l.requestSave()
}

// requestSave queues a Save, failing once the queue was closed.
func (l *List) requestSave() error {
	if !l.queue.Request(jobs.KindSave) {
		return ErrClosed
	}
	return nil
}

// checkIndexLocked validates 0 <= index < n on an open list.
func (l *List) checkIndexLocked(index, n int) error {
	if l.closed {
		return ErrClosed
	}
	if index < 0 || index >= n {
		return ErrIndexOutOfRange
	}
	return nil
}
