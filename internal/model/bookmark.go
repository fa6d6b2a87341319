package model

import (
	"sync"

	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/metadata"
)

// Icon descriptors derived from a bookmark's target.
const (
	IconFolder  = "folder"
	IconHome    = "user-home"
	IconRoot    = "drive-harddisk"
	IconRemote  = "folder-remote"
	IconFile    = "text-x-generic"
	IconMissing = "dialog-warning"
)

// Bookmark represents one saved location with an optional custom name.
//
// A Bookmark watches its target through the metadata provider for as long as
// it lives; Close must be called when it is dropped.
type Bookmark struct {
	loc      location.Location
	provider metadata.Provider

	mu         sync.Mutex
	customName *string
	icon       string
	missing    bool
	iconValid  bool
	observers  map[string]func(*Bookmark)
	cancel     func()
	closed     bool
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Target     string
	CustomName *string           // nil = derive name from target
	Provider   metadata.Provider // optional
}

// NewBookmark parses the target and creates a Bookmark.
// Returns location.ErrInvalidLocation if the target cannot be parsed.
func NewBookmark(params NewBookmarkParams) (*Bookmark, error) {
	loc, err := location.Parse(params.Target)
	if err != nil {
		return nil, err
	}
	return newBookmark(loc, params.CustomName, params.Provider), nil
}

// NewBookmarkAt creates a Bookmark for an already parsed location.
func NewBookmarkAt(loc location.Location, customName *string, provider metadata.Provider) *Bookmark {
	return newBookmark(loc, customName, provider)
}

func newBookmark(loc location.Location, customName *string, provider metadata.Provider) *Bookmark {
	b := &Bookmark{
		loc:        loc,
		provider:   provider,
		customName: normalizeName(customName),
		observers:  make(map[string]func(*Bookmark)),
	}

	if provider != nil {
		cancel, err := provider.Watch(loc, b.targetChanged)
		if err == nil {
			b.cancel = cancel
		}
	}

	return b
}

// Copy returns an independent Bookmark with the same target and custom name.
// Observers are not copied.
func (b *Bookmark) Copy() *Bookmark {
	b.mu.Lock()
	name := copyName(b.customName)
	b.mu.Unlock()
	return newBookmark(b.loc, name, b.provider)
}

// Location returns the parsed target.
func (b *Bookmark) Location() location.Location {
	return b.loc
}

// URI returns the target in canonical string form.
func (b *Bookmark) URI() string {
	return b.loc.String()
}

// Name returns the custom name if set, else a name derived from the target.
func (b *Bookmark) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.customName != nil {
		return *b.customName
	}
	return b.loc.DisplayName()
}

// CustomName returns the custom name and whether one is set.
func (b *Bookmark) CustomName() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.customName == nil {
		return "", false
	}
	return *b.customName, true
}

// HasCustomName reports whether the name overrides the derived one.
func (b *Bookmark) HasCustomName() bool {
	_, ok := b.CustomName()
	return ok
}

// SetCustomName sets or clears (nil or "") the custom name and notifies
// name observers if the visible name state changed.
func (b *Bookmark) SetCustomName(name *string) {
	name = normalizeName(name)

	b.mu.Lock()
	if namesEqual(b.customName, name) {
		b.mu.Unlock()
		return
	}
	b.customName = name
	b.mu.Unlock()

	b.notify()
}

// Icon returns the icon descriptor for the target. It is computed on first
// use and recomputed after the target reports a change.
func (b *Bookmark) Icon() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLocked()
	return b.icon
}

// Unresolvable reports whether a native target could not be found.
// The bookmark is kept so it can still be edited or removed.
func (b *Bookmark) Unresolvable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLocked()
	return b.missing
}

func (b *Bookmark) refreshLocked() {
	if b.iconValid {
		return
	}

	if b.provider == nil {
		b.icon = IconFolder
		if !b.loc.IsNative() {
			b.icon = IconRemote
		}
		b.missing = false
		b.iconValid = true
		return
	}

	info := b.provider.Lookup(b.loc)
	b.missing = !info.Remote && !info.Exists
	switch {
	case info.Remote:
		b.icon = IconRemote
	case !info.Exists:
		b.icon = IconMissing
	case info.Root:
		b.icon = IconRoot
	case info.Home:
		b.icon = IconHome
	case info.IsDir:
		b.icon = IconFolder
	default:
		b.icon = IconFile
	}
	b.iconValid = true
}

// Equal reports structural equality: same target and same custom name state.
func (b *Bookmark) Equal(other *Bookmark) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b == other {
		return true
	}
	if !b.loc.Equal(other.loc) {
		return false
	}

	b.mu.Lock()
	mine := copyName(b.customName)
	b.mu.Unlock()

	other.mu.Lock()
	theirs := copyName(other.customName)
	other.mu.Unlock()

	return namesEqual(mine, theirs)
}

// OnNameChanged registers fn to be called when the displayed name or icon may
// have changed. Returns an ID for RemoveObserver.
func (b *Bookmark) OnNameChanged(fn func(*Bookmark)) string {
	id := generateID()
	b.mu.Lock()
	b.observers[id] = fn
	b.mu.Unlock()
	return id
}

// RemoveObserver unregisters a name observer.
func (b *Bookmark) RemoveObserver(id string) {
	b.mu.Lock()
	delete(b.observers, id)
	b.mu.Unlock()
}

// Close stops watching the target and drops all observers. Safe to call twice.
func (b *Bookmark) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	cancel := b.cancel
	b.cancel = nil
	b.observers = make(map[string]func(*Bookmark))
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (b *Bookmark) targetChanged() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.iconValid = false
	b.mu.Unlock()

	b.notify()
}

func (b *Bookmark) notify() {
	b.mu.Lock()
	fns := make([]func(*Bookmark), 0, len(b.observers))
	for _, fn := range b.observers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(b)
	}
}

func normalizeName(name *string) *string {
	if name == nil || *name == "" {
		return nil
	}
	return copyName(name)
}

func copyName(name *string) *string {
	if name == nil {
		return nil
	}
	n := *name
	return &n
}

func namesEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
