package model

// Entry is a plain-value snapshot of a Bookmark, safe to keep after the list
// changes.
type Entry struct {
	URI        string
	Name       string
	CustomName *string
	Icon       string
	Missing    bool
}

// Entry returns a snapshot of b.
func (b *Bookmark) Entry() Entry {
	name, ok := b.CustomName()
	e := Entry{
		URI:     b.URI(),
		Name:    b.Name(),
		Icon:    b.Icon(),
		Missing: b.Unresolvable(),
	}
	if ok {
		e.CustomName = &name
	}
	return e
}

// Title returns the display name, falling back to the URI.
func (e Entry) Title() string {
	if e.Name != "" {
		return e.Name
	}
	return e.URI
}
