package metadata

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nikbrunner/places/internal/location"
)

// Static is a Provider with fixed answers. Changes are only reported when
// Touch is called, which makes it useful for tests and for running without
// file system watches.
type Static struct {
	// Default is returned for targets without an explicit entry.
	Default Info

	mu       sync.Mutex
	infos    map[string]Info
	watchers map[string]map[string]func()
}

// NewStatic creates a Static provider reporting def for unknown targets.
func NewStatic(def Info) *Static {
	return &Static{
		Default:  def,
		infos:    make(map[string]Info),
		watchers: make(map[string]map[string]func()),
	}
}

// Set records the info reported for loc. It does not notify watchers.
func (s *Static) Set(loc location.Location, info Info) {
	s.mu.Lock()
	s.infos[loc.String()] = info
	s.mu.Unlock()
}

// Lookup implements Provider.
func (s *Static) Lookup(loc location.Location) Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.infos[loc.String()]; ok {
		return info
	}
	if !loc.IsNative() {
		return Info{Remote: true}
	}
	return s.Default
}

// Watch implements Provider.
func (s *Static) Watch(loc location.Location, fn func()) (func(), error) {
	key := loc.String()
	id := uuid.NewString()

	s.mu.Lock()
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[string]func())
	}
	s.watchers[key][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers[key], id)
		if len(s.watchers[key]) == 0 {
			delete(s.watchers, key)
		}
		s.mu.Unlock()
	}, nil
}

// Touch notifies every watcher of loc.
func (s *Static) Touch(loc location.Location) {
	s.mu.Lock()
	var fns []func()
	for _, fn := range s.watchers[loc.String()] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Watchers returns how many watches are active for loc.
func (s *Static) Watchers(loc location.Location) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers[loc.String()])
}
