package bookmarks

import "github.com/google/uuid"

// Subscription identifies a registered change observer.
type Subscription string

// Subscribe registers fn to be called after every mutation and every applied
// Load. Calls are serialized and made without the list lock held, so fn may
// read the list. fn must not mutate the list synchronously; hand the request
// off to another goroutine instead.
func (l *List) Subscribe(fn func()) Subscription {
	sub := Subscription(uuid.NewString())
	l.mu.Lock()
	l.observers[sub] = fn
	l.mu.Unlock()
	return sub
}

// Unsubscribe removes an observer. Unknown subscriptions are ignored.
func (l *List) Unsubscribe(sub Subscription) {
	l.mu.Lock()
	delete(l.observers, sub)
	l.mu.Unlock()
}

func (l *List) emit() {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	fns := make([]func(), 0, len(l.observers))
	for _, fn := range l.observers {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
