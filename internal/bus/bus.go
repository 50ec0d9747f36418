// Package bus provides the change-notification channel between the store
// and whoever renders from it. Delivery is synchronous and in subscription
// order on the calling goroutine; a handler that triggers another Emit has
// its nested event fully delivered before the outer emission continues.
package bus

import "sync"

// Event names the three change channels
type Event string

const (
	DBChanged       Event = "db:changed"
	SessionChanged  Event = "session:changed"
	SettingsChanged Event = "settings:changed"
)

// Handler receives the event payload: the DB document for DBChanged, the
// session (or nil) for SessionChanged, the settings value for
// SettingsChanged.
type Handler func(payload any)

type subscription struct {
	id      int
	handler Handler
}

// Bus is an in-process observer registry keyed by event name
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[Event][]subscription
}

// New creates an empty bus
func New() *Bus {
	return &Bus{subs: make(map[Event][]subscription)}
}

// On subscribes handler to event and returns an unsubscribe function.
// Unsubscribing twice is a no-op.
func (b *Bus) On(event Event, handler Handler) func() {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs[event] = append(b.subs[event], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[event]
		for i, s := range subs {
			if s.id == id {
				b.subs[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers payload to every subscriber of event, synchronously, in
// subscription order. Handlers registered during delivery are not invoked
// for the in-flight event.
func (b *Bus) Emit(event Event, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(payload)
	}
}
