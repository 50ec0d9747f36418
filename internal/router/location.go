package router

// MemoryLocation is an in-process Location backed by a plain string. It
// exists for headless operation and tests; listeners are invoked
// synchronously on the goroutine that calls SetHash, in registration
// order. It is not safe for concurrent use.
type MemoryLocation struct {
	hash      string
	nextID    int
	listeners []memoryListener
}

type memoryListener struct {
	id int
	fn func()
}

// NewMemoryLocation starts at the given hash
func NewMemoryLocation(hash string) *MemoryLocation {
	return &MemoryLocation{hash: hash}
}

// Hash returns the current fragment
func (l *MemoryLocation) Hash() string { return l.hash }

// SetHash updates the fragment and notifies listeners. Setting the same
// value again is a no-op, mirroring how a real location only fires a
// change event when the hash actually changes.
func (l *MemoryLocation) SetHash(hash string) {
	if hash == l.hash {
		return
	}
	l.hash = hash
	snapshot := make([]memoryListener, len(l.listeners))
	copy(snapshot, l.listeners)
	for _, sub := range snapshot {
		sub.fn()
	}
}

// Listen registers a change callback and returns its unsubscribe
func (l *MemoryLocation) Listen(fn func()) func() {
	l.nextID++
	id := l.nextID
	l.listeners = append(l.listeners, memoryListener{id: id, fn: fn})
	return func() {
		for i, sub := range l.listeners {
			if sub.id == id {
				l.listeners = append(l.listeners[:i:i], l.listeners[i+1:]...)
				return
			}
		}
	}
}
