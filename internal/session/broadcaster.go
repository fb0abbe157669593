package session

import "sync"

// EventKind discriminates session-changed events.
type EventKind int

const (
	// Established fires after a successful SetSession.
	Established EventKind = iota
	// Cleared fires after a successful Clear.
	Cleared
)

// Event describes one session change.
type Event struct {
	Kind EventKind
}

// Listener receives session events.
type Listener func(Event)

// Broadcaster is an explicit observer registry for session changes: the
// store publishes, the auth controller and navigation layer subscribe.
type Broadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns an unsubscribe func.
func (b *Broadcaster) Subscribe(l Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Broadcaster) publish(e Event) {
	b.mu.Lock()
	snapshot := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		snapshot = append(snapshot, l)
	}
	b.mu.Unlock()

	for _, l := range snapshot {
		l(e)
	}
}
