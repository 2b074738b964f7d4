// File: internal/provider/broadcast.go
package provider

import "sync"

// broadcaster fans session-change events out to registered callbacks.
// Callbacks run synchronously on the publishing goroutine; subscribers that
// need isolation hand off to their own goroutine or channel.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]func(Event)
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]func(Event))}
}

func (b *broadcaster) subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcaster) publish(e Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
