// Package producer provides synchronous publish/subscribe primitives used to
// chain aggregation stages together.
//
// Delivery happens on the caller's stack: Send returns only once every
// subscriber has been called. Subscribers are called in the order they first
// subscribed, over a snapshot of the subscriber list taken when Send starts.
// A subscriber that unsubscribes during a dispatch is not called for the rest
// of that dispatch; one that subscribes during a dispatch is first called on
// the next Send.
package producer

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ID identifies a subscriber. Subscribing twice with the same ID replaces the
// earlier callback.
type ID string

var nextID atomic.Uint64

// NewID returns an ID that is unique within the process, prefixed with the
// given label for readability.
func NewID(prefix string) ID {
	return ID(fmt.Sprintf("%s#%d", prefix, nextID.Add(1)))
}

type subscription[E any] struct {
	id       ID
	callback func(E)
	removed  atomic.Bool
}

// Producer fans events of type E out to its subscribers. The zero value is
// ready to use.
type Producer[E any] struct {
	mu   sync.Mutex
	subs []*subscription[E]
}

// Subscribe registers callback under id. If id is already subscribed its
// callback is replaced and it keeps its position in the delivery order.
func (p *Producer[E]) Subscribe(id ID, callback func(E)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subs {
		if s.id == id {
			// Swap rather than mutate so that an in-flight dispatch keeps the
			// callback it snapshotted.
			p.subs[i] = &subscription[E]{id: id, callback: callback}
			return
		}
	}
	p.subs = append(p.subs, &subscription[E]{id: id, callback: callback})
}

// Unsubscribe removes id. Removing an id that is not subscribed is a no-op.
func (p *Producer[E]) Unsubscribe(id ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subs {
		if s.id == id {
			s.removed.Store(true)
			p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of current subscribers.
func (p *Producer[E]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Send delivers event to every current subscriber.
func (p *Producer[E]) Send(event E) {
	p.mu.Lock()
	snapshot := make([]*subscription[E], len(p.subs))
	copy(snapshot, p.subs)
	p.mu.Unlock()

	for _, s := range snapshot {
		if s.removed.Load() {
			continue
		}
		s.callback(event)
	}
}
