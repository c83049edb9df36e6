package producer

import (
	"errors"
	"sync"

	"golang.org/x/xerrors"
)

// ErrUnknownChannel signals that an event channel was used before it was
// registered.
var ErrUnknownChannel = errors.New("unknown event channel")

// Keyed is a producer with several named channels, each with its own set of
// subscribers. Channels must be registered before they can be subscribed to
// or sent on. The zero value is ready to use.
type Keyed[E any] struct {
	mu       sync.RWMutex
	channels map[string]*Producer[E]
	order    []string
}

// RegisterEventKey declares a channel. Registering an existing channel is a
// no-op.
func (k *Keyed[E]) RegisterEventKey(name string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.channels == nil {
		k.channels = make(map[string]*Producer[E])
	}
	if _, exists := k.channels[name]; !exists {
		k.channels[name] = &Producer[E]{}
		k.order = append(k.order, name)
	}
}

// EventKeys returns the registered channel names in registration order.
func (k *Keyed[E]) EventKeys() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]string(nil), k.order...)
}

func (k *Keyed[E]) channel(name string) (*Producer[E], error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	ch, found := k.channels[name]
	if !found {
		return nil, xerrors.Errorf("channel %q: %w", name, ErrUnknownChannel)
	}
	return ch, nil
}

// Subscribe registers callback under id on the named channel.
func (k *Keyed[E]) Subscribe(name string, id ID, callback func(E)) error {
	ch, err := k.channel(name)
	if err != nil {
		return err
	}
	ch.Subscribe(id, callback)
	return nil
}

// Unsubscribe removes id from the named channel. Removing an id that is not
// subscribed is a no-op; naming an unregistered channel is an error.
func (k *Keyed[E]) Unsubscribe(name string, id ID) error {
	ch, err := k.channel(name)
	if err != nil {
		return err
	}
	ch.Unsubscribe(id)
	return nil
}

// SendEvent synchronously delivers event to every subscriber of the named
// channel.
func (k *Keyed[E]) SendEvent(name string, event E) error {
	ch, err := k.channel(name)
	if err != nil {
		return err
	}
	ch.Send(event)
	return nil
}
