// Package observe bridges the synchronous registry events onto the
// channel-based broker, keeping an item snapshot that is safe to read
// from other goroutines.
package observe

import (
	"context"
	"sync"

	"github.com/zjrosen/roster/pubsub"
	"github.com/zjrosen/roster/registry"
)

// Change is the payload delivered to mirror subscribers. The ticket is nil
// for clear events.
type Change struct {
	Ticket *registry.Ticket
	Items  []registry.Item
}

// Mirror observes a registry asynchronously. Handlers attached directly to
// a registry run inline with the mutation; a mirror decouples consumers
// behind buffered channels and keeps the latest item snapshot.
type Mirror struct {
	mu     sync.Mutex
	broker *pubsub.Broker[Change]
	items  []registry.Item
	offs   []func()
	closed bool
}

// NewMirror attaches a mirror to the registry. The registry must have been
// created with events enabled. Call Close before disposing the registry.
func NewMirror(reg *registry.Registry) *Mirror {
	m := &Mirror{
		broker: pubsub.NewBroker[Change](0),
		items:  snapshot(reg),
	}

	forward := func(event pubsub.Event[*registry.Ticket]) {
		change := Change{Ticket: event.Payload, Items: snapshot(reg)}

		m.mu.Lock()
		m.items = change.Items
		closed := m.closed
		m.mu.Unlock()

		if !closed {
			m.broker.Publish(event.Type, change)
		}
	}

	for _, eventType := range []pubsub.EventType{
		registry.EventRegister,
		registry.EventUnregister,
		registry.EventUpdate,
		registry.EventClear,
	} {
		m.offs = append(m.offs, reg.On(eventType, forward))
	}
	return m
}

func snapshot(reg *registry.Registry) []registry.Item {
	tickets := reg.Entries()
	items := make([]registry.Item, len(tickets))
	for i, t := range tickets {
		items[i] = registry.Item{ID: t.ID, Value: t.Value}
	}
	return items
}

// Subscribe returns a channel of changes. The channel closes when the
// context is cancelled or the mirror is closed.
func (m *Mirror) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return m.broker.Subscribe(ctx)
}

// Items returns the snapshot taken at the last observed change.
func (m *Mirror) Items() []registry.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]registry.Item, len(m.items))
	copy(out, m.items)
	return out
}

// Close detaches from the registry and closes all subscriber channels.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	offs := m.offs
	m.offs = nil
	m.mu.Unlock()

	for _, off := range offs {
		off()
	}
	m.broker.Close()
}
