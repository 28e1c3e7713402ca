// Package pubsub provides the event plumbing for roster containers: a
// synchronous Emitter used inside registries and a channel-based Broker for
// consumers that want to observe changes asynchronously.
package pubsub

import (
	"context"
	"time"
)

// EventType names a kind of event being published.
type EventType string

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
