package pubsub

import (
	"sync"
	"time"
)

// Handler receives events delivered synchronously by an Emitter.
type Handler[T any] func(Event[T])

type handlerEntry[T any] struct {
	id int
	fn Handler[T]
}

// Emitter is a synchronous event dispatcher. Handlers run on the goroutine
// that calls Emit, in registration order. Unlike Broker there is no buffering
// and no drops: every handler sees every event.
//
// A handler must not call back into the container that emitted the event;
// emission happens after the container's own state is settled, but re-entrant
// mutation is undefined.
type Emitter[T any] struct {
	mu       sync.Mutex
	handlers map[EventType][]handlerEntry[T]
	nextID   int
	closed   bool
}

// NewEmitter creates an empty emitter.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{handlers: make(map[EventType][]handlerEntry[T])}
}

// On registers a handler for the given event type and returns a function
// that removes it. The returned function is safe to call more than once.
func (e *Emitter[T]) On(eventType EventType, fn Handler[T]) (off func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return func() {}
	}

	e.nextID++
	id := e.nextID
	e.handlers[eventType] = append(e.handlers[eventType], handlerEntry[T]{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		entries := e.handlers[eventType]
		for i, entry := range entries {
			if entry.id == id {
				e.handlers[eventType] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers an event to every handler registered for its type.
func (e *Emitter[T]) Emit(eventType EventType, payload T) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	entries := e.handlers[eventType]
	snapshot := make([]handlerEntry[T], len(entries))
	copy(snapshot, entries)
	e.mu.Unlock()

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, entry := range snapshot {
		entry.fn(event)
	}
}

// HandlerCount returns the number of handlers registered for the event type.
func (e *Emitter[T]) HandlerCount(eventType EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[eventType])
}

// Close detaches every handler. Further On and Emit calls are no-ops.
func (e *Emitter[T]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.handlers = nil
}
