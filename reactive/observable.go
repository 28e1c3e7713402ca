// Package reactive provides a minimal observable value: get, set, and
// synchronous change subscription. Containers that need to react to external
// state (a viewport size, a bound model value) accept an Observable instead
// of binding to any particular reactivity runtime.
package reactive

import "sync"

// Observable holds a value of type T and notifies subscribers on change.
type Observable[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]func(T)
	nextID int
}

// NewObservable creates an observable with an initial value.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores a new value and notifies every subscriber synchronously, on
// the calling goroutine.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	o.value = value
	subs := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers a change callback and returns its unsubscribe
// function. The callback does not fire for the current value.
func (o *Observable[T]) Subscribe(fn func(T)) (off func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.subs[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (o *Observable[T]) SubscriberCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}
