// Package queue decorates a registry with FIFO timeout-based auto-expiry.
// Only the head ticket's timer ever runs; every other ticket waits paused
// until it reaches the front.
package queue

import (
	"sync"
	"time"

	"github.com/zjrosen/roster/registry"
)

// Never disables auto-expiry for a ticket.
const Never time.Duration = -1

// DefaultTimeout applies when neither the ticket nor the queue sets one.
const DefaultTimeout = 5 * time.Second

// Options configures a Queue.
type Options struct {
	registry.Options

	// Timeout is the fallback expiry for tickets that do not set their own.
	// Zero means DefaultTimeout; Never disables expiry by default.
	Timeout time.Duration
}

// Item is the caller-supplied input to Register.
type Item struct {
	registry.Item

	// Timeout overrides the queue default. Zero falls back to the queue
	// default; Never disables auto-expiry for this ticket.
	Timeout time.Duration
}

// Ticket is a registry ticket decorated with queue state.
type Ticket struct {
	*registry.Ticket

	// Timeout is the resolved expiry duration (Never when disabled).
	Timeout time.Duration

	q *Queue
}

// IsPaused reports whether the ticket's timer is not running. Every ticket
// except the head is paused.
func (t *Ticket) IsPaused() bool {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	return !t.q.running[t.ID]
}

// Dismiss removes the ticket from the queue, clearing its timer.
func (t *Ticket) Dismiss() {
	t.q.Unregister(t.ID)
}

// Queue owns the timer handles; the underlying registry owns the tickets.
type Queue struct {
	reg  *registry.Registry
	opts Options

	mu      sync.Mutex
	items   map[string]*Ticket
	timers  map[string]*time.Timer
	running map[string]bool
	armed   map[string]uint64
	gen     uint64
}

// New creates an empty queue.
func New(opts Options) *Queue {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Queue{
		reg:     registry.New(opts.Options),
		opts:    opts,
		items:   make(map[string]*Ticket),
		timers:  make(map[string]*time.Timer),
		running: make(map[string]bool),
		armed:   make(map[string]uint64),
	}
}

// Registry exposes the underlying registry for read access.
func (q *Queue) Registry() *registry.Registry { return q.reg }

// Size returns the number of queued tickets.
func (q *Queue) Size() int { return q.reg.Size() }

// Register enqueues the item. The ticket starts paused unless the queue was
// empty, in which case its timer begins immediately.
func (q *Queue) Register(item Item) *Ticket {
	wasEmpty := q.reg.Size() == 0
	base := q.reg.Register(item.Item)

	timeout := item.Timeout
	if timeout == 0 {
		timeout = q.opts.Timeout
	}

	t := &Ticket{Ticket: base, Timeout: timeout, q: q}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[base.ID] = t
	if wasEmpty {
		q.startTimerLocked(t)
	}
	return t
}

// Head returns the ticket at index 0, or nil for an empty queue.
func (q *Queue) Head() *Ticket {
	base := q.reg.Lookup(0)
	if base == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items[base.ID]
}

// Unregister dequeues a ticket and clears its timer. With no id the head is
// removed. Removing the head resumes the new head's timer. Unknown ids and
// empty queues return nil.
func (q *Queue) Unregister(ids ...string) *Ticket {
	var id string
	if len(ids) > 0 {
		id = ids[0]
	} else {
		head := q.reg.Lookup(0)
		if head == nil {
			return nil
		}
		id = head.ID
	}

	base := q.reg.Get(id)
	if base == nil {
		return nil
	}
	wasHead := base.Index == 0

	q.mu.Lock()
	t := q.items[id]
	q.stopTimerLocked(id)
	delete(q.items, id)
	q.mu.Unlock()

	q.reg.Unregister(id)

	if wasHead {
		q.Resume()
	}
	return t
}

// Offboard batch-removes tickets with a single resume afterwards, if any of
// the removed tickets had been the head.
func (q *Queue) Offboard(ids []string) {
	headRemoved := false

	q.mu.Lock()
	for _, id := range ids {
		base := q.reg.Get(id)
		if base == nil {
			continue
		}
		if base.Index == 0 {
			headRemoved = true
		}
		q.stopTimerLocked(id)
		delete(q.items, id)
	}
	q.mu.Unlock()

	q.reg.Offboard(ids)

	if headRemoved {
		q.Resume()
	}
}

// Pause stops the head ticket's timer. Returns the head, or nil for an
// empty queue.
func (q *Queue) Pause() *Ticket {
	head := q.Head()
	if head == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopTimerLocked(head.ID)
	return head
}

// Resume restarts the head ticket's timer from the full timeout duration.
// There is no remaining-time tracking. Returns the head, or nil for an
// empty queue.
func (q *Queue) Resume() *Ticket {
	head := q.Head()
	if head == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.startTimerLocked(head)
	return head
}

// Clear empties the queue and stops every timer. Running state is keyed
// separately from the timer handles because a Never ticket runs timerless.
func (q *Queue) Clear() {
	q.mu.Lock()
	for id := range q.running {
		q.stopTimerLocked(id)
	}
	q.items = make(map[string]*Ticket)
	q.mu.Unlock()

	q.reg.Clear()
}

// Dispose stops all timers and detaches event listeners exactly once.
func (q *Queue) Dispose() {
	q.Clear()
	q.reg.Dispose()
}

// startTimerLocked arms the ticket's expiry timer, replacing any previous
// one. Tickets with a Never timeout stay unpaused but never expire.
func (q *Queue) startTimerLocked(t *Ticket) {
	q.stopTimerLocked(t.ID)
	q.running[t.ID] = true
	if t.Timeout == Never {
		return
	}
	id := t.ID
	q.gen++
	gen := q.gen
	q.armed[id] = gen
	q.timers[id] = time.AfterFunc(t.Timeout, func() {
		q.expire(id, gen)
	})
}

// stopTimerLocked cancels the ticket's timer if armed.
func (q *Queue) stopTimerLocked(id string) {
	delete(q.running, id)
	delete(q.armed, id)
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
}

// expire fires on the timer goroutine. A timer stopped or re-armed
// concurrently loses the generation race here and becomes a no-op.
func (q *Queue) expire(id string, gen uint64) {
	q.mu.Lock()
	current, armed := q.armed[id]
	q.mu.Unlock()
	if !armed || current != gen {
		return
	}
	q.Unregister(id)
}
