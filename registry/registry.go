// Package registry implements an ordered, keyed collection of tickets:
// records with a stable id, a derived contiguous index, and an arbitrary
// payload. It is the base layer the selection, queue and timeline containers
// decorate.
package registry

import (
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/roster/pubsub"
)

// Event types emitted when Options.Events is enabled.
const (
	EventRegister   pubsub.EventType = "register:ticket"
	EventUnregister pubsub.EventType = "unregister:ticket"
	EventUpdate     pubsub.EventType = "update:ticket"
	EventClear      pubsub.EventType = "clear:registry"
)

// Options configures a Registry.
type Options struct {
	// Events opts into synchronous event emission. Off by default so callers
	// that only need reads pay nothing.
	Events bool
}

// Registry owns a keyed map of id to ticket plus two auxiliary indexes: a
// directory (index to id) and a catalog (value to id). Both are rebuilt on
// every reindex so they never hold stale entries.
//
// All mutations are atomic from the caller's perspective. Events fire after
// the mutation completes and outside the registry lock, so a handler never
// observes a half-rebuilt directory. Handlers must not mutate the registry
// they are observing.
type Registry struct {
	mu        sync.RWMutex
	tickets   map[string]*Ticket
	directory []string       // index -> id
	catalog   map[any]string // value -> id, comparable values only
	emitter   *pubsub.Emitter[*Ticket]
	disposed  bool
}

// New creates an empty registry.
func New(opts Options) *Registry {
	r := &Registry{
		tickets: make(map[string]*Ticket),
		catalog: make(map[any]string),
	}
	if opts.Events {
		r.emitter = pubsub.NewEmitter[*Ticket]()
	}
	return r
}

// Register stores a ticket for the item, assigning an id when absent and an
// index equal to the current size. Supplying a duplicate id overwrites the
// existing ticket's value in place (last write wins); the index is kept.
func (r *Registry) Register(item Item) *Ticket {
	r.mu.Lock()
	t := r.registerLocked(item)
	r.mu.Unlock()

	r.emit(EventRegister, t)
	return t
}

func (r *Registry) registerLocked(item Item) *Ticket {
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}

	if existing, ok := r.tickets[id]; ok {
		// Duplicate id: permissive overwrite, index unchanged.
		r.dropCatalogEntry(existing)
		existing.valueIsIndex = item.Value == nil
		if item.Value == nil {
			existing.Value = existing.Index
		} else {
			existing.Value = item.Value
		}
		r.addCatalogEntry(existing)
		return existing
	}

	t := &Ticket{
		ID:           id,
		Index:        len(r.directory),
		Value:        item.Value,
		valueIsIndex: item.Value == nil,
	}
	if t.valueIsIndex {
		t.Value = t.Index
	}

	r.tickets[id] = t
	r.directory = append(r.directory, id)
	r.addCatalogEntry(t)
	return t
}

// Reinstate inserts a previously removed ticket at the head of the
// collection, shifting everything else down one index. The ticket keeps its
// identity, so pointers handed out before its removal stay valid, and a
// value-is-index ticket resumes tracking its index. An id already present
// is a no-op returning the resident ticket.
func (r *Registry) Reinstate(t *Ticket) *Ticket {
	r.mu.Lock()
	if existing, ok := r.tickets[t.ID]; ok {
		r.mu.Unlock()
		return existing
	}
	r.tickets[t.ID] = t
	r.directory = append([]string{t.ID}, r.directory...)
	r.reindexLocked()
	r.mu.Unlock()

	r.emit(EventRegister, t)
	return t
}

// Unregister removes the ticket and reindexes the remaining collection.
// Missing ids are a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	t, ok := r.tickets[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.removeLocked(t)
	r.reindexLocked()
	r.mu.Unlock()

	r.emit(EventUnregister, t)
}

// Upsert merges the item's value into an existing ticket without changing
// its id or index. Returns nil when the id is unknown.
func (r *Registry) Upsert(id string, item Item) *Ticket {
	r.mu.Lock()
	t, ok := r.tickets[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if item.Value != nil {
		r.dropCatalogEntry(t)
		t.Value = item.Value
		t.valueIsIndex = false
		r.addCatalogEntry(t)
	}
	r.mu.Unlock()

	r.emit(EventUpdate, t)
	return t
}

// Onboard bulk-registers items in input order. Each item registers
// independently: one bad entry cannot corrupt the indices of the rest.
func (r *Registry) Onboard(items []Item) []*Ticket {
	r.mu.Lock()
	tickets := make([]*Ticket, 0, len(items))
	for _, item := range items {
		tickets = append(tickets, r.registerLocked(item))
	}
	r.mu.Unlock()

	for _, t := range tickets {
		r.emit(EventRegister, t)
	}
	return tickets
}

// Offboard bulk-unregisters ids in input order with a single trailing
// reindex, so listeners never observe transient intermediate indices.
func (r *Registry) Offboard(ids []string) {
	r.mu.Lock()
	removed := make([]*Ticket, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.tickets[id]; ok {
			r.removeLocked(t)
			removed = append(removed, t)
		}
	}
	if len(removed) > 0 {
		r.reindexLocked()
	}
	r.mu.Unlock()

	for _, t := range removed {
		r.emit(EventUnregister, t)
	}
}

// Get returns the ticket for the id, or nil.
func (r *Registry) Get(id string) *Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tickets[id]
}

// Find returns the ticket for the id and whether it exists.
func (r *Registry) Find(id string) (*Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	return t, ok
}

// Lookup returns the ticket at the given index, or nil.
func (r *Registry) Lookup(index int) *Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.directory) {
		return nil
	}
	return r.tickets[r.directory[index]]
}

// Browse returns the ticket carrying the given value, or nil. Only
// comparable values participate in the catalog.
func (r *Registry) Browse(value any) *Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !catalogable(value) {
		return nil
	}
	id, ok := r.catalog[value]
	if !ok {
		return nil
	}
	return r.tickets[id]
}

// Keys returns the ticket ids in index order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.directory))
	copy(keys, r.directory)
	return keys
}

// Values returns the ticket values in index order.
func (r *Registry) Values() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := make([]any, 0, len(r.directory))
	for _, id := range r.directory {
		values = append(values, r.tickets[id].Value)
	}
	return values
}

// Entries returns the live tickets in index order.
func (r *Registry) Entries() []*Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*Ticket, 0, len(r.directory))
	for _, id := range r.directory {
		entries = append(entries, r.tickets[id])
	}
	return entries
}

// Size returns the number of live tickets.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.directory)
}

// Clear empties the registry and both auxiliary indexes.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.tickets = make(map[string]*Ticket)
	r.directory = nil
	r.catalog = make(map[any]string)
	r.mu.Unlock()

	r.emit(EventClear, nil)
}

// On attaches a handler for the event type and returns its detach function.
// When events are disabled the handler is never called and the returned
// function is a no-op.
func (r *Registry) On(eventType pubsub.EventType, fn pubsub.Handler[*Ticket]) (off func()) {
	if r.emitter == nil {
		return func() {}
	}
	return r.emitter.On(eventType, fn)
}

// Dispose detaches all event handlers. It is safe to call once; mutating a
// disposed registry is undefined behavior.
func (r *Registry) Dispose() {
	r.mu.Lock()
	disposed := r.disposed
	r.disposed = true
	r.mu.Unlock()
	if disposed {
		return
	}
	if r.emitter != nil {
		r.emitter.Close()
	}
}

// removeLocked deletes the ticket from the map, directory and catalog
// without reindexing.
func (r *Registry) removeLocked(t *Ticket) {
	delete(r.tickets, t.ID)
	for i, id := range r.directory {
		if id == t.ID {
			r.directory = append(r.directory[:i:i], r.directory[i+1:]...)
			break
		}
	}
	r.dropCatalogEntry(t)
}

// reindexLocked recomputes every ticket's index in directory order and
// rebuilds the catalog. Value-is-index tickets track their new index.
func (r *Registry) reindexLocked() {
	r.catalog = make(map[any]string, len(r.directory))
	for i, id := range r.directory {
		t := r.tickets[id]
		t.Index = i
		if t.valueIsIndex {
			t.Value = i
		}
		r.addCatalogEntry(t)
	}
}

func (r *Registry) addCatalogEntry(t *Ticket) {
	if catalogable(t.Value) {
		r.catalog[t.Value] = t.ID
	}
}

func (r *Registry) dropCatalogEntry(t *Ticket) {
	if catalogable(t.Value) && r.catalog[t.Value] == t.ID {
		delete(r.catalog, t.Value)
	}
}

func (r *Registry) emit(eventType pubsub.EventType, t *Ticket) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(eventType, t)
}

// catalogable reports whether the value can serve as a catalog key.
func catalogable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Comparable()
}
