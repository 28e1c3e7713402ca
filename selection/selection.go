// Package selection decorates a registry with per-ticket active state,
// single or multiple selection modes, and a mandatory invariant that keeps
// the selection from ever emptying.
package selection

import (
	"sync"

	"github.com/zjrosen/roster/registry"
)

// Mandatory controls the never-empty invariant.
type Mandatory int

const (
	// MandatoryOff allows an empty selection.
	MandatoryOff Mandatory = iota

	// MandatoryOn rejects unselecting the sole active ticket.
	MandatoryOn

	// MandatoryForce additionally auto-selects a ticket whenever the active
	// set is empty and a candidate exists.
	MandatoryForce
)

// Options configures a Selection.
type Options struct {
	registry.Options

	// Multiple allows more than one active ticket. In single mode selecting
	// a ticket clears all others.
	Multiple bool

	// Mandatory enables the never-empty invariant.
	Mandatory Mandatory
}

// Item is the caller-supplied input to Register.
type Item struct {
	registry.Item

	// Disabled tickets can never become active through Select or Toggle.
	Disabled bool
}

// Selection owns the selected-id set; the underlying registry owns the
// tickets themselves.
type Selection struct {
	*registry.Registry

	mu       sync.Mutex
	selected map[string]struct{}
	disabled map[string]struct{}
	opts     Options
}

// New creates an empty selection container.
func New(opts Options) *Selection {
	return &Selection{
		Registry: registry.New(opts.Options),
		selected: make(map[string]struct{}),
		disabled: make(map[string]struct{}),
		opts:     opts,
	}
}

// Register stores the item's ticket and records its disabled state. Under
// MandatoryForce an empty active set captures the new ticket immediately,
// even a disabled one: the flag is not reconciled until after registration.
// That quirk is pinned by tests as current behavior.
func (s *Selection) Register(item Item) *registry.Ticket {
	t := s.Registry.Register(item.Item)

	s.mu.Lock()
	defer s.mu.Unlock()
	if item.Disabled {
		s.disabled[t.ID] = struct{}{}
	} else {
		delete(s.disabled, t.ID)
	}
	if s.opts.Mandatory == MandatoryForce && len(s.selected) == 0 {
		s.selected[t.ID] = struct{}{}
	}
	return t
}

// Unregister removes the ticket and its auxiliary selection state. Under
// MandatoryForce the selection refills from the remaining tickets.
func (s *Selection) Unregister(id string) {
	s.Registry.Unregister(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, id)
	delete(s.disabled, id)
	s.mandateLocked()
}

// Offboard removes the tickets in bulk along with their selection state.
// Under MandatoryForce the selection refills from the survivors.
func (s *Selection) Offboard(ids []string) {
	s.Registry.Offboard(ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.selected, id)
		delete(s.disabled, id)
	}
	s.mandateLocked()
}

// Clear removes every ticket and drops all selection state with them.
func (s *Selection) Clear() {
	s.Registry.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
	s.disabled = make(map[string]struct{})
}

// Select activates the ticket. Disabled or unknown tickets are a no-op. In
// single mode every other ticket is deactivated.
func (s *Selection) Select(id string) {
	if s.Registry.Get(id) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, off := s.disabled[id]; off {
		return
	}
	if !s.opts.Multiple {
		s.selected = make(map[string]struct{})
	}
	s.selected[id] = struct{}{}
}

// Unselect deactivates the ticket. Under a mandatory mode, unselecting the
// sole active ticket is a no-op.
func (s *Selection) Unselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, active := s.selected[id]; !active {
		return
	}
	if s.opts.Mandatory != MandatoryOff && len(s.selected) == 1 {
		return
	}
	delete(s.selected, id)
	s.mandateLocked()
}

// Toggle flips the ticket's active state subject to the same rules as
// Select and Unselect.
func (s *Selection) Toggle(id string) {
	if s.IsActive(id) {
		s.Unselect(id)
	} else {
		s.Select(id)
	}
}

// IsActive reports whether the ticket is in the active set.
func (s *Selection) IsActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.selected[id]
	return active
}

// SelectAll activates every non-disabled ticket. In single mode only the
// first non-disabled ticket by index becomes active.
func (s *Selection) SelectAll() {
	entries := s.Registry.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range entries {
		if _, off := s.disabled[t.ID]; off {
			continue
		}
		s.selected[t.ID] = struct{}{}
		if !s.opts.Multiple {
			return
		}
	}
}

// UnselectAll deactivates every ticket. MandatoryOn retains the active
// ticket with the lowest index; MandatoryForce refills via mandate.
func (s *Selection) UnselectAll() {
	entries := s.Registry.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Mandatory == MandatoryOn {
		for _, t := range entries {
			if _, active := s.selected[t.ID]; active {
				s.selected = map[string]struct{}{t.ID: {}}
				return
			}
		}
	}

	s.selected = make(map[string]struct{})
	s.mandateLocked()
}

// Mandate selects the first non-disabled ticket by index order when the
// selection is empty and a mandatory mode is set. No-op otherwise.
func (s *Selection) Mandate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selected) > 0 {
		return
	}
	s.forceSelectFirstLocked()
}

// Reset clears the selection and re-runs mandate semantics, so a mandatory
// selection is restored immediately after the reset.
func (s *Selection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
	s.forceSelectFirstLocked()
}

// ActiveIDs returns the active ticket ids in index order.
func (s *Selection) ActiveIDs() []string {
	entries := s.Registry.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for _, t := range entries {
		if _, active := s.selected[t.ID]; active {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// SelectedValues returns the active tickets' values in index order. Values,
// not ids, are the public contract for model binding.
func (s *Selection) SelectedValues() []any {
	entries := s.Registry.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]any, 0, len(s.selected))
	for _, t := range entries {
		if _, active := s.selected[t.ID]; active {
			values = append(values, t.Value)
		}
	}
	return values
}

// SelectByValue resolves a ticket through the value catalog and selects it.
func (s *Selection) SelectByValue(value any) {
	if t := s.Registry.Browse(value); t != nil {
		s.Select(t.ID)
	}
}

// IsDisabled reports the ticket's disabled flag.
func (s *Selection) IsDisabled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, off := s.disabled[id]
	return off
}

// SetDisabled reconciles the ticket's disabled flag after registration.
// Disabling a ticket does not deactivate it; a forcibly selected disabled
// ticket stays active until something else is selected.
func (s *Selection) SetDisabled(id string, disabled bool) {
	if s.Registry.Get(id) == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if disabled {
		s.disabled[id] = struct{}{}
	} else {
		delete(s.disabled, id)
	}
}

// ActiveCount returns the size of the active set.
func (s *Selection) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// mandateLocked refills an emptied selection under MandatoryForce.
func (s *Selection) mandateLocked() {
	if s.opts.Mandatory != MandatoryForce || len(s.selected) > 0 {
		return
	}
	s.forceSelectFirstLocked()
}

// forceSelectFirstLocked selects the first non-disabled ticket by index,
// when a mandatory mode is set.
func (s *Selection) forceSelectFirstLocked() {
	if s.opts.Mandatory == MandatoryOff {
		return
	}
	for _, t := range s.Registry.Entries() {
		if _, off := s.disabled[t.ID]; off {
			continue
		}
		s.selected[t.ID] = struct{}{}
		return
	}
}
