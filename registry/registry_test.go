package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/roster/pubsub"
)

func TestRegistry_Register(t *testing.T) {
	r := New(Options{})

	a := r.Register(Item{ID: "a", Value: "alpha"})
	b := r.Register(Item{ID: "b", Value: "beta"})

	require.NotNil(t, a)
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, "alpha", a.Value)
	assert.Equal(t, 1, b.Index)
	assert.Equal(t, 2, r.Size())
}

func TestRegistry_Register_GeneratesID(t *testing.T) {
	r := New(Options{})

	ticket := r.Register(Item{Value: "payload"})

	require.NotEmpty(t, ticket.ID)
	assert.Same(t, ticket, r.Get(ticket.ID))
}

func TestRegistry_Register_ValueDefaultsToIndex(t *testing.T) {
	r := New(Options{})

	a := r.Register(Item{ID: "a"})
	b := r.Register(Item{ID: "b"})

	assert.Equal(t, 0, a.Value)
	assert.Equal(t, 1, b.Value)

	// Removing the first ticket shifts the second; its value must follow.
	r.Unregister("a")
	assert.Equal(t, 0, b.Index)
	assert.Equal(t, 0, b.Value)
}

func TestRegistry_Register_DuplicateIDOverwrites(t *testing.T) {
	r := New(Options{})

	r.Register(Item{ID: "a", Value: "old"})
	r.Register(Item{ID: "b", Value: "beta"})
	replaced := r.Register(Item{ID: "a", Value: "new"})

	// Last write wins, index is kept, no extra entry appears.
	assert.Equal(t, 0, replaced.Index)
	assert.Equal(t, "new", replaced.Value)
	assert.Equal(t, 2, r.Size())
	assert.Nil(t, r.Browse("old"))
	assert.Same(t, replaced, r.Browse("new"))
}

func TestRegistry_Unregister(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a", Value: "alpha"})
	r.Register(Item{ID: "b", Value: "beta"})
	r.Register(Item{ID: "c", Value: "gamma"})

	r.Unregister("b")

	require.Equal(t, 2, r.Size())
	assert.Nil(t, r.Get("b"))
	assert.Equal(t, 0, r.Get("a").Index)
	assert.Equal(t, 1, r.Get("c").Index)

	// Stale catalog and directory entries must not survive.
	assert.Nil(t, r.Browse("beta"))
	assert.Nil(t, r.Lookup(2))
	assert.Same(t, r.Get("c"), r.Lookup(1))
}

func TestRegistry_Reinstate(t *testing.T) {
	r := New(Options{})
	evicted := r.Register(Item{ID: "a", Value: "alpha"})
	r.Register(Item{ID: "b", Value: "beta"})
	r.Unregister("a")

	got := r.Reinstate(evicted)

	assert.Same(t, evicted, got)
	assert.Same(t, evicted, r.Lookup(0))
	assert.Equal(t, 1, r.Get("b").Index)
	assert.Same(t, evicted, r.Browse("alpha"))
}

func TestRegistry_Reinstate_ValueTracksIndex(t *testing.T) {
	r := New(Options{})
	evicted := r.Register(Item{ID: "a"})
	r.Register(Item{ID: "b"})
	r.Unregister("a")
	require.Equal(t, 0, r.Get("b").Value)

	r.Reinstate(evicted)

	assert.Equal(t, 0, evicted.Value)
	assert.Equal(t, 1, r.Get("b").Value)
}

func TestRegistry_Reinstate_ResidentIDIsNoop(t *testing.T) {
	r := New(Options{})
	resident := r.Register(Item{ID: "a", Value: "alpha"})

	got := r.Reinstate(&Ticket{ID: "a", Value: "other"})

	assert.Same(t, resident, got)
	assert.Equal(t, 1, r.Size())
	assert.Equal(t, "alpha", r.Get("a").Value)
}

func TestRegistry_Unregister_MissingIsNoop(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a"})

	r.Unregister("ghost")

	assert.Equal(t, 1, r.Size())
}

func TestRegistry_Upsert(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a", Value: "alpha"})
	r.Register(Item{ID: "b", Value: "beta"})

	updated := r.Upsert("a", Item{Value: "ALPHA"})

	require.NotNil(t, updated)
	assert.Equal(t, "ALPHA", updated.Value)
	assert.Equal(t, 0, updated.Index, "upsert must not change the index")
	assert.Same(t, updated, r.Browse("ALPHA"))
	assert.Nil(t, r.Browse("alpha"))
}

func TestRegistry_Upsert_MissingReturnsNil(t *testing.T) {
	r := New(Options{})

	assert.Nil(t, r.Upsert("ghost", Item{Value: 1}))
}

func TestRegistry_Onboard(t *testing.T) {
	r := New(Options{})

	tickets := r.Onboard([]Item{
		{ID: "a", Value: "alpha"},
		{ID: "b", Value: "beta"},
		{ID: "c", Value: "gamma"},
	})

	require.Len(t, tickets, 3)
	for i, ticket := range tickets {
		assert.Equal(t, i, ticket.Index)
	}
	assert.Equal(t, 3, r.Size())
}

func TestRegistry_Offboard(t *testing.T) {
	r := New(Options{})
	r.Onboard([]Item{
		{ID: "a", Value: "alpha"},
		{ID: "b", Value: "beta"},
		{ID: "c", Value: "gamma"},
		{ID: "d", Value: "delta"},
	})

	r.Offboard([]string{"a", "c", "ghost"})

	require.Equal(t, 2, r.Size())
	assert.Equal(t, 0, r.Get("b").Index)
	assert.Equal(t, 1, r.Get("d").Index)
	assert.Nil(t, r.Browse("alpha"))
	assert.Nil(t, r.Browse("gamma"))
}

func TestRegistry_Lookups(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a", Value: "alpha"})
	r.Register(Item{ID: "b", Value: "beta"})

	ticket, ok := r.Find("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", ticket.Value)

	_, ok = r.Find("ghost")
	assert.False(t, ok)

	assert.Same(t, ticket, r.Lookup(0))
	assert.Nil(t, r.Lookup(-1))
	assert.Nil(t, r.Lookup(5))

	assert.Same(t, ticket, r.Browse("alpha"))
	assert.Nil(t, r.Browse("ghost"))
}

func TestRegistry_Browse_UncomparableValue(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a", Value: []string{"not", "comparable"}})

	// Slices cannot key the catalog; Browse must not panic.
	assert.Nil(t, r.Browse([]string{"not", "comparable"}))
	assert.Equal(t, 1, r.Size())
}

func TestRegistry_SnapshotAccessors(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a", Value: "alpha"})
	r.Register(Item{ID: "b", Value: "beta"})

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, []any{"alpha", "beta"}, r.Values())

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestRegistry_Clear(t *testing.T) {
	r := New(Options{})
	r.Register(Item{ID: "a", Value: "alpha"})
	r.Register(Item{ID: "b", Value: "beta"})

	r.Clear()

	assert.Zero(t, r.Size())
	assert.Nil(t, r.Get("a"))
	assert.Nil(t, r.Browse("alpha"))
	assert.Nil(t, r.Lookup(0))
}

func TestRegistry_Events(t *testing.T) {
	r := New(Options{Events: true})

	var log []string
	r.On(EventRegister, func(ev pubsub.Event[*Ticket]) {
		log = append(log, "register:"+ev.Payload.ID)
	})
	r.On(EventUpdate, func(ev pubsub.Event[*Ticket]) {
		log = append(log, "update:"+ev.Payload.ID)
	})
	r.On(EventUnregister, func(ev pubsub.Event[*Ticket]) {
		log = append(log, "unregister:"+ev.Payload.ID)
	})
	r.On(EventClear, func(pubsub.Event[*Ticket]) {
		log = append(log, "clear")
	})

	r.Register(Item{ID: "a", Value: 1})
	r.Upsert("a", Item{Value: 2})
	r.Unregister("a")
	r.Clear()

	assert.Equal(t, []string{"register:a", "update:a", "unregister:a", "clear"}, log)
}

func TestRegistry_Events_HandlerSeesSettledState(t *testing.T) {
	r := New(Options{Events: true})
	r.Onboard([]Item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	// By the time the unregister event fires, the reindex is complete.
	r.On(EventUnregister, func(ev pubsub.Event[*Ticket]) {
		for i, ticket := range r.Entries() {
			assert.Equal(t, i, ticket.Index)
		}
	})

	r.Unregister("b")
}

func TestRegistry_Events_DisabledByDefault(t *testing.T) {
	r := New(Options{})

	called := false
	off := r.On(EventRegister, func(pubsub.Event[*Ticket]) { called = true })
	r.Register(Item{ID: "a"})
	off()

	assert.False(t, called)
}

func TestRegistry_Offboard_SingleReindexObservable(t *testing.T) {
	r := New(Options{Events: true})
	r.Onboard([]Item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})

	// Every unregister event must observe final indices, never a transient
	// intermediate pass.
	r.On(EventUnregister, func(pubsub.Event[*Ticket]) {
		entries := r.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "b", entries[0].ID)
		assert.Equal(t, 0, entries[0].Index)
		assert.Equal(t, "d", entries[1].ID)
		assert.Equal(t, 1, entries[1].Index)
	})

	r.Offboard([]string{"a", "c"})
}

func TestRegistry_Dispose(t *testing.T) {
	r := New(Options{Events: true})

	called := false
	r.On(EventRegister, func(pubsub.Event[*Ticket]) { called = true })

	r.Dispose()
	r.Dispose() // second call is a no-op

	// Handlers are detached exactly once; no emission after dispose.
	r.Register(Item{ID: "a"})
	assert.False(t, called)
}
