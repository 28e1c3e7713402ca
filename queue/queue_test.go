package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/roster/registry"
)

func item(id string, timeout time.Duration) Item {
	return Item{Item: registry.Item{ID: id, Value: id}, Timeout: timeout}
}

func TestQueue_FirstTicketStartsUnpaused(t *testing.T) {
	q := New(Options{Timeout: Never})
	defer q.Dispose()

	first := q.Register(item("a", Never))
	second := q.Register(item("b", Never))

	assert.False(t, first.IsPaused())
	assert.True(t, second.IsPaused())
}

func TestQueue_HeadExpires(t *testing.T) {
	q := New(Options{})
	defer q.Dispose()

	q.Register(item("a", 20*time.Millisecond))
	q.Register(item("b", Never))

	require.Eventually(t, func() bool {
		head := q.Head()
		return head != nil && head.ID == "b"
	}, time.Second, 5*time.Millisecond, "head should auto-expire and promote b")

	// The promoted head is unpaused.
	assert.False(t, q.Head().IsPaused())
	assert.Equal(t, 1, q.Size())
}

func TestQueue_NeverTicketDoesNotExpire(t *testing.T) {
	q := New(Options{})
	defer q.Dispose()

	q.Register(item("a", Never))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, q.Size())
	assert.False(t, q.Head().IsPaused())
}

func TestQueue_DefaultTimeoutFallback(t *testing.T) {
	q := New(Options{Timeout: 25 * time.Millisecond})
	defer q.Dispose()

	q.Register(Item{Item: registry.Item{ID: "a", Value: "a"}}) // no per-ticket timeout

	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_UnregisterHeadByDefault(t *testing.T) {
	q := New(Options{Timeout: Never})
	defer q.Dispose()

	q.Register(item("a", Never))
	q.Register(item("b", Never))

	removed := q.Unregister()

	require.NotNil(t, removed)
	assert.Equal(t, "a", removed.ID)
	assert.Equal(t, "b", q.Head().ID)
	assert.False(t, q.Head().IsPaused(), "new head resumes after head removal")
}

func TestQueue_UnregisterMiddleDoesNotResume(t *testing.T) {
	q := New(Options{Timeout: Never})
	defer q.Dispose()

	q.Register(item("a", Never))
	q.Register(item("b", Never))
	q.Register(item("c", Never))
	q.Pause()

	q.Unregister("b")

	// Removing a non-head ticket must not restart the paused head.
	assert.True(t, q.Head().IsPaused())
	assert.Equal(t, 2, q.Size())
}

func TestQueue_EmptyQueueOperationsReturnNil(t *testing.T) {
	q := New(Options{})
	defer q.Dispose()

	assert.Nil(t, q.Unregister())
	assert.Nil(t, q.Pause())
	assert.Nil(t, q.Resume())
	assert.Nil(t, q.Head())
}

func TestQueue_PauseAndResume(t *testing.T) {
	q := New(Options{})
	defer q.Dispose()

	q.Register(item("a", 30*time.Millisecond))

	paused := q.Pause()
	require.NotNil(t, paused)
	assert.True(t, paused.IsPaused())

	// While paused the ticket must not expire.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, q.Size())

	// Resume restarts the full duration.
	q.Resume()
	assert.False(t, q.Head().IsPaused())
	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_Dismiss(t *testing.T) {
	q := New(Options{Timeout: Never})
	defer q.Dispose()

	ticket := q.Register(item("a", Never))
	q.Register(item("b", Never))

	ticket.Dismiss()

	assert.Equal(t, 1, q.Size())
	assert.Equal(t, "b", q.Head().ID)
}

func TestQueue_Offboard_SingleDeferredResume(t *testing.T) {
	q := New(Options{Timeout: Never})
	defer q.Dispose()

	q.Register(item("a", Never))
	q.Register(item("b", Never))
	q.Register(item("c", Never))
	q.Register(item("d", Never))

	q.Offboard([]string{"a", "c"})

	require.Equal(t, 2, q.Size())
	head := q.Head()
	assert.Equal(t, "b", head.ID)
	assert.False(t, head.IsPaused(), "head removal in a batch still resumes once")
}

func TestQueue_Offboard_NoHeadRemovedNoResume(t *testing.T) {
	q := New(Options{Timeout: Never})
	defer q.Dispose()

	q.Register(item("a", Never))
	q.Register(item("b", Never))
	q.Register(item("c", Never))
	q.Pause()

	q.Offboard([]string{"b", "c"})

	assert.True(t, q.Head().IsPaused())
}

func TestQueue_Clear(t *testing.T) {
	q := New(Options{})
	defer q.Dispose()

	q.Register(item("a", 20*time.Millisecond))
	q.Register(item("b", Never))

	q.Clear()

	assert.Zero(t, q.Size())
	// The cleared head's timer must not fire against a fresh registration.
	fresh := q.Register(item("a", Never))
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, q.Size())
	assert.False(t, fresh.IsPaused())
}

func TestQueue_ClearDropsTimerlessHeadState(t *testing.T) {
	q := New(Options{})
	defer q.Dispose()

	head := q.Register(item("a", Never))
	require.False(t, head.IsPaused())

	q.Clear()

	// A Never head runs without a timer handle; Clear must still drop its
	// running state.
	assert.True(t, head.IsPaused())
}

// headOnlyTimerHolds asserts at most one unpaused ticket exists and that it
// sits at index 0.
func headOnlyTimerHolds(t require.TestingT, q *Queue) {
	unpaused := 0
	for _, base := range q.Registry().Entries() {
		q.mu.Lock()
		running := q.running[base.ID]
		q.mu.Unlock()
		if running {
			unpaused++
			require.Equal(t, 0, base.Index, "running timer on non-head ticket %s", base.ID)
		}
	}
	require.LessOrEqual(t, unpaused, 1)
}

// TestProperty_HeadOnlyTimer drives random queue operations and checks the
// head-only timer invariant after every step.
func TestProperty_HeadOnlyTimer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := New(Options{Timeout: Never})
		defer q.Dispose()

		var live []string
		nextID := 0

		numOps := rapid.IntRange(1, 40).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			op := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("op-%d", i))
			switch {
			case op == 0 || len(live) == 0:
				id := fmt.Sprintf("t-%d", nextID)
				nextID++
				q.Register(item(id, Never))
				live = append(live, id)
			case op == 1:
				victim := rapid.IntRange(0, len(live)-1).Draw(t, fmt.Sprintf("victim-%d", i))
				q.Unregister(live[victim])
				live = append(live[:victim], live[victim+1:]...)
			case op == 2:
				q.Pause()
			default:
				q.Resume()
			}
			headOnlyTimerHolds(t, q)
		}
	})
}
