package toasts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/roster/registry"
)

func TestPushAndView(t *testing.T) {
	m := New(time.Minute)
	defer m.Close()

	m.Push("saved produce", LevelSuccess)
	m.Push("reload failed", LevelError)

	require.Equal(t, 2, m.Count())

	view := m.View()
	require.Contains(t, view, "saved produce")
	require.Contains(t, view, "reload failed")

	toasts := m.Toasts()
	require.Equal(t, "saved produce", toasts[0].Message, "oldest toast first")
	require.Equal(t, LevelError, toasts[1].Level)
}

func TestEmptyView(t *testing.T) {
	m := New(time.Minute)
	defer m.Close()

	require.Empty(t, m.View())
}

func TestHeadExpiresFrontToBack(t *testing.T) {
	m := New(30 * time.Millisecond)
	defer m.Close()

	m.Push("first", LevelInfo)
	m.Push("second", LevelInfo)

	require.Eventually(t, func() bool { return m.Count() == 1 },
		time.Second, 5*time.Millisecond, "head should expire")
	require.Equal(t, "second", m.Toasts()[0].Message)

	require.Eventually(t, func() bool { return m.Count() == 0 },
		time.Second, 5*time.Millisecond, "successor should expire after reaching the front")
}

func TestDismissHead(t *testing.T) {
	m := New(time.Minute)
	defer m.Close()

	m.Push("first", LevelInfo)
	m.Push("second", LevelInfo)

	m.DismissHead()

	require.Equal(t, 1, m.Count())
	require.Equal(t, "second", m.Toasts()[0].Message)
}

func TestPauseHoldsHead(t *testing.T) {
	m := New(30 * time.Millisecond)
	defer m.Close()

	m.Push("pinned", LevelWarn)
	m.PauseHead()
	require.True(t, m.HeadPaused())

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, 1, m.Count(), "paused head must not expire")

	m.ResumeHead()
	require.Eventually(t, func() bool { return m.Count() == 0 },
		time.Second, 5*time.Millisecond, "resumed head expires after a fresh full duration")
}

func TestListenDeliversChanges(t *testing.T) {
	m := New(time.Minute)
	defer m.Close()

	cmd := m.Listen()
	m.Push("hello", LevelInfo)

	msg := cmd()
	event, ok := msg.(ChangedMsg)
	require.True(t, ok)
	require.Equal(t, registry.EventRegister, event.Type)
	require.Len(t, event.Payload.Items, 1)
}

func TestOverlayPlacesAboveBottom(t *testing.T) {
	m := New(time.Minute)
	defer m.Close()

	m.Push("hi", LevelSuccess)

	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 30)+"\n", 12), "\n")
	out := m.Overlay(bg, 30, 12)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 12)
	require.Equal(t, strings.Repeat(".", 30), lines[11], "bottom line keeps its padding row")
	require.Contains(t, out, "hi")
}
