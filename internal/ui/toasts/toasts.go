// Package toasts provides a notification overlay backed by a timeout queue.
// Toasts expire front to back: only the oldest visible toast counts down,
// the rest wait their turn.
package toasts

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/roster/internal/ui/overlay"
	"github.com/zjrosen/roster/internal/ui/styles"
	"github.com/zjrosen/roster/observe"
	"github.com/zjrosen/roster/pubsub"
	"github.com/zjrosen/roster/queue"
	"github.com/zjrosen/roster/registry"
)

// Level determines the visual appearance of a toast.
type Level int

const (
	// LevelSuccess shows ✅ with green border.
	LevelSuccess Level = iota
	// LevelError shows ❌ with red border.
	LevelError
	// LevelInfo shows ℹ️ with blue border.
	LevelInfo
	// LevelWarn shows ⚠️ with yellow border.
	LevelWarn
)

// Toast is the payload stored for each queued notification.
type Toast struct {
	Message string
	Level   Level
}

// ChangedMsg arrives whenever the toast queue changes. The parent model
// only needs to re-render and keep listening.
type ChangedMsg = pubsub.Event[observe.Change]

// Model holds the toast stack state.
type Model struct {
	queue  *queue.Queue
	mirror *observe.Mirror
	ch     <-chan pubsub.Event[observe.Change]
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a toast stack whose entries expire after timeout.
func New(timeout time.Duration) Model {
	q := queue.New(queue.Options{
		Options: registry.Options{Events: true},
		Timeout: timeout,
	})
	mirror := observe.NewMirror(q.Registry())
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		queue:  q,
		mirror: mirror,
		ch:     mirror.Subscribe(ctx),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Listen returns a command that waits for the next queue change. Call it
// from Init and again after every ChangedMsg.
func (m Model) Listen() tea.Cmd {
	return pubsub.ListenCmd(m.ctx, m.ch)
}

// Push enqueues a toast.
func (m Model) Push(message string, level Level) {
	m.queue.Register(queue.Item{
		Item: registry.Item{Value: Toast{Message: message, Level: level}},
	})
}

// DismissHead removes the oldest toast immediately.
func (m Model) DismissHead() {
	if head := m.queue.Head(); head != nil {
		head.Dismiss()
	}
}

// PauseHead stops the oldest toast's expiry timer.
func (m Model) PauseHead() {
	m.queue.Pause()
}

// ResumeHead restarts the oldest toast's expiry timer from the full
// duration.
func (m Model) ResumeHead() {
	m.queue.Resume()
}

// HeadPaused reports whether the oldest toast's timer is stopped.
func (m Model) HeadPaused() bool {
	head := m.queue.Head()
	return head != nil && head.IsPaused()
}

// Count returns the number of pending toasts.
func (m Model) Count() int {
	return m.queue.Size()
}

// Toasts returns the pending toasts in expiry order.
func (m Model) Toasts() []Toast {
	items := m.mirror.Items()
	out := make([]Toast, 0, len(items))
	for _, item := range items {
		if toast, ok := item.Value.(Toast); ok {
			out = append(out, toast)
		}
	}
	return out
}

// View renders the toast stack, oldest at the top.
func (m Model) View() string {
	toasts := m.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	paused := m.HeadPaused()
	rendered := make([]string, len(toasts))
	for i, toast := range toasts {
		rendered[i] = renderToast(toast, i == 0 && paused)
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(toast Toast, paused bool) string {
	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var content string
	switch toast.Level {
	case LevelError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		content = "❌ " + toast.Message
	case LevelInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		content = "ℹ️ " + toast.Message
	case LevelWarn:
		style = style.BorderForeground(styles.ToastBorderWarnColor)
		content = "⚠️ " + toast.Message
	default: // LevelSuccess
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		content = "✅ " + toast.Message
	}
	if paused {
		content += " ⏸"
	}

	return style.Render(content)
}

// Overlay renders the toast stack bottom-centered on top of a background
// view, one row above the lower edge.
func (m Model) Overlay(bg string, width, height int) string {
	return overlay.Bottom(m.View(), bg, width, height, 1)
}

// Close releases the queue and its timers.
func (m Model) Close() {
	m.cancel()
	m.mirror.Close()
	m.queue.Dispose()
}
