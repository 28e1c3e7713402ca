package app

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/zjrosen/roster/dataset"
	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/ui/browser"
	"github.com/zjrosen/roster/pipeline"
)

func TestApp_ProgramRendersAndQuits(t *testing.T) {
	cfg := config.Defaults()
	client := pipeline.NewClient(fixtureItems(), dataset.Accessor(), cfg.UI.PerPage)
	m := New(Options{
		Config:  cfg,
		Browser: browser.New(client),
		Client:  client,
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Apple"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

func TestApp_ProgramFiltersRows(t *testing.T) {
	cfg := config.Defaults()
	client := pipeline.NewClient(fixtureItems(), dataset.Accessor(), cfg.UI.PerPage)
	m := New(Options{
		Config:  cfg,
		Browser: browser.New(client),
		Client:  client,
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Banana"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	for _, r := range "red" {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("filter: red"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}
