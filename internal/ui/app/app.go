// Package app wires the produce browser, the toast stack, the status bar
// and the dataset watcher into the root bubbletea model.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/roster/dataset"
	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/keys"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/ui/browser"
	"github.com/zjrosen/roster/internal/ui/styles"
	"github.com/zjrosen/roster/internal/ui/toasts"
	"github.com/zjrosen/roster/internal/watcher"
	"github.com/zjrosen/roster/layout"
	"github.com/zjrosen/roster/pipeline"
	"github.com/zjrosen/roster/reactive"
	"github.com/zjrosen/roster/selection"
)

// Region ids registered with the layout container.
const (
	regionHeader = "header"
	regionStatus = "status"
)

// ReloadTickMsg signals that the dataset file changed on disk.
type ReloadTickMsg struct{}

// DatasetMsg carries a freshly loaded dataset, or the load error.
type DatasetMsg struct {
	Items []dataset.Item
	Err   error
}

// Options configures the root model.
type Options struct {
	Config  config.Config
	Browser browser.Model

	// Client is set for the local strategy so dataset reloads can swap
	// the backing items in place. Nil for the server strategy.
	Client *pipeline.Client[dataset.Item]
}

// Model is the root model.
type Model struct {
	cfg     config.Config
	browser browser.Model
	toasts  toasts.Model
	client  *pipeline.Client[dataset.Item]

	keys keys.KeyMap

	viewport *reactive.Observable[layout.Size]
	regions  *layout.Layout

	watcher *watcher.Watcher
	reload  <-chan struct{}

	width  int
	height int
}

// New creates the root model. The watcher only starts when auto refresh
// is configured and the browser runs over a local client.
func New(opts Options) Model {
	viewport := reactive.NewObservable(layout.Size{})
	regions := layout.New(layout.Options{
		Options: selection.Options{Multiple: true},
	}, viewport)

	regions.Register(layout.Item{ID: regionHeader, Position: layout.Top, Size: 2})
	regions.Register(layout.Item{ID: regionStatus, Position: layout.Bottom, Size: 1})
	regions.Activate(regionHeader)
	if opts.Config.UI.ShowStatusBar {
		regions.Activate(regionStatus)
	}

	m := Model{
		cfg:      opts.Config,
		browser:  opts.Browser,
		toasts:   toasts.New(opts.Config.UI.ToastTimeoutDur()),
		client:   opts.Client,
		keys:     keys.DefaultKeyMap(),
		viewport: viewport,
		regions:  regions,
	}

	if opts.Config.AutoRefresh && opts.Client != nil && opts.Config.DatasetPath != "" {
		w, err := watcher.New(watcher.Config{
			Path:        opts.Config.DatasetPath,
			DebounceDur: opts.Config.DebounceDur(),
		})
		if err != nil {
			log.ErrorErr(log.CatWatcher, "creating dataset watcher", err)
		} else if ch, err := w.Start(); err != nil {
			log.ErrorErr(log.CatWatcher, "starting dataset watcher", err)
		} else {
			m.watcher = w
			m.reload = ch
		}
	}

	return m
}

// Init starts the toast listener, the watcher listener and the initial
// page fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.toasts.Listen(), m.browser.Init()}
	if cmd := m.listenReload(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the browser and handles app-level keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Set(layout.Size{Width: float64(msg.Width), Height: float64(msg.Height)})
		m.browser = m.browser.SetWidth(msg.Width)
		return m, nil

	case toasts.ChangedMsg:
		// Queue mutations re-render on their own; keep listening.
		return m, m.toasts.Listen()

	case ReloadTickMsg:
		return m, tea.Batch(m.loadDataset(), m.listenReload())

	case DatasetMsg:
		if msg.Err != nil {
			m.toasts.Push("reload failed: "+msg.Err.Error(), toasts.LevelError)
			return m, nil
		}
		if m.client != nil {
			m.client.SetItems(msg.Items)
		}
		m.toasts.Push(fmt.Sprintf("dataset reloaded, %d items", len(msg.Items)), toasts.LevelInfo)
		return m, nil

	case browser.MarkedMsg:
		if msg.Marked {
			m.toasts.Push("marked "+msg.ID, toasts.LevelSuccess)
		} else {
			m.toasts.Push("unmarked "+msg.ID, toasts.LevelInfo)
		}
		return m, nil

	case browser.LoadedMsg:
		if msg.Err != nil {
			m.toasts.Push("load failed: "+msg.Err.Error(), toasts.LevelError)
		}
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.browser.Filtering() {
			var cmd tea.Cmd
			m.browser, cmd = m.browser.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.close()
			return m, tea.Quit

		case key.Matches(msg, m.keys.DismissToast):
			m.toasts.DismissHead()
			return m, nil

		case key.Matches(msg, m.keys.PauseToast):
			if m.toasts.HeadPaused() {
				m.toasts.ResumeHead()
			} else {
				m.toasts.PauseHead()
			}
			return m, nil

		case key.Matches(msg, m.keys.StatusBar):
			m.regions.Toggle(regionStatus)
			return m, nil
		}

		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View stacks the header, browser and status bar into the viewport and
// overlays active toasts.
func (m Model) View() string {
	if m.width == 0 {
		return "loading"
	}

	var b strings.Builder

	if m.regions.IsActive(regionHeader) {
		b.WriteString(styles.HeaderStyle.Render("roster produce"))
		b.WriteString("\n\n")
	}

	main := m.regions.Main()
	body := m.browser.View()
	b.WriteString(lipgloss.NewStyle().
		Width(m.width).
		Height(int(main.Height)).
		Render(body))

	if m.regions.IsActive(regionStatus) {
		b.WriteString("\n")
		b.WriteString(m.statusBar())
	}

	out := b.String()
	if m.toasts.Count() > 0 {
		out = m.toasts.Overlay(out, m.width, m.height)
	}
	return out
}

func (m Model) statusBar() string {
	help := keys.HelpLine(
		m.keys.Down, m.keys.NextPage, m.keys.Filter, m.keys.Undo,
		m.keys.Mark, m.keys.Sort, m.keys.Quit,
	)
	return styles.StatusBarStyle.Render(ansi.Truncate(help, m.width, ""))
}

// listenReload blocks on the watcher channel and converts each signal
// into a ReloadTickMsg. Nil when auto refresh is off.
func (m Model) listenReload() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	ch := m.reload
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ReloadTickMsg{}
	}
}

func (m Model) loadDataset() tea.Cmd {
	path := m.cfg.DatasetPath
	return func() tea.Msg {
		items, err := dataset.LoadFile(path)
		if err != nil {
			return DatasetMsg{Err: err}
		}
		return DatasetMsg{Items: items}
	}
}

func (m Model) close() {
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			log.ErrorErr(log.CatWatcher, "stopping dataset watcher", err)
		}
	}
	m.toasts.Close()
	m.regions.Dispose()
}
