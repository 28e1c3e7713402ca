// Package browser provides the produce table component: a paged table
// driven by a pipeline adapter, with row marking, a filter input and a
// filter history with undo/redo.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/roster/dataset"
	"github.com/zjrosen/roster/internal/keys"
	"github.com/zjrosen/roster/internal/ui/styles"
	"github.com/zjrosen/roster/pipeline"
	"github.com/zjrosen/roster/registry"
	"github.com/zjrosen/roster/selection"
	"github.com/zjrosen/roster/timeline"
)

// LoadedMsg reports the outcome of an asynchronous page fetch.
type LoadedMsg struct {
	Err error
}

// MarkedMsg is emitted when a row's mark is toggled.
type MarkedMsg struct {
	ID     string
	Marked bool
}

type column struct {
	key     string
	title   string
	width   int
	numeric bool
}

var columns = []column{
	{key: "id", title: "ID", width: 8},
	{key: "name", title: "NAME", width: 14},
	{key: "color", title: "COLOR", width: 10},
	{key: "family", title: "FAMILY", width: 10},
	{key: "weight", title: "WEIGHT", width: 8, numeric: true},
	{key: "price", title: "PRICE", width: 8, numeric: true},
	{key: "stock", title: "STOCK", width: 6, numeric: true},
}

// filterKeys is the key set every filter query runs against.
var filterKeys = []string{"name", "color", "family"}

// Model holds the browser state. The adapter owns filter, sort and page
// state; the model owns cursor position, marks and the filter history.
type Model struct {
	adapter pipeline.Adapter[dataset.Item]

	// server is non-nil when the adapter fetches remotely. Page and
	// filter changes then schedule a LoadedMsg command.
	server *pipeline.Server[dataset.Item]

	marks   *selection.Selection
	history *timeline.Timeline
	keys    keys.KeyMap

	input     textinput.Model
	filtering bool
	applied   string

	cursor   int
	sortIdx  int
	sortDesc bool

	width   int
	loadErr error
}

// New creates a browser over a local client adapter.
func New(adapter pipeline.Adapter[dataset.Item]) Model {
	return newModel(adapter, nil)
}

// NewRemote creates a browser over a server adapter. The caller must run
// the command returned by Init to fetch the first page.
func NewRemote(server *pipeline.Server[dataset.Item]) Model {
	return newModel(server, server)
}

func newModel(adapter pipeline.Adapter[dataset.Item], server *pipeline.Server[dataset.Item]) Model {
	ti := textinput.New()
	ti.Placeholder = "filter produce"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	return Model{
		adapter: adapter,
		server:  server,
		marks:   selection.New(selection.Options{Multiple: true}),
		history: timeline.New(timeline.Options{Size: 25}),
		keys:    keys.DefaultKeyMap(),
		input:   ti,
		sortIdx: -1,
	}
}

// Init fetches the first page for remote adapters.
func (m Model) Init() tea.Cmd {
	return m.reload()
}

// SetWidth sets the render width.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.filtering }

// AppliedFilter returns the filter text currently in effect.
func (m Model) AppliedFilter() string { return m.applied }

// Cursor returns the cursor row index within the visible page.
func (m Model) Cursor() int { return m.cursor }

// MarkedIDs returns the ids of every marked row.
func (m Model) MarkedIDs() []string { return m.marks.ActiveIDs() }

// Err returns the last fetch error, or nil.
func (m Model) Err() error { return m.loadErr }

// Update handles key messages and fetch results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loadErr = msg.Err
		m.cursor = m.clampCursor(m.cursor)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateFiltering(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		m.filtering = false
		m.input.Blur()
		return m.applyFilter(strings.TrimSpace(m.input.Value()), true)

	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.input.Blur()
		m.input.SetValue(m.applied)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Down):
		m.cursor = m.clampCursor(m.cursor + 1)

	case key.Matches(msg, m.keys.Up):
		m.cursor = m.clampCursor(m.cursor - 1)

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = m.clampCursor(len(m.adapter.Visible()) - 1)

	case key.Matches(msg, m.keys.NextPage):
		return m.setPage(m.adapter.Page() + 1)

	case key.Matches(msg, m.keys.PrevPage):
		return m.setPage(m.adapter.Page() - 1)

	case key.Matches(msg, m.keys.Mark):
		return m.toggleMark()

	case key.Matches(msg, m.keys.Sort):
		m.sortIdx++
		if m.sortIdx >= len(columns) {
			m.sortIdx = -1
		}
		m.sortDesc = false
		return m.applySort()

	case key.Matches(msg, m.keys.SortDir):
		if m.sortIdx >= 0 {
			m.sortDesc = !m.sortDesc
			return m.applySort()
		}

	case key.Matches(msg, m.keys.Undo):
		return m.undoFilter()

	case key.Matches(msg, m.keys.Redo):
		return m.redoFilter()

	case key.Matches(msg, m.keys.Escape):
		if m.applied != "" {
			m.input.SetValue("")
			return m.applyFilter("", true)
		}
	}
	return m, nil
}

// applyFilter installs the filter text on the adapter and, when record is
// set, appends it to the history. Undo and redo replay entries with
// record unset so they do not pollute the history they walk.
func (m Model) applyFilter(text string, record bool) (Model, tea.Cmd) {
	if record && text != m.applied {
		m.history.Register(registry.Item{Value: text})
	}
	m.applied = text
	m.input.SetValue(text)
	m.adapter.SetFilter(filterSpec(text))
	m.cursor = 0
	return m, m.reload()
}

func (m Model) undoFilter() (Model, tea.Cmd) {
	if m.history.Undo() == nil {
		return m, nil
	}
	return m.applyFilter(m.historyTail(), false)
}

func (m Model) redoFilter() (Model, tea.Cmd) {
	t := m.history.Redo()
	if t == nil {
		return m, nil
	}
	text, _ := t.Value.(string)
	return m.applyFilter(text, false)
}

// historyTail returns the newest recorded filter, or empty when the
// history has been fully unwound.
func (m Model) historyTail() string {
	t := m.history.Seek(timeline.Last)
	if t == nil {
		return ""
	}
	text, _ := t.Value.(string)
	return text
}

func (m Model) applySort() (Model, tea.Cmd) {
	var keys []pipeline.SortKey
	if m.sortIdx >= 0 {
		keys = []pipeline.SortKey{{Key: columns[m.sortIdx].key, Desc: m.sortDesc}}
	}
	m.adapter.SetSort(keys)
	m.cursor = 0
	return m, m.reload()
}

func (m Model) setPage(page int) (Model, tea.Cmd) {
	m.adapter.SetPage(page)
	m.cursor = 0
	return m, m.reload()
}

func (m Model) toggleMark() (Model, tea.Cmd) {
	rows := m.adapter.Visible()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return m, nil
	}
	id := rows[m.cursor].ID
	if _, ok := m.marks.Find(id); !ok {
		m.marks.Register(selection.Item{Item: registry.Item{ID: id}})
	}
	m.marks.Toggle(id)
	marked := m.marks.IsActive(id)
	return m, func() tea.Msg { return MarkedMsg{ID: id, Marked: marked} }
}

// reload schedules a fetch for remote adapters. Local adapters compute
// pages on demand and need no command.
func (m Model) reload() tea.Cmd {
	if m.server == nil {
		return nil
	}
	server := m.server
	return func() tea.Msg {
		return LoadedMsg{Err: server.Load(context.Background())}
	}
}

func (m Model) clampCursor(cursor int) int {
	limit := len(m.adapter.Visible()) - 1
	if cursor > limit {
		cursor = limit
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// filterSpec splits the text on whitespace into terms matched against
// every filter key.
func filterSpec(text string) pipeline.FilterSpec {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return pipeline.FilterSpec{}
	}
	return pipeline.FilterSpec{
		Query: terms,
		Keys:  filterKeys,
		Mode:  pipeline.ModeIntersection,
	}
}

// View renders the filter line, header, rows and page line.
func (m Model) View() string {
	var b strings.Builder

	if m.filtering {
		b.WriteString(m.input.View())
	} else if m.applied != "" {
		b.WriteString(styles.StatusBarStyle.Render("filter: " + m.applied))
	}
	b.WriteString("\n")

	b.WriteString(m.headerView())
	b.WriteString("\n")

	rows := m.adapter.Visible()
	if len(rows) == 0 {
		b.WriteString(styles.HelpStyle.Render("  no produce matches"))
		b.WriteString("\n")
	}
	for i, item := range rows {
		b.WriteString(m.rowView(item, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(m.pageView())

	out := b.String()
	if m.width > 0 {
		lines := strings.Split(out, "\n")
		for i, line := range lines {
			lines[i] = truncate.String(line, uint(m.width))
		}
		out = strings.Join(lines, "\n")
	}
	return out
}

func (m Model) headerView() string {
	var cells []string
	cells = append(cells, "  ")
	for i, col := range columns {
		title := col.title
		if i == m.sortIdx {
			if m.sortDesc {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		cells = append(cells, cell(title, col.width, col.numeric))
	}
	return styles.TableHeaderStyle.Render(strings.Join(cells, " "))
}

func (m Model) rowView(item dataset.Item, cursor bool) string {
	mark := "  "
	if m.marks.IsActive(item.ID) {
		mark = styles.TableMarkStyle.Render("✓ ")
	}

	cells := []string{
		cell(item.ID, columns[0].width, false),
		cell(item.Name, columns[1].width, false),
		cell(item.Color, columns[2].width, false),
		cell(item.Family, columns[3].width, false),
		cell(fmt.Sprintf("%.1f", item.Weight), columns[4].width, true),
		cell(fmt.Sprintf("%.2f", item.Price), columns[5].width, true),
		cell(fmt.Sprintf("%d", item.Stock), columns[6].width, true),
	}
	line := strings.Join(cells, " ")
	if cursor {
		line = styles.TableCursorStyle.Render(line)
	}
	return mark + line
}

func (m Model) pageView() string {
	page := fmt.Sprintf("page %d/%d", m.adapter.Page(), max(m.adapter.PageCount(), 1))
	total := fmt.Sprintf("%d items", m.adapter.Total())
	if n := m.marks.ActiveCount(); n > 0 {
		total += fmt.Sprintf(", %d marked", n)
	}
	line := styles.StatusBarPageStyle.Render(page) + styles.StatusBarStyle.Render("  "+total)
	if m.loadErr != nil {
		line += "  " + lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Render(m.loadErr.Error())
	}
	return line
}

// cell clips the value to the column width and pads it, right-aligned for
// numeric columns.
func cell(value string, width int, numeric bool) string {
	clipped := truncate.StringWithTail(value, uint(width), "…")
	if numeric {
		return runewidth.FillLeft(clipped, width)
	}
	return runewidth.FillRight(clipped, width)
}
