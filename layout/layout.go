// Package layout accumulates per-edge size contributions from registered
// regions and derives the remaining main content rectangle, reactive to
// viewport resize.
package layout

import (
	"github.com/zjrosen/roster/reactive"
	"github.com/zjrosen/roster/registry"
	"github.com/zjrosen/roster/selection"
)

// Edge names a side of the viewport a region is anchored to.
type Edge string

const (
	Top    Edge = "top"
	Bottom Edge = "bottom"
	Left   Edge = "left"
	Right  Edge = "right"
)

// Size is a viewport extent.
type Size struct {
	Width  float64
	Height float64
}

// Rect is the main content rectangle remaining after all active regions
// have claimed their edges.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Item describes a layout region: an anchored edge and its size
// contribution along that edge.
type Item struct {
	ID       string
	Position Edge
	Size     float64
	Disabled bool
}

// Options configures a Layout.
type Options struct {
	selection.Options
}

// Layout tracks regions as selection tickets; only active regions
// contribute to their edge. The per-edge sum is purely additive, so
// registration order within an edge never matters.
type Layout struct {
	sel      *selection.Selection
	position map[string]Edge
	viewport *reactive.Observable[Size]
	main     *reactive.Observable[Rect]
	offVp    func()
}

// New creates a layout bound to the viewport observable. Regions usually
// want Multiple selection so several drawers can be open at once; the zero
// Options value gives single-active behavior.
func New(opts Options, viewport *reactive.Observable[Size]) *Layout {
	l := &Layout{
		sel:      selection.New(opts.Options),
		position: make(map[string]Edge),
		viewport: viewport,
		main:     reactive.NewObservable(Rect{}),
	}
	l.offVp = viewport.Subscribe(func(Size) { l.recompute() })
	l.recompute()
	return l
}

// Register adds a region. Regions register active-state through the
// underlying selection: an inactive region contributes zero.
func (l *Layout) Register(item Item) *registry.Ticket {
	t := l.sel.Register(selection.Item{
		Item:     registry.Item{ID: item.ID, Value: item.Size},
		Disabled: item.Disabled,
	})
	l.position[t.ID] = item.Position
	l.recompute()
	return t
}

// Unregister removes a region.
func (l *Layout) Unregister(id string) {
	l.sel.Unregister(id)
	delete(l.position, id)
	l.recompute()
}

// Resize updates a region's size contribution.
func (l *Layout) Resize(id string, size float64) {
	if l.sel.Upsert(id, registry.Item{Value: size}) != nil {
		l.recompute()
	}
}

// Activate makes the region contribute to its edge.
func (l *Layout) Activate(id string) {
	l.sel.Select(id)
	l.recompute()
}

// Deactivate stops the region's contribution.
func (l *Layout) Deactivate(id string) {
	l.sel.Unselect(id)
	l.recompute()
}

// Toggle flips a region's contribution.
func (l *Layout) Toggle(id string) {
	l.sel.Toggle(id)
	l.recompute()
}

// IsActive reports whether the region currently contributes.
func (l *Layout) IsActive(id string) bool { return l.sel.IsActive(id) }

// EdgeSum returns the total contribution of active regions on an edge.
func (l *Layout) EdgeSum(edge Edge) float64 {
	sums := l.edgeSums()
	return sums[edge]
}

// Main returns the current main content rectangle.
func (l *Layout) Main() Rect { return l.main.Get() }

// MainRect exposes the rectangle observable for subscription.
func (l *Layout) MainRect() *reactive.Observable[Rect] { return l.main }

// Selection exposes the underlying selection container.
func (l *Layout) Selection() *selection.Selection { return l.sel }

// Dispose detaches the viewport subscription and the underlying selection.
func (l *Layout) Dispose() {
	l.offVp()
	l.sel.Dispose()
}

func (l *Layout) edgeSums() map[Edge]float64 {
	sums := make(map[Edge]float64, 4)
	for _, t := range l.sel.Entries() {
		if !l.sel.IsActive(t.ID) {
			continue
		}
		size, ok := t.Value.(float64)
		if !ok {
			continue
		}
		sums[l.position[t.ID]] += size
	}
	return sums
}

func (l *Layout) recompute() {
	vp := l.viewport.Get()
	sums := l.edgeSums()

	rect := Rect{
		X:      sums[Left],
		Y:      sums[Top],
		Width:  vp.Width - sums[Left] - sums[Right],
		Height: vp.Height - sums[Top] - sums[Bottom],
	}
	if rect.Width < 0 {
		rect.Width = 0
	}
	if rect.Height < 0 {
		rect.Height = 0
	}
	l.main.Set(rect)
}
