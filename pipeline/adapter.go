package pipeline

import (
	"context"
	"sync"
)

// Adapter is the contract shared by the three execution strategies.
type Adapter[T any] interface {
	SetFilter(FilterSpec)
	SetSort([]SortKey)
	Page() int
	SetPage(int)
	PageCount() int
	Total() int
	Visible() []T
}

// Query carries the pipeline state a data source needs to produce a page.
type Query struct {
	Filter  FilterSpec
	Sort    []SortKey
	Page    int
	PerPage int
}

// Result is one fetched page plus the unfiltered-after-filtering total.
type Result[T any] struct {
	Items []T
	Total int
}

// DataSource produces pages for the server strategy. Filtering and sorting
// are the source's responsibility.
type DataSource[T any] interface {
	Fetch(ctx context.Context, q Query) (Result[T], error)
}

// ---------------------------------------------------------------------------
// Client strategy: everything runs locally.

// Client filters, sorts and paginates in memory.
type Client[T any] struct {
	mu      sync.Mutex
	items   []T
	acc     Accessor[T]
	filter  FilterSpec
	sort    []SortKey
	page    int
	perPage int
}

var _ Adapter[int] = (*Client[int])(nil)

// NewClient creates a client adapter over the items.
func NewClient[T any](items []T, acc Accessor[T], perPage int) *Client[T] {
	return &Client[T]{items: items, acc: acc, page: 1, perPage: perPage}
}

// SetItems replaces the backing collection. The current page is kept; an
// out-of-range page simply shows empty until reset by a filter change.
func (c *Client[T]) SetItems(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// SetFilter installs a new filter. A changed filter resets to page 1.
func (c *Client[T]) SetFilter(spec FilterSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filter.Equal(spec) {
		return
	}
	c.filter = spec
	c.page = 1
}

// SetSort installs a new sort spec. A changed spec resets to page 1.
func (c *Client[T]) SetSort(keys []SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if equalSortKeys(c.sort, keys) {
		return
	}
	c.sort = keys
	c.page = 1
}

// Page returns the current 1-based page.
func (c *Client[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetPage moves to the page, clamped to [1, PageCount].
func (c *Client[T]) SetPage(page int) {
	count := c.PageCount()

	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if page > count {
		page = count
	}
	c.page = page
}

// PageCount derives the page count from the filtered result.
func (c *Client[T]) PageCount() int {
	return PageCount(c.Total(), c.snapshot().perPage)
}

// Total returns the filtered item count.
func (c *Client[T]) Total() int {
	s := c.snapshot()
	return len(Filter(s.items, s.acc, s.filter))
}

// Visible runs filter, sort and paginate and returns the page.
func (c *Client[T]) Visible() []T {
	s := c.snapshot()
	result := Filter(s.items, s.acc, s.filter)
	result = Sort(result, s.acc, s.sort)
	return Paginate(result, s.page, s.perPage)
}

type clientState[T any] struct {
	items   []T
	acc     Accessor[T]
	filter  FilterSpec
	sort    []SortKey
	page    int
	perPage int
}

func (c *Client[T]) snapshot() clientState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clientState[T]{
		items:   c.items,
		acc:     c.acc,
		filter:  c.filter,
		sort:    c.sort,
		page:    c.page,
		perPage: c.perPage,
	}
}

// ---------------------------------------------------------------------------
// Server strategy: filtering and sorting are delegated to the data source;
// the adapter only manages pagination against the source-reported total.

// Server paginates a remote result set.
type Server[T any] struct {
	mu      sync.Mutex
	source  DataSource[T]
	filter  FilterSpec
	sort    []SortKey
	page    int
	perPage int
	items   []T
	total   int
	stale   bool
}

var _ Adapter[int] = (*Server[int])(nil)

// NewServer creates a server adapter over the data source.
func NewServer[T any](source DataSource[T], perPage int) *Server[T] {
	return &Server[T]{source: source, page: 1, perPage: perPage, stale: true}
}

// SetFilter installs a new filter, resets to page 1, and marks the adapter
// stale so the consumer knows to refetch.
func (s *Server[T]) SetFilter(spec FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.Equal(spec) {
		return
	}
	s.filter = spec
	s.page = 1
	s.stale = true
}

// SetSort installs a new sort spec, resets to page 1, and marks the
// adapter stale.
func (s *Server[T]) SetSort(keys []SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if equalSortKeys(s.sort, keys) {
		return
	}
	s.sort = keys
	s.page = 1
	s.stale = true
}

// Page returns the current 1-based page.
func (s *Server[T]) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage moves to the page and marks the adapter stale. The page is only
// clamped downward once a total is known.
func (s *Server[T]) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if limit := PageCount(s.total, s.perPage); !s.stale && page > limit {
		page = limit
	}
	if page == s.page {
		return
	}
	s.page = page
	s.stale = true
}

// PageCount derives the page count from the source-reported total.
func (s *Server[T]) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageCount(s.total, s.perPage)
}

// Total returns the source-reported total.
func (s *Server[T]) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Stale reports whether filter, sort or page changed since the last Load.
func (s *Server[T]) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// Load fetches the current page from the data source.
func (s *Server[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	q := Query{Filter: s.filter, Sort: s.sort, Page: s.page, PerPage: s.perPage}
	s.mu.Unlock()

	result, err := s.source.Fetch(ctx, q)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = result.Items
	s.total = result.Total
	s.stale = false
	return nil
}

// Visible returns the last fetched page.
func (s *Server[T]) Visible() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// ---------------------------------------------------------------------------
// Virtual strategy: filter and sort run locally, pagination is a
// pass-through sized to the full result. Windowing belongs to an external
// virtual-scroll consumer.

// Virtual filters and sorts locally and exposes a single full page.
type Virtual[T any] struct {
	mu     sync.Mutex
	items  []T
	acc    Accessor[T]
	filter FilterSpec
	sort   []SortKey
}

var _ Adapter[int] = (*Virtual[int])(nil)

// NewVirtual creates a virtual adapter over the items.
func NewVirtual[T any](items []T, acc Accessor[T]) *Virtual[T] {
	return &Virtual[T]{items: items, acc: acc}
}

// SetItems replaces the backing collection.
func (v *Virtual[T]) SetItems(items []T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = items
}

// SetFilter installs a new filter.
func (v *Virtual[T]) SetFilter(spec FilterSpec) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = spec
}

// SetSort installs a new sort spec.
func (v *Virtual[T]) SetSort(keys []SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = keys
}

// Page is always 1: the whole result is one page.
func (v *Virtual[T]) Page() int { return 1 }

// SetPage is a no-op for the virtual strategy.
func (v *Virtual[T]) SetPage(int) {}

// PageCount is always 1.
func (v *Virtual[T]) PageCount() int { return 1 }

// Total returns the filtered item count.
func (v *Virtual[T]) Total() int {
	return len(v.Visible())
}

// Visible returns the full filtered and sorted result.
func (v *Virtual[T]) Visible() []T {
	v.mu.Lock()
	items, acc, filter, keys := v.items, v.acc, v.filter, v.sort
	v.mu.Unlock()

	result := Filter(items, acc, filter)
	return Sort(result, acc, keys)
}
