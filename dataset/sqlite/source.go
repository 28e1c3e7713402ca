package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/roster/cache"
	"github.com/zjrosen/roster/dataset"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/tracing"
	"github.com/zjrosen/roster/pipeline"
)

// ErrCustomPredicate is returned when a query carries a custom match
// predicate. Go functions cannot be pushed down into SQL.
var ErrCustomPredicate = errors.New("sqlite source does not support custom predicates")

// columns whitelists filter and sort keys against the produce schema.
var columns = map[string]string{
	"id":     "id",
	"name":   "name",
	"color":  "color",
	"family": "family",
	"weight": "weight",
	"price":  "price",
	"stock":  "stock",
}

// textColumns sort case-insensitively, matching the in-memory pipeline.
var textColumns = map[string]bool{
	"id":     true,
	"name":   true,
	"color":  true,
	"family": true,
}

// Source executes pipeline queries against the produce table.
// It implements pipeline.DataSource for the server strategy.
type Source struct {
	db     *DB
	tracer trace.Tracer
	rt     *cache.ReadThrough[string, pipeline.Result[dataset.Item], pipeline.Query]
	ttl    time.Duration
}

var _ pipeline.DataSource[dataset.Item] = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithTracer records fetch spans on the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Source) { s.tracer = tracer }
}

// WithCacheTTL sets how long fetched pages stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Source) { s.ttl = ttl }
}

// WithoutCache disables page caching entirely.
func WithoutCache() Option {
	return func(s *Source) { s.ttl = 0 }
}

// DefaultPageTTL is how long fetched pages stay cached by default.
const DefaultPageTTL = time.Minute

// NewSource creates a produce data source over the database.
func NewSource(db *DB, opts ...Option) *Source {
	s := &Source{
		db:     db,
		tracer: noop.NewTracerProvider().Tracer("noop"),
		ttl:    DefaultPageTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rt = cache.NewReadThrough[string, pipeline.Result[dataset.Item], pipeline.Query](
		cache.NewMemory[string, pipeline.Result[dataset.Item]]("produce-pages",
			cache.DefaultExpiration, cache.DefaultCleanupInterval),
		s.fetch,
		s.ttl <= 0,
	)
	return s
}

// Fetch returns one page of produce matching the query. Pages are served
// from cache until Invalidate is called or the TTL lapses.
func (s *Source) Fetch(ctx context.Context, q pipeline.Query) (pipeline.Result[dataset.Item], error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanFetch, trace.WithAttributes(
		attribute.StringSlice(tracing.AttrFilterTerms, q.Filter.Query),
		attribute.StringSlice(tracing.AttrFilterKeys, q.Filter.Keys),
		attribute.String(tracing.AttrFilterMode, string(q.Filter.Mode)),
		attribute.Int(tracing.AttrPage, q.Page),
		attribute.Int(tracing.AttrPerPage, q.PerPage),
	))
	defer span.End()

	if q.Filter.Custom != nil {
		span.SetStatus(codes.Error, ErrCustomPredicate.Error())
		return pipeline.Result[dataset.Item]{}, ErrCustomPredicate
	}

	result, err := s.rt.Get(ctx, cacheKey(q), q, s.ttl)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return pipeline.Result[dataset.Item]{}, err
	}

	span.SetAttributes(attribute.Int(tracing.AttrTotal, result.Total))
	return result, nil
}

// Invalidate drops all cached pages. Call after the produce table changes.
func (s *Source) Invalidate(ctx context.Context) error {
	return s.rt.Flush(ctx)
}

// fetch runs the query against SQLite on cache miss.
func (s *Source) fetch(ctx context.Context, q pipeline.Query) (pipeline.Result[dataset.Item], error) {
	var zero pipeline.Result[dataset.Item]

	where, args := buildWhere(q.Filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM produce` + where
	if err := s.db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return zero, fmt.Errorf("count produce: %w", err)
	}

	query := `SELECT id, name, color, family, weight, price, stock FROM produce` +
		where + buildOrder(q.Sort)
	pageArgs := args
	if q.PerPage > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		pageArgs = append(append([]any{}, args...), q.PerPage, (page-1)*q.PerPage)
	}

	rows, err := s.db.conn.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return zero, fmt.Errorf("query produce: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []dataset.Item
	for rows.Next() {
		var item dataset.Item
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Color, &item.Family,
			&item.Weight, &item.Price, &item.Stock,
		); err != nil {
			return zero, fmt.Errorf("scan produce row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return zero, fmt.Errorf("iterate produce rows: %w", err)
	}

	log.Debug(log.CatDB, "fetched page",
		"page", q.Page, "perPage", q.PerPage, "rows", len(items), "total", total)

	return pipeline.Result[dataset.Item]{Items: items, Total: total}, nil
}

// matchExpr is one column-contains-term condition. Unknown keys never
// match, mirroring the in-memory accessor returning nil.
func matchExpr(key string) (string, bool) {
	col, ok := columns[strings.ToLower(key)]
	if !ok {
		return "0", false
	}
	return `instr(lower(CAST(` + col + ` AS TEXT)), lower(?)) > 0`, true
}

// buildWhere translates the filter spec into a WHERE clause. The mode
// semantics match pipeline.Filter exactly.
func buildWhere(spec pipeline.FilterSpec) (string, []any) {
	if len(spec.Query) == 0 || len(spec.Keys) == 0 {
		return "", nil
	}

	var args []any

	// keyClause: the key's value contains at least one term.
	keyClause := func(key string) string {
		expr, ok := matchExpr(key)
		if !ok {
			return "0"
		}
		parts := make([]string, 0, len(spec.Query))
		for _, term := range spec.Query {
			parts = append(parts, expr)
			args = append(args, term)
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}

	var clauses []string
	switch spec.Mode {
	case pipeline.ModeEvery:
		for _, key := range spec.Keys {
			clauses = append(clauses, keyClause(key))
		}
		return " WHERE " + strings.Join(clauses, " AND "), args

	case pipeline.ModeIntersection:
		// Every term must be found under some key.
		for _, term := range spec.Query {
			parts := make([]string, 0, len(spec.Keys))
			for _, key := range spec.Keys {
				expr, ok := matchExpr(key)
				if !ok {
					parts = append(parts, "0")
					continue
				}
				parts = append(parts, expr)
				args = append(args, term)
			}
			clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		}
		return " WHERE " + strings.Join(clauses, " AND "), args

	case pipeline.ModeSome, pipeline.ModeUnion, "":
		for _, key := range spec.Keys {
			clauses = append(clauses, keyClause(key))
		}
		return " WHERE " + strings.Join(clauses, " OR "), args
	}

	// Unknown modes match nothing.
	return " WHERE 0", nil
}

// buildOrder translates sort keys into an ORDER BY clause. Unknown keys are
// skipped; id breaks remaining ties so pages stay deterministic.
func buildOrder(keys []pipeline.SortKey) string {
	var parts []string
	for _, key := range keys {
		col, ok := columns[strings.ToLower(key.Key)]
		if !ok {
			continue
		}
		clause := col
		if textColumns[col] {
			clause += " COLLATE NOCASE"
		}
		if key.Desc {
			clause += " DESC"
		}
		parts = append(parts, clause)
	}
	parts = append(parts, "id")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// cacheKey fingerprints a query for the page cache.
func cacheKey(q pipeline.Query) string {
	var b strings.Builder
	b.WriteString("terms=")
	b.WriteString(strings.Join(q.Filter.Query, ","))
	b.WriteString("|keys=")
	b.WriteString(strings.Join(q.Filter.Keys, ","))
	b.WriteString("|mode=")
	b.WriteString(string(q.Filter.Mode))
	b.WriteString("|sort=")
	for i, key := range q.Sort {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(key.Key)
		if key.Desc {
			b.WriteString(":desc")
		}
	}
	fmt.Fprintf(&b, "|page=%d|per=%d", q.Page, q.PerPage)
	return b.String()
}
