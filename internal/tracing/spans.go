package tracing

// Span attribute keys for pipeline and data source tracing.
const (
	// Pipeline attributes
	AttrFilterTerms = "pipeline.filter.terms"
	AttrFilterKeys  = "pipeline.filter.keys"
	AttrFilterMode  = "pipeline.filter.mode"
	AttrSortKeys    = "pipeline.sort.keys"
	AttrPage        = "pipeline.page"
	AttrPerPage     = "pipeline.per_page"
	AttrTotal       = "pipeline.total"

	// Data source attributes
	AttrDBPath    = "db.path"
	AttrRowCount  = "db.row_count"
	AttrCacheHit  = "cache.hit"
	AttrCacheKey  = "cache.key"

	// Error attributes
	AttrErrorMessage = "error.message"
	AttrErrorType    = "error.type"
)

// Span names for data source operations.
const (
	SpanFetch   = "source.fetch"
	SpanSeed    = "source.seed"
	SpanMigrate = "source.migrate"
)
