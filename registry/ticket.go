package registry

// Ticket is the atomic record managed by a Registry: a stable id, an index
// recomputed on every structural mutation, and an arbitrary payload value.
type Ticket struct {
	ID    string
	Index int
	Value any

	// valueIsIndex marks tickets registered without an explicit value. Their
	// value tracks the index across reindexes.
	valueIsIndex bool
}

// Item is the caller-supplied input to Register and Upsert.
type Item struct {
	// ID identifies the ticket. When empty a UUID is generated.
	ID string

	// Value is the ticket payload. When nil the assigned index is used and
	// the value stays in sync with the index on reindex.
	Value any
}
