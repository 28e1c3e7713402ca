package pipeline

// Paginate slices one page out of the items. Pages are 1-based. A perPage
// of zero or less returns everything, and out-of-range pages come back
// empty.
func Paginate[T any](items []T, page, perPage int) []T {
	if perPage <= 0 {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// PageCount returns the number of pages needed for total items. An empty
// collection still has one page.
func PageCount(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return pages
}
