package services

// Page is one slice of a listing together with the bounds actually
// applied to the query.
type Page[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
}

// NextOffset is the offset of the row after this page.
func (p Page[T]) NextOffset() int {
	return p.Offset + len(p.Items)
}

// clampPage keeps limit within [1, max], using def when limit is not
// positive, and floors offset at zero.
func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
