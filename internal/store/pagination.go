package store

// Pagination limits. Limits outside the range are clamped, not rejected,
// so a sloppy client still gets a usable page.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// PageParams contains offset pagination request parameters.
// The offset indexes into the owner's non-deleted result set ordered by
// descending last-updated timestamp.
type PageParams struct {
	Offset int // Zero-based row offset (first page = 0)
	Limit  int // Items per page (defaults to DefaultLimit, capped at MaxLimit)
}

// Page contains one page of results plus continuation metadata.
// NextOffset is nil once no further pages exist.
type Page[T any] struct {
	Items      []T  `json:"items"`
	HasMore    bool `json:"has_more"`
	NextOffset *int `json:"next_offset"`
}

// Validate clamps pagination parameters into their allowed ranges.
func (p *PageParams) Validate() {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// NewPage builds a Page from limit+1 probed rows: if more than limit rows
// came back the page is trimmed and NextOffset advances by the page size.
func NewPage[T any](rows []T, params PageParams) Page[T] {
	hasMore := len(rows) > params.Limit
	if hasMore {
		rows = rows[:params.Limit]
	}
	if rows == nil {
		rows = []T{}
	}
	page := Page[T]{
		Items:   rows,
		HasMore: hasMore,
	}
	if hasMore {
		next := params.Offset + params.Limit
		page.NextOffset = &next
	}
	return page
}
