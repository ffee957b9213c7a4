package shared

// Filter is the list query shared by every repository. Filters holds
// repository-specific equality filters keyed by column, e.g. "is_active".
// PageSize 0 disables paging.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// Offset is the first row of the page; pages are 1-based
func (f Filter) Offset() int {
	if f.Page < 2 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
