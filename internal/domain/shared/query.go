package shared

// MaxPageSize caps the page size a caller can request
const MaxPageSize = 500

// Filter carries paging, ordering and free-form criteria of a list query.
// Repositories whitelist OrderBy and the keys of Filters they understand.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter returns the first page of 20, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// WithPage overrides page and page size when they are positive. The size is
// clamped to MaxPageSize.
func (f Filter) WithPage(page, pageSize int) Filter {
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = min(pageSize, MaxPageSize)
	}
	return f
}

// Offset is the number of rows skipped before the current page
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Where sets a criterion, skipping empty strings
func (f *Filter) Where(key string, value any) {
	if s, ok := value.(string); ok && s == "" {
		return
	}
	if f.Filters == nil {
		f.Filters = make(map[string]any)
	}
	f.Filters[key] = value
}
