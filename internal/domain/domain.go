// Package domain provides core business logic interfaces and shared types.
package domain

// Pagination limits for list operations.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs substring search on searchable fields
	Search string

	// IncludeDeleted includes soft-deleted records
	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "name", "created_at DESC")
	OrderBy string

	// Pagination (1-based page)
	Page  int
	Limit int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}
}

// Normalize clamps pagination to valid bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}

// Offset calculates the SQL offset for the current page.
func (f *ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
}

// TotalPages computes the number of pages for the current limit.
func (r ListResult[T]) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	pages := int(r.TotalCount) / r.Limit
	if int(r.TotalCount)%r.Limit > 0 {
		pages++
	}
	return pages
}
