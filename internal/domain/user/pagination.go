package user

import "math"

// Page holds one page of an ordered collection together with its pagination information.
type Page[T any] struct {
	Items       []T   // Items on the current page
	CurrentPage int   // Current page number (1-based)
	PageSize    int   // Number of records per page
	TotalCount  int64 // Total number of records
	TotalPages  int   // Total number of pages
}

// NewPage creates a new Page with calculated total pages.
func NewPage[T any](items []T, total int64, page, size int) *Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &Page[T]{
		Items:       items,
		CurrentPage: page,
		PageSize:    size,
		TotalCount:  total,
		TotalPages:  totalPages,
	}
}

// HasPrevious reports whether a page exists before the current one.
func (p *Page[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a page exists after the current one.
func (p *Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Offset returns the number of records preceding the first item of a page.
// It saturates at math.MaxInt instead of overflowing for very large pages.
func Offset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}
