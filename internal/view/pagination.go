package view

import "fmt"

// DefaultPageSize matches the page size of the Deals API.
const DefaultPageSize = 20

// Pagination describes the visible slice of a result set.
type Pagination struct {
	Page       int
	Count      int
	PageSize   int
	TotalPages int
	// Start and End are the 1-based positions of the first and last visible
	// deals; both are 0 when there are no deals.
	Start   int
	End     int
	HasPrev bool
	HasNext bool
}

// NewPagination computes the pagination for page (1-based) of count deals.
// Non-positive page sizes fall back to DefaultPageSize.
func NewPagination(page, count, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if count < 0 {
		count = 0
	}
	total := (count + pageSize - 1) / pageSize
	if total < 1 {
		total = 1
	}
	p := Pagination{
		Page:       page,
		Count:      count,
		PageSize:   pageSize,
		TotalPages: total,
		HasPrev:    page > 1,
		HasNext:    page < total,
	}
	if count > 0 {
		p.Start = (page-1)*pageSize + 1
		p.End = min(page*pageSize, count)
	}
	return p
}

// Summary is the range line, e.g. "Showing 21–40 of 45".
func (p Pagination) Summary() string {
	if p.Count == 0 {
		return "No deals"
	}
	return fmt.Sprintf("Showing %d–%d of %d", p.Start, p.End, p.Count)
}

// PageLabel is e.g. "Page 2 of 3".
func (p Pagination) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages)
}

// PrevPage and NextPage return the neighbouring pages.
func (p Pagination) PrevPage() int { return p.Page - 1 }

func (p Pagination) NextPage() int { return p.Page + 1 }
