package models

import "strings"

// Ordering tokens accepted by the list endpoint.
const (
	OrderNewest           = "-created_at"
	OrderOldest           = "created_at"
	OrderRecentlyUpdated  = "-updated_at"
	OrderLeastRecent      = "updated_at"
	OrderStatusAscending  = "status"
	OrderStatusDescending = "-status"

	DefaultOrdering = OrderNewest
)

// Orderings lists the ordering tokens in display order.
var Orderings = []string{
	OrderNewest, OrderOldest, OrderRecentlyUpdated, OrderLeastRecent,
	OrderStatusAscending, OrderStatusDescending,
}

// ValidOrdering reports whether token is a recognized ordering.
func ValidOrdering(token string) bool {
	return contains(Orderings, token)
}

// Field names a filter of ListParams. The names double as query parameter keys.
type Field string

const (
	FieldSearch   Field = "search"
	FieldStatus   Field = "status"
	FieldSector   Field = "sector"
	FieldCompany  Field = "company"
	FieldStage    Field = "stage"
	FieldCategory Field = "category"
	FieldOrdering Field = "ordering"
)

// FilterFields are the filter fields in their canonical query order.
var FilterFields = []Field{FieldSearch, FieldStatus, FieldSector, FieldCompany, FieldStage, FieldCategory}

// ListParams is the filter/sort/page state describing which deals are displayed.
// Empty strings mean "not set"; Page is 1-based and 0 means "not set".
type ListParams struct {
	Search   string
	Status   string
	Sector   string
	Company  string
	Stage    string
	Category string
	Ordering string
	Page     int
}

// Get returns the value of field f.
func (p ListParams) Get(f Field) string {
	switch f {
	case FieldSearch:
		return p.Search
	case FieldStatus:
		return p.Status
	case FieldSector:
		return p.Sector
	case FieldCompany:
		return p.Company
	case FieldStage:
		return p.Stage
	case FieldCategory:
		return p.Category
	case FieldOrdering:
		return p.Ordering
	}
	return ""
}

func (p *ListParams) set(f Field, v string) {
	switch f {
	case FieldSearch:
		p.Search = v
	case FieldStatus:
		p.Status = v
	case FieldSector:
		p.Sector = v
	case FieldCompany:
		p.Company = v
	case FieldStage:
		p.Stage = v
	case FieldCategory:
		p.Category = v
	case FieldOrdering:
		p.Ordering = v
	}
}

// With returns a copy with field f set to v and the page reset to 1.
func (p ListParams) With(f Field, v string) ListParams {
	p.set(f, v)
	p.Page = 1
	return p
}

// WithPage returns a copy showing page n; other fields are untouched.
func (p ListParams) WithPage(n int) ListParams {
	if n < 1 {
		n = 1
	}
	p.Page = n
	return p
}

// Cleared returns the default state: no filters, newest first, page 1.
func Cleared() ListParams {
	return ListParams{Ordering: DefaultOrdering, Page: 1}
}

// CurrentPage returns the 1-based page, treating unset as 1.
func (p ListParams) CurrentPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// OrderingOrDefault returns the ordering token, or the default when unset.
func (p ListParams) OrderingOrDefault() string {
	if strings.TrimSpace(p.Ordering) == "" {
		return DefaultOrdering
	}
	return p.Ordering
}

// HasFilters reports whether any filter field (ordering and page excluded) is set.
func (p ListParams) HasFilters() bool {
	for _, f := range FilterFields {
		if strings.TrimSpace(p.Get(f)) != "" {
			return true
		}
	}
	return false
}
