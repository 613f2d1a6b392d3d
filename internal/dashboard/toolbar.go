package dashboard

import (
	"strings"
	"time"

	"github.com/hyperjump/dealbrief/internal/models"
)

// DebounceDelay is how long the search draft must stay unchanged before it commits.
const DebounceDelay = 400 * time.Millisecond

// Toolbar holds the filter controls. Search, sector and company are edited as drafts;
// the enumerated filters and the ordering commit as soon as they change. Every commit
// returns the new parameters with the page reset to 1.
type Toolbar struct {
	params  models.ListParams
	search  string
	sector  string
	company string
	token   uint64
}

// NewToolbar returns a toolbar showing p.
func NewToolbar(p models.ListParams) *Toolbar {
	t := &Toolbar{}
	t.Sync(p)
	return t
}

// Sync adopts parameters changed elsewhere (pagination, navigation) and resets the
// drafts to the committed values. A pending search settle is invalidated.
func (t *Toolbar) Sync(p models.ListParams) {
	t.params = p
	t.search = p.Search
	t.sector = p.Sector
	t.company = p.Company
	t.token++
}

// Params returns the committed parameters.
func (t *Toolbar) Params() models.ListParams { return t.params }

// Draft returns the text currently shown in a free-text field.
func (t *Toolbar) Draft(f models.Field) string {
	switch f {
	case models.FieldSearch:
		return t.search
	case models.FieldSector:
		return t.sector
	case models.FieldCompany:
		return t.company
	}
	return t.params.Get(f)
}

// TypeSearch replaces the search draft and returns the debounce token to pass to
// SettleSearch once DebounceDelay has elapsed.
func (t *Toolbar) TypeSearch(s string) uint64 {
	t.search = s
	t.token++
	return t.token
}

// SettleSearch commits the search draft if token is still the latest and the draft
// differs from the committed search.
func (t *Toolbar) SettleSearch(token uint64) (models.ListParams, bool) {
	if token != t.token {
		return t.params, false
	}
	return t.commitDraft(models.FieldSearch, t.search)
}

// TypeSector replaces the sector draft.
func (t *Toolbar) TypeSector(s string) { t.sector = s }

// TypeCompany replaces the company draft.
func (t *Toolbar) TypeCompany(s string) { t.company = s }

// FlushSector commits the sector draft (blur or Enter) if it changed.
func (t *Toolbar) FlushSector() (models.ListParams, bool) {
	return t.commitDraft(models.FieldSector, t.sector)
}

// FlushCompany commits the company draft (blur or Enter) if it changed.
func (t *Toolbar) FlushCompany() (models.ListParams, bool) {
	return t.commitDraft(models.FieldCompany, t.company)
}

func (t *Toolbar) commitDraft(f models.Field, draft string) (models.ListParams, bool) {
	v := strings.TrimSpace(draft)
	if v == t.params.Get(f) {
		return t.params, false
	}
	t.params = t.params.With(f, v)
	return t.params, true
}

// Set commits an enumerated filter or the ordering immediately.
func (t *Toolbar) Set(f models.Field, v string) models.ListParams {
	t.params = t.params.With(f, strings.TrimSpace(v))
	return t.params
}

// Clear removes every filter and restores the default ordering on page 1.
func (t *Toolbar) Clear() models.ListParams {
	t.Sync(models.Cleared())
	return t.params
}

// HasActiveFilters reports whether any committed filter is set.
func (t *Toolbar) HasActiveFilters() bool {
	return t.params.HasFilters()
}
