// Package dashboard holds the interactive state of the deals dashboard: the list
// view, the filter toolbar and the creation modal. The types are plain state
// machines driven by the web and terminal front ends; network calls are made by the
// caller and fed back in.
package dashboard

import (
	"context"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/view"
)

// Phase is the lifecycle state of the list view.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// Request is one list fetch to perform. Seq orders requests; only the response to
// the most recently issued request is applied.
type Request struct {
	Seq    uint64
	Params models.ListParams
}

// Loaded is the outcome of a Request.
type Loaded struct {
	Seq  uint64
	Page *models.DealPage
	Err  error
}

// Lister fetches one page of deals.
type Lister interface {
	FetchList(ctx context.Context, p models.ListParams) (*models.DealPage, error)
}

// Fetch performs req with l.
func Fetch(ctx context.Context, l Lister, req Request) Loaded {
	page, err := l.FetchList(ctx, req.Params)
	return Loaded{Seq: req.Seq, Page: page, Err: err}
}

// ListView tracks the displayed deals for the current parameters.
type ListView struct {
	params models.ListParams
	phase  Phase
	deals  []*models.Deal
	count  int
	err    string
	seq    uint64
}

// NewListView starts in the loading phase for p. Call Load to obtain the first request.
func NewListView(p models.ListParams) *ListView {
	return &ListView{params: p, phase: PhaseLoading}
}

// Load issues a request for the current parameters.
func (v *ListView) Load() Request {
	v.seq++
	v.phase = PhaseLoading
	return Request{Seq: v.seq, Params: v.params}
}

// SetParams switches to p and issues exactly one request for it.
func (v *ListView) SetParams(p models.ListParams) Request {
	v.params = p
	return v.Load()
}

// Refresh re-issues the current parameters, e.g. after a deal was created.
func (v *ListView) Refresh() Request {
	return v.Load()
}

// Resolve applies a response. It reports false, changing nothing, when res answers a
// request that has since been superseded. A failure keeps previously loaded deals.
func (v *ListView) Resolve(res Loaded) bool {
	if res.Seq != v.seq {
		return false
	}
	if res.Err != nil || res.Page == nil {
		v.phase = PhaseError
		v.err = client.MsgListFailed
		return true
	}
	v.phase = PhaseReady
	v.err = ""
	v.deals = res.Page.Results
	v.count = res.Page.Count
	return true
}

// Params returns the current parameters.
func (v *ListView) Params() models.ListParams { return v.params }

// Phase returns the lifecycle state.
func (v *ListView) Phase() Phase { return v.phase }

// Loading reports whether a request is outstanding.
func (v *ListView) Loading() bool { return v.phase == PhaseLoading }

// Deals returns the last successfully loaded deals.
func (v *ListView) Deals() []*models.Deal { return v.deals }

// Count returns the total number of matching deals of the last successful load.
func (v *ListView) Count() int { return v.count }

// Error returns the message of the last failed load, or "".
func (v *ListView) Error() string {
	if v.phase != PhaseError {
		return ""
	}
	return v.err
}

// Rows derives the table rows of the loaded deals.
func (v *ListView) Rows() []view.Row {
	return view.Rows(v.deals)
}

// Pagination computes the pagination for the loaded deals.
func (v *ListView) Pagination(pageSize int) view.Pagination {
	return view.NewPagination(v.params.CurrentPage(), v.count, pageSize)
}
