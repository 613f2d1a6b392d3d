package web

import (
	"html/template"

	"github.com/hyperjump/dealbrief/internal/dashboard"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/query"
	"github.com/hyperjump/dealbrief/internal/view"
)

var funcs = template.FuncMap{
	"debounceMillis": func() int64 { return dashboard.DebounceDelay.Milliseconds() },
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

func selectOptions(opts []view.Option, current string) []selectOption {
	out := make([]selectOption, len(opts))
	for i, o := range opts {
		out[i] = selectOption{Value: o.Value, Label: o.Label, Selected: o.Value == current}
	}
	return out
}

type toolbarData struct {
	Search     string
	Sector     string
	Company    string
	Status     []selectOption
	Stage      []selectOption
	Category   []selectOption
	Ordering   []selectOption
	HasFilters bool
	ClearHref  string
}

type modalData struct {
	Open       bool
	Text       string
	Error      string
	Return     string
	OpenHref   string
	CancelHref string
}

type paginationData struct {
	view.Pagination
	PrevHref string
	NextHref string
}

type listPage struct {
	Title      string
	Toolbar    toolbarData
	Rows       []view.Row
	Error      string
	Pagination paginationData
	Modal      modalData
}

type detailPage struct {
	Title  string
	Detail view.Detail
}

type notFoundPage struct {
	Title   string
	Message string
}

func newListPage(lv *dashboard.ListView, tb *dashboard.Toolbar, modal *dashboard.Modal, pageSize int) listPage {
	params := lv.Params()
	pg := lv.Pagination(pageSize)
	data := listPage{
		Title: "Deal Briefer Dashboard",
		Toolbar: toolbarData{
			Search:     tb.Draft(models.FieldSearch),
			Sector:     tb.Draft(models.FieldSector),
			Company:    tb.Draft(models.FieldCompany),
			Status:     selectOptions(view.StatusOptions, params.Status),
			Stage:      selectOptions(view.StageOptions, params.Stage),
			Category:   selectOptions(view.CategoryOptions, params.Category),
			Ordering:   selectOptions(view.OrderingOptions, params.OrderingOrDefault()),
			HasFilters: tb.HasActiveFilters(),
			ClearHref:  listPath(models.Cleared()),
		},
		Rows:       lv.Rows(),
		Error:      lv.Error(),
		Pagination: paginationData{Pagination: pg},
		Modal: modalData{
			Open:       modal.IsOpen(),
			Text:       modal.Text(),
			Error:      modal.Error(),
			Return:     query.URLQuery(params),
			OpenHref:   newDealPath(params),
			CancelHref: listPath(params),
		},
	}
	if pg.HasPrev {
		data.Pagination.PrevHref = listPath(params.WithPage(pg.PrevPage()))
	}
	if pg.HasNext {
		data.Pagination.NextHref = listPath(params.WithPage(pg.NextPage()))
	}
	return data
}
