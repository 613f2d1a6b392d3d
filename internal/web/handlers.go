package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/dashboard"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/query"
	"github.com/hyperjump/dealbrief/internal/view"
)

const (
	formRawText = "raw_text"
	formReturn  = "return"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	params := query.FromValues(r.URL.Query())
	if canonical := listPath(params); r.URL.RequestURI() != canonical {
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}
	s.renderList(w, r, http.StatusOK, params, &dashboard.Modal{})
}

func (s *Server) handleNewDeal(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query().Get(formReturn))
	modal := &dashboard.Modal{}
	modal.Open()
	s.renderList(w, r, http.StatusOK, params, modal)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	params := query.Parse(r.PostForm.Get(formReturn))
	modal := &dashboard.Modal{}
	modal.Open()
	modal.SetText(r.PostForm.Get(formRawText))
	text, ok := modal.Submit()
	if !ok {
		s.renderList(w, r, http.StatusBadRequest, params, modal)
		return
	}
	ctx := client.WithCookies(r.Context(), r.Cookies())
	deal, err := s.api.CreateDeal(ctx, text)
	if err != nil {
		s.logger.Warn("create deal failed", zap.Error(err))
	} else {
		s.logger.Debug("deal created", zap.String("id", deal.ID), zap.String("status", string(deal.Status)))
	}
	modal.Finish(err, func() {
		http.Redirect(w, r, listPath(params), http.StatusSeeOther)
	})
	if err != nil {
		s.renderList(w, r, createFailureStatus(err), params, modal)
	}
}

// createFailureStatus passes the Deals API's rejections of the submission
// through as 400. Transport failures and server errors are a bad gateway.
func createFailureStatus(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := client.WithCookies(r.Context(), r.Cookies())
	deal, err := s.api.FetchOne(ctx, id)
	if err != nil {
		s.logger.Debug("fetch deal failed", zap.String("id", id), zap.Error(err))
		s.renderNotFound(w, client.MsgNotFound)
		return
	}
	d := view.NewDetail(deal)
	title := d.Title
	if title == view.Placeholder {
		title = deal.ID
	}
	s.render(w, http.StatusOK, "detail.html", detailPage{
		Title:  title + " | Deal Briefer",
		Detail: d,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderNotFound(w, "Page not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderList fetches the deals for params and renders the list page.
func (s *Server) renderList(w http.ResponseWriter, r *http.Request, status int, params models.ListParams, modal *dashboard.Modal) {
	ctx := client.WithCookies(r.Context(), r.Cookies())
	lv := dashboard.NewListView(params)
	res := dashboard.Fetch(ctx, s.api, lv.Load())
	if res.Err != nil {
		s.logger.Warn("fetch deals failed", zap.Error(res.Err))
	}
	lv.Resolve(res)
	s.render(w, status, "list.html", newListPage(lv, dashboard.NewToolbar(params), modal, s.config.PageSize))
}

func (s *Server) renderNotFound(w http.ResponseWriter, message string) {
	s.render(w, http.StatusNotFound, "notfound.html", notFoundPage{
		Title:   "Not found | Deal Briefer",
		Message: message,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// listPath is the canonical dashboard location for params.
func listPath(params models.ListParams) string {
	return "/" + query.URLQuery(params)
}

// newDealPath opens the creation modal over the list described by params.
func newDealPath(params models.ListParams) string {
	q := query.URLQuery(params)
	if q == "" {
		return "/deals/new"
	}
	return "/deals/new?" + formReturn + "=" + url.QueryEscape(strings.TrimPrefix(q, "?"))
}
