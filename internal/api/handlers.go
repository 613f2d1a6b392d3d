package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/briefer"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/query"
	"github.com/hyperjump/dealbrief/internal/storage"
)

const (
	msgNotFound      = "Not found."
	msgInvalidPage   = "Invalid page."
	msgInternalError = "Internal server error."

	defaultPageSize = 20
	maxBodyBytes    = 1 << 20
)

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.config.LegacyUnfilteredList && r.URL.RawQuery == "" {
		deals, _, err := s.storage.ListDeals(ctx, storage.Filter{}, 0, -1)
		if err != nil {
			s.logger.Error("list deals failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		s.respondJSON(w, http.StatusOK, nonNil(deals))
		return
	}

	values := r.URL.Query()
	params := query.FromValues(values)
	if params.Status != "" && !models.Status(params.Status).Valid() {
		s.respondJSON(w, http.StatusBadRequest, map[string][]string{
			"status": {fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", params.Status)},
		})
		return
	}
	page := 1
	if raw := strings.TrimSpace(values.Get(query.KeyPage)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusNotFound, msgInvalidPage)
			return
		}
		page = n
	}

	filter := storage.Filter{
		Status:   models.Status(params.Status),
		Sector:   params.Sector,
		Company:  params.Company,
		Stage:    params.Stage,
		Category: params.Category,
		Ordering: params.OrderingOrDefault(),
	}
	if params.Search != "" && s.index != nil {
		ids, err := s.index.Search(ctx, params.Search, 0)
		if err != nil {
			s.logger.Error("search failed", zap.String("search", params.Search), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		filter.IDs = append([]string{}, ids...)
	}

	size := s.pageSize()
	s.logger.Debug("list deals request", zap.Any("filter", filter), zap.Int("page", page))
	deals, total, err := s.storage.ListDeals(ctx, filter, (page-1)*size, size)
	if err != nil {
		s.logger.Error("list deals failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if page > 1 && (page-1)*size >= total {
		s.respondError(w, http.StatusNotFound, msgInvalidPage)
		return
	}

	resp := models.DealPage{Count: total, Results: nonNil(deals)}
	if page*size < total {
		next := pageURL(r, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		resp.Previous = &prev
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deal, err := s.storage.GetDeal(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.logger.Error("get deal failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	s.respondJSON(w, http.StatusOK, deal)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	raw, err := readRawText(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("create deal request", zap.Int("length", len(raw)))

	deal, err := s.briefer.Create(r.Context(), raw)
	var inputErr *briefer.InputError
	switch {
	case errors.As(err, &inputErr), errors.Is(err, briefer.ErrDuplicate):
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("create deal failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	s.respondJSON(w, http.StatusCreated, deal)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.storage.CountByStatus(r.Context())
	if err != nil {
		s.logger.Error("status: count deals failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	resp := map[string]interface{}{
		"deals":     total,
		"by_status": counts,
		"page_size": s.pageSize(),
	}
	if s.index != nil {
		if n, err := s.index.DocCount(); err == nil {
			resp["search_index_size"] = n
		}
	}
	if s.storageCfg != nil {
		if dbBytes, err := storage.DatabaseUsageBytes(s.storageCfg.DatabasePath); err == nil {
			resp["database_bytes"] = dbBytes
		}
		if diskBytes, err := storage.UsageBytes(s.storageCfg.DatabasePath, s.storageCfg.SearchIndexPath); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) pageSize() int {
	if s.config.PageSize > 0 {
		return s.config.PageSize
	}
	return defaultPageSize
}

// readRawText reads raw_text from a JSON or form body.
func readRawText(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	required := &briefer.InputError{Field: "raw_text", Message: "This field is required."}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return "", fmt.Errorf("invalid form body: %w", err)
		}
		if !r.PostForm.Has("raw_text") {
			return "", required
		}
		return r.PostForm.Get("raw_text"), nil
	}

	var input struct {
		RawText *string `json:"raw_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return "", fmt.Errorf("JSON parse error - %v", err)
	}
	if input.RawText == nil {
		return "", required
	}
	return *input.RawText, nil
}

// pageURL is the absolute URL of page n of the current listing.
func pageURL(r *http.Request, n int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := r.URL.Query()
	if n <= 1 {
		q.Del(query.KeyPage)
	} else {
		q.Set(query.KeyPage, strconv.Itoa(n))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func nonNil(deals []*models.Deal) []*models.Deal {
	if deals == nil {
		return []*models.Deal{}
	}
	return deals
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
