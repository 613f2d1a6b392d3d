package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/metrics"
	"github.com/hyperjump/dealbrief/internal/models"
)

type mockAPI struct {
	deals     []*models.Deal
	count     int
	listErr   error
	createErr error

	listCalls []models.ListParams
	created   []string
	cookies   []*http.Cookie
}

func (m *mockAPI) FetchList(ctx context.Context, p models.ListParams) (*models.DealPage, error) {
	m.listCalls = append(m.listCalls, p)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &models.DealPage{Count: m.count, Results: m.deals}, nil
}

func (m *mockAPI) FetchOne(ctx context.Context, id string) (*models.Deal, error) {
	for _, d := range m.deals {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, client.ErrNotFound
}

func (m *mockAPI) CreateDeal(ctx context.Context, rawText string) (*models.Deal, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, rawText)
	return &models.Deal{ID: "new", RawText: rawText, Status: models.StatusPending}, nil
}

func newTestServer(t *testing.T, api *mockAPI) http.Handler {
	t.Helper()
	srv, err := NewServer(api, &config.DashboardConfig{Host: "localhost", Port: 0, PageSize: 20}, zap.NewNop(), metrics.New("test"))
	if err != nil {
		t.Fatal(err)
	}
	return srv.Handler()
}

func do(h http.Handler, method, target string, body url.Values) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func sampleDeals() []*models.Deal {
	return []*models.Deal{
		{ID: "d1", Status: models.StatusProcessed, ExtractedJSON: &models.Brief{
			Entities: &models.Entities{Company: "Acme Robotics", Sector: "Robotics"},
			Tags:     &models.Tags{Category: []string{"deep tech"}, Stage: "Seed"},
		}},
		{ID: "d2", Status: models.StatusPending, RawText: "unprocessed"},
	}
}

func TestHandleList_RendersRowsAndPagination(t *testing.T) {
	api := &mockAPI{deals: sampleDeals(), count: 45}
	w := do(newTestServer(t, api), http.MethodGet, "/?status=processed&page=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"Acme Robotics", "deep tech", `href="/deals/d1"`,
		"Showing 21–40 of 45", "Page 2 of 3",
		`href="/?status=processed"`, `href="/?status=processed&amp;page=3"`,
		"Clear filters", `<option value="processed" selected>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if len(api.listCalls) != 1 {
		t.Fatalf("list calls: got %d", len(api.listCalls))
	}
	if got := api.listCalls[0]; got.Status != "processed" || got.Page != 2 {
		t.Errorf("list params: got %+v", got)
	}
}

func TestHandleList_RedirectsToCanonicalURL(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/?search=&status=pending&sector=&page=1", "/?status=pending"},
		{"/?page=1", "/"},
		{"/?stage=Seed&search=acme", "/?search=acme&stage=Seed"},
	}
	for _, tt := range tests {
		api := &mockAPI{}
		w := do(newTestServer(t, api), http.MethodGet, tt.target, nil)
		if w.Code != http.StatusFound {
			t.Errorf("%s: status %d", tt.target, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != tt.want {
			t.Errorf("%s: Location = %q, want %q", tt.target, loc, tt.want)
		}
		if len(api.listCalls) != 0 {
			t.Errorf("%s: redirect should not fetch", tt.target)
		}
	}
}

func TestHandleList_FetchFailure(t *testing.T) {
	api := &mockAPI{listErr: fmt.Errorf("%w: refused", client.ErrTransport)}
	w := do(newTestServer(t, api), http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, client.MsgListFailed) {
		t.Error("body should contain the list failure message")
	}
	if !strings.Contains(body, "No deals") {
		t.Error("failed first load should show an empty list")
	}
	if strings.Contains(body, "Clear filters") {
		t.Error("clear button should be hidden without filters")
	}
}

func TestHandleDetail(t *testing.T) {
	api := &mockAPI{deals: sampleDeals()}
	h := newTestServer(t, api)

	w := do(h, http.MethodGet, "/deals/d1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Acme Robotics", "Entities", "Tags", "Raw text"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Investment brief") || strings.Contains(body, "Last error") {
		t.Error("empty sections should be omitted")
	}

	w = do(h, http.MethodGet, "/deals/d2", nil)
	body = w.Body.String()
	if strings.Contains(body, "Entities") || !strings.Contains(body, "unprocessed") {
		t.Errorf("deal without extraction rendered wrongly:\n%s", body)
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	w := do(newTestServer(t, &mockAPI{}), http.MethodGet, "/deals/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), client.MsgNotFound) {
		t.Error("body should say the deal was not found")
	}
}

func TestHandleCreateDeal_EmptyText(t *testing.T) {
	api := &mockAPI{}
	w := do(newTestServer(t, api), http.MethodPost, "/deals", url.Values{"raw_text": {"   "}, "return": {"?status=failed"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", w.Code)
	}
	if len(api.created) != 0 {
		t.Error("empty submission must not reach the API")
	}
	body := w.Body.String()
	if !strings.Contains(body, "Please enter or paste some text.") {
		t.Error("validation message missing")
	}
	if !strings.Contains(body, "data-open") {
		t.Error("modal should stay open")
	}
}

func TestHandleCreateDeal_SuccessRedirectsToList(t *testing.T) {
	api := &mockAPI{}
	w := do(newTestServer(t, api), http.MethodPost, "/deals",
		url.Values{"raw_text": {"  Acme raises $2M  "}, "return": {"?status=failed&page=3"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/?status=failed&page=3" {
		t.Errorf("Location = %q", loc)
	}
	if len(api.created) != 1 || api.created[0] != "Acme raises $2M" {
		t.Errorf("created: %v", api.created)
	}
}

func TestHandleCreateDeal_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{"duplicate", &client.APIError{Status: 400, Message: "Deal with this input hash already exists."}, http.StatusBadRequest, "Deal with this input hash already exists."},
		{"validation", &client.APIError{Status: 400, Message: "Ensure this field has no more than 10000 characters."}, http.StatusBadRequest, "Ensure this field has no more than 10000 characters."},
		{"server error", &client.APIError{Status: 500, Message: "Internal server error."}, http.StatusBadGateway, "Internal server error."},
		{"transport", fmt.Errorf("%w: POST /api/deals/: connection refused", client.ErrTransport), http.StatusBadGateway, client.MsgNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{createErr: tt.err}
			w := do(newTestServer(t, api), http.MethodPost, "/deals", url.Values{"raw_text": {"dup"}})
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
			body := w.Body.String()
			if !strings.Contains(body, tt.message) {
				t.Errorf("body missing %q", tt.message)
			}
			if !strings.Contains(body, ">dup</textarea>") {
				t.Error("submitted text should be preserved")
			}
		})
	}
}

func TestHandleNewDeal_OpensModalOverList(t *testing.T) {
	api := &mockAPI{}
	w := do(newTestServer(t, api), http.MethodGet, "/deals/new?return="+url.QueryEscape("stage=Seed"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "data-open") {
		t.Error("modal should be open")
	}
	if len(api.listCalls) != 1 || api.listCalls[0].Stage != "Seed" {
		t.Errorf("list calls: %+v", api.listCalls)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, &mockAPI{})
	w := do(h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
	w = do(h, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "test_http_requests_total") {
		t.Errorf("metrics: %d", w.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	w := do(newTestServer(t, &mockAPI{}), http.MethodGet, "/static/app.js", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "debounce") {
		t.Errorf("app.js: %d", w.Code)
	}
}

func TestToolbarDraftsCarryCommittedValues(t *testing.T) {
	w := do(newTestServer(t, &mockAPI{}), http.MethodGet, "/?search=robot&sector=Fintech&company=Acme", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`name="search" value="robot" data-committed="robot"`,
		`name="sector" value="Fintech" data-committed="Fintech"`,
		`name="company" value="Acme" data-committed="Acme"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	js := do(newTestServer(t, &mockAPI{}), http.MethodGet, "/static/app.js", nil).Body.String()
	for _, want := range []string{
		"input[data-committed]",
		"if (input !== changed) input.value = input.dataset.committed;",
		"submit(search)", "submit(input)", "submit(select)",
	} {
		if !strings.Contains(js, want) {
			t.Errorf("app.js missing %q", want)
		}
	}
}

func TestNewDealPath(t *testing.T) {
	if got := newDealPath(models.ListParams{}); got != "/deals/new" {
		t.Errorf("got %q", got)
	}
	if got := newDealPath(models.ListParams{Status: "failed", Page: 2}); got != "/deals/new?return=status%3Dfailed%26page%3D2" {
		t.Errorf("got %q", got)
	}
}
