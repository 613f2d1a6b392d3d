// Package integration runs the Deals API client against the reference API server
// (real storage and search index).
package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/dealbrief/internal/api"
	"github.com/hyperjump/dealbrief/internal/briefer"
	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/search"
	"github.com/hyperjump/dealbrief/internal/storage"
)

func briefFor(raw string) (*models.Brief, error) {
	if strings.Contains(raw, "FAIL") {
		return nil, errors.New("model returned invalid output")
	}
	points := make([]string, models.BriefLength)
	for i := range points {
		points[i] = fmt.Sprintf("Point %d", i+1)
	}
	company := strings.Fields(raw)[0]
	return &models.Brief{
		InvestmentBrief: points,
		Entities:        &models.Entities{Company: company, Sector: "Fintech", Stage: models.StageSeed, Founders: []string{}, NotableMetrics: []string{}},
		Tags:            &models.Tags{Category: []string{models.CategoryFintech}, Stage: models.StageSeed},
	}, nil
}

func startAPI(t *testing.T, cfg config.ServerConfig) *client.Client {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "deals.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	index, err := search.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = index.Close() })

	svc := briefer.NewService(store, index, briefer.GeneratorFunc(func(_ context.Context, raw string) (*models.Brief, error) {
		return briefFor(raw)
	}), briefer.Options{})
	srv := httptest.NewServer(api.NewServer(store, index, svc, &cfg, nil, nil, nil).Handler())
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestIntegration_CreateAndFetch(t *testing.T) {
	c := startAPI(t, config.ServerConfig{PageSize: 20})
	ctx := context.Background()

	created, err := c.CreateDeal(ctx, "  Ledgerly builds payments infrastructure  ")
	if err != nil {
		t.Fatalf("CreateDeal: %v", err)
	}
	if created.Status != models.StatusProcessed || created.RawText != "Ledgerly builds payments infrastructure" {
		t.Errorf("created = %+v", created)
	}

	got, err := c.FetchOne(ctx, created.ID)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if got.Company() != "Ledgerly" || len(got.ExtractedJSON.InvestmentBrief) != models.BriefLength {
		t.Errorf("fetched = %+v", got)
	}

	if _, err := c.FetchOne(ctx, "missing"); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("FetchOne(missing) err = %v, want ErrNotFound", err)
	}
}

func TestIntegration_CreateErrors(t *testing.T) {
	c := startAPI(t, config.ServerConfig{})
	ctx := context.Background()

	if _, err := c.CreateDeal(ctx, "Acme Robotics raises a seed round"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		raw     string
		message string
	}{
		{"duplicate after normalization", "ACME   robotics raises a seed round", briefer.ErrDuplicate.Error()},
		{"blank", "   ", "raw_text: This field may not be blank."},
		{"too long", strings.Repeat("x", briefer.MaxTextLength+1), "raw_text: Ensure this field has no more than 10000 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateDeal(ctx, tt.raw)
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *client.APIError", err)
			}
			if apiErr.Status != http.StatusBadRequest || apiErr.Message != tt.message {
				t.Errorf("got %d %q, want 400 %q", apiErr.Status, apiErr.Message, tt.message)
			}
			if msg := client.UserMessage(err, client.MsgCreateFailed); msg != tt.message {
				t.Errorf("UserMessage = %q", msg)
			}
		})
	}
}

func TestIntegration_FailedGenerationIsStored(t *testing.T) {
	c := startAPI(t, config.ServerConfig{})
	ctx := context.Background()

	created, err := c.CreateDeal(ctx, "Brokenco FAIL memo")
	if err != nil {
		t.Fatalf("CreateDeal: %v", err)
	}
	if created.Status != models.StatusFailed || created.LastError == nil || created.ExtractedJSON != nil {
		t.Errorf("created = %+v", created)
	}

	page, err := c.FetchList(ctx, models.ListParams{Status: string(models.StatusFailed)})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 1 || page.Results[0].ID != created.ID {
		t.Errorf("failed listing = %+v", page)
	}
}

func TestIntegration_ListPaginationAndSearch(t *testing.T) {
	c := startAPI(t, config.ServerConfig{PageSize: 2})
	ctx := context.Background()

	var newest *models.Deal
	for _, raw := range []string{
		"Alpha builds robotics for warehouses",
		"Bravo builds payment rails",
		"Charlie builds solar microgrids",
		"Delta builds robotics arms",
		"Echo FAIL memo",
	} {
		deal, err := c.CreateDeal(ctx, raw)
		if err != nil {
			t.Fatalf("CreateDeal(%q): %v", raw, err)
		}
		newest = deal
	}

	first, err := c.FetchList(ctx, models.ListParams{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if first.Count != 5 || len(first.Results) != 2 || first.Next == nil || first.Previous != nil {
		t.Fatalf("page 1 = %+v", first)
	}
	if first.Results[0].ID != newest.ID || first.Results[0].RawText != "Echo FAIL memo" {
		t.Errorf("default ordering should be newest first, got %q", first.Results[0].RawText)
	}

	last, err := c.FetchList(ctx, models.ListParams{Page: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Results) != 1 || last.Next != nil || last.Previous == nil {
		t.Errorf("page 3 = %+v", last)
	}

	_, err = c.FetchList(ctx, models.ListParams{Page: 4})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("page 4 err = %v, want 404", err)
	}

	found, err := c.FetchList(ctx, models.ListParams{Search: "robotics", Ordering: "created_at"})
	if err != nil {
		t.Fatal(err)
	}
	if found.Count != 2 || found.Results[0].Company() != "Alpha" || found.Results[1].Company() != "Delta" {
		t.Errorf("search results = %+v", found.Results)
	}
}

func TestIntegration_LegacyUnfilteredList(t *testing.T) {
	c := startAPI(t, config.ServerConfig{LegacyUnfilteredList: true})
	ctx := context.Background()
	for _, raw := range []string{"Alpha memo", "Bravo memo"} {
		if _, err := c.CreateDeal(ctx, raw); err != nil {
			t.Fatal(err)
		}
	}

	all, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("FetchAll returned %d deals", len(all))
	}

	filtered, err := c.FetchList(ctx, models.ListParams{Status: string(models.StatusProcessed), Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Count != 2 {
		t.Errorf("filtered count = %d", filtered.Count)
	}
}
