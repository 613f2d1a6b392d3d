package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperjump/dealbrief/internal/models"
)

func newStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "deals.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func brief(company, sector, stage string, categories ...string) *models.Brief {
	return &models.Brief{
		Entities: &models.Entities{Company: company, Sector: sector, Stage: stage},
		Tags:     &models.Tags{Category: categories, Stage: stage},
	}
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	deal := &models.Deal{ID: "deal1", RawText: "Acme raises a seed round"}
	if err := store.CreateDeal(ctx, deal, "hash1"); err != nil {
		t.Fatal(err)
	}
	if deal.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if deal.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", deal.Status)
	}

	got, err := store.GetDeal(ctx, "deal1")
	if err != nil {
		t.Fatal(err)
	}
	if got.RawText != deal.RawText || got.ExtractedJSON != nil || got.LastError != nil {
		t.Errorf("got %+v", got)
	}

	deal.Status = models.StatusProcessed
	deal.ExtractedJSON = brief("Acme", "Robotics", models.StageSeed, models.CategoryDeepTech)
	if err := store.UpdateDeal(ctx, deal); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetDealByInputHash(ctx, "hash1")
	if got == nil || got.Status != models.StatusProcessed || got.Company() != "Acme" {
		t.Errorf("after update got %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	msg := "model timeout"
	deal.Status = models.StatusFailed
	deal.LastError = &msg
	if err := store.UpdateDeal(ctx, deal); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetDeal(ctx, "deal1")
	if got.LastError == nil || *got.LastError != msg {
		t.Errorf("last_error = %v", got.LastError)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.GetDeal(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDeal err = %v", err)
	}
	if _, err := store.GetDealByInputHash(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDealByInputHash err = %v", err)
	}
	if err := store.UpdateDeal(ctx, &models.Deal{ID: "missing", Status: models.StatusFailed}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDeal err = %v", err)
	}
}

func TestSQLiteStorage_DuplicateHash(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.CreateDeal(ctx, &models.Deal{ID: "a", RawText: "x"}, "same"); err != nil {
		t.Fatal(err)
	}
	err := store.CreateDeal(ctx, &models.Deal{ID: "b", RawText: "X"}, "same")
	if !errors.Is(err, ErrDuplicateHash) {
		t.Errorf("err = %v, want ErrDuplicateHash", err)
	}
}

func seed(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()
	deals := []*models.Deal{
		{ID: "1", RawText: "one", Status: models.StatusProcessed,
			ExtractedJSON: brief("Acme Robotics", "Robotics", models.StageSeed, models.CategoryDeepTech)},
		{ID: "2", RawText: "two", Status: models.StatusProcessed,
			ExtractedJSON: brief("Ledger_Pay", "Financial services", models.StageSeriesA, models.CategoryFintech)},
		{ID: "3", RawText: "three", Status: models.StatusFailed},
		{ID: "4", RawText: "four", Status: models.StatusProcessed,
			ExtractedJSON: brief("SunGrid", "Energy", models.StageSeriesB, models.CategoryClimateTech, models.CategoryDeepTech)},
		{ID: "5", RawText: "five", Status: models.StatusPending},
	}
	for i, d := range deals {
		if err := store.CreateDeal(ctx, d, fmt.Sprintf("h%d", i)); err != nil {
			t.Fatal(err)
		}
	}
}

func ids(deals []*models.Deal) []string {
	out := make([]string, len(deals))
	for i, d := range deals {
		out[i] = d.ID
	}
	return out
}

func TestSQLiteStorage_ListDealsFilters(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"5", "4", "3", "2", "1"}},
		{"oldest first", Filter{Ordering: models.OrderOldest}, []string{"1", "2", "3", "4", "5"}},
		{"unknown ordering uses default", Filter{Ordering: "raw_text"}, []string{"5", "4", "3", "2", "1"}},
		{"status", Filter{Status: models.StatusFailed}, []string{"3"}},
		{"sector contains case-insensitive", Filter{Sector: "ROBOT"}, []string{"1"}},
		{"company contains", Filter{Company: "grid"}, []string{"4"}},
		{"company underscore is literal", Filter{Company: "r_p"}, []string{"2"}},
		{"company wildcard is literal", Filter{Company: "%"}, nil},
		{"stage exact case-insensitive", Filter{Stage: "series a"}, []string{"2"}},
		{"stage is not a substring match", Filter{Stage: "Series"}, nil},
		{"category membership", Filter{Category: models.CategoryDeepTech}, []string{"4", "1"}},
		{"combined", Filter{Status: models.StatusProcessed, Category: models.CategoryDeepTech, Stage: "Seed"}, []string{"1"}},
		{"id set", Filter{IDs: []string{"2", "5"}}, []string{"5", "2"}},
		{"empty id set", Filter{IDs: []string{}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals, total, err := store.ListDeals(ctx, tt.filter, 0, 20)
			if err != nil {
				t.Fatal(err)
			}
			got := ids(deals)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
			if total != len(tt.want) {
				t.Errorf("total = %d, want %d", total, len(tt.want))
			}
		})
	}
}

func TestSQLiteStorage_ListDealsWindow(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	deals, total, err := store.ListDeals(context.Background(), Filter{Ordering: models.OrderOldest}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if got := ids(deals); fmt.Sprint(got) != "[3 4]" {
		t.Errorf("window = %v", got)
	}
}

func TestSQLiteStorage_CountByStatus(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	counts, err := store.CountByStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := map[models.Status]int64{models.StatusProcessed: 3, models.StatusFailed: 1, models.StatusPending: 1}
	for st, n := range want {
		if counts[st] != n {
			t.Errorf("%s = %d, want %d", st, counts[st], n)
		}
	}
}
