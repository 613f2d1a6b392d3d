package view

import (
	"testing"
	"time"

	"github.com/hyperjump/dealbrief/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestNewRow_Placeholders(t *testing.T) {
	r := NewRow(&models.Deal{ID: "d1", Status: "pending"})
	for name, got := range map[string]string{
		"company": r.Company, "sector": r.Sector, "category": r.Category,
		"stage": r.Stage, "created": r.Created,
	} {
		if got != Placeholder {
			t.Errorf("%s = %q, want placeholder", name, got)
		}
	}
	if r.Href != "/deals/d1" {
		t.Errorf("Href = %q", r.Href)
	}
}

func TestNewRow_Fields(t *testing.T) {
	created := time.Date(2025, 3, 4, 12, 0, 0, 0, time.Local)
	d := &models.Deal{
		ID:     "d2",
		Status: models.StatusProcessed,
		ExtractedJSON: &models.Brief{
			Entities: &models.Entities{Company: "Acme", Sector: "Robotics", Stage: "Unknown"},
			Tags:     &models.Tags{Category: []string{"deep tech", "climate tech"}, Stage: "Seed"},
		},
		CreatedAt: created,
	}
	r := NewRow(d)
	if r.Company != "Acme" || r.Sector != "Robotics" {
		t.Errorf("row = %+v", r)
	}
	if r.Category != "deep tech, climate tech" {
		t.Errorf("Category = %q", r.Category)
	}
	if r.Stage != "Seed" {
		t.Errorf("Stage = %q, want tag stage", r.Stage)
	}
	if r.Created != "Mar 4, 2025" {
		t.Errorf("Created = %q", r.Created)
	}
	if r.Status.Kind != BadgeProcessed {
		t.Errorf("badge = %+v", r.Status)
	}
}

func TestNewRow_StageFallsBackToEntities(t *testing.T) {
	d := &models.Deal{ExtractedJSON: &models.Brief{
		Entities: &models.Entities{Stage: "Series A"},
		Tags:     &models.Tags{Category: []string{}},
	}}
	r := NewRow(d)
	if r.Stage != "Series A" {
		t.Errorf("Stage = %q", r.Stage)
	}
	if r.Category != Placeholder {
		t.Errorf("Category = %q", r.Category)
	}
}

func TestRows_SkipsNil(t *testing.T) {
	rows := Rows([]*models.Deal{{ID: "a"}, nil, {ID: "b"}})
	if len(rows) != 2 || rows[0].ID != "a" || rows[1].ID != "b" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status models.Status
		want   BadgeKind
	}{
		{models.StatusProcessed, BadgeProcessed},
		{models.StatusFailed, BadgeFailed},
		{models.StatusPending, BadgePending},
		{"queued", BadgePending},
	}
	for _, tt := range tests {
		b := StatusBadge(tt.status)
		if b.Kind != tt.want || b.Label != string(tt.status) {
			t.Errorf("StatusBadge(%q) = %+v", tt.status, b)
		}
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name              string
		page, count, size int
		total, start, end int
		hasPrev, hasNext  bool
		summary           string
	}{
		{"empty", 1, 0, 20, 1, 0, 0, false, false, "No deals"},
		{"single partial page", 1, 5, 20, 1, 1, 5, false, false, "Showing 1–5 of 5"},
		{"exact page", 1, 20, 20, 1, 1, 20, false, false, "Showing 1–20 of 20"},
		{"first of three", 1, 45, 20, 3, 1, 20, false, true, "Showing 1–20 of 45"},
		{"middle", 2, 45, 20, 3, 21, 40, true, true, "Showing 21–40 of 45"},
		{"last partial", 3, 45, 20, 3, 41, 45, true, false, "Showing 41–45 of 45"},
		{"default size", 2, 21, 0, 2, 21, 21, true, false, "Showing 21–21 of 21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.count, tt.size)
			if p.TotalPages != tt.total || p.Start != tt.start || p.End != tt.end {
				t.Errorf("got total=%d start=%d end=%d", p.TotalPages, p.Start, p.End)
			}
			if p.HasPrev != tt.hasPrev || p.HasNext != tt.hasNext {
				t.Errorf("got prev=%v next=%v", p.HasPrev, p.HasNext)
			}
			if p.Summary() != tt.summary {
				t.Errorf("Summary = %q, want %q", p.Summary(), tt.summary)
			}
		})
	}
}

func TestPagination_Labels(t *testing.T) {
	p := NewPagination(2, 45, 20)
	if p.PageLabel() != "Page 2 of 3" {
		t.Errorf("PageLabel = %q", p.PageLabel())
	}
	if p.PrevPage() != 1 || p.NextPage() != 3 {
		t.Errorf("prev=%d next=%d", p.PrevPage(), p.NextPage())
	}
}

func TestNewDetail_WithoutExtraction(t *testing.T) {
	d := NewDetail(&models.Deal{ID: "x", RawText: "Acme is raising", Status: models.StatusPending})
	if d.Entities != nil || d.Tags != nil || d.Brief != nil {
		t.Errorf("optional sections should be omitted: %+v", d)
	}
	if d.Title != Placeholder {
		t.Errorf("Title = %q", d.Title)
	}
	if d.RawText != "Acme is raising" {
		t.Errorf("RawText = %q", d.RawText)
	}
	if d.LastError != "" {
		t.Errorf("LastError = %q", d.LastError)
	}
}

func TestNewDetail_Full(t *testing.T) {
	d := NewDetail(&models.Deal{
		ID:        "y",
		Status:    models.StatusFailed,
		LastError: ptr("model timeout"),
		ExtractedJSON: &models.Brief{
			InvestmentBrief: []string{"one", "two"},
			Entities: &models.Entities{
				Company:      "Acme",
				Founders:     []string{"Ada", "Grace"},
				RoundSizeUSD: ptr(2500000.0),
			},
			Tags: &models.Tags{Stage: "Seed"},
		},
	})
	if d.Title != "Acme" || d.Status.Kind != BadgeFailed {
		t.Errorf("header = %q %+v", d.Title, d.Status)
	}
	if d.Entities == nil {
		t.Fatal("entities section missing")
	}
	if d.Entities.RoundSize != "2,500,000" {
		t.Errorf("RoundSize = %q", d.Entities.RoundSize)
	}
	if d.Entities.Founders != "Ada, Grace" || d.Entities.Metrics != "" {
		t.Errorf("lists = %q / %q", d.Entities.Founders, d.Entities.Metrics)
	}
	if d.Entities.Sector != Placeholder || d.Entities.Geography != Placeholder {
		t.Errorf("entities = %+v", d.Entities)
	}
	if d.Tags == nil || d.Tags.Stage != "Seed" {
		t.Errorf("tags = %+v", d.Tags)
	}
	if len(d.Brief) != 2 {
		t.Errorf("brief = %v", d.Brief)
	}
	if d.RawText != Placeholder {
		t.Errorf("RawText = %q", d.RawText)
	}
	if d.LastError != "model timeout" {
		t.Errorf("LastError = %q", d.LastError)
	}
}

func TestNewDetail_EmptyTagsOmitted(t *testing.T) {
	d := NewDetail(&models.Deal{ExtractedJSON: &models.Brief{Tags: &models.Tags{}, InvestmentBrief: []string{}}})
	if d.Tags != nil || d.Brief != nil {
		t.Errorf("tags=%+v brief=%v", d.Tags, d.Brief)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(nil); got != Placeholder {
		t.Errorf("FormatAmount(nil) = %q", got)
	}
	if got := FormatAmount(ptr(1000.0)); got != "1,000" {
		t.Errorf("FormatAmount(1000) = %q", got)
	}
}
