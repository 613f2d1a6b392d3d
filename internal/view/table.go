// Package view derives display-ready values from deals. Nothing here does I/O, so the
// web and terminal dashboards render exactly the same cells, ranges and sections.
package view

import (
	"strings"
	"time"

	"github.com/hyperjump/dealbrief/internal/models"
)

// Placeholder is shown for every absent or empty value.
const Placeholder = "—"

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 15:04"
)

// BadgeKind selects the style of a status badge.
type BadgeKind string

const (
	BadgeProcessed BadgeKind = "processed"
	BadgeFailed    BadgeKind = "failed"
	BadgePending   BadgeKind = "pending"
)

// Badge is a status label and its style. Unrecognized statuses use the pending style.
type Badge struct {
	Label string
	Kind  BadgeKind
}

// StatusBadge returns the badge for status s.
func StatusBadge(s models.Status) Badge {
	b := Badge{Label: string(s), Kind: BadgePending}
	switch s {
	case models.StatusProcessed:
		b.Kind = BadgeProcessed
	case models.StatusFailed:
		b.Kind = BadgeFailed
	}
	if b.Label == "" {
		b.Label = Placeholder
	}
	return b
}

// Row is one table line.
type Row struct {
	ID       string
	Href     string
	Company  string
	Sector   string
	Category string
	Stage    string
	Status   Badge
	Created  string
}

// Rows derives table rows in the given order.
func Rows(deals []*models.Deal) []Row {
	rows := make([]Row, 0, len(deals))
	for _, d := range deals {
		if d == nil {
			continue
		}
		rows = append(rows, NewRow(d))
	}
	return rows
}

// NewRow derives a single table row. The stage comes from the tags, falling back to
// the extracted entities.
func NewRow(d *models.Deal) Row {
	var ent *models.Entities
	var tags *models.Tags
	if d.ExtractedJSON != nil {
		ent = d.ExtractedJSON.Entities
		tags = d.ExtractedJSON.Tags
	}
	r := Row{
		ID:      d.ID,
		Href:    DetailPath(d.ID),
		Status:  StatusBadge(d.Status),
		Created: FormatDate(d.CreatedAt),
	}
	var stage string
	if ent != nil {
		r.Company = ent.Company
		r.Sector = ent.Sector
		stage = ent.Stage
	}
	if tags != nil {
		r.Category = strings.Join(tags.Category, ", ")
		if tags.Stage != "" {
			stage = tags.Stage
		}
	}
	r.Company = Cell(r.Company)
	r.Sector = Cell(r.Sector)
	r.Category = Cell(r.Category)
	r.Stage = Cell(stage)
	return r
}

// DetailPath is the dashboard location of a deal.
func DetailPath(id string) string {
	return "/deals/" + id
}

// Cell returns s, or the placeholder when s is blank.
func Cell(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// FormatDate renders t as a local calendar date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Local().Format(dateLayout)
}

// FormatDateTime renders t as a local date and time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Local().Format(dateTimeLayout)
}
