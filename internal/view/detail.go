package view

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/hyperjump/dealbrief/internal/models"
)

var printer = message.NewPrinter(language.English)

// Detail is the full view of one deal. Optional sections are nil when the deal has
// nothing to show for them; RawText and the header are always present.
type Detail struct {
	ID        string
	Title     string
	Status    Badge
	Created   string
	Updated   string
	Entities  *EntitiesSection
	Tags      *TagsSection
	Brief     []string
	RawText   string
	LastError string
}

// EntitiesSection holds the extracted facts. Founders and Metrics are empty when absent.
type EntitiesSection struct {
	Sector    string
	Geography string
	Stage     string
	RoundSize string
	Founders  string
	Metrics   string
}

// TagsSection lists the categories and stage tag.
type TagsSection struct {
	Categories []string
	Stage      string
}

// NewDetail derives the detail view of d.
func NewDetail(d *models.Deal) Detail {
	v := Detail{
		ID:      d.ID,
		Title:   Cell(d.Company()),
		Status:  StatusBadge(d.Status),
		Created: FormatDateTime(d.CreatedAt),
		Updated: FormatDateTime(d.UpdatedAt),
		RawText: Cell(d.RawText),
	}
	if d.LastError != nil {
		v.LastError = strings.TrimSpace(*d.LastError)
	}
	if d.ExtractedJSON == nil {
		return v
	}
	if e := d.ExtractedJSON.Entities; e != nil {
		v.Entities = &EntitiesSection{
			Sector:    Cell(e.Sector),
			Geography: Cell(e.Geography),
			Stage:     Cell(e.Stage),
			RoundSize: FormatAmount(e.RoundSizeUSD),
			Founders:  strings.Join(e.Founders, ", "),
			Metrics:   strings.Join(e.NotableMetrics, ", "),
		}
	}
	if t := d.ExtractedJSON.Tags; t != nil && (len(t.Category) > 0 || t.Stage != "") {
		v.Tags = &TagsSection{Categories: t.Category, Stage: t.Stage}
	}
	if len(d.ExtractedJSON.InvestmentBrief) > 0 {
		v.Brief = d.ExtractedJSON.InvestmentBrief
	}
	return v
}

// FormatAmount groups the digits of a USD amount ("2,500,000"), keeping at most
// three fraction digits.
func FormatAmount(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return printer.Sprint(number.Decimal(*v, number.MaxFractionDigits(3)))
}
