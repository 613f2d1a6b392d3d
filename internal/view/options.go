package view

import "github.com/hyperjump/dealbrief/internal/models"

// Option is one choice of an enumerated filter. An empty Value means "any".
type Option struct {
	Value string
	Label string
}

var (
	StatusOptions = []Option{
		{"", "Any status"},
		{string(models.StatusPending), "Pending"},
		{string(models.StatusProcessed), "Processed"},
		{string(models.StatusFailed), "Failed"},
	}
	StageOptions = []Option{
		{"", "Any stage"},
		{models.StageSeed, "Seed"},
		{models.StageSeriesA, "Series A"},
		{models.StageSeriesB, "Series B"},
	}
	CategoryOptions = []Option{
		{"", "Any category"},
		{models.CategoryFintech, "Fintech"},
		{models.CategoryDeepTech, "Deep tech"},
		{models.CategoryClimateTech, "Climate tech"},
	}
	OrderingOptions = []Option{
		{models.OrderNewest, "Newest first"},
		{models.OrderOldest, "Oldest first"},
		{models.OrderRecentlyUpdated, "Recently updated"},
		{models.OrderLeastRecent, "Least recently updated"},
		{models.OrderStatusAscending, "Status A–Z"},
		{models.OrderStatusDescending, "Status Z–A"},
	}
)

// OptionsFor returns the choices of an enumerated field, or nil for free-text fields.
func OptionsFor(f models.Field) []Option {
	switch f {
	case models.FieldStatus:
		return StatusOptions
	case models.FieldStage:
		return StageOptions
	case models.FieldCategory:
		return CategoryOptions
	case models.FieldOrdering:
		return OrderingOptions
	}
	return nil
}

// Label returns the label of value among opts, or value itself when unknown.
func Label(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// Cycle returns the value following current in opts, wrapping around.
// Unknown values restart at the first option.
func Cycle(opts []Option, current string, step int) string {
	if len(opts) == 0 {
		return current
	}
	idx := -1
	for i, o := range opts {
		if o.Value == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return opts[0].Value
	}
	n := len(opts)
	return opts[((idx+step)%n+n)%n].Value
}
