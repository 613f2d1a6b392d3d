// Package models defines the deal records exchanged with the Deals API and the
// filter/sort/page state that selects which deals are displayed.
package models

import (
	"fmt"
	"time"
)

// Status is the processing state of a deal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Statuses lists the recognized status values in display order.
var Statuses = []Status{StatusPending, StatusProcessed, StatusFailed}

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Recognized funding stages and categories.
const (
	StageSeed    = "Seed"
	StageSeriesA = "Series A"
	StageSeriesB = "Series B"
	// StageUnknown is only accepted at the entity level.
	StageUnknown = "Unknown"

	CategoryFintech     = "fintech"
	CategoryDeepTech    = "deep tech"
	CategoryClimateTech = "climate tech"
)

var (
	Stages     = []string{StageSeed, StageSeriesA, StageSeriesB}
	Categories = []string{CategoryFintech, CategoryDeepTech, CategoryClimateTech}
)

// BriefLength is the number of bullets a generated investment brief must have.
const BriefLength = 10

// Deal is one submitted raw text and its (possibly pending) structured extraction.
type Deal struct {
	ID            string    `json:"id"`
	RawText       string    `json:"raw_text"`
	ExtractedJSON *Brief    `json:"extracted_json"`
	Status        Status    `json:"status"`
	LastError     *string   `json:"last_error"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Brief is the structured extraction result. Every level is optional when rendering.
type Brief struct {
	InvestmentBrief []string  `json:"investment_brief"`
	Entities        *Entities `json:"entities"`
	Tags            *Tags     `json:"tags"`
}

// Entities are the facts extracted about the company and the round.
type Entities struct {
	Company        string   `json:"company"`
	Founders       []string `json:"founders"`
	Sector         string   `json:"sector"`
	Geography      string   `json:"geography"`
	Stage          string   `json:"stage"`
	RoundSizeUSD   *float64 `json:"round_size_usd"`
	NotableMetrics []string `json:"notable_metrics"`
}

// Tags classify a deal for filtering.
type Tags struct {
	Category []string `json:"category"`
	Stage    string   `json:"stage"`
}

// Validate checks a generated brief against the extraction schema.
func (b *Brief) Validate() error {
	if b == nil {
		return fmt.Errorf("brief is empty")
	}
	if len(b.InvestmentBrief) != BriefLength {
		return fmt.Errorf("investment_brief: expected %d items, got %d", BriefLength, len(b.InvestmentBrief))
	}
	if b.Entities == nil {
		return fmt.Errorf("entities: field required")
	}
	if b.Tags == nil {
		return fmt.Errorf("tags: field required")
	}
	if b.Entities.Stage != StageUnknown && !contains(Stages, b.Entities.Stage) {
		return fmt.Errorf("entities.stage: unexpected value %q", b.Entities.Stage)
	}
	if !contains(Stages, b.Tags.Stage) {
		return fmt.Errorf("tags.stage: unexpected value %q", b.Tags.Stage)
	}
	for _, c := range b.Tags.Category {
		if !contains(Categories, c) {
			return fmt.Errorf("tags.category: unexpected value %q", c)
		}
	}
	return nil
}

// Company returns the extracted company name, or "" when absent.
func (d *Deal) Company() string {
	if d.ExtractedJSON == nil || d.ExtractedJSON.Entities == nil {
		return ""
	}
	return d.ExtractedJSON.Entities.Company
}

// DealPage is one page of a filtered deal listing.
type DealPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []*Deal `json:"results"`
}

// DealInput is the body of a deal creation request.
type DealInput struct {
	RawText string `json:"raw_text"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
