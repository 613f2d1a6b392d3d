// Package e2e runs the whole pipeline: inbox documents are extracted and submitted
// through the API client to the reference API, then browsed through the client
// and the web dashboard.
package e2e

import (
	"fmt"

	"github.com/hyperjump/dealbrief/internal/models"
)

// DealMemo is one inbox document and the brief the fake model extracts from it.
type DealMemo struct {
	File  string
	Text  string
	Brief *models.Brief
}

// FilterCase is a listing request and the companies it must return, in order.
type FilterCase struct {
	Description string
	Params      models.ListParams
	Companies   []string
}

// Corpus holds the memos and the listing expectations over them.
type Corpus struct {
	Memos []DealMemo
	Cases []FilterCase
}

func newBrief(company, sector, geography, stage string, round float64, categories ...string) *models.Brief {
	points := make([]string, models.BriefLength)
	for i := range points {
		points[i] = fmt.Sprintf("%s point %d", company, i+1)
	}
	return &models.Brief{
		InvestmentBrief: points,
		Entities: &models.Entities{
			Company:        company,
			Founders:       []string{},
			Sector:         sector,
			Geography:      geography,
			Stage:          stage,
			RoundSizeUSD:   &round,
			NotableMetrics: []string{},
		},
		Tags: &models.Tags{Category: categories, Stage: stage},
	}
}

// BuildCorpus returns the memos in submission order. Texts are single lines so
// every document format extracts them verbatim.
func BuildCorpus() *Corpus {
	memos := []DealMemo{
		{
			File:  "ledgerly.txt",
			Text:  "Ledgerly is raising a $2M seed round for reconciliation software used by finance teams in Lagos.",
			Brief: newBrief("Ledgerly", "Fintech", "Nigeria", models.StageSeed, 2000000, models.CategoryFintech),
		},
		{
			File:  "gridwise.md",
			Text:  "Gridwise deploys solar microgrids for rural clinics in Kenya and is raising a $12M Series A.",
			Brief: newBrief("Gridwise", "Energy", "Kenya", models.StageSeriesA, 12000000, models.CategoryClimateTech),
		},
		{
			File:  "acme-robotics.docx",
			Text:  "Acme Robotics builds warehouse picking robots and is raising a $30M Series B led by existing investors.",
			Brief: newBrief("Acme Robotics", "Robotics", "United States", models.StageSeriesB, 30000000, models.CategoryDeepTech),
		},
		{
			File:  "payrail.xlsx",
			Text:  "Payrail offers payment rails for cross-border merchants and is raising a $8M Series A.",
			Brief: newBrief("Payrail", "Fintech Infrastructure", "Ghana", models.StageSeriesA, 8000000, models.CategoryFintech),
		},
		{
			File:  "carbonloop.txt",
			Text:  "CarbonLoop uses robotics to sort recyclables and reduce landfill emissions; raising a $3M seed round.",
			Brief: newBrief("CarbonLoop", "Recycling", "Germany", models.StageSeed, 3000000, models.CategoryClimateTech, models.CategoryDeepTech),
		},
	}

	cases := []FilterCase{
		{"default newest first", models.ListParams{}, []string{"CarbonLoop", "Payrail", "Acme Robotics", "Gridwise", "Ledgerly"}},
		{"oldest first", models.ListParams{Ordering: models.OrderOldest}, []string{"Ledgerly", "Gridwise", "Acme Robotics", "Payrail", "CarbonLoop"}},
		{"category membership", models.ListParams{Category: models.CategoryDeepTech, Ordering: models.OrderOldest}, []string{"Acme Robotics", "CarbonLoop"}},
		{"stage is case-insensitive", models.ListParams{Stage: "series a", Ordering: models.OrderOldest}, []string{"Gridwise", "Payrail"}},
		{"sector contains", models.ListParams{Sector: "fintech", Ordering: models.OrderOldest}, []string{"Ledgerly", "Payrail"}},
		{"company contains", models.ListParams{Company: "ROBO"}, []string{"Acme Robotics"}},
		{"full-text search", models.ListParams{Search: "robotics", Ordering: models.OrderOldest}, []string{"Acme Robotics", "CarbonLoop"}},
		{"search plus filter", models.ListParams{Search: "raising", Category: models.CategoryFintech}, []string{"Payrail", "Ledgerly"}},
		{"no match", models.ListParams{Search: "biotech"}, nil},
	}
	return &Corpus{Memos: memos, Cases: cases}
}

// BriefFor returns the brief of the memo whose text is raw.
func (c *Corpus) BriefFor(raw string) (*models.Brief, bool) {
	for _, m := range c.Memos {
		if m.Text == raw {
			return m.Brief, true
		}
	}
	return nil, false
}
