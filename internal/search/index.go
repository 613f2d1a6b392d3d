// Package search provides full-text search over deal text using Bleve.
package search

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/dealbrief/internal/models"
)

// DefaultLimit caps the number of matches returned when no limit is given.
const DefaultLimit = 10000

// Index finds deals whose text matches a search string.
type Index interface {
	IndexDeal(ctx context.Context, deal *models.Deal) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

type dealDoc struct {
	RawText string `json:"raw_text"`
	Company string `json:"company"`
	Sector  string `json:"sector"`
}

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path keeps the
// index in memory.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so prefixes of
	// company names match while the user is still typing.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("raw_text", textFieldMapping)
	docMapping.AddFieldMappingsAt("company", textFieldMapping)
	docMapping.AddFieldMappingsAt("sector", textFieldMapping)
	im.AddDocumentMapping("deal", docMapping)
	im.DefaultType = "deal"
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexDeal indexes the raw text and extracted names of deal.
func (b *BleveIndex) IndexDeal(ctx context.Context, deal *models.Deal) error {
	doc := dealDoc{RawText: deal.RawText, Company: deal.Company()}
	if deal.ExtractedJSON != nil && deal.ExtractedJSON.Entities != nil {
		doc.Sector = deal.ExtractedJSON.Entities.Sector
	}
	return b.index.Index(deal.ID, doc)
}

// Search returns the IDs of deals matching query, best match first. Every term
// must match a word or word prefix in one of the indexed fields.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	conjuncts := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		conjuncts = append(conjuncts, termQuery(term))
	}
	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(conjuncts...))
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]string, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = hit.ID
	}
	return out, nil
}

// termQuery matches term as a whole word or a word prefix in any field.
// Whole-word matches score higher.
func termQuery(term string) blevequery.Query {
	var queries []blevequery.Query
	for _, field := range []string{"raw_text", "company", "sector"} {
		mq := bleve.NewMatchQuery(term)
		mq.SetField(field)
		mq.SetBoost(2)
		pq := bleve.NewPrefixQuery(term)
		pq.SetField(field)
		queries = append(queries, mq, pq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a deal from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the total number of deals in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
