package briefer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/dealbrief/internal/models"
)

// ErrNotConfigured is returned by UnavailableGenerator.
var ErrNotConfigured = errors.New("brief generator is not configured: set briefer.project_id or GOOGLE_CLOUD_PROJECT")

// Generator turns deal text into a structured brief.
type Generator interface {
	Generate(ctx context.Context, rawText string) (*models.Brief, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, rawText string) (*models.Brief, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, rawText string) (*models.Brief, error) {
	return f(ctx, rawText)
}

// UnavailableGenerator fails every request. Deals submitted without a configured
// model are stored as failed with ErrNotConfigured as their last error.
type UnavailableGenerator struct{}

// Generate returns ErrNotConfigured.
func (UnavailableGenerator) Generate(context.Context, string) (*models.Brief, error) {
	return nil, ErrNotConfigured
}

// OutputError reports model output that is not a valid brief.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string {
	return "invalid model output: " + e.Err.Error()
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// ParseBrief decodes and validates model output. Markdown code fences around
// the JSON are tolerated.
func ParseBrief(text string) (*models.Brief, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &OutputError{Err: errors.New("empty response")}
	}

	var brief models.Brief
	if err := json.Unmarshal([]byte(text), &brief); err != nil {
		return nil, &OutputError{Err: fmt.Errorf("decode json: %w", err)}
	}
	if err := brief.Validate(); err != nil {
		return nil, &OutputError{Err: err}
	}
	normalize(&brief)
	return &brief, nil
}

// normalize replaces absent lists with empty ones so stored briefs always
// carry every array.
func normalize(b *models.Brief) {
	if b.Entities.Founders == nil {
		b.Entities.Founders = []string{}
	}
	if b.Entities.NotableMetrics == nil {
		b.Entities.NotableMetrics = []string{}
	}
	if b.Tags.Category == nil {
		b.Tags.Category = []string{}
	}
}
