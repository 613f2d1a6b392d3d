// Package cli formats deals for the one-shot dealbrief commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/view"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is the API's JSON, for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rawPreviewLen = 200

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

// WriteDealPage writes one page of deals. pageSize is used for the range line.
func WriteDealPage(w io.Writer, page *models.DealPage, p models.ListParams, pageSize int, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, page)
	}
	pg := view.NewPagination(p.Page, page.Count, pageSize)
	fmt.Fprintf(w, "%s (%s)\n\n", pg.Summary(), pg.PageLabel())
	for _, r := range view.Rows(page.Results) {
		fmt.Fprintf(w, "%s  %-9s  %s\n", r.ID, r.Status.Label, r.Company)
		fmt.Fprintf(w, "    %s | %s | %s | %s\n", r.Sector, r.Stage, r.Category, r.Created)
	}
	if pg.HasNext {
		fmt.Fprintf(w, "\nMore: --page %d\n", pg.NextPage())
	}
	return nil
}

// WriteDeal writes the full detail of one deal.
func WriteDeal(w io.Writer, deal *models.Deal, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, deal)
	}
	d := view.NewDetail(deal)
	fmt.Fprintf(w, "%s [%s]\n", d.Title, d.Status.Label)
	fmt.Fprintf(w, "ID: %s\nCreated: %s\nUpdated: %s\n", d.ID, d.Created, d.Updated)
	if d.LastError != "" {
		fmt.Fprintf(w, "Error: %s\n", d.LastError)
	}
	if e := d.Entities; e != nil {
		fmt.Fprintln(w, "\nEntities")
		fmt.Fprintf(w, "  Sector:     %s\n", e.Sector)
		fmt.Fprintf(w, "  Geography:  %s\n", e.Geography)
		fmt.Fprintf(w, "  Stage:      %s\n", e.Stage)
		fmt.Fprintf(w, "  Round size: %s\n", e.RoundSize)
		if e.Founders != "" {
			fmt.Fprintf(w, "  Founders:   %s\n", e.Founders)
		}
		if e.Metrics != "" {
			fmt.Fprintf(w, "  Metrics:    %s\n", e.Metrics)
		}
	}
	if t := d.Tags; t != nil {
		fmt.Fprintln(w, "\nTags")
		if len(t.Categories) > 0 {
			fmt.Fprintf(w, "  Categories: %s\n", strings.Join(t.Categories, ", "))
		}
		if t.Stage != "" {
			fmt.Fprintf(w, "  Stage:      %s\n", t.Stage)
		}
	}
	if len(d.Brief) > 0 {
		fmt.Fprintln(w, "\nInvestment brief")
		for i, item := range d.Brief {
			fmt.Fprintf(w, "  %d. %s\n", i+1, item)
		}
	}
	fmt.Fprintf(w, "\nRaw text\n%s\n", d.RawText)
	return nil
}

// WriteCreated writes the result of a create command.
func WriteCreated(w io.Writer, deal *models.Deal, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, deal)
	}
	fmt.Fprintf(w, "Created deal %s [%s]\n", deal.ID, deal.Status)
	fmt.Fprintf(w, "%s\n", Truncate(deal.RawText, rawPreviewLen))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate truncates s to maxLen characters and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
