package e2e

import (
	"testing"

	"github.com/hyperjump/dealbrief/internal/extract"
)

func TestMinimalFile_extractsVerbatim(t *testing.T) {
	text := "Acme & Co <draft>\nSeries A, $5M"
	e := extract.NewExtractor()
	for _, ext := range FixtureExtensions {
		t.Run(ext, func(t *testing.T) {
			content, err := MinimalFile(ext, text)
			if err != nil {
				t.Fatalf("MinimalFile: %v", err)
			}
			got, err := e.ExtractBytes(content, ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != text {
				t.Errorf("extracted %q, want %q", got, text)
			}
		})
	}
}

func TestMinimalFile_unknownExtension(t *testing.T) {
	if _, err := MinimalFile(".pdf", "x"); err == nil {
		t.Error("expected error for .pdf")
	}
}
