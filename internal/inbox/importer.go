// Package inbox turns documents dropped into watched directories into deals.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/extract"
	"github.com/hyperjump/dealbrief/internal/models"
)

// MaxTextLength mirrors the API's raw_text limit, in characters.
const MaxTextLength = 10000

// Submitter creates deals. *client.Client implements it.
type Submitter interface {
	CreateDeal(ctx context.Context, rawText string) (*models.Deal, error)
}

// Outcome describes what happened to one inbox file.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeRejected    Outcome = "rejected"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeEmpty       Outcome = "empty"
	OutcomeTooLong     Outcome = "too_long"
)

// Importer extracts text from inbox files and submits it as new deals.
type Importer struct {
	submitter Submitter
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewImporter returns an Importer submitting through s.
func NewImporter(s Submitter, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{submitter: s, extractor: extract.NewExtractor(), logger: logger}
}

// Import extracts path and submits its text. Files the API rejects (for
// example duplicates) are reported as OutcomeRejected with a nil error.
func (im *Importer) Import(ctx context.Context, path string) (Outcome, error) {
	text, err := im.extractor.Extract(path)
	if errors.Is(err, extract.ErrUnsupported) {
		return OutcomeUnsupported, nil
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	if text == "" {
		return OutcomeEmpty, nil
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		im.logger.Warn("inbox file too long", zap.String("path", path), zap.Int("chars", n), zap.Int("max", MaxTextLength))
		return OutcomeTooLong, nil
	}

	deal, err := im.submitter.CreateDeal(ctx, text)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		im.logger.Info("inbox file rejected", zap.String("path", path), zap.String("reason", apiErr.Message))
		return OutcomeRejected, nil
	}
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", filepath.Base(path), err)
	}
	im.logger.Info("deal created from inbox",
		zap.String("path", path), zap.String("id", deal.ID), zap.String("status", string(deal.Status)))
	return OutcomeCreated, nil
}

// Run watches the configured directories until ctx is cancelled.
func (im *Importer) Run(ctx context.Context, cfg config.InboxConfig) error {
	if len(cfg.Directories) == 0 {
		return errors.New("inbox: no directories configured")
	}
	handle := func(path string) {
		outcome, err := im.Import(ctx, path)
		if err != nil {
			im.logger.Error("inbox import failed", zap.String("path", path), zap.Error(err))
			return
		}
		im.logger.Debug("inbox file handled", zap.String("path", path), zap.String("outcome", string(outcome)))
	}

	w := NewWatcher(cfg.Directories, cfg.Extensions, cfg.RecursiveOrDefault(), handle, WithLogger(im.logger))
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start inbox watcher: %w", err)
	}
	defer w.Stop()
	im.logger.Info("inbox watching", zap.Strings("directories", cfg.Directories), zap.Bool("sync_existing", cfg.SyncExisting))

	if cfg.SyncExisting {
		w.SyncExisting()
	}
	<-ctx.Done()
	return nil
}
