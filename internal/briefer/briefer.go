// Package briefer creates deals from submitted text and fills in their
// structured briefs.
package briefer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/dealbrief/internal/metrics"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/search"
	"github.com/hyperjump/dealbrief/internal/storage"
)

// MaxTextLength is the longest accepted raw text, in characters.
const MaxTextLength = 10000

// generateTimeout bounds background generation, which outlives the request.
const generateTimeout = 5 * time.Minute

// ErrDuplicate is returned when the normalized text was already submitted.
var ErrDuplicate = errors.New("Deal with this input hash already exists.")

// InputError rejects a submission before anything is stored.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Message
}

// Options configure a Service.
type Options struct {
	// Async returns deals as pending and generates briefs in the background.
	Async bool
	// Workers bounds concurrent background generations.
	Workers int
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Service stores submitted deals and generates their briefs.
type Service struct {
	store   storage.Storage
	index   search.Index
	gen     Generator
	logger  *zap.Logger
	metrics *metrics.Metrics
	async   bool
	group   errgroup.Group
}

// NewService creates a service. index may be nil.
func NewService(store storage.Storage, index search.Index, gen Generator, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:   store,
		index:   index,
		gen:     gen,
		logger:  logger,
		metrics: opts.Metrics,
		async:   opts.Async,
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	s.group.SetLimit(workers)
	return s
}

// Normalize collapses whitespace and case so trivially different submissions
// share a hash.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// InputHash is the hex SHA-256 of the normalized text.
func InputHash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// ValidateText checks raw text, with surrounding whitespace removed, before a
// deal is created.
func ValidateText(rawText string) error {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return &InputError{Field: "raw_text", Message: "This field may not be blank."}
	}
	if utf8.RuneCountInString(rawText) > MaxTextLength {
		return &InputError{Field: "raw_text", Message: fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTextLength)}
	}
	return nil
}

// Create stores the trimmed rawText as a new deal and generates its brief. In
// async mode the pending deal is returned at once; Create blocks while every
// worker is busy.
func (s *Service) Create(ctx context.Context, rawText string) (*models.Deal, error) {
	if err := ValidateText(rawText); err != nil {
		return nil, err
	}
	rawText = strings.TrimSpace(rawText)
	hash := InputHash(rawText)
	if _, err := s.store.GetDealByInputHash(ctx, hash); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup input hash: %w", err)
	}

	deal := &models.Deal{ID: uuid.NewString(), RawText: rawText, Status: models.StatusPending}
	if err := s.store.CreateDeal(ctx, deal, hash); err != nil {
		if errors.Is(err, storage.ErrDuplicateHash) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create deal: %w", err)
	}
	s.logger.Debug("deal created", zap.String("deal_id", deal.ID), zap.Bool("async", s.async))
	s.indexDeal(ctx, deal)

	if !s.async {
		if err := s.generate(ctx, deal); err != nil {
			return nil, err
		}
		return deal, nil
	}

	background := *deal
	bgCtx := context.WithoutCancel(ctx)
	s.group.Go(func() error {
		ctx, cancel := context.WithTimeout(bgCtx, generateTimeout)
		defer cancel()
		if err := s.generate(ctx, &background); err != nil {
			s.logger.Error("background brief failed", zap.String("deal_id", background.ID), zap.Error(err))
		}
		return nil
	})
	return deal, nil
}

// Wait blocks until background generations finish.
func (s *Service) Wait() error {
	return s.group.Wait()
}

// generate runs the generator on deal and stores the outcome. Generation
// failures are recorded on the deal; only storage failures are returned.
func (s *Service) generate(ctx context.Context, deal *models.Deal) error {
	start := time.Now()
	brief, err := s.gen.Generate(ctx, deal.RawText)
	if err != nil {
		msg := err.Error()
		deal.Status = models.StatusFailed
		deal.ExtractedJSON = nil
		deal.LastError = &msg
		s.logger.Warn("brief generation failed", zap.String("deal_id", deal.ID), zap.Error(err))
	} else {
		deal.Status = models.StatusProcessed
		deal.ExtractedJSON = brief
		deal.LastError = nil
	}
	s.metrics.ObserveBrief(string(deal.Status), time.Since(start))

	if err := s.store.UpdateDeal(ctx, deal); err != nil {
		return fmt.Errorf("save brief: %w", err)
	}
	s.indexDeal(ctx, deal)
	return nil
}

func (s *Service) indexDeal(ctx context.Context, deal *models.Deal) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexDeal(ctx, deal); err != nil {
		s.logger.Warn("failed to index deal", zap.String("deal_id", deal.ID), zap.Error(err))
	}
}
