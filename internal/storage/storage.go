// Package storage defines the persistence interface for deals.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/dealbrief/internal/models"
)

var (
	// ErrNotFound is returned when no deal matches the lookup.
	ErrNotFound = errors.New("deal not found")
	// ErrDuplicateHash is returned when a deal with the same input hash exists.
	ErrDuplicateHash = errors.New("duplicate input hash")
)

// Filter selects deals for a listing. Empty fields are ignored.
type Filter struct {
	Status   models.Status
	Sector   string
	Company  string
	Stage    string
	Category string
	Ordering string
	// IDs restricts the listing to the given deals when non-nil. An empty
	// non-nil slice matches nothing.
	IDs []string
}

// Storage defines deal persistence operations.
type Storage interface {
	CreateDeal(ctx context.Context, deal *models.Deal, inputHash string) error
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	GetDealByInputHash(ctx context.Context, hash string) (*models.Deal, error)
	UpdateDeal(ctx context.Context, deal *models.Deal) error
	// ListDeals returns one window of the filtered listing and the total match count.
	ListDeals(ctx context.Context, f Filter, offset, limit int) ([]*models.Deal, int, error)

	// Stats
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)

	Close() error
}
