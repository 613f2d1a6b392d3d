// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/dealbrief/internal/models"
)

// orderClauses maps ordering tokens to SQL. rowid breaks ties in insertion order.
var orderClauses = map[string]string{
	models.OrderNewest:           "created_at DESC, rowid DESC",
	models.OrderOldest:           "created_at ASC, rowid ASC",
	models.OrderRecentlyUpdated:  "updated_at DESC, rowid DESC",
	models.OrderLeastRecent:      "updated_at ASC, rowid ASC",
	models.OrderStatusAscending:  "status ASC, created_at DESC",
	models.OrderStatusDescending: "status DESC, created_at DESC",
}

const dealColumns = `id, raw_text, extracted_json, status, last_error, created_at, updated_at`

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		input_hash TEXT NOT NULL UNIQUE,
		raw_text TEXT NOT NULL,
		extracted_json TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		last_error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at);
	CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDeal inserts a deal. A deal without a status is stored as pending.
func (s *SQLiteStorage) CreateDeal(ctx context.Context, deal *models.Deal, inputHash string) error {
	extracted, err := marshalBrief(deal.ExtractedJSON)
	if err != nil {
		return err
	}
	if deal.Status == "" {
		deal.Status = models.StatusPending
	}

	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (id, input_hash, raw_text, extracted_json, status, last_error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		deal.ID, inputHash, deal.RawText, extracted, string(deal.Status), nullString(deal.LastError),
		deal.CreatedAt, deal.UpdatedAt,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicateHash
	}
	return err
}

// GetDeal returns a deal by ID.
func (s *SQLiteStorage) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)
	deal, err := scanDeal(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return deal, err
}

// GetDealByInputHash returns the deal created from text with the given hash.
func (s *SQLiteStorage) GetDealByInputHash(ctx context.Context, hash string) (*models.Deal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE input_hash = ?`, hash)
	deal, err := scanDeal(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: hash %s", ErrNotFound, hash)
	}
	return deal, err
}

// UpdateDeal stores the extraction outcome of an existing deal.
func (s *SQLiteStorage) UpdateDeal(ctx context.Context, deal *models.Deal) error {
	extracted, err := marshalBrief(deal.ExtractedJSON)
	if err != nil {
		return err
	}

	deal.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE deals SET extracted_json = ?, status = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		extracted, string(deal.Status), nullString(deal.LastError), deal.UpdatedAt, deal.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, deal.ID)
	}
	return nil
}

// ListDeals returns the deals matching f in the requested order, with offset and limit,
// plus the number of deals matching f.
func (s *SQLiteStorage) ListDeals(ctx context.Context, f Filter, offset, limit int) ([]*models.Deal, int, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return nil, 0, nil
	}
	where, args := filterClause(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := orderClauses[f.Ordering]
	if !ok {
		order = orderClauses[models.DefaultOrdering]
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dealColumns+` FROM deals`+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, 0, err
		}
		deals = append(deals, deal)
	}
	return deals, total, rows.Err()
}

// CountByStatus returns the number of deals in each status.
func (s *SQLiteStorage) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM deals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Status]int64, len(models.Statuses))
	for _, st := range models.Statuses {
		counts[st] = 0
	}
	for rows.Next() {
		var st string
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[models.Status(st)] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// filterClause builds the WHERE clause for f. Sector and company are
// case-insensitive substring matches, stage is a case-insensitive exact match
// on the tag, and category requires membership in the tag list.
func filterClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(f.Status))
	}
	if v := strings.TrimSpace(f.Sector); v != "" {
		conds = append(conds, `json_extract(extracted_json, '$.entities.sector') LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(v))
	}
	if v := strings.TrimSpace(f.Company); v != "" {
		conds = append(conds, `json_extract(extracted_json, '$.entities.company') LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(v))
	}
	if v := strings.TrimSpace(f.Stage); v != "" {
		conds = append(conds, `LOWER(json_extract(extracted_json, '$.tags.stage')) = LOWER(?)`)
		args = append(args, v)
	}
	if v := strings.TrimSpace(f.Category); v != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM json_each(deals.extracted_json, '$.tags.category') WHERE value = ?)`)
		args = append(args, v)
	}
	if len(f.IDs) > 0 {
		conds = append(conds, `id IN (?`+strings.Repeat(`, ?`, len(f.IDs)-1)+`)`)
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(v) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(row scanner) (*models.Deal, error) {
	var deal models.Deal
	var status string
	var extracted, lastError sql.NullString
	if err := row.Scan(&deal.ID, &deal.RawText, &extracted, &status, &lastError, &deal.CreatedAt, &deal.UpdatedAt); err != nil {
		return nil, err
	}
	deal.Status = models.Status(status)
	if lastError.Valid {
		deal.LastError = &lastError.String
	}
	if extracted.Valid && extracted.String != "" {
		var brief models.Brief
		if err := json.Unmarshal([]byte(extracted.String), &brief); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extracted_json: %w", err)
		}
		deal.ExtractedJSON = &brief
	}
	return &deal, nil
}

func marshalBrief(b *models.Brief) (sql.NullString, error) {
	if b == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal extracted_json: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
