// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package journal keeps a local SQLite history of gas reservations and
// sponsored executions made through the suigas CLI.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dotandev/suigaspool/internal/logger"
	_ "modernc.org/sqlite"
)

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1

	// DefaultTTL is how long entries are kept by Cleanup (90 days)
	DefaultTTL = 90 * 24 * time.Hour

	// DefaultMaxEntries caps the number of rows Cleanup keeps
	DefaultMaxEntries = 10000

	defaultListLimit = 50
)

// Kind is the operation an entry records.
type Kind string

const (
	KindReserve Kind = "reserve"
	KindExecute Kind = "execute"
	KindSponsor Kind = "sponsor"
)

// Status is the outcome of the recorded operation.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one row of the journal.
type Entry struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Kind          Kind      `json:"kind"`
	Status        Status    `json:"status"`
	GasPoolURL    string    `json:"gas_pool_url"`
	Sponsor       string    `json:"sponsor,omitempty"`
	ReservationID uint64    `json:"reservation_id,omitempty"`
	GasBudget     uint64    `json:"gas_budget,omitempty"`
	CoinCount     int       `json:"coin_count,omitempty"`
	TxDigest      string    `json:"tx_digest,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Store manages journal persistence in SQLite
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		logger.Logger.Warn("Failed to set journal permissions", "error", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		gas_pool_url TEXT NOT NULL,
		sponsor TEXT,
		reservation_id INTEGER,
		gas_budget INTEGER,
		coin_count INTEGER,
		tx_digest TEXT,
		error TEXT,
		schema_version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_digest ON entries(tx_digest);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record appends e and fills in its ID and CreatedAt.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.Kind == "" {
		return fmt.Errorf("entry kind is required")
	}
	if e.Status == "" {
		e.Status = StatusOK
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	// reservation ids and budgets are stored bit-for-bit as int64
	result, err := s.db.ExecContext(ctx, `
	INSERT INTO entries (
		created_at, kind, status, gas_pool_url, sponsor, reservation_id,
		gas_budget, coin_count, tx_digest, error, schema_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CreatedAt.UnixNano(), string(e.Kind), string(e.Status), e.GasPoolURL, e.Sponsor,
		int64(e.ReservationID), int64(e.GasBudget), e.CoinCount, e.TxDigest, e.Error,
		SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to record entry: %w", err)
	}

	if e.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read entry id: %w", err)
	}

	logger.Logger.Debug("Journal entry recorded", "id", e.ID, "kind", e.Kind, "status", e.Status)
	return nil
}

const selectColumns = `
	SELECT id, created_at, kind, status, gas_pool_url, sponsor, reservation_id,
	       gas_budget, coin_count, tx_digest, error
	FROM entries`

// List returns the most recent entries first.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// FindByDigest returns the entries that produced txDigest.
func (s *Store) FindByDigest(ctx context.Context, txDigest string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE tx_digest = ? ORDER BY created_at DESC, id DESC`, txDigest)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e                        Entry
		createdAt                int64
		kind, status             string
		sponsor, digest, errText sql.NullString
		reservationID, gasBudget sql.NullInt64
		coinCount                sql.NullInt64
	)

	if err := row.Scan(&e.ID, &createdAt, &kind, &status, &e.GasPoolURL, &sponsor,
		&reservationID, &gasBudget, &coinCount, &digest, &errText); err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.CreatedAt = time.Unix(0, createdAt)
	e.Kind = Kind(kind)
	e.Status = Status(status)
	e.Sponsor = sponsor.String
	e.ReservationID = uint64(reservationID.Int64)
	e.GasBudget = uint64(gasBudget.Int64)
	e.CoinCount = int(coinCount.Int64)
	e.TxDigest = digest.String
	e.Error = errText.String
	return &e, nil
}

// Cleanup removes entries older than ttl and keeps at most maxEntries rows.
func (s *Store) Cleanup(ctx context.Context, ttl time.Duration, maxEntries int) error {
	cutoff := time.Now().Add(-ttl).UnixNano()

	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired entries: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		logger.Logger.Debug("Cleaned up expired journal entries", "count", n)
	}

	if maxEntries <= 0 {
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}
	if count <= maxEntries {
		return nil
	}

	result, err = s.db.ExecContext(ctx, `
		DELETE FROM entries
		WHERE id IN (
			SELECT id FROM entries
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		)`, count-maxEntries)
	if err != nil {
		return fmt.Errorf("failed to delete oldest entries: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		logger.Logger.Debug("Cleaned up excess journal entries", "count", n)
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
