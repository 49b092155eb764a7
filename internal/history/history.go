// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists completed export batches to a local SQLite
// database so past runs can be reviewed from the command line.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/meshbatch/internal/export"
	"github.com/jeranaias/meshbatch/internal/host"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrNotFound      = errors.New("batch not found")
	ErrAmbiguousID   = errors.New("batch id prefix matches more than one batch")
)

// =============================================================================
// SCHEMA
// =============================================================================

// Schema creates the history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS batches (
	id          TEXT PRIMARY KEY,
	design      TEXT NOT NULL,
	output_dir  TEXT NOT NULL,
	quality     TEXT NOT NULL,
	exported    INTEGER NOT NULL,
	overwritten INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	cancelled   INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id   TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	body_name  TEXT NOT NULL,
	path       TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_batch ON jobs(batch_id);
`

// =============================================================================
// TYPES
// =============================================================================

// Batch is one recorded export run.
type Batch struct {
	ID          string
	Design      string
	OutputDir   string
	Quality     host.Quality
	Exported    int
	Overwritten int
	Failed      int
	Cancelled   bool
	CreatedAt   time.Time
	Jobs        []JobRecord
}

// JobRecord is one file written (or attempted) within a batch.
type JobRecord struct {
	BodyName string
	Path     string
	Error    string // empty on success
}

// Store provides access to the history database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the history database location, ~/.meshbatch/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".meshbatch", "history.db"), nil
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// RECORD
// =============================================================================

// Record inserts a completed run and its per-file outcomes. It returns the
// new batch ID.
func (s *Store) Record(ctx context.Context, design string, sum export.Summary) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	cancelled := 0
	if sum.Cancelled {
		cancelled = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, design, output_dir, quality, exported, overwritten, failed, cancelled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, design, sum.OutputDir, sum.Quality.String(), sum.Exported, sum.Overwritten, len(sum.Errors), cancelled, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, name := range sum.Written {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO jobs (batch_id, body_name, path, error)
			VALUES (?, ?, ?, '')
		`, id, name.BodyName, name.Path)
		if err != nil {
			return "", fmt.Errorf("failed to insert job: %w", err)
		}
	}
	for _, je := range sum.Errors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO jobs (batch_id, body_name, path, error)
			VALUES (?, ?, '', ?)
		`, id, je.BodyName, je.Message)
		if err != nil {
			return "", fmt.Errorf("failed to insert job: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// =============================================================================
// QUERY
// =============================================================================

// List returns the most recent batches, newest first, without per-job rows.
// A limit of 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Batch, error) {
	query := `
		SELECT id, design, output_dir, quality, exported, overwritten, failed, cancelled, created_at
		FROM batches ORDER BY created_at DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Get returns one batch with its job rows. id may be a unique prefix of the
// full batch id, as printed by the list view; a prefix matching several
// batches yields ErrAmbiguousID.
func (s *Store) Get(ctx context.Context, id string) (*Batch, error) {
	matches, err := s.db.QueryContext(ctx, `
		SELECT id, design, output_dir, quality, exported, overwritten, failed, cancelled, created_at
		FROM batches WHERE id LIKE ? || '%' LIMIT 2
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer matches.Close()

	var found []Batch
	for matches.Next() {
		b, err := scanBatch(matches)
		if err != nil {
			return nil, err
		}
		found = append(found, b)
	}
	if err := matches.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
	b := found[0]

	rows, err := s.db.QueryContext(ctx, `
		SELECT body_name, path, error FROM jobs WHERE batch_id = ? ORDER BY id
	`, b.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var j JobRecord
		if err := rows.Scan(&j.BodyName, &j.Path, &j.Error); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		b.Jobs = append(b.Jobs, j)
	}
	return &b, rows.Err()
}

// Prune deletes all but the most recent keep batches. A keep of 0 is a
// no-op (unlimited retention).
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM batches WHERE id NOT IN (
			SELECT id FROM batches ORDER BY created_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row scanner) (Batch, error) {
	var b Batch
	var quality string
	var cancelled int
	var created int64
	err := row.Scan(&b.ID, &b.Design, &b.OutputDir, &quality, &b.Exported, &b.Overwritten, &b.Failed, &cancelled, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	b.Quality = host.ParseQuality(quality)
	b.Cancelled = cancelled != 0
	b.CreatedAt = time.Unix(created, 0)
	return b, nil
}
