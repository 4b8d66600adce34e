// Package store persists progress records and published outputs in SQLite.
// The schema is created on open; the database file lives wherever the server
// config points it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"courtsim/internal/progress"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// listLimit caps list queries; records come back newest first.
const listLimit = 50

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	id               TEXT PRIMARY KEY,
	started_at       TIMESTAMP,
	finished_at      TIMESTAMP,
	verdict_category TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_progress_created_at ON progress(created_at);

CREATE TABLE IF NOT EXISTS output (
	id           TEXT PRIMARY KEY,
	html         TEXT NOT NULL DEFAULT '',
	summary_json TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_output_created_at ON output(created_at);
`

// Output is a published run artifact: the final HTML buffer plus a JSON
// summary of the run.
type Output struct {
	ID          string    `json:"id"`
	HTML        string    `json:"html"`
	SummaryJSON string    `json:"summaryJson"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite handles one writer at a time; serialize access through the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug("store opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateProgress inserts a record, assigning id and createdAt.
func (s *Store) CreateProgress(ctx context.Context, rec progress.Record) (progress.Record, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (id, started_at, finished_at, verdict_category, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, nullTime(rec.StartedAt), nullTime(rec.FinishedAt),
		rec.VerdictCategory, rec.Notes, rec.CreatedAt)
	if err != nil {
		return progress.Record{}, fmt.Errorf("inserting progress: %w", err)
	}
	return rec, nil
}

// GetProgress fetches a record by id.
func (s *Store) GetProgress(ctx context.Context, id string) (progress.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, verdict_category, notes, created_at
		 FROM progress WHERE id = ?`, id)
	return scanProgress(row)
}

// ListProgress returns up to 50 records, newest first.
func (s *Store) ListProgress(ctx context.Context) ([]progress.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, verdict_category, notes, created_at
		 FROM progress ORDER BY created_at DESC LIMIT ?`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	defer rows.Close()

	var out []progress.Record
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateProgress replaces the mutable fields of a record.
func (s *Store) UpdateProgress(ctx context.Context, id string, rec progress.Record) (progress.Record, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE progress SET started_at = ?, finished_at = ?, verdict_category = ?, notes = ?
		 WHERE id = ?`,
		nullTime(rec.StartedAt), nullTime(rec.FinishedAt),
		rec.VerdictCategory, rec.Notes, id)
	if err != nil {
		return progress.Record{}, fmt.Errorf("updating progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.Record{}, ErrNotFound
	}
	return s.GetProgress(ctx, id)
}

// DeleteProgress removes a record by id.
func (s *Store) DeleteProgress(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOutput inserts an output, assigning id and createdAt.
func (s *Store) CreateOutput(ctx context.Context, o Output) (Output, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO output (id, html, summary_json, created_at) VALUES (?, ?, ?, ?)`,
		o.ID, o.HTML, o.SummaryJSON, o.CreatedAt)
	if err != nil {
		return Output{}, fmt.Errorf("inserting output: %w", err)
	}
	return o, nil
}

// GetOutput fetches an output by id.
func (s *Store) GetOutput(ctx context.Context, id string) (Output, error) {
	var o Output
	err := s.db.QueryRowContext(ctx,
		`SELECT id, html, summary_json, created_at FROM output WHERE id = ?`, id).
		Scan(&o.ID, &o.HTML, &o.SummaryJSON, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Output{}, ErrNotFound
	}
	if err != nil {
		return Output{}, fmt.Errorf("fetching output: %w", err)
	}
	return o, nil
}

// ListOutput returns up to 50 outputs, newest first.
func (s *Store) ListOutput(ctx context.Context) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, html, summary_json, created_at FROM output
		 ORDER BY created_at DESC LIMIT ?`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing output: %w", err)
	}
	defer rows.Close()

	var out []Output
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.ID, &o.HTML, &o.SummaryJSON, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning output: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateOutput replaces the mutable fields of an output.
func (s *Store) UpdateOutput(ctx context.Context, id string, o Output) (Output, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE output SET html = ?, summary_json = ? WHERE id = ?`,
		o.HTML, o.SummaryJSON, id)
	if err != nil {
		return Output{}, fmt.Errorf("updating output: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Output{}, ErrNotFound
	}
	return s.GetOutput(ctx, id)
}

// DeleteOutput removes an output by id.
func (s *Store) DeleteOutput(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM output WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting output: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (progress.Record, error) {
	var rec progress.Record
	var started, finished sql.NullTime
	err := row.Scan(&rec.ID, &started, &finished, &rec.VerdictCategory, &rec.Notes, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.Record{}, ErrNotFound
	}
	if err != nil {
		return progress.Record{}, fmt.Errorf("scanning progress: %w", err)
	}
	if started.Valid {
		rec.StartedAt = started.Time
	}
	if finished.Valid {
		rec.FinishedAt = finished.Time
	}
	return rec, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
