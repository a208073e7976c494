package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"ordercsv/internal/model"
	"ordercsv/migrations"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run. ID and StartedAt are filled in when empty.
func (s *SQLite) CreateRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = model.RunRunning
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, scope, channel_id, anchor_id, status, messages_fetched, records_written, error, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scope, run.ChannelID, run.AnchorID, string(run.Status),
		run.MessagesFetched, run.RecordsWritten, run.Error, formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and counters of a run.
func (s *SQLite) FinishRun(ctx context.Context, run *model.Run) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs
		 SET status = ?, messages_fetched = ?, records_written = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		string(run.Status), run.MessagesFetched, run.RecordsWritten, run.Error,
		formatTime(*run.FinishedAt), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// GetRun returns a single run by its ID.
func (s *SQLite) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scope, channel_id, anchor_id, status, messages_fetched, records_written, error, started_at, finished_at
		 FROM ingest_runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	return r, err
}

// ListRuns returns the most recent runs for a scope, newest first.
func (s *SQLite) ListRuns(ctx context.Context, scope string, limit int) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scope, channel_id, anchor_id, status, messages_fetched, records_written, error, started_at, finished_at
		 FROM ingest_runs WHERE scope = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		scope, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var status, started string
	var finished sql.NullString
	err := row.Scan(&r.ID, &r.Scope, &r.ChannelID, &r.AnchorID, &status,
		&r.MessagesFetched, &r.RecordsWritten, &r.Error, &started, &finished)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.Status = model.RunStatus(status)
	r.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		t, _ := time.Parse(timeLayout, finished.String)
		r.FinishedAt = &t
	}
	return &r, nil
}
