package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradelens/internal/errors"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based run store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewStoreError("open", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.NewStoreError("init schema", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		source TEXT NOT NULL,
		kind TEXT NOT NULL,
		stop_loss REAL NOT NULL,
		efficiency REAL NOT NULL,
		sizing TEXT NOT NULL,
		filters TEXT,
		date_range TEXT,
		resolved_rows INTEGER NOT NULL,
		metrics TEXT NOT NULL,
		flags TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists one evaluation run and returns its id.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) (int64, error) {
	sizing, err := json.Marshal(run.Sizing)
	if err != nil {
		return 0, errors.NewStoreError("save run", err)
	}
	filters, err := json.Marshal(run.Filters)
	if err != nil {
		return 0, errors.NewStoreError("save run", err)
	}
	dateRange, err := json.Marshal(run.DateRange)
	if err != nil {
		return 0, errors.NewStoreError("save run", err)
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return 0, errors.NewStoreError("save run", err)
	}
	flags, err := json.Marshal(run.Flags)
	if err != nil {
		return 0, errors.NewStoreError("save run", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (created_at, source, kind, stop_loss, efficiency,
			sizing, filters, date_range, resolved_rows, metrics, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt, run.Source, run.Kind,
		run.Params.StopLoss, run.Params.Efficiency,
		string(sizing), string(filters), string(dateRange),
		run.ResolvedRows, string(metrics), string(flags))
	if err != nil {
		return 0, errors.NewStoreError("save run", err)
	}
	return res.LastInsertId()
}

// GetRun loads one run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source, kind, stop_loss, efficiency,
			sizing, filters, date_range, resolved_rows, metrics, flags
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrDataNotFound
	}
	if err != nil {
		return nil, errors.NewStoreError("get run", err)
	}
	return run, nil
}

// ListRuns returns runs newest first, optionally narrowed by source and kind.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `
		SELECT id, created_at, source, kind, stop_loss, efficiency,
			sizing, filters, date_range, resolved_rows, metrics, flags
		FROM runs WHERE 1=1`
	args := []interface{}{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.NewStoreError("list runs", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Clear removes all persisted runs.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs"); err != nil {
		return errors.NewStoreError("clear", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(r rowScanner) (*Run, error) {
	var (
		run       Run
		sizing    string
		filters   sql.NullString
		dateRange sql.NullString
		metrics   string
		flags     string
	)
	err := r.Scan(&run.ID, &run.CreatedAt, &run.Source, &run.Kind,
		&run.Params.StopLoss, &run.Params.Efficiency,
		&sizing, &filters, &dateRange, &run.ResolvedRows, &metrics, &flags)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sizing), &run.Sizing); err != nil {
		return nil, err
	}
	if filters.Valid && filters.String != "" {
		if err := json.Unmarshal([]byte(filters.String), &run.Filters); err != nil {
			return nil, err
		}
	}
	if dateRange.Valid && dateRange.String != "" {
		if err := json.Unmarshal([]byte(dateRange.String), &run.DateRange); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(flags), &run.Flags); err != nil {
		return nil, err
	}
	return &run, nil
}
