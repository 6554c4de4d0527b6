// Package store persists load runs and exported aggregate rows in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"engagement-dashboard/internal/model"
)

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// AggregateRow is one stored view row.
type AggregateRow struct {
	RunID string
	View  string
	Keys  []string
	Value model.OptFloat
	Count int
}

// LoadRun is the stored summary of one dataset load.
type LoadRun struct {
	ID        string
	Source    string
	RowsRead  int
	RowsKept  int
	CreatedAt time.Time
	Report    model.LoadReport
}

// InitDB opens (creating if needed) the database at dbPath.
func InitDB(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS load_runs (
		id TEXT PRIMARY KEY,
		source TEXT,
		rows_read INTEGER,
		rows_kept INTEGER,
		report TEXT,
		created_at DATETIME
	);
	`
	rowTable := `
	CREATE TABLE IF NOT EXISTS aggregate_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		view TEXT,
		keys TEXT,
		value REAL,
		count INTEGER,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, rowTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLoadRun stores a load report under runID.
func (s *Store) SaveLoadRun(ctx context.Context, runID string, report *model.LoadReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO load_runs (id, source, rows_read, rows_kept, report, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, report.Source, report.RowsRead, report.RowsKept, string(reportJSON), now)
	return err
}

// SaveAggregateRows stores rows in one transaction and returns how many
// were written. A missing value is stored as NULL.
func (s *Store) SaveAggregateRows(ctx context.Context, rows []AggregateRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO aggregate_rows (run_id, view, keys, value, count, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, r := range rows {
		keysJSON, err := json.Marshal(r.Keys)
		if err != nil {
			return i, err
		}
		value := sql.NullFloat64{Float64: r.Value.Value, Valid: r.Value.Valid}
		if _, err := stmt.ExecContext(ctx, r.RunID, r.View, string(keysJSON), value, r.Count, now); err != nil {
			return i, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListLoadRuns returns all runs, newest first.
func (s *Store) ListLoadRuns(ctx context.Context) ([]LoadRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, rows_read, rows_kept, report, created_at FROM load_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []LoadRun
	for rows.Next() {
		var run LoadRun
		var reportJSON string
		if err := rows.Scan(&run.ID, &run.Source, &run.RowsRead, &run.RowsKept, &reportJSON, &run.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
			return nil, fmt.Errorf("decode report of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetAggregateRows fetches the rows of one view of a run, in insert order.
func (s *Store) GetAggregateRows(ctx context.Context, runID, view string) ([]AggregateRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keys, value, count FROM aggregate_rows WHERE run_id = ? AND view = ? ORDER BY id`, runID, view)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AggregateRow
	for rows.Next() {
		var keysJSON string
		var value sql.NullFloat64
		r := AggregateRow{RunID: runID, View: view}
		if err := rows.Scan(&keysJSON, &value, &r.Count); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keysJSON), &r.Keys); err != nil {
			return nil, err
		}
		r.Value = model.OptFloat{Value: value.Float64, Valid: value.Valid}
		out = append(out, r)
	}
	return out, rows.Err()
}
