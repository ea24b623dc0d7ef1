// Package results persists scenario run output to a SQLite database so
// successive runs can be compared without re-running the model.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Record is one (region, sector, subsector, period) observation of a run.
type Record struct {
	RunID      string
	Region     string
	Sector     string
	Subsector  string
	Period     int
	Year       int
	Share      float64
	ShareWeight float64
	Output     float64
	Input      float64
	Price      float64
	FuelPrice  float64
	CO2Factor  float64
}

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open creates or opens the results database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "results.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		scenario   TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS shares (
		run_id       TEXT NOT NULL REFERENCES runs(id),
		region       TEXT NOT NULL,
		sector       TEXT NOT NULL,
		subsector    TEXT NOT NULL,
		period       INTEGER NOT NULL,
		year         INTEGER NOT NULL,
		share        REAL NOT NULL,
		share_weight REAL NOT NULL,
		output       REAL NOT NULL,
		input        REAL NOT NULL,
		price        REAL NOT NULL,
		fuel_price   REAL NOT NULL,
		co2_factor   REAL NOT NULL,
		PRIMARY KEY (run_id, region, sector, subsector, period)
	)`); err != nil {
		return nil, fmt.Errorf("create shares table: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun writes a run header and its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, runID, scenario string, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, created_at) VALUES (?, ?, ?)`,
		runID, scenario, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shares
		(run_id, region, sector, subsector, period, year,
		 share, share_weight, output, input, price, fuel_price, co2_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, r.Region, r.Sector, r.Subsector, r.Period, r.Year,
			r.Share, r.ShareWeight, r.Output, r.Input, r.Price, r.FuelPrice, r.CO2Factor); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadRun reads all records of one run ordered by region, sector,
// subsector and period.
func (s *Store) LoadRun(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, region, sector, subsector, period, year,
		share, share_weight, output, input, price, fuel_price, co2_factor
		FROM shares WHERE run_id = ?
		ORDER BY region, sector, subsector, period`, runID)
	if err != nil {
		return nil, fmt.Errorf("select shares: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.RunID, &r.Region, &r.Sector, &r.Subsector, &r.Period, &r.Year,
			&r.Share, &r.ShareWeight, &r.Output, &r.Input, &r.Price, &r.FuelPrice, &r.CO2Factor); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Runs lists stored run IDs, newest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
