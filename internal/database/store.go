package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mkosuda/proxyvet/internal/model"
)

// Store provides SQLite-based storage for verified relays and run history.
//
// Design decision: one database file for both relays and runs. Relays are
// the working set future runs reuse; runs are the audit trail. Keeping
// them together makes backup a single-file copy.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "proxyvet.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Relays are endpoints verified anonymous, keyed by address so a
	-- relay re-verified in a later run updates in place.
	CREATE TABLE IF NOT EXISTS relays (
		endpoint TEXT PRIMARY KEY,
		origin_ips TEXT NOT NULL,
		reason TEXT,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_checked DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_relays_last_checked ON relays(last_checked);

	-- Runs record the aggregate tallies of each classification run.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		candidates INTEGER NOT NULL,
		anonymous INTEGER NOT NULL,
		transparent INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// StoredRelay is a verified relay row.
type StoredRelay struct {
	Endpoint    model.Endpoint
	OriginIPs   []string
	Reason      string
	FirstSeen   time.Time
	LastChecked time.Time
}

// Put inserts or refreshes a verified relay. Re-verifying an endpoint
// updates its origin addresses, reason, and last-checked timestamp but
// keeps the original first-seen timestamp.
func (s *Store) Put(ctx context.Context, result model.ProbeResult) error {
	originsJSON, err := json.Marshal(result.OriginIPs)
	if err != nil {
		return fmt.Errorf("failed to serialize origin addresses: %w", err)
	}

	query := `
	INSERT INTO relays (endpoint, origin_ips, reason, last_checked)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(endpoint) DO UPDATE SET
		origin_ips = excluded.origin_ips,
		reason = excluded.reason,
		last_checked = excluded.last_checked
	`

	_, err = s.db.ExecContext(ctx, query,
		string(result.Endpoint),
		string(originsJSON),
		result.Reason,
		result.CheckedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to store relay: %w", err)
	}
	return nil
}

// GetAll returns every stored relay, most recently checked first.
func (s *Store) GetAll(ctx context.Context) ([]StoredRelay, error) {
	query := `
	SELECT endpoint, origin_ips, reason, first_seen, last_checked
	FROM relays
	ORDER BY last_checked DESC, endpoint
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list relays: %w", err)
	}
	defer rows.Close()

	var relays []StoredRelay
	for rows.Next() {
		var relay StoredRelay
		var endpoint, originsJSON, firstSeen, lastChecked string
		var reason sql.NullString

		if err := rows.Scan(&endpoint, &originsJSON, &reason, &firstSeen, &lastChecked); err != nil {
			return nil, fmt.Errorf("failed to scan relay row: %w", err)
		}

		relay.Endpoint = model.Endpoint(endpoint)
		relay.Reason = reason.String
		relay.FirstSeen = parseTimestamp(firstSeen)
		relay.LastChecked = parseTimestamp(lastChecked)

		if originsJSON != "" {
			if err := json.Unmarshal([]byte(originsJSON), &relay.OriginIPs); err != nil {
				return nil, fmt.Errorf("failed to parse origin addresses: %w", err)
			}
		}

		relays = append(relays, relay)
	}

	return relays, rows.Err()
}

// Endpoints returns the stored relay endpoints, most recently checked
// first. Used to re-verify the stored set instead of harvesting fresh
// candidates.
func (s *Store) Endpoints(ctx context.Context) ([]model.Endpoint, error) {
	relays, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	endpoints := make([]model.Endpoint, 0, len(relays))
	for _, relay := range relays {
		endpoints = append(endpoints, relay.Endpoint)
	}
	return endpoints, nil
}

// RunRecord is one classification run's aggregate outcome.
type RunRecord struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Candidates is the size of the deduplicated candidate set.
	Candidates int64

	// Anonymous, Transparent, and Failed are the final tallies.
	Anonymous   int64
	Transparent int64
	Failed      int64
}

// SaveRun records a completed run's tallies.
func (s *Store) SaveRun(ctx context.Context, run RunRecord) error {
	query := `
	INSERT INTO runs (started_at, finished_at, candidates, anonymous, transparent, failed)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		run.FinishedAt.UTC().Format("2006-01-02 15:04:05"),
		run.Candidates,
		run.Anonymous,
		run.Transparent,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit below one returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, started_at, finished_at, candidates, anonymous, transparent, failed
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Candidates, &run.Anonymous, &run.Transparent, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
