package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// ErrIntegrity is returned when a mapping write references a model or
// content record that does not exist. Under correct upsert ordering
// this cannot happen; observing it means the store is corrupt and the
// write is refused.
var ErrIntegrity = errors.New("referential integrity violation")

// Store manages the three indexer collections in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the store at path. Use ":memory:"
// for an ephemeral store in tests.
func Open(ctx context.Context, path string) (*Store, error) {
	connStr := path
	if path != ":memory:" {
		// WAL for concurrent readers during indexing; busy_timeout to
		// ride out writer contention instead of failing immediately.
		connStr = fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("Failed to close store after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("connecting to store: %w", err)
	}

	if path == ":memory:" {
		// A second connection would see a different empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("Failed to close store after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logging.Info("Store ready at %s", path)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	start := time.Now()
	schema := `
	CREATE TABLE IF NOT EXISTS models (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS content (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		size INTEGER NOT NULL DEFAULT 0,
		last_modified INTEGER NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		format TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_content_filename ON content(filename COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_content_last_modified ON content(last_modified);

	CREATE TABLE IF NOT EXISTS model_content_map (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_name TEXT NOT NULL COLLATE NOCASE,
		content_path TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(model_name, content_path)
	);

	CREATE INDEX IF NOT EXISTS idx_map_model ON model_content_map(model_name);
	CREATE INDEX IF NOT EXISTS idx_map_path ON model_content_map(content_path);
	`

	_, err := s.db.ExecContext(ctx, schema)
	recordQuery("initialize_schema", start, err)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies store connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// BeginBatch starts a transaction for batched synchronizer writes.
// End it with EndBatch.
func (s *Store) BeginBatch(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// EndBatch commits the transaction, or rolls it back when err is
// non-nil, and returns the original error in that case.
func (s *Store) EndBatch(tx *sql.Tx, start time.Time, err error) error {
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.StoreTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.StoreTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// IsTransient reports whether a write failure is worth retrying:
// lock/busy contention rather than a constraint or corruption error.
func IsTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// recordQuery records store query metrics.
func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
