package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// DB is the SQLite Store, with migration support.
type DB struct {
	sql *sql.DB
	log *logging.Logger
}

// Open opens (or creates) a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for tests).
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	// WAL mode for better concurrent read performance
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	db := &DB{sql: sqlDB, log: log.Sub("store")}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	db.log.Info().Str("path", path).Msg("database opened")
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.log.Info().Msg("closing database")
	return db.sql.Close()
}

// SQL returns the underlying *sql.DB for direct queries.
func (db *DB) SQL() *sql.DB {
	return db.sql
}

// migrate runs all pending migrations.
func (db *DB) migrate() error {
	// Create migrations tracking table
	if _, err := db.sql.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := db.isMigrationApplied(m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := db.sql.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func (db *DB) isMigrationApplied(version int) (bool, error) {
	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking migration %d: %w", version, err)
	}
	return count > 0, nil
}

const timeLayout = time.RFC3339Nano

// CreateStatusCheck inserts a new status check for clientName.
func (db *DB) CreateStatusCheck(ctx context.Context, clientName string) (*StatusCheck, error) {
	sc := newStatusCheck(clientName)
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		sc.ID, sc.ClientName, sc.Timestamp.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting status check: %w", err)
	}
	return sc, nil
}

// ListStatusChecks returns up to limit status checks, oldest first.
func (db *DB) ListStatusChecks(ctx context.Context, limit int) ([]StatusCheck, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, client_name, timestamp FROM status_checks
		 ORDER BY timestamp ASC, rowid ASC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checks := []StatusCheck{}
	for rows.Next() {
		var sc StatusCheck
		var ts string
		if err := rows.Scan(&sc.ID, &sc.ClientName, &ts); err != nil {
			return nil, err
		}
		sc.Timestamp, _ = time.Parse(timeLayout, ts)
		checks = append(checks, sc)
	}
	return checks, rows.Err()
}

// RecordRun appends an agent run to the audit trail.
func (db *DB) RecordRun(ctx context.Context, run AgentRun) (*AgentRun, error) {
	r, err := prepareRun(run)
	if err != nil {
		return nil, err
	}
	_, err = db.sql.ExecContext(ctx,
		`INSERT INTO agent_runs (id, operation, variant, success, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Operation, r.Variant, r.Success, r.Error, r.DurationMs, r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting agent run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit agent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]AgentRun, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, operation, variant, success, error, duration_ms, created_at FROM agent_runs
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []AgentRun{}
	for rows.Next() {
		var r AgentRun
		var created string
		if err := rows.Scan(&r.ID, &r.Operation, &r.Variant, &r.Success, &r.Error, &r.DurationMs, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ Store = (*DB)(nil)
