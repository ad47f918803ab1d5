// Package db persists ladder's classification run history in sqlite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// DB wraps the sqlite connection for the run-history database.
type DB struct {
	*sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS schema_info (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	trigger       TEXT NOT NULL,
	tests_root    TEXT NOT NULL,
	total         INTEGER NOT NULL,
	classified    INTEGER NOT NULL,
	unclassified  INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_tier_counts (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	tier    TEXT NOT NULL,
	files   INTEGER NOT NULL,
	PRIMARY KEY (run_id, tier)
);

CREATE TABLE IF NOT EXISTS unclassified_paths (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	path    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open opens (creating if necessary) the history database at path and
// initializes the schema.
func Open(path string) (*DB, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("database path %s is a directory", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	// Pragmas go in the DSN so every pooled connection gets them; a bare
	// Exec would only configure whichever connection it happened to grab,
	// and foreign_keys is off by default on fresh connections.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	db := &DB{DB: conn, path: path}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// OpenAndMigrate opens the database and migrates it to the current schema
// version.
func OpenAndMigrate(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenProjectDB opens the history database at the project's default
// location, <projectDir>/.ladder/history.db.
func OpenProjectDB(projectDir string) (*DB, error) {
	return OpenAndMigrate(filepath.Join(projectDir, ".ladder", "history.db"))
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) initSchema() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_info`).Scan(&count); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_info (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	}
	return nil
}

// migrate brings an older schema up to SchemaVersion. Version 1 is the
// first schema, so currently this only verifies the version is supported.
func (db *DB) migrate() error {
	version, err := db.GetSchemaVersion()
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, SchemaVersion)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version.
func (db *DB) GetSchemaVersion() (int, error) {
	var version int
	if err := db.QueryRow(`SELECT version FROM schema_info LIMIT 1`).Scan(&version); err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}

// ValidateSchema verifies the expected tables exist.
func (db *DB) ValidateSchema() error {
	for _, table := range []string{"schema_info", "runs", "run_tier_counts", "unclassified_paths"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			return fmt.Errorf("missing table %s: %w", table, err)
		}
	}
	return nil
}

// Stats summarizes the database contents.
type Stats struct {
	SchemaVersion int `json:"schema_version"`
	Runs          int `json:"runs"`
	Unclassified  int `json:"unclassified"`
}

// GetStats returns summary statistics.
func (db *DB) GetStats() (Stats, error) {
	stats := Stats{}
	var err error
	if stats.SchemaVersion, err = db.GetSchemaVersion(); err != nil {
		return stats, err
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return stats, fmt.Errorf("count runs: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM unclassified_paths`).Scan(&stats.Unclassified); err != nil {
		return stats, fmt.Errorf("count unclassified: %w", err)
	}
	return stats, nil
}
