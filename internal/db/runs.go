package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded classification run.
type Run struct {
	ID           string         `json:"id"`
	Trigger      string         `json:"trigger"`
	TestsRoot    string         `json:"tests_root"`
	Total        int            `json:"total"`
	Classified   int            `json:"classified"`
	Unclassified []string       `json:"unclassified,omitempty"`
	TierCounts   map[string]int `json:"tier_counts,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// RecordRun persists a classification run. A zero ID or CreatedAt is
// filled in.
func (db *DB) RecordRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, trigger, tests_root, total, classified, unclassified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Trigger, run.TestsRoot, run.Total, run.Classified, len(run.Unclassified),
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for tierID, files := range run.TierCounts {
		if _, err := tx.Exec(`
			INSERT INTO run_tier_counts (run_id, tier, files) VALUES (?, ?, ?)
		`, run.ID, tierID, files); err != nil {
			return fmt.Errorf("insert tier count: %w", err)
		}
	}
	for _, p := range run.Unclassified {
		if _, err := tx.Exec(`
			INSERT INTO unclassified_paths (run_id, path) VALUES (?, ?)
		`, run.ID, p); err != nil {
			return fmt.Errorf("insert unclassified path: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run with its tier counts and unclassified paths.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, trigger, tests_root, total, classified, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	run.TierCounts = map[string]int{}
	rows, err := db.Query(`SELECT tier, files FROM run_tier_counts WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query tier counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tierID string
		var files int
		if err := rows.Scan(&tierID, &files); err != nil {
			return nil, fmt.Errorf("scan tier count: %w", err)
		}
		run.TierCounts[tierID] = files
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier counts: %w", err)
	}

	upaths, err := db.Query(`SELECT path FROM unclassified_paths WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query unclassified paths: %w", err)
	}
	defer upaths.Close()
	for upaths.Next() {
		var p string
		if err := upaths.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan unclassified path: %w", err)
		}
		run.Unclassified = append(run.Unclassified, p)
	}
	if err := upaths.Err(); err != nil {
		return nil, fmt.Errorf("iterate unclassified paths: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, trigger, tests_root, total, classified, created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var createdAt string
		if err := rows.Scan(&run.ID, &run.Trigger, &run.TestsRoot, &run.Total, &run.Classified, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// PruneRuns deletes runs older than the retention window and returns the
// number removed. retentionDays <= 0 disables pruning.
func (db *DB) PruneRuns(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339)
	result, err := db.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanRun(row *sql.Row) (*Run, error) {
	run := &Run{}
	var createdAt string

	err := row.Scan(&run.ID, &run.Trigger, &run.TestsRoot, &run.Total, &run.Classified, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return run, nil
}
