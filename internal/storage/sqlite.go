// Package storage persists scan runs and concordance rows in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tadoru/internal/models"
)

// Store is a SQLite-backed run and row store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		files INTEGER NOT NULL,
		skipped_lines INTEGER NOT NULL,
		total_matches INTEGER NOT NULL,
		failures TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		label TEXT NOT NULL,
		bucket TEXT NOT NULL,
		file TEXT NOT NULL,
		genre TEXT,
		doc_id TEXT,
		position INTEGER NOT NULL,
		before TEXT,
		match_text TEXT NOT NULL,
		match_tags TEXT NOT NULL,
		after TEXT,
		before_tags TEXT,
		after_tags TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_rows_run_group ON rows(run_id, label, bucket);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun inserts a run summary. Failures are stored as JSON.
func (s *Store) SaveRun(ctx context.Context, summary *models.RunSummary) error {
	failuresJSON, err := json.Marshal(summary.FailedFiles)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, files, skipped_lines, total_matches, failures)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.StartedAt, summary.FinishedAt,
		summary.Files, summary.SkippedLines, summary.TotalMatches, string(failuresJSON),
	)
	return err
}

// SaveRows inserts one group's rows for a run in a transaction, preserving order.
func (s *Store) SaveRows(ctx context.Context, runID string, rows []*models.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rows (run_id, label, bucket, file, genre, doc_id, position,
		                   before, match_text, match_tags, after, before_tags, after_tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, r.Label, r.Bucket, r.File, r.Genre, r.DocID, r.Position,
			r.Before, r.MatchText, r.MatchTags, r.After, r.BeforeTags, r.AfterTags,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRun returns one run summary by ID. Group counts are derived from the rows table.
func (s *Store) GetRun(ctx context.Context, id string) (*models.RunSummary, error) {
	var (
		summary      models.RunSummary
		failuresJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, files, skipped_lines, total_matches, failures
		 FROM runs WHERE id = ?`, id,
	).Scan(&summary.RunID, &summary.StartedAt, &summary.FinishedAt,
		&summary.Files, &summary.SkippedLines, &summary.TotalMatches, &failuresJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if failuresJSON != "" {
		if err := json.Unmarshal([]byte(failuresJSON), &summary.FailedFiles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal failures: %w", err)
		}
	}
	groups, err := s.ListGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	summary.Groups = groups
	return &summary, nil
}

// ListRuns returns run summaries, newest first, without group counts.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, files, skipped_lines, total_matches, failures
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.RunSummary
	for rows.Next() {
		var (
			summary      models.RunSummary
			failuresJSON string
		)
		if err := rows.Scan(&summary.RunID, &summary.StartedAt, &summary.FinishedAt,
			&summary.Files, &summary.SkippedLines, &summary.TotalMatches, &failuresJSON); err != nil {
			return nil, err
		}
		if failuresJSON != "" {
			_ = json.Unmarshal([]byte(failuresJSON), &summary.FailedFiles)
		}
		summaries = append(summaries, &summary)
	}
	return summaries, rows.Err()
}

// ListGroups returns per-group row counts for a run, ordered by label then bucket.
func (s *Store) ListGroups(ctx context.Context, runID string) ([]models.GroupCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, bucket, COUNT(*) FROM rows
		 WHERE run_id = ? GROUP BY label, bucket ORDER BY label, bucket`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.GroupCount
	for rows.Next() {
		var g models.GroupCount
		if err := rows.Scan(&g.Label, &g.Bucket, &g.Rows); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// QueryRows returns one group's rows for a run in scan order (insertion order).
func (s *Store) QueryRows(ctx context.Context, runID, label, bucket string, limit, offset int) ([]*models.Row, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, bucket, file, genre, doc_id, position,
		        before, match_text, match_tags, after, before_tags, after_tags
		 FROM rows WHERE run_id = ? AND label = ? AND bucket = ?
		 ORDER BY id LIMIT ? OFFSET ?`,
		runID, label, bucket, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Row
	for rows.Next() {
		var r models.Row
		if err := rows.Scan(&r.Label, &r.Bucket, &r.File, &r.Genre, &r.DocID, &r.Position,
			&r.Before, &r.MatchText, &r.MatchTags, &r.After, &r.BeforeTags, &r.AfterTags); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// CountRows returns the total number of stored rows.
func (s *Store) CountRows(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rows`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
