package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLRunRepository stores digest runs and their per-feed outcomes.
// Timestamps are kept as Unix milliseconds.
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) CreateRun(startedAt time.Time, feedCount int) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO runs (started_at, feed_count) VALUES (?, ?)
	`, startedAt.UnixMilli(), feedCount)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	return id, nil
}

func (r *SQLRunRepository) FinishRun(runID int64, finishedAt time.Time, blogCount, postCount int, digestHTML string) error {
	result, err := r.db.Exec(`
		UPDATE runs
		SET finished_at = ?, blog_count = ?, post_count = ?, digest_html = ?
		WHERE id = ?
	`, finishedAt.UnixMilli(), blogCount, postCount, digestHTML, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finished run: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %d not found", runID)
	}

	return nil
}

func (r *SQLRunRepository) AddFeedResult(runID int64, result FeedResult) error {
	_, err := r.db.Exec(`
		INSERT INTO feed_results (
			run_id, position, url, title, status,
			post_count, dropped_count, error, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, result.Position, result.URL, result.Title, result.Status,
		result.PostCount, result.DroppedCount, result.Error, result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to add feed result: %w", err)
	}

	return nil
}

func (r *SQLRunRepository) GetRun(runID int64) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, started_at, finished_at, feed_count, blog_count, post_count, digest_html
		FROM runs WHERE id = ?
	`, runID)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// GetLatestRun returns the most recent finished run, or nil before the first
// run completes.
func (r *SQLRunRepository) GetLatestRun() (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, started_at, finished_at, feed_count, blog_count, post_count, digest_html
		FROM runs
		WHERE finished_at IS NOT NULL
		ORDER BY finished_at DESC, id DESC
		LIMIT 1
	`)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return run, nil
}

func (r *SQLRunRepository) ListRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT id, started_at, finished_at, feed_count, blog_count, post_count
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func (r *SQLRunRepository) GetFeedResults(runID int64) ([]FeedResult, error) {
	rows, err := r.db.Query(`
		SELECT id, run_id, position, url, title, status,
		       post_count, dropped_count, error, duration_ms
		FROM feed_results
		WHERE run_id = ?
		ORDER BY position, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed results: %w", err)
	}
	defer rows.Close()

	var results []FeedResult
	for rows.Next() {
		var result FeedResult
		var durationMs int64
		err := rows.Scan(&result.ID, &result.RunID, &result.Position, &result.URL, &result.Title,
			&result.Status, &result.PostCount, &result.DroppedCount, &result.Error, &durationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed result: %w", err)
		}
		result.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed results: %w", err)
	}

	return results, nil
}

func (r *SQLRunRepository) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, withDigest bool) (*Run, error) {
	var run Run
	var startedAt int64
	var finishedAt sql.NullInt64

	dest := []any{&run.ID, &startedAt, &finishedAt, &run.FeedCount, &run.BlogCount, &run.PostCount}
	if withDigest {
		dest = append(dest, &run.DigestHTML)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	run.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64).UTC()
		run.FinishedAt = &t
	}

	return &run, nil
}
