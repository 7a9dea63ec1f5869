package store

import (
	"context"
	"fmt"
)

// RunEntry records one monitoring run, successful or not.
type RunEntry struct {
	ID              string
	TargetURL       string
	Outcome         string // Outcome value, or an error class for failed runs
	MatchedSelector string
	Error           string
	DurationMs      int64
	StartedAt       int64 // unix milliseconds
}

// InsertRun appends a run log entry.
func (s *Store) InsertRun(ctx context.Context, e *RunEntry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO runs (id, target_url, outcome, matched_selector, error, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TargetURL, e.Outcome, e.MatchedSelector, e.Error, e.DurationMs, e.StartedAt)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// RunHistory returns run log entries for a target, newest first.
func (s *Store) RunHistory(ctx context.Context, targetKey string, limit int) ([]*RunEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, target_url, outcome, matched_selector, error, duration_ms, started_at
		FROM runs WHERE target_url = ?
		ORDER BY started_at DESC LIMIT ?`, targetKey, limit)
	if err != nil {
		return nil, fmt.Errorf("store: run history: %w", err)
	}
	defer rows.Close()

	var result []*RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(&e.ID, &e.TargetURL, &e.Outcome, &e.MatchedSelector,
			&e.Error, &e.DurationMs, &e.StartedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
