package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/pagevigil/dbopen"
)

// Fingerprint is the stable digest of canonicalized watched content plus
// the selector that produced it. Two fingerprints are equal only when
// both fields match: a shift in which selector matched signals that the
// page structure moved, and counts as a change even if the hashes
// happen to coincide.
type Fingerprint struct {
	Hash       string
	Selector   string
	ObservedAt int64 // unix milliseconds
}

// Equal reports fingerprint equality over hash and selector.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Hash == other.Hash && f.Selector == other.Selector
}

// Outcome is the result of comparing a new fingerprint to the baseline.
type Outcome string

const (
	Unchanged        Outcome = "unchanged"
	Changed          Outcome = "changed"
	FirstObservation Outcome = "first_observation"
)

// Load returns the last-seen fingerprint for targetKey, or nil if the
// target has never been observed.
func (s *Store) Load(ctx context.Context, targetKey string) (*Fingerprint, error) {
	var fp Fingerprint
	err := s.DB.QueryRowContext(ctx,
		`SELECT content_hash, selector, observed_at FROM fingerprints WHERE target_url = ?`,
		targetKey).Scan(&fp.Hash, &fp.Selector, &fp.ObservedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load fingerprint: %w", err)
	}
	return &fp, nil
}

// CompareAndUpdate compares next against the stored baseline for
// targetKey and makes the store reflect next, all inside one
// transaction. A missing baseline yields FirstObservation: the baseline
// is established, never announced as a change.
func (s *Store) CompareAndUpdate(ctx context.Context, targetKey string, next Fingerprint) (Outcome, error) {
	outcome := FirstObservation

	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		var prior Fingerprint
		err := tx.QueryRowContext(ctx,
			`SELECT content_hash, selector FROM fingerprints WHERE target_url = ?`,
			targetKey).Scan(&prior.Hash, &prior.Selector)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			outcome = FirstObservation
		case err != nil:
			return fmt.Errorf("store: read baseline: %w", err)
		case prior.Equal(next):
			outcome = Unchanged
		default:
			outcome = Changed
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO fingerprints (target_url, content_hash, selector, observed_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(target_url) DO UPDATE SET
				content_hash = excluded.content_hash,
				selector = excluded.selector,
				observed_at = excluded.observed_at`,
			targetKey, next.Hash, next.Selector, next.ObservedAt)
		if err != nil {
			return fmt.Errorf("store: write fingerprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
