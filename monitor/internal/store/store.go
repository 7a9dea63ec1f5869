// CLAUDE:SUMMARY SQLite fingerprint baseline (one row per target) plus append-only run log; CompareAndUpdate is a single transaction.
// Package store persists the last-seen fingerprint per monitored target
// between independent runs, and keeps a run log. Runs are sequential per
// target (the external scheduler guarantees no overlap), but
// CompareAndUpdate is still an atomic read-modify-write so a relaxed
// scheduler cannot race two runs into overwriting each other's baseline.
package store

import (
	"database/sql"

	"github.com/hazyhaar/pagevigil/dbopen"
)

// Store wraps the monitor state database.
type Store struct {
	DB *sql.DB
}

// Open opens (and if needed creates) the state database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// New wraps an already-opened database. The caller owns the schema.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
