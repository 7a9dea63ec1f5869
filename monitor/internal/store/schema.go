package store

// Schema holds the persisted monitor state: exactly one fingerprint row
// per monitored target, plus an append-only run log.
const Schema = `
-- Last-seen fingerprint per target
CREATE TABLE IF NOT EXISTS fingerprints (
    target_url   TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    selector     TEXT NOT NULL,
    observed_at  INTEGER NOT NULL
);

-- Run log (observability): every run appends one row, failed ones included
CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    target_url       TEXT NOT NULL,
    outcome          TEXT NOT NULL,
    matched_selector TEXT NOT NULL DEFAULT '',
    error            TEXT NOT NULL DEFAULT '',
    duration_ms      INTEGER NOT NULL,
    started_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target_url, started_at DESC);
`
