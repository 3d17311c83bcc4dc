package store

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup. The config table is the
// persisted key-value settings store; logs holds structured records written
// by the API, the scheduler, and workflow jobs.
const schema = `
CREATE TABLE IF NOT EXISTS config (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS logs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	run_id     TEXT,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	metadata   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs (created_at);
CREATE INDEX IF NOT EXISTS idx_logs_source ON logs (source);
`

// Migrate applies the schema
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
