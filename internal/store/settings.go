package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsStore handles the persisted key-value configuration table.
// Every read is a fresh snapshot; callers never cache values across ticks.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// Get retrieves a setting, returning defaultValue when the key is absent
// or the query fails. Missing configuration must never abort a caller.
func (s *SettingsStore) Get(ctx context.Context, key, defaultValue string) string {
	query := `SELECT value FROM config WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		return defaultValue
	}

	return value
}

// GetBool retrieves a setting and interprets it as the string "true".
func (s *SettingsStore) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	def := "false"
	if defaultValue {
		def = "true"
	}
	return s.Get(ctx, key, def) == "true"
}

// GetTime retrieves a setting holding an RFC 3339 instant. It returns nil
// when the key is absent or the stored value does not parse.
func (s *SettingsStore) GetTime(ctx context.Context, key string) *time.Time {
	raw := s.Get(ctx, key, "")
	if raw == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}

	return &t
}

// Set upserts a setting
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO config (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("upsert config key %s: %w", key, err)
	}

	return nil
}

// SetTime upserts a setting holding an RFC 3339 instant
func (s *SettingsStore) SetTime(ctx context.Context, key string, t time.Time) error {
	return s.Set(ctx, key, t.UTC().Format(time.RFC3339))
}

// Delete removes a setting. Deleting an absent key is not an error, so the
// call is safe to repeat.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM config WHERE key = $1`

	_, err := s.pool.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("delete config key %s: %w", key, err)
	}

	return nil
}

// GetStrict retrieves a setting, returning ErrNotFound when the key is absent.
func (s *SettingsStore) GetStrict(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM config WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query config key %s: %w", key, err)
	}

	return value, nil
}
