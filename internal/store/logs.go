package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// LogStore handles persisted structured log records
type LogStore struct {
	pool *pgxpool.Pool
}

// LogFilters narrows a log listing
type LogFilters struct {
	Source string
	Level  string
	Limit  int
	Offset int
}

// Insert appends a log record
func (s *LogStore) Insert(ctx context.Context, entry *types.LogEntry) error {
	query := `
		INSERT INTO logs (id, source, run_id, level, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, query,
		entry.ID,
		entry.Source,
		entry.RunID,
		entry.Level,
		entry.Message,
		entry.Metadata,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}

	return nil
}

// List retrieves log records, most recent first
func (s *LogStore) List(ctx context.Context, filters LogFilters) ([]*types.LogEntry, error) {
	query := `
		SELECT id, source, run_id, level, message, metadata, created_at
		FROM logs
		WHERE ($1 = '' OR source = $1)
		  AND ($2 = '' OR level = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	limit := filters.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, query, filters.Source, filters.Level, limit, filters.Offset)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	entries := []*types.LogEntry{}
	for rows.Next() {
		var entry types.LogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Source,
			&entry.RunID,
			&entry.Level,
			&entry.Message,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}

	return entries, nil
}

// DeleteOlderThan purges log records created before the cutoff and returns
// the number of rows removed
func (s *LogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM logs WHERE created_at < $1`

	tag, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old logs: %w", err)
	}

	return tag.RowsAffected(), nil
}
