package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslabs/stackctl/internal/store"
	"github.com/nexuslabs/stackctl/pkg/types"
)

// Integration tests run against a real PostgreSQL named by TEST_DATABASE_URL
// and are skipped otherwise.

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	st, err := store.NewStore(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, st.Migrate(ctx))
	return st
}

func TestSettingsStore(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	key := "test_" + ksuid.New().String()

	t.Run("get falls back to the default for an absent key", func(t *testing.T) {
		assert.Equal(t, "fallback", st.Settings.Get(ctx, key, "fallback"))
		assert.True(t, st.Settings.GetBool(ctx, key, true))
		assert.Nil(t, st.Settings.GetTime(ctx, key))
	})

	t.Run("set then get round trips", func(t *testing.T) {
		require.NoError(t, st.Settings.Set(ctx, key, "true"))
		assert.Equal(t, "true", st.Settings.Get(ctx, key, ""))
		assert.True(t, st.Settings.GetBool(ctx, key, false))
	})

	t.Run("set overwrites an existing value", func(t *testing.T) {
		require.NoError(t, st.Settings.Set(ctx, key, "false"))
		assert.Equal(t, "false", st.Settings.Get(ctx, key, ""))
		assert.False(t, st.Settings.GetBool(ctx, key, true))
	})

	t.Run("set time then get time round trips", func(t *testing.T) {
		want := time.Now().Add(6 * time.Hour).UTC().Truncate(time.Second)
		require.NoError(t, st.Settings.SetTime(ctx, key, want))

		got := st.Settings.GetTime(ctx, key)
		require.NotNil(t, got)
		assert.True(t, want.Equal(*got))
	})

	t.Run("delete removes the key and is idempotent", func(t *testing.T) {
		require.NoError(t, st.Settings.Delete(ctx, key))
		assert.Equal(t, "gone", st.Settings.Get(ctx, key, "gone"))
		require.NoError(t, st.Settings.Delete(ctx, key))
	})

	t.Run("strict get reports an absent key", func(t *testing.T) {
		_, err := st.Settings.GetStrict(ctx, key)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLogStore(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	source := "test_" + ksuid.New().String()

	insert := func(t *testing.T, level types.LogLevel, message string, age time.Duration) {
		t.Helper()
		require.NoError(t, st.Logs.Insert(ctx, &types.LogEntry{
			ID:        ksuid.New().String(),
			Source:    source,
			Level:     level,
			Message:   message,
			Metadata:  types.LogMetadata{"tick_id": "t-1"},
			CreatedAt: time.Now().UTC().Add(-age),
		}))
	}

	t.Run("insert then list returns newest first", func(t *testing.T) {
		insert(t, types.LogLevelInfo, "older entry", 2*time.Hour)
		insert(t, types.LogLevelWarn, "newer entry", time.Minute)

		entries, err := st.Logs.List(ctx, store.LogFilters{Source: source})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "newer entry", entries[0].Message)
		assert.Equal(t, "t-1", entries[0].Metadata["tick_id"])
	})

	t.Run("level filter narrows the result", func(t *testing.T) {
		entries, err := st.Logs.List(ctx, store.LogFilters{Source: source, Level: "warn"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, types.LogLevelWarn, entries[0].Level)
	})

	t.Run("limit and offset page through", func(t *testing.T) {
		entries, err := st.Logs.List(ctx, store.LogFilters{Source: source, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "older entry", entries[0].Message)
	})

	t.Run("delete older than removes only aged entries", func(t *testing.T) {
		deleted, err := st.Logs.DeleteOlderThan(ctx, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, deleted, int64(1))

		entries, err := st.Logs.List(ctx, store.LogFilters{Source: source})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "newer entry", entries[0].Message)
	})
}
