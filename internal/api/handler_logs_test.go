package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslabs/stackctl/internal/api"
	"github.com/nexuslabs/stackctl/pkg/types"
)

func TestLogsHandler_List(t *testing.T) {
	logs := &fakeLogs{entries: []*types.LogEntry{
		{ID: "1", Source: "scheduler", Level: types.LogLevelInfo, Message: "teardown workflow triggered"},
		{ID: "2", Source: "api", Level: types.LogLevelWarn, Message: "slow request"},
	}}
	h := api.NewLogsHandler(logs)

	t.Run("lists everything without filters", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/logs", "")

		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp api.ListLogsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("filters by source", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/logs?source=scheduler", "")

		require.NoError(t, h.List(c))

		var resp api.ListLogsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "scheduler", resp.Logs[0].Source)
	})

	t.Run("rejects a malformed limit", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/logs?limit=banana", "")

		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogsHandler_Append(t *testing.T) {
	t.Run("stores a complete entry", func(t *testing.T) {
		logs := &fakeLogs{}
		h := api.NewLogsHandler(logs)

		body := `{"source":"workflow","level":"info","message":"spin-up finished","runId":"12345","metadata":{"duration_s":42}}`
		c, rec := newContext(t, http.MethodPost, "/api/v1/logs", body)

		require.NoError(t, h.Append(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		require.Len(t, logs.entries, 1)
		entry := logs.entries[0]
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "workflow", entry.Source)
		assert.Equal(t, types.LogLevelInfo, entry.Level)
		require.NotNil(t, entry.RunID)
		assert.Equal(t, "12345", *entry.RunID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		h := api.NewLogsHandler(&fakeLogs{})
		c, rec := newContext(t, http.MethodPost, "/api/v1/logs", `{"source":"workflow","level":"loud","message":"hi"}`)

		require.NoError(t, h.Append(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing message", func(t *testing.T) {
		h := api.NewLogsHandler(&fakeLogs{})
		c, _ := newContext(t, http.MethodPost, "/api/v1/logs", `{"source":"workflow","level":"info"}`)

		err := h.Append(c)
		assert.Error(t, err)
	})
}

func TestLogsHandler_Purge(t *testing.T) {
	t.Run("purges with the default window", func(t *testing.T) {
		logs := &fakeLogs{deleted: 7}
		h := api.NewLogsHandler(logs)
		c, rec := newContext(t, http.MethodDelete, "/api/v1/logs", "")

		require.NoError(t, h.Purge(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp api.PurgeLogsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.Deleted)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), logs.cutoff, time.Minute)
	})

	t.Run("honors an explicit window", func(t *testing.T) {
		logs := &fakeLogs{}
		h := api.NewLogsHandler(logs)
		c, rec := newContext(t, http.MethodDelete, "/api/v1/logs?days=7", "")

		require.NoError(t, h.Purge(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), logs.cutoff, time.Minute)
	})

	t.Run("rejects a non-positive window", func(t *testing.T) {
		h := api.NewLogsHandler(&fakeLogs{})
		c, rec := newContext(t, http.MethodDelete, "/api/v1/logs?days=0", "")

		require.NoError(t, h.Purge(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
