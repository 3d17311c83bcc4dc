package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"github.com/nexuslabs/stackctl/internal/store"
	"github.com/nexuslabs/stackctl/pkg/types"
)

// LogsHandler exposes the persisted operational log
type LogsHandler struct {
	logs Logs
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logs Logs) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// AppendLogRequest is the POST /logs payload
type AppendLogRequest struct {
	Source   string            `json:"source" validate:"required,max=64"`
	Level    string            `json:"level" validate:"required"`
	Message  string            `json:"message" validate:"required,max=4096"`
	RunID    *string           `json:"runId"`
	Metadata types.LogMetadata `json:"metadata"`
}

// ListLogsResponse is the GET /logs payload
type ListLogsResponse struct {
	Logs  []*types.LogEntry `json:"logs"`
	Count int               `json:"count"`
}

// PurgeLogsResponse is the DELETE /logs payload
type PurgeLogsResponse struct {
	Deleted int64 `json:"deleted"`
}

// List returns log entries, newest first, with optional source and level
// filters plus limit/offset pagination
func (h *LogsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filters := store.LogFilters{
		Source: c.QueryParam("source"),
		Level:  c.QueryParam("level"),
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return ErrorBadRequest(c, "limit must be a positive integer")
		}
		filters.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return ErrorBadRequest(c, "offset must be a non-negative integer")
		}
		filters.Offset = n
	}

	entries, err := h.logs.List(ctx, filters)
	if err != nil {
		return ErrorInternal(c, "failed to list logs")
	}

	return SuccessOK(c, ListLogsResponse{Logs: entries, Count: len(entries)})
}

// Append stores one log entry on behalf of an external producer, such as a
// workflow job reporting progress
func (h *LogsHandler) Append(c echo.Context) error {
	ctx := c.Request().Context()

	var req AppendLogRequest
	if err := c.Bind(&req); err != nil {
		return ErrorBadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	level := types.LogLevel(req.Level)
	if !types.ValidLogLevel(level) {
		return ErrorBadRequest(c, "level must be one of debug, info, warn, error")
	}

	entry := &types.LogEntry{
		ID:        ksuid.New().String(),
		Source:    req.Source,
		RunID:     req.RunID,
		Level:     level,
		Message:   req.Message,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.logs.Insert(ctx, entry); err != nil {
		return ErrorInternal(c, "failed to store log entry")
	}

	return SuccessCreated(c, entry)
}

// Purge deletes entries older than the given number of days (default 30)
func (h *LogsHandler) Purge(c echo.Context) error {
	ctx := c.Request().Context()

	days := 30
	if v := c.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return ErrorBadRequest(c, "days must be a positive integer")
		}
		days = n
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	deleted, err := h.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return ErrorInternal(c, "failed to purge logs")
	}

	return SuccessOK(c, PurgeLogsResponse{Deleted: deleted})
}
