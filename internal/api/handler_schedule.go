package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexuslabs/stackctl/internal/schedule"
	"github.com/nexuslabs/stackctl/pkg/types"
)

// ScheduleHandler manages the teardown schedule configuration
type ScheduleHandler struct {
	settings     Settings
	allowDisable bool
	rec          Recorder
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(settings Settings, allowDisable bool, rec Recorder) *ScheduleHandler {
	return &ScheduleHandler{
		settings:     settings,
		allowDisable: allowDisable,
		rec:          rec,
	}
}

// TimeRemaining describes how long until the next teardown fires
type TimeRemaining struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"totalMinutes"`
}

// ScheduleResponse is the GET /schedule payload
type ScheduleResponse struct {
	Enabled          bool           `json:"enabled"`
	Timezone         string         `json:"timezone"`
	TeardownTime     string         `json:"teardownTime"`
	NotificationTime string         `json:"notificationTime"`
	DelayUntil       *time.Time     `json:"delayUntil,omitempty"`
	NextTeardown     *time.Time     `json:"nextTeardown,omitempty"`
	TimeRemaining    *TimeRemaining `json:"timeRemaining,omitempty"`
	AllowDisable     bool           `json:"allowDisable"`
}

// UpdateScheduleRequest is the POST /schedule payload. Pointer fields are
// optional; only supplied fields change.
type UpdateScheduleRequest struct {
	Enabled          *bool   `json:"enabled"`
	Timezone         *string `json:"timezone"`
	TeardownTime     *string `json:"teardownTime"`
	NotificationTime *string `json:"notificationTime"`
	DelayHours       *int    `json:"delayHours" validate:"omitempty,min=1,max=72"`
}

// Get returns the current schedule configuration together with the
// projected next teardown instant
func (h *ScheduleHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	cfg := schedule.LoadScheduleConfig(ctx, h.settings)

	resp := ScheduleResponse{
		Enabled:          cfg.Enabled,
		Timezone:         cfg.Timezone,
		TeardownTime:     cfg.TeardownTime,
		NotificationTime: cfg.NotificationTime,
		DelayUntil:       cfg.DelayUntil,
		AllowDisable:     h.allowDisable,
	}

	if cfg.Enabled {
		now := time.Now()
		next, err := schedule.NextOccurrence(cfg.TeardownTime, cfg.Timezone, now)
		if err == nil {
			// An active delay pushes the next teardown past the scheduled slot.
			if cfg.DelayActive(now) && cfg.DelayUntil.After(next) {
				next = *cfg.DelayUntil
			}
			remaining := next.Sub(now)
			total := int(remaining.Minutes())
			resp.NextTeardown = &next
			resp.TimeRemaining = &TimeRemaining{
				Hours:        total / 60,
				Minutes:      total % 60,
				TotalMinutes: total,
			}
		}
	}

	return SuccessOK(c, resp)
}

// Update applies a partial schedule configuration change
func (h *ScheduleHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req UpdateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return ErrorBadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Enabled != nil && !*req.Enabled && !h.allowDisable {
		return ErrorForbidden(c, "disabling the automatic teardown is not permitted")
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return ErrorBadRequest(c, fmt.Sprintf("unknown timezone %q", *req.Timezone))
		}
		if err := h.settings.Set(ctx, types.KeyTimezone, *req.Timezone); err != nil {
			return ErrorInternal(c, "failed to save timezone")
		}
	}

	if req.TeardownTime != nil {
		if !schedule.ValidTimeOfDay(*req.TeardownTime) {
			return ErrorBadRequest(c, "teardownTime must be HH:MM in 24-hour format")
		}
		if err := h.settings.Set(ctx, types.KeyTeardownTime, *req.TeardownTime); err != nil {
			return ErrorInternal(c, "failed to save teardown time")
		}
	}

	if req.NotificationTime != nil {
		if !schedule.ValidTimeOfDay(*req.NotificationTime) {
			return ErrorBadRequest(c, "notificationTime must be HH:MM in 24-hour format")
		}
		if err := h.settings.Set(ctx, types.KeyNotificationTime, *req.NotificationTime); err != nil {
			return ErrorInternal(c, "failed to save notification time")
		}
	}

	if req.Enabled != nil {
		if err := h.settings.Set(ctx, types.KeyTeardownEnabled, strconv.FormatBool(*req.Enabled)); err != nil {
			return ErrorInternal(c, "failed to save enabled flag")
		}
		// Turning the schedule off drops any pending delay with it
		if !*req.Enabled {
			if err := h.settings.Delete(ctx, types.KeyDelayUntil); err != nil {
				h.rec.Record(ctx, types.LogLevelWarn, "failed to clear teardown delay", types.LogMetadata{
					"error": err.Error(),
				})
			}
		}
		h.rec.Record(ctx, types.LogLevelInfo, "teardown schedule toggled", types.LogMetadata{
			"enabled": *req.Enabled,
		})
	}

	if req.DelayHours != nil {
		until := time.Now().Add(time.Duration(*req.DelayHours) * time.Hour).UTC()
		if err := h.settings.SetTime(ctx, types.KeyDelayUntil, until); err != nil {
			return ErrorInternal(c, "failed to save teardown delay")
		}
		h.rec.Record(ctx, types.LogLevelInfo, "teardown delayed", types.LogMetadata{
			"delay_hours": *req.DelayHours,
			"delay_until": until.Format(time.RFC3339),
		})
	}

	return h.Get(c)
}
