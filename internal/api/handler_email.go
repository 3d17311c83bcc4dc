package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// EmailSettingsHandler manages email notification preferences
type EmailSettingsHandler struct {
	settings Settings
}

// NewEmailSettingsHandler creates a new email settings handler
func NewEmailSettingsHandler(settings Settings) *EmailSettingsHandler {
	return &EmailSettingsHandler{settings: settings}
}

// EmailSettingsResponse is the GET /email-settings payload
type EmailSettingsResponse struct {
	NotifyOnShutdown bool `json:"notifyOnShutdown"`
	NotifyOnSpinup   bool `json:"notifyOnSpinup"`
	SilentMode       bool `json:"silentMode"`
}

// UpdateEmailSettingsRequest is the POST /email-settings payload
type UpdateEmailSettingsRequest struct {
	NotifyOnShutdown *bool `json:"notifyOnShutdown"`
	NotifyOnSpinup   *bool `json:"notifyOnSpinup"`
	SilentMode       *bool `json:"silentMode"`
}

// Get returns the current notification preferences
func (h *EmailSettingsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	return SuccessOK(c, EmailSettingsResponse{
		NotifyOnShutdown: h.settings.GetBool(ctx, types.KeyNotifyOnShutdown, true),
		NotifyOnSpinup:   h.settings.GetBool(ctx, types.KeyNotifyOnSpinup, true),
		SilentMode:       h.settings.GetBool(ctx, types.KeySilentMode, false),
	})
}

// Update applies a partial notification preference change. Enabling any
// individual notification also lifts silent mode, so a user who asks for
// emails starts receiving them without a second toggle.
func (h *EmailSettingsHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req UpdateEmailSettingsRequest
	if err := c.Bind(&req); err != nil {
		return ErrorBadRequest(c, "invalid request body")
	}

	liftSilent := false

	if req.NotifyOnShutdown != nil {
		if err := h.settings.Set(ctx, types.KeyNotifyOnShutdown, strconv.FormatBool(*req.NotifyOnShutdown)); err != nil {
			return ErrorInternal(c, "failed to save notification preference")
		}
		liftSilent = liftSilent || *req.NotifyOnShutdown
	}

	if req.NotifyOnSpinup != nil {
		if err := h.settings.Set(ctx, types.KeyNotifyOnSpinup, strconv.FormatBool(*req.NotifyOnSpinup)); err != nil {
			return ErrorInternal(c, "failed to save notification preference")
		}
		liftSilent = liftSilent || *req.NotifyOnSpinup
	}

	if req.SilentMode != nil {
		if err := h.settings.Set(ctx, types.KeySilentMode, strconv.FormatBool(*req.SilentMode)); err != nil {
			return ErrorInternal(c, "failed to save silent mode")
		}
	} else if liftSilent {
		if err := h.settings.Set(ctx, types.KeySilentMode, "false"); err != nil {
			return ErrorInternal(c, "failed to save silent mode")
		}
	}

	return h.Get(c)
}
