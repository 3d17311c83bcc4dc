package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslabs/stackctl/internal/api"
	"github.com/nexuslabs/stackctl/pkg/types"
)

func TestEmailSettingsHandler_Get(t *testing.T) {
	t.Run("returns defaults for an empty store", func(t *testing.T) {
		h := api.NewEmailSettingsHandler(newFakeSettings())
		c, rec := newContext(t, http.MethodGet, "/api/v1/email-settings", "")

		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp api.EmailSettingsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.NotifyOnShutdown)
		assert.True(t, resp.NotifyOnSpinup)
		assert.False(t, resp.SilentMode)
	})

	t.Run("reflects stored values", func(t *testing.T) {
		settings := newFakeSettings()
		settings.values[types.KeyNotifyOnShutdown] = "false"
		settings.values[types.KeySilentMode] = "true"

		h := api.NewEmailSettingsHandler(settings)
		c, rec := newContext(t, http.MethodGet, "/api/v1/email-settings", "")

		require.NoError(t, h.Get(c))

		var resp api.EmailSettingsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.NotifyOnShutdown)
		assert.True(t, resp.SilentMode)
	})
}

func TestEmailSettingsHandler_Update(t *testing.T) {
	t.Run("stores a partial update", func(t *testing.T) {
		settings := newFakeSettings()
		h := api.NewEmailSettingsHandler(settings)

		c, rec := newContext(t, http.MethodPost, "/api/v1/email-settings", `{"notifyOnShutdown":false}`)

		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "false", settings.values[types.KeyNotifyOnShutdown])
		assert.NotContains(t, settings.values, types.KeyNotifyOnSpinup)
	})

	t.Run("enabling a notification lifts silent mode", func(t *testing.T) {
		settings := newFakeSettings()
		settings.values[types.KeySilentMode] = "true"
		h := api.NewEmailSettingsHandler(settings)

		c, _ := newContext(t, http.MethodPost, "/api/v1/email-settings", `{"notifyOnSpinup":true}`)

		require.NoError(t, h.Update(c))
		assert.Equal(t, "false", settings.values[types.KeySilentMode])
	})

	t.Run("explicit silent mode wins over the lift", func(t *testing.T) {
		settings := newFakeSettings()
		h := api.NewEmailSettingsHandler(settings)

		c, _ := newContext(t, http.MethodPost, "/api/v1/email-settings", `{"notifyOnShutdown":true,"silentMode":true}`)

		require.NoError(t, h.Update(c))
		assert.Equal(t, "true", settings.values[types.KeySilentMode])
	})

	t.Run("disabling a notification leaves silent mode alone", func(t *testing.T) {
		settings := newFakeSettings()
		h := api.NewEmailSettingsHandler(settings)

		c, _ := newContext(t, http.MethodPost, "/api/v1/email-settings", `{"notifyOnShutdown":false}`)

		require.NoError(t, h.Update(c))
		assert.NotContains(t, settings.values, types.KeySilentMode)
	})
}
