package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslabs/stackctl/internal/api"
	"github.com/nexuslabs/stackctl/internal/store"
)

func newTestServer(t *testing.T) *api.Server {
	t.Helper()

	config := api.DefaultServerConfig()
	config.Version = "test-build"
	config.AllowDisable = true

	return api.NewServer(config, store.New(nil), &fakeActions{})
}

func TestServer_HealthCheck(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_Version(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test-build", body["version"])
}

func TestServer_RoutesRegistered(t *testing.T) {
	srv := newTestServer(t)

	want := map[string]string{
		"/health":                http.MethodGet,
		"/ready":                 http.MethodGet,
		"/api/v1/version":        http.MethodGet,
		"/api/v1/schedule":       http.MethodPost,
		"/api/v1/email-settings": http.MethodPost,
		"/api/v1/status":         http.MethodGet,
		"/api/v1/deploy":         http.MethodPost,
		"/api/v1/spin-up":        http.MethodPost,
		"/api/v1/teardown":       http.MethodPost,
		"/api/v1/destroy":        http.MethodPost,
		"/api/v1/logs":           http.MethodDelete,
	}

	registered := map[string]bool{}
	for _, route := range srv.Echo().Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for path, method := range want {
		assert.True(t, registered[method+" "+path], "expected route %s %s", method, path)
	}
}
