package api_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexuslabs/stackctl/internal/api"
	"github.com/nexuslabs/stackctl/internal/store"
	"github.com/nexuslabs/stackctl/pkg/types"
)

func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = api.NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type fakeSettings struct {
	values  map[string]string
	times   map[string]time.Time
	deleted []string
	setErr  error
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		values: map[string]string{},
		times:  map[string]time.Time{},
	}
}

func (f *fakeSettings) Get(ctx context.Context, key, defaultValue string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return defaultValue
}

func (f *fakeSettings) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	if v, ok := f.values[key]; ok {
		return v == "true"
	}
	return defaultValue
}

func (f *fakeSettings) GetTime(ctx context.Context, key string) *time.Time {
	if v, ok := f.times[key]; ok {
		return &v
	}
	return nil
}

func (f *fakeSettings) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettings) SetTime(ctx context.Context, key string, t time.Time) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.times[key] = t
	return nil
}

func (f *fakeSettings) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.values, key)
	delete(f.times, key)
	return nil
}

type fakeActions struct {
	configured bool
	runs       []types.WorkflowRun
	listErr    error
	dispatched []string
	inputs     []map[string]interface{}
	dispErr    error
}

func (f *fakeActions) ListRecentRuns(ctx context.Context, limit int) ([]types.WorkflowRun, error) {
	return f.runs, f.listErr
}

func (f *fakeActions) DispatchWorkflow(ctx context.Context, workflowFile string, inputs map[string]interface{}) error {
	if f.dispErr != nil {
		return f.dispErr
	}
	f.dispatched = append(f.dispatched, workflowFile)
	f.inputs = append(f.inputs, inputs)
	return nil
}

func (f *fakeActions) Configured() bool { return f.configured }

type fakeLogs struct {
	entries   []*types.LogEntry
	insertErr error
	listErr   error
	deleted   int64
	cutoff    time.Time
}

func (f *fakeLogs) Insert(ctx context.Context, entry *types.LogEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogs) List(ctx context.Context, filters store.LogFilters) ([]*types.LogEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*types.LogEntry
	for _, e := range f.entries {
		if filters.Source != "" && e.Source != filters.Source {
			continue
		}
		if filters.Level != "" && string(e.Level) != filters.Level {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeLogs) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}

type nopRecorder struct{}

func (nopRecorder) Record(ctx context.Context, level types.LogLevel, message string, metadata types.LogMetadata) {
}
