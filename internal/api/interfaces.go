package api

import (
	"context"
	"time"

	"github.com/nexuslabs/stackctl/internal/store"
	"github.com/nexuslabs/stackctl/pkg/types"
)

// Actions is the workflow control surface the API drives. It is
// satisfied by the GitHub client and faked in tests.
type Actions interface {
	ListRecentRuns(ctx context.Context, limit int) ([]types.WorkflowRun, error)
	DispatchWorkflow(ctx context.Context, workflowFile string, inputs map[string]interface{}) error
	Configured() bool
}

// Settings is the key-value settings surface the handlers read and write.
type Settings interface {
	Get(ctx context.Context, key, defaultValue string) string
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetTime(ctx context.Context, key string) *time.Time
	Set(ctx context.Context, key, value string) error
	SetTime(ctx context.Context, key string, t time.Time) error
	Delete(ctx context.Context, key string) error
}

// Logs is the persisted log surface exposed over the API.
type Logs interface {
	Insert(ctx context.Context, entry *types.LogEntry) error
	List(ctx context.Context, filters store.LogFilters) ([]*types.LogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Recorder records operational events to the logbook.
type Recorder interface {
	Record(ctx context.Context, level types.LogLevel, message string, metadata types.LogMetadata)
}
