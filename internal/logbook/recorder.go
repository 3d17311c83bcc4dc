// Package logbook persists structured log records so a decision taken by the
// scheduler can be reconstructed after the fact. Recording is best-effort:
// a failure to persist is printed to the process log and never propagated,
// because a broken log sink must not abort the operation being logged.
package logbook

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// Sink is where records land. *store.LogStore satisfies it.
type Sink interface {
	Insert(ctx context.Context, entry *types.LogEntry) error
}

// Recorder writes structured records for one source ("api", "scheduler", ...).
type Recorder struct {
	source string
	sink   Sink
}

// NewRecorder creates a recorder for the given source. A nil sink yields a
// recorder that only prints to the process log.
func NewRecorder(source string, sink Sink) *Recorder {
	return &Recorder{source: source, sink: sink}
}

// Record persists one structured log record
func (r *Recorder) Record(ctx context.Context, level types.LogLevel, message string, metadata types.LogMetadata) {
	log.Printf("[%s] %s: %s", level, r.source, message)

	if r.sink == nil {
		return
	}

	entry := &types.LogEntry{
		ID:        ksuid.New().String(),
		Source:    r.source,
		Level:     level,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.sink.Insert(ctx, entry); err != nil {
		log.Printf("logbook: failed to persist record: %v", err)
	}
}

// Debug records a debug-level message
func (r *Recorder) Debug(ctx context.Context, message string, metadata types.LogMetadata) {
	r.Record(ctx, types.LogLevelDebug, message, metadata)
}

// Info records an info-level message
func (r *Recorder) Info(ctx context.Context, message string, metadata types.LogMetadata) {
	r.Record(ctx, types.LogLevelInfo, message, metadata)
}

// Warn records a warn-level message
func (r *Recorder) Warn(ctx context.Context, message string, metadata types.LogMetadata) {
	r.Record(ctx, types.LogLevelWarn, message, metadata)
}

// Error records an error-level message. The error text is truncated so one
// oversized collaborator response cannot bloat the log table.
func (r *Recorder) Error(ctx context.Context, message string, err error, metadata types.LogMetadata) {
	if err != nil {
		if metadata == nil {
			metadata = types.LogMetadata{}
		}
		metadata["error"] = Truncate(err.Error(), 500)
	}
	r.Record(ctx, types.LogLevelError, message, metadata)
}

// Truncate caps s at max bytes
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
