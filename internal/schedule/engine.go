package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslabs/stackctl/internal/metrics"
	"github.com/nexuslabs/stackctl/pkg/types"
)

// Dispatcher triggers a lifecycle workflow. The call's own success only means
// the trigger was accepted; the downstream job's outcome is not observed here.
type Dispatcher interface {
	DispatchWorkflow(ctx context.Context, workflowFile string, inputs map[string]interface{}) error
}

// Notifier sends the teardown warning email. Configured reports whether the
// notification transport has everything it needs to send at all.
type Notifier interface {
	SendTeardownNotice(ctx context.Context, teardownTime, timezone string) error
	Configured() bool
}

// Recorder persists one structured record per decision branch.
// *logbook.Recorder satisfies it.
type Recorder interface {
	Record(ctx context.Context, level types.LogLevel, message string, metadata types.LogMetadata)
}

// EngineConfig holds the engine's static wiring.
type EngineConfig struct {
	// NotificationCron and TeardownCron are the two configured schedule
	// identities a tick is matched against, by raw string equality.
	NotificationCron string
	TeardownCron     string

	// HistoryLimit bounds the workflow run window fetched per tick.
	HistoryLimit int
}

// Engine decides, once per timer tick and without a human in the loop,
// whether to send a warning notification, trigger the automatic teardown, or
// do nothing. Each tick is decided independently from a fresh settings
// snapshot; the only state the engine ever writes back is clearing an
// expired delay override.
type Engine struct {
	config     EngineConfig
	settings   SettingsSource
	history    RunHistory
	dispatcher Dispatcher
	notifier   Notifier
	rec        Recorder
	sink       metrics.Sink
	clock      func() time.Time
}

// NewEngine creates a decision engine. A nil sink disables metrics.
func NewEngine(config EngineConfig, settings SettingsSource, history RunHistory, dispatcher Dispatcher, notifier Notifier, rec Recorder, sink metrics.Sink) *Engine {
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 100
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}

	return &Engine{
		config:     config,
		settings:   settings,
		history:    history,
		dispatcher: dispatcher,
		notifier:   notifier,
		rec:        rec,
		sink:       sink,
		clock:      time.Now,
	}
}

// Tick runs one decision cycle for the given schedule identity (the cron
// expression that fired). No failure escapes: a broken tick degrades to noop
// and the next tick starts clean.
func (e *Engine) Tick(ctx context.Context, scheduleIdentity string) (decision types.Decision) {
	e.sink.TickStarted()
	decision = types.DecisionNoop

	defer func() {
		if p := recover(); p != nil {
			e.rec.Record(ctx, types.LogLevelError, "panic during decision cycle", types.LogMetadata{
				"panic": fmt.Sprint(p),
				"cron":  scheduleIdentity,
			})
		}
		e.sink.DecisionRecorded(string(decision))
	}()

	decision = e.decide(ctx, scheduleIdentity, e.clock().UTC())
	return decision
}

func (e *Engine) decide(ctx context.Context, scheduleIdentity string, now time.Time) types.Decision {
	tickID := uuid.New().String()
	meta := func(extra types.LogMetadata) types.LogMetadata {
		m := types.LogMetadata{"tick_id": tickID, "cron": scheduleIdentity}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	cfg := LoadScheduleConfig(ctx, e.settings)

	if !cfg.Enabled {
		e.rec.Record(ctx, types.LogLevelDebug, "scheduled teardown is disabled", meta(nil))
		return types.DecisionNoop
	}

	if cfg.DelayActive(now) {
		remaining := cfg.DelayUntil.Sub(now)
		e.rec.Record(ctx, types.LogLevelInfo, "teardown delayed", meta(types.LogMetadata{
			"delay_until":     cfg.DelayUntil.Format(time.RFC3339),
			"hours_remaining": int(remaining.Hours()) + 1,
		}))
		return types.DecisionNoop
	}

	if cfg.DelayExpired(now) {
		// Single-shot override has elapsed: clear it and keep evaluating.
		if err := e.settings.Delete(ctx, types.KeyDelayUntil); err != nil {
			e.rec.Record(ctx, types.LogLevelWarn, "failed to clear expired delay", meta(types.LogMetadata{
				"error": err.Error(),
			}))
		} else {
			e.rec.Record(ctx, types.LogLevelInfo, "delay expired, teardown will proceed", meta(nil))
		}
	}

	state, histErr := ClassifyFromHistory(ctx, e.history, e.config.HistoryLimit)
	if histErr != nil {
		e.rec.Record(ctx, types.LogLevelWarn, "failed to check infra status, assuming deployed", meta(types.LogMetadata{
			"error": histErr.Error(),
		}))
	}

	// Only the two known end states suppress the remaining checks; running
	// and unknown fail open and proceed.
	if state == types.InfraStateTornDown || state == types.InfraStateOffline {
		e.rec.Record(ctx, types.LogLevelInfo, "infrastructure is not deployed, skipping scheduled teardown", meta(types.LogMetadata{
			"infra_state": string(state),
		}))
		return types.DecisionNoop
	}

	notificationCron := e.validatedCron(ctx, e.config.NotificationCron, "notification", meta)
	teardownCron := e.validatedCron(ctx, e.config.TeardownCron, "teardown", meta)

	switch scheduleIdentity {
	case notificationCron:
		e.executeNotify(ctx, cfg, meta)
		return types.DecisionNotify

	case teardownCron:
		e.executeTeardown(ctx, meta)
		return types.DecisionTeardown

	default:
		e.rec.Record(ctx, types.LogLevelWarn, "unknown schedule, no action", meta(types.LogMetadata{
			"infra_state": string(state),
		}))
		return types.DecisionNoop
	}
}

// validatedCron returns expr when it is a well-formed 5-field expression and
// an empty string otherwise, so a malformed configured expression can never
// match a tick identity.
func (e *Engine) validatedCron(ctx context.Context, expr, role string, meta func(types.LogMetadata) types.LogMetadata) string {
	if expr == "" || !ValidCronExpr(expr) {
		e.rec.Record(ctx, types.LogLevelWarn, "invalid configured cron expression", meta(types.LogMetadata{
			"role":       role,
			"expression": expr,
		}))
		return ""
	}
	return expr
}

func (e *Engine) executeNotify(ctx context.Context, cfg types.ScheduleConfig, meta func(types.LogMetadata) types.LogMetadata) {
	switch {
	case cfg.SilentMode:
		e.rec.Record(ctx, types.LogLevelInfo, "silent mode enabled, skipping shutdown notification", meta(nil))
		return
	case !cfg.NotifyOnShutdown:
		e.rec.Record(ctx, types.LogLevelInfo, "shutdown notification disabled by user", meta(nil))
		return
	case !e.notifier.Configured():
		e.rec.Record(ctx, types.LogLevelWarn, "notification transport not configured, skipping", meta(nil))
		return
	}

	if err := e.notifier.SendTeardownNotice(ctx, cfg.TeardownTime, cfg.Timezone); err != nil {
		e.sink.NotifyErrored()
		e.rec.Record(ctx, types.LogLevelError, "failed to send teardown notification", meta(types.LogMetadata{
			"error": err.Error(),
		}))
		return
	}

	e.rec.Record(ctx, types.LogLevelInfo, "teardown notification sent", meta(nil))
}

func (e *Engine) executeTeardown(ctx context.Context, meta func(types.LogMetadata) types.LogMetadata) {
	inputs := map[string]interface{}{"confirm": "TEARDOWN"}

	if err := e.dispatcher.DispatchWorkflow(ctx, types.WorkflowTeardown, inputs); err != nil {
		e.sink.DispatchErrored()
		e.rec.Record(ctx, types.LogLevelError, "failed to trigger teardown workflow", meta(types.LogMetadata{
			"error": err.Error(),
		}))
		return
	}

	e.rec.Record(ctx, types.LogLevelInfo, "teardown workflow triggered", meta(nil))
}
