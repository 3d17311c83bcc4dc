// Package metrics records scheduler observability counters.
// All methods are fire-and-forget: implementations never block and never
// propagate errors to the caller.
package metrics

// Sink receives scheduler metrics.
type Sink interface {
	// TickStarted counts one decision cycle.
	TickStarted()

	// DecisionRecorded counts the outcome of one decision cycle.
	DecisionRecorded(decision string)

	// DispatchErrored counts a failed workflow-dispatch call.
	DispatchErrored()

	// NotifyErrored counts a failed notification send.
	NotifyErrored()
}

// NoopSink discards all metrics.
type NoopSink struct{}

// NewNoopSink creates a sink that discards everything.
func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) TickStarted()                    {}
func (*NoopSink) DecisionRecorded(decision string) {}
func (*NoopSink) DispatchErrored()                {}
func (*NoopSink) NotifyErrored()                  {}
