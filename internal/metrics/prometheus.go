package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	ticksTotal          prometheus.Counter
	decisionsTotal      *prometheus.CounterVec
	dispatchErrorsTotal prometheus.Counter
	notifyErrorsTotal   prometheus.Counter
}

// NewPrometheusSink creates a Prometheus metrics sink registered on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackctl_scheduler_ticks_total",
			Help: "Total number of decision cycles executed.",
		}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stackctl_scheduler_decisions_total",
			Help: "Decision cycle outcomes by decision.",
		}, []string{"decision"}),
		dispatchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackctl_dispatch_errors_total",
			Help: "Total number of failed workflow dispatch calls.",
		}),
		notifyErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackctl_notify_errors_total",
			Help: "Total number of failed notification sends.",
		}),
	}

	for _, c := range []prometheus.Collector{
		s.ticksTotal, s.decisionsTotal, s.dispatchErrorsTotal, s.notifyErrorsTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Printf("metrics: failed to register collector: %v", err)
		}
	}

	return s
}

func (s *PrometheusSink) TickStarted() {
	s.ticksTotal.Inc()
}

func (s *PrometheusSink) DecisionRecorded(decision string) {
	s.decisionsTotal.WithLabelValues(decision).Inc()
}

func (s *PrometheusSink) DispatchErrored() {
	s.dispatchErrorsTotal.Inc()
}

func (s *PrometheusSink) NotifyErrored() {
	s.notifyErrorsTotal.Inc()
}
