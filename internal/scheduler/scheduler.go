// Package scheduler hosts the decision engine on wall-clock cron triggers and
// runs periodic housekeeping on the persisted log table.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nexuslabs/stackctl/internal/schedule"
	"github.com/nexuslabs/stackctl/internal/store"
)

// Config holds scheduler configuration
type Config struct {
	NotificationCron  string
	TeardownCron      string
	TickTimeout       time.Duration
	RetentionDays     int
	RetentionInterval time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		TickTimeout:       2 * time.Minute,
		RetentionDays:     30,
		RetentionInterval: 12 * time.Hour,
	}
}

// Scheduler fires the decision engine at the configured cron slots
type Scheduler struct {
	config *Config
	engine *schedule.Engine
	logs   *store.LogStore
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config *Config, engine *schedule.Engine, logs *store.LogStore) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if config.TickTimeout <= 0 {
		config.TickTimeout = 2 * time.Minute
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = 30
	}
	if config.RetentionInterval <= 0 {
		config.RetentionInterval = 12 * time.Hour
	}

	return &Scheduler{
		config: config,
		engine: engine,
		logs:   logs,
		cron:   cron.New(),
	}
}

// Start registers the cron entries and blocks until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	// Each entry carries its own expression as the tick identity, so the
	// engine can tell which of the two schedules fired.
	exprs := []string{s.config.NotificationCron}
	if s.config.TeardownCron != s.config.NotificationCron {
		exprs = append(exprs, s.config.TeardownCron)
	}

	for _, expr := range exprs {
		identity := expr
		if _, err := s.cron.AddFunc(expr, func() { s.tick(identity) }); err != nil {
			log.Printf("Scheduler: rejected cron expression %q: %v", expr, err)
		}
	}

	log.Printf("Scheduler starting (notification=%q teardown=%q retention=%dd)",
		s.config.NotificationCron, s.config.TeardownCron, s.config.RetentionDays)

	s.cron.Start()

	// Run retention immediately, then on the interval
	s.sweepLogs()

	ticker := time.NewTicker(s.config.RetentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Printf("Scheduler shutting down")
			stopCtx := s.cron.Stop()
			<-stopCtx.Done()
			return s.ctx.Err()

		case <-ticker.C:
			s.sweepLogs()
		}
	}
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// tick runs one decision cycle with a bounded deadline
func (s *Scheduler) tick(identity string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.TickTimeout)
	defer cancel()

	decision := s.engine.Tick(ctx, identity)
	log.Printf("Scheduler: tick %q decided %s", identity, decision)
}

// sweepLogs deletes persisted log entries past the retention window
func (s *Scheduler) sweepLogs() {
	if s.logs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -s.config.RetentionDays)
	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("Scheduler: log retention sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Scheduler: purged %d log entries older than %d days", deleted, s.config.RetentionDays)
	}
}
