package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexuslabs/stackctl/internal/config"
	"github.com/nexuslabs/stackctl/internal/github"
	"github.com/nexuslabs/stackctl/internal/logbook"
	"github.com/nexuslabs/stackctl/internal/metrics"
	"github.com/nexuslabs/stackctl/internal/notify"
	"github.com/nexuslabs/stackctl/internal/schedule"
	"github.com/nexuslabs/stackctl/internal/scheduler"
	"github.com/nexuslabs/stackctl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize store
	log.Println("Connecting to database...")
	st, err := store.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	log.Println("Running database migrations...")
	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// GitHub-backed workflow control
	gh := github.NewClient(github.Config{
		Token: cfg.GitHubToken,
		Owner: cfg.GitHubOwner,
		Repo:  cfg.GitHubRepo,
		Ref:   cfg.GitHubRef,
	})
	if !gh.Configured() {
		log.Println("WARNING: GitHub credentials missing, teardown dispatch will fail until configured")
	}

	// Email notifications
	sender := notify.NewSender(notify.Config{
		APIKey:     cfg.ResendAPIKey,
		Domain:     cfg.Domain,
		AdminEmail: cfg.AdminEmail,
		UserEmail:  cfg.UserEmail,
	})
	if !sender.Configured() {
		log.Println("WARNING: email transport missing, teardown notifications will be skipped")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	sink := metrics.NewPrometheusSink(registry)

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		log.Printf("Metrics listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Decision engine
	rec := logbook.NewRecorder("scheduler", st.Logs)
	engine := schedule.NewEngine(schedule.EngineConfig{
		NotificationCron: cfg.NotificationCron,
		TeardownCron:     cfg.TeardownCron,
		HistoryLimit:     cfg.RunHistoryLimit,
	}, st.Settings, gh, gh, sender, rec, sink)

	// Scheduler host
	schedConfig := scheduler.DefaultConfig()
	schedConfig.NotificationCron = cfg.NotificationCron
	schedConfig.TeardownCron = cfg.TeardownCron
	schedConfig.RetentionDays = cfg.LogRetentionDays

	sched := scheduler.NewScheduler(schedConfig, engine, st.Logs)

	runCtx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := sched.Start(runCtx); err != nil && err != context.Canceled {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	log.Println("Scheduler started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
