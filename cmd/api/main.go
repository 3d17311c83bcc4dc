package main

import (
	"context"
	"log"
	"os"
	"strings"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexuslabs/stackctl/internal/api"
	"github.com/nexuslabs/stackctl/internal/config"
	"github.com/nexuslabs/stackctl/internal/github"
	"github.com/nexuslabs/stackctl/internal/store"
)

var version = "dev"

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

	// Run migrations
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
		log.Println("WARNING: GitHub credentials missing, status and dispatch endpoints will be unavailable")
	}

	// Create server config
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.HTTPPort
	serverConfig.AllowedOrigins = strings.Split(cfg.CORSOrigins, ",")
	serverConfig.AllowDisable = cfg.AllowDisable
	serverConfig.Version = version

	log.Printf("Server configured:")
	log.Printf("  Port: %d", serverConfig.Port)
	log.Printf("  CORS origins: %v", serverConfig.AllowedOrigins)
	log.Printf("  Allow disable: %v", serverConfig.AllowDisable)

	server := api.NewServer(serverConfig, st, gh)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
