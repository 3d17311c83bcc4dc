package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apimiddleware "github.com/nexuslabs/stackctl/internal/api/middleware"
	"github.com/nexuslabs/stackctl/internal/logbook"
	"github.com/nexuslabs/stackctl/internal/store"
)

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	EnableCORS      bool
	AllowedOrigins  []string
	MaxBodySize     string
	Version         string

	// AllowDisable permits operators to turn automatic teardown off.
	AllowDisable bool
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
		EnableCORS:      true,
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxBodySize:     "1M",
		Version:         "dev",
	}
}

// Server represents the HTTP API server
type Server struct {
	echo    *echo.Echo
	config  *ServerConfig
	store   *store.Store
	actions Actions
	rec     *logbook.Recorder
}

// NewServer creates a new API server
func NewServer(config *ServerConfig, st *store.Store, actions Actions) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Disable Echo's default logger, we'll use our own
	e.Logger.SetOutput(io.Discard)

	// Set custom validator
	e.Validator = NewValidator()

	s := &Server{
		echo:    e,
		config:  config,
		store:   st,
		actions: actions,
		rec:     logbook.NewRecorder("api", st.Logs),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware stack
func (s *Server) setupMiddleware() {
	// Recover from panics
	s.echo.Use(middleware.Recover())

	// Request ID for tracing
	s.echo.Use(middleware.RequestID())

	// Logging middleware
	s.echo.Use(apimiddleware.Logger())

	// CORS if enabled
	if s.config.EnableCORS {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// Body limit
	s.echo.Use(middleware.BodyLimit(s.config.MaxBodySize))

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health checks (no auth required)
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readyCheck)

	v1 := s.echo.Group("/api/v1")

	v1.GET("/version", s.version)

	// Teardown schedule configuration
	scheduleHandler := NewScheduleHandler(s.store.Settings, s.config.AllowDisable, s.rec)
	v1.GET("/schedule", scheduleHandler.Get)
	v1.POST("/schedule", scheduleHandler.Update)

	// Email notification preferences
	emailHandler := NewEmailSettingsHandler(s.store.Settings)
	v1.GET("/email-settings", emailHandler.Get)
	v1.POST("/email-settings", emailHandler.Update)

	// Infrastructure status
	statusHandler := NewStatusHandler(s.actions)
	v1.GET("/status", statusHandler.Get)

	// Manual workflow triggers
	dispatchHandler := NewDispatchHandler(s.actions, s.rec)
	v1.POST("/deploy", dispatchHandler.Deploy)
	v1.POST("/spin-up", dispatchHandler.SpinUp)
	v1.POST("/teardown", dispatchHandler.Teardown)
	v1.POST("/destroy", dispatchHandler.Destroy)

	// Structured logs
	logsHandler := NewLogsHandler(s.store.Logs)
	v1.GET("/logs", logsHandler.List)
	v1.POST("/logs", logsHandler.Append)
	v1.DELETE("/logs", logsHandler.Purge)
}

// healthCheck returns basic health status
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// readyCheck checks if server is ready to handle requests
func (s *Server) readyCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// version reports the running build
func (s *Server) version(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version": s.config.Version,
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance for testing
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
