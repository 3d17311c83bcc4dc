// Package config loads service configuration for both binaries. Defaults are
// overridden by an optional YAML file, which is in turn overridden by
// environment variables, so a container deployment can run on env vars alone.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default cron identities; overridable so the infrastructure layer that owns
// the timers stays the single source of truth.
const (
	DefaultNotificationCron = "45 20 * * *"
	DefaultTeardownCron     = "0 21 * * *"
)

// Config holds all configuration for the stackctl binaries.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	HTTPPort    int    `yaml:"http_port"`
	CORSOrigins string `yaml:"cors_origins"`
	MetricsAddr string `yaml:"metrics_addr"`

	GitHubToken string `yaml:"github_token"`
	GitHubOwner string `yaml:"github_owner"`
	GitHubRepo  string `yaml:"github_repo"`
	GitHubRef   string `yaml:"github_ref"`

	NotificationCron string `yaml:"notification_cron"`
	TeardownCron     string `yaml:"teardown_cron"`

	ResendAPIKey string `yaml:"resend_api_key"`
	AdminEmail   string `yaml:"admin_email"`
	UserEmail    string `yaml:"user_email"`
	Domain       string `yaml:"domain"`

	// AllowDisable permits operators to switch automatic teardown off
	// entirely; infrastructure policy may forbid that.
	AllowDisable bool `yaml:"allow_disable_auto_shutdown"`

	LogRetentionDays int `yaml:"log_retention_days"`
	RunHistoryLimit  int `yaml:"run_history_limit"`
}

func defaults() Config {
	return Config{
		DatabaseURL:      "postgres://localhost:5432/stackctl?sslmode=disable",
		HTTPPort:         8080,
		CORSOrigins:      "http://localhost:3000",
		MetricsAddr:      ":9090",
		GitHubRef:        "main",
		NotificationCron: DefaultNotificationCron,
		TeardownCron:     DefaultTeardownCron,
		LogRetentionDays: 30,
		RunHistoryLimit:  100,
	}
}

// Load reads configuration: defaults, then the optional YAML file named by
// STACKCTL_CONFIG, then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("STACKCTL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setInt(&cfg.HTTPPort, "HTTP_PORT")
	setString(&cfg.CORSOrigins, "CORS_ALLOWED_ORIGINS")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")

	setString(&cfg.GitHubToken, "GITHUB_TOKEN")
	setString(&cfg.GitHubOwner, "GITHUB_OWNER")
	setString(&cfg.GitHubRepo, "GITHUB_REPO")
	setString(&cfg.GitHubRef, "GITHUB_REF")

	setString(&cfg.NotificationCron, "NOTIFICATION_CRON")
	setString(&cfg.TeardownCron, "TEARDOWN_CRON")

	setString(&cfg.ResendAPIKey, "RESEND_API_KEY")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.UserEmail, "USER_EMAIL")
	setString(&cfg.Domain, "DOMAIN")

	setBool(&cfg.AllowDisable, "ALLOW_DISABLE_AUTO_SHUTDOWN")
	setInt(&cfg.LogRetentionDays, "LOG_RETENTION_DAYS")
	setInt(&cfg.RunHistoryLimit, "RUN_HISTORY_LIMIT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true"
	}
}
