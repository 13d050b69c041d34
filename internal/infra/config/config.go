package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the scheduler service.
type AppConfig struct {
	DatabaseURL string `validate:"required"`

	TrackerBaseURL string        `validate:"required,url"`
	TrackerAPIKey  string        `validate:"required"`
	TrackerTimeout time.Duration `validate:"gt=0"`

	// IssueAuthorID is the explicitly configured author for generated
	// issues; 0 leaves resolution to the current actor.
	IssueAuthorID int64 `validate:"gte=0"`
	// SystemAuthorID is the last-resort author when neither a
	// configured author nor an actor is present.
	SystemAuthorID int64 `validate:"gt=0"`

	LogLevel    string
	Environment string

	// CronSpecReconcile drives the combined daily reconciliation pass.
	CronSpecReconcile string `validate:"required"`
	// CronSpecYearGeneration pre-generates next year's schedules.
	CronSpecYearGeneration string `validate:"required"`
}

var validate = validator.New()

// Load reads configuration from environment variables and a .env file
// (if present). Missing required values fail fast.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing
	// .env file is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TrackerBaseURL = strings.TrimRight(os.Getenv("TRACKER_BASE_URL"), "/")
	if cfg.TrackerBaseURL == "" {
		return nil, fmt.Errorf("TRACKER_BASE_URL is not set")
	}
	cfg.TrackerAPIKey = os.Getenv("TRACKER_API_KEY")
	if cfg.TrackerAPIKey == "" {
		return nil, fmt.Errorf("TRACKER_API_KEY is not set")
	}

	var err error
	cfg.TrackerTimeout, err = durationEnv("TRACKER_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.IssueAuthorID, err = int64Env("ISSUE_AUTHOR_ID", 0)
	if err != nil {
		return nil, err
	}
	cfg.SystemAuthorID, err = int64Env("SYSTEM_AUTHOR_ID", 1)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecReconcile = os.Getenv("CRON_SPEC_RECONCILE")
	if cfg.CronSpecReconcile == "" {
		cfg.CronSpecReconcile = "0 6 * * *" // 06:00 daily
	}
	cfg.CronSpecYearGeneration = os.Getenv("CRON_SPEC_YEAR_GENERATION")
	if cfg.CronSpecYearGeneration == "" {
		cfg.CronSpecYearGeneration = "0 7 1 12 *" // 07:00 on December 1st
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func int64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
