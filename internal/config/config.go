package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort string `env:"API_PORT" envDefault:"9000"`
	DBPath  string `env:"DB_PATH" envDefault:"./data/versecache.db"`

	BibleAPIBaseURL    string        `env:"BIBLE_API_BASE_URL" envDefault:"https://bible-api.com"`
	DefaultTranslation string        `env:"DEFAULT_TRANSLATION" envDefault:"web"`
	FetchTimeout       time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	BreakerMaxFailures uint32        `env:"BREAKER_MAX_FAILURES" envDefault:"3"`
	BreakerOpenTimeout time.Duration `env:"BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// BundleURL takes precedence over BundlePath when set.
	BundlePath string `env:"BUNDLE_PATH" envDefault:"./data/bible-kjv.json"`
	BundleURL  string `env:"BUNDLE_URL"`

	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the result.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.BibleAPIBaseURL = strings.TrimSpace(cfg.BibleAPIBaseURL)
	cfg.DefaultTranslation = strings.ToLower(strings.TrimSpace(cfg.DefaultTranslation))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the data directory for the cache database if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks field values that cannot be expressed as defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.BibleAPIBaseURL == "" {
		errs = append(errs, errors.New("BIBLE_API_BASE_URL is required"))
	}
	if c.DefaultTranslation == "" {
		errs = append(errs, errors.New("DEFAULT_TRANSLATION is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be greater than 0"))
	}
	if c.BreakerMaxFailures == 0 {
		errs = append(errs, errors.New("BREAKER_MAX_FAILURES must be greater than 0"))
	}
	if c.BreakerOpenTimeout <= 0 {
		errs = append(errs, errors.New("BREAKER_OPEN_TIMEOUT must be greater than 0"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be greater than 0"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// loadDotEnv loads the nearest .env file, checking the current directory
// and then walking up a few parent directories.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}
