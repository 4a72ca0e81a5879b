// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the sqlite databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Quote source endpoints. The core only sees them through the quotes
	// client; swapping providers is a configuration change.
	DomesticQuoteBaseURL string
	OverseasQuoteBaseURL string

	// Enrichment / batch refresh knobs
	RefreshWorkers      int     // bounded worker pool size, the sole concurrency knob
	QuoteMaxRetries     int     // per-row retry budget for quote lookups
	QuoteRetryBackoffMS int     // fixed backoff between retries
	QuoteTimeoutSeconds int     // per-request network timeout
	RefreshCron         string  // cron expression for the periodic smart refresh
	DivergenceThreshold float64 // TTM vs forward yield divergence (percentage points)

	// Snapshot cache staleness window
	SnapshotTTLMinutes int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		Port:                 getEnvAsInt("PORT", 8010),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DomesticQuoteBaseURL: getEnv("DOMESTIC_QUOTE_BASE_URL", "https://api.stock.naver.com"),
		OverseasQuoteBaseURL: getEnv("OVERSEAS_QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
		RefreshWorkers:       getEnvAsInt("REFRESH_WORKERS", 10),
		QuoteMaxRetries:      getEnvAsInt("QUOTE_MAX_RETRIES", 3),
		QuoteRetryBackoffMS:  getEnvAsInt("QUOTE_RETRY_BACKOFF_MS", 300),
		QuoteTimeoutSeconds:  getEnvAsInt("QUOTE_TIMEOUT_SECONDS", 6),
		RefreshCron:          getEnv("REFRESH_CRON", "0 0 6 * * *"),
		DivergenceThreshold:  getEnvAsFloat("YIELD_DIVERGENCE_THRESHOLD", 5.0),
		SnapshotTTLMinutes:   getEnvAsInt("SNAPSHOT_TTL_MINUTES", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.RefreshWorkers <= 0 {
		return fmt.Errorf("REFRESH_WORKERS must be positive, got %d", c.RefreshWorkers)
	}
	if c.DivergenceThreshold < 0 {
		return fmt.Errorf("YIELD_DIVERGENCE_THRESHOLD must not be negative, got %f", c.DivergenceThreshold)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
