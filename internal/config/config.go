package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Ingestion settings
	QuarantineDir string
	BatchSize     int

	// Entity resolver cache settings
	EntityCacheSize int
	EntityCacheTTL  time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		DatabasePath:  getEnv("DATABASE_PATH", "./data/dockets.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		QuarantineDir: getEnv("QUARANTINE_DIR", "./quarantine"),
	}

	// Parse integer values
	var err error
	cfg.BatchSize, err = strconv.Atoi(getEnv("BATCH_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_SIZE: %w", err)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}

	cfg.EntityCacheSize, err = strconv.Atoi(getEnv("ENTITY_CACHE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENTITY_CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("ENTITY_CACHE_TTL", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENTITY_CACHE_TTL: %w", err)
	}
	cfg.EntityCacheTTL = time.Duration(cacheTTL) * time.Minute

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
