package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/vytor/mathdoku/internal/logger"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	StatsMinGridSize int
	StatsMaxGridSize int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:mathdoku.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		StatsMinGridSize: envIntOr("STATS_MIN_GRID_SIZE", 4),
		StatsMaxGridSize: envIntOr("STATS_MAX_GRID_SIZE", 9),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.StatsMinGridSize < 1 {
		errs = append(errs, fmt.Errorf("STATS_MIN_GRID_SIZE must be at least 1, got %d", c.StatsMinGridSize))
	}
	if c.StatsMaxGridSize < c.StatsMinGridSize {
		errs = append(errs, fmt.Errorf("STATS_MAX_GRID_SIZE (%d) must not be below STATS_MIN_GRID_SIZE (%d)", c.StatsMaxGridSize, c.StatsMinGridSize))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
