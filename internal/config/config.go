// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aristath/neertrack/internal/clients/s3"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/aristath/neertrack/internal/scheduler"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	WeeklySource   string // path or s3://bucket/key
	LevelsSource   string
	Sheet          string // empty = first sheet
	WeeklyTable    string
	LevelsTable    string
	CommentaryFile string // empty = embedded commentary

	RollingWindow     int
	ReloadSchedule    string // empty disables the reload job
	IntegritySchedule string // empty disables the SQLite source check

	AllowedOrigins []string // websocket origin patterns

	S3 s3.Config
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnvAsInt("NEER_PORT", 8051),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		WeeklySource:   getEnv("NEER_WEEKLY_SOURCE", "currency_merged.xlsx"),
		LevelsSource:   getEnv("NEER_LEVELS_SOURCE", "df.xlsx"),
		Sheet:          getEnv("NEER_SHEET", ""),
		WeeklyTable:    getEnv("NEER_WEEKLY_TABLE", dataset.DefaultWeeklyTable),
		LevelsTable:    getEnv("NEER_LEVELS_TABLE", dataset.DefaultLevelsTable),
		CommentaryFile: getEnv("NEER_COMMENTARY_FILE", ""),

		RollingWindow:     getEnvAsInt("NEER_ROLLING_WINDOW", 4),
		ReloadSchedule:    getEnv("NEER_RELOAD_SCHEDULE", ""),
		IntegritySchedule: getEnv("NEER_INTEGRITY_SCHEDULE", ""),

		AllowedOrigins: getEnvAsList("NEER_ALLOWED_ORIGINS"),

		S3: s3.Config{
			Region:    getEnv("NEER_S3_REGION", ""),
			Endpoint:  getEnv("NEER_S3_ENDPOINT", ""),
			AccessKey: getEnv("NEER_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("NEER_S3_SECRET_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and well formed
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.WeeklySource == "" || c.LevelsSource == "" {
		return fmt.Errorf("%w: both data sources are required", ErrInvalidConfig)
	}
	for _, src := range []string{c.WeeklySource, c.LevelsSource} {
		if _, err := dataset.DetectFormat(src); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.RollingWindow < 2 {
		return fmt.Errorf("%w: rolling window must be at least 2 weeks, got %d", ErrInvalidConfig, c.RollingWindow)
	}
	for name, expr := range map[string]string{
		"reload schedule":    c.ReloadSchedule,
		"integrity schedule": c.IntegritySchedule,
	} {
		if expr == "" {
			continue
		}
		if err := scheduler.ValidateSchedule(expr); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, name, expr, err)
		}
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("%w: S3 access key and secret key must be set together", ErrInvalidConfig)
	}
	return nil
}

// UsesObjectStore reports whether any source lives in S3.
func (c *Config) UsesObjectStore() bool {
	return strings.HasPrefix(c.WeeklySource, "s3://") || strings.HasPrefix(c.LevelsSource, "s3://")
}

// LocalSQLiteSources returns the local source paths that are SQLite files.
func (c *Config) LocalSQLiteSources() []string {
	var out []string
	seen := map[string]bool{}
	for _, src := range []string{c.WeeklySource, c.LevelsSource} {
		if strings.HasPrefix(src, "s3://") || seen[src] {
			continue
		}
		if f, err := dataset.DetectFormat(src); err == nil && f == dataset.FormatSQLite {
			out = append(out, src)
			seen[src] = true
		}
	}
	return out
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

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
