package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          8051,
		LogLevel:      "info",
		WeeklySource:  "currency_merged.xlsx",
		LevelsSource:  "df.xlsx",
		RollingWindow: 4,
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"NEER_PORT", "LOG_LEVEL", "DEV_MODE", "NEER_WEEKLY_SOURCE", "NEER_LEVELS_SOURCE",
		"NEER_SHEET", "NEER_WEEKLY_TABLE", "NEER_LEVELS_TABLE", "NEER_COMMENTARY_FILE",
		"NEER_ROLLING_WINDOW", "NEER_RELOAD_SCHEDULE", "NEER_INTEGRITY_SCHEDULE",
		"NEER_ALLOWED_ORIGINS", "NEER_S3_REGION", "NEER_S3_ENDPOINT",
		"NEER_S3_ACCESS_KEY", "NEER_S3_SECRET_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8051, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "currency_merged.xlsx", cfg.WeeklySource)
	assert.Equal(t, "df.xlsx", cfg.LevelsSource)
	assert.Equal(t, "weekly_records", cfg.WeeklyTable)
	assert.Equal(t, "index_levels", cfg.LevelsTable)
	assert.Equal(t, 4, cfg.RollingWindow)
	assert.Empty(t, cfg.ReloadSchedule)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.UsesObjectStore())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("NEER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("NEER_WEEKLY_SOURCE", "s3://bucket/weekly.csv")
	t.Setenv("NEER_LEVELS_SOURCE", "data/neer.db")
	t.Setenv("NEER_ROLLING_WINDOW", "8")
	t.Setenv("NEER_RELOAD_SCHEDULE", "@every 6h")
	t.Setenv("NEER_ALLOWED_ORIGINS", "example.com, *.example.org ,")
	t.Setenv("NEER_S3_REGION", "eu-west-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 8, cfg.RollingWindow)
	assert.Equal(t, "@every 6h", cfg.ReloadSchedule)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.True(t, cfg.UsesObjectStore())
	assert.Equal(t, []string{"data/neer.db"}, cfg.LocalSQLiteSources())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("NEER_PORT", "not-a-port")
	t.Setenv("NEER_ROLLING_WINDOW", "x")
	t.Setenv("NEER_WEEKLY_SOURCE", "")
	t.Setenv("NEER_LEVELS_SOURCE", "")
	t.Setenv("NEER_RELOAD_SCHEDULE", "")
	t.Setenv("NEER_INTEGRITY_SCHEDULE", "")
	t.Setenv("NEER_S3_ACCESS_KEY", "")
	t.Setenv("NEER_S3_SECRET_KEY", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8051, cfg.Port)
	assert.Equal(t, 4, cfg.RollingWindow)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"missing weekly source", func(c *Config) { c.WeeklySource = "" }},
		{"unsupported source format", func(c *Config) { c.LevelsSource = "levels.json" }},
		{"window too small", func(c *Config) { c.RollingWindow = 1 }},
		{"bad reload schedule", func(c *Config) { c.ReloadSchedule = "every tuesday" }},
		{"bad integrity schedule", func(c *Config) { c.IntegritySchedule = "* * *" }},
		{"half of the S3 credentials", func(c *Config) { c.S3.AccessKey = "AKIA" }},
	}

	require.NoError(t, validConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate_AcceptsSchedules(t *testing.T) {
	for _, expr := range []string{"@hourly", "@every 30m", "0 0 6 * * MON", "0 6 * * *"} {
		cfg := validConfig()
		cfg.ReloadSchedule = expr
		assert.NoError(t, cfg.Validate(), expr)
	}
}

func TestLocalSQLiteSources_Deduplicates(t *testing.T) {
	cfg := validConfig()
	cfg.WeeklySource = "neer.db"
	cfg.LevelsSource = "neer.db"
	assert.Equal(t, []string{"neer.db"}, cfg.LocalSQLiteSources())
}
