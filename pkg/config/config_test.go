package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "app.schoology.com", cfg.Schoology.Domain)
	assert.Equal(t, 50, cfg.Schoology.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Schoology.Timeout)
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, ".", cfg.Output.BaseDirectory)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SGYEXPORT_DOMAIN", "myschool.schoology.com")
	t.Setenv("SGYEXPORT_PAGE_SIZE", "25")
	t.Setenv("SGYEXPORT_REQUESTS_PER_MINUTE", "60")
	t.Setenv("SGYEXPORT_MAX_RETRIES", "5")
	t.Setenv("SGYEXPORT_OUTPUT_DIR", "/tmp/exports")
	t.Setenv("SGYEXPORT_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "myschool.schoology.com", cfg.Schoology.Domain)
	assert.Equal(t, 25, cfg.Schoology.PageSize)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "/tmp/exports", cfg.Output.BaseDirectory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("SGYEXPORT_PAGE_SIZE", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 50, cfg.Schoology.PageSize)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
schoology:
  domain: myschool.schoology.com
  page_size: 20
rate_limit:
  requests_per_minute: 30
output:
  base_directory: /tmp/exports
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "myschool.schoology.com", cfg.Schoology.Domain)
	assert.Equal(t, 20, cfg.Schoology.PageSize)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "/tmp/exports", cfg.Output.BaseDirectory)
	// Untouched sections keep their defaults
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":      "/tmp/out",
		"rate-limit":  90,
		"max-retries": 4,
		"log-level":   "warn",
	})

	assert.Equal(t, "/tmp/out", cfg.Output.BaseDirectory)
	assert.Equal(t, 90, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{
			name:   "empty domain",
			mutate: func(c *Config) { c.Schoology.Domain = "" },
			msg:    "schoology domain is required",
		},
		{
			name:   "zero page size",
			mutate: func(c *Config) { c.Schoology.PageSize = 0 },
			msg:    "page size must be positive",
		},
		{
			name:   "negative retries",
			mutate: func(c *Config) { c.Retry.MaxAttempts = -1 },
			msg:    "max retries cannot be negative",
		},
		{
			name:   "bad multiplier",
			mutate: func(c *Config) { c.Retry.Multiplier = 0.5 },
			msg:    "retry multiplier must be at least 1.0",
		},
		{
			name:   "bad jitter",
			mutate: func(c *Config) { c.Retry.JitterFactor = 2 },
			msg:    "jitter factor must be between 0.0 and 1.0",
		},
		{
			name:   "zero rpm",
			mutate: func(c *Config) { c.RateLimit.RequestsPerMinute = 0 },
			msg:    "requests per minute must be positive",
		},
		{
			name:   "empty output dir",
			mutate: func(c *Config) { c.Output.BaseDirectory = "" },
			msg:    "output directory is required",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			msg:    "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schoology.Domain = ""
	cfg.Output.BaseDirectory = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schoology domain is required")
	assert.Contains(t, err.Error(), "output directory is required")
}
