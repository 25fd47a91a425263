package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TOKEN_EXPIRATION_DAYS", "")
	t.Setenv("PAGE_SIZE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Token.ExpirationDays)
	assert.Equal(t, 24*time.Hour, cfg.Token.TTL())
	assert.Equal(t, 30, cfg.Pagination.PageSize)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_EXPIRATION_DAYS", "7")
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REDIS_CACHE_TTL", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.Token.TTL())
	assert.Equal(t, 5, cfg.Pagination.PageSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
}

func TestLoadConfig_YAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("token:\n  expiration_days: 3\npagination:\n  page_size: 10\n  max_page_size: 50\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PAGE_SIZE", "20")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Token.ExpirationDays)
	assert.Equal(t, 20, cfg.Pagination.PageSize, "env wins over file")
	assert.Equal(t, 50, cfg.Pagination.MaxPageSize)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative ttl", func(c *Config) { c.Token.ExpirationDays = -1 }},
		{"zero page size", func(c *Config) { c.Pagination.PageSize = 0 }},
		{"max below page size", func(c *Config) { c.Pagination.MaxPageSize = 1; c.Pagination.PageSize = 2 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
