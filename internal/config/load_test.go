package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, "user", cfg.Session.Key)
	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.True(t, cfg.Server.Seed)
	assert.Equal(t, 3*time.Second, cfg.UI.NoticeTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WIMI_API_BASE_URL", "http://example.test:9000")
	t.Setenv("WIMI_SESSION_BACKEND", "memory")
	t.Setenv("WIMI_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://example.test:9000", cfg.API.BaseURL)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  backend: redis\nredis:\n  addr: cache:6379\nui:\n  notice_ttl: 5s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.UI.NoticeTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WIMI_LOG_LEVEL", "verbose")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
