package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090

store:
  driver: rpc

rpc:
  base_url: https://store.example.net
  api_key: secret
  timeout: 15s

ratelimit:
  enabled: true
  max_requests: 120
  window_seconds: 60

api:
  base_url: https://api.roas.example.net/

log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "rpc", cfg.Store.Driver)
	assert.Equal(t, "https://store.example.net", cfg.RPC.BaseURL)
	assert.Equal(t, "secret", cfg.RPC.APIKey)
	assert.Equal(t, 15*time.Second, cfg.RPC.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 120, cfg.RateLimit.MaxRequests)
	assert.Equal(t, "https://api.roas.example.net/", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "http://localhost:8080/", cfg.API.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
