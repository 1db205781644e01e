//go:build unit

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://www.googleapis.com/books/v1/volumes", cfg.Catalog.BaseURL)
	assert.Equal(t, 1, cfg.Catalog.Retry)
	assert.Equal(t, 2*time.Second, cfg.Catalog.InitialBackoff)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	assert.Zero(t, cfg.Catalog.RateLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKEXPLORER_SERVER_PORT", "9090")
	t.Setenv("BOOKEXPLORER_CATALOG_CACHE_TTL", "90s")
	t.Setenv("BOOKEXPLORER_STORAGE_BACKEND", "redis")
	t.Setenv("BOOKEXPLORER_STORAGE_REDIS_ADDR", "redis:6380")
	t.Setenv("GOOGLE_BOOKS_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, "secret", cfg.Catalog.APIKey)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookexplorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
search:
  debounce: 250ms
storage:
  backend: memory
log:
  level: debug
  format: text
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"port":        func(c *Config) { c.Server.Port = 0 },
		"retry":       func(c *Config) { c.Catalog.Retry = -1 },
		"cache ttl":   func(c *Config) { c.Catalog.CacheTTL = 0 },
		"backend":     func(c *Config) { c.Storage.Backend = "s3" },
		"file path":   func(c *Config) { c.Storage.FavoritesPath = "" },
		"redis addr":  func(c *Config) { c.Storage.Backend = BackendRedis; c.Storage.Redis.Addr = "" },
		"log level":   func(c *Config) { c.Log.Level = "loud" },
		"log format":  func(c *Config) { c.Log.Format = "xml" },
		"debounce":    func(c *Config) { c.Search.Debounce = -time.Second },
		"rate limit":  func(c *Config) { c.Catalog.RateLimit = -1 },
		"catalog url": func(c *Config) { c.Catalog.BaseURL = "" },
		"session ttl": func(c *Config) { c.Storage.Backend = BackendRedis; c.Search.SessionTTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	redis := *base
	redis.Storage.Backend = BackendRedis
	assert.NoError(t, redis.Validate())
	// the session ttl only matters when sessions live in redis
	redis.Storage.Backend = BackendMemory
	redis.Search.SessionTTL = 0
	assert.NoError(t, redis.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])
}
