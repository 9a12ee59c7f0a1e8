package config

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
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
api:
  base_url: https://api.example.com
  timeout: 15s
  user_agent: TestAgent/2.0

feed:
  limit: 60
  fallback_count: 4
  carousel_cap: 10

filters:
  - key: all
    label: Все
  - key: music
    label: Музыка
    keywords: ["концерт", "live"]

server:
  listen: ":9090"
  timeout: 45s
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
		assert.Equal(t, "TestAgent/2.0", cfg.API.UserAgent)

		assert.Equal(t, 60, cfg.Feed.Limit)
		assert.Equal(t, 4, cfg.Feed.FallbackCount)
		assert.Equal(t, 10, cfg.Feed.CarouselCap)

		require.Len(t, cfg.Filters, 2)
		assert.Equal(t, "music", cfg.Filters[1].Key)
		assert.Equal(t, []string{"концерт", "live"}, cfg.Filters[1].Keywords)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL, "hardcoded local-dev fallback")
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, "Eventscope/1.0", cfg.API.UserAgent)
		assert.Equal(t, 30, cfg.Feed.Limit)
		assert.Equal(t, 12, cfg.Feed.FallbackCount)
		assert.Equal(t, 8, cfg.Feed.CarouselCap)
		assert.Equal(t, ":8081", cfg.Server.Listen)
		assert.Equal(t, "eventscope", cfg.Storage.Prefix)
		assert.Equal(t, 5, cfg.Ingest.PerChannelLimit)
		assert.Empty(t, cfg.Filters, "no taxonomy means compiled-in defaults apply downstream")
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("TEST_API_BASE", "https://env.example.com")
		cfg, err := Load(writeConfig(t, "api:\n  base_url: ${TEST_API_BASE}\n"))
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "api: [not a map"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("duplicate filter keys rejected", func(t *testing.T) {
		configContent := `
filters:
  - key: music
    label: A
  - key: music
    label: B
`
		_, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate filter key")
	})

	t.Run("ingest limit bounds", func(t *testing.T) {
		_, err := Load(writeConfig(t, "ingest:\n  per_channel_limit: 99\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "per_channel_limit")
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.Feed.Limit)

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":8081", listen)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)
}

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	cfg := Default()
	require.NoError(t, VerifyAgainstEmbeddedSchema(cfg))

	bad := Default()
	bad.API.BaseURL = ""
	require.Error(t, VerifyAgainstEmbeddedSchema(bad))
}
