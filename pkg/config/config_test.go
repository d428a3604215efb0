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

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Instagram.RequestTimeout)
	assert.Equal(t, 20*time.Second, cfg.Instagram.ProxyTimeout)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INSTAVIEW_ADDR", ":9090")
	t.Setenv("IG_BOT_USER", "envbot")
	t.Setenv("IG_BOT_PASS", "envpass")
	t.Setenv("INSTAVIEW_REQUESTS_PER_MINUTE", "30")
	t.Setenv("INSTAVIEW_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("INSTAVIEW_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "envbot", cfg.Instagram.BotUsername)
	assert.Equal(t, "envpass", cfg.Instagram.BotPassword)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidRate(t *testing.T) {
	t.Setenv("INSTAVIEW_REQUESTS_PER_MINUTE", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "instaview.yaml")
		content := `
server:
  addr: ":7070"
instagram:
  bot_username: filebot
  data_dir: /tmp/instaview-test
rate_limit:
  requests_per_minute: 10
logging:
  level: warn
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))

		assert.Equal(t, ":7070", cfg.Server.Addr)
		assert.Equal(t, "filebot", cfg.Instagram.BotUsername)
		assert.Equal(t, "/tmp/instaview-test", cfg.Instagram.DataDir)
		assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
		assert.Equal(t, "warn", cfg.Logging.Level)
		// Untouched settings keep their defaults.
		assert.Equal(t, 30*time.Second, cfg.Instagram.RequestTimeout)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(path))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, true},
		{"negative request timeout", func(c *Config) { c.Instagram.RequestTimeout = -time.Second }, true},
		{"zero proxy timeout", func(c *Config) { c.Instagram.ProxyTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instagram.DataDir = "/var/lib/instaview"
	cfg.Instagram.BotUsername = "bot"

	assert.Equal(t, filepath.Join("/var/lib/instaview", "bot.session.json"), cfg.SessionFile())
}
