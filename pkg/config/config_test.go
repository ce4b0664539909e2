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
	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configPath := writeConfig(t, `
telegram:
  token: "123:abc"
  timeout: 10s
  workers: 2
schedule:
  interval: 30s
  max_workers: 3
  delivery_workers: 16
fetch:
  user_agent: test-agent
  max_body_size: 2048
delivery:
  policy: drop
server:
  listen: ":9090"
  timeout: 45s
`)
		cfg, err := Load(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "123:abc", cfg.Telegram.Token)
		assert.Equal(t, 10*time.Second, cfg.Telegram.Timeout)
		assert.Equal(t, 2, cfg.Telegram.Workers)
		assert.Equal(t, 30*time.Second, cfg.Schedule.Interval)
		assert.Equal(t, 3, cfg.Schedule.MaxWorkers)
		assert.Equal(t, 16, cfg.Schedule.DeliveryWorkers)
		assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
		assert.Equal(t, int64(2048), cfg.Fetch.MaxBodySize)
		assert.Equal(t, "drop", cfg.Delivery.Policy)

		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":9090", listen)
		assert.Equal(t, 45*time.Second, timeout)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "telegram:\n  token: xyz\n"))
		require.NoError(t, err)

		assert.Equal(t, 30*time.Second, cfg.Telegram.Timeout)
		assert.Equal(t, 60, cfg.Telegram.PollTimeout)
		assert.Empty(t, cfg.Telegram.APIEndpoint)
		assert.Contains(t, cfg.Database.DSN, "feedpush.db")
		assert.Equal(t, 4, cfg.Database.MaxOpenConns)
		assert.Equal(t, time.Minute, cfg.Schedule.Interval)
		assert.Equal(t, 5, cfg.Schedule.MaxWorkers)
		assert.Equal(t, time.Hour, cfg.Schedule.CleanupInterval)
		assert.Equal(t, 10*time.Minute, cfg.Schedule.RetryDelay)
		assert.Equal(t, 8, cfg.Schedule.DeliveryWorkers)
		assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, "feedpush/1.0", cfg.Fetch.UserAgent)
		assert.Equal(t, int64(10*1024*1024), cfg.Fetch.MaxBodySize)
		assert.Equal(t, "rollback", cfg.Delivery.Policy)
		assert.Empty(t, cfg.Server.Listen, "server disabled by default")
		assert.Equal(t, 100, cfg.Log.MaxSize)
	})

	t.Run("environment expansion", func(t *testing.T) {
		t.Setenv("FEEDPUSH_TEST_TOKEN", "from-env")
		cfg, err := Load(writeConfig(t, "telegram:\n  token: ${FEEDPUSH_TEST_TOKEN}\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Telegram.Token)
	})

	t.Run("dotenv next to config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FEEDPUSH_DOTENV_TOKEN=from-dotenv\n"), 0o600))
		configPath := filepath.Join(dir, "config.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("telegram:\n  token: ${FEEDPUSH_DOTENV_TOKEN}\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("FEEDPUSH_DOTENV_TOKEN") })

		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.Telegram.Token)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "telegram: [token"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  listen: \":8080\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telegram.token is required")
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := Load(writeConfig(t, "telegram:\n  token: xyz\ndelivery:\n  policy: retry-forever\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/delivery/policy")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Telegram: TelegramConfig{Token: "xyz"}}
		cfg.setDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "short telegram timeout", modify: func(c *Config) { c.Telegram.Timeout = time.Millisecond },
			errMsg: "telegram.timeout"},
		{name: "short interval", modify: func(c *Config) { c.Schedule.Interval = 10 * time.Millisecond },
			errMsg: "schedule.interval"},
		{name: "short cleanup", modify: func(c *Config) { c.Schedule.CleanupInterval = time.Second },
			errMsg: "schedule.cleanup_interval"},
		{name: "short retry delay", modify: func(c *Config) { c.Schedule.RetryDelay = time.Millisecond },
			errMsg: "schedule.retry_delay"},
		{name: "short fetch timeout", modify: func(c *Config) { c.Fetch.Timeout = time.Millisecond },
			errMsg: "fetch.timeout"},
		{name: "short server timeout", modify: func(c *Config) {
			c.Server.Listen = ":8080"
			c.Server.Timeout = time.Millisecond
		}, errMsg: "server timeout"},
		{name: "server timeout ignored when disabled", modify: func(c *Config) { c.Server.Timeout = time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := validate(&cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
