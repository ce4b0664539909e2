package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram" json:"telegram" jsonschema:"description=Telegram bot configuration"`
	Database DatabaseConfig `yaml:"database" json:"database" jsonschema:"description=Database configuration"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Poll loop configuration"`
	Fetch    FetchConfig    `yaml:"fetch" json:"fetch" jsonschema:"description=Feed fetching configuration"`
	Delivery DeliveryConfig `yaml:"delivery" json:"delivery" jsonschema:"description=Delivery configuration"`
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=Admin HTTP server configuration"`
	Log      LogConfig      `yaml:"log" json:"log" jsonschema:"description=Log file rotation"`
}

// TelegramConfig holds bot api settings
type TelegramConfig struct {
	Token       string        `yaml:"token" json:"token" jsonschema:"required,description=Bot token (can use environment variable)"`
	APIEndpoint string        `yaml:"api_endpoint" json:"api_endpoint" jsonschema:"description=Bot API endpoint format string with token and method placeholders"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Bot API request timeout"`
	PollTimeout int           `yaml:"poll_timeout" json:"poll_timeout" jsonschema:"default=60,minimum=0,description=Long polling timeout in seconds"`
	Workers     int           `yaml:"workers" json:"workers" jsonschema:"default=4,minimum=1,description=Concurrent command handlers"`
}

// DatabaseConfig holds store settings
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedpush.db?mode=rwc,description=Database connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,minimum=1,description=Maximum number of open connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,minimum=0,description=Maximum number of idle connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,minimum=0,description=Connection maximum lifetime in seconds"`
}

// ScheduleConfig holds poll loop settings
type ScheduleConfig struct {
	Interval        time.Duration `yaml:"interval" json:"interval" jsonschema:"default=1m,description=Pause between poll cycles"`
	MaxWorkers      int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,minimum=1,description=Feeds checked concurrently"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval" jsonschema:"default=1h,description=How often feeds without subscribers are removed"`
	RetryDelay      time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=10m,description=Next check delay for a feed that failed to fetch"`
	DeliveryWorkers int           `yaml:"delivery_workers" json:"delivery_workers" jsonschema:"default=8,minimum=1,description=Concurrent sends per entry"`
}

// FetchConfig holds feed fetcher settings
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Feed request timeout"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=feedpush/1.0,description=User agent for feed requests"`
	MaxBodySize int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=10485760,minimum=1024,description=Maximum feed document size in bytes"`
}

// DeliveryConfig holds delivery policy
type DeliveryConfig struct {
	Policy string `yaml:"policy" json:"policy" jsonschema:"default=rollback,enum=rollback,enum=drop,description=What to do with an entry nobody received"`
}

// ServerConfig holds admin api settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"description=HTTP server listen address, empty disables the server"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// LogConfig holds log file rotation settings
type LogConfig struct {
	MaxSize    int `yaml:"max_size" json:"max_size" jsonschema:"default=100,minimum=1,description=Maximum log file size in megabytes"`
	MaxBackups int `yaml:"max_backups" json:"max_backups" jsonschema:"default=5,minimum=0,description=Rotated files to keep"`
	MaxAge     int `yaml:"max_age" json:"max_age" jsonschema:"default=30,minimum=0,description=Days to keep rotated files"`
}

// Load reads configuration from a YAML file. Environment variables in the file are expanded,
// a .env file next to the config is loaded first and never overrides the real environment.
func Load(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 30 * time.Second
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = 60
	}
	if c.Telegram.Workers == 0 {
		c.Telegram.Workers = 4
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:feedpush.db?mode=rwc&_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 4
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 2
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = time.Minute
	}
	if c.Schedule.MaxWorkers == 0 {
		c.Schedule.MaxWorkers = 5
	}
	if c.Schedule.CleanupInterval == 0 {
		c.Schedule.CleanupInterval = time.Hour
	}
	if c.Schedule.RetryDelay == 0 {
		c.Schedule.RetryDelay = 10 * time.Minute
	}
	if c.Schedule.DeliveryWorkers == 0 {
		c.Schedule.DeliveryWorkers = 8
	}

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "feedpush/1.0"
	}
	if c.Fetch.MaxBodySize == 0 {
		c.Fetch.MaxBodySize = 10 * 1024 * 1024
	}

	if c.Delivery.Policy == "" {
		c.Delivery.Policy = "rollback"
	}

	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if cfg.Telegram.Timeout < time.Second {
		return fmt.Errorf("telegram.timeout must be at least 1 second")
	}

	if cfg.Schedule.Interval < time.Second {
		return fmt.Errorf("schedule.interval must be at least 1 second")
	}
	if cfg.Schedule.CleanupInterval < time.Minute {
		return fmt.Errorf("schedule.cleanup_interval must be at least 1 minute")
	}
	if cfg.Schedule.RetryDelay < time.Second {
		return fmt.Errorf("schedule.retry_delay must be at least 1 second")
	}

	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch.timeout must be at least 1 second")
	}

	if cfg.Server.Listen != "" && cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
