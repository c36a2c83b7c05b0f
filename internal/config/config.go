package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/scheduler"
	"github.com/pankajredekar/stockroom/internal/versioner"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where init writes the configuration file.
const DefaultPath = "stockroom.yml"

type Config struct {
	Database    database.Config `yaml:"database"`
	HTTP        HTTPConfig      `yaml:"http"`
	Stock       StockConfig     `yaml:"stock"`
	Cache       CacheConfig     `yaml:"cache"`
	Alerts      AlertsConfig    `yaml:"alerts"`
	Tracing     TracingConfig   `yaml:"tracing"`
	SeedOnEmpty bool            `yaml:"seed_on_empty"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StockConfig struct {
	// LowThreshold is the highest stock still counted as low.
	LowThreshold int `yaml:"low_threshold"`
}

type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"` // empty disables caching
	TTL      time.Duration `yaml:"ttl"`
}

type AlertsConfig struct {
	Schedule       string `yaml:"schedule"` // cron spec with a seconds field
	Timezone       string `yaml:"timezone"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// Enabled reports whether a notifier can be built.
func (a AlertsConfig) Enabled() bool {
	return a.TelegramToken != "" && a.TelegramChatID != 0
}

type TracingConfig struct {
	Exporter string `yaml:"exporter"` // none | stdout
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: database.Config{
			URL:            "sqlite://stockroom.db",
			MigrationTable: versioner.DefaultTable,
			LogLevel:       "warn",
			MaxOpenConns:   10,
			MaxIdleConns:   5,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Stock:       StockConfig{LowThreshold: 5},
		Cache:       CacheConfig{TTL: time.Minute},
		Alerts:      AlertsConfig{Schedule: "0 0 9 * * *", Timezone: "UTC"},
		Tracing:     TracingConfig{Exporter: "none"},
		SeedOnEmpty: true,
	}
}

// LoadEnv loads .env style files into the process environment. Missing files
// are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig reads configPath over the defaults and applies environment
// overrides. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Set defaults for keys present but left empty
	if cfg.Database.MigrationTable == "" {
		cfg.Database.MigrationTable = versioner.DefaultTable
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "none"
	}
	if cfg.Alerts.Timezone == "" {
		cfg.Alerts.Timezone = "UTC"
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("STOCKROOM_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Alerts.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		var id int64
		if _, err := fmt.Sscan(v, &id); err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.Alerts.TelegramChatID = id
	}
	if v := os.Getenv("STOCKROOM_TRACING"); v != "" {
		c.Tracing.Exporter = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if _, err := database.ParseURL(c.Database.URL); err != nil {
		return fmt.Errorf("database.url: %w", err)
	}
	if c.Stock.LowThreshold < 0 {
		return fmt.Errorf("stock.low_threshold must be >= 0")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be >= 0")
	}
	if c.Alerts.TelegramToken != "" && c.Alerts.TelegramChatID == 0 {
		return fmt.Errorf("alerts.telegram_chat_id is required when a telegram token is set")
	}
	if c.Alerts.Enabled() {
		if strings.TrimSpace(c.Alerts.Schedule) == "" {
			return fmt.Errorf("alerts.schedule is required when alerts are enabled")
		}
		if err := scheduler.ValidateSpec(c.Alerts.Schedule); err != nil {
			return fmt.Errorf("alerts.schedule: %w", err)
		}
		if _, err := time.LoadLocation(c.Alerts.Timezone); err != nil {
			return fmt.Errorf("alerts.timezone: %w", err)
		}
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("tracing.exporter must be none or stdout, got %q", c.Tracing.Exporter)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
