package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yanivvi/stocksmania/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Symbols         []string `yaml:"symbols"`
	Holdings        []string `yaml:"holdings"`
	Window          int      `yaml:"window"`
	HistoricalStart string   `yaml:"historical_start"` // YYYY-MM-DD
	DataDir         string   `yaml:"data_dir"`
	Providers       []string `yaml:"providers"` // priority order
	HTTPTimeoutSec  int      `yaml:"http_timeout_sec"`
	AlphaVantage    struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"alpha_vantage"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine: env plus defaults is a
// complete configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitCSV(v)
	}
	if v := os.Getenv("MY_HOLDINGS"); v != "" {
		cfg.Holdings = splitCSV(v)
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MA_WINDOW"); v != "" {
		var w int
		if _, err := fmt.Sscanf(v, "%d", &w); err == nil {
			cfg.Window = w
		}
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"NVDA"}
	}
	if cfg.Window == 0 {
		cfg.Window = 150
	}
	if cfg.HistoricalStart == "" {
		cfg.HistoricalStart = "2025-01-01"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = []string{"stooq", "alphavantage", "yahoo"}
	}
	if cfg.HTTPTimeoutSec == 0 {
		cfg.HTTPTimeoutSec = 30
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocksmania.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are coherent.
func (c *Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", c.Window)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if _, err := c.StartDate(); err != nil {
		return fmt.Errorf("historical_start: %w", err)
	}
	for _, p := range c.Providers {
		switch p {
		case "stooq", "alphavantage", "yahoo":
		default:
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram bot_token and chat_id must be set together")
	}
	return nil
}

// StartDate parses the configured historical start date.
func (c *Config) StartDate() (time.Time, error) {
	return time.Parse(model.DateLayout, c.HistoricalStart)
}

// HTTPTimeout returns the per-provider request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// TelegramEnabled reports whether notification transport is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
