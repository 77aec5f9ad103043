// Package config loads and validates the bot's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Mode         string        `json:"mode" yaml:"mode"`
	Symbols      []string      `json:"symbols" yaml:"symbols"`
	Strategy     string        `json:"strategy" yaml:"strategy"`
	PollInterval string        `json:"poll_interval" yaml:"poll_interval"`
	Paper        PaperConfig   `json:"paper" yaml:"paper"`
	Risk         RiskConfig    `json:"risk" yaml:"risk"`
	Data         DataConfig    `json:"data" yaml:"data"`
	Journal      JournalConfig `json:"journal" yaml:"journal"`
	Logging      LogConfig     `json:"logging" yaml:"logging"`
	Metrics      MetricsConfig `json:"metrics" yaml:"metrics"`
}

// PaperConfig funds the simulated account.
type PaperConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	Currency       string  `json:"currency" yaml:"currency"`
}

// RiskConfig holds the risk-manager thresholds.
type RiskConfig struct {
	MaxPositionPct    float64 `json:"max_position_pct" yaml:"max_position_pct"`
	StopLossPct       float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	DailyLossLimitPct float64 `json:"daily_loss_limit_pct" yaml:"daily_loss_limit_pct"`
	MaxOpenPositions  int     `json:"max_open_positions" yaml:"max_open_positions"`
}

// DataConfig points at the market-data provider. StreamURL is optional; when
// set, a websocket quote feed fronts the HTTP client.
type DataConfig struct {
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	StreamURL string `json:"stream_url,omitempty" yaml:"stream_url,omitempty"`
}

// JournalConfig selects the trade-record backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig configures the slog JSON logger and file rotation.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// Interval parses PollInterval as a duration.
func (c *Config) Interval() (time.Duration, error) {
	return time.ParseDuration(c.PollInterval)
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Mode != "paper" {
		return fmt.Errorf("mode must be 'paper', got %q", c.Mode)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	switch strings.ToLower(c.Strategy) {
	case "rsi", "macd", "bollinger", "momentum":
	default:
		return fmt.Errorf("unknown strategy: %s", c.Strategy)
	}
	if d, err := c.Interval(); err != nil || d <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration, got %q", c.PollInterval)
	}
	if c.Paper.InitialBalance <= 0 {
		return fmt.Errorf("paper.initial_balance must be positive")
	}
	if c.Risk.MaxPositionPct <= 0 || c.Risk.MaxPositionPct > 1 {
		return fmt.Errorf("risk.max_position_pct must be between 0 and 1")
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.StopLossPct > 1 {
		return fmt.Errorf("risk.stop_loss_pct must be between 0 and 1")
	}
	if c.Risk.MaxOpenPositions <= 0 {
		return fmt.Errorf("risk.max_open_positions must be positive")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal.trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with the standalone runner's defaults.
func Default() *Config {
	return &Config{
		Mode:         "paper",
		Symbols:      []string{"AAPL", "MSFT"},
		Strategy:     "rsi",
		PollInterval: "5m",
		Paper: PaperConfig{
			InitialBalance: 100000,
			Currency:       "USD",
		},
		Risk: RiskConfig{
			MaxPositionPct:    0.10,
			StopLossPct:       0.05,
			DailyLossLimitPct: 0.03,
			MaxOpenPositions:  10,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
