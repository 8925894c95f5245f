// Package config loads the toolkit configuration from YAML or JSON and
// API credentials from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/battrading/bat/engine"
)

// Config represents a full toolkit configuration.
type Config struct {
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// TradingConfig holds the parameters shared by backtests and live runs.
type TradingConfig struct {
	Symbol         string  `json:"symbol" yaml:"symbol"`
	Mode           string  `json:"mode" yaml:"mode"` // long_only or long_short
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	PositionPct    float64 `json:"position_percentage" yaml:"position_percentage"`
	SpreadPips     float64 `json:"spread_pips" yaml:"spread_pips"`

	Interval       string `json:"interval,omitempty" yaml:"interval,omitempty"` // live poll interval, e.g. "1m"
	MaxCandles     int    `json:"max_candles,omitempty" yaml:"max_candles,omitempty"`
	UseLimitOrders bool   `json:"use_limit_orders,omitempty" yaml:"use_limit_orders,omitempty"`
}

// StrategyConfig names the strategy and its tunables. Zero values fall
// back to each strategy's defaults.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`

	ShortWindow  int `json:"short_window,omitempty" yaml:"short_window,omitempty"`
	MediumWindow int `json:"medium_window,omitempty" yaml:"medium_window,omitempty"`
	LongWindow   int `json:"long_window,omitempty" yaml:"long_window,omitempty"`

	Window int     `json:"window,omitempty" yaml:"window,omitempty"`
	NumStd float64 `json:"num_std,omitempty" yaml:"num_std,omitempty"`

	Oversold   float64 `json:"oversold,omitempty" yaml:"oversold,omitempty"`
	Overbought float64 `json:"overbought,omitempty" yaml:"overbought,omitempty"`

	Fast   int `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow   int `json:"slow,omitempty" yaml:"slow,omitempty"`
	Signal int `json:"signal,omitempty" yaml:"signal,omitempty"`
}

// DataConfig selects the bar source.
type DataConfig struct {
	Source  string `json:"source" yaml:"source"` // csv, alpaca, or synth
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	SynthURL string `json:"synth_url,omitempty" yaml:"synth_url,omitempty"`
}

// BrokerConfig selects the gateway. Credentials never live in the
// config file; they come from the environment (see LoadCredentials).
type BrokerConfig struct {
	Kind string `json:"kind" yaml:"kind"` // sim or alpaca
	Env  string `json:"env,omitempty" yaml:"env,omitempty"` // paper or live
}

type JournalConfig struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"` // none, csv, or sqlite
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Credentials are the Alpaca API keys, loaded from the environment.
type Credentials struct {
	APIKey    string
	SecretKey string
	SynthKey  string
}

// LoadFromFile loads a configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trading.Mode == "" {
		c.Trading.Mode = string(engine.LongOnly)
	}
	if c.Trading.InitialBalance == 0 {
		c.Trading.InitialBalance = 10000
	}
	if c.Trading.PositionPct == 0 {
		c.Trading.PositionPct = 100
	}
	if c.Trading.Interval == "" {
		c.Trading.Interval = "1m"
	}
	if c.Trading.MaxCandles == 0 {
		c.Trading.MaxCandles = 200
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = "moving_average"
	}
	if c.Data.Source == "" {
		c.Data.Source = "csv"
	}
	if c.Broker.Kind == "" {
		c.Broker.Kind = "sim"
	}
	if c.Broker.Env == "" {
		c.Broker.Env = "paper"
	}
	if c.Journal.Type == "" {
		c.Journal.Type = "none"
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if !engine.Mode(c.Trading.Mode).Valid() {
		return fmt.Errorf("trading.mode must be long_only or long_short, got %q", c.Trading.Mode)
	}
	if c.Trading.InitialBalance <= 0 {
		return fmt.Errorf("trading.initial_balance must be positive, got %v", c.Trading.InitialBalance)
	}
	if c.Trading.PositionPct <= 0 || c.Trading.PositionPct > 100 {
		return fmt.Errorf("trading.position_percentage must be in (0, 100], got %v", c.Trading.PositionPct)
	}
	if c.Trading.SpreadPips < 0 {
		return fmt.Errorf("trading.spread_pips must not be negative, got %v", c.Trading.SpreadPips)
	}
	if _, err := c.Interval(); err != nil {
		return fmt.Errorf("trading.interval: %w", err)
	}

	switch c.Data.Source {
	case "csv":
		if c.Data.CSVPath == "" {
			return fmt.Errorf("data.csv_path is required for the csv source")
		}
	case "alpaca":
	case "synth":
		if c.Data.SynthURL == "" {
			return fmt.Errorf("data.synth_url is required for the synth source")
		}
	default:
		return fmt.Errorf("data.source must be csv, alpaca, or synth, got %q", c.Data.Source)
	}

	switch c.Broker.Kind {
	case "sim", "alpaca":
	default:
		return fmt.Errorf("broker.kind must be sim or alpaca, got %q", c.Broker.Kind)
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal.csv_path is required for the csv journal")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path is required for the sqlite journal")
		}
	default:
		return fmt.Errorf("journal.type must be none, csv, or sqlite, got %q", c.Journal.Type)
	}
	return nil
}

// Interval parses the live polling interval.
func (c *Config) Interval() (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(c.Trading.Interval))
}

// Mode returns the typed trading mode.
func (c *Config) Mode() engine.Mode {
	return engine.Mode(c.Trading.Mode)
}

// LoadCredentials reads API keys from the environment, after loading a
// .env file if one exists. Missing keys are not an error here; the
// adapters that need them fail with a specific message.
func LoadCredentials() Credentials {
	_ = godotenv.Load()
	return Credentials{
		APIKey:    os.Getenv("ALPACA_API_KEY"),
		SecretKey: os.Getenv("ALPACA_SECRET_KEY"),
		SynthKey:  os.Getenv("SYNTH_API_KEY"),
	}
}
