// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "YAHTZEE"

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string
	// Format is the log output format: "json" or "console".
	Format string
}

type Config struct {
	Addr         string        `mapstructure:"addr"`
	RoomIdleTTL  time.Duration `mapstructure:"room_idle_ttl"`
	ClientBuffer int           `mapstructure:"client_buffer"`
	// PingInterval is how often idle connections are probed. Zero disables it.
	PingInterval time.Duration `mapstructure:"ping_interval"`
	PingTimeout  time.Duration `mapstructure:"ping_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// AllowedOrigins is a comma separated list of websocket origin patterns.
	AllowedOrigins string `mapstructure:"allowed_origins"`
	ResultsLimit   int    `mapstructure:"results_limit"`
	// DatabaseURL selects the Postgres results store; empty keeps results in memory.
	DatabaseURL string `mapstructure:"database_url"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

func (c Config) Logging() LoggingConfig {
	return LoggingConfig{Level: c.LogLevel, Format: c.LogFormat}
}

var defaults = map[string]any{
	"addr":            ":8080",
	"room_idle_ttl":   10 * time.Minute,
	"client_buffer":   16,
	"ping_interval":   30 * time.Second,
	"ping_timeout":    10 * time.Second,
	"write_timeout":   5 * time.Second,
	"allowed_origins": "",
	"results_limit":   50,
	"database_url":    "",
	"log_level":       "info",
	"log_format":      "json",
}

// Load reads envFiles (missing files are skipped) into the process
// environment, then builds and validates the Config from YAHTZEE_* variables.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	var errs []string
	if c.Addr == "" {
		errs = append(errs, "addr must not be empty")
	}
	if c.RoomIdleTTL < 0 {
		errs = append(errs, "room_idle_ttl must not be negative")
	}
	if c.ClientBuffer < 1 {
		errs = append(errs, fmt.Sprintf("client_buffer must be >= 1, got %d", c.ClientBuffer))
	}
	if c.PingInterval < 0 {
		errs = append(errs, "ping_interval must not be negative")
	}
	if c.PingInterval > 0 && c.PingTimeout <= 0 {
		errs = append(errs, "ping_timeout must be positive when ping_interval is set")
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, "write_timeout must be positive")
	}
	if c.ResultsLimit < 1 {
		errs = append(errs, fmt.Sprintf("results_limit must be >= 1, got %d", c.ResultsLimit))
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("log_level must be one of [debug, info, warn, error], got %q", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Sprintf("log_format must be json or console, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
