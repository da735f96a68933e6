// Package config provides Viper-based configuration loading for the loot
// engine and its CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// AwardConfig holds award-engine tuning.
type AwardConfig struct {
	// StaggerMs delays each queued award before it starts, spreading bursts
	// of near-simultaneous token drops.
	StaggerMs int `mapstructure:"stagger_ms"`
	// ItemStaggerMs, when positive, creates items one at a time with this
	// pause between each instead of one batched call.
	ItemStaggerMs int `mapstructure:"item_stagger_ms"`
	// RetryAttempts bounds each host mutation call (including the first try).
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryBaseDelayMs is the linear-backoff unit between retries.
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms"`
	// MultiGroup awards every matching group; false keeps the legacy
	// first-match-only policy.
	MultiGroup bool `mapstructure:"multi_group"`
}

// Stagger returns the configured inter-award delay.
func (a AwardConfig) Stagger() time.Duration {
	return time.Duration(a.StaggerMs) * time.Millisecond
}

// ItemStagger returns the configured inter-item delay.
func (a AwardConfig) ItemStagger() time.Duration {
	return time.Duration(a.ItemStaggerMs) * time.Millisecond
}

// RetryBaseDelay returns the configured backoff unit.
func (a AwardConfig) RetryBaseDelay() time.Duration {
	return time.Duration(a.RetryBaseDelayMs) * time.Millisecond
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres rule
// store backend.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StoreConfig selects and configures the rule-set persistence backend.
type StoreConfig struct {
	// Backend is "file" or "postgres".
	Backend string `mapstructure:"backend"`
	// Path is the rule-set YAML file location for the file backend.
	Path string `mapstructure:"path"`
	// Database configures the postgres backend.
	Database DatabaseConfig `mapstructure:"database"`
}

// SystemConfig identifies the hosted game system.
type SystemConfig struct {
	// ID is the runtime system identifier (e.g. "dnd5e", "pf2e"). Unknown
	// identifiers fall back to the generic adapter.
	ID string `mapstructure:"id"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Award   AwardConfig   `mapstructure:"award"`
	Store   StoreConfig   `mapstructure:"store"`
	System  SystemConfig  `mapstructure:"system"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAward(c.Award); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStore(c.Store); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateAward(a AwardConfig) error {
	var errs []string
	if a.StaggerMs < 0 {
		errs = append(errs, fmt.Sprintf("award.stagger_ms must be >= 0, got %d", a.StaggerMs))
	}
	if a.ItemStaggerMs < 0 {
		errs = append(errs, fmt.Sprintf("award.item_stagger_ms must be >= 0, got %d", a.ItemStaggerMs))
	}
	if a.RetryAttempts < 1 {
		errs = append(errs, fmt.Sprintf("award.retry_attempts must be >= 1, got %d", a.RetryAttempts))
	}
	if a.RetryBaseDelayMs < 0 {
		errs = append(errs, fmt.Sprintf("award.retry_base_delay_ms must be >= 0, got %d", a.RetryBaseDelayMs))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStore(s StoreConfig) error {
	switch s.Backend {
	case "file":
		if s.Path == "" {
			return errors.New("store.path must not be empty for the file backend")
		}
		return nil
	case "postgres":
		return validateDatabase(s.Database)
	default:
		return fmt.Errorf("store.backend must be one of [file, postgres], got %q", s.Backend)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "store.database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("store.database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "store.database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "store.database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("store.database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("store.database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("store.database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "store.database.min_conns must not exceed store.database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// setDefaults applies default values for optional settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("award.stagger_ms", 0)
	v.SetDefault("award.item_stagger_ms", 0)
	v.SetDefault("award.retry_attempts", 3)
	v.SetDefault("award.retry_base_delay_ms", 50)
	v.SetDefault("award.multi_group", true)
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "rules.yaml")
	v.SetDefault("store.database.sslmode", "disable")
	v.SetDefault("store.database.max_conns", 4)
	v.SetDefault("store.database.min_conns", 0)
	v.SetDefault("system.id", "dnd5e")
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with TOKENLOOT_ prefix
	v.SetEnvPrefix("TOKENLOOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Award: AwardConfig{
			RetryAttempts:    3,
			RetryBaseDelayMs: 50,
			MultiGroup:       true,
		},
		Store:  StoreConfig{Backend: "file", Path: "rules.yaml"},
		System: SystemConfig{ID: "dnd5e"},
	}
}
