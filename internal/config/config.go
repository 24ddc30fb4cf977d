// Package config loads engine configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunable parameters of the engine. The escalation day
// offsets are all measured from the original submission timestamp.
type Config struct {
	DBPath    string `mapstructure:"db_path"`
	OutboxDir string `mapstructure:"outbox_dir"`

	PollInterval  time.Duration `mapstructure:"poll_interval"`
	WorkerCount   int           `mapstructure:"worker_count"`
	SubmitTimeout time.Duration `mapstructure:"submit_timeout"`

	FollowUpDays   int `mapstructure:"follow_up_days"`
	RegulatoryDays int `mapstructure:"regulatory_days"`
	AdvanceDays    int `mapstructure:"advance_days"`
	RoundCap       int `mapstructure:"round_cap"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".redress")

	return &Config{
		DBPath:         filepath.Join(base, "redress.db"),
		OutboxDir:      filepath.Join(base, "outbox"),
		PollInterval:   5 * time.Minute,
		WorkerCount:    4,
		SubmitTimeout:  30 * time.Second,
		FollowUpDays:   30,
		RegulatoryDays: 45,
		AdvanceDays:    60,
		RoundCap:       3,
	}
}

// Load reads configuration from the given YAML file (optional) and
// REDRESS_* environment variables, layered over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("REDRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("outbox_dir", def.OutboxDir)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("worker_count", def.WorkerCount)
	v.SetDefault("submit_timeout", def.SubmitTimeout)
	v.SetDefault("follow_up_days", def.FollowUpDays)
	v.SetDefault("regulatory_days", def.RegulatoryDays)
	v.SetDefault("advance_days", def.AdvanceDays)
	v.SetDefault("round_cap", def.RoundCap)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that would break the escalation ordering.
func (c *Config) Validate() error {
	if c.FollowUpDays <= 0 {
		return fmt.Errorf("follow_up_days must be positive, got %d", c.FollowUpDays)
	}
	if c.RegulatoryDays <= c.FollowUpDays {
		return fmt.Errorf("regulatory_days (%d) must exceed follow_up_days (%d)", c.RegulatoryDays, c.FollowUpDays)
	}
	if c.AdvanceDays <= c.RegulatoryDays {
		return fmt.Errorf("advance_days (%d) must exceed regulatory_days (%d)", c.AdvanceDays, c.RegulatoryDays)
	}
	if c.RoundCap < 1 {
		return fmt.Errorf("round_cap must be at least 1, got %d", c.RoundCap)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker_count must be at least 1, got %d", c.WorkerCount)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".redress", "config.yaml"), nil
}
