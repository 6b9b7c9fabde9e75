package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (COHORTD_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: COHORTD_PORT -> port, etc.
	if err := k.Load(env.Provider("COHORTD_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "COHORTD_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Privacy.Epsilon <= 0 {
		return fmt.Errorf("privacy.epsilon must be positive, got %v", c.Privacy.Epsilon)
	}
	if c.Privacy.Sensitivity <= 0 {
		return fmt.Errorf("privacy.sensitivity must be positive, got %v", c.Privacy.Sensitivity)
	}
	if c.Privacy.MinDataPoints < 0 || c.Privacy.MinCohortSize < 0 || c.Privacy.SuppressionThreshold < 0 {
		return fmt.Errorf("privacy thresholds must be non-negative")
	}
	if c.Maintenance.IntervalHours < 1 {
		return fmt.Errorf("maintenance.interval_hours must be at least 1, got %d", c.Maintenance.IntervalHours)
	}
	if c.Maintenance.EventRetentionDays < 1 {
		return fmt.Errorf("maintenance.event_retention_days must be at least 1, got %d", c.Maintenance.EventRetentionDays)
	}
	return nil
}
