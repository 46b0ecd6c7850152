package correlate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the host-tunable settings of the correlation core.
type Config struct {
	Correlation CorrelationConfig `yaml:"correlation"`
	Icons       IconConfiguration `yaml:"icons"`
}

// CorrelationConfig controls TTL and sweep behaviour.
type CorrelationConfig struct {
	// DefaultTTL is applied to registrations without an explicit TTL.
	// Must be positive, or -1ns to disable expiry.
	DefaultTTL time.Duration `yaml:"defaultTTL"`

	// CleanupInterval is the scheduler sweep interval. Must be positive.
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Correlation: CorrelationConfig{
			DefaultTTL:      DefaultTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Icons: DefaultIconConfiguration(),
	}
}

// LoadConfig reads a YAML configuration file, fills unset fields with
// defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Correlation.DefaultTTL == 0 {
		c.Correlation.DefaultTTL = DefaultTTL
	}
	if c.Correlation.CleanupInterval == 0 {
		c.Correlation.CleanupInterval = DefaultCleanupInterval
	}

	def := DefaultIconConfiguration()
	if c.Icons.ClockIconPath == "" {
		c.Icons.ClockIconPath = def.ClockIconPath
	}
	if c.Icons.ArrowIconPath == "" {
		c.Icons.ArrowIconPath = def.ArrowIconPath
	}
	if c.Icons.DisabledClockIconPath == "" {
		c.Icons.DisabledClockIconPath = def.DisabledClockIconPath
	}
	if c.Icons.IconSize == 0 {
		c.Icons.IconSize = def.IconSize
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Correlation.DefaultTTL <= 0 && c.Correlation.DefaultTTL != TTLNever {
		return fmt.Errorf("default TTL must be positive or -1 (never), got %v", c.Correlation.DefaultTTL)
	}
	if c.Correlation.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %v", c.Correlation.CleanupInterval)
	}
	return c.Icons.Validate()
}
