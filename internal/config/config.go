// Package config provides configuration management for the analytics CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"tradelens/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Adjustment models.AdjustmentParams `mapstructure:"adjustment"`
	Sizing     models.SizingParams     `mapstructure:"sizing"`
	Columns    models.ColumnMapping    `mapstructure:"columns"`
	Cache      CacheConfig             `mapstructure:"cache"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Output     OutputConfig            `mapstructure:"output"`
}

// CacheConfig holds run-history store configuration.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// OutputConfig holds display configuration.
type OutputConfig struct {
	ColorEnabled  bool `mapstructure:"color_enabled"`
	BreakevenWins bool `mapstructure:"breakeven_wins"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradelens"
	}
	return filepath.Join(home, ".config", "tradelens")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default directory is used; a missing config file writes the
// template and loads the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("adjustment.stop_loss", 8.0)
	v.SetDefault("adjustment.efficiency", 5.0)
	v.SetDefault("sizing.kelly_fraction", 0.5)
	v.SetDefault("sizing.stake", 1000.0)
	v.SetDefault("sizing.starting_capital", 10000.0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(DefaultConfigDir(), "tradelens.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("output.color_enabled", true)
	v.SetDefault("output.breakeven_wins", false)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADELENS_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("TRADELENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Adjustment.StopLoss <= 0 {
		return fmt.Errorf("adjustment.stop_loss must be positive")
	}
	if c.Adjustment.Efficiency < 0 {
		return fmt.Errorf("adjustment.efficiency must be non-negative")
	}
	if c.Sizing.KellyFraction <= 0 || c.Sizing.KellyFraction > 1 {
		return fmt.Errorf("sizing.kelly_fraction must be in (0, 1]")
	}
	if c.Sizing.Stake <= 0 {
		return fmt.Errorf("sizing.stake must be positive")
	}
	if c.Sizing.StartingCapital <= 0 {
		return fmt.Errorf("sizing.starting_capital must be positive")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	return nil
}

// WinLossSource builds the classification source from the configured mapping
// and breakeven policy.
func (c *Config) WinLossSource() models.WinLossSource {
	if c.Columns.WinLoss != "" {
		src := models.ExplicitWinLoss(c.Columns.WinLoss)
		src.BreakevenWins = c.Output.BreakevenWins
		return src
	}
	return models.DerivedWinLoss(c.Output.BreakevenWins)
}
