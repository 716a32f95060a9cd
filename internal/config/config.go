//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-posload.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for pgedge-posload.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Sources locates the exported files to load.
	Sources SourcesConfig `mapstructure:"sources"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Sample holds configuration for the sample subcommand.
	Sample SampleConfig `mapstructure:"sample"`
}

// SourcesConfig holds the paths of the POS export files.
type SourcesConfig struct {
	CategorySales string `mapstructure:"category_sales"`
	SalesSummary  string `mapstructure:"sales_summary"`
	DetailItems   string `mapstructure:"detail_items"`

	// Schema is the DDL script run before loading. The schema command
	// prints the built-in one.
	Schema string `mapstructure:"schema"`
}

// LoadConfig holds configuration for a load.
type LoadConfig struct {
	// RejectSamples is how many rejected rows per table are kept for the report.
	RejectSamples int `mapstructure:"reject_samples"`

	// DryRun runs the pipelines without touching the database.
	DryRun bool `mapstructure:"dry_run"`
}

// ReportConfig holds configuration for analytical views.
type ReportConfig struct {
	// Limit caps the number of rows returned by ranked views.
	Limit int `mapstructure:"limit"`
}

// SampleConfig holds configuration for sample export generation.
// A zero seed generates different files on every run.
type SampleConfig struct {
	Rows           int     `mapstructure:"rows"`
	Seed           uint64  `mapstructure:"seed"`
	MalformedRatio float64 `mapstructure:"malformed_ratio"`
	Weeks          int     `mapstructure:"weeks"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Load: LoadConfig{
			RejectSamples: 5,
		},
		Report: ReportConfig{
			Limit: 10,
		},
		Sample: SampleConfig{
			Rows:           500,
			Seed:           1,
			MalformedRatio: 0.05,
			Weeks:          4,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-posload.yaml
// 3. ~/.config/pgedge-posload/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-posload")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-posload"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
// A dry run never connects, so it needs no connection string.
func (c *Config) ValidateLoad() error {
	if !c.Load.DryRun {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if c.Load.RejectSamples < 0 {
		return fmt.Errorf("reject_samples must be non-negative")
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Report.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	return nil
}

// ValidateSample checks configuration required for the sample command.
func (c *Config) ValidateSample() error {
	if c.Sample.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	if c.Sample.Weeks < 1 {
		return fmt.Errorf("weeks must be at least 1")
	}
	if c.Sample.MalformedRatio < 0 || c.Sample.MalformedRatio > 1 {
		return fmt.Errorf("malformed_ratio must be between 0 and 1")
	}
	return nil
}
