// Package config provides configuration management for the gridview CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields. The shared types are re-exported here via type
// aliases for convenience.
package config

import (
	"fmt"

	sharedcfg "github.com/leapstack-labs/gridview/internal/config"
)

// SourceConfig is an alias for the shared source configuration.
type SourceConfig = sharedcfg.SourceConfig

// GridConfig is an alias for the shared grid configuration.
type GridConfig = sharedcfg.GridConfig

// ColumnConfig is an alias for the shared column configuration.
type ColumnConfig = sharedcfg.ColumnConfig

// UIConfig holds configuration for the web UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	Metrics       bool   `koanf:"metrics"`
	SessionSecret string `koanf:"session_secret"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:    DefaultPort,
		Watch:   true,
		Metrics: true,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string         `koanf:"-"`
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`
	Source       *SourceConfig  `koanf:"source"`
	Grid         *GridConfig    `koanf:"grid"`
	Columns      []ColumnConfig `koanf:"columns"`
	UI           *UIConfig      `koanf:"ui"`
}

// Default configuration values.
const (
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort   = 8765
)

// Validate checks the grid and column sections. The source is checked by
// RequireSource since some commands run without one.
func (c *Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("invalid grid configuration: %w", err)
	}
	if err := sharedcfg.ValidateColumns(c.Columns); err != nil {
		return fmt.Errorf("invalid column configuration: %w", err)
	}
	return nil
}

// RequireSource returns the validated source section.
func (c *Config) RequireSource() (*SourceConfig, error) {
	if c.Source == nil || (c.Source.Path == "" && c.Source.URL == "") {
		return nil, fmt.Errorf("no record source configured\nHint: pass --source or set source.path in %s", sharedcfg.ConfigFileName)
	}
	if err := c.Source.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}
	return c.Source, nil
}
