// Package config provides CLI configuration for merx, merged from
// defaults, an optional merx.yaml file, MERX_ environment variables,
// and command-line flags, in ascending precedence.
package config

import "fmt"

// Config holds all CLI configuration options.
type Config struct {
	Color   string `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Color:   "auto",
		Verbose: false,
	}
}

// Validate checks option values after merging.
func (c *Config) Validate() error {
	switch c.Color {
	case "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("invalid color mode %q (expected auto, always, or never)", c.Color)
}
