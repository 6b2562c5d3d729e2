package config

import (
	"time"

	"github.com/s0up4200/stytchctl/stytch"
)

// Config represents the complete configuration structure
type Config struct {
	Stytch  StytchConfig  `mapstructure:"stytch"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// StytchConfig holds the project credentials and target environment
type StytchConfig struct {
	// Env is decoded from "live", "test" or the URL of a self-hosted instance
	Env       stytch.Environment `mapstructure:"env"`
	ProjectID string             `mapstructure:"project_id"`
	Secret    string             `mapstructure:"secret"`
}

// HTTPConfig tunes the HTTP transport
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Metrics   bool          `mapstructure:"metrics"`
}

// PolicyConfig contains session policy definitions
type PolicyConfig struct {
	// Default is applied by "sessions authenticate" when no --policy is given
	Default string            `mapstructure:"default"`
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// TracingConfig toggles OpenTelemetry spans written to stderr
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
