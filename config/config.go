package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/stytchctl/stytch"
	"github.com/s0up4200/stytchctl/transport"
)

// Environment variables read on top of the config file
const (
	EnvProjectID = "STYTCH_PROJECT_ID"
	EnvSecret    = "STYTCH_SECRET"
	EnvEnv       = "STYTCH_ENV"
)

// Load loads the configuration from file, .env and the environment.
// A missing config file is only an error when configPath is set explicitly.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set default values
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".stytchctl"))
		}

		// Check /etc
		v.AddConfigPath("/etc/stytchctl/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// decodeHook keeps viper's duration and slice conversions and decodes
// text unmarshalers such as stytch.Environment from strings
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// loadDotEnv exports the variables of path unless they are already set
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Stytch defaults
	v.SetDefault("stytch.env", "test")

	// HTTP defaults
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", transport.DefaultUserAgent)
	v.SetDefault("http.metrics", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("tracing.enabled", false)
}

// bindEnv maps STYTCH_* variables onto their config keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("stytch.project_id", EnvProjectID)
	_ = v.BindEnv("stytch.secret", EnvSecret)
	_ = v.BindEnv("stytch.env", EnvEnv)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Stytch.ProjectID == "" || cfg.Stytch.ProjectID == "your-project-id-here" {
		return fmt.Errorf("stytch.project_id must be set (or %s)", EnvProjectID)
	}

	if cfg.Stytch.Secret == "" || cfg.Stytch.Secret == "your-secret-here" {
		return fmt.Errorf("stytch.secret must be set (or %s)", EnvSecret)
	}

	if _, err := cfg.Stytch.Env.BaseURL(); err != nil {
		return fmt.Errorf("invalid stytch.env %q: %w", cfg.Stytch.Env, err)
	}

	if cfg.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Policy.Default != "" {
		if _, ok := cfg.Policy.Presets[cfg.Policy.Default]; !ok {
			return fmt.Errorf("policy.default %q is not a preset", cfg.Policy.Default)
		}
	}

	return nil
}

// Environment returns the configured Stytch environment
func (c *Config) Environment() stytch.Environment {
	return c.Stytch.Env
}

// TransportConfig resolves the environment into what the transport needs
func (c *Config) TransportConfig() (transport.Config, error) {
	return transport.NewConfig(c.Environment(), c.Stytch.ProjectID, c.Stytch.Secret)
}

// TransportOptions translates the http section into transport options
func (c *Config) TransportOptions() []transport.Option {
	opts := []transport.Option{
		transport.WithUserAgent(c.HTTP.UserAgent),
	}
	if c.HTTP.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(c.HTTP.Timeout))
	}
	if c.Tracing.Enabled {
		opts = append(opts, transport.WithTracing())
	}
	return opts
}
