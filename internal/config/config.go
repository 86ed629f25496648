// Package config provides configuration management for the bridge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
	"github.com/ChardPeter/chaddybot-bridge/internal/prompt"
)

// Config holds all bridge configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Log      LogConfig      `mapstructure:"log"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	SharedSecret    string `mapstructure:"shared_secret"`
	DeadlineSeconds int    `mapstructure:"deadline_seconds"`
}

// Deadline returns the outer bound for a single decision request.
func (s ServerConfig) Deadline() time.Duration {
	return time.Duration(s.DeadlineSeconds) * time.Second
}

// ClientDeadline returns the completion call budget. Half the outer bound
// leaves room for parsing, validation and the response write even when the
// provider uses every millisecond it is given.
func (s ServerConfig) ClientDeadline() time.Duration {
	return s.Deadline() / 2
}

// ProviderConfig holds the completion provider configuration.
type ProviderConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	PromptVariant string `mapstructure:"prompt_variant"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// JournalConfig holds decision journal configuration.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/chaddybot"
	}
	return filepath.Join(home, ".config", "chaddybot")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// A missing bridge.toml is not an error: the bridge can run entirely from
// environment variables, so defaults apply and the file is optional.
func Load(configDir string) (*Config, error) {
	// A .env alongside the binary is picked up if present.
	_ = godotenv.Load()

	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "bridge", cfg); err != nil {
		return nil, fmt.Errorf("loading bridge.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// The template ships journal.path as an empty string; an explicit
	// empty value must not clobber the default location.
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = filepath.Join(configDir, "bridge.db")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	// Set defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.deadline_seconds", 30)
	v.SetDefault("provider.model", "gpt-4o-mini")
	v.SetDefault("provider.prompt_variant", prompt.DefaultVariant)
	v.SetDefault("log.level", "info")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(configDir, "bridge.db"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	// Server settings
	if v := os.Getenv("BRIDGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BRIDGE_SHARED_SECRET"); v != "" {
		cfg.Server.SharedSecret = v
	}
	if v := os.Getenv("BRIDGE_DEADLINE_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Server.DeadlineSeconds = secs
		}
	}

	// Provider credentials
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("BRIDGE_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("BRIDGE_PROMPT_VARIANT"); v != "" {
		cfg.Provider.PromptVariant = v
	}

	// Logging and journal
	if v := os.Getenv("BRIDGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BRIDGE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// Validate validates the configuration. Failures wrap ErrConfigInvalid
// so callers can distinguish a bad config from a load error.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d must be between 1 and 65535", apperrors.ErrConfigInvalid, c.Server.Port)
	}

	if c.Server.DeadlineSeconds < 2 {
		return fmt.Errorf("%w: deadline_seconds must be at least 2 (got %d)", apperrors.ErrConfigInvalid, c.Server.DeadlineSeconds)
	}
	if c.Server.DeadlineSeconds > 300 {
		return fmt.Errorf("%w: deadline_seconds must be at most 300 (got %d)", apperrors.ErrConfigInvalid, c.Server.DeadlineSeconds)
	}

	if c.Provider.Model == "" {
		return fmt.Errorf("%w: provider model cannot be empty", apperrors.ErrConfigInvalid)
	}

	if _, err := prompt.Lookup(c.Provider.PromptVariant); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	return nil
}

// HasProviderCredential reports whether a completion credential is set.
// The bridge still serves liveness checks without one; decision requests
// fail fast instead of dialing the provider.
func (c *Config) HasProviderCredential() bool {
	return c.Provider.APIKey != ""
}

// HasSharedSecret reports whether request authentication is configured.
func (c *Config) HasSharedSecret() bool {
	return c.Server.SharedSecret != ""
}
