package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// API configuration
	API APIConfig `mapstructure:"api" json:"api"`

	// Authentication configuration
	Auth AuthConfig `mapstructure:"auth" json:"auth"`

	// Storage paths
	Storage StorageConfig `mapstructure:"storage" json:"storage"`

	// Logging
	Log LogConfig `mapstructure:"log" json:"log"`
}

// APIConfig for server communication.
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url" json:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" json:"user_agent"`
}

// AuthConfig for authentication settings.
type AuthConfig struct {
	// Token refresh endpoint. The backend historically exposed this on a
	// different host than the API base, so it stays configurable as an
	// absolute URL. Empty means BaseURL + DefaultRefreshPath.
	RefreshURL string `mapstructure:"refresh_url" json:"refresh_url,omitempty"`

	// Optional credentials for non-interactive login
	Email    string `mapstructure:"email" json:"email,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
}

// StorageConfig for durable client state.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir" json:"data_dir"`

	// Backend for the key-value state store: "file" or "sqlite".
	StateBackend string `mapstructure:"state_backend" json:"state_backend"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" json:"format"` // text, json
	File   string `mapstructure:"file" json:"file"`     // Log file path (empty = stderr)
	Color  bool   `mapstructure:"color" json:"color"`
}

// DefaultRefreshPath is the refresh endpoint relative to the API base.
const DefaultRefreshPath = "/v1/auth/token/refresh/"

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			UserAgent:  "flatplan-cli",
		},
		Storage: StorageConfig{
			DataDir:      ".flatplan",
			StateBackend: "file",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
		},
	}
}

// RefreshURL returns the effective token refresh endpoint.
func (c *Config) RefreshURL() string {
	if c.Auth.RefreshURL != "" {
		return c.Auth.RefreshURL
	}
	return c.API.BaseURL + DefaultRefreshPath
}

// StatePath returns the path of the durable state store.
func (c *Config) StatePath() string {
	if c.Storage.StateBackend == "sqlite" {
		return filepath.Join(c.Storage.DataDir, "state.db")
	}
	return filepath.Join(c.Storage.DataDir, "state.json")
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}

	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries cannot be negative")
	}

	switch c.Storage.StateBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid state backend: %s", c.Storage.StateBackend)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Storage.DataDir}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
