package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from file and environment.
type Loader struct {
	configPath string
	v          *viper.Viper
}

// NewLoader creates a config loader. An empty path searches the
// default locations.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		v:          viper.New(),
	}
}

// Load reads configuration from file and environment. Environment
// variables use the FLATPLAN_ prefix with underscores, for example
// FLATPLAN_API_BASE_URL overrides api.base_url.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	l.v.SetEnvPrefix("FLATPLAN")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	bindDefaults(l.v, cfg)

	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else {
		l.v.SetConfigName("flatplan")
		l.v.SetConfigType("json")
		l.v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(homeDir, ".config", "flatplan"))
			l.v.AddConfigPath(filepath.Join(homeDir, ".flatplan"))
		}

		var notFound viper.ConfigFileNotFoundError
		if err := l.v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// bindDefaults registers defaults so env-only keys resolve without a
// config file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.max_retries", cfg.API.MaxRetries)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("auth.refresh_url", cfg.Auth.RefreshURL)
	v.SetDefault("auth.email", cfg.Auth.Email)
	v.SetDefault("auth.password", cfg.Auth.Password)
	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	v.SetDefault("storage.state_backend", cfg.Storage.StateBackend)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.color", cfg.Log.Color)
}
