// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for backend requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultBackendURL is the OpenRouter-compatible endpoint used when the
	// config omits one.
	defaultBackendURL = "https://openrouter.ai/api/v1"
	// defaultAPIKeyEnv names the environment variable read for the backend key.
	defaultAPIKeyEnv = "OPENROUTER_API_KEY"
)

// Config represents the top-level application configuration.
type Config struct {
	BackendURL     string   `json:"backendUrl,omitempty" mapstructure:"backendUrl"`
	APIKeyEnv      string   `json:"apiKeyEnv,omitempty" mapstructure:"apiKeyEnv"`
	CouncilModels  []string `json:"councilModels" mapstructure:"councilModels"`
	ChairmanModel  string   `json:"chairmanModel" mapstructure:"chairmanModel"`
	TimeoutSeconds int      `json:"timeout,omitempty" mapstructure:"timeout"`
	Debug          bool     `json:"debug" mapstructure:"debug"`
	LogFile        string   `json:"logFile,omitempty" mapstructure:"logFile"`
	ConfigPath     string   `json:"-" mapstructure:"-"`
}

// RequestTimeout returns the timeout duration for backend requests, falling
// back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a
// default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "council.log"
}

// Backend returns the backend base URL, applying the default if not set.
func (c Config) Backend() string {
	if u := strings.TrimSpace(c.BackendURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultBackendURL
}

// APIKey resolves the backend API key from the configured environment
// variable. An empty result is not an error here; the provider reports it
// when the first request is made.
func (c Config) APIKey() string {
	env := strings.TrimSpace(c.APIKeyEnv)
	if env == "" {
		env = defaultAPIKeyEnv
	}
	return os.Getenv(env)
}

// Load reads the application configuration from the specified path and
// validates it against the config schema.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a
// specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
