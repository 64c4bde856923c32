// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (ASKVIZ_* runtime override)
//  2. Config file (~/.askviz/config.yaml)
//  3. Default values
//
// The configuration is read once at startup and is static for the process
// lifetime.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidBaseURL indicates the backend base URL is missing or unparsable.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrMissingDeployment indicates the model deployment hash is not set.
	ErrMissingDeployment = errors.New("missing deployment hash")

	// ErrInvalidLanguage indicates the display language label is empty.
	ErrInvalidLanguage = errors.New("invalid language")
)

// Defaults applied when neither the config file nor the environment
// provides a value.
const (
	DefaultBaseURL  = "http://localhost:5555"
	DefaultLanguage = "English"
)

const configDirName = ".askviz"

// Config stores application configuration.
type Config struct {
	// BaseURL is the remote ask/chart service endpoint, without trailing slash.
	BaseURL string `mapstructure:"base_url"`

	// MdlHash identifies the semantic model deployment; sent with every ask
	// request so the service resolves queries against the right schema.
	MdlHash string `mapstructure:"mdl_hash"`

	// Language is the display-language label sent with every chart request.
	Language string `mapstructure:"language"`
}

// Dir returns the askviz state/config directory (~/.askviz), creating it
// if it does not exist.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}

	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFrom(dir)
}

func loadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("language", DefaultLanguage)
	// Register the key so AutomaticEnv can surface ASKVIZ_MDL_HASH even
	// without a config file.
	v.SetDefault("mdl_hash", "")

	v.SetEnvPrefix("ASKVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{dir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// Validate performs fail-fast validation of the loaded configuration.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}

	if strings.TrimSpace(c.MdlHash) == "" {
		return fmt.Errorf("%w: set mdl_hash in config or ASKVIZ_MDL_HASH", ErrMissingDeployment)
	}

	if strings.TrimSpace(c.Language) == "" {
		return ErrInvalidLanguage
	}

	return nil
}
