// Package config resolves runtime settings from FAMTRACK_* environment
// variables. Command-line flags are applied on top with Override.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/julianstephens/famtrack/internal/constants"
)

// Prefix is the environment variable prefix.
const Prefix = "FAMTRACK"

// Config holds client runtime settings.
type Config struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:8080/api"`
	WSURL          string        `envconfig:"WS_URL" default:"ws://localhost:8080/ws"`
	ConfigDir      string        `envconfig:"CONFIG_DIR" default:"~/.config/famtrack"`
	Debug          bool          `envconfig:"DEBUG" default:"false"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	ReconnectDelay time.Duration `envconfig:"RECONNECT_DELAY" default:"5s"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"file"`
}

// Flags are the command-line values that override the environment. Empty
// values leave the environment setting in place.
type Flags struct {
	APIURL         string
	WSURL          string
	ConfigDir      string
	Debug          bool
	SessionBackend string
}

// New reads the environment and validates the result.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting the environment.
func Default() *Config {
	cfg := &Config{
		APIURL:         constants.DefaultAPIURL,
		WSURL:          constants.DefaultWSURL,
		ConfigDir:      constants.DefaultConfigDir,
		PollInterval:   constants.DefaultPollInterval,
		ReconnectDelay: constants.DefaultReconnectDelay,
		HTTPTimeout:    constants.DefaultHTTPTimeout,
		SessionBackend: constants.SessionBackendFile,
	}
	_ = cfg.resolve()
	return cfg
}

// Override applies non-empty flag values.
func (c *Config) Override(f Flags) error {
	if f.APIURL != "" {
		c.APIURL = f.APIURL
	}
	if f.WSURL != "" {
		c.WSURL = f.WSURL
	}
	if f.ConfigDir != "" {
		c.ConfigDir = f.ConfigDir
	}
	if f.Debug {
		c.Debug = true
	}
	if f.SessionBackend != "" {
		c.SessionBackend = f.SessionBackend
	}
	return c.resolve()
}

// DatabasePath is the local preferences database inside the config dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.ConfigDir, constants.DatabaseFileName)
}

func (c *Config) resolve() error {
	dir, err := ExpandHome(c.ConfigDir)
	if err != nil {
		return err
	}
	c.ConfigDir = dir
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.WSURL = strings.TrimRight(c.WSURL, "/")

	switch c.SessionBackend {
	case constants.SessionBackendFile, constants.SessionBackendKeyring:
	default:
		return fmt.Errorf("unsupported session backend %q (want %q or %q)",
			c.SessionBackend, constants.SessionBackendFile, constants.SessionBackendKeyring)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive, got %v", c.ReconnectDelay)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
