// Package config loads client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends for the session token.
const (
	StoragePebble   = "pebble"
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

type Config struct {
	// Origin is where the OAuth redirect comes back to. The backend's
	// FRONTEND_URL must match it.
	Origin          string        `env:"COS_ORIGIN" envDefault:"http://localhost:3000"`
	LocalBaseURL    string        `env:"COS_LOCAL_BASE_URL" envDefault:"http://localhost:8000"`
	DeployedBaseURL string        `env:"COS_BASE_URL"`
	BaseURLParam    string        `env:"COS_BASE_URL_PARAM"`
	Storage         string        `env:"COS_STORAGE" envDefault:"pebble"`
	DataDir         string        `env:"COS_DATA_DIR"`
	Profile         string        `env:"COS_PROFILE"`
	SessionTable    string        `env:"COS_SESSION_TABLE"`
	LogLevel        string        `env:"COS_LOG_LEVEL" envDefault:"info"`
	LogFile         string        `env:"COS_LOG_FILE"`
	HTTPTimeout     time.Duration `env:"COS_HTTP_TIMEOUT" envDefault:"0s"`
}

// Load reads envFiles (missing files are skipped) and then the process
// environment. Variables already set win over file values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the combination of settings after flags are applied.
func (c *Config) Validate() error {
	if _, err := c.originURL(); err != nil {
		return err
	}
	switch c.Storage {
	case StoragePebble, StorageMemory:
	case StorageDynamoDB:
		if c.SessionTable == "" {
			return errors.New("config: COS_SESSION_TABLE is required for dynamodb storage")
		}
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.HTTPTimeout < 0 {
		return errors.New("config: COS_HTTP_TIMEOUT must not be negative")
	}
	return nil
}

// IsLocal reports whether the client runs against a local origin.
func (c *Config) IsLocal() bool {
	u, err := c.originURL()
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// NeedsParamStore reports whether BaseURL must be resolved from SSM.
func (c *Config) NeedsParamStore() bool {
	return !c.IsLocal() && c.DeployedBaseURL == "" && c.BaseURLParam != ""
}

// BaseURL picks the backend address from the origin: the local URL for a
// local origin, the deployed URL otherwise.
func (c *Config) BaseURL() (string, error) {
	if c.IsLocal() {
		return c.LocalBaseURL, nil
	}
	if c.DeployedBaseURL == "" {
		return "", errors.New("config: COS_BASE_URL or COS_BASE_URL_PARAM is required for a non-local origin")
	}
	return c.DeployedBaseURL, nil
}

// CallbackAddr is the listen address serving the origin.
func (c *Config) CallbackAddr() (string, error) {
	u, err := c.originURL()
	if err != nil {
		return "", err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

func (c *Config) originURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(c.Origin))
	if err != nil {
		return nil, fmt.Errorf("config: parse COS_ORIGIN: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("config: COS_ORIGIN must be an http(s) URL, got %q", c.Origin)
	}
	return u, nil
}
