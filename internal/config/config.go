// Package config loads CLI configuration from the environment, an optional .env file
// and the XDG config dir. Only non-secret settings are written to disk; secrets come
// from the environment or the OS keychain.
package config

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"sqlapi/cli/internal/endpoints"
	"sqlapi/cli/internal/xdg"
)

// FileName is the name of the config file inside the XDG config dir.
const FileName = "config.json"

// Config holds everything needed to build a token manager and an executor.
type Config struct {
	Account string `json:"account,omitempty" env:"SNOWFLAKE_ACCOUNT_IDENTIFIER" env-description:"account identifier, e.g. myorg-myaccount"`
	BaseURL string `json:"base_url,omitempty" env:"SNOWFLAKE_BASE_URL" env-description:"overrides the URL derived from the account"`

	OAuth    OAuth    `json:"oauth"`
	Defaults Defaults `json:"defaults"`

	Timeout      time.Duration `json:"-" env:"SQLAPI_TIMEOUT" env-default:"60s" env-description:"statement timeout"`
	HTTPTimeout  time.Duration `json:"-" env:"SQLAPI_HTTP_TIMEOUT" env-default:"30s" env-description:"per-request HTTP timeout"`
	PollInterval time.Duration `json:"-" env:"SQLAPI_POLL_INTERVAL" env-default:"1s" env-description:"wait between status polls"`
}

// OAuth holds the refresh-token grant settings. Secrets are never serialized.
type OAuth struct {
	ClientID     string `json:"client_id,omitempty" env:"OAUTH_CLIENT_ID"`
	ClientSecret string `json:"-" env:"OAUTH_CLIENT_SECRET"`
	RefreshToken string `json:"-" env:"OAUTH_REFRESH_TOKEN"`
}

// Defaults are statement context values applied when a call does not override them.
type Defaults struct {
	Database  string `json:"database,omitempty" env:"MCP_DATABASE"`
	Schema    string `json:"schema,omitempty" env:"MCP_SCHEMA"`
	Warehouse string `json:"warehouse,omitempty" env:"SNOWFLAKE_WAREHOUSE"`
	Role      string `json:"role,omitempty" env:"SNOWFLAKE_ROLE"`
}

// SecretStore supplies secrets missing from the environment.
type SecretStore interface {
	LoadRefreshToken() (string, error)
	LoadClientSecret() (string, error)
}

// Options control where Load looks.
type Options struct {
	// EnvFile is an explicit .env path; it must exist when set. When empty an
	// optional ./.env is loaded.
	EnvFile string
	// Dir overrides the XDG config dir.
	Dir string
	// Secrets is consulted for a missing refresh token or client secret.
	Secrets SecretStore
}

// Load builds the configuration. Precedence, highest first: process environment,
// .env file, config file, keychain (secrets only), defaults.
func Load(opts Options) (Config, error) {
	var c Config

	if err := loadDotEnv(opts.EnvFile); err != nil {
		return c, err
	}

	p, err := path(opts.Dir)
	if err != nil {
		return c, err
	}

	if _, statErr := os.Stat(p); statErr == nil {
		if err := cleanenv.ReadConfig(p, &c); err != nil {
			return c, errors.Wrapf(err, "failed to read config file %s", p)
		}
	} else {
		if !errors.Is(statErr, fs.ErrNotExist) {
			return c, errors.Wrap(statErr, "failed to stat config file")
		}
		if err := cleanenv.ReadEnv(&c); err != nil {
			return c, errors.Wrap(err, "failed to read environment")
		}
	}

	if opts.Secrets != nil {
		c.fillSecrets(opts.Secrets)
	}
	return c, nil
}

func loadDotEnv(file string) error {
	if file != "" {
		if err := godotenv.Load(file); err != nil {
			return errors.Wrapf(err, "failed to load env file %s", file)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "failed to load .env")
	}
	return nil
}

// fillSecrets takes missing secrets from the store. Lookup failures leave the field
// empty; Validate reports it.
func (c *Config) fillSecrets(s SecretStore) {
	if c.OAuth.RefreshToken == "" {
		if v, err := s.LoadRefreshToken(); err == nil {
			c.OAuth.RefreshToken = v
		}
	}
	if c.OAuth.ClientSecret == "" {
		if v, err := s.LoadClientSecret(); err == nil {
			c.OAuth.ClientSecret = v
		}
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.Account == "" && c.BaseURL == "" {
		missing = append(missing, "SNOWFLAKE_ACCOUNT_IDENTIFIER")
	}
	if c.OAuth.ClientID == "" {
		missing = append(missing, "OAUTH_CLIENT_ID")
	}
	if c.OAuth.ClientSecret == "" {
		missing = append(missing, "OAUTH_CLIENT_SECRET")
	}
	if c.OAuth.RefreshToken == "" {
		missing = append(missing, "OAUTH_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required configuration: %s (run 'sqlapi login' or set them in the environment)", strings.Join(missing, ", "))
	}
	if c.Timeout <= 0 {
		return errors.New("SQLAPI_TIMEOUT must be positive")
	}
	return nil
}

// Endpoints resolves the REST endpoints, preferring an explicit base URL.
func (c Config) Endpoints() (endpoints.HTTPEndpoints, error) {
	if c.BaseURL != "" {
		base, err := endpoints.BaseURL(c.BaseURL)
		if err != nil {
			return endpoints.HTTPEndpoints{}, err
		}
		return endpoints.New(base), nil
	}
	return endpoints.ForAccount(c.Account)
}

// Save writes the non-secret settings with 0600 permissions.
func Save(dir string, c Config) error {
	p, err := path(dir)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(p, b, 0o600), "failed to write config file")
}

// Path returns the config file location.
func Path(dir string) (string, error) {
	return path(dir)
}

func path(dir string) (string, error) {
	if dir == "" {
		d, err := xdg.ConfigDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve config dir")
		}
		dir = d
	}
	return filepath.Join(dir, FileName), nil
}
