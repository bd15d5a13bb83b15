package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"SNOWFLAKE_ACCOUNT_IDENTIFIER",
	"SNOWFLAKE_BASE_URL",
	"OAUTH_CLIENT_ID",
	"OAUTH_CLIENT_SECRET",
	"OAUTH_REFRESH_TOKEN",
	"MCP_DATABASE",
	"MCP_SCHEMA",
	"SNOWFLAKE_WAREHOUSE",
	"SNOWFLAKE_ROLE",
	"SQLAPI_TIMEOUT",
	"SQLAPI_HTTP_TIMEOUT",
	"SQLAPI_POLL_INTERVAL",
}

// clearEnv unsets every config variable and restores the previous values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		prev, ok := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		k := k
		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(k, prev)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}
}

type fakeSecrets struct {
	refresh, secret string
}

func (f fakeSecrets) LoadRefreshToken() (string, error) {
	if f.refresh == "" {
		return "", errors.New("not found")
	}
	return f.refresh, nil
}

func (f fakeSecrets) LoadClientSecret() (string, error) {
	if f.secret == "" {
		return "", errors.New("not found")
	}
	return f.secret, nil
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNOWFLAKE_ACCOUNT_IDENTIFIER", "acme-prod")
	t.Setenv("OAUTH_CLIENT_ID", "cid")
	t.Setenv("OAUTH_CLIENT_SECRET", "csecret")
	t.Setenv("OAUTH_REFRESH_TOKEN", "rtoken")
	t.Setenv("MCP_DATABASE", "ANALYTICS")
	t.Setenv("SQLAPI_TIMEOUT", "2m")

	c, err := Load(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "acme-prod", c.Account)
	assert.Equal(t, "cid", c.OAuth.ClientID)
	assert.Equal(t, "rtoken", c.OAuth.RefreshToken)
	assert.Equal(t, "ANALYTICS", c.Defaults.Database)
	assert.Equal(t, 2*time.Minute, c.Timeout)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.Equal(t, time.Second, c.PollInterval)

	e, err := c.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, "https://acme-prod.snowflakecomputing.com/api/v2/statements", e.Statements)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SNOWFLAKE_ACCOUNT_IDENTIFIER=from-file\nMCP_SCHEMA=PUBLIC\n"), 0o600))
	// godotenv does not override variables already present
	t.Setenv("MCP_SCHEMA", "STAGING")

	c, err := Load(Options{EnvFile: envFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "from-file", c.Account)
	assert.Equal(t, "STAGING", c.Defaults.Schema)

	_, err = Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env"), Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestLoadConfigFileAndSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, Save(dir, Config{
		Account:  "acme-dev",
		OAuth:    OAuth{ClientID: "cid", ClientSecret: "never-written", RefreshToken: "never-written"},
		Defaults: Defaults{Warehouse: "WH_XS"},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "never-written")

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	t.Setenv("SNOWFLAKE_WAREHOUSE", "WH_L")

	c, err := Load(Options{Dir: dir, Secrets: fakeSecrets{refresh: "kc-refresh", secret: "kc-secret"}})
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "acme-dev", c.Account)
	assert.Equal(t, "cid", c.OAuth.ClientID)
	assert.Equal(t, "WH_L", c.Defaults.Warehouse)
	assert.Equal(t, "kc-refresh", c.OAuth.RefreshToken)
	assert.Equal(t, "kc-secret", c.OAuth.ClientSecret)
}

func TestEnvironmentSecretsBeatKeychain(t *testing.T) {
	clearEnv(t)
	t.Setenv("OAUTH_REFRESH_TOKEN", "env-refresh")

	c, err := Load(Options{Dir: t.TempDir(), Secrets: fakeSecrets{refresh: "kc-refresh"}})
	require.NoError(t, err)
	assert.Equal(t, "env-refresh", c.OAuth.RefreshToken)
	assert.Empty(t, c.OAuth.ClientSecret)
}

func TestValidate(t *testing.T) {
	err := Config{Timeout: time.Minute, OAuth: OAuth{ClientID: "cid"}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNOWFLAKE_ACCOUNT_IDENTIFIER")
	assert.Contains(t, err.Error(), "OAUTH_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "OAUTH_REFRESH_TOKEN")
	assert.NotContains(t, err.Error(), "OAUTH_CLIENT_ID")

	full := Config{
		BaseURL: "http://127.0.0.1:8080",
		Timeout: time.Minute,
		OAuth:   OAuth{ClientID: "a", ClientSecret: "b", RefreshToken: "c"},
	}
	require.NoError(t, full.Validate())

	e, err := full.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/oauth/token-request", e.Token)
}
