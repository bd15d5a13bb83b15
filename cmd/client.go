// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"net/http"

	"github.com/pkg/errors"

	"sqlapi/cli/internal/auth"
	"sqlapi/cli/internal/config"
	"sqlapi/cli/internal/endpoints"
	"sqlapi/cli/internal/httperrors"
	"sqlapi/cli/internal/keychain"
	"sqlapi/cli/internal/logging"
	"sqlapi/cli/internal/sqlexec"
)

// session bundles the configuration and clients one command needs.
type session struct {
	cfg       config.Config
	endpoints endpoints.HTTPEndpoints
	tokens    *auth.Manager
	exec      *sqlexec.Executor
}

// loadConfig reads configuration with the keychain as secret fallback.
// An unavailable keychain only disables the fallback.
func loadConfig() (config.Config, error) {
	opts := config.Options{EnvFile: envFile}
	if km, err := keychain.GetManager(); err == nil {
		opts.Secrets = km
	} else {
		logging.Debugf("keychain unavailable: %v", err)
	}
	return config.Load(opts)
}

// newSession loads and validates configuration and builds the token manager and
// executor from it.
func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return buildSession(cfg)
}

func buildSession(cfg config.Config) (*session, error) {
	ep, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	tokens := auth.NewManager(auth.OAuthConfig{
		TokenURL:     ep.Token,
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RefreshToken: cfg.OAuth.RefreshToken,
	}, auth.WithHTTPClient(client), auth.WithRotationHook(saveRotatedRefreshToken))

	exec := sqlexec.New(sqlexec.Config{
		Endpoints: ep,
		Defaults: sqlexec.Overrides{
			Database:  cfg.Defaults.Database,
			Schema:    cfg.Defaults.Schema,
			Warehouse: cfg.Defaults.Warehouse,
			Role:      cfg.Defaults.Role,
		},
		PollInterval: cfg.PollInterval,
		HTTPClient:   client,
		UserAgent:    "sqlapi-cli/" + Version,
	}, tokens)

	logging.Debugf("using %s", ep.BaseURL)
	return &session{cfg: cfg, endpoints: ep, tokens: tokens, exec: exec}, nil
}

// saveRotatedRefreshToken persists a refresh token issued during a grant.
func saveRotatedRefreshToken(token string) error {
	km, err := keychain.GetManager()
	if err != nil {
		return errors.Wrap(err, "keychain unavailable")
	}
	return km.SaveRefreshToken(token)
}

// explain prints troubleshooting help for transport failures and returns err for
// the caller to propagate.
func (s *session) explain(err error, action string) error {
	return httperrors.FormatNetworkError(err, action, httperrors.ExtractHostFromURL(s.endpoints.BaseURL))
}
