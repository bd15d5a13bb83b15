// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "sqlapi/cli/internal/errors"
	"sqlapi/cli/internal/logging"
)

const (
	// defaultExpiresIn applies when the provider omits expires_in.
	defaultExpiresIn = 600 * time.Second
	defaultTimeout   = 30 * time.Second
)

// OAuthConfig holds the refresh-token grant parameters.
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.client = c }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRotationHook registers a callback invoked when the provider issues a new
// refresh token. A hook error is logged and does not fail the token lookup.
func WithRotationHook(fn func(refreshToken string) error) Option {
	return func(m *Manager) { m.onRotate = fn }
}

// Manager caches one access token and refreshes it when it is about to expire.
//
// The cached credential is owned by the Manager and guarded by mu, so a Manager may
// be shared between goroutines; concurrent callers are serialized and at most one
// refresh is in flight at a time.
type Manager struct {
	client   *http.Client
	now      func() time.Time
	onRotate func(string) error

	mu   sync.Mutex
	cfg  OAuthConfig
	cred Credential
}

// NewManager creates a token manager for the given OAuth client.
func NewManager(cfg OAuthConfig, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns the cached credential while it is valid and otherwise performs
// one refresh-token exchange. Refresh failures are returned as auth errors and
// are not retried.
func (m *Manager) Token(ctx context.Context) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred.Valid(m.now()) {
		return m.cred, nil
	}

	cred, err := m.refresh(ctx)
	if err != nil {
		return Credential{}, err
	}
	m.cred = cred
	return cred, nil
}

// Invalidate drops the cached credential so the next Token call refreshes.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = Credential{}
}

// RefreshToken returns the refresh token currently in use, which differs from the
// configured one after the provider rotated it.
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.RefreshToken
}

// refresh calls the token endpoint with the refresh-token grant.
// Must be called with mu held.
func (m *Manager) refresh(ctx context.Context) (Credential, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {m.cfg.RefreshToken},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, apperrors.Wrap(apperrors.AuthFailed, "build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	logging.Debugf("auth: refreshing access token via %s", m.cfg.TokenURL)
	resp, err := m.client.Do(req)
	if err != nil {
		return Credential{}, apperrors.Wrap(apperrors.AuthFailed, "token refresh request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		e := &apperrors.E{
			Kind:       apperrors.AuthFailed,
			Message:    "failed to refresh token",
			StatusCode: resp.StatusCode,
		}
		var oauthErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(b, &oauthErr) == nil && oauthErr.Error != "" {
			e.Code = oauthErr.Error
			if oauthErr.Description != "" {
				e.Err = fmt.Errorf("%s", oauthErr.Description)
			}
		} else if body := strings.TrimSpace(string(b)); body != "" {
			e.Err = fmt.Errorf("%s", logging.Mask(body))
		}
		return Credential{}, e
	}

	var result map[string]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return Credential{}, apperrors.Wrap(apperrors.AuthFailed, "decode token response", err)
	}

	accessToken, _ := result["access_token"].(string)
	if accessToken == "" {
		return Credential{}, apperrors.New(apperrors.AuthFailed, "no access_token in response")
	}

	expiresIn := defaultExpiresIn
	if d, ok := parseSeconds(result["expires_in"]); ok {
		expiresIn = d
	}

	if rotated, _ := result["refresh_token"].(string); rotated != "" && rotated != m.cfg.RefreshToken {
		m.cfg.RefreshToken = rotated
		if m.onRotate != nil {
			if err := m.onRotate(rotated); err != nil {
				logging.Warnf("could not persist rotated refresh token: %v", err)
			}
		}
	}

	// Cached for 90% of the advertised lifetime.
	expiresAt := m.now().Add(expiresIn * 9 / 10)
	logging.Debugf("auth: access token valid until %s", expiresAt.Format(time.RFC3339))
	return Credential{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

// parseSeconds accepts expires_in as a JSON number or numeric string. It reports
// false only when the value is absent or not a number.
func parseSeconds(v any) (time.Duration, bool) {
	var secs float64
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		secs = f
	case float64:
		secs = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		secs = f
	default:
		return 0, false
	}
	// Zero or negative means the token is already expired.
	if secs <= 0 {
		return 0, true
	}
	return time.Duration(secs * float64(time.Second)), true
}
