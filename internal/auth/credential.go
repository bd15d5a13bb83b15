// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides the OAuth token manager used by the statement executor.
// It exchanges a long-lived refresh token for short-lived access tokens and caches
// the current one until shortly before it expires.
package auth

import (
	"context"
	"time"
)

// Credential is a bearer access token and the instant after which it must not be reused.
// ExpiresAt already includes the safety slack.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the credential may still be used at now.
func (c Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt)
}

// TokenSource supplies bearer credentials. Implementations may call real OAuth
// endpoints or provide fixed tokens for tests.
type TokenSource interface {
	Token(ctx context.Context) (Credential, error)
}

// StaticToken is a TokenSource that always returns the same credential.
type StaticToken string

// Token returns the static token with no expiry.
func (s StaticToken) Token(context.Context) (Credential, error) {
	return Credential{AccessToken: string(s), ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}
