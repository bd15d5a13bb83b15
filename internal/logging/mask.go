// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes a verbose debug logger built on pterm and functions for masking
// OAuth secrets in log lines and error messages shown to users.
//
// Token refresh failures echo the provider's response body, and statement errors may
// echo request headers, so anything printed goes through Mask first.
package logging

import (
	"regexp"
)

var (
	reBearer     = regexp.MustCompile(`(?i)(bearer\s+)(\S+)`)
	reFormSecret = regexp.MustCompile(`(?i)((?:access_token|refresh_token|client_secret|token)=)([^\s&;]+)`)
	reJSONSecret = regexp.MustCompile(`(?i)("(?:access_token|refresh_token|client_secret)"\s*:\s*")([^"]*)(")`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = reBearer.ReplaceAllString(out, "${1}***")
	out = reFormSecret.ReplaceAllString(out, "${1}***")
	out = reJSONSecret.ReplaceAllString(out, "${1}***${3}")
	return out
}

// MaskSecret shows only the last four characters of a secret value.
func MaskSecret(v string) string {
	if v == "" {
		return "(not set)"
	}
	if len(v) <= 8 {
		return "***"
	}
	return "***" + v[len(v)-4:]
}
