// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoints

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const hostSuffix = ".snowflakecomputing.com"

// Account identifiers: "org-account", "locator" or "locator.region[.cloud]".
var reAccount = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*(\.[A-Za-z0-9][A-Za-z0-9_\-]*)*$`)

// ParseError represents an error that occurred during account parsing
type ParseError struct {
	Account string
	Reason  string
	Hint    string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid account identifier: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid account identifier: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(account, reason, hint string) *ParseError {
	return &ParseError{
		Account: account,
		Reason:  reason,
		Hint:    hint,
	}
}

// BaseURL normalizes an account identifier into the account's HTTPS base URL.
// A full URL is accepted as-is (scheme and host only); anything else must be a bare
// identifier, optionally already suffixed with the service domain.
func BaseURL(account string) (string, error) {
	a := strings.TrimSpace(account)
	if a == "" {
		return "", NewParseError(account, "empty account identifier", "set SNOWFLAKE_ACCOUNT_IDENTIFIER, e.g. myorg-myaccount")
	}

	lower := strings.ToLower(a)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		u, err := url.Parse(a)
		if err != nil || u.Host == "" {
			return "", NewParseError(account, "malformed URL", "use https://<account>"+hostSuffix)
		}
		return u.Scheme + "://" + u.Host, nil
	}

	host := strings.TrimSuffix(lower, hostSuffix)
	if !reAccount.MatchString(host) {
		return "", NewParseError(account, "unexpected characters", "use the form orgname-accountname or locator.region")
	}
	// Underscores are not valid in hostnames; the service maps them to hyphens.
	host = strings.ReplaceAll(host, "_", "-")
	return "https://" + host + hostSuffix, nil
}
