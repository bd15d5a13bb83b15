// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoints resolves the warehouse account into REST endpoint URLs.
package endpoints

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	tokenPath      = "/oauth/token-request"
	statementsPath = "/api/v2/statements"
)

// HTTPEndpoints contains the REST URLs used by the client.
type HTTPEndpoints struct {
	BaseURL    string // e.g., "https://myorg-myaccount.snowflakecomputing.com"
	Token      string // e.g., "{base}/oauth/token-request"
	Statements string // e.g., "{base}/api/v2/statements"
}

// New derives the endpoint set from a base URL.
func New(baseURL string) HTTPEndpoints {
	base := strings.TrimRight(baseURL, "/")
	return HTTPEndpoints{
		BaseURL:    base,
		Token:      base + tokenPath,
		Statements: base + statementsPath,
	}
}

// ForAccount resolves an account identifier and derives its endpoints.
func ForAccount(account string) (HTTPEndpoints, error) {
	base, err := BaseURL(account)
	if err != nil {
		return HTTPEndpoints{}, err
	}
	return New(base), nil
}

// Status returns the status URL for a statement handle.
func (e HTTPEndpoints) Status(handle string) string {
	return e.Statements + "/" + url.PathEscape(handle)
}

// Partition returns the URL of one result partition.
func (e HTTPEndpoints) Partition(handle string, partition int) string {
	return e.Status(handle) + "?partition=" + strconv.Itoa(partition)
}

// Cancel returns the cancellation URL for a statement handle.
func (e HTTPEndpoints) Cancel(handle string) string {
	return e.Status(handle) + "/cancel"
}
