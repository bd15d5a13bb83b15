// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name        string
		account     string
		want        string
		expectError bool
	}{
		{
			name:    "org-account identifier",
			account: "myorg-myaccount",
			want:    "https://myorg-myaccount.snowflakecomputing.com",
		},
		{
			name:    "locator with region",
			account: "xy12345.us-east-2.aws",
			want:    "https://xy12345.us-east-2.aws.snowflakecomputing.com",
		},
		{
			name:    "mixed case and surrounding spaces",
			account: "  MyOrg-MyAccount ",
			want:    "https://myorg-myaccount.snowflakecomputing.com",
		},
		{
			name:    "already suffixed",
			account: "myorg-myaccount.snowflakecomputing.com",
			want:    "https://myorg-myaccount.snowflakecomputing.com",
		},
		{
			name:    "underscore mapped to hyphen",
			account: "myorg-my_account",
			want:    "https://myorg-my-account.snowflakecomputing.com",
		},
		{
			name:    "full URL keeps scheme and host",
			account: "http://127.0.0.1:8080/some/path",
			want:    "http://127.0.0.1:8080",
		},
		{
			name:        "empty",
			account:     "",
			expectError: true,
		},
		{
			name:        "slash in identifier",
			account:     "myorg/myaccount",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseURL(tt.account)
			if tt.expectError {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.NotEmpty(t, parseErr.Hint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPEndpoints(t *testing.T) {
	e := New("https://acme.snowflakecomputing.com/")

	assert.Equal(t, "https://acme.snowflakecomputing.com/oauth/token-request", e.Token)
	assert.Equal(t, "https://acme.snowflakecomputing.com/api/v2/statements", e.Statements)
	assert.Equal(t, "https://acme.snowflakecomputing.com/api/v2/statements/01b2-c3", e.Status("01b2-c3"))
	assert.Equal(t, "https://acme.snowflakecomputing.com/api/v2/statements/01b2-c3?partition=2", e.Partition("01b2-c3", 2))
	assert.Equal(t, "https://acme.snowflakecomputing.com/api/v2/statements/01b2-c3/cancel", e.Cancel("01b2-c3"))
}

func TestForAccount(t *testing.T) {
	e, err := ForAccount("acme-prod")
	require.NoError(t, err)
	assert.Equal(t, "https://acme-prod.snowflakecomputing.com", e.BaseURL)
}
