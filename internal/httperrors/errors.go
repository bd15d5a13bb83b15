// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for HTTP requests to the
// warehouse account.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	apperrors "sqlapi/cli/internal/errors"
)

// Class is the detected category of a network failure.
type Class int

const (
	// NotNetwork means err does not look like a transport failure.
	NotNetwork Class = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	Generic
	// Server means the SQL API answered with a 5xx status.
	Server
)

// Classify detects the kind of transport failure behind err.
// A 5xx response yields Server; other HTTP status errors and SQL errors yield NotNetwork.
func Classify(err error) Class {
	if err == nil {
		return NotNetwork
	}
	var apiErr *apperrors.E
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return Server
	}
	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	}
	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return Generic
	}
	return NotNetwork
}

// FormatNetworkError prints a troubleshooting message for a transport failure or a
// server-side error while talking to host and returns err wrapped. Other errors are
// returned unchanged and nothing is printed.
func FormatNetworkError(err error, action, host string) error {
	class := Classify(err)
	switch class {
	case NotNetwork:
		return err
	case Server:
		displayErrorMessage(class, err, action, host)
		return fmt.Errorf("server error: %w", err)
	}

	displayErrorMessage(class, err, action, host)
	return fmt.Errorf("network error: %w", err)
}

func displayErrorMessage(class Class, err error, action, host string) {
	switch class {
	case Timeout:
		showTimeoutError(action)
	case DNS:
		showDNSError(action, host)
	case ConnectionRefused:
		showConnectionRefusedError(action)
	case TLS:
		showSSLError(action)
	case Server:
		showServerError(action, host)
	default:
		showGenericError(action, host, err.Error())
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "client.timeout exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls:") ||
		strings.Contains(errStr, "x509:") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// showTimeoutError displays a user-friendly timeout error message.
func showTimeoutError(action string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", action)
	pterm.Println()
	pterm.Println("The SQL API took too long to respond. This could mean:")
	pterm.Println("  • Slow internet connection")
	pterm.Println("  • The warehouse is resuming or queued")
	pterm.Println("  • Network firewall is blocking the connection")
	pterm.Println()
	pterm.Println("Raise SQLAPI_HTTP_TIMEOUT or try again in a few moments.")
	pterm.Println()
}

// showDNSError displays a user-friendly DNS error message.
func showDNSError(action, host string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", action)
	pterm.Println()
	pterm.Printf("Unable to look up %s. Please check:\n", host)
	pterm.Println("  • SNOWFLAKE_ACCOUNT_IDENTIFIER is spelled correctly (orgname-accountname)")
	pterm.Println("  • Your internet connection is working")
	pterm.Println("  • No DNS-level blocking (corporate firewall, private link)")
	pterm.Println()
}

// showConnectionRefusedError displays a user-friendly connection refused error message.
func showConnectionRefusedError(action string) {
	pterm.Printf("🚫 Connection refused while %s\n", action)
	pterm.Println()
	pterm.Println("The server is not accepting connections. This could mean:")
	pterm.Println("  • SNOWFLAKE_BASE_URL points at the wrong host or port")
	pterm.Println("  • Firewall is blocking the connection")
	pterm.Println()
}

// showSSLError displays a user-friendly SSL/TLS error message.
func showSSLError(action string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", action)
	pterm.Println()
	pterm.Println("Cannot establish a secure HTTPS connection. This could mean:")
	pterm.Println("  • SSL/TLS certificate issue")
	pterm.Println("  • Network proxy interfering with HTTPS")
	pterm.Println("  • System clock is incorrect")
	pterm.Println()
}

// showServerError displays a user-friendly message for 5xx responses.
func showServerError(action, host string) {
	pterm.Printf("🛠️  %s returned a server error while %s\n", host, action)
	pterm.Println()
	pterm.Println("The SQL API failed to handle the request. This is usually temporary:")
	pterm.Println("  • The service may be degraded or under maintenance")
	pterm.Println("  • The warehouse may be overloaded")
	pterm.Println()
	pterm.Println("Try again in a few moments and check the provider's status page if it persists.")
	pterm.Println()
}

// showGenericError displays a generic error message for unrecognized errors.
func showGenericError(action, host, errDetails string) {
	pterm.Printf("❌ Cannot reach %s while %s\n", host, action)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • Your internet connection")
	pterm.Println("  • Network policies on the account that might block your IP")
	pterm.Println()

	if errDetails != "" {
		shortErr := errDetails
		if len(shortErr) > 100 {
			shortErr = shortErr[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", shortErr)
		pterm.Println()
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
