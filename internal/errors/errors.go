// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so callers can tell an authentication failure from a
// rejected statement or an exhausted polling budget without matching on strings.
//
// Errors carry the HTTP status and, when the service returned one, its error code,
// SQL state and statement handle.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// AuthFailed indicates the OAuth refresh exchange failed.
	AuthFailed Kind = "auth_failed"
	// ExecutionFailed indicates a non-success HTTP status on submit, poll or status.
	ExecutionFailed Kind = "execution_failed"
	// TimedOut indicates the polling loop exhausted its budget.
	TimedOut Kind = "timeout"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error

	// StatusCode is the HTTP status that caused the error, if any.
	StatusCode int
	// Code, SQLState and Handle are copied from the service error body.
	Code     string
	SQLState string
	Handle   string
}

func (e *E) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [code %s]", msg, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports kind equality so sentinel comparisons work with errors.Is.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Sentinels for errors.Is matching by kind.
var (
	ErrAuth      = &E{Kind: AuthFailed}
	ErrExecution = &E{Kind: ExecutionFailed}
	ErrTimeout   = &E{Kind: TimedOut}
)

// KindOf returns the kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsAuth(err error) bool      { return KindOf(err) == AuthFailed }
func IsExecution(err error) bool { return KindOf(err) == ExecutionFailed }
func IsTimeout(err error) bool   { return KindOf(err) == TimedOut }
