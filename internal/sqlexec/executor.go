// Package sqlexec submits SQL statements to the warehouse SQL API and normalizes
// their results.
//
// A statement is posted once. An HTTP 200 answer is final; an HTTP 202 answer carries
// a statement handle that is polled at a fixed interval until the service reports a
// result set or an error, or until the caller's timeout (measured from submission)
// runs out. Every request asks the TokenSource for a bearer token, so a token that
// expires mid-poll is refreshed transparently. Nothing is retried: failures are
// returned to the caller as typed errors from internal/errors.
package sqlexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sqlapi/cli/internal/auth"
	"sqlapi/cli/internal/endpoints"
	apperrors "sqlapi/cli/internal/errors"
	"sqlapi/cli/internal/logging"
)

const (
	defaultPollInterval = time.Second
	defaultHTTPTimeout  = 30 * time.Second
	defaultUserAgent    = "sqlapi-cli/1.0"
)

// Config holds the executor's endpoints and per-instance statement defaults.
type Config struct {
	Endpoints endpoints.HTTPEndpoints
	// Defaults apply to every statement unless overridden per call.
	Defaults Overrides
	// PollInterval is the wait between status polls (1s when zero).
	PollInterval time.Duration
	// HTTPClient is used for all statement calls; a client with a 30s timeout when nil.
	HTTPClient *http.Client
	UserAgent  string
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithSleeper replaces the wait between polls.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// Executor runs statements against the SQL API.
// It holds no mutable state of its own; concurrency safety of token caching is
// provided by the TokenSource.
type Executor struct {
	tokens       auth.TokenSource
	endpoints    endpoints.HTTPEndpoints
	defaults     Overrides
	client       *http.Client
	pollInterval time.Duration
	userAgent    string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Executor that authenticates every call through tokens.
func New(cfg Config, tokens auth.TokenSource, opts ...Option) *Executor {
	e := &Executor{
		tokens:       tokens,
		endpoints:    cfg.Endpoints,
		defaults:     cfg.Defaults,
		client:       cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		userAgent:    cfg.UserAgent,
		now:          time.Now,
		sleep:        sleepContext,
	}
	if e.client == nil {
		e.client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if e.pollInterval <= 0 {
		e.pollInterval = defaultPollInterval
	}
	if e.userAgent == "" {
		e.userAgent = defaultUserAgent
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute submits sql and waits up to timeout for its result.
// A 200 submission response is normalized immediately; a 202 response is polled
// until it becomes terminal. The timeout is also sent to the service as the
// statement timeout, in whole seconds.
func (e *Executor) Execute(ctx context.Context, sql string, timeout time.Duration, o Overrides) (*Result, error) {
	start := e.now()

	status, body, err := e.submit(ctx, e.buildRequest(sql, timeout, o, false))
	if err != nil {
		return nil, err
	}
	if status == http.StatusOK {
		logging.Debugf("sqlexec: statement completed synchronously")
		return NormalizeJSON(body), nil
	}

	raw := decodeEnvelope(body)
	handle := stringValue(raw["statementHandle"])
	if handle == "" {
		return nil, &apperrors.E{
			Kind:       apperrors.ExecutionFailed,
			Message:    "statement accepted without a statementHandle",
			StatusCode: status,
		}
	}
	logging.Debugf("sqlexec: statement %s still running, polling every %s", handle, e.pollInterval)
	return e.poll(ctx, handle, start, timeout)
}

// ExecuteAsync submits sql with the async flag and returns its handle without
// waiting, whether the service answered 200 or 202.
func (e *Executor) ExecuteAsync(ctx context.Context, sql string, o Overrides) (string, error) {
	status, body, err := e.submit(ctx, e.buildRequest(sql, 0, o, true))
	if err != nil {
		return "", err
	}
	handle := stringValue(decodeEnvelope(body)["statementHandle"])
	if handle == "" {
		return "", &apperrors.E{
			Kind:       apperrors.ExecutionFailed,
			Message:    "async submission returned no statementHandle",
			StatusCode: status,
		}
	}
	logging.Debugf("sqlexec: submitted async statement %s", handle)
	return handle, nil
}

// Status fetches the statement's state once and normalizes it.
// A statement that is still running yields a Result with Pending set.
func (e *Executor) Status(ctx context.Context, handle string) (*Result, error) {
	status, body, err := e.fetch(ctx, e.endpoints.Status(handle))
	if err != nil {
		return nil, err
	}
	res := NormalizeJSON(body)
	res.Pending = status == http.StatusAccepted
	if res.StatementHandle == "" {
		res.StatementHandle = handle
	}
	return res, nil
}

// Cancel asks the service to cancel a running statement. It reports true only
// when the service answered HTTP 200.
func (e *Executor) Cancel(ctx context.Context, handle string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoints.Cancel(handle), nil)
	if err != nil {
		return false, err
	}
	if err := e.authorize(ctx, req); err != nil {
		return false, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ExecutionFailed, "cancel request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	logging.Debugf("sqlexec: cancel %s returned %d", handle, resp.StatusCode)
	return resp.StatusCode == http.StatusOK, nil
}

// FetchPartition returns the rows of one result partition. Partition 0 is part of
// the initial response; later partitions must be fetched separately.
func (e *Executor) FetchPartition(ctx context.Context, handle string, partition int) ([][]any, error) {
	status, body, err := e.fetch(ctx, e.endpoints.Partition(handle, partition))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &apperrors.E{
			Kind:       apperrors.ExecutionFailed,
			Message:    fmt.Sprintf("partition %d is not available yet", partition),
			StatusCode: status,
			Handle:     handle,
		}
	}
	return rows(decodeEnvelope(body)["data"]), nil
}

// FetchRemaining appends partitions 1..N-1 of a successful result to its Data.
func (e *Executor) FetchRemaining(ctx context.Context, res *Result) error {
	if res == nil || !res.Success || res.Partitions <= 1 {
		return nil
	}
	if res.StatementHandle == "" {
		return apperrors.New(apperrors.ExecutionFailed, "result has partitions but no statement handle")
	}
	for p := 1; p < res.Partitions; p++ {
		data, err := e.FetchPartition(ctx, res.StatementHandle, p)
		if err != nil {
			return err
		}
		res.Data = append(res.Data, data...)
	}
	return nil
}

// poll re-fetches the statement status until it is terminal or the deadline,
// measured from start, has passed. No request is issued after the deadline.
func (e *Executor) poll(ctx context.Context, handle string, start time.Time, timeout time.Duration) (*Result, error) {
	statusURL := e.endpoints.Status(handle)
	attempt := 0
	for e.now().Sub(start) < timeout {
		attempt++
		status, body, err := e.fetch(ctx, statusURL)
		if err != nil {
			return nil, err
		}
		if status == http.StatusOK {
			if raw := decodeEnvelope(body); isTerminal(raw) {
				logging.Debugf("sqlexec: statement %s finished after %d polls", handle, attempt)
				res := Normalize(raw)
				if res.StatementHandle == "" {
					res.StatementHandle = handle
				}
				return res, nil
			}
		}

		if err := e.sleep(ctx, e.pollInterval); err != nil {
			return nil, &apperrors.E{
				Kind:    apperrors.ExecutionFailed,
				Message: "polling interrupted",
				Err:     err,
				Handle:  handle,
			}
		}
	}

	return nil, &apperrors.E{
		Kind:    apperrors.TimedOut,
		Message: fmt.Sprintf("statement execution timed out after %s", timeout),
		Handle:  handle,
	}
}

// submit posts a statement and returns the status and body of a 200 or 202 response.
func (e *Executor) submit(ctx context.Context, payload statementRequest) (int, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoints.Statements, bytes.NewReader(b))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := e.authorize(ctx, req); err != nil {
		return 0, nil, err
	}

	status, body, err := e.do(req)
	if err != nil {
		return 0, nil, err
	}
	switch status {
	case http.StatusOK, http.StatusAccepted:
		return status, body, nil
	default:
		return 0, nil, executionError("statement submission failed", status, body)
	}
}

// fetch issues an authenticated GET and accepts 200 and 202 responses.
func (e *Executor) fetch(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	if err := e.authorize(ctx, req); err != nil {
		return 0, nil, err
	}

	status, body, err := e.do(req)
	if err != nil {
		return 0, nil, err
	}
	switch status {
	case http.StatusOK, http.StatusAccepted:
		return status, body, nil
	default:
		return 0, nil, executionError("failed to get statement status", status, body)
	}
}

// authorize sets the bearer token and standard headers on req.
func (e *Executor) authorize(ctx context.Context, req *http.Request) error {
	cred, err := e.tokens.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "OAUTH")
	return nil
}

func (e *Executor) do(req *http.Request) (int, []byte, error) {
	logging.Debugf("sqlexec: %s %s", req.Method, req.URL.Redacted())
	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ExecutionFailed, "request to SQL API failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ExecutionFailed, "read SQL API response", err)
	}
	return resp.StatusCode, body, nil
}

// executionError builds an execution error, lifting the service's code, message,
// SQL state and handle out of the body when it is a JSON error payload.
func executionError(msg string, status int, body []byte) error {
	e := &apperrors.E{
		Kind:       apperrors.ExecutionFailed,
		Message:    msg,
		StatusCode: status,
	}
	raw := decodeEnvelope(body)
	if raw != nil {
		e.Code = stringValue(raw["code"])
		e.SQLState = stringValue(raw["sqlState"])
		e.Handle = stringValue(raw["statementHandle"])
		if m := stringValue(raw["message"]); m != "" {
			e.Err = fmt.Errorf("%s", m)
			return e
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		e.Err = fmt.Errorf("%s", logging.Mask(text))
	}
	return e
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
