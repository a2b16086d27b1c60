// Package transport executes backend requests with bounded retries and
// turns every outcome into a result.Result.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/result"
)

// Doer performs one physical HTTP call. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor runs a Request as up to MaxAttempts physical calls. It blocks
// the calling goroutine for the calls and the delays between them, so it
// is meant to run inside background work, never on the UI loop.
type Executor struct {
	baseURL string
	doer    Doer
	policy  RetryPolicy
	logger  *slog.Logger
	metrics *Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for retry and failure events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics enables prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithSleep replaces the wait between attempts. Tests use it to avoid
// real delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = fn }
}

// NewExecutor creates an executor sending requests to baseURL through
// doer. A zero MaxAttempts or RetryDelay in policy falls back to the
// defaults.
func NewExecutor(
	baseURL string,
	doer Doer,
	policy RetryPolicy,
	opts ...Option,
) *Executor {
	e := &Executor{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		policy: NewRetryPolicy(
			policy.MaxAttempts,
			policy.RetryDelay,
			policy.RetryableStatusCodes,
		),
		logger: slog.New(slog.DiscardHandler),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the retry policy in effect.
func (e *Executor) Policy() RetryPolicy { return e.policy }

// BaseURL returns the URL requests are resolved against.
func (e *Executor) BaseURL() string { return e.baseURL }

// attemptOutcome says what one physical call produced.
type attemptOutcome int

const (
	outcomeResponse attemptOutcome = iota
	outcomeTimeout
	outcomeIO
	outcomeFatal
)

// Execute sends req, retrying timeouts, I/O failures and retryable
// statuses without a structured error body. describe names the operation
// in logs and error messages. A response with any status is a success
// here; callers decide what a non-2xx status means.
func (e *Executor) Execute(
	ctx context.Context,
	req Request,
	describe string,
) result.Result[Response] {
	if describe == "" {
		describe = req.String()
	}
	maxAttempts := e.policy.MaxAttempts

	var lastErr error
	var lastOutcome attemptOutcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, outcome, err := e.attempt(ctx, req)
		lastAttempt := attempt == maxAttempts

		switch outcome {
		case outcomeResponse:
			if !e.policy.Retryable(resp.StatusCode) {
				return result.Success(resp)
			}
			if HasStructuredError(resp.Body) {
				e.logger.Debug("retryable status with error body, not retrying",
					"op", describe, "status", resp.StatusCode)
				return result.Success(resp)
			}
			if lastAttempt {
				e.logger.Warn("retryable status on final attempt",
					"op", describe, "status", resp.StatusCode,
					"attempts", maxAttempts)
				return result.Success(resp)
			}
			e.metrics.retry("status")
			e.logger.Warn("retrying request",
				"op", describe, "attempt", attempt,
				"max_attempts", maxAttempts, "status", resp.StatusCode,
				"delay", e.policy.RetryDelay)

		case outcomeTimeout, outcomeIO:
			lastErr, lastOutcome = err, outcome
			if lastAttempt {
				break
			}
			reason := "io"
			if outcome == outcomeTimeout {
				reason = "timeout"
			}
			e.metrics.retry(reason)
			e.logger.Warn("retrying request",
				"op", describe, "attempt", attempt,
				"max_attempts", maxAttempts, "reason", reason,
				"delay", e.policy.RetryDelay, "error", err)

		default:
			return e.fail(describe, apierr.New(
				"Unexpected error executing request: "+err.Error(), 0, nil,
			).WithCause(err))
		}

		if lastAttempt {
			break
		}
		if err := e.sleep(ctx, e.policy.RetryDelay); err != nil {
			return e.fail(describe, apierr.New(
				"Unexpected error executing request: "+err.Error(), 0, nil,
			).WithCause(err))
		}
	}

	msg := fmt.Sprintf(
		"All %d retry attempts failed for %s: %v",
		maxAttempts, describe, lastErr,
	)
	if lastOutcome == outcomeTimeout {
		return e.fail(describe, apierr.Timeout("Request timed out: "+msg).WithCause(lastErr))
	}
	return e.fail(describe, apierr.Network("Network error: "+msg).WithCause(lastErr))
}

func (e *Executor) fail(describe string, err *apierr.Error) result.Result[Response] {
	e.metrics.failure(string(err.Category()))
	e.logger.Error("request failed",
		"op", describe, "category", err.Category(), "error", err.Message())
	return result.Failure[Response](err)
}

// attempt performs a single physical call under the per-attempt deadline
// and reads the whole body before the deadline is released.
func (e *Executor) attempt(
	ctx context.Context,
	req Request,
) (Response, attemptOutcome, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, outcomeFatal, err
	}

	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if req.timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, req.timeout)
	}
	defer cancel()

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(
		attemptCtx, req.method, e.baseURL+req.path, body,
	)
	if err != nil {
		return Response{}, outcomeFatal, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = req.header.Clone()

	start := time.Now()
	httpResp, err := e.doer.Do(httpReq)
	if err != nil {
		e.metrics.attempt(req.method, time.Since(start).Seconds())
		return Response{}, classifyErr(ctx, err), err
	}
	data, readErr := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	e.metrics.attempt(req.method, time.Since(start).Seconds())
	if readErr != nil {
		readErr = fmt.Errorf("reading response body: %w", readErr)
		outcome := classifyErr(ctx, readErr)
		if outcome == outcomeFatal && ctx.Err() == nil {
			outcome = outcomeIO
		}
		return Response{}, outcome, readErr
	}

	return Response{
		StatusCode: httpResp.StatusCode,
		Body:       string(data),
		Header:     httpResp.Header,
	}, outcomeResponse, nil
}

// classifyErr sorts a transport error into timeout, I/O or fatal. A
// cancelled parent context is always fatal.
func classifyErr(parent context.Context, err error) attemptOutcome {
	if parent.Err() != nil {
		return outcomeFatal
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return outcomeTimeout
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	var errno syscall.Errno
	switch {
	case errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.As(err, &errno),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return outcomeIO
	}

	return outcomeFatal
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
