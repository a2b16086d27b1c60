package transport

import (
	"net/http"
	"slices"
	"time"

	"github.com/nhle/mailagent/internal/config"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
)

// DefaultRetryableStatusCodes are the statuses retried when the body does
// not carry a structured error.
var DefaultRetryableStatusCodes = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// RetryPolicy controls how many physical attempts a request gets and how
// long to wait between them. The delay is fixed.
type RetryPolicy struct {
	MaxAttempts          int
	RetryDelay           time.Duration
	RetryableStatusCodes []int
}

// DefaultPolicy returns 3 attempts, 500ms apart, retrying 408/429/503/504.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:          DefaultMaxAttempts,
		RetryDelay:           DefaultRetryDelay,
		RetryableStatusCodes: slices.Clone(DefaultRetryableStatusCodes),
	}
}

// NewRetryPolicy builds a policy, substituting defaults for non-positive
// attempts or delay and for an empty status list.
func NewRetryPolicy(
	maxAttempts int,
	retryDelay time.Duration,
	retryableStatusCodes []int,
) RetryPolicy {
	p := DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if retryDelay > 0 {
		p.RetryDelay = retryDelay
	}
	if len(retryableStatusCodes) > 0 {
		p.RetryableStatusCodes = slices.Clone(retryableStatusCodes)
	}
	return p
}

// Retryable reports whether status is in the retryable set.
func (p RetryPolicy) Retryable(status int) bool {
	return slices.Contains(p.RetryableStatusCodes, status)
}

// PolicyFromConfig builds the policy described by the api section of the
// configuration.
func PolicyFromConfig(cfg config.APIConfig) RetryPolicy {
	return NewRetryPolicy(cfg.MaxAttempts, cfg.RetryDelay(), cfg.RetryableStatusCodes)
}
