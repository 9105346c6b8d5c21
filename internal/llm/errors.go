package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means structured output did not match its schema.
// Content holds what the model actually sent.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers 5xx responses and transport failures.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrRequestRejected is a 4xx other than 429: a bad key, an unknown model
// or a malformed request. Sending it again gives the same answer.
type ErrRequestRejected struct {
	Status int
	Err    error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("LLM request rejected (%d): %v", e.Status, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means structured output was cut off at Limit tokens
// and cannot be parsed.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
	Limit   int
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("LLM response truncated at %d tokens", e.Limit)
	}
	return "LLM response truncated: max tokens exceeded"
}

// statusError classifies a vendor HTTP status. header may be nil.
func statusError(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: parseRetryAfter(header), Err: err}
	case status >= 400 && status < 500:
		return &ErrRequestRejected{Status: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Transient reports whether err may go away if the call is repeated.
// Cancellation, rejected requests and truncation are permanent; anything
// unclassified is assumed to be a network hiccup.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		rejected  *ErrRequestRejected
		truncated *ErrMaxTokensExceeded
	)
	return !errors.As(err, &rejected) && !errors.As(err, &truncated)
}

// RetryAfter returns how long the provider asked callers to back off, if
// err carries a rate limit.
func RetryAfter(err error) (time.Duration, bool) {
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		return 0, false
	}
	return rl.RetryAfter, true
}
