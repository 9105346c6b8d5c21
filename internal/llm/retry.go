package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider re-sends transient failures with exponential backoff and
// jitter. A schema mismatch is re-asked once; the model often fixes its
// own output on a second try.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *slog.Logger
}

// WithRetry wraps a Provider with retry logic. A nil logger means
// slog.Default().
func WithRetry(p Provider, cfg RetryConfig, log *slog.Logger) Provider {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg, log: log}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		lastErr       error
		reaskedSchema bool
	)
	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			if reaskedSchema {
				return nil, err
			}
			reaskedSchema = true
		} else if !Transient(err) {
			return nil, err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		r.log.Warn("retrying llm call",
			"purpose", PurposeFrom(ctx),
			"session", SessionFrom(ctx),
			"attempt", attempt+1,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff honours a provider's Retry-After, otherwise grows the wait by
// Multiplier per attempt up to MaxWait, with ±20% jitter.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	if after, ok := RetryAfter(err); ok && after > 0 {
		return after
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
