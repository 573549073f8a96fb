package imagegen

import (
	"context"
	"time"
)

// RetryOptions control the resilient invocation wrapper. The wrapper has no
// shared state across calls; concurrency is per-invocation, so a sleeping
// retry never blocks unrelated operations.
type RetryOptions struct {
	// MaxRetries bounds the retry attempts after the initial one (default 3).
	MaxRetries int
	// DefaultWait applies when the rate-limit signal carries no hint (default 15s).
	DefaultWait time.Duration
	// MaxWait clamps any computed wait (default 60s).
	MaxWait time.Duration
	// Sleep is injectable for tests; nil uses a context-aware timer sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.DefaultWait <= 0 {
		o.DefaultWait = 15 * time.Second
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 60 * time.Second
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	return o
}

// WithRetry invokes fn, retrying on definite rate-limit signals. The wait per
// retry prefers a caller-supplied retry-after duration, then a "resets in N
// seconds" message hint, then DefaultWait, clamped to MaxWait. Any
// non-rate-limit failure, or a rate-limit failure on the final attempt,
// propagates the error unchanged.
func WithRetry(ctx context.Context, opts RetryOptions, fn func(context.Context) ([]byte, string, error)) ([]byte, string, error) {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		data, mime, err := fn(ctx)
		if err == nil {
			return data, mime, nil
		}
		lastErr = err

		hint, throttled := rateLimitInfo(err)
		if !throttled || attempt == opts.MaxRetries {
			return nil, "", err
		}

		wait := hint
		if wait <= 0 {
			wait = opts.DefaultWait
		}
		if wait > opts.MaxWait {
			wait = opts.MaxWait
		}
		if sleepErr := opts.Sleep(ctx, wait); sleepErr != nil {
			return nil, "", sleepErr
		}
	}
	return nil, "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
