package mirakl

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// executor runs a single marketplace call under a bounded retry policy.
// Retryable failures wait 2^attempt * base between attempts (2s, 4s, 8s with
// the defaults); a rate-limit response with a server hint waits the hinted
// number of seconds instead. Non-retryable failures propagate immediately,
// and the last failure propagates unchanged once attempts are exhausted.
type executor struct {
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func newExecutor(maxAttempts int, baseDelay time.Duration) *executor {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	return &executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleepCtx,
	}
}

func (e *executor) do(ctx context.Context, op string, call func() error) error {
	for attempt := 1; ; attempt++ {
		err := call()
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return err
		}
		if attempt >= e.maxAttempts {
			return err
		}

		delay := e.backoff(attempt, apiErr)
		slog.Warn("Marketplace request failed, retrying",
			"operation", op,
			"attempt", attempt,
			"max_attempts", e.maxAttempts,
			"delay", delay,
			"error", err,
		)

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (e *executor) backoff(attempt int, apiErr *APIError) time.Duration {
	if apiErr.Kind == KindRateLimited && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}

	return time.Duration(1<<attempt) * e.baseDelay
}

// sleepCtx blocks only the calling goroutine and returns early when the
// context is canceled.
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
