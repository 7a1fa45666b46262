package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/l0p7/innkeeper/internal/metrics"
)

// RetryEvent describes a failed attempt that is about to be repeated.
type RetryEvent struct {
	Operation metrics.GatewayOperation
	Key       string
	Attempt   int
	Delay     time.Duration
	Err       error
}

// linearBackOff waits base*n after the nth failed attempt.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// retry runs op up to policy.MaxRetries times. The error returned after the
// final attempt is the one that attempt produced; earlier errors are dropped.
func retry[T any](ctx context.Context, g *Gateway, operation metrics.GatewayOperation, key string, op Op[T]) (T, error) {
	var zero T
	if err := context.Cause(ctx); err != nil {
		return zero, err
	}
	policy := g.Policy()
	attempt := 0

	value, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !g.isRetryable(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	},
		backoff.WithBackOff(&linearBackOff{base: policy.BaseDelay}),
		backoff.WithMaxTries(uint(policy.MaxRetries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			g.metrics.ObserveGatewayRetry(operation)
			if g.onRetry != nil {
				g.onRetry(RetryEvent{Operation: operation, Key: key, Attempt: attempt, Delay: delay, Err: err})
			}
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return zero, err
	}
	return value, nil
}

func retryEverything(error) bool { return true }
