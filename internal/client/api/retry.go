package api

import (
	"context"
	"time"
)

// Op is one retryable exchange. The context passed in is the caller's;
// per-attempt timeouts live inside the operation (see Client.Do).
type Op func(ctx context.Context) (*Response, error)

// Retrier re-attempts failed operations with a linearly growing wait:
// after attempt i it sleeps BaseDelay*i. Only failures that cannot have
// changed server state (network, timeout) are retried unconditionally;
// server errors (5xx) are retried only for idempotent calls. Client errors
// (4xx) surface immediately. The last error is returned unchanged.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is a test seam; the default waits or aborts on ctx.Done.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier returns a Retrier with the default budget: 3 attempts,
// 1 second base delay.
func NewRetrier() *Retrier {
	return &Retrier{MaxAttempts: 3, BaseDelay: time.Second, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs op up to MaxAttempts times. idempotent widens the retry set to
// include server errors; it never affects 4xx, which are attempted exactly
// once.
func (r *Retrier) Do(ctx context.Context, idempotent bool, op Op) (*Response, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := op(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !shouldRetry(err, idempotent) || attempt == attempts {
			break
		}
		if err := sleep(ctx, r.BaseDelay*time.Duration(attempt)); err != nil {
			break
		}
	}
	return nil, lastErr
}

func shouldRetry(err error, idempotent bool) bool {
	e := Classify(err)
	if e.retryable() {
		return true
	}
	return idempotent && e.Kind == KindServer
}
