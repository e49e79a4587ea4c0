package api

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetrier(delays *[]time.Duration) *Retrier {
	r := NewRetrier()
	r.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return r
}

func netErr() error {
	return &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}
}

func TestRetrier_RetriesNetworkFailuresWithLinearBackoff(t *testing.T) {
	var delays []time.Duration
	r := newTestRetrier(&delays)

	calls := 0
	_, err := r.Do(context.Background(), false, func(ctx context.Context) (*Response, error) {
		calls++
		return nil, netErr()
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
	assert.Equal(t, KindNetwork, Classify(err).Kind)
}

func TestRetrier_SucceedsMidway(t *testing.T) {
	var delays []time.Duration
	r := newTestRetrier(&delays)

	calls := 0
	resp, err := r.Do(context.Background(), false, func(ctx context.Context) (*Response, error) {
		calls++
		if calls < 2 {
			return nil, netErr()
		}
		return &Response{Status: 200}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, []time.Duration{time.Second}, delays)
}

func TestRetrier_ClientErrorsAttemptExactlyOnce(t *testing.T) {
	var delays []time.Duration
	r := newTestRetrier(&delays)

	for _, status := range []int{400, 401, 404, 409, 422, 429} {
		calls := 0
		_, err := r.Do(context.Background(), true, func(ctx context.Context) (*Response, error) {
			calls++
			return nil, newHTTPError(status, nil)
		})
		require.Error(t, err, "status %d", status)
		assert.Equal(t, 1, calls, "status %d", status)
	}
	assert.Empty(t, delays)
}

func TestRetrier_ServerErrorsRetriedOnlyWhenIdempotent(t *testing.T) {
	var delays []time.Duration
	r := newTestRetrier(&delays)

	calls := 0
	_, err := r.Do(context.Background(), false, func(ctx context.Context) (*Response, error) {
		calls++
		return nil, newHTTPError(500, nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	_, err = r.Do(context.Background(), true, func(ctx context.Context) (*Response, error) {
		calls++
		return nil, newHTTPError(500, nil)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_LastErrorSurfacedUnchanged(t *testing.T) {
	var delays []time.Duration
	r := newTestRetrier(&delays)

	last := newHTTPError(500, []byte(`{"message":"db down"}`))
	calls := 0
	_, err := r.Do(context.Background(), true, func(ctx context.Context) (*Response, error) {
		calls++
		if calls < 3 {
			return nil, netErr()
		}
		return nil, last
	})

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Same(t, last, apiErr)
}

func TestRetrier_StopsWhenContextCancelledDuringBackoff(t *testing.T) {
	r := NewRetrier()
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	calls := 0
	_, err := r.Do(context.Background(), false, func(ctx context.Context) (*Response, error) {
		calls++
		return nil, netErr()
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
