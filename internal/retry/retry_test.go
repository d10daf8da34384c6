package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClientErrorNeverRetried(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 5, BaseDelay: time.Millisecond, sleep: fakeSleep(&delays)}

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return &HTTPError{StatusCode: 401, Message: "unauthorized"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "401 must not trigger a second attempt")
	assert.Empty(t, delays)
}

func TestTokenLimitFailsFast(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func(context.Context) error {
		calls++
		return errors.New("request exceeds the model token limit")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestInvalidKeyFailsFast(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func(context.Context) error {
		calls++
		return errors.New("API key not valid. Please pass a valid API key.")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryAfterHonored(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Millisecond, sleep: fakeSleep(&delays)}

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 429, RetryAfter: "2"}
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, delays, 1)
	assert.GreaterOrEqual(t, delays[0], 2*time.Second, "Retry-After: 2 must wait at least 2s plus buffer")
}

func TestRetryAfterHTTPDate(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 2, BaseDelay: time.Millisecond, sleep: fakeSleep(&delays)}

	retryAt := time.Now().Add(3 * time.Second).UTC().Format(http.TimeFormat)
	calls := 0
	_ = Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 429, RetryAfter: retryAt}
		}
		return nil
	})

	require.Len(t, delays, 1)
	assert.Greater(t, delays[0], time.Second)
}

func TestRetryAfterIgnoredOutsideRateLimit(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 2, BaseDelay: time.Millisecond, sleep: fakeSleep(&delays)}

	calls := 0
	_ = Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 503, RetryAfter: "30"}
		}
		return nil
	})

	require.Len(t, delays, 1)
	assert.Less(t, delays[0], 5*time.Second, "a 503 must use backoff, not the Retry-After header")
}

func TestUnparsableRetryAfterFallsBackToBackoff(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond, sleep: fakeSleep(&delays)}

	calls := 0
	_ = Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 429, RetryAfter: "not-a-delay"}
		}
		return nil
	})

	require.Len(t, delays, 1)
	assert.GreaterOrEqual(t, delays[0], 10*time.Millisecond)
}

func TestServerErrorRetriesUntilExhausted(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 4, BaseDelay: time.Millisecond, sleep: fakeSleep(&delays)}

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return &HTTPError{StatusCode: 500, Message: "internal"}
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Len(t, delays, 3, "no sleep after the final attempt")
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)

	var httpErr *HTTPError
	assert.True(t, errors.As(err, &httpErr), "last underlying error must be preserved")
}

func TestBackoffGrowsExponentially(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 4, BaseDelay: 100 * time.Millisecond, sleep: fakeSleep(&delays)}

	_ = Do(context.Background(), cfg, func(context.Context) error {
		return fmt.Errorf("transient network failure")
	})

	require.Len(t, delays, 3)
	assert.GreaterOrEqual(t, delays[0], 100*time.Millisecond)
	assert.GreaterOrEqual(t, delays[1], 200*time.Millisecond)
	assert.GreaterOrEqual(t, delays[2], 400*time.Millisecond)
	// Jitter is bounded by one second on top of each step.
	assert.Less(t, delays[2], 400*time.Millisecond+time.Second+time.Millisecond)
}

func TestContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, DefaultConfig(), func(context.Context) error {
		t.Fatal("fn must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
