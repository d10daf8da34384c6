// Package retry wraps external calls (AI completion, image generation,
// CMS requests) with classification-aware retry and backoff. Caller
// mistakes fail fast; transient provider issues are retried, honoring
// provider-specified pacing when it is supplied.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of tries, including the first.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay seeds the exponential backoff schedule.
	DefaultBaseDelay = 5 * time.Second
	// retryAfterBuffer is added on top of a provider-supplied Retry-After
	// so we never land exactly on the window edge.
	retryAfterBuffer = 500 * time.Millisecond
	// maxJitter bounds the random component added to each backoff delay.
	maxJitter = time.Second
)

// ErrMaxAttemptsExceeded wraps the last underlying error once every
// attempt has been spent.
var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

// HTTPError carries the provider status code through the error chain so
// failures can be classified without string matching.
type HTTPError struct {
	StatusCode int
	RetryAfter string // raw Retry-After header value, may be empty
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// Config controls retry behavior.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is injectable for tests; nil means context-aware time.Sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the standard policy used by the pipeline.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Do executes fn, retrying transient failures with exponential backoff
// and jitter. Non-retriable failures are returned immediately; exhausting
// all attempts returns the last error wrapped in ErrMaxAttemptsExceeded.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.sleep == nil {
		cfg.sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := backoffDelay(cfg.BaseDelay, attempt)
		if ra, ok := retryAfterDelay(err); ok {
			delay = ra + retryAfterBuffer
		}
		if err := cfg.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}

// IsRetryable classifies an error. Client mistakes (4xx other than 429,
// token-limit violations, invalid API keys) are terminal; rate limits,
// 5xx responses, and transient network failures are retriable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		status := httpErr.StatusCode
		if status == http.StatusTooManyRequests {
			return true
		}
		if status >= 400 && status < 500 {
			return false
		}
		if status >= 500 {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, fatal := range []string{
		"context length",
		"token limit",
		"maximum context",
		"api key not valid",
		"invalid api key",
		"api_key_invalid",
	} {
		if strings.Contains(msg, fatal) {
			return false
		}
	}

	// Everything else (network resets, timeouts, unclassified provider
	// failures) is assumed transient.
	return true
}

// retryAfterDelay extracts a provider-requested pause from a 429 error.
// The Retry-After value may be delay-seconds or an HTTP-date. Headers on
// other statuses are ignored; only rate limits set provider pacing.
func retryAfterDelay(err error) (time.Duration, bool) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.RetryAfter == "" {
		return 0, false
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		return 0, false
	}
	raw := strings.TrimSpace(httpErr.RetryAfter)

	if secs, convErr := strconv.Atoi(raw); convErr == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, parseErr := http.ParseTime(raw); parseErr == nil {
		if d := time.Until(at); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

// backoffDelay computes base*2^attempt plus up to a second of jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	return d + time.Duration(rand.Int63n(int64(maxJitter)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
