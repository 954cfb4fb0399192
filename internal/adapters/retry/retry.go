package retry

import (
	"context"
	"math"
	"net"
	"net/http"
	"time"

	"stockadvisor/pkg/errors"
)

// Config contains retry configuration
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultConfig suits public market-data endpoints that throttle with 429s
func DefaultConfig() Config {
	return Config{
		MaxRetries:   2,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		Multiplier:   2.0,
	}
}

// Policy retries transient provider failures with exponential backoff
type Policy struct {
	config Config
}

// New creates a retry policy, filling zero fields with defaults
func New(config Config) *Policy {
	def := DefaultConfig()
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = def.InitialDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = def.MaxDelay
	}
	if config.Multiplier <= 0 {
		config.Multiplier = def.Multiplier
	}
	return &Policy{config: config}
}

// Do executes fn until it succeeds, fails permanently, or retries run out
func Do[T any](ctx context.Context, p *Policy, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == p.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return zero, errors.Wrap(ctx.Err(), "retry cancelled")
		case <-time.After(p.delay(attempt)):
		}
	}

	return zero, lastErr
}

func (p *Policy) delay(attempt int) time.Duration {
	d := time.Duration(float64(p.config.InitialDelay) * math.Pow(p.config.Multiplier, float64(attempt)))
	if d > p.config.MaxDelay {
		d = p.config.MaxDelay
	}
	return d
}

// IsRetryable reports whether err is a timeout or a throttling/server status
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr interface{ StatusCode() int }
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode()
		return code == http.StatusTooManyRequests ||
			code == http.StatusRequestTimeout ||
			code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
