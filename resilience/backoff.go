package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffConfig configures the retry delay schedule.
type BackoffConfig struct {
	// BaseDelay is the delay before the first retry.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps any single delay, server hints included.
	// Default: 30 seconds
	MaxDelay time.Duration

	// JitterFraction is the largest fraction of the chosen delay added as
	// random jitter. Negative disables jitter.
	// Default: 0.1
	JitterFraction float64
}

// Backoff computes exponential retry delays. It is pure scheduling; the
// caller owns the actual wait so it stays cancellable.
type Backoff struct {
	config BackoffConfig
}

// NewBackoff creates a new backoff schedule.
func NewBackoff(config BackoffConfig) *Backoff {
	// Apply defaults
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.JitterFraction < 0 {
		config.JitterFraction = 0
	} else if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}

	return &Backoff{config: config}
}

// Delay returns the delay before retrying the given zero-based attempt:
// BaseDelay * 2^attempt, capped at MaxDelay, plus jitter.
func (b *Backoff) Delay(attempt int) time.Duration {
	return b.DelayFor(attempt, 0)
}

// DelayFor returns the delay before retrying the given attempt, honoring a
// server-supplied hint (for example a Retry-After header). A positive hint
// overrides the exponential schedule; jitter applies either way.
func (b *Backoff) DelayFor(attempt int, hint time.Duration) time.Duration {
	delay := hint
	if delay <= 0 {
		multiplier := math.Pow(2, float64(attempt))
		delay = time.Duration(float64(b.config.BaseDelay) * multiplier)
	}
	if delay > b.config.MaxDelay || delay <= 0 {
		delay = b.config.MaxDelay
	}

	if b.config.JitterFraction > 0 {
		span := int64(float64(delay) * b.config.JitterFraction)
		if span > 0 {
			// #nosec G404 -- jitter is non-cryptographic timing variance.
			delay += time.Duration(rand.Int64N(span))
		}
	}

	return delay
}

// Config returns the backoff configuration.
func (b *Backoff) Config() BackoffConfig {
	return b.config
}
