package resilience

import (
	"context"
	"math"
	"sync"
	"time"
)

// RateLimiterConfig configures the token bucket.
type RateLimiterConfig struct {
	// MaxTokens is the burst capacity of the bucket.
	// Default: 10
	MaxTokens int

	// RefillRate is the number of tokens added per Interval.
	// Default: 10
	RefillRate int

	// Interval is the refill period.
	// Default: 1 second
	Interval time.Duration
}

// RateLimiter is a token-bucket limiter for one upstream endpoint group.
// Refill is computed lazily on access rather than by a background ticker, so
// an idle limiter costs nothing. Close unblocks every waiter.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	closed     bool
	done       chan struct{}
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.MaxTokens <= 0 {
		config.MaxTokens = 10
	}
	if config.RefillRate <= 0 {
		config.RefillRate = 10
	}
	if config.Interval <= 0 {
		config.Interval = time.Second
	}

	return &RateLimiter{
		config:     config,
		tokens:     float64(config.MaxTokens),
		lastRefill: time.Now(),
		done:       make(chan struct{}),
	}
}

// Acquire consumes one token, suspending the caller until one is available.
// It returns ctx.Err() when the context is cancelled while waiting, and
// ErrLimiterClosed when Close releases the waiters.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.mu.Lock()
	if rl.closed {
		rl.mu.Unlock()
		return ErrLimiterClosed
	}
	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		rl.mu.Unlock()
		return nil
	}
	wait := rl.nextTokenLocked()
	rl.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.done:
		return ErrLimiterClosed
	case <-timer.C:
	}

	// Consume after the forced wait. The refill is whole-token granular, so
	// under heavy contention the bucket may still read empty here; the wait
	// already paid for the token, so clamp at zero instead of queueing again.
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.closed {
		return ErrLimiterClosed
	}
	rl.refillLocked()
	rl.tokens--
	if rl.tokens < 0 {
		rl.tokens = 0
	}
	return nil
}

// TryAcquire consumes a token without blocking. It reports false when the
// bucket is empty or the limiter is closed.
func (rl *RateLimiter) TryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return false
	}
	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// refillLocked adds the whole tokens earned since lastRefill, capped at
// MaxTokens. lastRefill only advances when tokens were actually added so
// frequent sub-token refills do not drift the accounting.
func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed <= 0 {
		return
	}

	earned := math.Floor(elapsed.Seconds() / rl.config.Interval.Seconds() * float64(rl.config.RefillRate))
	if earned < 1 {
		return
	}

	rl.tokens += earned
	if rl.tokens > float64(rl.config.MaxTokens) {
		rl.tokens = float64(rl.config.MaxTokens)
	}
	rl.lastRefill = now
}

// nextTokenLocked returns the wait until one token becomes available.
func (rl *RateLimiter) nextTokenLocked() time.Duration {
	need := 1 - rl.tokens
	if need <= 0 {
		return 0
	}
	perToken := float64(rl.config.Interval) / float64(rl.config.RefillRate)
	return time.Duration(math.Ceil(need * perToken))
}

// Metrics returns the bucket occupancy after a refill pass.
func (rl *RateLimiter) Metrics() RateLimiterMetrics {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	return RateLimiterMetrics{
		Tokens:    rl.tokens,
		MaxTokens: rl.config.MaxTokens,
	}
}

// Reset refills the bucket to capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = float64(rl.config.MaxTokens)
	rl.lastRefill = time.Now()
}

// Close releases every suspended Acquire with ErrLimiterClosed and rejects
// all future acquisitions. Idempotent.
func (rl *RateLimiter) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return
	}
	rl.closed = true
	close(rl.done)
}

// RateLimiterMetrics contains the bucket occupancy snapshot.
type RateLimiterMetrics struct {
	Tokens    float64
	MaxTokens int
}
