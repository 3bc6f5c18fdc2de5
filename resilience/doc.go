// Package resilience provides the failure-handling primitives behind the
// outbound HTTP client: circuit breaking, token-bucket rate limiting,
// exponential backoff scheduling, and concurrency bulkheads.
//
// Each primitive is owned per logical endpoint group (one external API the
// client talks to) and is safe for concurrent use. The primitives make no
// retry decisions themselves; the httpclient package composes them around the
// transport call and decides what to do with each outcome.
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    ResetTimeout:     30 * time.Second,
//	})
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    MaxTokens:  5,
//	    RefillRate: 5,
//	    Interval:   time.Second,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    if err := rl.Acquire(ctx); err != nil {
//	        return err
//	    }
//	    return callUpstream(ctx)
//	})
//
// An open circuit rejects calls with *CircuitOpenError, which carries the
// remaining cooldown and unwraps to ErrCircuitOpen. A closed rate limiter
// releases every suspended waiter with ErrLimiterClosed rather than leaving
// them pending.
package resilience
