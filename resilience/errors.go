package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrLimiterClosed is returned to waiters when the rate limiter is closed.
	ErrLimiterClosed = errors.New("resilience: rate limiter closed")

	// ErrBulkheadClosed is returned when acquiring a slot from a closed bulkhead.
	ErrBulkheadClosed = errors.New("resilience: bulkhead closed")
)

// CircuitOpenError is the concrete error returned by an open circuit.
// It carries the remaining cooldown so callers can decide when to come back.
// It unwraps to ErrCircuitOpen for errors.Is checks.
type CircuitOpenError struct {
	// RetryIn is the time remaining until the circuit allows a recovery probe.
	// Zero when the circuit is half-open but the probe slot is already taken.
	RetryIn time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.RetryIn > 0 {
		return fmt.Sprintf("resilience: circuit breaker is open, retry in %s", e.RetryIn)
	}
	return "resilience: circuit breaker is open"
}

func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }
