package httpclient

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// retryableStatuses are the upstream status codes worth another attempt:
// throttling and transient server-side failures.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// RetryableStatus reports whether the status code is worth retrying.
func RetryableStatus(code int) bool {
	return retryableStatuses[code]
}

// retryableTransportError reports whether a transport-level error looks
// transient: timeouts, resets, aborted connections, and DNS lookup failures.
// Caller-initiated cancellation is never retryable.
func retryableTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// Retryable reports whether the attempt outcome is worth another attempt.
// Circuit-open failures are terminal: the breaker has already decided the
// upstream is unhealthy and hammering it defeats the point.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := asStatusError(err); ok {
		return RetryableStatus(se.StatusCode)
	}
	return retryableTransportError(err)
}

// breakerFailure reports whether the attempt outcome should count against
// the circuit breaker. Client-side mistakes (4xx, including 429 throttling)
// say nothing about upstream health, and caller cancellation is not the
// upstream's fault.
func breakerFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if se, ok := asStatusError(err); ok {
		return se.StatusCode >= 500
	}
	return true
}
