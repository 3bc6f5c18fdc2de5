package health

import (
	"context"
	"fmt"

	"github.com/disputeflow/outbound/httpclient"
	"github.com/disputeflow/outbound/resilience"
)

// BreakerChecker reports upstream health from the state of its circuit
// breaker, without sending any traffic: a closed circuit is healthy, a
// half-open circuit probing for recovery is degraded, an open circuit is
// unhealthy.
type BreakerChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker observing the given circuit breaker.
func NewBreakerChecker(name string, breaker *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: breaker}
}

func (c *BreakerChecker) Name() string { return c.name }

// Check maps the breaker state to a health status.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	metrics := c.breaker.Metrics()
	details := map[string]any{
		"state":     metrics.State.String(),
		"failures":  metrics.Failures,
		"successes": metrics.Successes,
	}
	if !metrics.LastFailure.IsZero() {
		details["last_failure"] = metrics.LastFailure
	}

	switch metrics.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open, failing fast", nil).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing for recovery").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// EndpointChecker probes an upstream by issuing a real request through its
// resilient client. The probe rides the client's limiter and breaker, so a
// tripped breaker fails the probe immediately instead of hitting the wire.
type EndpointChecker struct {
	name   string
	client httpclient.Doer
	path   string
}

// NewEndpointChecker creates a checker probing path through the given client.
func NewEndpointChecker(name string, client httpclient.Doer, path string) *EndpointChecker {
	return &EndpointChecker{name: name, client: client, path: path}
}

func (c *EndpointChecker) Name() string { return c.name }

// Check issues the probe request and maps the outcome to a health status.
func (c *EndpointChecker) Check(ctx context.Context) Result {
	resp, err := c.client.Do(ctx, httpclient.Request{Method: "GET", URL: c.path})
	if err != nil {
		return Unhealthy("probe request failed", fmt.Errorf("%w: %w", ErrProbeFailed, err))
	}
	return Healthy(fmt.Sprintf("probe returned %d", resp.StatusCode)).WithDetails(map[string]any{
		"status_code": resp.StatusCode,
		"from_cache":  resp.FromCache,
	})
}

var (
	_ Checker = (*BreakerChecker)(nil)
	_ Checker = (*EndpointChecker)(nil)
)
