// Package health reports the health of the upstream endpoint groups the
// dispute platform depends on.
//
// Every upstream client exposes two natural health signals: the state of its
// circuit breaker, and whether a lightweight probe request succeeds. This
// package turns both into Checkers, aggregates them, and serves the result
// over the usual Kubernetes probe endpoints.
//
// # Basic Usage
//
//	agg := health.NewAggregator()
//	agg.Register("pms-breaker", health.NewBreakerChecker("pms-breaker", pmsClient.Breaker()))
//	agg.Register("pms-probe", health.NewEndpointChecker("pms-probe", pmsClient, "/ping"))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// The /healthz endpoint answers liveness, /readyz aggregates all registered
// checks, and /health returns the per-upstream detail as JSON.
package health
