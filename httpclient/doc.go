// Package httpclient provides a resilient outbound HTTP client for calling
// property-management-system and payment-processor APIs.
//
// Every client wraps one upstream endpoint group and composes the resilience
// primitives around each call: a token-bucket rate limiter paces departures,
// a circuit breaker fails fast while the upstream looks unhealthy, and a
// bounded retry loop with exponential backoff absorbs transient faults.
// Expired bearer credentials are renewed once per logical call: a 401
// response triggers a refresh and an uncounted replay of the same attempt.
//
// Successful GET responses can be cached in-process, and every logical call
// is traced, measured, and logged through the observe package.
package httpclient
