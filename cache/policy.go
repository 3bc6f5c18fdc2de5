package cache

import "net/http"

// Policy decides which responses may be cached.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
type Policy interface {
	// Cacheable reports whether a response to the given method/status pair
	// may be stored.
	Cacheable(method string, statusCode int) bool
}

// DefaultPolicy caches successful responses to safe, idempotent reads only:
// GET requests with a 200 status. Everything carrying side effects or error
// semantics passes through uncached.
type DefaultPolicy struct{}

// NewDefaultPolicy creates the default policy.
func NewDefaultPolicy() *DefaultPolicy {
	return &DefaultPolicy{}
}

// Cacheable implements Policy.
func (DefaultPolicy) Cacheable(method string, statusCode int) bool {
	return method == http.MethodGet && statusCode == http.StatusOK
}

// Ensure DefaultPolicy implements Policy
var _ Policy = DefaultPolicy{}
