package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check exceeded the aggregator
	// timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrProbeFailed indicates an upstream probe request failed.
	ErrProbeFailed = errors.New("health: probe failed")
)
