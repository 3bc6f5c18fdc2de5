package credentials

import "errors"

// Sentinel errors for credential handling.
var (
	// ErrNoFetcher indicates a renewing source was built without a fetch hook.
	ErrNoFetcher = errors.New("credentials: fetch hook is required")

	// ErrNoToken indicates no token is available and none could be fetched.
	ErrNoToken = errors.New("credentials: no token available")

	// ErrMissingEnv indicates a header value references an unset environment
	// variable.
	ErrMissingEnv = errors.New("credentials: missing environment variables")

	// ErrMalformedToken indicates a bearer token could not be parsed as a JWT.
	ErrMalformedToken = errors.New("credentials: malformed token")
)
