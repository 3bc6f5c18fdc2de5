package credentials

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresWithin reports whether the bearer token's exp claim falls within d
// from now. Tokens without an exp claim never expire. The token is parsed
// without signature verification: this side only needs the expiry, the
// upstream verifies authenticity.
func ExpiresWithin(token string, d time.Duration) (bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if exp == nil {
		return false, nil
	}

	return time.Until(exp.Time) <= d, nil
}
