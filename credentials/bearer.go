package credentials

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RenewingBearerConfig configures a self-renewing bearer token source.
type RenewingBearerConfig struct {
	// Fetch obtains a fresh token from the credential backend (an OAuth
	// token endpoint, a vault, the PMS vendor's auth API).
	Fetch func(ctx context.Context) (string, error)

	// Leeway renews the token this long before its exp claim passes, so a
	// request dispatched just under the wire does not arrive expired.
	// Default: 30 seconds
	Leeway time.Duration
}

// RenewingBearer caches a bearer token and renews it ahead of its JWT expiry.
// Concurrent renewals collapse into a single Fetch call, so a burst of
// requests against an expired token costs one round trip to the credential
// backend, not one per request.
type RenewingBearer struct {
	config RenewingBearerConfig

	mu      sync.RWMutex
	token   string
	sfGroup singleflight.Group
}

// NewRenewingBearer creates a renewing bearer source.
func NewRenewingBearer(config RenewingBearerConfig) (*RenewingBearer, error) {
	if config.Fetch == nil {
		return nil, ErrNoFetcher
	}
	if config.Leeway <= 0 {
		config.Leeway = 30 * time.Second
	}

	return &RenewingBearer{config: config}, nil
}

// Headers returns the Authorization header for the current token, renewing
// it first when it is missing or about to expire.
func (b *RenewingBearer) Headers(ctx context.Context) (map[string]string, error) {
	b.mu.RLock()
	token := b.token
	b.mu.RUnlock()

	if token != "" {
		expiring, err := ExpiresWithin(token, b.config.Leeway)
		if err == nil && !expiring {
			return bearerHeaders(token), nil
		}
		// Unparseable or expiring tokens both fall through to a renewal.
	}

	fresh, err, _ := b.sfGroup.Do("renew", func() (any, error) {
		tok, err := b.config.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.token = tok
		b.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		if token != "" {
			// Renewal failed but we still hold a token; let the upstream be
			// the judge of whether it is usable.
			return bearerHeaders(token), nil
		}
		return nil, err
	}

	return bearerHeaders(fresh.(string)), nil
}

// Invalidate drops the cached token so the next Headers call fetches anew.
func (b *RenewingBearer) Invalidate() {
	b.mu.Lock()
	b.token = ""
	b.mu.Unlock()
}

// Refresh returns a RefreshFunc for the client's 401 hook: it discards the
// rejected token and fetches a replacement.
func (b *RenewingBearer) Refresh() RefreshFunc {
	return func(ctx context.Context, _ error) (map[string]string, error) {
		b.Invalidate()
		return b.Headers(ctx)
	}
}

// Ensure RenewingBearer implements Source
var _ Source = (*RenewingBearer)(nil)
