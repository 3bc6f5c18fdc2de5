package credentials

import (
	"context"
	"maps"
)

// Source yields the credential headers to attach to outbound requests.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: callers may mutate the returned map; implementations must
//   return a fresh copy on every call.
type Source interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// RefreshFunc produces replacement credential headers after an upstream
// rejected the current ones with a 401. cause is the rejection error. The
// returned headers are merged into the failed request and into the client's
// shared defaults before the replay.
type RefreshFunc func(ctx context.Context, cause error) (map[string]string, error)

// Refresher adapts a Source into a RefreshFunc, ignoring the rejection cause.
func Refresher(src Source) RefreshFunc {
	return func(ctx context.Context, _ error) (map[string]string, error) {
		return src.Headers(ctx)
	}
}

// staticSource serves a fixed header set.
type staticSource struct {
	headers map[string]string
}

// Static returns a Source serving a fixed header set.
func Static(headers map[string]string) Source {
	return &staticSource{headers: maps.Clone(headers)}
}

// StaticBearer returns a Source serving "Authorization: Bearer <token>".
func StaticBearer(token string) Source {
	return Static(bearerHeaders(token))
}

func (s *staticSource) Headers(_ context.Context) (map[string]string, error) {
	return maps.Clone(s.headers), nil
}

func bearerHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
