package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Keyer generates deterministic cache keys from the request shape.
//
// Contract:
// - Determinism: identical requests must produce identical keys regardless
//   of header map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key for a request against the named endpoint
	// group. vary carries the headers that affect the response identity
	// (Accept, Accept-Language, and similar).
	Key(group, method, url string, vary map[string]string) (string, error)
}

// RequestKeyer is the default Keyer: SHA-256 over a canonical rendering of
// the request shape.
type RequestKeyer struct{}

// NewRequestKeyer creates the default keyer.
func NewRequestKeyer() *RequestKeyer {
	return &RequestKeyer{}
}

// Key generates a deterministic cache key.
// Format: resp:<group>:<hash> where hash is the first 16 hex characters of
// SHA-256 over "METHOD url header=value...".
func (k *RequestKeyer) Key(group, method, url string, vary map[string]string) (string, error) {
	if method == "" || url == "" {
		return "", ErrInvalidKey
	}

	var sb strings.Builder
	sb.WriteString(strings.ToUpper(method))
	sb.WriteByte(' ')
	sb.WriteString(url)

	if len(vary) > 0 {
		names := make([]string, 0, len(vary))
		for name := range vary {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteByte('\x00')
			sb.WriteString(strings.ToLower(name))
			sb.WriteByte('=')
			sb.WriteString(vary[name])
		}
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("resp:%s:%s", group, hex.EncodeToString(sum[:8])), nil
}

// Ensure RequestKeyer implements Keyer
var _ Keyer = (*RequestKeyer)(nil)
