package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Request describes one outbound HTTP request before resilience handling.
type Request struct {
	// Method is the HTTP method. Required.
	Method string

	// URL is either an absolute URL or a path resolved against the
	// client's base URL. Required.
	URL string

	// Header holds per-request headers. They override the client's
	// default headers on key collision.
	Header map[string]string

	// Body is the request payload, replayed verbatim on every attempt.
	Body []byte

	// Timeout overrides the client's per-attempt timeout when positive.
	Timeout time.Duration
}

// Response is the terminal successful result of one logical call.
type Response struct {
	// StatusCode is the HTTP status code, always below 400.
	StatusCode int

	// Status is the full status line, e.g. "200 OK".
	Status string

	// Header holds the response headers.
	Header http.Header

	// Body is the fully read response payload.
	Body []byte

	// FromCache reports whether the response was served from the
	// in-process response cache without touching the network.
	FromCache bool
}

// Doer executes one logical outbound call. *Client is the canonical
// implementation; the interface exists so collaborators can be tested
// against a stub.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Do must honor cancellation between and during attempts.
// - Errors: a non-nil error means no usable response; status failures are
//   reported as *StatusError.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}
