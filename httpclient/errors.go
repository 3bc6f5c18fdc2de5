package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrClientClosed indicates the client has been closed and can no
	// longer execute calls.
	ErrClientClosed = errors.New("httpclient: client is closed")

	// ErrMissingURL indicates a request without a URL.
	ErrMissingURL = errors.New("httpclient: request URL is required")

	// ErrMissingBaseURL indicates a relative request URL on a client
	// configured without a base URL.
	ErrMissingBaseURL = errors.New("httpclient: relative URL requires a base URL")
)

// StatusError reports an upstream response with status code 400 or higher.
// It carries the full response so callers can inspect error payloads.
type StatusError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: upstream returned %s", e.Status)
}

// RetryAfter returns the server-requested retry delay from the Retry-After
// header, or zero when the header is absent or not an integer number of
// seconds. HTTP-date values are ignored.
func (e *StatusError) RetryAfter() time.Duration {
	v := e.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// asStatusError unwraps err into a *StatusError if possible.
func asStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
