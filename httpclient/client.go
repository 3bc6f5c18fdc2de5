package httpclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/disputeflow/outbound/cache"
	"github.com/disputeflow/outbound/credentials"
	"github.com/disputeflow/outbound/observe"
	"github.com/disputeflow/outbound/resilience"
)

// Config configures a Client for one upstream endpoint group.
type Config struct {
	// Target is the logical endpoint group name used in telemetry,
	// e.g. "pms" or "stripe".
	// Default: "upstream"
	Target string

	// BaseURL is prepended to relative request URLs. Optional when every
	// request uses an absolute URL.
	BaseURL string

	// Timeout bounds each individual attempt, not the whole logical call.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxRetries is the number of counted retries after the first attempt.
	// Negative disables retries.
	// Default: 3
	MaxRetries int

	// Backoff configures the delay schedule between retries.
	Backoff resilience.BackoffConfig

	// Breaker configures the circuit breaker guarding this endpoint group.
	// OnStateChange and IsFailure are set by the client.
	Breaker resilience.CircuitBreakerConfig

	// Limiter configures the token-bucket rate limiter pacing departures.
	Limiter resilience.RateLimiterConfig

	// Bulkhead configures the concurrent in-flight attempt cap.
	Bulkhead resilience.BulkheadConfig

	// DefaultHeaders are attached to every request. Per-request headers
	// override them on key collision.
	DefaultHeaders map[string]string

	// Credentials supplies authentication headers for each attempt.
	// Optional.
	Credentials credentials.Source

	// Refresh renews credentials after a 401 response. At most one refresh
	// happens per logical call; the refreshed attempt is not counted as a
	// retry. Optional.
	Refresh credentials.RefreshFunc

	// Cache enables in-process caching of cacheable responses. Optional.
	Cache cache.Cache

	// CachePolicy decides which method/status pairs are cacheable.
	// Default: GET responses with status 200.
	CachePolicy cache.Policy

	// CacheTTL is how long cached responses stay fresh.
	// Default: 30 seconds
	CacheTTL time.Duration

	// CacheVary lists request header names whose values partition the
	// cache key, e.g. "Accept".
	CacheVary []string

	// Transport is the underlying HTTP transport.
	// Default: http.DefaultTransport
	Transport http.RoundTripper

	// Logger receives structured call logs.
	// Default: discard
	Logger observe.Logger

	// Metrics receives call, retry, and breaker-transition measurements.
	// Default: discard
	Metrics observe.Metrics

	// Tracer produces one client span per logical call.
	// Default: non-recording spans
	Tracer observe.Tracer
}

// Client is a resilient HTTP client for one upstream endpoint group.
// All methods are safe for concurrent use.
type Client struct {
	config  Config
	breaker *resilience.CircuitBreaker
	limiter *resilience.RateLimiter
	bulk    *resilience.Bulkhead
	backoff *resilience.Backoff
	http    *http.Client
	keyer   cache.Keyer

	refreshGroup singleflight.Group

	mu      sync.RWMutex
	headers map[string]string
	closed  bool
	done    chan struct{}
}

var _ Doer = (*Client)(nil)

// New creates a Client from the given configuration.
func New(config Config) *Client {
	if config.Target == "" {
		config.Target = "upstream"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	} else if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.CachePolicy == nil {
		config.CachePolicy = cache.NewDefaultPolicy()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 30 * time.Second
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NopTracer()
	}

	headers := make(map[string]string, len(config.DefaultHeaders))
	for k, v := range config.DefaultHeaders {
		headers[k] = v
	}

	breakerCfg := config.Breaker
	breakerCfg.IsFailure = breakerFailure
	breakerCfg.OnStateChange = func(from, to resilience.State) {
		config.Metrics.RecordBreakerTransition(context.Background(),
			config.Target, from.String(), to.String())
		if user := config.Breaker.OnStateChange; user != nil {
			user(from, to)
		}
	}

	return &Client{
		config:  config,
		breaker: resilience.NewCircuitBreaker(breakerCfg),
		limiter: resilience.NewRateLimiter(config.Limiter),
		bulk:    resilience.NewBulkhead(config.Bulkhead),
		backoff: resilience.NewBackoff(config.Backoff),
		http:    &http.Client{Transport: config.Transport},
		keyer:   cache.NewRequestKeyer(),
		headers: headers,
		done:    make(chan struct{}),
	}
}

// Get executes a GET request against the given URL or path.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: url})
}

// Post executes a POST request with the given body.
func (c *Client) Post(ctx context.Context, url string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, URL: url, Body: body})
}

// Put executes a PUT request with the given body.
func (c *Client) Put(ctx context.Context, url string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, URL: url, Body: body})
}

// Patch executes a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, url string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, URL: url, Body: body})
}

// Delete executes a DELETE request against the given URL or path.
func (c *Client) Delete(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, URL: url})
}

// SetHeader sets a default header attached to every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// RemoveHeader removes a default header.
func (c *Client) RemoveHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.headers, key)
}

// Headers returns a snapshot of the default headers.
func (c *Client) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		snapshot[k] = v
	}
	return snapshot
}

// Breaker exposes the circuit breaker for inspection and manual reset.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Limiter exposes the rate limiter for inspection.
func (c *Client) Limiter() *resilience.RateLimiter {
	return c.limiter
}

// Close releases the client's resources. Waiters blocked on the rate
// limiter or bulkhead are released with an error, in-flight backoff sleeps
// are cancelled, and subsequent calls fail with ErrClientClosed. Close is
// idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.limiter.Close()
	c.bulk.Close()
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// mergeHeaders applies the refreshed credential headers to the defaults so
// every later call carries them.
func (c *Client) mergeHeaders(fresh map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range fresh {
		c.headers[k] = v
	}
}
