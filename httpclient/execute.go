package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disputeflow/outbound/observe"
	"github.com/disputeflow/outbound/resilience"
)

// cachedResponse is the serialized form of a cached upstream response.
type cachedResponse struct {
	StatusCode int         `json:"status_code"`
	Status     string      `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// Do executes one logical call: limiter, breaker, transport, and a bounded
// retry loop around them. On success the response status is always below
// 400; upstream failures are returned as *StatusError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	if req.URL == "" {
		return nil, ErrMissingURL
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	fullURL, err := c.resolveURL(req.URL)
	if err != nil {
		return nil, err
	}

	meta := observe.CallMeta{Target: c.config.Target, Method: req.Method, URL: fullURL}
	logger := c.config.Logger.WithTarget(meta)

	ctx, span := c.config.Tracer.StartCall(ctx, meta)
	start := time.Now()

	resp, err := c.doWithRetries(ctx, logger, meta, req, fullURL)

	c.config.Metrics.RecordCall(ctx, meta, time.Since(start), err)
	c.config.Tracer.EndCall(span, err)

	if err != nil {
		logger.Warn(ctx, "outbound call failed", observe.Field{Key: "error", Value: err.Error()})
		return nil, err
	}
	return resp, nil
}

func (c *Client) doWithRetries(ctx context.Context, logger observe.Logger, meta observe.CallMeta, req Request, fullURL string) (*Response, error) {
	cacheKey := c.cacheKey(req, fullURL)
	if resp, ok := c.cacheLookup(ctx, cacheKey); ok {
		logger.Debug(ctx, "response served from cache")
		return resp, nil
	}

	refreshed := false

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.attempt(ctx, req, fullURL)
		if err == nil {
			c.cacheStore(ctx, cacheKey, req.Method, resp)
			return resp, nil
		}

		// The breaker has decided the upstream is unhealthy; retrying
		// would only hammer a known-bad endpoint.
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, err
		}

		if se, ok := asStatusError(err); ok && se.StatusCode == http.StatusUnauthorized &&
			c.config.Refresh != nil && !refreshed {
			refreshed = true
			fresh, refreshErr := c.refreshCredentials(ctx, err)
			if refreshErr != nil {
				logger.Warn(ctx, "credential refresh failed",
					observe.Field{Key: "error", Value: refreshErr.Error()})
				return nil, err
			}
			// The replay must carry the fresh credentials even when the
			// caller supplied a stale one per-request, so the refreshed
			// headers also override req.Header. The original map is left
			// untouched.
			if len(fresh) > 0 {
				replacement := make(map[string]string, len(req.Header)+len(fresh))
				for k, v := range req.Header {
					replacement[k] = v
				}
				for k, v := range fresh {
					replacement[k] = v
				}
				req.Header = replacement
			}
			logger.Debug(ctx, "credentials refreshed, replaying request")
			attempt-- // the replay is not a counted retry
			continue
		}

		if !Retryable(err) || attempt == c.config.MaxRetries {
			return nil, err
		}

		var hint time.Duration
		if se, ok := asStatusError(err); ok {
			hint = se.RetryAfter()
		}
		delay := c.backoff.DelayFor(attempt, hint)

		c.config.Metrics.RecordRetry(ctx, meta)
		logger.Debug(ctx, "retrying after transient failure",
			observe.Field{Key: "attempt", Value: attempt + 1},
			observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
			observe.Field{Key: "error", Value: err.Error()},
		)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	// Unreachable: the loop always returns on the last attempt.
	return nil, ctx.Err()
}

// attempt executes one attempt through the limiter, breaker, and bulkhead.
// Credentials are resolved before the breaker so a fetch failure is reported
// to the caller without counting against upstream health.
func (c *Client) attempt(ctx context.Context, req Request, fullURL string) (*Response, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	headers, err := c.requestHeaders(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp *Response
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.bulk.Execute(ctx, func(ctx context.Context) error {
			var tripErr error
			resp, tripErr = c.roundTrip(ctx, req, fullURL, headers)
			return tripErr
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// roundTrip performs a single HTTP exchange bounded by the per-attempt
// timeout. Responses with status 400 or higher are returned as *StatusError.
func (c *Client) roundTrip(ctx context.Context, req Request, fullURL string, headers map[string]string) (*Response, error) {
	timeout := c.config.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: building request: %w", err)
	}

	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: reading response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, &StatusError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Header:     httpResp.Header,
			Body:       respBody,
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// requestHeaders merges default, credential, and per-request headers, in
// ascending priority. A credential-source failure aborts the attempt; an
// unauthenticated request would only earn the caller an unexplained 401.
func (c *Client) requestHeaders(ctx context.Context, req Request) (map[string]string, error) {
	merged := c.Headers()

	if c.config.Credentials != nil {
		creds, err := c.config.Credentials.Headers(ctx)
		if err != nil {
			return nil, fmt.Errorf("httpclient: fetching credentials: %w", err)
		}
		for k, v := range creds {
			merged[k] = v
		}
	}

	for k, v := range req.Header {
		merged[k] = v
	}
	return merged, nil
}

// refreshCredentials performs the single-shot 401 refresh, collapsed across
// concurrent callers so the upstream sees one renewal. The fresh headers are
// merged into the shared defaults and returned for the in-flight replay.
func (c *Client) refreshCredentials(ctx context.Context, cause error) (map[string]string, error) {
	fresh, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.config.Refresh(ctx, cause)
	})
	if err != nil {
		return nil, err
	}
	headers, _ := fresh.(map[string]string)
	c.mergeHeaders(headers)
	return headers, nil
}

func (c *Client) resolveURL(u string) (string, error) {
	if strings.Contains(u, "://") {
		return u, nil
	}
	if c.config.BaseURL == "" {
		return "", ErrMissingBaseURL
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(u, "/"), nil
}

// cacheKey builds the cache key for the request, or "" when caching is off
// or the request is not a cache candidate.
func (c *Client) cacheKey(req Request, fullURL string) string {
	if c.config.Cache == nil || req.Method != http.MethodGet {
		return ""
	}

	vary := make(map[string]string, len(c.config.CacheVary))
	merged := c.Headers()
	for k, v := range req.Header {
		merged[k] = v
	}
	for _, name := range c.config.CacheVary {
		if v, ok := merged[name]; ok {
			vary[name] = v
		}
	}

	key, err := c.keyer.Key(c.config.Target, req.Method, fullURL, vary)
	if err != nil {
		return ""
	}
	return key
}

func (c *Client) cacheLookup(ctx context.Context, key string) (*Response, bool) {
	if key == "" {
		return nil, false
	}
	raw, ok := c.config.Cache.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		_ = c.config.Cache.Delete(ctx, key)
		return nil, false
	}

	return &Response{
		StatusCode: cached.StatusCode,
		Status:     cached.Status,
		Header:     cached.Header,
		Body:       cached.Body,
		FromCache:  true,
	}, true
}

func (c *Client) cacheStore(ctx context.Context, key, method string, resp *Response) {
	if key == "" || !c.config.CachePolicy.Cacheable(method, resp.StatusCode) {
		return
	}

	raw, err := json.Marshal(cachedResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       resp.Body,
	})
	if err != nil {
		return
	}
	_ = c.config.Cache.Set(ctx, key, raw, c.config.CacheTTL)
}

// sleep waits out a backoff delay. Context cancellation and Close both
// unblock it early, so teardown never waits for pending retry timers.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClientClosed
	case <-timer.C:
		return nil
	}
}
