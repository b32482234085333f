// Package httpclient is the shared outbound HTTP client: bounded downloads
// behind a retry loop and a per-upstream circuit breaker.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Hazealign/black-angus-main/internal/resilience"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 16 << 20

const userAgent = "black-angus-bot/2 (+https://github.com/Hazealign/black-angus-main)"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Response is a fully read response body.
type Response struct {
	Body        []byte
	ContentType string
}

// Fetcher downloads URLs.
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Client implements Fetcher.
type Client struct {
	http     *http.Client
	retry    resilience.RetryConfig
	maxBytes int64
	logger   *slog.Logger

	mu       sync.Mutex
	breakers map[string]*resilience.CircuitBreaker
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(c *Client) { c.maxBytes = n }
}

// New creates a Client with the given per-request timeout and attempt count.
func New(timeout time.Duration, attempts uint, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	retry := resilience.DefaultRetryConfig()
	retry.Attempts = attempts
	retry.Logger = logger

	c := &Client{
		http:     &http.Client{Timeout: timeout},
		retry:    retry,
		maxBytes: DefaultMaxBytes,
		logger:   logger.With("component", "httpclient"),
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) breaker(host string) *resilience.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	cb, ok := c.breakers[host]
	if !ok {
		cb = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:    "http:" + host,
			Timeout: c.http.Timeout,
			Logger:  c.logger,
		})
		c.breakers[host] = cb
	}
	return cb
}

// Get downloads url. 4xx responses fail without retrying.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	cb := c.breaker(req.URL.Host)

	var resp *Response
	err = resilience.WithRetry(ctx, func(ctx context.Context) error {
		return cb.Execute(ctx, func(ctx context.Context) error {
			r, err := c.do(req.Clone(ctx))
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
	}, c.retry)
	if err != nil {
		c.logger.WarnContext(ctx, "Download failed", "url", url, "error", err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		statusErr := &StatusError{URL: req.URL.String(), StatusCode: res.StatusCode}
		if res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(statusErr)
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, resilience.Permanent(fmt.Errorf("GET %s: body exceeds %d bytes", req.URL, c.maxBytes))
	}
	return &Response{Body: body, ContentType: res.Header.Get("Content-Type")}, nil
}
