package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultBackoff   = 300 * time.Millisecond
	maxRetryAfter    = 30 * time.Second
	maxBodyInError   = 4096
	defaultUserAgent = "NewsDigest/1.0"
)

// ErrClosed is returned for requests issued after Close.
var ErrClosed = errors.New("http client closed")

// StatusError describes a non-2xx response that was not retried or ran out of retries.
// URL carries no query string, since some APIs take their key as a parameter.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Status, e.Body)
}

// Config tunes the shared client.
type Config struct {
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
	RateLimit float64
	UserAgent string
}

// Client is the HTTP client shared by all adapters in one run. Safe for concurrent use.
type Client struct {
	http      *http.Client
	transport *http.Transport
	retries   int
	backoff   time.Duration
	limiter   *rate.Limiter
	userAgent string
	closed    atomic.Bool
}

// New builds a client with its own connection pool.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		http:      &http.Client{Timeout: cfg.Timeout, Transport: transport},
		transport: transport,
		retries:   cfg.Retries,
		backoff:   cfg.Backoff,
		userAgent: cfg.UserAgent,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// HTTP exposes the underlying client for libraries that need one (oauth2 token exchange).
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Close releases idle connections. Further requests fail with ErrClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.transport.CloseIdleConnections()
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Get issues a GET with retries and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	tries := c.retries + 1
	for attempt := 0; attempt < tries; attempt++ {
		if c.closed.Load() {
			return nil, ErrClosed
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, wait, err := c.do(ctx, rawURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if wait < 0 {
			return nil, err
		}

		if attempt < tries-1 {
			if wait == 0 {
				wait = c.backoff * time.Duration(1<<attempt)
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	body, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", redactURL(rawURL), err)
	}
	return nil
}

// do performs one attempt. A negative wait marks the error as permanent,
// zero means default backoff, positive is a server-requested delay.
func (c *Client) do(ctx context.Context, rawURL string, headers map[string]string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, -1, redactError(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, ctx.Err()
		}
		return nil, 0, redactError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, err
		}
		return body, 0, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyInError))
	statusErr := &StatusError{URL: redactURL(rawURL), Status: resp.StatusCode, Body: string(snippet)}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retryAfter(resp.Header.Get("Retry-After")), statusErr
	case resp.StatusCode >= 500:
		return nil, 0, statusErr
	default:
		return nil, -1, statusErr
	}
}

func retryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	d := time.Duration(seconds) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

// redactURL drops the query and any userinfo password from rawURL.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		base, _, _ := strings.Cut(rawURL, "?")
		return base
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.Redacted()
}

func redactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactURL(urlErr.URL)
	}
	return err
}
