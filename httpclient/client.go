package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// maxErrorBodySize limits how much of an error response body is kept
const maxErrorBodySize = 64 * 1024

// Client is a GET-only JSON client with timeout, retry with exponential
// backoff, and classified errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	retries    int
	retryDelay time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	sleep      func(ctx context.Context, d time.Duration) error

	mu      sync.RWMutex
	headers http.Header
}

// New creates a new Client for the given base endpoint
func New(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: base URL has no host", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	} else if httpClient.Timeout == 0 {
		httpClient.Timeout = o.timeout
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "httpclient").Logger(),
		retries:    o.maxRetries,
		retryDelay: o.retryDelay,
		sleep:      sleepContext,
		headers:    make(http.Header),
	}

	c.headers.Set("Accept", "application/json")
	if o.userAgent != "" {
		c.headers.Set("User-Agent", o.userAgent)
	}
	if o.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.rateLimit), o.rateBurst)
	}
	if o.breaker != nil {
		c.breaker = newBreaker(*o.breaker, c.logger)
	}

	return c, nil
}

// BaseURL returns the endpoint all request paths are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeader sets a default header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(key, value)
}

// RemoveHeader removes a default header
func (c *Client) RemoveHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(key)
}

// Header returns the current value of a default header
func (c *Client) Header(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get(key)
}

// Get fetches path and decodes the JSON body into out. A nil out discards the body.
// Failures are returned as *Error, except decode failures which wrap ErrDecode.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	rc := requestConfig{retries: c.retries, retryDelay: c.retryDelay}
	for _, opt := range opts {
		opt(&rc)
	}

	body, err := c.execute(ctx, path, rc)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return nil
}

// GetJSON is a typed convenience wrapper around Client.Get
func GetJSON[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Get(ctx, path, &out, opts...)
	return out, err
}

// execute runs the retry loop, behind the circuit breaker when one is configured
func (c *Client) execute(ctx context.Context, path string, rc requestConfig) ([]byte, error) {
	if c.breaker == nil {
		return c.retry(ctx, path, rc)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.retry(ctx, path, rc)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn().Str("path", path).Msg("Request rejected by circuit breaker")
		return nil, circuitOpenError(err)
	}
	return body, err
}

// retry performs up to rc.retries+1 sequential attempts
func (c *Client) retry(ctx context.Context, path string, rc requestConfig) ([]byte, error) {
	delay := rc.retryDelay
	var lastErr *Error

	for attempt := 0; attempt <= rc.retries; attempt++ {
		body, herr := c.do(ctx, path)
		if herr == nil {
			return body, nil
		}
		lastErr = herr

		// Client and configuration errors are caller-fixable
		if !herr.IsRetryable() {
			return nil, herr
		}
		if attempt == rc.retries {
			break
		}

		c.logger.Warn().
			Int("attempt", attempt+1).
			Int("retries", rc.retries).
			Dur("delay", delay).
			Str("path", path).
			Msg("Retrying request")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, Classify(NoResponseFailure{Err: err})
		}
		delay *= 2
	}

	return nil, lastErr
}

// do performs a single attempt
func (c *Client) do(ctx context.Context, path string) ([]byte, *Error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, Classify(NoResponseFailure{Err: err})
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		herr := Classify(ConfigFailure{Err: err})
		c.logger.Error().Err(err).Str("path", path).Msg("Request error")
		return nil, herr
	}

	c.mu.RLock()
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	c.mu.RUnlock()

	c.logger.Debug().Str("method", req.Method).Str("path", path).Msg("Sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		herr := Classify(NoResponseFailure{Err: err})
		c.logger.Warn().Err(err).Str("path", path).Msg(herr.Message)
		return nil, herr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := Classify(ResponseFailure{
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		})
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("Response error")
		return nil, herr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		herr := Classify(NoResponseFailure{Err: err})
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to read response body")
		return nil, herr
	}

	c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("Response received")
	return body, nil
}

// readBodyForError reads at most maxErrorBodySize bytes of an error response
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
