package httpclient

import (
	"net/http"
	"time"
)

// Default client settings
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	userAgent  string
	httpClient *http.Client
	rateLimit  float64
	rateBurst  int
	breaker    *BreakerSettings
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:    DefaultTimeout,
		maxRetries: DefaultRetries,
		retryDelay: DefaultRetryDelay,
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithMaxRetries sets the default number of retry attempts.
func WithMaxRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRetryDelay sets the delay before the first retry. It doubles on every retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *clientOptions) {
		if delay >= 0 {
			o.retryDelay = delay
		}
	}
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying http.Client. Its Timeout is
// overwritten by WithTimeout only when it is zero.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithRateLimit caps outgoing attempts at rps requests per second.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) {
		o.rateLimit = rps
		if burst < 1 {
			burst = 1
		}
		o.rateBurst = burst
	}
}

// WithCircuitBreaker guards the upstream with a circuit breaker.
func WithCircuitBreaker(settings BreakerSettings) Option {
	return func(o *clientOptions) {
		o.breaker = &settings
	}
}

// RequestOption overrides client defaults for a single Get.
type RequestOption func(*requestConfig)

type requestConfig struct {
	retries    int
	retryDelay time.Duration
}

// WithRequestRetries overrides the retry count for one request.
func WithRequestRetries(retries int) RequestOption {
	return func(rc *requestConfig) {
		if retries >= 0 {
			rc.retries = retries
		}
	}
}

// WithRequestRetryDelay overrides the initial retry delay for one request.
func WithRequestRetryDelay(delay time.Duration) RequestOption {
	return func(rc *requestConfig) {
		if delay >= 0 {
			rc.retryDelay = delay
		}
	}
}
