package core

import (
	"net/http"
	"strings"
	"time"
)

// Default client settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// HTTPDoer executes a single HTTP request. *http.Client satisfies it; tests
// and non-default runtimes inject their own.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the client configuration. It is immutable after NewClient
// returns; a Client never mutates it and may be shared across goroutines.
type Config struct {
	// APIKey authenticates every request via a bearer token.
	APIKey Secret

	// BaseURL is the API base address, e.g. "https://api.tessera.ai/v1".
	// Trailing slashes are stripped when joining paths.
	BaseURL string

	// UserID, when set, scopes every request via the X-User-ID header.
	// A per-request override takes precedence.
	UserID string

	// Timeout bounds each attempt. Zero selects DefaultTimeout.
	Timeout time.Duration

	// MaxRetries bounds retries of transient failures. Negative selects
	// DefaultMaxRetries; zero disables retrying.
	MaxRetries int

	// HTTPClient executes requests. Defaults to http.DefaultClient.
	HTTPClient HTTPDoer

	telemetry TelemetryHook
}

// Option is a functional option for configuring a Client.
type Option func(*Config)

// WithUserID sets the default user-scope identifier for all requests.
func WithUserID(userID string) Option {
	return func(c *Config) {
		c.UserID = userID
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the retry budget for transient failures.
// Zero disables retrying entirely.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithHTTPClient injects a custom HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Config) {
		c.HTTPClient = doer
	}
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) Option {
	return func(c *Config) {
		c.telemetry = h
	}
}

// validate rejects unusable configuration before any network activity.
func (c *Config) validate() error {
	if c.APIKey.IsEmpty() {
		return ErrAPIKeyRequired
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrBaseURLRequired
	}
	if c.HTTPClient == nil {
		return ErrNilHTTPClient
	}
	return nil
}
