package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Client is the entry point for talking to the Tessera API. It owns request
// construction, authentication, retries, and envelope decoding.
// Client is safe for concurrent use; each call builds its own descriptor
// and timer and shares only the immutable configuration.
type Client struct {
	config    Config
	telemetry TelemetryHook

	// Injected for deterministic tests.
	sleep  sleepFunc
	jitter func() time.Duration
	now    func() time.Time
}

// NewClient creates a Client for the given API key and base URL.
// It fails immediately, before any network activity, when the key or base
// URL is empty or the HTTP client was explicitly set to nil.
func NewClient(apiKey, baseURL string, opts ...Option) (*Client, error) {
	cfg := Config{
		APIKey:     NewSecret(apiKey),
		BaseURL:    baseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		HTTPClient: http.DefaultClient,
		telemetry:  NoopTelemetryHook{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:    cfg,
		telemetry: cfg.telemetry,
		sleep:     defaultSleep,
		jitter:    defaultJitter,
		now:       time.Now,
	}, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Do executes a request and decodes the single-resource envelope.
func (c *Client) Do(ctx context.Context, req *Request) (*Envelope, error) {
	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	env := &Envelope{}
	if err := decodeEnvelope(resp, &env.Data, &env.Meta); err != nil {
		return nil, err
	}
	return env, nil
}

// DoList executes a request and decodes the collection envelope.
func (c *Client) DoList(ctx context.Context, req *Request) (*ListEnvelope, error) {
	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	env := &ListEnvelope{}
	if err := decodeEnvelope(resp, &env.Data, &env.Meta); err != nil {
		return nil, err
	}
	return env, nil
}

// DoRaw executes a request and returns the response with its body unopened.
// The full auth/retry pipeline still applies; the caller owns the body and
// must close it. Used for streaming and binary payloads.
func (c *Client) DoRaw(ctx context.Context, req *Request) (*http.Response, error) {
	return c.execute(ctx, req)
}

// execute runs the bounded retry loop to completion: maxRetries+1 attempts,
// retrying only 429, 5xx, and network-level failures. An elapsed synthesized
// timeout is fatal immediately; caller cancellation propagates as a
// connection failure.
func (c *Client) execute(ctx context.Context, req *Request) (*http.Response, error) {
	start := c.now()
	c.telemetry.OnRequestStart(RequestStartEvent{
		Method: req.Method,
		Path:   req.Path,
		Start:  start,
	})

	resp, attempts, err := c.attemptLoop(ctx, req)

	end := RequestEndEvent{
		Method:   req.Method,
		Path:     req.Path,
		Start:    start,
		End:      c.now(),
		Attempts: attempts,
		Err:      err,
	}
	if resp != nil {
		end.Status = resp.StatusCode
		end.RequestID = requestIDFromHeader(resp.Header)
	} else if apiErr, ok := err.(*APIError); ok {
		end.Status = apiErr.Status
		end.RequestID = apiErr.RequestID
	}
	c.telemetry.OnRequestEnd(end)

	return resp, err
}

func (c *Client) attemptLoop(ctx context.Context, req *Request) (*http.Response, int, error) {
	timeout := c.config.Timeout
	if req.Options.Timeout > 0 {
		timeout = req.Options.Timeout
	}

	var lastErr *APIError

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		attemptsLeft := attempt < c.config.MaxRetries

		resp, err := c.attempt(ctx, req, timeout)
		if err != nil {
			// Typed errors from a previous classification pass through.
			apiErr, ok := err.(*APIError)
			if !ok {
				apiErr = newConnectionError("", err)
			}

			// Timeouts and caller cancellation are final.
			if apiErr.Kind == KindTimeout || ctx.Err() != nil {
				return nil, attempt + 1, apiErr
			}
			if apiErr.Kind != KindConnection || !attemptsLeft {
				return nil, attempt + 1, apiErr
			}
			lastErr = apiErr
			if serr := c.sleep(ctx, backoffDelay(attempt, c.jitter)); serr != nil {
				return nil, attempt + 1, newConnectionError("request canceled during retry wait", serr)
			}
			continue
		}

		status := resp.StatusCode
		if (status >= 200 && status < 300) || status == http.StatusNoContent {
			return resp, attempt + 1, nil
		}

		apiErr := c.classifyResponse(resp)

		switch {
		case status == http.StatusTooManyRequests && attemptsLeft:
			wait := apiErr.RetryAfter
			if backoff := backoffDelay(attempt, c.jitter); backoff < wait {
				wait = backoff
			}
			lastErr = apiErr
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, attempt + 1, newConnectionError("request canceled during retry wait", serr)
			}
		case status >= 500 && attemptsLeft:
			lastErr = apiErr
			if serr := c.sleep(ctx, backoffDelay(attempt, c.jitter)); serr != nil {
				return nil, attempt + 1, newConnectionError("request canceled during retry wait", serr)
			}
		default:
			return nil, attempt + 1, apiErr
		}
	}

	if lastErr != nil {
		return nil, c.config.MaxRetries + 1, lastErr
	}
	return nil, c.config.MaxRetries + 1, newConnectionError("request failed after all retry attempts", nil)
}

// attempt issues the request once. The timeout bounds the connection and
// response-headers phase only: once a response arrives the timer is disarmed,
// so a streaming body may be read for as long as the server keeps it open.
// The cancel stays tied to the body and fires on Close so abandoning a
// response tears down its connection.
func (c *Client) attempt(ctx context.Context, req *Request, timeout time.Duration) (*http.Response, error) {
	actx, cancel := context.WithCancel(ctx)
	var timedOut atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		cancel()
	})

	httpReq, err := c.buildHTTPRequest(actx, req)
	if err != nil {
		timer.Stop()
		cancel()
		return nil, err
	}

	resp, err := c.config.HTTPClient.Do(httpReq)
	if err != nil {
		timer.Stop()
		cancel()
		switch {
		case ctx.Err() != nil:
			return nil, newConnectionError("request canceled", ctx.Err())
		case timedOut.Load():
			return nil, newTimeoutError(timeout)
		default:
			return nil, newConnectionError("", err)
		}
	}

	timer.Stop()
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// classifyResponse drains an error response and maps it to a typed APIError.
func (c *Client) classifyResponse(resp *http.Response) *APIError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
	}

	return Classify(resp.StatusCode, body, requestIDFromHeader(resp.Header), retryAfter)
}

// decodeEnvelope reads a successful response into an envelope, applying the
// request-id fallback. A 204 yields an empty data payload.
func decodeEnvelope(resp *http.Response, data *json.RawMessage, meta *Meta) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		meta.RequestID = requestIDFromHeader(resp.Header)
		meta.normalize()
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newConnectionError("read response body", err)
	}

	var env struct {
		Data json.RawMessage `json:"data"`
		Meta Meta            `json:"meta"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{
			Kind:      KindAPI,
			Status:    resp.StatusCode,
			Code:      "DECODE_ERROR",
			Message:   fmt.Sprintf("decode response envelope: %v", err),
			RequestID: requestIDFromHeader(resp.Header),
			Err:       ErrDecode,
		}
	}

	*data = env.Data
	*meta = env.Meta
	if meta.RequestID == "" {
		meta.RequestID = requestIDFromHeader(resp.Header)
	}
	meta.normalize()
	return nil
}

// requestIDFromHeader reads the x-request-id header, falling back to "unknown".
func requestIDFromHeader(h http.Header) string {
	if id := h.Get("x-request-id"); id != "" {
		return id
	}
	return unknownRequestID
}

// cancelOnClose ties a per-attempt timeout context to the response body so
// the timer is released exactly once, when the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}
