package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one logical API call. Descriptors are built per call and
// discarded after the call completes or fails.
type Request struct {
	// Method is the HTTP method: GET, POST, PUT, PATCH, or DELETE.
	Method string

	// Path is joined to the configured base URL. It is forced to start
	// with a single leading slash.
	Path string

	// Query holds scalar query parameters. Entries with nil values are
	// omitted; everything else is string-coerced.
	Query map[string]any

	// Body, when non-nil, is JSON-serialized into the request body.
	Body any

	// Options carries optional per-request overrides.
	Options RequestOptions
}

// RequestOptions overrides client defaults for a single call.
type RequestOptions struct {
	// Timeout overrides the client's per-attempt timeout.
	Timeout time.Duration

	// UserID overrides the client's user-scope identifier.
	UserID string

	// Headers are merged into the request last; caller wins on conflict.
	Headers http.Header

	// IdempotencyKey is sent as the Idempotency-Key header so retried
	// unsafe requests are applied at most once server-side.
	IdempotencyKey string
}

// resolveURL joins the configured base address and the request path, then
// appends the encoded query string.
func (c *Client) resolveURL(req *Request) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	path := "/" + strings.TrimLeft(req.Path, "/")

	u := base + path
	if q := encodeQuery(req.Query); q != "" {
		u += "?" + q
	}
	return u
}

// encodeQuery serializes query parameters as string-coerced key/value pairs,
// skipping nil entries.
func encodeQuery(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	for key, value := range query {
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprintf("%v", value))
	}
	return values.Encode()
}

// buildHTTPRequest constructs the outgoing *http.Request with auth and
// default headers applied.
func (c *Client) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &APIError{
				Kind:      KindValidation,
				Code:      "INVALID_BODY",
				Message:   fmt.Sprintf("encode request body: %v", err),
				RequestID: unknownRequestID,
				Err:       ErrValidation,
			}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolveURL(req), body)
	if err != nil {
		return nil, newConnectionError("", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey.Expose())

	userID := c.config.UserID
	if req.Options.UserID != "" {
		userID = req.Options.UserID
	}
	if userID != "" {
		httpReq.Header.Set("X-User-ID", userID)
	}

	if req.Options.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.Options.IdempotencyKey)
	}

	// Caller-supplied headers win over everything set above.
	for key, vals := range req.Options.Headers {
		httpReq.Header.Del(key)
		for _, v := range vals {
			httpReq.Header.Add(key, v)
		}
	}

	return httpReq, nil
}
