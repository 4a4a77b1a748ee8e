package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind identifies one failure class in the closed error taxonomy.
// Callers can switch on Kind instead of matching runtime types.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindAuthentication      ErrorKind = "authentication"
	KindForbidden           ErrorKind = "forbidden"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindUnprocessableEntity ErrorKind = "unprocessable_entity"
	KindRateLimit           ErrorKind = "rate_limit"
	KindInternal            ErrorKind = "internal"
	KindBadGateway          ErrorKind = "bad_gateway"
	KindServiceUnavailable  ErrorKind = "service_unavailable"
	KindGatewayTimeout      ErrorKind = "gateway_timeout"
	KindAPI                 ErrorKind = "api"
	KindConnection          ErrorKind = "connection"
	KindTimeout             ErrorKind = "timeout"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a failure from the Tessera API with full context.
// Status is 0 for failures that never produced an HTTP response.
type APIError struct {
	Kind        ErrorKind
	Status      int
	Code        string
	Message     string
	RequestID   string
	FieldErrors []FieldError
	RetryAfter  time.Duration
	Err         error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" && e.RequestID != unknownRequestID {
		return fmt.Sprintf("tessera: %s (kind=%s, status=%d, code=%s, request_id=%s)",
			e.Message, e.Kind, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("tessera: %s (kind=%s, status=%d, code=%s)",
		e.Message, e.Kind, e.Status, e.Code)
}

// Unwrap returns the underlying sentinel or cause for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure class is transient.
// Timeouts are deliberately excluded: an elapsed deadline is final.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindInternal, KindBadGateway, KindServiceUnavailable,
		KindGatewayTimeout, KindConnection:
		return true
	default:
		return false
	}
}

// Sentinel errors for classification with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUnprocessable  = errors.New("unprocessable entity")
	ErrRateLimited    = errors.New("rate limited")
	ErrServer         = errors.New("server error")
	ErrConnection     = errors.New("connection failed")
	ErrTimeout        = errors.New("request timed out")
	ErrDecode         = errors.New("decode error")
)

// Construction-time validation errors with actionable guidance.
var (
	ErrAPIKeyRequired  = errors.New("api key required: pass a non-empty key to core.NewClient")
	ErrBaseURLRequired = errors.New("base url required: pass a non-empty base URL to core.NewClient")
	ErrNilHTTPClient   = errors.New("no http client available: WithHTTPClient was given nil")
)

// unknownRequestID is the fallback when no request identifier is available.
const unknownRequestID = "unknown"

// defaultRetryAfter applies when a 429 response declares no usable Retry-After.
const defaultRetryAfter = 60 * time.Second

// errorEnvelope matches the API's error response body:
// {"error":{"code":"...","message":"...","details":...},"meta":{"requestId":"..."}}
type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"requestId"`
	} `json:"meta"`
}

// Classify maps an HTTP error status and response body to a typed APIError.
// headerRequestID is the x-request-id response header, used when the body
// carries no request identifier. retryAfter applies only to 429 responses;
// zero selects the 60s default. Classify never fails: an unparseable body
// degrades to a synthesized UNKNOWN_ERROR.
func Classify(status int, body []byte, headerRequestID string, retryAfter time.Duration) *APIError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	message := env.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	code := env.Error.Code
	if code == "" {
		code = "UNKNOWN_ERROR"
	}

	requestID := env.Meta.RequestID
	if requestID == "" {
		requestID = headerRequestID
	}
	if requestID == "" {
		requestID = unknownRequestID
	}

	e := &APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID,
	}

	switch status {
	case http.StatusBadRequest:
		e.Kind = KindValidation
		e.Err = ErrValidation
		e.FieldErrors = parseFieldErrors(env.Error.Details)
	case http.StatusUnauthorized:
		e.Kind = KindAuthentication
		e.Err = ErrAuthentication
	case http.StatusForbidden:
		e.Kind = KindForbidden
		e.Err = ErrForbidden
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Err = ErrNotFound
	case http.StatusConflict:
		e.Kind = KindConflict
		e.Err = ErrConflict
	case http.StatusUnprocessableEntity:
		e.Kind = KindUnprocessableEntity
		e.Err = ErrUnprocessable
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.Err = ErrRateLimited
		if retryAfter <= 0 {
			retryAfter = defaultRetryAfter
		}
		e.RetryAfter = retryAfter
	case http.StatusInternalServerError:
		e.Kind = KindInternal
		e.Err = ErrServer
	case http.StatusBadGateway:
		e.Kind = KindBadGateway
		e.Err = ErrServer
	case http.StatusServiceUnavailable:
		e.Kind = KindServiceUnavailable
		e.Err = ErrServer
	case http.StatusGatewayTimeout:
		e.Kind = KindGatewayTimeout
		e.Err = ErrServer
	default:
		e.Kind = KindAPI
		e.Err = ErrServer
	}

	return e
}

// parseFieldErrors extracts field-level sub-errors when details is an array
// of {field, message, code?} records. Any other shape yields nil.
func parseFieldErrors(details json.RawMessage) []FieldError {
	if len(details) == 0 {
		return nil
	}
	var fields []FieldError
	if err := json.Unmarshal(details, &fields); err != nil {
		return nil
	}
	return fields
}

// newConnectionError wraps a network-level failure as a typed APIError.
func newConnectionError(message string, cause error) *APIError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	err := error(ErrConnection)
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, cause)
	}
	return &APIError{
		Kind:      KindConnection,
		Code:      "CONNECTION_ERROR",
		Message:   message,
		RequestID: unknownRequestID,
		Err:       err,
	}
}

// newTimeoutError reports a request that outlived its deadline.
func newTimeoutError(timeout time.Duration) *APIError {
	return &APIError{
		Kind:      KindTimeout,
		Code:      "TIMEOUT",
		Message:   fmt.Sprintf("request timed out after %s", timeout),
		RequestID: unknownRequestID,
		Err:       ErrTimeout,
	}
}
