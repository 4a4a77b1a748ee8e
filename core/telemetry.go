package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, or tracing.
//
// Event types never include sensitive data: API keys, request bodies, and
// response payloads are excluded. Only operational metadata is exposed
// (method, path, timing, status, attempt count). Keep it that way when
// extending this interface.
type TelemetryHook interface {
	// OnRequestStart is called when a logical API call begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a logical API call completes,
	// after all retry attempts.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Method string    // HTTP method
	Path   string    // Request path relative to the base URL
	Start  time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Method    string    // HTTP method
	Path      string    // Request path relative to the base URL
	Start     time.Time // When the request started
	End       time.Time // When the final attempt completed
	Status    int       // Final HTTP status, 0 if no response was received
	Attempts  int       // Total attempts made, including the first
	RequestID string    // Server request identifier, "unknown" if absent
	Err       error     // Final error, nil on success
}

// NoopTelemetryHook is a TelemetryHook that does nothing.
type NoopTelemetryHook struct{}

func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent)    {}
