package core

import "encoding/json"

// Meta carries response metadata present on every envelope.
type Meta struct {
	// RequestID correlates one client call with server-side logs.
	// Defaults to "unknown" when the server omits it.
	RequestID string `json:"requestId"`

	// Timestamp is the server-reported response time, RFC 3339.
	Timestamp string `json:"timestamp,omitempty"`

	// Pagination is present on collection responses only.
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the position of a collection page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the {data, meta} wrapper for single-resource responses.
// Data is left raw so resource wrappers can decode their own types.
type Envelope struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

// Decode unmarshals the envelope's data payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// ListEnvelope is the {data: [...], meta} wrapper for collection responses.
type ListEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

// Decode unmarshals the envelope's data array into v.
func (e *ListEnvelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// normalize applies the "unknown" request-id fallback.
func (m *Meta) normalize() {
	if m.RequestID == "" {
		m.RequestID = unknownRequestID
	}
}
