package notebooks

import "encoding/json"

// Notebook is a single notebook resource.
type Notebook struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
}

// ListParams filters and paginates notebook listings.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// query serializes the params, omitting unset values so they never reach
// the wire.
func (p ListParams) query() map[string]any {
	q := map[string]any{}
	if p.Page > 0 {
		q["page"] = p.Page
	}
	if p.Limit > 0 {
		q["limit"] = p.Limit
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	if p.Status != "" {
		q["status"] = p.Status
	}
	return q
}

// CreateParams describes a notebook to create.
type CreateParams struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UpdateParams describes a partial notebook update.
type UpdateParams struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RunParams describes a notebook run request.
type RunParams struct {
	Input     string          `json:"input"`
	SessionID string          `json:"sessionId,omitempty"`
	Context   json.RawMessage `json:"context,omitempty"`
}
