// Package skills wraps the /skills resource: reusable capabilities invoked
// synchronously or as an event stream. Thin pass-through to the core
// transport.
package skills

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/tessera-ai/tessera-go/core"
)

const basePath = "/skills"

// Skill is a single skill resource.
type Skill struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
}

// ListParams filters and paginates skill listings.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

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
	return q
}

// CreateParams describes a skill to register.
type CreateParams struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Definition  map[string]any `json:"definition,omitempty"`
}

// UpdateParams describes a partial skill update.
type UpdateParams struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Definition  map[string]any `json:"definition,omitempty"`
}

// InvokeParams carries the input for a skill invocation.
type InvokeParams struct {
	Input     json.RawMessage `json:"input"`
	SessionID string          `json:"sessionId,omitempty"`
}

// InvokeResult is the synchronous invocation outcome.
type InvokeResult struct {
	Output    json.RawMessage `json:"output"`
	SessionID string          `json:"sessionId,omitempty"`
}

// Service exposes skill operations over a shared core client.
type Service struct {
	client *core.Client
}

// New creates a skills service on the given client.
func New(client *core.Client) *Service {
	return &Service{client: client}
}

// List returns one page of skills.
func (s *Service) List(ctx context.Context, params ListParams) ([]Skill, *core.Meta, error) {
	env, err := s.client.DoList(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath,
		Query:  params.query(),
	})
	if err != nil {
		return nil, nil, err
	}
	var items []Skill
	if err := env.Decode(&items); err != nil {
		return nil, nil, err
	}
	return items, &env.Meta, nil
}

// ListAll walks every page, preserving all filters across fetches.
func (s *Service) ListAll(ctx context.Context, params ListParams) ([]Skill, error) {
	return core.CollectPages[Skill](ctx, func(ctx context.Context, page int) (*core.ListEnvelope, error) {
		params.Page = page
		return s.client.DoList(ctx, &core.Request{
			Method: http.MethodGet,
			Path:   basePath,
			Query:  params.query(),
		})
	})
}

// Get fetches one skill by ID.
func (s *Service) Get(ctx context.Context, id string) (*Skill, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/" + id,
	})
	if err != nil {
		return nil, err
	}
	var sk Skill
	if err := env.Decode(&sk); err != nil {
		return nil, err
	}
	return &sk, nil
}

// Create registers a skill with a generated idempotency key.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Skill, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodPost,
		Path:   basePath,
		Body:   params,
		Options: core.RequestOptions{
			IdempotencyKey: uuid.NewString(),
		},
	})
	if err != nil {
		return nil, err
	}
	var sk Skill
	if err := env.Decode(&sk); err != nil {
		return nil, err
	}
	return &sk, nil
}

// Update applies a partial update to a skill.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Skill, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodPatch,
		Path:   basePath + "/" + id,
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	var sk Skill
	if err := env.Decode(&sk); err != nil {
		return nil, err
	}
	return &sk, nil
}

// Delete removes a skill.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodDelete,
		Path:   basePath + "/" + id,
	})
	return err
}

// Invoke runs a skill synchronously and returns its output.
func (s *Service) Invoke(ctx context.Context, id string, params InvokeParams) (*InvokeResult, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodPost,
		Path:   basePath + "/" + id + "/invoke",
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	var result InvokeResult
	if err := env.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InvokeStream runs a skill and returns its event stream. The caller owns
// the stream and must drain or close it.
func (s *Service) InvokeStream(ctx context.Context, id string, params InvokeParams) (*core.Stream, error) {
	resp, err := s.client.DoRaw(ctx, &core.Request{
		Method: http.MethodPost,
		Path:   basePath + "/" + id + "/invoke/stream",
		Body:   params,
		Options: core.RequestOptions{
			Headers: http.Header{"Accept": []string{"text/event-stream"}},
		},
	})
	if err != nil {
		return nil, err
	}
	return core.NewStream(resp)
}
