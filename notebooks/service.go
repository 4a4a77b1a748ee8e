// Package notebooks wraps the /notebooks resource. It is a thin pass-through
// to the core transport: no retry, auth, or parsing logic lives here.
package notebooks

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tessera-ai/tessera-go/core"
)

// basePath is the fixed resource path for notebooks.
const basePath = "/notebooks"

// Service exposes notebook operations over a shared core client.
// Service is safe for concurrent use.
type Service struct {
	client *core.Client
}

// New creates a notebook service on the given client.
func New(client *core.Client) *Service {
	return &Service{client: client}
}

// List returns one page of notebooks matching the params.
func (s *Service) List(ctx context.Context, params ListParams) ([]Notebook, *core.Meta, error) {
	env, err := s.client.DoList(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath,
		Query:  params.query(),
	})
	if err != nil {
		return nil, nil, err
	}
	var items []Notebook
	if err := env.Decode(&items); err != nil {
		return nil, nil, err
	}
	return items, &env.Meta, nil
}

// ListAll walks every page, carrying all caller-supplied filters on each
// fetch and advancing only the page number.
func (s *Service) ListAll(ctx context.Context, params ListParams) ([]Notebook, error) {
	return core.CollectPages[Notebook](ctx, func(ctx context.Context, page int) (*core.ListEnvelope, error) {
		params.Page = page
		return s.client.DoList(ctx, &core.Request{
			Method: http.MethodGet,
			Path:   basePath,
			Query:  params.query(),
		})
	})
}

// Get fetches one notebook by ID.
func (s *Service) Get(ctx context.Context, id string) (*Notebook, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/" + id,
	})
	if err != nil {
		return nil, err
	}
	var nb Notebook
	if err := env.Decode(&nb); err != nil {
		return nil, err
	}
	return &nb, nil
}

// Create creates a notebook. The request carries a generated idempotency key
// so a retried create is applied at most once.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Notebook, error) {
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
	var nb Notebook
	if err := env.Decode(&nb); err != nil {
		return nil, err
	}
	return &nb, nil
}

// Update applies a partial update to a notebook.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Notebook, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodPatch,
		Path:   basePath + "/" + id,
		Body:   params,
	})
	if err != nil {
		return nil, err
	}
	var nb Notebook
	if err := env.Decode(&nb); err != nil {
		return nil, err
	}
	return &nb, nil
}

// Delete removes a notebook.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodDelete,
		Path:   basePath + "/" + id,
	})
	return err
}

// RunStream starts a notebook run and returns its event stream. The caller
// owns the stream and must drain or close it.
func (s *Service) RunStream(ctx context.Context, id string, params RunParams) (*core.Stream, error) {
	resp, err := s.client.DoRaw(ctx, &core.Request{
		Method: http.MethodPost,
		Path:   basePath + "/" + id + "/run",
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
