// Package knowledge wraps the /knowledge resource: document storage and
// retrieval search. Thin pass-through to the core transport.
package knowledge

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tessera-ai/tessera-go/core"
)

const basePath = "/knowledge"

// Document is a single knowledge-base document.
type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Source    string         `json:"source,omitempty"`
	Content   string         `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
}

// SearchResult is one retrieval hit with its relevance score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
	Excerpt  string   `json:"excerpt,omitempty"`
}

// ListParams filters and paginates document listings.
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

// CreateParams describes a document to ingest.
type CreateParams struct {
	Name     string         `json:"name"`
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Service exposes knowledge-base operations over a shared core client.
type Service struct {
	client *core.Client
}

// New creates a knowledge service on the given client.
func New(client *core.Client) *Service {
	return &Service{client: client}
}

// List returns one page of documents.
func (s *Service) List(ctx context.Context, params ListParams) ([]Document, *core.Meta, error) {
	env, err := s.client.DoList(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath,
		Query:  params.query(),
	})
	if err != nil {
		return nil, nil, err
	}
	var items []Document
	if err := env.Decode(&items); err != nil {
		return nil, nil, err
	}
	return items, &env.Meta, nil
}

// ListAll walks every page, preserving all filters across fetches.
func (s *Service) ListAll(ctx context.Context, params ListParams) ([]Document, error) {
	return core.CollectPages[Document](ctx, func(ctx context.Context, page int) (*core.ListEnvelope, error) {
		params.Page = page
		return s.client.DoList(ctx, &core.Request{
			Method: http.MethodGet,
			Path:   basePath,
			Query:  params.query(),
		})
	})
}

// Get fetches one document by ID.
func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/" + id,
	})
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := env.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create ingests a document with a generated idempotency key.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Document, error) {
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
	var doc Document
	if err := env.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodDelete,
		Path:   basePath + "/" + id,
	})
	return err
}

// Search runs a retrieval query against the knowledge base.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := map[string]any{"q": query}
	if limit > 0 {
		q["limit"] = limit
	}
	env, err := s.client.DoList(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/search",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	var results []SearchResult
	if err := env.Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}
