// Package billing wraps the /billing resource: balance, usage, and invoice
// listings. Thin pass-through to the core transport.
package billing

import (
	"context"
	"net/http"

	"github.com/tessera-ai/tessera-go/core"
)

const basePath = "/billing"

// Balance is the current account balance.
type Balance struct {
	Credits  float64 `json:"credits"`
	Currency string  `json:"currency,omitempty"`
}

// Usage summarizes consumption over a reporting period.
type Usage struct {
	Period       string `json:"period"`
	Requests     int    `json:"requests"`
	InputTokens  int    `json:"inputTokens"`
	OutputTokens int    `json:"outputTokens"`
}

// Invoice is one billing invoice.
type Invoice struct {
	ID       string  `json:"id"`
	Period   string  `json:"period"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Status   string  `json:"status,omitempty"`
	IssuedAt string  `json:"issuedAt,omitempty"`
}

// InvoiceListParams paginates and filters invoice listings.
type InvoiceListParams struct {
	Page   int
	Limit  int
	Status string
}

func (p InvoiceListParams) query() map[string]any {
	q := map[string]any{}
	if p.Page > 0 {
		q["page"] = p.Page
	}
	if p.Limit > 0 {
		q["limit"] = p.Limit
	}
	if p.Status != "" {
		q["status"] = p.Status
	}
	return q
}

// Service exposes billing operations over a shared core client.
type Service struct {
	client *core.Client
}

// New creates a billing service on the given client.
func New(client *core.Client) *Service {
	return &Service{client: client}
}

// Balance fetches the current account balance.
func (s *Service) Balance(ctx context.Context) (*Balance, error) {
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/balance",
	})
	if err != nil {
		return nil, err
	}
	var b Balance
	if err := env.Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Usage fetches the usage summary for a reporting period, e.g. "2026-08".
// An empty period selects the current one.
func (s *Service) Usage(ctx context.Context, period string) (*Usage, error) {
	q := map[string]any{}
	if period != "" {
		q["period"] = period
	}
	env, err := s.client.Do(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/usage",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	var u Usage
	if err := env.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListInvoices returns one page of invoices.
func (s *Service) ListInvoices(ctx context.Context, params InvoiceListParams) ([]Invoice, *core.Meta, error) {
	env, err := s.client.DoList(ctx, &core.Request{
		Method: http.MethodGet,
		Path:   basePath + "/invoices",
		Query:  params.query(),
	})
	if err != nil {
		return nil, nil, err
	}
	var items []Invoice
	if err := env.Decode(&items); err != nil {
		return nil, nil, err
	}
	return items, &env.Meta, nil
}

// ListAllInvoices walks every invoice page, preserving filters across
// fetches.
func (s *Service) ListAllInvoices(ctx context.Context, params InvoiceListParams) ([]Invoice, error) {
	return core.CollectPages[Invoice](ctx, func(ctx context.Context, page int) (*core.ListEnvelope, error) {
		params.Page = page
		return s.client.DoList(ctx, &core.Request{
			Method: http.MethodGet,
			Path:   basePath + "/invoices",
			Query:  params.query(),
		})
	})
}
