package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Record is a JSON object passed through without interpretation.
type Record map[string]any

// String returns the field as a string, formatting numbers when needed.
func (r Record) String(field string) string {
	return User(r).String(field)
}

// Page selects a slice of a paginated listing.
type Page struct {
	Page    int
	PerPage int
}

// DefaultPage is what the web client requested when nothing was given.
var DefaultPage = Page{Page: 1, PerPage: 20}

func (p Page) query() url.Values {
	if p.Page <= 0 {
		p.Page = DefaultPage.Page
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPage.PerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	return q
}

// ClienteList represents the response from GET /clientes
type ClienteList struct {
	Clientes []Record `json:"clientes"`
	Page     int      `json:"page"`
	PerPage  int      `json:"per_page"`
	Total    int      `json:"total,omitempty"`
}

// ListClientes fetches a page of clients
func (c *Client) ListClientes(ctx context.Context, page Page) (*ClienteList, error) {
	var resp ClienteList
	if err := c.GetWithQuery(ctx, "/clientes", page.query(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCliente fetches a client by ID
func (c *Client) GetCliente(ctx context.Context, id string) (Record, error) {
	var resp Record
	if err := c.Get(ctx, fmt.Sprintf("/clientes/%s", url.PathEscape(id)), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateCliente creates a client
func (c *Client) CreateCliente(ctx context.Context, data Record) (Record, error) {
	var resp Record
	if err := c.Post(ctx, "/clientes", data, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateCliente updates a client
func (c *Client) UpdateCliente(ctx context.Context, id string, data Record) (Record, error) {
	var resp Record
	if err := c.Put(ctx, fmt.Sprintf("/clientes/%s", url.PathEscape(id)), data, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateClienteStatus changes a client's funnel status
func (c *Client) UpdateClienteStatus(ctx context.Context, id, status, justificativa string) (Record, error) {
	var resp Record
	body := map[string]string{"status": status, "justificativa": justificativa}
	if err := c.Put(ctx, fmt.Sprintf("/clientes/%s/status", url.PathEscape(id)), body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteCliente deletes a client by ID
func (c *Client) DeleteCliente(ctx context.Context, id string) error {
	return c.Delete(ctx, fmt.Sprintf("/clientes/%s", url.PathEscape(id)), nil)
}

// OrcamentoList represents the response from orçamento listings
type OrcamentoList struct {
	Orcamentos []Record `json:"orcamentos"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
}

// orcamentoEnvelope represents the response from GET /orcamentos/{id}
type orcamentoEnvelope struct {
	Orcamento Record `json:"orcamento"`
}

// ListOrcamentos fetches a page of quotes, optionally filtered by status
func (c *Client) ListOrcamentos(ctx context.Context, page Page, status string) (*OrcamentoList, error) {
	q := page.query()
	if status != "" {
		q.Set("status", status)
	}
	var resp OrcamentoList
	if err := c.GetWithQuery(ctx, "/orcamentos", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrcamento fetches a quote by ID
func (c *Client) GetOrcamento(ctx context.Context, id string) (Record, error) {
	var resp orcamentoEnvelope
	if err := c.Get(ctx, fmt.Sprintf("/orcamentos/%s", url.PathEscape(id)), &resp); err != nil {
		return nil, err
	}
	return resp.Orcamento, nil
}

// CreateOrcamento creates a quote
func (c *Client) CreateOrcamento(ctx context.Context, data Record) (Record, error) {
	var resp Record
	if err := c.Post(ctx, "/orcamentos", data, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateOrcamento updates a quote
func (c *Client) UpdateOrcamento(ctx context.Context, id string, data Record) (Record, error) {
	var resp Record
	if err := c.Put(ctx, fmt.Sprintf("/orcamentos/%s", url.PathEscape(id)), data, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteOrcamento deletes a quote by ID
func (c *Client) DeleteOrcamento(ctx context.Context, id string) error {
	return c.Delete(ctx, fmt.Sprintf("/orcamentos/%s", url.PathEscape(id)), nil)
}

// ApproveOrcamento approves a quote
func (c *Client) ApproveOrcamento(ctx context.Context, id string) (Record, error) {
	var resp Record
	if err := c.Post(ctx, fmt.Sprintf("/orcamentos/%s/aprovar", url.PathEscape(id)), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RejectOrcamento rejects a quote with a reason
func (c *Client) RejectOrcamento(ctx context.Context, id, motivo string) (Record, error) {
	var resp Record
	body := map[string]string{"motivo": motivo}
	if err := c.Post(ctx, fmt.Sprintf("/orcamentos/%s/rejeitar", url.PathEscape(id)), body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// OrcamentosBySeller lists the quotes of a salesperson
func (c *Client) OrcamentosBySeller(ctx context.Context, sellerID string) ([]Record, error) {
	var resp OrcamentoList
	if err := c.Get(ctx, fmt.Sprintf("/orcamentos/vendedor/%s", url.PathEscape(sellerID)), &resp); err != nil {
		return nil, err
	}
	return resp.Orcamentos, nil
}

// OrcamentosByClient lists the quotes of a client
func (c *Client) OrcamentosByClient(ctx context.Context, clientID string) ([]Record, error) {
	var resp OrcamentoList
	if err := c.Get(ctx, fmt.Sprintf("/orcamentos/cliente/%s", url.PathEscape(clientID)), &resp); err != nil {
		return nil, err
	}
	return resp.Orcamentos, nil
}

// OrcamentoStats fetches quote statistics
func (c *Client) OrcamentoStats(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/orcamentos/estatisticas", nil)
}

// getRecord performs a GET and decodes the body into a Record.
func (c *Client) getRecord(ctx context.Context, path string, query url.Values) (Record, error) {
	var resp Record
	if err := c.GetWithQuery(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// postRecord performs a POST and decodes the body into a Record.
func (c *Client) postRecord(ctx context.Context, path string, body interface{}) (Record, error) {
	var resp Record
	if err := c.Post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
