package service

import (
	"context"
	"fmt"

	"github.com/vip-mudancas/vip-cli/internal/api"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/session"
)

// OrcamentoRequiredFields must be present when creating a quote
var OrcamentoRequiredFields = []string{"cliente_nome", "cliente_email", "tipo_mudanca"}

// orcamentoService implements iface.OrcamentoService
type orcamentoService struct {
	authenticated
	client *api.Client
}

// NewOrcamentoService creates a new quote service
func NewOrcamentoService(store *session.Store, client *api.Client) iface.OrcamentoService {
	return &orcamentoService{
		authenticated: authenticated{store: store},
		client:        client,
	}
}

// ListOrcamentos returns a page of quotes, optionally filtered by status
func (s *orcamentoService) ListOrcamentos(ctx context.Context, page api.Page, status string) (*api.OrcamentoList, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	list, err := s.client.ListOrcamentos(ctx, page, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return list, nil
}

// GetOrcamento returns a quote by ID
func (s *orcamentoService) GetOrcamento(ctx context.Context, id string) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	orcamento, err := s.client.GetOrcamento(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	return orcamento, nil
}

// CreateOrcamento creates a quote
func (s *orcamentoService) CreateOrcamento(ctx context.Context, data api.Record) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}
	for _, field := range OrcamentoRequiredFields {
		if data.String(field) == "" {
			return nil, fmt.Errorf("field %s is required", field)
		}
	}

	resp, err := s.client.CreateOrcamento(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	return resp, nil
}

// UpdateOrcamento updates a quote
func (s *orcamentoService) UpdateOrcamento(ctx context.Context, id string, data api.Record) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	resp, err := s.client.UpdateOrcamento(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}
	return resp, nil
}

// DeleteOrcamento deletes a quote by ID
func (s *orcamentoService) DeleteOrcamento(ctx context.Context, id string) error {
	if err := s.ensureAuthenticated(); err != nil {
		return err
	}

	if err := s.client.DeleteOrcamento(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return nil
}

// ApproveOrcamento approves a quote
func (s *orcamentoService) ApproveOrcamento(ctx context.Context, id string) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	resp, err := s.client.ApproveOrcamento(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to approve quote: %w", err)
	}
	return resp, nil
}

// RejectOrcamento rejects a quote with a reason
func (s *orcamentoService) RejectOrcamento(ctx context.Context, id, motivo string) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	resp, err := s.client.RejectOrcamento(ctx, id, motivo)
	if err != nil {
		return nil, fmt.Errorf("failed to reject quote: %w", err)
	}
	return resp, nil
}

// OrcamentosBySeller returns a salesperson's quotes
func (s *orcamentoService) OrcamentosBySeller(ctx context.Context, sellerID string) ([]api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	list, err := s.client.OrcamentosBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seller quotes: %w", err)
	}
	return list, nil
}

// OrcamentosByClient returns a client's quotes
func (s *orcamentoService) OrcamentosByClient(ctx context.Context, clientID string) ([]api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	list, err := s.client.OrcamentosByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client quotes: %w", err)
	}
	return list, nil
}

// OrcamentoStats returns quote statistics
func (s *orcamentoService) OrcamentoStats(ctx context.Context) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	stats, err := s.client.OrcamentoStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote statistics: %w", err)
	}
	return stats, nil
}
