package service

import (
	"context"
	"fmt"

	"github.com/vip-mudancas/vip-cli/internal/api"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/session"
)

// authenticated gates resource calls on a held session. It only checks that
// one exists; the backend decides whether it is still valid.
type authenticated struct {
	store *session.Store
}

func (a authenticated) ensureAuthenticated() error {
	if a.store == nil || !a.store.IsAuthenticated() {
		return iface.ErrNotLoggedIn
	}
	return nil
}

// clienteService implements iface.ClienteService
type clienteService struct {
	authenticated
	client *api.Client
}

// NewClienteService creates a new client service
func NewClienteService(store *session.Store, client *api.Client) iface.ClienteService {
	return &clienteService{
		authenticated: authenticated{store: store},
		client:        client,
	}
}

// ListClientes returns a page of clients
func (s *clienteService) ListClientes(ctx context.Context, page api.Page) (*api.ClienteList, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	list, err := s.client.ListClientes(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return list, nil
}

// GetCliente returns a client by ID
func (s *clienteService) GetCliente(ctx context.Context, id string) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	cliente, err := s.client.GetCliente(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return cliente, nil
}

// CreateCliente creates a client
func (s *clienteService) CreateCliente(ctx context.Context, data api.Record) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}
	if data.String("nome") == "" {
		return nil, fmt.Errorf("client name (nome) is required")
	}

	resp, err := s.client.CreateCliente(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return resp, nil
}

// UpdateCliente updates a client's fields
func (s *clienteService) UpdateCliente(ctx context.Context, id string, data api.Record) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}

	resp, err := s.client.UpdateCliente(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return resp, nil
}

// UpdateClienteStatus moves a client to another funnel stage
func (s *clienteService) UpdateClienteStatus(ctx context.Context, id, status, justificativa string) (api.Record, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, fmt.Errorf("status is required")
	}

	resp, err := s.client.UpdateClienteStatus(ctx, id, status, justificativa)
	if err != nil {
		return nil, fmt.Errorf("failed to update client status: %w", err)
	}
	return resp, nil
}

// DeleteCliente deletes a client by ID
func (s *clienteService) DeleteCliente(ctx context.Context, id string) error {
	if err := s.ensureAuthenticated(); err != nil {
		return err
	}

	if err := s.client.DeleteCliente(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
