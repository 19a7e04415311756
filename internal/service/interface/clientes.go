package iface

import (
	"context"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// DefaultClienteStatus is the stage the backend gives new clients
const DefaultClienteStatus = "novo"

// ClienteService defines the interface for client (cliente) operations
type ClienteService interface {
	// ListClientes returns a page of clients
	ListClientes(ctx context.Context, page api.Page) (*api.ClienteList, error)

	// GetCliente returns a client by ID
	GetCliente(ctx context.Context, id string) (api.Record, error)

	// CreateCliente creates a client
	CreateCliente(ctx context.Context, data api.Record) (api.Record, error)

	// UpdateCliente updates a client's fields
	UpdateCliente(ctx context.Context, id string, data api.Record) (api.Record, error)

	// UpdateClienteStatus moves a client to another funnel stage
	UpdateClienteStatus(ctx context.Context, id, status, justificativa string) (api.Record, error)

	// DeleteCliente deletes a client by ID
	DeleteCliente(ctx context.Context, id string) error
}
