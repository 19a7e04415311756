package iface

import (
	"context"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// OrcamentoService defines the interface for quote (orçamento) operations
type OrcamentoService interface {
	// ListOrcamentos returns a page of quotes, optionally filtered by status
	ListOrcamentos(ctx context.Context, page api.Page, status string) (*api.OrcamentoList, error)

	// GetOrcamento returns a quote by ID
	GetOrcamento(ctx context.Context, id string) (api.Record, error)

	// CreateOrcamento creates a quote
	CreateOrcamento(ctx context.Context, data api.Record) (api.Record, error)

	// UpdateOrcamento updates a quote
	UpdateOrcamento(ctx context.Context, id string, data api.Record) (api.Record, error)

	// DeleteOrcamento deletes a quote by ID
	DeleteOrcamento(ctx context.Context, id string) error

	// ApproveOrcamento approves a quote
	ApproveOrcamento(ctx context.Context, id string) (api.Record, error)

	// RejectOrcamento rejects a quote with a reason
	RejectOrcamento(ctx context.Context, id, motivo string) (api.Record, error)

	// OrcamentosBySeller returns a salesperson's quotes
	OrcamentosBySeller(ctx context.Context, sellerID string) ([]api.Record, error)

	// OrcamentosByClient returns a client's quotes
	OrcamentosByClient(ctx context.Context, clientID string) ([]api.Record, error)

	// OrcamentoStats returns quote statistics
	OrcamentoStats(ctx context.Context) (api.Record, error)
}
