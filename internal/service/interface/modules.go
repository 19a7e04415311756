package iface

import (
	"context"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// DashboardService defines the interface for dashboard reports
type DashboardService interface {
	Metrics(ctx context.Context) (api.Record, error)
	RecentActivity(ctx context.Context) (api.Record, error)
	Calendar(ctx context.Context) (api.Record, error)
	Notifications(ctx context.Context) (api.Record, error)
	ModuleSummary(ctx context.Context) (api.Record, error)

	// UsageTime reports time in the system per employee for date (YYYY-MM-DD, "" for today)
	UsageTime(ctx context.Context, date string) (api.Record, error)

	// LoginStats reports logins per day over the last days
	LoginStats(ctx context.Context, days int) (api.Record, error)
}

// LeadService defines the interface for lead operations
type LeadService interface {
	ListLeads(ctx context.Context, page api.Page) (api.Record, error)
	CreateLead(ctx context.Context, data api.Record) (api.Record, error)
	CaptureLeads(ctx context.Context, filtros api.Record) (api.Record, error)
	ExportLeads(ctx context.Context) (api.Record, error)
}

// LicitacaoService defines the interface for public tender operations
type LicitacaoService interface {
	ListLicitacoes(ctx context.Context) (api.Record, error)
	SearchLicitacoes(ctx context.Context, keywords []string) (api.Record, error)
	MonitorLicitacoes(ctx context.Context, cfg api.Record) (api.Record, error)
	LicitacaoStats(ctx context.Context) (api.Record, error)
}

// IAService defines the interface for the AI assistant
type IAService interface {
	AnalyzeCliente(ctx context.Context, cliente api.Record) (api.Record, error)
	SuggestAction(ctx context.Context, data api.Record) (api.Record, error)
	GenerateMessage(ctx context.Context, data api.Record) (api.Record, error)
	Chat(ctx context.Context, pergunta, contexto string) (api.Record, error)
}

// IntegracaoService defines the interface for third-party integration settings
type IntegracaoService interface {
	Settings(ctx context.Context) (api.Record, error)
	SaveSettings(ctx context.Context, data api.Record) (api.Record, error)
	TestConnection(ctx context.Context, tipo string) (api.Record, error)
}
