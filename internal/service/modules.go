package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vip-mudancas/vip-cli/internal/api"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/session"
)

// fetch runs fn once a session is known to exist and labels its failure.
func (a authenticated) fetch(what string, fn func() (api.Record, error)) (api.Record, error) {
	if err := a.ensureAuthenticated(); err != nil {
		return nil, err
	}
	rec, err := fn()
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return rec, nil
}

// dashboardService implements iface.DashboardService
type dashboardService struct {
	authenticated
	client *api.Client
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store *session.Store, client *api.Client) iface.DashboardService {
	return &dashboardService{authenticated: authenticated{store: store}, client: client}
}

func (s *dashboardService) Metrics(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch dashboard metrics", func() (api.Record, error) { return s.client.DashboardMetrics(ctx) })
}

func (s *dashboardService) RecentActivity(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch recent activity", func() (api.Record, error) { return s.client.DashboardRecentActivity(ctx) })
}

func (s *dashboardService) Calendar(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch calendar", func() (api.Record, error) { return s.client.DashboardCalendar(ctx) })
}

func (s *dashboardService) Notifications(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch notifications", func() (api.Record, error) { return s.client.DashboardNotifications(ctx) })
}

func (s *dashboardService) ModuleSummary(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch module summary", func() (api.Record, error) { return s.client.DashboardModuleSummary(ctx) })
}

func (s *dashboardService) UsageTime(ctx context.Context, date string) (api.Record, error) {
	return s.fetch("fetch usage time", func() (api.Record, error) { return s.client.DashboardUsageTime(ctx, date) })
}

func (s *dashboardService) LoginStats(ctx context.Context, days int) (api.Record, error) {
	return s.fetch("fetch login statistics", func() (api.Record, error) { return s.client.DashboardLoginStats(ctx, days) })
}

// leadService implements iface.LeadService
type leadService struct {
	authenticated
	client *api.Client
}

// NewLeadService creates a new lead service
func NewLeadService(store *session.Store, client *api.Client) iface.LeadService {
	return &leadService{authenticated: authenticated{store: store}, client: client}
}

func (s *leadService) ListLeads(ctx context.Context, page api.Page) (api.Record, error) {
	return s.fetch("fetch leads", func() (api.Record, error) { return s.client.ListLeads(ctx, page) })
}

func (s *leadService) CreateLead(ctx context.Context, data api.Record) (api.Record, error) {
	return s.fetch("create lead", func() (api.Record, error) { return s.client.CreateLead(ctx, data) })
}

func (s *leadService) CaptureLeads(ctx context.Context, filtros api.Record) (api.Record, error) {
	return s.fetch("capture leads", func() (api.Record, error) { return s.client.CaptureLeads(ctx, filtros) })
}

func (s *leadService) ExportLeads(ctx context.Context) (api.Record, error) {
	return s.fetch("export leads", func() (api.Record, error) { return s.client.ExportLeads(ctx) })
}

// licitacaoService implements iface.LicitacaoService
type licitacaoService struct {
	authenticated
	client *api.Client
}

// NewLicitacaoService creates a new public tender service
func NewLicitacaoService(store *session.Store, client *api.Client) iface.LicitacaoService {
	return &licitacaoService{authenticated: authenticated{store: store}, client: client}
}

func (s *licitacaoService) ListLicitacoes(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch tenders", func() (api.Record, error) { return s.client.ListLicitacoes(ctx) })
}

// SearchLicitacoes drops blank keywords and refuses an empty search
func (s *licitacaoService) SearchLicitacoes(ctx context.Context, keywords []string) (api.Record, error) {
	var cleaned []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}
	return s.fetch("search tenders", func() (api.Record, error) { return s.client.SearchLicitacoes(ctx, cleaned) })
}

func (s *licitacaoService) MonitorLicitacoes(ctx context.Context, cfg api.Record) (api.Record, error) {
	return s.fetch("configure tender monitoring", func() (api.Record, error) { return s.client.MonitorLicitacoes(ctx, cfg) })
}

func (s *licitacaoService) LicitacaoStats(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch tender statistics", func() (api.Record, error) { return s.client.LicitacaoStats(ctx) })
}

// iaService implements iface.IAService
type iaService struct {
	authenticated
	client *api.Client
}

// NewIAService creates a new AI assistant service
func NewIAService(store *session.Store, client *api.Client) iface.IAService {
	return &iaService{authenticated: authenticated{store: store}, client: client}
}

func (s *iaService) AnalyzeCliente(ctx context.Context, cliente api.Record) (api.Record, error) {
	return s.fetch("analyze client", func() (api.Record, error) { return s.client.AnalyzeCliente(ctx, cliente) })
}

func (s *iaService) SuggestAction(ctx context.Context, data api.Record) (api.Record, error) {
	return s.fetch("suggest action", func() (api.Record, error) { return s.client.SuggestAction(ctx, data) })
}

func (s *iaService) GenerateMessage(ctx context.Context, data api.Record) (api.Record, error) {
	return s.fetch("generate message", func() (api.Record, error) { return s.client.GenerateMessage(ctx, data) })
}

func (s *iaService) Chat(ctx context.Context, pergunta, contexto string) (api.Record, error) {
	if strings.TrimSpace(pergunta) == "" {
		return nil, fmt.Errorf("a question is required")
	}
	return s.fetch("ask assistant", func() (api.Record, error) { return s.client.Chat(ctx, pergunta, contexto) })
}

// integracaoService implements iface.IntegracaoService
type integracaoService struct {
	authenticated
	client *api.Client
}

// NewIntegracaoService creates a new integration settings service
func NewIntegracaoService(store *session.Store, client *api.Client) iface.IntegracaoService {
	return &integracaoService{authenticated: authenticated{store: store}, client: client}
}

func (s *integracaoService) Settings(ctx context.Context) (api.Record, error) {
	return s.fetch("fetch integration settings", func() (api.Record, error) { return s.client.IntegrationSettings(ctx) })
}

func (s *integracaoService) SaveSettings(ctx context.Context, data api.Record) (api.Record, error) {
	return s.fetch("save integration settings", func() (api.Record, error) { return s.client.SaveIntegrationSettings(ctx, data) })
}

func (s *integracaoService) TestConnection(ctx context.Context, tipo string) (api.Record, error) {
	return s.fetch("test integration", func() (api.Record, error) { return s.client.TestIntegration(ctx, tipo) })
}
