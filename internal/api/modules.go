package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Dashboard endpoints

func (c *Client) DashboardMetrics(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/dashboard/metricas", nil)
}

func (c *Client) DashboardRecentActivity(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/dashboard/atividades-recentes", nil)
}

func (c *Client) DashboardCalendar(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/dashboard/calendario", nil)
}

func (c *Client) DashboardNotifications(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/dashboard/notificacoes", nil)
}

func (c *Client) DashboardModuleSummary(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/dashboard/resumo-modulos", nil)
}

// DashboardUsageTime reports time spent in the system per employee.
// An empty date asks for today.
func (c *Client) DashboardUsageTime(ctx context.Context, date string) (Record, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	return c.getRecord(ctx, "/dashboard/tempo-uso-colaboradores", q)
}

// DefaultLoginStatsDays is the window the web dashboard shows.
const DefaultLoginStatsDays = 30

// DashboardLoginStats reports logins per day over the last days.
func (c *Client) DashboardLoginStats(ctx context.Context, days int) (Record, error) {
	if days <= 0 {
		days = DefaultLoginStatsDays
	}
	return c.getRecord(ctx, "/dashboard/estatisticas-login", url.Values{"days": {strconv.Itoa(days)}})
}

// Lead endpoints

func (c *Client) ListLeads(ctx context.Context, page Page) (Record, error) {
	return c.getRecord(ctx, "/leads", page.query())
}

func (c *Client) CreateLead(ctx context.Context, data Record) (Record, error) {
	return c.postRecord(ctx, "/leads", data)
}

// CaptureLeads starts a lead capture with the given filters
func (c *Client) CaptureLeads(ctx context.Context, filtros Record) (Record, error) {
	return c.postRecord(ctx, "/leads/capturar", map[string]any{"filtros": filtros})
}

func (c *Client) ExportLeads(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/leads/exportar", nil)
}

// Public tender (licitação) endpoints

func (c *Client) ListLicitacoes(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/licitacoes", nil)
}

// SearchLicitacoes searches tenders by keywords
func (c *Client) SearchLicitacoes(ctx context.Context, keywords []string) (Record, error) {
	return c.postRecord(ctx, "/licitacoes/buscar", map[string]any{"palavras_chave": keywords})
}

// MonitorLicitacoes configures tender monitoring
func (c *Client) MonitorLicitacoes(ctx context.Context, cfg Record) (Record, error) {
	return c.postRecord(ctx, "/licitacoes/monitorar", cfg)
}

func (c *Client) LicitacaoStats(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/licitacoes/estatisticas", nil)
}

// AI assistant endpoints

func (c *Client) AnalyzeCliente(ctx context.Context, cliente Record) (Record, error) {
	return c.postRecord(ctx, "/ia/analisar-cliente", cliente)
}

func (c *Client) SuggestAction(ctx context.Context, data Record) (Record, error) {
	return c.postRecord(ctx, "/ia/sugerir-acao", data)
}

func (c *Client) GenerateMessage(ctx context.Context, data Record) (Record, error) {
	return c.postRecord(ctx, "/ia/gerar-mensagem", data)
}

// Chat asks the assistant a question with optional context
func (c *Client) Chat(ctx context.Context, pergunta, contexto string) (Record, error) {
	return c.postRecord(ctx, "/ia/chat", map[string]string{"pergunta": pergunta, "contexto": contexto})
}

// Integration endpoints

func (c *Client) IntegrationSettings(ctx context.Context) (Record, error) {
	return c.getRecord(ctx, "/integracoes/configuracoes", nil)
}

func (c *Client) SaveIntegrationSettings(ctx context.Context, data Record) (Record, error) {
	return c.postRecord(ctx, "/integracoes/configuracoes", data)
}

// TestIntegration checks connectivity of one integration (e.g. "google", "authentic")
func (c *Client) TestIntegration(ctx context.Context, tipo string) (Record, error) {
	return c.postRecord(ctx, fmt.Sprintf("/integracoes/testar/%s", url.PathEscape(tipo)), nil)
}
