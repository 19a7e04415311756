// Package di provides dependency injection for the vip CLI.
// It contains the service container and factory functions.
package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/auth"
	"github.com/vip-mudancas/vip-cli/internal/config"
	"github.com/vip-mudancas/vip-cli/internal/logging"
	"github.com/vip-mudancas/vip-cli/internal/service"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/session"
	"github.com/vip-mudancas/vip-cli/internal/storage"
)

// Container holds all service dependencies for the CLI.
// Services are accessed via interfaces to enable mocking in tests.
type Container struct {
	configManager *config.Manager
	config        *config.Config
	logger        *slog.Logger
	storage       storage.Store
	client        *api.Client
	session       *session.Store
	navigator     *auth.Navigator

	services Services
}

// Services groups the service implementations a container hands out
type Services struct {
	Auth       iface.AuthService
	Clientes   iface.ClienteService
	Orcamentos iface.OrcamentoService
	Dashboard  iface.DashboardService
	Leads      iface.LeadService
	Licitacoes iface.LicitacaoService
	IA         iface.IAService
	Integracao iface.IntegracaoService
}

// Options adjusts how NewContainer builds its dependencies
type Options struct {
	// ConfigManager replaces the default ~/.vip/config.json manager
	ConfigManager *config.Manager

	// Storage overrides the configured storage backend
	Storage storage.Store

	// LogOutput receives log lines; defaults to stderr
	LogOutput io.Writer

	// Navigator replaces the one built from web_url
	Navigator *auth.Navigator

	// Version is sent in the User-Agent header
	Version string
}

// NewContainer creates a new dependency container with default implementations.
// The session is hydrated from storage before it returns.
func NewContainer(ctx context.Context, opts Options) (*Container, error) {
	configManager := opts.ConfigManager
	if configManager == nil {
		var err error
		configManager, err = config.NewManager()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := configManager.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logOutput := opts.LogOutput
	if logOutput == nil {
		logOutput = os.Stderr
	}
	logger := logging.New(cfg.LogLevel, logOutput)

	store := opts.Storage
	if store == nil {
		storageOpts := configManager.StorageOptions(cfg)
		storageOpts.Logger = logger.With(slog.String("component", "storage"))
		store, err = storage.Open(storageOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s session storage: %w", cfg.Storage.Backend, err)
		}
	}

	userAgent := "vip-cli"
	if opts.Version != "" {
		userAgent += "/" + opts.Version
	}

	client := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithTokenSource(storage.NewTokenSource(store)),
		api.WithLogger(logger.With(slog.String("component", "api"))),
		api.WithUserAgent(userAgent),
	)

	sess := session.NewStore(client, store,
		session.WithLogger(logger.With(slog.String("component", "session"))),
		session.WithLoginRoute(cfg.LoginRoute),
	)
	client.OnAuthFailure(sess.HandleAuthFailure)

	navigator := opts.Navigator
	if navigator == nil {
		navigator = auth.NewNavigator(cfg.WebURL, cfg.OpenBrowserOnExpiry)
	}
	sess.OnExpired(navigator.SessionExpired)

	sess.Initialize(ctx)

	c := &Container{
		configManager: configManager,
		config:        cfg,
		logger:        logger,
		storage:       store,
		client:        client,
		session:       sess,
		navigator:     navigator,
	}
	c.services = Services{
		Auth:       service.NewAuthService(sess, client),
		Clientes:   service.NewClienteService(sess, client),
		Orcamentos: service.NewOrcamentoService(sess, client),
		Dashboard:  service.NewDashboardService(sess, client),
		Leads:      service.NewLeadService(sess, client),
		Licitacoes: service.NewLicitacaoService(sess, client),
		IA:         service.NewIAService(sess, client),
		Integracao: service.NewIntegracaoService(sess, client),
	}
	return c, nil
}

// NewContainerWithServices creates a container with custom service implementations.
// This is useful for testing with mock services.
func NewContainerWithServices(services Services) *Container {
	return &Container{
		config:    config.Default(),
		logger:    logging.Discard(),
		navigator: auth.NewNavigator("", false),
		services:  services,
	}
}

// WithConfig replaces the configuration, for tests that exercise config commands
func (c *Container) WithConfig(m *config.Manager, cfg *config.Config) *Container {
	c.configManager = m
	c.config = cfg
	c.navigator = auth.NewNavigator(cfg.WebURL, cfg.OpenBrowserOnExpiry)
	return c
}

// WithNavigator replaces the navigator
func (c *Container) WithNavigator(n *auth.Navigator) *Container {
	c.navigator = n
	return c
}

// Close releases the storage backend when it holds a connection
func (c *Container) Close() error {
	if closer, ok := c.storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AuthService returns the authentication service
func (c *Container) AuthService() iface.AuthService {
	return c.services.Auth
}

// ClienteService returns the client service
func (c *Container) ClienteService() iface.ClienteService {
	return c.services.Clientes
}

// OrcamentoService returns the quote service
func (c *Container) OrcamentoService() iface.OrcamentoService {
	return c.services.Orcamentos
}

// DashboardService returns the dashboard service
func (c *Container) DashboardService() iface.DashboardService {
	return c.services.Dashboard
}

// LeadService returns the lead service
func (c *Container) LeadService() iface.LeadService {
	return c.services.Leads
}

// LicitacaoService returns the public tender service
func (c *Container) LicitacaoService() iface.LicitacaoService {
	return c.services.Licitacoes
}

// IAService returns the AI assistant service
func (c *Container) IAService() iface.IAService {
	return c.services.IA
}

// IntegracaoService returns the integration settings service
func (c *Container) IntegracaoService() iface.IntegracaoService {
	return c.services.Integracao
}

// ConfigManager returns the config manager
func (c *Container) ConfigManager() *config.Manager {
	return c.configManager
}

// Config returns the loaded configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Navigator returns the web page opener
func (c *Container) Navigator() *auth.Navigator {
	return c.navigator
}

// Session returns the session store, nil for containers built from mocks
func (c *Container) Session() *session.Store {
	return c.session
}

// Logger returns the CLI logger
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
