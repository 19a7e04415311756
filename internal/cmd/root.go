// Package cmd provides the command-line interface for the vip CLI.
// It contains all cobra commands and their implementations.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/config"
	"github.com/vip-mudancas/vip-cli/internal/di"
	"github.com/vip-mudancas/vip-cli/internal/httperrors"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/session"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
)

// skipContainer marks commands that must work without opening session storage.
const skipContainer = "vip/skip-container"

// RootCommand represents the root CLI command
type RootCommand struct {
	container *di.Container
	cmd       *cobra.Command

	// Subcommands
	loginCmd      *LoginCommand
	logoutCmd     *LogoutCommand
	whoamiCmd     *WhoamiCommand
	registerCmd   *RegisterCommand
	passwdCmd     *PasswdCommand
	statusCmd     *StatusCommand
	openCmd       *OpenCommand
	profileCmd    *ProfileCommand
	clientesCmd   *ClientesCommand
	orcamentosCmd *OrcamentosCommand
	configCmd     *ConfigCommand
}

// NewRootCommand creates a new root command
func NewRootCommand() *RootCommand {
	r := &RootCommand{}

	r.cmd = &cobra.Command{
		Use:   "vip",
		Short: "vip - Command line interface for the VIP Mudanças platform",
		Long: `vip is a command-line tool for the VIP Mudanças business platform.

It keeps your session between runs and gives you access to clients,
quotes, leads, public tenders, dashboards and the AI assistant.

To get started, run:
  vip login          - Sign in with your CPF and password
  vip clientes list  - View your clients`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipContainer]; ok {
				return nil
			}
			return r.initialize(cmd)
		},
	}

	// Global flags
	r.cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json)")

	// Initialize subcommands (will be wired after container init)
	r.loginCmd = NewLoginCommand(r)
	r.logoutCmd = NewLogoutCommand(r)
	r.whoamiCmd = NewWhoamiCommand(r)
	r.registerCmd = NewRegisterCommand(r)
	r.passwdCmd = NewPasswdCommand(r)
	r.statusCmd = NewStatusCommand(r)
	r.openCmd = NewOpenCommand(r)
	r.profileCmd = NewProfileCommand(r)
	r.clientesCmd = NewClientesCommand(r)
	r.orcamentosCmd = NewOrcamentosCommand(r)
	r.configCmd = NewConfigCommand(r)

	// Add subcommands
	r.cmd.AddCommand(r.loginCmd.Command())
	r.cmd.AddCommand(r.logoutCmd.Command())
	r.cmd.AddCommand(r.whoamiCmd.Command())
	r.cmd.AddCommand(r.registerCmd.Command())
	r.cmd.AddCommand(r.passwdCmd.Command())
	r.cmd.AddCommand(r.statusCmd.Command())
	r.cmd.AddCommand(r.openCmd.Command())
	r.cmd.AddCommand(r.profileCmd.Command())
	r.cmd.AddCommand(r.clientesCmd.Command())
	r.cmd.AddCommand(r.orcamentosCmd.Command())
	for _, m := range newModuleCommands(r) {
		r.cmd.AddCommand(m)
	}
	r.cmd.AddCommand(r.configCmd.Command())

	return r
}

// initialize sets up the DI container and hydrates the session
func (r *RootCommand) initialize(cmd *cobra.Command) error {
	// Skip if container is already set (e.g., for testing)
	if r.container != nil {
		return nil
	}

	var err error
	r.container, err = di.NewContainer(cmd.Context(), di.Options{Version: Version})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	return nil
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if r.container != nil {
		_ = r.container.Close()
	}
	return err
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Container returns the DI container
func (r *RootCommand) Container() *di.Container {
	return r.container
}

// SetContainer sets a custom container (for testing)
func (r *RootCommand) SetContainer(c *di.Container) {
	r.container = c
}

// configManager returns the container's manager, or the default one for
// commands that run without a container.
func (r *RootCommand) configManager() (*config.Manager, error) {
	if r.container != nil && r.container.ConfigManager() != nil {
		return r.container.ConfigManager(), nil
	}
	return config.NewManager()
}

// apiURL is used to describe network failures
func (r *RootCommand) apiURL() string {
	if r.container != nil && r.container.Config() != nil {
		return r.container.Config().APIURL
	}
	return config.DefaultAPIURL
}

// Execute is the main entry point for the CLI
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err == nil {
		return nil
	}
	return root.explain(err)
}

// explain prints a friendly message for API and network failures. Errors
// it has already shown are returned as errShown.
func (r *RootCommand) explain(err error) error {
	var loginErr *session.LoginError
	switch {
	case errors.As(err, &loginErr):
		return err
	case errors.Is(err, iface.ErrNotLoggedIn), errors.Is(err, iface.ErrSessionExpired):
		return err
	}

	switch httperrors.Classify(err) {
	case httperrors.KindUnknown:
		if !httperrors.IsNetworkError(err) {
			return err
		}
	case httperrors.KindUnauthorized:
		// the session store already told the user
		return errShown
	}
	_ = httperrors.Present(err, "talking to the API", r.apiURL())
	return errShown
}

// errShown signals that the error was already presented to the user.
var errShown = errors.New("request failed")

// ExitWithError prints an error message and exits with code 1
func ExitWithError(msg string, err error) {
	switch {
	case errors.Is(err, errShown):
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
