package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
)

// LogoutCommand represents the logout command
type LogoutCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewLogoutCommand creates a new logout command
func NewLogoutCommand(root *RootCommand) *LogoutCommand {
	l := &LogoutCommand{
		root: root,
	}

	l.cmd = &cobra.Command{
		Use:   "logout",
		Short: "Log out from VIP Mudanças",
		Long: `Log out from the VIP Mudanças platform and clear the stored session.

The API is told about the logout when possible; the local session is
removed even if the API cannot be reached.

Example:
  vip logout`,
		Args: cobra.NoArgs,
		RunE: l.Run,
	}

	return l
}

// Command returns the underlying cobra command
func (l *LogoutCommand) Command() *cobra.Command {
	return l.cmd
}

// Run executes the logout command
func (l *LogoutCommand) Run(cmd *cobra.Command, args []string) error {
	// Get auth service from DI container
	authService := l.root.Container().AuthService()

	// Perform logout
	if err := authService.Logout(cmd.Context()); err != nil {
		if errors.Is(err, iface.ErrNotLoggedIn) {
			fmt.Println("Not logged in.")
			return nil
		}
		return err
	}

	fmt.Println("✓ Successfully logged out from VIP Mudanças!")
	return nil
}
