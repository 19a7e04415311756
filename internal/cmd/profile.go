package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// ProfileCommand represents the profile command group
type ProfileCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewProfileCommand creates a new profile command
func NewProfileCommand(root *RootCommand) *ProfileCommand {
	p := &ProfileCommand{
		root: root,
	}

	p.cmd = &cobra.Command{
		Use:   "profile",
		Short: "Edit the locally stored profile",
	}

	set := &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change fields of the stored profile",
		Long: `Change fields of the profile kept with the session. The token is not
touched and nothing is sent to the API; ` + "`vip whoami --refresh`" + ` reloads the
profile from the server.

Examples:
  vip profile set name="Ana Paula"
  vip profile set email=ana@vip.com.br role=admin`,
		Args: cobra.MinimumNArgs(1),
		RunE: p.runSet,
	}

	p.cmd.AddCommand(set)

	return p
}

// Command returns the underlying cobra command
func (p *ProfileCommand) Command() *cobra.Command {
	return p.cmd
}

func (p *ProfileCommand) runSet(cmd *cobra.Command, args []string) error {
	authService := p.root.Container().AuthService()

	user := api.User{}
	for k, v := range authService.Session().User {
		user[k] = v
	}
	for _, kv := range args {
		k, v, err := parseAssignment(kv)
		if err != nil {
			return err
		}
		user[k] = v
	}

	if err := authService.UpdateProfile(cmd.Context(), user); err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(user)
	}
	fmt.Println("✓ Local profile updated")
	return nil
}
