package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// StatusCommand represents the status command
type StatusCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

type statusOutput struct {
	APIURL         string `json:"api_url"`
	APIStatus      string `json:"api_status"`
	APIMessage     string `json:"api_message,omitempty"`
	LoggedIn       bool   `json:"logged_in"`
	User           string `json:"user,omitempty"`
	StorageBackend string `json:"storage_backend"`
}

// NewStatusCommand creates a new status command
func NewStatusCommand(root *RootCommand) *StatusCommand {
	s := &StatusCommand{
		root: root,
	}

	s.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show API health and session state",
		Long: `Check whether the API answers and whether a session is stored.

Examples:
  vip status
  vip status -o json`,
		Args: cobra.NoArgs,
		RunE: s.Run,
	}

	return s
}

// Command returns the underlying cobra command
func (s *StatusCommand) Command() *cobra.Command {
	return s.cmd
}

// Run executes the status command
func (s *StatusCommand) Run(cmd *cobra.Command, args []string) error {
	container := s.root.Container()
	authService := container.AuthService()
	cfg := container.Config()

	out := statusOutput{
		APIURL:         cfg.APIURL,
		APIStatus:      "unreachable",
		LoggedIn:       authService.IsLoggedIn(),
		StorageBackend: cfg.Storage.Backend,
	}
	if out.LoggedIn {
		out.User = authService.Session().User.Name()
	}

	health, healthErr := authService.Health(cmd.Context())
	if healthErr == nil {
		out.APIStatus = health.Status
		out.APIMessage = health.Message
	}

	if outputFormat(cmd) == "json" {
		if err := outputJSON(out); err != nil {
			return err
		}
		return healthErr
	}

	fmt.Printf("API:     %s (%s)\n", out.APIStatus, out.APIURL)
	if out.LoggedIn {
		fmt.Printf("Session: logged in as %s\n", cell(out.User))
	} else {
		fmt.Println("Session: not logged in")
	}
	fmt.Printf("Storage: %s\n", out.StorageBackend)

	return healthErr
}
