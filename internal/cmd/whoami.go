package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/logging"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
	"github.com/vip-mudancas/vip-cli/internal/token"
)

// WhoamiCommand represents the whoami command
type WhoamiCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// whoamiOutput is the JSON form of whoami
type whoamiOutput struct {
	User      api.User   `json:"user"`
	Token     string     `json:"token"`
	Subject   string     `json:"token_subject,omitempty"`
	IssuedAt  *time.Time `json:"token_issued_at,omitempty"`
	ExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	Stale     bool       `json:"stale,omitempty"`
}

// NewWhoamiCommand creates a new whoami command
func NewWhoamiCommand(root *RootCommand) *WhoamiCommand {
	w := &WhoamiCommand{
		root: root,
	}

	w.cmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Long: `Show the profile of the logged-in user and what the stored token says.

With --refresh the profile is fetched from the API first. If the API
rejects the session, you are logged out.

Examples:
  vip whoami
  vip whoami --refresh -o json`,
		Args: cobra.NoArgs,
		RunE: w.Run,
	}

	w.cmd.Flags().Bool("refresh", false, "Fetch the profile from the API")

	return w
}

// Command returns the underlying cobra command
func (w *WhoamiCommand) Command() *cobra.Command {
	return w.cmd
}

// Run executes the whoami command
func (w *WhoamiCommand) Run(cmd *cobra.Command, args []string) error {
	authService := w.root.Container().AuthService()
	refresh, _ := cmd.Flags().GetBool("refresh")

	user, err := authService.CurrentUser(cmd.Context(), refresh)
	stale := errors.Is(err, iface.ErrStaleProfile)
	if err != nil && !stale {
		return err
	}

	out := whoamiOutput{
		User:  user,
		Token: logging.MaskToken(authService.Session().Token),
		Stale: stale,
	}
	if claims, err := token.Inspect(authService.Session().Token); err == nil {
		out.Subject = claims.Subject
		if !claims.IssuedAt.IsZero() {
			out.IssuedAt = &claims.IssuedAt
		}
		if claims.HasExpiry() {
			out.ExpiresAt = &claims.ExpiresAt
		}
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(out)
	}

	if stale {
		pterm.Warning.Println(iface.ErrStaleProfile.Error())
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", cell(user.Name()))
	fmt.Fprintf(tw, "CPF:\t%s\n", cell(logging.Mask(user.CPF())))
	fmt.Fprintf(tw, "Email:\t%s\n", cell(user.Email()))
	fmt.Fprintf(tw, "Role:\t%s\n", cell(user.Role()))
	fmt.Fprintf(tw, "ID:\t%s\n", cell(user.ID()))
	fmt.Fprintf(tw, "Token:\t%s\n", out.Token)
	if out.ExpiresAt != nil {
		state := "valid"
		if out.ExpiresAt.Before(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(tw, "Expires:\t%s (%s)\n", out.ExpiresAt.Local().Format("2006-01-02 15:04:05"), state)
	}
	return tw.Flush()
}
