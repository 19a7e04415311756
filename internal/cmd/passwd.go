package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// PasswdCommand represents the passwd command
type PasswdCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewPasswdCommand creates a new passwd command
func NewPasswdCommand(root *RootCommand) *PasswdCommand {
	p := &PasswdCommand{
		root: root,
	}

	p.cmd = &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Long: `Change the password of the logged-in user.

Example:
  vip passwd`,
		Args: cobra.NoArgs,
		RunE: p.Run,
	}

	return p
}

// Command returns the underlying cobra command
func (p *PasswdCommand) Command() *cobra.Command {
	return p.cmd
}

// Run executes the passwd command
func (p *PasswdCommand) Run(cmd *cobra.Command, args []string) error {
	authService := p.root.Container().AuthService()
	if err := authService.EnsureAuthenticated(cmd.Context()); err != nil {
		return err
	}

	answers := struct {
		Current string `survey:"current"`
		Next    string `survey:"next"`
		Confirm string `survey:"confirm"`
	}{}
	questions := []*survey.Question{
		{Name: "current", Prompt: &survey.Password{Message: "Current password:"}, Validate: survey.Required},
		{Name: "next", Prompt: &survey.Password{Message: "New password:"}, Validate: survey.Required},
		{Name: "confirm", Prompt: &survey.Password{Message: "Confirm new password:"}, Validate: survey.Required},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	if answers.Next != answers.Confirm {
		return fmt.Errorf("new passwords do not match")
	}

	if err := authService.ChangePassword(cmd.Context(), answers.Current, answers.Next); err != nil {
		return err
	}

	fmt.Println("✓ Password changed")
	return nil
}
