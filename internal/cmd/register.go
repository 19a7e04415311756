package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
)

// RegisterCommand represents the register command
type RegisterCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewRegisterCommand creates a new register command
func NewRegisterCommand(root *RootCommand) *RegisterCommand {
	r := &RegisterCommand{
		root: root,
	}

	r.cmd = &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Long: `Create a new user account on the VIP Mudanças platform.

Missing fields are asked for interactively.

Examples:
  vip register
  vip register --cpf 12345678909 --name "Ana Souza" --email ana@vip.com --role vendedor`,
		Args: cobra.NoArgs,
		RunE: r.Run,
	}

	r.cmd.Flags().String("cpf", "", "CPF of the new user")
	r.cmd.Flags().String("name", "", "Full name")
	r.cmd.Flags().String("email", "", "Email address")
	r.cmd.Flags().String("role", "user", "Role")
	r.cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")

	return r
}

// Command returns the underlying cobra command
func (r *RegisterCommand) Command() *cobra.Command {
	return r.cmd
}

// Run executes the register command
func (r *RegisterCommand) Run(cmd *cobra.Command, args []string) error {
	authService := r.root.Container().AuthService()

	input := &iface.RegisterInput{}
	input.CPF, _ = cmd.Flags().GetString("cpf")
	input.Name, _ = cmd.Flags().GetString("name")
	input.Email, _ = cmd.Flags().GetString("email")
	input.Role, _ = cmd.Flags().GetString("role")

	var questions []*survey.Question
	if input.CPF == "" {
		questions = append(questions, &survey.Question{
			Name:     "cpf",
			Prompt:   &survey.Input{Message: "CPF:"},
			Validate: survey.Required,
		})
	}
	if input.Name == "" {
		questions = append(questions, &survey.Question{
			Name:     "name",
			Prompt:   &survey.Input{Message: "Name:"},
			Validate: survey.Required,
		})
	}
	if len(questions) > 0 {
		answers := struct {
			CPF  string `survey:"cpf"`
			Name string `survey:"name"`
		}{}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
		if answers.CPF != "" {
			input.CPF = answers.CPF
		}
		if answers.Name != "" {
			input.Name = answers.Name
		}
	}

	password, err := readPassword(cmd, "Password:")
	if err != nil {
		return err
	}
	input.Password = password

	resp, err := authService.Register(cmd.Context(), input)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(resp)
	}
	fmt.Printf("✓ User \"%s\" created (ID %s)\n", input.Name, resp.UserID)
	return nil
}
