package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/session"
)

// LoginCommand represents the login command
type LoginCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewLoginCommand creates a new login command
func NewLoginCommand(root *RootCommand) *LoginCommand {
	l := &LoginCommand{
		root: root,
	}

	l.cmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in to VIP Mudanças",
		Long: `Sign in to the VIP Mudanças platform with your CPF and password.

The session is stored locally (see 'vip config show' for the storage
backend) and reused by every command until you log out or the API
rejects it.

Examples:
  vip login
  vip login --cpf 123.456.789-09
  echo "$PASSWORD" | vip login --cpf 12345678909 --password-stdin`,
		Args: cobra.NoArgs,
		RunE: l.Run,
	}

	l.cmd.Flags().String("cpf", "", "CPF (digits or formatted)")
	l.cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")

	return l
}

// Command returns the underlying cobra command
func (l *LoginCommand) Command() *cobra.Command {
	return l.cmd
}

// Run executes the login command
func (l *LoginCommand) Run(cmd *cobra.Command, args []string) error {
	// Get auth service from DI container
	authService := l.root.Container().AuthService()

	cpf, _ := cmd.Flags().GetString("cpf")
	if cpf == "" {
		if err := survey.AskOne(&survey.Input{
			Message: "CPF:",
		}, &cpf, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	password, err := readPassword(cmd, "Password:")
	if err != nil {
		return err
	}

	// Perform login
	if err := authService.Login(cmd.Context(), cpf, password); err != nil {
		var loginErr *session.LoginError
		if errors.As(err, &loginErr) {
			return fmt.Errorf("login failed: %s", loginErr.Message)
		}
		return err
	}

	user := authService.Session().User
	name := user.Name()
	if name == "" {
		name = user.CPF()
	}
	fmt.Printf("✓ Logged in as %s\n", name)
	return nil
}

// readPassword reads from stdin with --password-stdin, otherwise prompts
func readPassword(cmd *cobra.Command, message string) (string, error) {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	if fromStdin {
		return readLine(cmd.InOrStdin())
	}

	var password string
	if err := survey.AskOne(&survey.Password{
		Message: message,
	}, &password, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return password, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty password on stdin")
	}
	return line, nil
}
