package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// clienteColumns are the fields shown by clientes list
var clienteColumns = []string{"id", "nome", "email", "telefone", "status"}

// ClientesCommand represents the clientes command group
type ClientesCommand struct {
	root *RootCommand
	cmd  *cobra.Command

	// Subcommands
	listCmd   *ClientesListCommand
	getCmd    *ClientesGetCommand
	createCmd *ClientesCreateCommand
	updateCmd *ClientesUpdateCommand
	statusCmd *ClientesStatusCommand
	deleteCmd *ClientesDeleteCommand
}

// NewClientesCommand creates a new clientes command
func NewClientesCommand(root *RootCommand) *ClientesCommand {
	c := &ClientesCommand{
		root: root,
	}

	c.cmd = &cobra.Command{
		Use:     "clientes",
		Aliases: []string{"clients"},
		Short:   "Manage clients",
		Long: `Manage the clients registered on VIP Mudanças.

Use subcommands to list, view, create, update or delete clients.`,
	}

	// Initialize subcommands
	c.listCmd = NewClientesListCommand(c)
	c.getCmd = NewClientesGetCommand(c)
	c.createCmd = NewClientesCreateCommand(c)
	c.updateCmd = NewClientesUpdateCommand(c)
	c.statusCmd = NewClientesStatusCommand(c)
	c.deleteCmd = NewClientesDeleteCommand(c)

	// Add subcommands
	c.cmd.AddCommand(c.listCmd.Command())
	c.cmd.AddCommand(c.getCmd.Command())
	c.cmd.AddCommand(c.createCmd.Command())
	c.cmd.AddCommand(c.updateCmd.Command())
	c.cmd.AddCommand(c.statusCmd.Command())
	c.cmd.AddCommand(c.deleteCmd.Command())

	return c
}

// Command returns the underlying cobra command
func (c *ClientesCommand) Command() *cobra.Command {
	return c.cmd
}

// Root returns the parent root command
func (c *ClientesCommand) Root() *RootCommand {
	return c.root
}

// ClientesListCommand represents the clientes list command
type ClientesListCommand struct {
	parent *ClientesCommand
	cmd    *cobra.Command
}

// NewClientesListCommand creates a new clientes list command
func NewClientesListCommand(parent *ClientesCommand) *ClientesListCommand {
	l := &ClientesListCommand{
		parent: parent,
	}

	l.cmd = &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Long: `List a page of clients.

Examples:
  vip clientes list
  vip clientes list --page 2 --per-page 50 -o json`,
		Args: cobra.NoArgs,
		RunE: l.Run,
	}

	addPageFlags(l.cmd)

	return l
}

// Command returns the underlying cobra command
func (l *ClientesListCommand) Command() *cobra.Command {
	return l.cmd
}

// Run executes the clientes list command
func (l *ClientesListCommand) Run(cmd *cobra.Command, args []string) error {
	clienteService := l.parent.Root().Container().ClienteService()

	list, err := clienteService.ListClientes(cmd.Context(), readPage(cmd))
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(list)
	}

	if err := outputTable(list.Clientes, clienteColumns, "No clients found."); err != nil {
		return err
	}
	if len(list.Clientes) > 0 {
		fmt.Printf("\nPage %d (%d per page)\n", list.Page, list.PerPage)
	}
	return nil
}

// ClientesGetCommand represents the clientes get command
type ClientesGetCommand struct {
	parent *ClientesCommand
	cmd    *cobra.Command
}

// NewClientesGetCommand creates a new clientes get command
func NewClientesGetCommand(parent *ClientesCommand) *ClientesGetCommand {
	g := &ClientesGetCommand{
		parent: parent,
	}

	g.cmd = &cobra.Command{
		Use:   "get <cliente-id>",
		Short: "Get a client by ID",
		Long: `Show every field of a client.

Examples:
  vip clientes get 42
  vip clientes get 42 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: g.Run,
	}

	return g
}

// Command returns the underlying cobra command
func (g *ClientesGetCommand) Command() *cobra.Command {
	return g.cmd
}

// Run executes the clientes get command
func (g *ClientesGetCommand) Run(cmd *cobra.Command, args []string) error {
	clienteService := g.parent.Root().Container().ClienteService()

	cliente, err := clienteService.GetCliente(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return outputRecord(cmd, cliente)
}

// ClientesCreateCommand represents the clientes create command
type ClientesCreateCommand struct {
	parent *ClientesCommand
	cmd    *cobra.Command
}

// NewClientesCreateCommand creates a new clientes create command
func NewClientesCreateCommand(parent *ClientesCommand) *ClientesCreateCommand {
	c := &ClientesCreateCommand{
		parent: parent,
	}

	c.cmd = &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		Long: `Create a new client.

Fields come from --file, --data and --set. When no name is given you are
asked for the basic contact fields.

Examples:
  vip clientes create
  vip clientes create --set nome="Ana Souza" --set telefone=11999990000
  vip clientes create --file cliente.json`,
		Args: cobra.NoArgs,
		RunE: c.Run,
	}

	addDataFlags(c.cmd)

	return c
}

// Command returns the underlying cobra command
func (c *ClientesCreateCommand) Command() *cobra.Command {
	return c.cmd
}

// Run executes the clientes create command
func (c *ClientesCreateCommand) Run(cmd *cobra.Command, args []string) error {
	clienteService := c.parent.Root().Container().ClienteService()

	data, err := readData(cmd)
	if err != nil {
		return err
	}

	if data.String("nome") == "" {
		answers := struct {
			Nome     string `survey:"nome"`
			Email    string `survey:"email"`
			Telefone string `survey:"telefone"`
		}{}
		questions := []*survey.Question{
			{Name: "nome", Prompt: &survey.Input{Message: "Name:"}, Validate: survey.Required},
			{Name: "email", Prompt: &survey.Input{Message: "Email (optional):"}},
			{Name: "telefone", Prompt: &survey.Input{Message: "Phone (optional):"}},
		}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
		data["nome"] = answers.Nome
		if answers.Email != "" {
			data["email"] = answers.Email
		}
		if answers.Telefone != "" {
			data["telefone"] = answers.Telefone
		}
	}

	created, err := clienteService.CreateCliente(cmd.Context(), data)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(created)
	}
	fmt.Printf("✓ Client \"%s\" created (ID %s)\n", data.String("nome"), cell(created.String("id")))
	return nil
}

// ClientesUpdateCommand represents the clientes update command
type ClientesUpdateCommand struct {
	parent *ClientesCommand
	cmd    *cobra.Command
}

// NewClientesUpdateCommand creates a new clientes update command
func NewClientesUpdateCommand(parent *ClientesCommand) *ClientesUpdateCommand {
	u := &ClientesUpdateCommand{
		parent: parent,
	}

	u.cmd = &cobra.Command{
		Use:   "update <cliente-id>",
		Short: "Update a client",
		Long: `Update fields of a client. Only the given fields are sent.

Examples:
  vip clientes update 42 --set telefone=11988887777
  vip clientes update 42 --data '{"cidade":"Campinas"}'`,
		Args: cobra.ExactArgs(1),
		RunE: u.Run,
	}

	addDataFlags(u.cmd)

	return u
}

// Command returns the underlying cobra command
func (u *ClientesUpdateCommand) Command() *cobra.Command {
	return u.cmd
}

// Run executes the clientes update command
func (u *ClientesUpdateCommand) Run(cmd *cobra.Command, args []string) error {
	clienteService := u.parent.Root().Container().ClienteService()

	data, err := readData(cmd)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("nothing to update: pass --data, --file or --set")
	}

	updated, err := clienteService.UpdateCliente(cmd.Context(), args[0], data)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(updated)
	}
	fmt.Printf("✓ Client %s updated\n", args[0])
	return nil
}

// ClientesStatusCommand represents the clientes status command
type ClientesStatusCommand struct {
	parent *ClientesCommand
	cmd    *cobra.Command
}

// NewClientesStatusCommand creates a new clientes status command
func NewClientesStatusCommand(parent *ClientesCommand) *ClientesStatusCommand {
	s := &ClientesStatusCommand{
		parent: parent,
	}

	s.cmd = &cobra.Command{
		Use:   "status <cliente-id> <status>",
		Short: "Change the status of a client",
		Long: `Move a client to another stage of the sales funnel.

Examples:
  vip clientes status 42 contatado
  vip clientes status 42 perdido --justificativa "fechou com concorrente"`,
		Args: cobra.ExactArgs(2),
		RunE: s.Run,
	}

	s.cmd.Flags().String("justificativa", "", "Reason for the change")

	return s
}

// Command returns the underlying cobra command
func (s *ClientesStatusCommand) Command() *cobra.Command {
	return s.cmd
}

// Run executes the clientes status command
func (s *ClientesStatusCommand) Run(cmd *cobra.Command, args []string) error {
	clienteService := s.parent.Root().Container().ClienteService()
	justificativa, _ := cmd.Flags().GetString("justificativa")

	updated, err := clienteService.UpdateClienteStatus(cmd.Context(), args[0], args[1], justificativa)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(updated)
	}
	fmt.Printf("✓ Client %s is now \"%s\"\n", args[0], args[1])
	return nil
}

// ClientesDeleteCommand represents the clientes delete command
type ClientesDeleteCommand struct {
	parent *ClientesCommand
	cmd    *cobra.Command
}

// NewClientesDeleteCommand creates a new clientes delete command
func NewClientesDeleteCommand(parent *ClientesCommand) *ClientesDeleteCommand {
	d := &ClientesDeleteCommand{
		parent: parent,
	}

	d.cmd = &cobra.Command{
		Use:   "delete <cliente-id>",
		Short: "Delete a client",
		Long: `Delete a client.

WARNING: This action is irreversible.

Examples:
  vip clientes delete 42
  vip clientes delete 42 -y`,
		Args: cobra.ExactArgs(1),
		RunE: d.Run,
	}

	d.cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	return d
}

// Command returns the underlying cobra command
func (d *ClientesDeleteCommand) Command() *cobra.Command {
	return d.cmd
}

// Run executes the clientes delete command
func (d *ClientesDeleteCommand) Run(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx := cmd.Context()
	clienteService := d.parent.Root().Container().ClienteService()

	cliente, err := clienteService.GetCliente(ctx, id)
	if err != nil {
		return err
	}

	skipConfirm, _ := cmd.Flags().GetBool("yes")
	if !skipConfirm {
		fmt.Printf("\n⚠️  WARNING: You are about to delete the following client:\n\n")
		fmt.Printf("  Name:   %s\n", cell(cliente.String("nome")))
		fmt.Printf("  ID:     %s\n", id)
		fmt.Println("\n  This action is IRREVERSIBLE.")

		ok, err := confirm(fmt.Sprintf("Are you sure you want to delete client \"%s\"?", cliente.String("nome")))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := clienteService.DeleteCliente(ctx, id); err != nil {
		return err
	}

	fmt.Printf("✓ Client %s deleted.\n", id)
	return nil
}

// confirm asks a yes/no question defaulting to no
func confirm(message string) (bool, error) {
	var ok bool
	if err := survey.AskOne(&survey.Confirm{
		Message: message,
		Default: false,
	}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// recordsOrEmpty keeps JSON output an array rather than null
func recordsOrEmpty(records []api.Record) []api.Record {
	if records == nil {
		return []api.Record{}
	}
	return records
}
