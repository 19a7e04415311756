package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/service"
)

// orcamentoColumns are the fields shown by orcamentos list
var orcamentoColumns = []string{"id", "cliente_nome", "tipo_mudanca", "data_mudanca", "valor_final", "status"}

// OrcamentosCommand represents the orcamentos command group
type OrcamentosCommand struct {
	root *RootCommand
	cmd  *cobra.Command

	// Subcommands
	listCmd    *OrcamentosListCommand
	getCmd     *OrcamentosGetCommand
	createCmd  *OrcamentosCreateCommand
	updateCmd  *OrcamentosUpdateCommand
	approveCmd *OrcamentosApproveCommand
	rejectCmd  *OrcamentosRejectCommand
	deleteCmd  *OrcamentosDeleteCommand
	statsCmd   *OrcamentosStatsCommand
}

// NewOrcamentosCommand creates a new orcamentos command
func NewOrcamentosCommand(root *RootCommand) *OrcamentosCommand {
	o := &OrcamentosCommand{
		root: root,
	}

	o.cmd = &cobra.Command{
		Use:     "orcamentos",
		Aliases: []string{"quotes"},
		Short:   "Manage moving quotes",
		Long: `Manage moving quotes (orçamentos).

Use subcommands to list, create, approve or reject quotes.`,
	}

	// Initialize subcommands
	o.listCmd = NewOrcamentosListCommand(o)
	o.getCmd = NewOrcamentosGetCommand(o)
	o.createCmd = NewOrcamentosCreateCommand(o)
	o.updateCmd = NewOrcamentosUpdateCommand(o)
	o.approveCmd = NewOrcamentosApproveCommand(o)
	o.rejectCmd = NewOrcamentosRejectCommand(o)
	o.deleteCmd = NewOrcamentosDeleteCommand(o)
	o.statsCmd = NewOrcamentosStatsCommand(o)

	// Add subcommands
	o.cmd.AddCommand(o.listCmd.Command())
	o.cmd.AddCommand(o.getCmd.Command())
	o.cmd.AddCommand(o.createCmd.Command())
	o.cmd.AddCommand(o.updateCmd.Command())
	o.cmd.AddCommand(o.approveCmd.Command())
	o.cmd.AddCommand(o.rejectCmd.Command())
	o.cmd.AddCommand(o.deleteCmd.Command())
	o.cmd.AddCommand(o.statsCmd.Command())

	return o
}

// Command returns the underlying cobra command
func (o *OrcamentosCommand) Command() *cobra.Command {
	return o.cmd
}

// Root returns the parent root command
func (o *OrcamentosCommand) Root() *RootCommand {
	return o.root
}

// OrcamentosListCommand represents the orcamentos list command
type OrcamentosListCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosListCommand creates a new orcamentos list command
func NewOrcamentosListCommand(parent *OrcamentosCommand) *OrcamentosListCommand {
	l := &OrcamentosListCommand{
		parent: parent,
	}

	l.cmd = &cobra.Command{
		Use:   "list",
		Short: "List quotes",
		Long: `List quotes. Filter by status, or list the quotes of one seller or client.

Examples:
  vip orcamentos list
  vip orcamentos list --status pendente
  vip orcamentos list --seller 7
  vip orcamentos list --client 42 -o json`,
		Args: cobra.NoArgs,
		RunE: l.Run,
	}

	addPageFlags(l.cmd)
	l.cmd.Flags().String("status", "", "Only quotes with this status")
	l.cmd.Flags().String("seller", "", "Only quotes of this seller ID")
	l.cmd.Flags().String("client", "", "Only quotes of this client ID")
	l.cmd.MarkFlagsMutuallyExclusive("status", "seller", "client")

	return l
}

// Command returns the underlying cobra command
func (l *OrcamentosListCommand) Command() *cobra.Command {
	return l.cmd
}

// Run executes the orcamentos list command
func (l *OrcamentosListCommand) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	orcamentoService := l.parent.Root().Container().OrcamentoService()

	seller, _ := cmd.Flags().GetString("seller")
	client, _ := cmd.Flags().GetString("client")

	var records []api.Record
	switch {
	case seller != "":
		list, err := orcamentoService.OrcamentosBySeller(ctx, seller)
		if err != nil {
			return err
		}
		records = list
	case client != "":
		list, err := orcamentoService.OrcamentosByClient(ctx, client)
		if err != nil {
			return err
		}
		records = list
	default:
		status, _ := cmd.Flags().GetString("status")
		list, err := orcamentoService.ListOrcamentos(ctx, readPage(cmd), status)
		if err != nil {
			return err
		}
		if outputFormat(cmd) == "json" {
			return outputJSON(list)
		}
		records = list.Orcamentos
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(recordsOrEmpty(records))
	}
	return outputTable(records, orcamentoColumns, "No quotes found.")
}

// OrcamentosGetCommand represents the orcamentos get command
type OrcamentosGetCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosGetCommand creates a new orcamentos get command
func NewOrcamentosGetCommand(parent *OrcamentosCommand) *OrcamentosGetCommand {
	g := &OrcamentosGetCommand{
		parent: parent,
	}

	g.cmd = &cobra.Command{
		Use:   "get <orcamento-id>",
		Short: "Get a quote by ID",
		Args:  cobra.ExactArgs(1),
		RunE:  g.Run,
	}

	return g
}

// Command returns the underlying cobra command
func (g *OrcamentosGetCommand) Command() *cobra.Command {
	return g.cmd
}

// Run executes the orcamentos get command
func (g *OrcamentosGetCommand) Run(cmd *cobra.Command, args []string) error {
	orcamentoService := g.parent.Root().Container().OrcamentoService()

	orcamento, err := orcamentoService.GetOrcamento(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return outputRecord(cmd, orcamento)
}

// OrcamentosCreateCommand represents the orcamentos create command
type OrcamentosCreateCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosCreateCommand creates a new orcamentos create command
func NewOrcamentosCreateCommand(parent *OrcamentosCommand) *OrcamentosCreateCommand {
	c := &OrcamentosCreateCommand{
		parent: parent,
	}

	c.cmd = &cobra.Command{
		Use:   "create",
		Short: "Create a quote",
		Long: `Create a new moving quote.

Client name, client email and moving type are required. Missing ones are
asked for interactively.

Examples:
  vip orcamentos create
  vip orcamentos create --file orcamento.json
  vip orcamentos create --set cliente_nome="Ana" --set cliente_email=ana@x.com --set tipo_mudanca=residencial`,
		Args: cobra.NoArgs,
		RunE: c.Run,
	}

	addDataFlags(c.cmd)

	return c
}

// Command returns the underlying cobra command
func (c *OrcamentosCreateCommand) Command() *cobra.Command {
	return c.cmd
}

// Run executes the orcamentos create command
func (c *OrcamentosCreateCommand) Run(cmd *cobra.Command, args []string) error {
	orcamentoService := c.parent.Root().Container().OrcamentoService()

	data, err := readData(cmd)
	if err != nil {
		return err
	}

	prompts := map[string]survey.Prompt{
		"cliente_nome":  &survey.Input{Message: "Client name:"},
		"cliente_email": &survey.Input{Message: "Client email:"},
		"tipo_mudanca": &survey.Select{
			Message: "Moving type:",
			Options: []string{"residencial", "comercial", "self_storage"},
		},
	}
	for _, field := range service.OrcamentoRequiredFields {
		if data.String(field) != "" {
			continue
		}
		var answer string
		if err := survey.AskOne(prompts[field], &answer, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		data[field] = answer
	}

	created, err := orcamentoService.CreateOrcamento(cmd.Context(), data)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(created)
	}
	fmt.Printf("✓ Quote for \"%s\" created (ID %s)\n", data.String("cliente_nome"), cell(created.String("id")))
	return nil
}

// OrcamentosUpdateCommand represents the orcamentos update command
type OrcamentosUpdateCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosUpdateCommand creates a new orcamentos update command
func NewOrcamentosUpdateCommand(parent *OrcamentosCommand) *OrcamentosUpdateCommand {
	u := &OrcamentosUpdateCommand{
		parent: parent,
	}

	u.cmd = &cobra.Command{
		Use:   "update <orcamento-id>",
		Short: "Update a quote",
		Long: `Update fields of a quote. Only the given fields are sent.

Example:
  vip orcamentos update 17 --set desconto=150 --set valor_total=2400`,
		Args: cobra.ExactArgs(1),
		RunE: u.Run,
	}

	addDataFlags(u.cmd)

	return u
}

// Command returns the underlying cobra command
func (u *OrcamentosUpdateCommand) Command() *cobra.Command {
	return u.cmd
}

// Run executes the orcamentos update command
func (u *OrcamentosUpdateCommand) Run(cmd *cobra.Command, args []string) error {
	orcamentoService := u.parent.Root().Container().OrcamentoService()

	data, err := readData(cmd)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("nothing to update: pass --data, --file or --set")
	}

	updated, err := orcamentoService.UpdateOrcamento(cmd.Context(), args[0], data)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(updated)
	}
	fmt.Printf("✓ Quote %s updated\n", args[0])
	return nil
}

// OrcamentosApproveCommand represents the orcamentos approve command
type OrcamentosApproveCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosApproveCommand creates a new orcamentos approve command
func NewOrcamentosApproveCommand(parent *OrcamentosCommand) *OrcamentosApproveCommand {
	a := &OrcamentosApproveCommand{
		parent: parent,
	}

	a.cmd = &cobra.Command{
		Use:   "approve <orcamento-id>",
		Short: "Approve a quote",
		Args:  cobra.ExactArgs(1),
		RunE:  a.Run,
	}

	return a
}

// Command returns the underlying cobra command
func (a *OrcamentosApproveCommand) Command() *cobra.Command {
	return a.cmd
}

// Run executes the orcamentos approve command
func (a *OrcamentosApproveCommand) Run(cmd *cobra.Command, args []string) error {
	orcamentoService := a.parent.Root().Container().OrcamentoService()

	resp, err := orcamentoService.ApproveOrcamento(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(resp)
	}
	fmt.Printf("✓ Quote %s approved\n", args[0])
	return nil
}

// OrcamentosRejectCommand represents the orcamentos reject command
type OrcamentosRejectCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosRejectCommand creates a new orcamentos reject command
func NewOrcamentosRejectCommand(parent *OrcamentosCommand) *OrcamentosRejectCommand {
	r := &OrcamentosRejectCommand{
		parent: parent,
	}

	r.cmd = &cobra.Command{
		Use:   "reject <orcamento-id>",
		Short: "Reject a quote",
		Long: `Reject a quote, optionally recording why.

Example:
  vip orcamentos reject 17 --motivo "cliente desistiu"`,
		Args: cobra.ExactArgs(1),
		RunE: r.Run,
	}

	r.cmd.Flags().String("motivo", "", "Reason for the rejection")

	return r
}

// Command returns the underlying cobra command
func (r *OrcamentosRejectCommand) Command() *cobra.Command {
	return r.cmd
}

// Run executes the orcamentos reject command
func (r *OrcamentosRejectCommand) Run(cmd *cobra.Command, args []string) error {
	orcamentoService := r.parent.Root().Container().OrcamentoService()
	motivo, _ := cmd.Flags().GetString("motivo")

	resp, err := orcamentoService.RejectOrcamento(cmd.Context(), args[0], motivo)
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(resp)
	}
	fmt.Printf("✓ Quote %s rejected\n", args[0])
	return nil
}

// OrcamentosDeleteCommand represents the orcamentos delete command
type OrcamentosDeleteCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosDeleteCommand creates a new orcamentos delete command
func NewOrcamentosDeleteCommand(parent *OrcamentosCommand) *OrcamentosDeleteCommand {
	d := &OrcamentosDeleteCommand{
		parent: parent,
	}

	d.cmd = &cobra.Command{
		Use:   "delete <orcamento-id>",
		Short: "Delete a quote",
		Long: `Delete a quote.

WARNING: This action is irreversible.

Examples:
  vip orcamentos delete 17
  vip orcamentos delete 17 -y`,
		Args: cobra.ExactArgs(1),
		RunE: d.Run,
	}

	d.cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	return d
}

// Command returns the underlying cobra command
func (d *OrcamentosDeleteCommand) Command() *cobra.Command {
	return d.cmd
}

// Run executes the orcamentos delete command
func (d *OrcamentosDeleteCommand) Run(cmd *cobra.Command, args []string) error {
	id := args[0]
	orcamentoService := d.parent.Root().Container().OrcamentoService()

	skipConfirm, _ := cmd.Flags().GetBool("yes")
	if !skipConfirm {
		ok, err := confirm(fmt.Sprintf("Are you sure you want to delete quote %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := orcamentoService.DeleteOrcamento(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Printf("✓ Quote %s deleted.\n", id)
	return nil
}

// OrcamentosStatsCommand represents the orcamentos stats command
type OrcamentosStatsCommand struct {
	parent *OrcamentosCommand
	cmd    *cobra.Command
}

// NewOrcamentosStatsCommand creates a new orcamentos stats command
func NewOrcamentosStatsCommand(parent *OrcamentosCommand) *OrcamentosStatsCommand {
	s := &OrcamentosStatsCommand{
		parent: parent,
	}

	s.cmd = &cobra.Command{
		Use:   "stats",
		Short: "Show quote statistics",
		Args:  cobra.NoArgs,
		RunE:  s.Run,
	}

	return s
}

// Command returns the underlying cobra command
func (s *OrcamentosStatsCommand) Command() *cobra.Command {
	return s.cmd
}

// Run executes the orcamentos stats command
func (s *OrcamentosStatsCommand) Run(cmd *cobra.Command, args []string) error {
	stats, err := s.parent.Root().Container().OrcamentoService().OrcamentoStats(cmd.Context())
	if err != nil {
		return err
	}
	return outputRecord(cmd, stats)
}
