package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// newModuleCommands builds the command groups of the business modules.
// Each subcommand fetches one record and prints it.
func newModuleCommands(r *RootCommand) []*cobra.Command {
	return []*cobra.Command{
		newDashboardCommand(r),
		newLeadsCommand(r),
		newLicitacoesCommand(r),
		newIACommand(r),
		newIntegracoesCommand(r),
	}
}

// recordFunc fetches the record a module subcommand prints
type recordFunc func(ctx context.Context, cmd *cobra.Command, args []string) (api.Record, error)

// recordCommand wires a recordFunc into a cobra command
func recordCommand(use, short string, args cobra.PositionalArgs, fetch recordFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := fetch(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			return outputRecord(cmd, rec)
		},
	}
}

func newDashboardCommand(r *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show dashboard data",
		Long: `Show the figures of the VIP Mudanças dashboard.

Examples:
  vip dashboard metrics
  vip dashboard usage --date 2026-10-01
  vip dashboard logins --days 7 -o json`,
	}

	cmd.AddCommand(
		recordCommand("metrics", "Show the main metrics", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().DashboardService().Metrics(ctx)
			}),
		recordCommand("activity", "Show recent activity", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().DashboardService().RecentActivity(ctx)
			}),
		recordCommand("calendar", "Show scheduled moves and visits", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().DashboardService().Calendar(ctx)
			}),
		recordCommand("notifications", "Show notifications", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().DashboardService().Notifications(ctx)
			}),
		recordCommand("modules", "Show a summary per module", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().DashboardService().ModuleSummary(ctx)
			}),
	)

	usage := recordCommand("usage", "Show platform usage time", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			date, _ := cmd.Flags().GetString("date")
			return r.Container().DashboardService().UsageTime(ctx, date)
		})
	usage.Flags().String("date", "", "Day to report, as YYYY-MM-DD (default today)")

	logins := recordCommand("logins", "Show login statistics", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				return nil, fmt.Errorf("--days must be positive")
			}
			return r.Container().DashboardService().LoginStats(ctx, days)
		})
	logins.Flags().Int("days", api.DefaultLoginStatsDays, "Number of days to cover")

	cmd.AddCommand(usage, logins)
	return cmd
}

func newLeadsCommand(r *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage leads",
		Long: `List, create, capture and export leads.

Examples:
  vip leads list --page 2
  vip leads create --set nome="Carlos" --set origem=site
  vip leads capture --set regiao=SP`,
	}

	list := recordCommand("list", "List leads", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			return r.Container().LeadService().ListLeads(ctx, readPage(cmd))
		})
	addPageFlags(list)

	create := recordCommand("create", "Create a lead", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			data, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("no lead data: pass --data, --file or --set")
			}
			return r.Container().LeadService().CreateLead(ctx, data)
		})
	addDataFlags(create)

	capture := recordCommand("capture", "Capture leads with filters", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			filtros, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			return r.Container().LeadService().CaptureLeads(ctx, filtros)
		})
	addDataFlags(capture)

	export := recordCommand("export", "Export leads", cobra.NoArgs,
		func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
			return r.Container().LeadService().ExportLeads(ctx)
		})

	cmd.AddCommand(list, create, capture, export)
	return cmd
}

func newLicitacoesCommand(r *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "licitacoes",
		Aliases: []string{"tenders"},
		Short:   "Follow public tenders",
		Long: `List, search and monitor public tenders (licitações).

Examples:
  vip licitacoes list
  vip licitacoes search mudança transporte
  vip licitacoes monitor --set palavras_chave='["mudança"]'`,
	}

	search := recordCommand("search <keyword>...", "Search tenders by keywords", cobra.MinimumNArgs(1),
		func(ctx context.Context, _ *cobra.Command, args []string) (api.Record, error) {
			return r.Container().LicitacaoService().SearchLicitacoes(ctx, args)
		})

	monitor := recordCommand("monitor", "Configure tender monitoring", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			cfg, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			return r.Container().LicitacaoService().MonitorLicitacoes(ctx, cfg)
		})
	addDataFlags(monitor)

	cmd.AddCommand(
		recordCommand("list", "List tenders", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().LicitacaoService().ListLicitacoes(ctx)
			}),
		search,
		monitor,
		recordCommand("stats", "Show tender statistics", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().LicitacaoService().LicitacaoStats(ctx)
			}),
	)
	return cmd
}

func newIACommand(r *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ia",
		Short: "Ask the AI assistant",
		Long: `Use the AI assistant to analyze clients, suggest next steps and draft messages.

Examples:
  vip ia analyze 42
  vip ia suggest --set cliente_id=42
  vip ia chat "quais clientes devo priorizar hoje?"`,
	}

	analyze := recordCommand("analyze [cliente-id]", "Analyze a client", cobra.MaximumNArgs(1),
		func(ctx context.Context, cmd *cobra.Command, args []string) (api.Record, error) {
			cliente, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			if len(args) == 1 {
				fetched, err := r.Container().ClienteService().GetCliente(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if fetched == nil {
					fetched = api.Record{}
				}
				for k, v := range cliente {
					fetched[k] = v
				}
				cliente = fetched
			}
			if len(cliente) == 0 {
				return nil, fmt.Errorf("no client to analyze: pass a client ID or --data")
			}
			return r.Container().IAService().AnalyzeCliente(ctx, cliente)
		})
	addDataFlags(analyze)

	suggest := recordCommand("suggest", "Suggest the next action", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			data, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			return r.Container().IAService().SuggestAction(ctx, data)
		})
	addDataFlags(suggest)

	message := recordCommand("message", "Draft a message to a client", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			data, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			return r.Container().IAService().GenerateMessage(ctx, data)
		})
	addDataFlags(message)

	chat := recordCommand("chat <question>...", "Ask the assistant a question", cobra.MinimumNArgs(1),
		func(ctx context.Context, cmd *cobra.Command, args []string) (api.Record, error) {
			contexto, _ := cmd.Flags().GetString("context")
			return r.Container().IAService().Chat(ctx, strings.Join(args, " "), contexto)
		})
	chat.Flags().String("context", "", "Extra context for the question")

	cmd.AddCommand(analyze, suggest, message, chat)
	return cmd
}

func newIntegracoesCommand(r *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "integracoes",
		Aliases: []string{"integrations"},
		Short:   "Manage external integrations",
		Long: `Show, save and test the settings of external integrations.

Examples:
  vip integracoes get
  vip integracoes save --file integracoes.json
  vip integracoes test whatsapp`,
	}

	save := recordCommand("save", "Save integration settings", cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, _ []string) (api.Record, error) {
			data, err := readData(cmd)
			if err != nil {
				return nil, err
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("no settings: pass --data, --file or --set")
			}
			return r.Container().IntegracaoService().SaveSettings(ctx, data)
		})
	addDataFlags(save)

	cmd.AddCommand(
		recordCommand("get", "Show integration settings", cobra.NoArgs,
			func(ctx context.Context, _ *cobra.Command, _ []string) (api.Record, error) {
				return r.Container().IntegracaoService().Settings(ctx)
			}),
		save,
		recordCommand("test <tipo>", "Test an integration", cobra.ExactArgs(1),
			func(ctx context.Context, _ *cobra.Command, args []string) (api.Record, error) {
				return r.Container().IntegracaoService().TestConnection(ctx, args[0])
			}),
	)
	return cmd
}
