package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vip-mudancas/vip-cli/internal/config"
	"github.com/vip-mudancas/vip-cli/internal/storage"
)

// ConfigCommand represents the config command group
type ConfigCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewConfigCommand creates a new config command
func NewConfigCommand(root *RootCommand) *ConfigCommand {
	c := &ConfigCommand{
		root: root,
	}

	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "View and change CLI settings",
		Long: `View and change the settings stored in ~/.vip/config.json.

Environment variables (VIP_API_URL, VIP_WEB_URL, VIP_STORAGE,
VIP_LOG_LEVEL, VIP_REDIS_ADDR) override the file for a single run.

Valid keys:
  ` + strings.Join(config.Keys(), "\n  "),
		Annotations: map[string]string{skipContainer: ""},
	}

	show := &cobra.Command{
		Use:         "show",
		Short:       "Show the effective settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipContainer: ""},
		RunE:        c.runShow,
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: `Change a setting in the config file.

Examples:
  vip config set api_url http://localhost:5000/api
  vip config set web_url https://app.vipmudancas.com.br
  vip config set storage.backend keyring`,
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipContainer: ""},
		RunE:        c.runSet,
	}

	path := &cobra.Command{
		Use:         "path",
		Short:       "Print the config file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipContainer: ""},
		RunE:        c.runPath,
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the config file and go back to defaults",
		Long: `Delete the config file. Every setting returns to its default;
environment variables still apply. The stored session is not touched.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipContainer: ""},
		RunE:        c.runReset,
	}
	reset.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	c.cmd.AddCommand(show, set, path, reset)

	return c
}

// Command returns the underlying cobra command
func (c *ConfigCommand) Command() *cobra.Command {
	return c.cmd
}

func (c *ConfigCommand) runShow(cmd *cobra.Command, args []string) error {
	m, err := c.root.configManager()
	if err != nil {
		return err
	}
	cfg, err := m.Load()
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Storage.Redis.Password != "" {
		shown.Storage.Redis.Password = "***"
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(struct {
			config.Config
			LoginURL string `json:"login_url,omitempty"`
		}{shown, shown.LoginURL()})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "api_url:\t%s\n", shown.APIURL)
	fmt.Fprintf(w, "web_url:\t%s\n", cell(shown.WebURL))
	fmt.Fprintf(w, "login_route:\t%s\n", shown.LoginRoute)
	fmt.Fprintf(w, "login_url:\t%s\n", cell(shown.LoginURL()))
	fmt.Fprintf(w, "timeout_seconds:\t%d\n", shown.TimeoutSeconds)
	fmt.Fprintf(w, "log_level:\t%s\n", shown.LogLevel)
	fmt.Fprintf(w, "open_browser_on_expiry:\t%t\n", shown.OpenBrowserOnExpiry)
	fmt.Fprintf(w, "storage.backend:\t%s\n", shown.Storage.Backend)
	switch shown.Storage.Backend {
	case storage.BackendFile:
		fmt.Fprintf(w, "storage.path:\t%s\n", m.SessionPath(cfg))
	case storage.BackendRedis:
		fmt.Fprintf(w, "storage.redis.addr:\t%s\n", cell(shown.Storage.Redis.Addr))
		fmt.Fprintf(w, "storage.redis.password:\t%s\n", cell(shown.Storage.Redis.Password))
		fmt.Fprintf(w, "storage.redis.db:\t%d\n", shown.Storage.Redis.DB)
		fmt.Fprintf(w, "storage.redis.prefix:\t%s\n", cell(shown.Storage.Redis.Prefix))
	}
	return w.Flush()
}

func (c *ConfigCommand) runSet(cmd *cobra.Command, args []string) error {
	m, err := c.root.configManager()
	if err != nil {
		return err
	}
	if err := m.Set(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("✓ %s updated\n", args[0])
	return nil
}

func (c *ConfigCommand) runPath(cmd *cobra.Command, args []string) error {
	m, err := c.root.configManager()
	if err != nil {
		return err
	}
	fmt.Println(m.ConfigPath())
	return nil
}

func (c *ConfigCommand) runReset(cmd *cobra.Command, args []string) error {
	m, err := c.root.configManager()
	if err != nil {
		return err
	}

	if skip, _ := cmd.Flags().GetBool("yes"); !skip {
		ok, err := confirm(fmt.Sprintf("Delete %s?", m.ConfigPath()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := m.Delete(); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	fmt.Println("✓ Configuration reset to defaults")
	return nil
}
