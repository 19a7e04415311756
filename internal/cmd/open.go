package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OpenCommand represents the open command
type OpenCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewOpenCommand creates a new open command
func NewOpenCommand(root *RootCommand) *OpenCommand {
	o := &OpenCommand{
		root: root,
	}

	o.cmd = &cobra.Command{
		Use:   "open [route]",
		Short: "Open the web application in the browser",
		Long: `Open a page of the VIP Mudanças web application in your browser.

Requires web_url to be configured.

Examples:
  vip open
  vip open /orcamentos`,
		Args: cobra.MaximumNArgs(1),
		RunE: o.Run,
	}

	return o
}

// Command returns the underlying cobra command
func (o *OpenCommand) Command() *cobra.Command {
	return o.cmd
}

// Run executes the open command
func (o *OpenCommand) Run(cmd *cobra.Command, args []string) error {
	route := "/"
	if len(args) == 1 {
		route = args[0]
	}

	url, err := o.root.Container().Navigator().Open(route)
	if err != nil {
		if url != "" {
			fmt.Printf("Please visit: %s\n", url)
		}
		return err
	}

	fmt.Printf("Opened %s\n", url)
	return nil
}
