// Package main is the entry point for the vip CLI.
// vip gives command-line access to the VIP Mudanças business platform:
// clients, moving quotes, leads, public tenders and the AI assistant.
package main

import (
	"github.com/vip-mudancas/vip-cli/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.ExitWithError("vip", err)
	}
}
