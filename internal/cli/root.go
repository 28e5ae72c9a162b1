// Package cli implements the intentwatch command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intentwatch",
	Short: "Intent-command protocol core for embedded AI copilots",
	Long:  "Turns free-form user requests into typed, auditable action commands.\nEvery extraction, dispatch, and failure lands in a tamper-evident\nhash-chained audit ledger.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
