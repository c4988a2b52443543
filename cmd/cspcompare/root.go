// Package main provides the entry point for the cspcompare CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cspcompare.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cspcompare",
		Short: "Service-by-service comparison of two cloud providers",
		Long: `cspcompare compares the service portfolios of two cloud providers.

It discovers each provider's catalog, maps equivalent services into
functional domains, scores every matched pair on technical standing and
cost efficiency, assesses digital sovereignty, and renders the result
as an HTML dashboard, markdown, or JSON.

Results are cached, so interrupted runs resume where they left off.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
