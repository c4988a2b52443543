package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/cache"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/config"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

// newCacheClearCmd creates the cache clear command.
func newCacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		Long: `Clear removes every cached stage result. The next comparison run
rebuilds everything from fresh inference calls.`,
		RunE: runCacheClearCmd,
	}
	cmd.Flags().String("cache-dir", "",
		"Cache directory (default: XDG cache directory)")
	return cmd
}

// runCacheClearCmd executes the cache clear command.
func runCacheClearCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.DefaultCacheDir()
	}

	store, err := cache.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", dir)
	return nil
}
