package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/lintgate/internal/cache"
	"github.com/felixgeelhaar/lintgate/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the result cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache size and entry count",
	RunE:  runCacheStatus,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached results",
	RunE:  runCacheClean,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !cfg.Cache.Enabled {
		fmt.Fprintln(out, "Result cache is disabled in the config.")
	}
	if _, err := os.Stat(cfg.Cache.Path); os.IsNotExist(err) {
		fmt.Fprintf(out, "No cache database at %s\n", cfg.Cache.Path)
		return nil
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Path:    %s\n", stats.Path)
	fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
	fmt.Fprintf(out, "Size:    %d bytes\n", stats.Size)
	if !stats.Oldest.IsZero() {
		fmt.Fprintf(out, "Oldest:  %s\n", stats.Oldest.Format(time.RFC3339))
		fmt.Fprintf(out, "Newest:  %s\n", stats.Newest.Format(time.RFC3339))
	}
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.Cache.Path); os.IsNotExist(err) {
		fmt.Fprintf(out, "No cache database at %s\n", cfg.Cache.Path)
		return nil
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clean()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d entr%s from %s\n", removed, plural(removed, "y", "ies"), cfg.Cache.Path)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
