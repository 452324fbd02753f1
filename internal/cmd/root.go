package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/log"
	"github.com/felixgeelhaar/lintgate/internal/version"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "lintgate",
	Short: "Multi-tool lint aggregation and gating",
	Long: `lintgate runs a configured set of static analyzers concurrently, merges
and deduplicates their findings, applies justified suppressions and
decides whether the change passes the quality gate.

Exit codes: 0 gate passed, 3 blocking findings, 4 configuration error,
5 mandatory analyzer unavailable, 130 interrupted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := log.DefaultConfig()
		cfg.Level = log.LevelFromVerbosity(verbose, quiet)
		cfg.Format = log.ParseFormat(logFormat)
		cfg.ServiceVersion = version.GetInfo().Short()
		log.ConfigureDefault(cfg)
	},
}

// ExecuteContext runs the root command
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
}
