package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/lintgate/internal/config"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the configured analyzers",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if len(cfg.Tools) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No analyzers configured.")
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'lintgate init' to create a starter config.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tCLASS\tMANDATORY\tENABLED")
	fmt.Fprintln(w, "----\t----\t-----\t---------\t-------")

	for _, tool := range cfg.Tools {
		class := "standard"
		if tool.Security {
			class = "security"
		}
		mandatory := "no"
		if cfg.IsMandatory(tool.Name) {
			mandatory = "yes"
		}
		enabled := "no"
		if tool.IsEnabled() {
			enabled = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tool.Name, tool.Kind, class, mandatory, enabled)
	}

	return w.Flush()
}
