package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/lintgate/internal/config"
)

var suppressionsCmd = &cobra.Command{
	Use:   "suppressions",
	Short: "List suppression rules and their expiry state",
	Long: `suppressions lists every rule from the config and the suppressions
file, with its expiry state. Expired rules no longer silence findings;
--stale narrows the list to them.`,
	RunE: runSuppressions,
}

var suppressionsStale bool

func init() {
	rootCmd.AddCommand(suppressionsCmd)
	suppressionsCmd.Flags().BoolVar(&suppressionsStale, "stale", false, "list only expired rules")
}

func runSuppressions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	rules, err := cfg.ResolveSuppressions()
	if err != nil {
		return err
	}

	now := time.Now()
	if suppressionsStale {
		stale := rules[:0]
		for _, r := range rules {
			if r.Expired(now) {
				stale = append(stale, r)
			}
		}
		rules = stale
	}

	if len(rules) == 0 {
		if suppressionsStale {
			fmt.Fprintln(cmd.OutOrStdout(), "No stale suppression rules.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No suppression rules configured.")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MATCH\tPATH\tEXPIRES\tSTATE\tJUSTIFICATION")
	fmt.Fprintln(w, "-----\t----\t-------\t-----\t-------------")

	for _, r := range rules {
		match := r.Rule
		if match == "" {
			match = "fp:" + shortFingerprint(r.Fingerprint)
		}
		path := r.Path
		if path == "" {
			path = "-"
		}
		expires := "-"
		state := "active"
		if !r.Expires.IsZero() {
			expires = r.Expires.Format("2006-01-02")
			if r.Expired(now) {
				state = "expired"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", match, path, expires, state, r.Justification)
	}

	return w.Flush()
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
