package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/gate"
	"github.com/felixgeelhaar/lintgate/internal/log"
	"github.com/felixgeelhaar/lintgate/internal/policy"
	"github.com/felixgeelhaar/lintgate/internal/report"
	"github.com/felixgeelhaar/lintgate/internal/target"
	"github.com/felixgeelhaar/lintgate/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [target...]",
	Short: "Run the configured analyzers and gate the findings",
	Long: `check runs every enabled analyzer against the targets (default: the
current directory), merges and deduplicates their findings, applies
suppressions and renders a report. The exit code carries the decision:
0 pass, 3 blocking findings, 4 configuration error, 5 mandatory
analyzer unavailable.`,
	RunE: runCheck,
}

var (
	checkDiff    string
	checkFormat  string
	checkOutput  string
	checkNoCache bool
	checkCI      bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkDiff, "diff", "", "diff scope file narrowing blocking findings to changed lines (- for stdin)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "", "report format: terminal, json or sarif (default from config)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "write the report to this file instead of stdout")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "bypass the result cache for this run")
	checkCmd.Flags().BoolVar(&checkCI, "ci", false, "CI mode: json logs, unstyled report")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkCI {
		log.ConfigureDefault(log.CIConfig())
	}
	logger := log.DefaultLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// The formatter resolves before any analyzer runs, so a bad --format
	// fails without costing a run.
	format := cfg.Report.Format
	if checkFormat != "" {
		format = checkFormat
	}
	output := cfg.Report.Output
	if cmd.Flags().Changed("output") {
		output = checkOutput
	}
	formatter, err := report.New(format, report.Options{
		NoColor: checkCI || output != "",
		Version: version.GetInfo().Short(),
	})
	if err != nil {
		return err
	}

	var scope *target.Scope
	if checkDiff != "" {
		if checkDiff == "-" {
			scope, err = target.Load(cmd.InOrStdin())
		} else {
			scope, err = target.LoadFile(checkDiff)
		}
		if err != nil {
			return err
		}
	}

	runner := &gate.Runner{
		Config:  cfg,
		Scope:   scope,
		NoCache: checkNoCache,
		Logger:  logger,
	}
	res, err := runner.Evaluate(cmd.Context(), args)
	if err != nil {
		return err
	}

	// The report renders regardless of the decision; only then does the
	// decision surface as the exit code.
	if err := writeReport(cmd, formatter, output, res); err != nil {
		return err
	}
	return decisionError(cfg, res.Decision)
}

func writeReport(cmd *cobra.Command, formatter report.Formatter, output string, res *gate.Result) error {
	if output == "" {
		return formatter.Render(cmd.OutOrStdout(), res)
	}

	f, err := os.Create(output)
	if err != nil {
		return errors.NewReportWriteError(output, err)
	}
	if err := formatter.Render(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewReportWriteError(output, err)
	}
	return nil
}

// decisionError maps a failing decision onto the error carrying its exit
// code.
func decisionError(cfg *config.Config, d *policy.Decision) error {
	switch d.Outcome {
	case policy.OutcomeFailFindings:
		return errors.NewGateFindingsError(len(d.Blocking))
	case policy.OutcomeFailMandatoryTool:
		for _, r := range d.Runs {
			if r.Security && r.Status == adapter.StatusCrashed {
				return errors.NewMandatoryToolError(r.Tool, string(r.Status))
			}
			if cfg.IsMandatory(r.Tool) && r.Status != adapter.StatusOK {
				return errors.NewMandatoryToolError(r.Tool, string(r.Status))
			}
		}
		return errors.NewMandatoryToolError("analyzer", "unavailable")
	case policy.OutcomeFailConfiguration:
		return errors.NewNoToolsEnabledError()
	}
	return nil
}
