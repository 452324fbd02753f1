package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/lintgate/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config interactively",
	Long: `init asks which analyzers to run, what severity fails the gate and
whether to cache results, then writes a starter config. It refuses to
overwrite an existing file.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// starterConfig mirrors the config shape with human-readable durations,
// so the generated file reads the way people write one.
type starterConfig struct {
	Tools          []starterTool `yaml:"tools"`
	FailOn         []string      `yaml:"fail_on"`
	TimeoutPerTool string        `yaml:"timeout_per_tool"`
	MaxParallel    int           `yaml:"max_parallel"`
	Cache          starterCache  `yaml:"cache"`
	Report         starterReport `yaml:"report"`
}

type starterTool struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Security bool   `yaml:"security,omitempty"`
}

type starterCache struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type starterReport struct {
	Format string `yaml:"format"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; remove it or pass --config to write elsewhere", path)
	}

	selected := []string{"pylint", "flake8", "bandit"}
	failOn := "error"
	useCache := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Analyzers to run").
				Options(
					huh.NewOption("pylint", "pylint").Selected(true),
					huh.NewOption("flake8", "flake8").Selected(true),
					huh.NewOption("bandit (security)", "bandit").Selected(true),
					huh.NewOption("mypy", "mypy"),
					huh.NewOption("semgrep (security)", "semgrep"),
				).
				Value(&selected),
			huh.NewSelect[string]().
				Title("Fail the gate on").
				Options(
					huh.NewOption("errors and security findings", "error"),
					huh.NewOption("warnings and above", "warning"),
					huh.NewOption("security findings only", "security"),
				).
				Value(&failOn),
			huh.NewConfirm().
				Title("Cache analyzer results between runs?").
				Value(&useCache),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("init form: %w", err)
	}
	if len(selected) == 0 {
		return fmt.Errorf("no analyzers selected")
	}

	starter := starterConfig{
		FailOn:         failOnSeverities(failOn),
		TimeoutPerTool: "2m",
		MaxParallel:    4,
		Cache:          starterCache{Enabled: useCache, Path: ".lintgate/cache.db"},
		Report:         starterReport{Format: "terminal"},
	}
	for _, kind := range selected {
		starter.Tools = append(starter.Tools, starterTool{
			Name:     kind,
			Kind:     kind,
			Security: kind == "bandit" || kind == "semgrep",
		})
	}

	data, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'lintgate check' to gate the current tree.")
	return nil
}

func failOnSeverities(choice string) []string {
	switch choice {
	case "warning":
		return []string{"warning", "error", "security"}
	case "security":
		return []string{"security"}
	default:
		return []string{"error", "security"}
	}
}
