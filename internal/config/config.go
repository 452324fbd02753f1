package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// DefaultConfigPath is where Load looks when no path is given.
const DefaultConfigPath = ".lintgate.yaml"

// Config is the full gate configuration, assembled from built-in
// defaults, the config file and LINTGATE_* environment overrides.
type Config struct {
	// Tools lists the analyzers to run
	Tools []Tool `koanf:"tools" yaml:"tools" json:"tools"`

	// TimeoutPerTool bounds each analyzer invocation
	TimeoutPerTool time.Duration `koanf:"timeout_per_tool" yaml:"timeout_per_tool" json:"timeout_per_tool"`

	// GlobalTimeout bounds the whole run; stragglers are cancelled
	GlobalTimeout time.Duration `koanf:"global_timeout" yaml:"global_timeout" json:"global_timeout"`

	// MaxParallel caps how many analyzers run concurrently
	MaxParallel int `koanf:"max_parallel" yaml:"max_parallel" json:"max_parallel"`

	// MandatoryTools names analyzers whose failure to complete fails the gate
	MandatoryTools []string `koanf:"mandatory_tools" yaml:"mandatory_tools,omitempty" json:"mandatory_tools,omitempty"`

	// FailOn lists the severities that block the gate
	FailOn []finding.Severity `koanf:"fail_on" yaml:"fail_on" json:"fail_on"`

	// Exclude drops findings whose file matches any of these globs
	Exclude []string `koanf:"exclude" yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// Suppressions are inline suppression rules
	Suppressions []SuppressionRule `koanf:"suppressions" yaml:"suppressions,omitempty" json:"suppressions,omitempty"`

	// SuppressionsFile points to an external suppression list
	SuppressionsFile string `koanf:"suppressions_file" yaml:"suppressions_file,omitempty" json:"suppressions_file,omitempty"`

	// Cache configures the adapter result cache
	Cache CacheConfig `koanf:"cache" yaml:"cache" json:"cache"`

	// Report configures the default report rendering
	Report ReportConfig `koanf:"report" yaml:"report" json:"report"`
}

// Tool configures one analyzer.
type Tool struct {
	// Name identifies the analyzer in reports, suppressions and mandatory_tools
	Name string `koanf:"name" yaml:"name" json:"name"`

	// Kind selects the adapter: pylint, flake8, bandit, mypy, semgrep or regex
	Kind string `koanf:"kind" yaml:"kind" json:"kind"`

	// Command overrides the executable (defaults to the kind's binary)
	Command string `koanf:"command" yaml:"command,omitempty" json:"command,omitempty"`

	// Args are extra arguments inserted before the targets
	Args []string `koanf:"args" yaml:"args,omitempty" json:"args,omitempty"`

	// Timeout overrides timeout_per_tool for this analyzer
	Timeout time.Duration `koanf:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// Security marks the analyzer security-class: its crash fails the gate
	Security bool `koanf:"security" yaml:"security,omitempty" json:"security,omitempty"`

	// Enabled toggles the analyzer; absent means enabled
	Enabled *bool `koanf:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// Pattern is the named-group regex for kind regex
	// (groups: file, line, col, rule, severity, message)
	Pattern string `koanf:"pattern" yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// IsEnabled reports whether the tool should run.
func (t *Tool) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// EffectiveTimeout returns the per-tool override or the global default.
func (t *Tool) EffectiveTimeout(def time.Duration) time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return def
}

// CacheConfig configures the adapter result cache.
type CacheConfig struct {
	// Enabled toggles result caching
	Enabled bool `koanf:"enabled" yaml:"enabled" json:"enabled"`

	// Path is the cache database file
	Path string `koanf:"path" yaml:"path" json:"path"`
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	// Format is terminal, json or sarif
	Format string `koanf:"format" yaml:"format" json:"format"`

	// Output is the destination file; empty means stdout
	Output string `koanf:"output" yaml:"output,omitempty" json:"output,omitempty"`
}

// ValidReportFormats lists the accepted report formats.
var ValidReportFormats = []string{"terminal", "json", "sarif"}

// Default returns the built-in configuration: no tools, conservative
// timeouts, gate on errors and security findings.
func Default() *Config {
	return &Config{
		TimeoutPerTool: 2 * time.Minute,
		GlobalTimeout:  10 * time.Minute,
		MaxParallel:    4,
		FailOn:         []finding.Severity{finding.SeverityError, finding.SeveritySecurity},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".lintgate/cache.db",
		},
		Report: ReportConfig{
			Format: "terminal",
		},
	}
}

// Validate checks the configuration against the known adapter kinds.
// It returns a CONFIG-class error describing the first problem found.
func (c *Config) Validate(knownKinds []string) error {
	if c.TimeoutPerTool <= 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("timeout_per_tool must be positive, got %s", c.TimeoutPerTool))
	}
	if c.GlobalTimeout <= 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("global_timeout must be positive, got %s", c.GlobalTimeout))
	}
	if c.MaxParallel < 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("max_parallel must be at least 1, got %d", c.MaxParallel))
	}
	for _, s := range c.FailOn {
		if s == finding.SeverityInfo {
			return errors.NewConfigInvalidError("fail_on cannot contain info, info findings never gate")
		}
	}

	kinds := make(map[string]bool, len(knownKinds))
	for _, k := range knownKinds {
		kinds[k] = true
	}

	names := make(map[string]bool, len(c.Tools))
	for i := range c.Tools {
		t := &c.Tools[i]
		if t.Name == "" {
			return errors.NewConfigInvalidError(fmt.Sprintf("tools[%d] has no name", i))
		}
		if names[t.Name] {
			return errors.NewConfigInvalidError(fmt.Sprintf("duplicate tool name %q", t.Name))
		}
		names[t.Name] = true

		if !kinds[t.Kind] {
			return errors.NewToolUnknownError(t.Name, t.Kind, knownKinds)
		}
		if t.Timeout < 0 {
			return errors.NewConfigInvalidError(fmt.Sprintf("tool %q has negative timeout", t.Name))
		}
		if t.Kind == "regex" {
			if t.Command == "" {
				return errors.NewConfigInvalidError(fmt.Sprintf("tool %q uses kind regex but has no command", t.Name))
			}
			if t.Pattern == "" {
				return errors.NewConfigInvalidError(fmt.Sprintf("tool %q uses kind regex but has no pattern", t.Name))
			}
			re, err := regexp.Compile(t.Pattern)
			if err != nil {
				return errors.NewConfigInvalidError(fmt.Sprintf("tool %q pattern does not compile: %v", t.Name, err))
			}
			if !hasNamedGroup(re, "message") {
				return errors.NewConfigInvalidError(fmt.Sprintf("tool %q pattern needs a (?P<message>...) group", t.Name))
			}
		}
	}

	for _, m := range c.MandatoryTools {
		if !names[m] {
			return errors.NewMandatoryToolMissingError(m)
		}
		for i := range c.Tools {
			if c.Tools[i].Name == m && !c.Tools[i].IsEnabled() {
				return errors.NewConfigInvalidError(fmt.Sprintf("mandatory tool %q is disabled", m))
			}
		}
	}

	for _, g := range c.Exclude {
		if !doublestar.ValidatePattern(g) {
			return errors.NewConfigInvalidError(fmt.Sprintf("bad exclude glob %q", g))
		}
	}

	for i := range c.Suppressions {
		if err := c.Suppressions[i].Validate(); err != nil {
			return err
		}
	}

	validFormat := false
	for _, f := range ValidReportFormats {
		if c.Report.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return errors.NewConfigInvalidError(fmt.Sprintf("report format must be one of terminal, json, sarif; got %q", c.Report.Format))
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		return errors.NewConfigInvalidError("cache.enabled requires cache.path")
	}

	return nil
}

// EnabledTools returns the tools that should run, in config order.
func (c *Config) EnabledTools() []Tool {
	out := make([]Tool, 0, len(c.Tools))
	for _, t := range c.Tools {
		if t.IsEnabled() {
			out = append(out, t)
		}
	}
	return out
}

// IsMandatory reports whether the named tool is listed in mandatory_tools.
func (c *Config) IsMandatory(name string) bool {
	for _, m := range c.MandatoryTools {
		if m == name {
			return true
		}
	}
	return false
}

// Excluded reports whether a finding file path matches any exclude glob.
func (c *Config) Excluded(file string) bool {
	for _, g := range c.Exclude {
		if ok, _ := doublestar.Match(g, file); ok {
			return true
		}
	}
	return false
}

func hasNamedGroup(re *regexp.Regexp, name string) bool {
	for _, n := range re.SubexpNames() {
		if n == name {
			return true
		}
	}
	return false
}
