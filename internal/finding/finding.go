package finding

import (
	"fmt"
	"strings"
)

// Severity classifies a finding. The order is significant: higher values
// outrank lower ones when duplicate findings from different tools merge.
type Severity int

const (
	// SeverityInfo is informational and never gates
	SeverityInfo Severity = iota
	// SeverityWarning indicates a potential issue
	SeverityWarning
	// SeverityError indicates a defect
	SeverityError
	// SeveritySecurity indicates a security-relevant defect
	SeveritySecurity
)

// String returns the lowercase name of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeveritySecurity:
		return "security"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string into a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "note":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "security":
		return SeveritySecurity, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Max returns the more severe of two severities
func Max(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// Location identifies where in the inspected tree a finding occurred.
// Line and Column are 1-based; zero means unknown.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String renders the location as path:line:column
func (l Location) String() string {
	if l.Line <= 0 {
		return l.File
	}
	if l.Column <= 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Finding is a single normalized analyzer result. Findings are immutable
// once produced; merging duplicates yields a new value.
type Finding struct {
	// Tool is the analyzer that produced the finding
	Tool string `json:"tool"`

	// Tools lists all analyzers that reported this finding after
	// duplicate merging. Empty until a merge happens.
	Tools []string `json:"tools,omitempty"`

	// RuleID is the analyzer-specific rule code (W0702, E722, B110, ...)
	RuleID string `json:"ruleId"`

	// Category is the tool-independent defect class assigned at parse
	// time (bare-except, unused-import, ...). Empty when the rule has
	// no canonical mapping.
	Category string `json:"category,omitempty"`

	// Severity is the normalized severity
	Severity Severity `json:"severity"`

	// Message is the human-readable description
	Message string `json:"message"`

	// Location is absent for file- or project-level findings
	Location *Location `json:"location,omitempty"`

	// Fingerprint is the stable identity used for deduplication
	Fingerprint string `json:"fingerprint"`
}

// ContributingTools returns every tool that reported the finding
func (f Finding) ContributingTools() []string {
	if len(f.Tools) > 0 {
		return f.Tools
	}
	if f.Tool != "" {
		return []string{f.Tool}
	}
	return nil
}
