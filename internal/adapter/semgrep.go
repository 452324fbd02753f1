package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// semgrepReport mirrors the parts of semgrep's --json document we read.
type semgrepReport struct {
	Results []semgrepResult `json:"results"`
}

type semgrepResult struct {
	CheckID string          `json:"check_id"`
	Path    string          `json:"path"`
	Start   semgrepPosition `json:"start"`
	Extra   semgrepExtra    `json:"extra"`
}

type semgrepPosition struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

type semgrepExtra struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Semgrep normalizes semgrep's JSON report. Semgrep runs security rule
// packs, so the adapter is security-class regardless of configuration.
type Semgrep struct {
	tool config.Tool
}

var _ Adapter = (*Semgrep)(nil)

// NewSemgrep creates a semgrep adapter for the tool config
func NewSemgrep(tool config.Tool) *Semgrep {
	return &Semgrep{tool: tool}
}

func (s *Semgrep) Name() string   { return s.tool.Name }
func (s *Semgrep) Kind() string   { return "semgrep" }
func (s *Semgrep) Security() bool { return true }

// Invoke runs semgrep with JSON output over the targets
func (s *Semgrep) Invoke(ctx context.Context, targets []string) (*RawResult, error) {
	args := append([]string{"--json", "--quiet"}, s.tool.Args...)
	args = append(args, targets...)
	return runCommand(ctx, s.Name(), binary(s.tool, "semgrep"), args)
}

// Parse converts the JSON document into findings
func (s *Semgrep) Parse(raw *RawResult) ([]finding.Finding, error) {
	out := bytes.TrimSpace(raw.Stdout)
	if len(out) == 0 {
		return nil, nil
	}

	var report semgrepReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, errors.NewAdapterParseError(s.Name(), err)
	}

	findings := make([]finding.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		findings = append(findings, finding.Finding{
			Tool:     s.Name(),
			RuleID:   r.CheckID,
			Category: Category(r.CheckID),
			Severity: semgrepSeverity(r.Extra.Severity),
			Message:  r.Extra.Message,
			Location: &finding.Location{
				File:   r.Path,
				Line:   r.Start.Line,
				Column: r.Start.Col,
			},
		})
	}
	return findings, nil
}

// semgrepSeverity maps semgrep's scale: ERROR from a security rule pack
// is a security finding
func semgrepSeverity(s string) finding.Severity {
	switch strings.ToUpper(s) {
	case "ERROR":
		return finding.SeveritySecurity
	case "WARNING":
		return finding.SeverityWarning
	default:
		return finding.SeverityInfo
	}
}
