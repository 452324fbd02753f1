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

// banditReport mirrors the parts of bandit's -f json document we read.
type banditReport struct {
	Results []banditResult `json:"results"`
}

type banditResult struct {
	Filename      string `json:"filename"`
	LineNumber    int    `json:"line_number"`
	ColOffset     int    `json:"col_offset"`
	IssueSeverity string `json:"issue_severity"`
	IssueText     string `json:"issue_text"`
	TestID        string `json:"test_id"`
	TestName      string `json:"test_name"`
}

// Bandit normalizes bandit's JSON report. Bandit is a security scanner,
// so the adapter is security-class regardless of configuration.
type Bandit struct {
	tool config.Tool
}

var _ Adapter = (*Bandit)(nil)

// NewBandit creates a bandit adapter for the tool config
func NewBandit(tool config.Tool) *Bandit {
	return &Bandit{tool: tool}
}

func (b *Bandit) Name() string   { return b.tool.Name }
func (b *Bandit) Kind() string   { return "bandit" }
func (b *Bandit) Security() bool { return true }

// Invoke runs bandit recursively with JSON output over the targets
func (b *Bandit) Invoke(ctx context.Context, targets []string) (*RawResult, error) {
	args := append([]string{"-f", "json", "-r"}, b.tool.Args...)
	args = append(args, targets...)
	return runCommand(ctx, b.Name(), binary(b.tool, "bandit"), args)
}

// Parse converts the JSON document into findings
func (b *Bandit) Parse(raw *RawResult) ([]finding.Finding, error) {
	out := bytes.TrimSpace(raw.Stdout)
	if len(out) == 0 {
		return nil, nil
	}

	var report banditReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, errors.NewAdapterParseError(b.Name(), err)
	}

	findings := make([]finding.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		findings = append(findings, finding.Finding{
			Tool:     b.Name(),
			RuleID:   r.TestID,
			Category: Category(r.TestID),
			Severity: banditSeverity(r.IssueSeverity),
			Message:  r.IssueText,
			Location: &finding.Location{
				File: r.Filename,
				Line: r.LineNumber,
				// bandit offsets are 0-based
				Column: r.ColOffset + 1,
			},
		})
	}
	return findings, nil
}

// banditSeverity maps bandit's HIGH/MEDIUM/LOW scale: the upper two are
// security findings, LOW degrades to warning
func banditSeverity(s string) finding.Severity {
	switch strings.ToUpper(s) {
	case "HIGH", "MEDIUM":
		return finding.SeveritySecurity
	default:
		return finding.SeverityWarning
	}
}
