package adapter

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// pylintEntry mirrors one element of pylint's --output-format=json array.
type pylintEntry struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Symbol    string `json:"symbol"`
	Message   string `json:"message"`
	MessageID string `json:"message-id"`
}

// Pylint normalizes pylint's JSON report.
type Pylint struct {
	tool config.Tool
}

var _ Adapter = (*Pylint)(nil)

// NewPylint creates a pylint adapter for the tool config
func NewPylint(tool config.Tool) *Pylint {
	return &Pylint{tool: tool}
}

func (p *Pylint) Name() string   { return p.tool.Name }
func (p *Pylint) Kind() string   { return "pylint" }
func (p *Pylint) Security() bool { return p.tool.Security }

// Invoke runs pylint with JSON output over the targets
func (p *Pylint) Invoke(ctx context.Context, targets []string) (*RawResult, error) {
	args := append([]string{"--output-format=json"}, p.tool.Args...)
	args = append(args, targets...)
	return runCommand(ctx, p.Name(), binary(p.tool, "pylint"), args)
}

// Parse converts the JSON array into findings
func (p *Pylint) Parse(raw *RawResult) ([]finding.Finding, error) {
	out := bytes.TrimSpace(raw.Stdout)
	if len(out) == 0 {
		return nil, nil
	}

	var entries []pylintEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, errors.NewAdapterParseError(p.Name(), err)
	}

	findings := make([]finding.Finding, 0, len(entries))
	for _, e := range entries {
		findings = append(findings, finding.Finding{
			Tool:     p.Name(),
			RuleID:   e.MessageID,
			Category: Category(e.MessageID),
			Severity: pylintSeverity(e.Type),
			Message:  e.Message,
			Location: &finding.Location{
				File: e.Path,
				Line: e.Line,
				// pylint columns are 0-based
				Column: e.Column + 1,
			},
		})
	}
	return findings, nil
}

func pylintSeverity(typ string) finding.Severity {
	switch typ {
	case "error", "fatal":
		return finding.SeverityError
	case "warning":
		return finding.SeverityWarning
	default:
		// convention, refactor, info
		return finding.SeverityInfo
	}
}
