package adapter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// mypyLine matches path:line: severity: message [code], with an optional
// column when --show-column-numbers is on. The trailing code is optional;
// summary lines ("Found 2 errors in 1 file") do not match at all.
var mypyLine = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?: (error|warning|note): (.*?)(?:  \[([a-z0-9-]+)\])?$`)

// Mypy normalizes mypy's line-oriented report.
type Mypy struct {
	tool config.Tool
}

var _ Adapter = (*Mypy)(nil)

// NewMypy creates a mypy adapter for the tool config
func NewMypy(tool config.Tool) *Mypy {
	return &Mypy{tool: tool}
}

func (m *Mypy) Name() string   { return m.tool.Name }
func (m *Mypy) Kind() string   { return "mypy" }
func (m *Mypy) Security() bool { return m.tool.Security }

// Invoke runs mypy with error codes enabled over the targets
func (m *Mypy) Invoke(ctx context.Context, targets []string) (*RawResult, error) {
	args := append([]string{"--show-error-codes", "--no-error-summary"}, m.tool.Args...)
	args = append(args, targets...)
	return runCommand(ctx, m.Name(), binary(m.tool, "mypy"), args)
}

// Parse converts report lines into findings. Summary and note spill-over
// lines are skipped; output with no finding line at all is a parse failure
// unless it is empty.
func (m *Mypy) Parse(raw *RawResult) ([]finding.Finding, error) {
	var findings []finding.Finding
	sawContent := false

	scanner := bufio.NewScanner(bytes.NewReader(raw.Stdout))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		sawContent = true

		match := mypyLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		row, _ := strconv.Atoi(match[2])
		col := 0
		if match[3] != "" {
			col, _ = strconv.Atoi(match[3])
		}

		findings = append(findings, finding.Finding{
			Tool:     m.Name(),
			RuleID:   match[6],
			Category: Category(match[6]),
			Severity: mypySeverity(match[4]),
			Message:  match[5],
			Location: &finding.Location{File: match[1], Line: row, Column: col},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewAdapterParseError(m.Name(), err)
	}
	if sawContent && len(findings) == 0 {
		return nil, errors.NewAdapterParseError(m.Name(),
			fmt.Errorf("no line matched the path:line: severity: message format"))
	}
	return findings, nil
}

func mypySeverity(s string) finding.Severity {
	switch s {
	case "error":
		return finding.SeverityError
	case "warning":
		return finding.SeverityWarning
	default:
		return finding.SeverityInfo
	}
}
