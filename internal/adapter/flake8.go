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

// flake8Line matches the default output format path:row:col: CODE message
var flake8Line = regexp.MustCompile(`^(.+?):(\d+):(\d+): ([A-Z]+\d+) (.+)$`)

// Flake8 normalizes flake8's line-oriented report.
type Flake8 struct {
	tool config.Tool
}

var _ Adapter = (*Flake8)(nil)

// NewFlake8 creates a flake8 adapter for the tool config
func NewFlake8(tool config.Tool) *Flake8 {
	return &Flake8{tool: tool}
}

func (f *Flake8) Name() string   { return f.tool.Name }
func (f *Flake8) Kind() string   { return "flake8" }
func (f *Flake8) Security() bool { return f.tool.Security }

// Invoke runs flake8 in its default output format over the targets
func (f *Flake8) Invoke(ctx context.Context, targets []string) (*RawResult, error) {
	args := append([]string{}, f.tool.Args...)
	args = append(args, targets...)
	return runCommand(ctx, f.Name(), binary(f.tool, "flake8"), args)
}

// Parse converts report lines into findings. Lines that do not look like
// findings are skipped, but output that yields no finding at all is a
// parse failure.
func (f *Flake8) Parse(raw *RawResult) ([]finding.Finding, error) {
	var findings []finding.Finding
	sawContent := false

	scanner := bufio.NewScanner(bytes.NewReader(raw.Stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sawContent = true

		m := flake8Line.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		row, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		code := m[4]

		findings = append(findings, finding.Finding{
			Tool:     f.Name(),
			RuleID:   code,
			Category: Category(code),
			Severity: flake8Severity(code),
			Message:  m[5],
			Location: &finding.Location{File: m[1], Line: row, Column: col},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewAdapterParseError(f.Name(), err)
	}
	if sawContent && len(findings) == 0 {
		return nil, errors.NewAdapterParseError(f.Name(),
			fmt.Errorf("no line matched the path:row:col: CODE format"))
	}
	return findings, nil
}

// flake8Severity classifies codes: E9xx are syntax failures and F8xx are
// pyflakes errors, everything else is style
func flake8Severity(code string) finding.Severity {
	if strings.HasPrefix(code, "E9") || strings.HasPrefix(code, "F8") {
		return finding.SeverityError
	}
	return finding.SeverityWarning
}
