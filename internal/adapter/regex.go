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

// Regex adapts any line-oriented analyzer through a configured pattern
// with named groups: message is required, file, line, col, rule and
// severity are optional. Lines that do not match are skipped, since
// arbitrary tools print banners and progress around their findings.
type Regex struct {
	tool config.Tool
	re   *regexp.Regexp
	idx  map[string]int
}

var _ Adapter = (*Regex)(nil)

// NewRegex creates a generic adapter from the tool's pattern
func NewRegex(tool config.Tool) (*Regex, error) {
	re, err := regexp.Compile(tool.Pattern)
	if err != nil {
		return nil, errors.NewConfigInvalidError(
			fmt.Sprintf("tool %q pattern does not compile: %v", tool.Name, err))
	}

	idx := make(map[string]int)
	for i, name := range re.SubexpNames() {
		if name != "" {
			idx[name] = i
		}
	}
	if _, ok := idx["message"]; !ok {
		return nil, errors.NewConfigInvalidError(
			fmt.Sprintf("tool %q pattern needs a (?P<message>...) group", tool.Name))
	}

	return &Regex{tool: tool, re: re, idx: idx}, nil
}

func (r *Regex) Name() string   { return r.tool.Name }
func (r *Regex) Kind() string   { return "regex" }
func (r *Regex) Security() bool { return r.tool.Security }

// Invoke runs the configured command over the targets
func (r *Regex) Invoke(ctx context.Context, targets []string) (*RawResult, error) {
	args := append([]string{}, r.tool.Args...)
	args = append(args, targets...)
	return runCommand(ctx, r.Name(), r.tool.Command, args)
}

// Parse applies the pattern to every output line
func (r *Regex) Parse(raw *RawResult) ([]finding.Finding, error) {
	var findings []finding.Finding

	scanner := bufio.NewScanner(bytes.NewReader(raw.Stdout))
	for scanner.Scan() {
		m := r.re.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		f := finding.Finding{
			Tool:     r.Name(),
			RuleID:   r.group(m, "rule"),
			Severity: r.severity(m),
			Message:  r.group(m, "message"),
		}
		f.Category = Category(f.RuleID)

		if file := r.group(m, "file"); file != "" {
			line, _ := strconv.Atoi(r.group(m, "line"))
			col, _ := strconv.Atoi(r.group(m, "col"))
			f.Location = &finding.Location{File: file, Line: line, Column: col}
		}

		findings = append(findings, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewAdapterParseError(r.Name(), err)
	}
	return findings, nil
}

func (r *Regex) group(m []string, name string) string {
	i, ok := r.idx[name]
	if !ok || i >= len(m) {
		return ""
	}
	return strings.TrimSpace(m[i])
}

// severity reads the named group when present; anything unknown or absent
// counts as a warning
func (r *Regex) severity(m []string) finding.Severity {
	s := r.group(m, "severity")
	if s == "" {
		return finding.SeverityWarning
	}
	parsed, err := finding.ParseSeverity(s)
	if err != nil {
		return finding.SeverityWarning
	}
	return parsed
}
