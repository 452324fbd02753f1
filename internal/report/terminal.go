package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/gate"
	"github.com/felixgeelhaar/lintgate/internal/policy"
)

// Styles contains the lipgloss styles for the terminal report
type Styles struct {
	Pass     lipgloss.Style
	Fail     lipgloss.Style
	Section  lipgloss.Style
	Muted    lipgloss.Style
	Security lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Rule     lipgloss.Style
}

// newStyles returns the styled set, or passthrough styles when color is
// disabled explicitly or through NO_COLOR.
func newStyles(noColor bool) Styles {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return Styles{}
	}
	return Styles{
		Pass: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Fail: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Security: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("201")), // Magenta
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")), // Red
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")), // Yellow
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Rule: lipgloss.NewStyle().
			Bold(true),
	}
}

// TerminalFormatter renders the report for humans.
type TerminalFormatter struct {
	styles Styles
}

// Render writes the styled report.
func (f *TerminalFormatter) Render(w io.Writer, res *gate.Result) error {
	var b strings.Builder
	d := res.Decision

	f.writeHeadline(&b, res)
	b.WriteString("\n")
	f.writeRuns(&b, d.Runs)

	blocking := fingerprintSet(d.Blocking)
	advisory := fingerprintSet(d.Advisory)

	f.writeFindings(&b, "Blocking", d.Blocking)
	f.writeFindings(&b, "Advisory (outside changed lines)", d.Advisory)

	var reported []finding.Finding
	for _, fd := range d.Findings {
		if blocking[fd.Fingerprint] || advisory[fd.Fingerprint] {
			continue
		}
		reported = append(reported, fd)
	}
	f.writeFindings(&b, "Reported", reported)

	f.writeSuppressed(&b, d.Suppressed)
	f.writeStale(&b, d.Stale)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.NewReportRenderError("terminal", err)
	}
	return nil
}

func (f *TerminalFormatter) writeHeadline(b *strings.Builder, res *gate.Result) {
	d := res.Decision

	if d.Pass {
		b.WriteString(f.styles.Pass.Render("✓ lintgate: pass"))
	} else {
		headline := fmt.Sprintf("✗ lintgate: %s", d.Outcome)
		if d.Reason != "" {
			headline += " — " + d.Reason
		}
		b.WriteString(f.styles.Fail.Render(headline))
	}
	b.WriteString("\n")

	meta := fmt.Sprintf("run %s · %d target(s) · %s",
		res.RunID, len(res.Targets), res.Duration.Round(time.Millisecond))
	b.WriteString(f.styles.Muted.Render(meta))
	b.WriteString("\n")
}

func (f *TerminalFormatter) writeRuns(b *strings.Builder, runs []adapter.Run) {
	if len(runs) == 0 {
		return
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(f.styles.Muted).
		StyleFunc(func(int, int) lipgloss.Style { return cell }).
		Headers("TOOL", "KIND", "STATUS", "FINDINGS", "TIME")

	for _, r := range runs {
		status := string(r.Status)
		if r.Cached {
			status += " (cached)"
		}
		tbl.Row(r.Tool, r.Kind, status,
			fmt.Sprintf("%d", r.Findings),
			r.Duration.Round(time.Millisecond).String())
	}
	b.WriteString(tbl.Render())
	b.WriteString("\n")

	for _, r := range runs {
		if r.Status == adapter.StatusOK {
			continue
		}
		line := fmt.Sprintf("⚠ %s %s", r.Tool, r.Status)
		if r.Error != "" {
			line += ": " + r.Error
		}
		b.WriteString(f.styles.Warning.Render(line))
		b.WriteString("\n")
	}
}

func (f *TerminalFormatter) writeFindings(b *strings.Builder, title string, findings []finding.Finding) {
	if len(findings) == 0 {
		return
	}

	b.WriteString("\n")
	b.WriteString(f.styles.Section.Render(title))
	b.WriteString("\n")
	for _, fd := range findings {
		b.WriteString(f.findingLine(fd))
		b.WriteString("\n")
	}
}

func (f *TerminalFormatter) findingLine(fd finding.Finding) string {
	loc := "-"
	if fd.Location != nil {
		loc = fd.Location.String()
	}

	parts := []string{
		"  " + loc,
		f.severityStyle(fd.Severity).Render(fd.Severity.String()),
	}
	if fd.RuleID != "" {
		parts = append(parts, f.styles.Rule.Render(fd.RuleID))
	}
	parts = append(parts, fd.Message)
	if tools := fd.ContributingTools(); len(tools) > 1 {
		parts = append(parts, f.styles.Muted.Render("("+strings.Join(tools, ", ")+")"))
	}
	return strings.Join(parts, "  ")
}

func (f *TerminalFormatter) writeSuppressed(b *strings.Builder, suppressed []policy.SuppressedFinding) {
	if len(suppressed) == 0 {
		return
	}

	b.WriteString("\n")
	b.WriteString(f.styles.Section.Render(fmt.Sprintf("Suppressed (%d)", len(suppressed))))
	b.WriteString("\n")
	for _, s := range suppressed {
		line := f.findingLine(s.Finding)
		detail := "— " + s.Rule.Justification
		if !s.Rule.Expires.IsZero() {
			detail += fmt.Sprintf(" (expires %s)", s.Rule.Expires.Format("2006-01-02"))
		}
		b.WriteString(line + "  " + f.styles.Muted.Render(detail))
		b.WriteString("\n")
	}
}

func (f *TerminalFormatter) writeStale(b *strings.Builder, stale []policy.StaleSuppression) {
	if len(stale) == 0 {
		return
	}

	b.WriteString("\n")
	b.WriteString(f.styles.Section.Render("Stale suppressions"))
	b.WriteString("\n")
	for _, s := range stale {
		name := s.Rule.Rule
		if name == "" {
			name = "fingerprint " + s.Rule.Fingerprint
		}
		line := fmt.Sprintf("  %s expired %s", name, s.Rule.Expires.Format("2006-01-02"))
		if s.Matched > 0 {
			line += fmt.Sprintf(" — would still match %d finding(s)", s.Matched)
		} else {
			line += " — matches nothing, safe to delete"
		}
		b.WriteString(f.styles.Warning.Render(line))
		b.WriteString("\n")
	}
}

func (f *TerminalFormatter) severityStyle(s finding.Severity) lipgloss.Style {
	switch s {
	case finding.SeveritySecurity:
		return f.styles.Security
	case finding.SeverityError:
		return f.styles.Error
	case finding.SeverityWarning:
		return f.styles.Warning
	default:
		return f.styles.Info
	}
}

func fingerprintSet(findings []finding.Finding) map[string]bool {
	set := make(map[string]bool, len(findings))
	for _, fd := range findings {
		set[fd.Fingerprint] = true
	}
	return set
}
