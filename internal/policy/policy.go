// Package policy turns merged findings and per-tool statuses into a gate
// decision: what blocks, what is suppressed, what merely degrades.
package policy

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/target"
)

// Outcome discriminates why a gate passed or failed.
type Outcome string

const (
	// OutcomePass means no blocking findings and no disqualifying tool
	// failures
	OutcomePass Outcome = "pass"

	// OutcomeFailFindings means at least one active finding gates
	OutcomeFailFindings Outcome = "fail-findings"

	// OutcomeFailConfiguration means the gate could not meaningfully run;
	// a no-op gate never silently passes
	OutcomeFailConfiguration Outcome = "fail-configuration"

	// OutcomeFailMandatoryTool means a mandatory or security-class
	// analyzer did not deliver a result
	OutcomeFailMandatoryTool Outcome = "fail-mandatory-tool"
)

// SuppressedFinding pairs a suppressed finding with the rule that matched,
// so reports can show why it was silenced.
type SuppressedFinding struct {
	Finding finding.Finding        `json:"finding"`
	Rule    config.SuppressionRule `json:"rule"`
}

// StaleSuppression reports an expired rule. Matched counts the active
// findings the rule would still silence; zero means the rule can simply
// be deleted.
type StaleSuppression struct {
	Rule    config.SuppressionRule `json:"rule"`
	Matched int                    `json:"matched"`
}

// Decision is the complete outcome of one gate evaluation.
type Decision struct {
	// Pass is the single bit CI cares about
	Pass bool `json:"pass"`

	// Outcome tells why
	Outcome Outcome `json:"outcome"`

	// Reason is a one-line human summary of the outcome
	Reason string `json:"reason,omitempty"`

	// Findings lists every active finding in deterministic order
	Findings []finding.Finding `json:"findings"`

	// Blocking is the subset of findings that failed the gate
	Blocking []finding.Finding `json:"blocking,omitempty"`

	// Advisory lists findings that would block but fall outside the
	// requested line ranges
	Advisory []finding.Finding `json:"advisory,omitempty"`

	// Suppressed records silenced findings with their matching rules
	Suppressed []SuppressedFinding `json:"suppressed,omitempty"`

	// Stale reports expired suppression rules
	Stale []StaleSuppression `json:"stale,omitempty"`

	// Runs carries the per-tool execution record
	Runs []adapter.Run `json:"runs"`
}

// Engine applies suppression rules and gating policy. The zero value is
// not usable; construct with NewEngine.
type Engine struct {
	cfg   *config.Config
	rules []config.SuppressionRule

	// Now is the clock used for expiry checks, replaceable in tests
	Now func() time.Time
}

// NewEngine creates a policy engine over a validated config and the
// resolved suppression rules.
func NewEngine(cfg *config.Config, rules []config.SuppressionRule) *Engine {
	return &Engine{cfg: cfg, rules: rules, Now: time.Now}
}

// Evaluate computes the decision for one run. findings must already be
// deduplicated and sorted; runs lists every executed tool. scope is nil
// when no diff scoping was requested.
func (e *Engine) Evaluate(findings []finding.Finding, runs []adapter.Run, scope *target.Scope) *Decision {
	d := &Decision{Runs: runs}

	if len(runs) == 0 {
		d.Outcome = OutcomeFailConfiguration
		d.Reason = "no analyzers enabled"
		return d
	}

	now := e.Now()
	matched := make([]int, len(e.rules))

	for _, f := range findings {
		rule := e.matchRule(&f, now, matched)
		if rule != nil {
			d.Suppressed = append(d.Suppressed, SuppressedFinding{Finding: f, Rule: *rule})
			continue
		}
		d.Findings = append(d.Findings, f)
	}

	for i := range e.rules {
		if e.rules[i].Expired(now) {
			d.Stale = append(d.Stale, StaleSuppression{Rule: e.rules[i], Matched: matched[i]})
		}
	}

	failOn := make(map[finding.Severity]bool, len(e.cfg.FailOn))
	for _, s := range e.cfg.FailOn {
		failOn[s] = true
	}
	for _, f := range d.Findings {
		if !failOn[f.Severity] || f.Severity == finding.SeverityInfo {
			continue
		}
		if inScope(scope, &f) {
			d.Blocking = append(d.Blocking, f)
		} else {
			d.Advisory = append(d.Advisory, f)
		}
	}

	if reason := e.toolFailure(runs); reason != "" {
		d.Outcome = OutcomeFailMandatoryTool
		d.Reason = reason
		return d
	}

	if len(d.Blocking) > 0 {
		d.Outcome = OutcomeFailFindings
		d.Reason = fmt.Sprintf("%d blocking finding(s)", len(d.Blocking))
		return d
	}

	d.Pass = true
	d.Outcome = OutcomePass
	return d
}

// matchRule returns the first non-expired rule matching the finding.
// Expired matches are tallied only when the finding stays active, so the
// stale report counts what renewing the rule would actually silence.
func (e *Engine) matchRule(f *finding.Finding, now time.Time, matched []int) *config.SuppressionRule {
	var staleHits []int
	for i := range e.rules {
		if !e.rules[i].Matches(f) {
			continue
		}
		if e.rules[i].Expired(now) {
			staleHits = append(staleHits, i)
			continue
		}
		return &e.rules[i]
	}
	for _, i := range staleHits {
		matched[i]++
	}
	return nil
}

// toolFailure finds the first disqualifying tool degradation. A crashed
// security-class analyzer always fails; mandatory tools fail on any
// degradation. Unknown statuses count as failures for mandatory tools.
func (e *Engine) toolFailure(runs []adapter.Run) string {
	for _, r := range runs {
		if r.Security && r.Status == adapter.StatusCrashed {
			return fmt.Sprintf("security analyzer %q crashed", r.Tool)
		}
		if e.cfg.IsMandatory(r.Tool) && r.Status != adapter.StatusOK {
			return fmt.Sprintf("mandatory analyzer %q did not complete (%s)", r.Tool, r.Status)
		}
	}
	return ""
}

// inScope reports whether a finding counts for gating under diff scoping.
// Findings without a location cannot be placed and stay blocking.
func inScope(scope *target.Scope, f *finding.Finding) bool {
	if scope == nil || scope.Len() == 0 {
		return true
	}
	if f.Location == nil {
		return true
	}
	return scope.InScope(f.Location.File, f.Location.Line)
}
