package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/policy"
	"github.com/felixgeelhaar/lintgate/internal/target"
)

var evalTime = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, cfg *config.Config, rules []config.SuppressionRule) *policy.Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	e := policy.NewEngine(cfg, rules)
	e.Now = func() time.Time { return evalTime }
	return e
}

func okRun(tool string) adapter.Run {
	return adapter.Run{Tool: tool, Kind: tool, Status: adapter.StatusOK}
}

func warningAt(tool, rule, file string, line int) finding.Finding {
	return finding.Finding{
		Tool: tool, RuleID: rule, Severity: finding.SeverityWarning,
		Message: "m", Location: &finding.Location{File: file, Line: line},
		Fingerprint: tool + ":" + rule + ":" + file,
	}
}

func errorAt(tool, rule, file string, line int) finding.Finding {
	f := warningAt(tool, rule, file, line)
	f.Severity = finding.SeverityError
	return f
}

func date(t *testing.T, s string) config.Date {
	t.Helper()
	var d config.Date
	require.NoError(t, d.UnmarshalText([]byte(s)))
	return d
}

func TestEvaluateZeroRunsFailsConfiguration(t *testing.T) {
	e := newEngine(t, nil, nil)

	d := e.Evaluate(nil, nil, nil)

	assert.False(t, d.Pass)
	assert.Equal(t, policy.OutcomeFailConfiguration, d.Outcome)
	assert.Contains(t, d.Reason, "no analyzers")
}

func TestEvaluateZeroFindingsPasses(t *testing.T) {
	e := newEngine(t, nil, nil)

	d := e.Evaluate(nil, []adapter.Run{okRun("pylint")}, nil)

	assert.True(t, d.Pass)
	assert.Equal(t, policy.OutcomePass, d.Outcome)
	assert.Empty(t, d.Findings)
}

func TestEvaluateWarningsAlonePass(t *testing.T) {
	e := newEngine(t, nil, nil)

	d := e.Evaluate(
		[]finding.Finding{warningAt("pylint", "W0702", "a.py", 1)},
		[]adapter.Run{okRun("pylint")}, nil)

	assert.True(t, d.Pass)
	require.Len(t, d.Findings, 1)
	assert.Empty(t, d.Blocking)
}

func TestEvaluateErrorFails(t *testing.T) {
	e := newEngine(t, nil, nil)

	d := e.Evaluate(
		[]finding.Finding{
			warningAt("pylint", "W0702", "a.py", 1),
			errorAt("pylint", "E0602", "a.py", 7),
		},
		[]adapter.Run{okRun("pylint")}, nil)

	assert.False(t, d.Pass)
	assert.Equal(t, policy.OutcomeFailFindings, d.Outcome)
	assert.Len(t, d.Findings, 2)
	require.Len(t, d.Blocking, 1)
	assert.Equal(t, "E0602", d.Blocking[0].RuleID)
}

func TestEvaluateFailOnWarning(t *testing.T) {
	cfg := config.Default()
	cfg.FailOn = []finding.Severity{finding.SeverityWarning, finding.SeverityError, finding.SeveritySecurity}
	e := newEngine(t, cfg, nil)

	d := e.Evaluate(
		[]finding.Finding{warningAt("pylint", "W0702", "a.py", 1)},
		[]adapter.Run{okRun("pylint")}, nil)

	assert.False(t, d.Pass)
	assert.Equal(t, policy.OutcomeFailFindings, d.Outcome)
}

func TestEvaluateInfoNeverGates(t *testing.T) {
	cfg := config.Default()
	cfg.FailOn = []finding.Severity{finding.SeverityInfo, finding.SeverityError}
	e := newEngine(t, cfg, nil)

	info := warningAt("pylint", "C0114", "a.py", 1)
	info.Severity = finding.SeverityInfo

	d := e.Evaluate([]finding.Finding{info}, []adapter.Run{okRun("pylint")}, nil)

	assert.True(t, d.Pass)
}

func TestEvaluateSuppression(t *testing.T) {
	rules := []config.SuppressionRule{
		{Rule: "pylint:E0602", Justification: "known false positive"},
	}
	e := newEngine(t, nil, rules)

	d := e.Evaluate(
		[]finding.Finding{errorAt("pylint", "E0602", "a.py", 7)},
		[]adapter.Run{okRun("pylint")}, nil)

	assert.True(t, d.Pass)
	assert.Empty(t, d.Findings)
	require.Len(t, d.Suppressed, 1)
	assert.Equal(t, "pylint:E0602", d.Suppressed[0].Rule.Rule)
	assert.Empty(t, d.Stale)
}

func TestEvaluateExpiredSuppressionStaysActive(t *testing.T) {
	rules := []config.SuppressionRule{
		{Rule: "pylint:E0602", Expires: date(t, "2026-01-31"), Justification: "lapsed"},
	}
	e := newEngine(t, nil, rules)

	d := e.Evaluate(
		[]finding.Finding{errorAt("pylint", "E0602", "a.py", 7)},
		[]adapter.Run{okRun("pylint")}, nil)

	assert.False(t, d.Pass)
	assert.Equal(t, policy.OutcomeFailFindings, d.Outcome)
	assert.Len(t, d.Findings, 1)
	assert.Empty(t, d.Suppressed)
	require.Len(t, d.Stale, 1)
	assert.Equal(t, 1, d.Stale[0].Matched)
}

func TestEvaluateStaleRuleWithoutMatches(t *testing.T) {
	rules := []config.SuppressionRule{
		{Rule: "pylint:W9999", Expires: date(t, "2026-01-31"), Justification: "obsolete"},
	}
	e := newEngine(t, nil, rules)

	d := e.Evaluate(nil, []adapter.Run{okRun("pylint")}, nil)

	assert.True(t, d.Pass)
	require.Len(t, d.Stale, 1)
	assert.Equal(t, 0, d.Stale[0].Matched)
}

func TestEvaluateFirstActiveRuleWins(t *testing.T) {
	rules := []config.SuppressionRule{
		{Rule: "pylint:E0602", Expires: date(t, "2026-01-31"), Justification: "lapsed"},
		{Rule: "pylint:E*", Justification: "broad waiver"},
	}
	e := newEngine(t, nil, rules)

	d := e.Evaluate(
		[]finding.Finding{errorAt("pylint", "E0602", "a.py", 7)},
		[]adapter.Run{okRun("pylint")}, nil)

	assert.True(t, d.Pass)
	require.Len(t, d.Suppressed, 1)
	assert.Equal(t, "pylint:E*", d.Suppressed[0].Rule.Rule)
	// renewing the lapsed rule would silence nothing new
	require.Len(t, d.Stale, 1)
	assert.Equal(t, 0, d.Stale[0].Matched)
}

func TestEvaluateSecurityCrashFails(t *testing.T) {
	e := newEngine(t, nil, nil)

	runs := []adapter.Run{
		okRun("pylint"),
		{Tool: "bandit", Kind: "bandit", Security: true, Status: adapter.StatusCrashed, Error: "boom"},
	}
	d := e.Evaluate(nil, runs, nil)

	assert.False(t, d.Pass)
	assert.Equal(t, policy.OutcomeFailMandatoryTool, d.Outcome)
	assert.Contains(t, d.Reason, "bandit")
}

func TestEvaluateSecurityTimeoutIsNotACrash(t *testing.T) {
	e := newEngine(t, nil, nil)

	runs := []adapter.Run{
		{Tool: "bandit", Kind: "bandit", Security: true, Status: adapter.StatusTimeout},
	}
	d := e.Evaluate(nil, runs, nil)

	assert.True(t, d.Pass)
}

func TestEvaluateMandatoryDegradationFails(t *testing.T) {
	cfg := config.Default()
	cfg.Tools = []config.Tool{{Name: "mypy", Kind: "mypy"}}
	cfg.MandatoryTools = []string{"mypy"}
	e := newEngine(t, cfg, nil)

	for _, status := range []adapter.Status{adapter.StatusTimeout, adapter.StatusCrashed, ""} {
		d := e.Evaluate(nil, []adapter.Run{{Tool: "mypy", Kind: "mypy", Status: status}}, nil)
		assert.False(t, d.Pass, "status %q", status)
		assert.Equal(t, policy.OutcomeFailMandatoryTool, d.Outcome, "status %q", status)
	}
}

func TestEvaluateNonMandatoryTimeoutDegradesOnly(t *testing.T) {
	e := newEngine(t, nil, nil)

	d := e.Evaluate(nil, []adapter.Run{
		okRun("pylint"),
		{Tool: "mypy", Kind: "mypy", Status: adapter.StatusTimeout},
	}, nil)

	assert.True(t, d.Pass)
	assert.Equal(t, policy.OutcomePass, d.Outcome)
}

func TestEvaluateToolFailureOutranksFindings(t *testing.T) {
	cfg := config.Default()
	cfg.Tools = []config.Tool{{Name: "mypy", Kind: "mypy"}}
	cfg.MandatoryTools = []string{"mypy"}
	e := newEngine(t, cfg, nil)

	d := e.Evaluate(
		[]finding.Finding{errorAt("pylint", "E0602", "a.py", 7)},
		[]adapter.Run{
			okRun("pylint"),
			{Tool: "mypy", Kind: "mypy", Status: adapter.StatusTimeout},
		}, nil)

	assert.False(t, d.Pass)
	assert.Equal(t, policy.OutcomeFailMandatoryTool, d.Outcome)
	// the blocking findings are still reported
	assert.Len(t, d.Blocking, 1)
}

func TestEvaluateDiffScope(t *testing.T) {
	scope := target.NewScope()
	scope.Add("a.py", target.Range{Start: 5, End: 10})

	e := newEngine(t, nil, nil)

	inRange := errorAt("pylint", "E0602", "a.py", 7)
	outOfRange := errorAt("pylint", "E0011", "a.py", 90)
	noLocation := finding.Finding{
		Tool: "pylint", RuleID: "E9999", Severity: finding.SeverityError,
		Message: "m", Fingerprint: "nl",
	}

	d := e.Evaluate(
		[]finding.Finding{inRange, outOfRange, noLocation},
		[]adapter.Run{okRun("pylint")}, nil)
	require.Len(t, d.Blocking, 3, "without scope everything blocks")

	d = e.Evaluate(
		[]finding.Finding{inRange, outOfRange, noLocation},
		[]adapter.Run{okRun("pylint")}, scope)

	assert.False(t, d.Pass)
	require.Len(t, d.Blocking, 2)
	assert.Equal(t, "E0602", d.Blocking[0].RuleID)
	assert.Equal(t, "E9999", d.Blocking[1].RuleID)
	require.Len(t, d.Advisory, 1)
	assert.Equal(t, "E0011", d.Advisory[0].RuleID)
	assert.Len(t, d.Findings, 3)
}

func TestEvaluateOnlyAdvisoryPasses(t *testing.T) {
	scope := target.NewScope()
	scope.Add("a.py", target.Range{Start: 5, End: 10})

	e := newEngine(t, nil, nil)

	d := e.Evaluate(
		[]finding.Finding{errorAt("pylint", "E0011", "a.py", 90)},
		[]adapter.Run{okRun("pylint")}, scope)

	assert.True(t, d.Pass)
	assert.Equal(t, policy.OutcomePass, d.Outcome)
	assert.Len(t, d.Advisory, 1)
}
