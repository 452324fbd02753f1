package report_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/gate"
	"github.com/felixgeelhaar/lintgate/internal/policy"
	"github.com/felixgeelhaar/lintgate/internal/report"
)

func renderSARIF(t *testing.T, res *gate.Result) report.SARIF {
	t.Helper()
	f, err := report.New("sarif", report.Options{Version: "1.2.3"})
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, f.Render(&b, res))

	var doc report.SARIF
	require.NoError(t, json.Unmarshal(b.Bytes(), &doc))
	return doc
}

func TestSARIFRenderDocument(t *testing.T) {
	doc := renderSARIF(t, failingResult(t))

	assert.Equal(t, "2.1.0", doc.Version)
	assert.Contains(t, doc.Schema, "sarif-schema-2.1.0.json")
	require.Len(t, doc.Runs, 1)

	driver := doc.Runs[0].Tool.Driver
	assert.Equal(t, "lintgate", driver.Name)
	assert.Equal(t, "1.2.3", driver.SemanticVersion)

	// Three active findings, then the suppressed one.
	results := doc.Runs[0].Results
	require.Len(t, results, 4)

	first := results[0]
	assert.Equal(t, "E1101", first.RuleID)
	assert.Equal(t, "error", first.Level)
	assert.Equal(t, "Instance of 'Request' has no 'user' member", first.Message.Text)
	assert.Equal(t, "0d4c8a1f6e2b5a90", first.PartialFingerprints["lintgateFingerprint/v1"])
	assert.Empty(t, first.Suppressions)

	require.Len(t, first.Locations, 1)
	physical := first.Locations[0].PhysicalLocation
	assert.Equal(t, "src/app/views.py", physical.ArtifactLocation.URI)
	require.NotNil(t, physical.Region)
	assert.Equal(t, 42, physical.Region.StartLine)
	assert.Equal(t, 9, physical.Region.StartColumn)

	last := results[3]
	assert.Equal(t, "W0612", last.RuleID)
	require.Len(t, last.Suppressions, 1)
	assert.Equal(t, "external", last.Suppressions[0].Kind)
	assert.Equal(t, "vendored file, cleanup tracked", last.Suppressions[0].Justification)
}

func TestSARIFRuleIDFallsBackToTool(t *testing.T) {
	doc := renderSARIF(t, failingResult(t))

	// The subprocess finding carries no rule id.
	results := doc.Runs[0].Results
	assert.Equal(t, "bandit", results[2].RuleID)
	assert.Empty(t, results[2].Locations)
}

func TestSARIFLevelMapping(t *testing.T) {
	tests := []struct {
		severity finding.Severity
		level    string
	}{
		{finding.SeverityInfo, "note"},
		{finding.SeverityWarning, "warning"},
		{finding.SeverityError, "error"},
		{finding.SeveritySecurity, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			res := &gate.Result{
				RunID:     "test",
				StartedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
				Targets:   []string{"."},
				Decision: &policy.Decision{
					Findings: []finding.Finding{
						{
							Tool:        "bandit",
							RuleID:      "B602",
							Severity:    tt.severity,
							Message:     "subprocess call with shell=True",
							Fingerprint: "deadbeef",
						},
					},
				},
			}

			doc := renderSARIF(t, res)
			require.Len(t, doc.Runs[0].Results, 1)
			assert.Equal(t, tt.level, doc.Runs[0].Results[0].Level)
		})
	}
}

func TestSARIFProperties(t *testing.T) {
	doc := renderSARIF(t, failingResult(t))

	// The merged finding reports both contributing tools.
	merged := doc.Runs[0].Results[1]
	assert.Equal(t, "warning", merged.Properties["severity"])
	assert.Equal(t, []any{"bandit", "pylint"}, merged.Properties["tools"])
	assert.Equal(t, "error-handling", merged.Properties["category"])

	// Single-tool findings fall back to the producing tool.
	assert.Equal(t, []any{"pylint"}, doc.Runs[0].Results[0].Properties["tools"])
}
