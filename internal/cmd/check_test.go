package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/lintgate/internal/exitcode"
)

func TestCheckPassesOnWarnings(t *testing.T) {
	chdirWorkspace(t, scriptToolConfig(`printf 'app.py:3: warning: W1001 shadowed builtin\n'`))

	out, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "lintgate: pass")
	assert.Contains(t, out, "fakelint")
}

func TestCheckBlockingFindingsFailTheGate(t *testing.T) {
	chdirWorkspace(t, scriptToolConfig(`printf 'app.py:3: error: E9001 assert on user input\n'`))

	out, err := execute(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GATE-001")
	assert.Equal(t, exitcode.FindingsFailed, exitcode.DetermineExitCode(err))

	// The report still renders before the decision surfaces.
	assert.Contains(t, out, "Blocking")
	assert.Contains(t, out, "E9001")
}

func TestCheckJSONReport(t *testing.T) {
	chdirWorkspace(t, scriptToolConfig(`printf 'app.py:3: warning: W1001 shadowed builtin\n'`))

	out, err := execute(t, "check", "--format", "json", "--ci")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "lintgate", doc["tool"])
	assert.NotEmpty(t, doc["run_id"])

	decision, ok := doc["decision"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, decision["pass"])
}

func TestCheckWritesReportFile(t *testing.T) {
	dir := chdirWorkspace(t, scriptToolConfig(`printf 'app.py:3: warning: W1001 shadowed builtin\n'`))

	out, err := execute(t, "check", "--format", "json", "--output", "report.json")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotEmpty(t, doc["run_id"])
}

func TestCheckUnknownFormatFailsBeforeRunning(t *testing.T) {
	chdirWorkspace(t, scriptToolConfig(`printf 'app.py:3: error: E9001 assert on user input\n'`))

	out, err := execute(t, "check", "--format", "tap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG-002")
	assert.Equal(t, exitcode.ConfigError, exitcode.DetermineExitCode(err))
	assert.Empty(t, out)
}

func TestCheckMandatoryToolUnavailable(t *testing.T) {
	cfg := `tools:
  - name: fakelint
    kind: regex
    command: lintgate-test-missing-binary
    pattern: '` + linePattern + `'
mandatory_tools: [fakelint]
`
	chdirWorkspace(t, cfg)

	out, err := execute(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GATE-002")
	assert.Contains(t, err.Error(), "fakelint")
	assert.Equal(t, exitcode.MandatoryToolUnavailable, exitcode.DetermineExitCode(err))
	assert.Contains(t, out, "crashed")
}

func TestCheckNoToolsConfigured(t *testing.T) {
	chdirWorkspace(t, "")

	_, err := execute(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG-005")
	assert.Equal(t, exitcode.ConfigError, exitcode.DetermineExitCode(err))
}

func TestCheckDiffScopeDemotesFindings(t *testing.T) {
	dir := chdirWorkspace(t, scriptToolConfig(`printf 'app.py:3: error: E9001 assert on user input\n'`))
	diffPath := filepath.Join(dir, "changes.txt")
	require.NoError(t, os.WriteFile(diffPath, []byte("app.py:10-20\n"), 0o600))

	out, err := execute(t, "check", "--diff", "changes.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "lintgate: pass")
	assert.Contains(t, out, "Advisory (outside changed lines)")
	assert.Contains(t, out, "E9001")
}
