package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cachedToolConfig = `tools:
  - name: fakelint
    kind: regex
    command: sh
    args: ["-c", "printf 'app.py:3: warning: W1001 shadowed builtin\\n'"]
    pattern: '` + linePattern + `'
cache:
  enabled: true
  path: .lintgate/cache.db
`

func TestCacheStatusNoDatabase(t *testing.T) {
	chdirWorkspace(t, "")

	out, err := execute(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Result cache is disabled in the config.")
	assert.Contains(t, out, "No cache database at .lintgate/cache.db")
}

func TestCacheStatusAndCleanAfterRun(t *testing.T) {
	chdirWorkspace(t, cachedToolConfig)

	_, err := execute(t, "check")
	require.NoError(t, err)

	out, err := execute(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 1")
	assert.Contains(t, out, "Oldest:")

	out, err = execute(t, "cache", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 entry from .lintgate/cache.db")

	out, err = execute(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 0")
}

func TestCacheCleanNoDatabase(t *testing.T) {
	chdirWorkspace(t, "")

	out, err := execute(t, "cache", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "No cache database at .lintgate/cache.db")
}
