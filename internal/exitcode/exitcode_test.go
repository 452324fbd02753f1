package exitcode

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/lintgate/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"FindingsFailed", FindingsFailed, 3},
		{"ConfigError", ConfigError, 4},
		{"MandatoryToolUnavailable", MandatoryToolUnavailable, 5},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "blocking findings",
			err:      errors.NewGateFindingsError(2),
			expected: FindingsFailed,
		},
		{
			name:     "mandatory tool crashed",
			err:      errors.NewMandatoryToolError("bandit", "crashed"),
			expected: MandatoryToolUnavailable,
		},
		{
			name:     "config not found",
			err:      errors.NewConfigNotFoundError(".lintgate.yaml"),
			expected: ConfigError,
		},
		{
			name:     "config invalid",
			err:      errors.NewConfigInvalidError("fail_on contains unknown severity"),
			expected: ConfigError,
		},
		{
			name:     "unknown tool kind",
			err:      errors.NewToolUnknownError("custom", "nope", []string{"pylint"}),
			expected: ConfigError,
		},
		{
			name:     "no tools enabled",
			err:      errors.NewNoToolsEnabledError(),
			expected: ConfigError,
		},
		{
			name:     "suppression file broken",
			err:      errors.NewSuppressionFileError("suppressions.yaml", fmt.Errorf("bad yaml")),
			expected: ConfigError,
		},
		{
			name:     "wrapped gate error is still recognized",
			err:      fmt.Errorf("check failed: %w", errors.NewGateFindingsError(1)),
			expected: FindingsFailed,
		},
		{
			name:     "other coded error is general",
			err:      errors.NewCacheOpenError("cache.db", fmt.Errorf("locked")),
			expected: GeneralError,
		},
		{
			name:     "usage error - unknown flag",
			err:      stderrors.New("unknown flag: --bar"),
			expected: UsageError,
		},
		{
			name:     "usage error - unknown command",
			err:      stderrors.New("unknown command \"chekc\" for \"lintgate\""),
			expected: UsageError,
		},
		{
			name:     "usage error - required flag",
			err:      stderrors.New("required flag --key not set"),
			expected: UsageError,
		},
		{
			name:     "usage error - wrong argument count",
			err:      stderrors.New("accepts 1 arg(s), received 0"),
			expected: UsageError,
		},
		{
			name:     "generic error",
			err:      stderrors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := DetermineExitCode(tt.err)
			if code != tt.expected {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, code, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{UsageError, "Usage error (invalid flags or arguments)"},
		{FindingsFailed, "Blocking findings present"},
		{ConfigError, "Configuration error"},
		{MandatoryToolUnavailable, "Mandatory analyzer unavailable"},
		{Interrupted, "Interrupted"},
		{99, "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := GetExitCodeDescription(tt.code)
			if result != tt.expected {
				t.Errorf("GetExitCodeDescription(%d) = %s, want %s", tt.code, result, tt.expected)
			}
		})
	}
}
