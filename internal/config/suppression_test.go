package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

func TestDateUnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty", input: "", want: time.Time{}},
		{name: "day form", input: "2026-03-01", want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", input: "2026-03-01T12:30:00Z", want: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)},
		{name: "us form rejected", input: "03/01/2026", wantErr: true},
		{name: "garbage", input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d config.Date
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "bad date")
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(tt.want), "got %v want %v", d.Time, tt.want)
		})
	}
}

func TestDateMarshalText(t *testing.T) {
	var zero config.Date
	b, err := zero.MarshalText()
	require.NoError(t, err)
	assert.Empty(t, string(b))

	d := mustDate(t, "2026-03-01")
	b, err = d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", string(b))
}

func TestSuppressionExpired(t *testing.T) {
	rule := config.SuppressionRule{
		Rule:          "pylint:W0611",
		Expires:       mustDate(t, "2026-03-01"),
		Justification: "import cleanup",
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "day before", now: time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), want: false},
		{name: "morning of expiry day", now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), want: false},
		{name: "end of expiry day", now: time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC), want: false},
		{name: "next midnight", now: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), want: true},
		{name: "long after", now: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Expired(tt.now))
		})
	}

	forever := config.SuppressionRule{Rule: "pylint:W0611", Justification: "import cleanup"}
	assert.False(t, forever.Expired(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSuppressionMatches(t *testing.T) {
	base := finding.Finding{
		Tool:        "pylint",
		RuleID:      "W0702",
		Severity:    finding.SeverityWarning,
		Message:     "No exception type(s) specified",
		Location:    &finding.Location{File: "legacy/handlers.py", Line: 42},
		Fingerprint: "a1b2c3d4e5f60718",
	}

	merged := base
	merged.Tools = []string{"pylint", "flake8"}

	noLocation := base
	noLocation.Location = nil

	tests := []struct {
		name    string
		rule    config.SuppressionRule
		finding finding.Finding
		want    bool
	}{
		{
			name:    "fingerprint match",
			rule:    config.SuppressionRule{Fingerprint: "a1b2c3d4e5f60718"},
			finding: base,
			want:    true,
		},
		{
			name:    "fingerprint mismatch",
			rule:    config.SuppressionRule{Fingerprint: "ffffffffffffffff"},
			finding: base,
			want:    false,
		},
		{
			name:    "bare rule glob",
			rule:    config.SuppressionRule{Rule: "W07*"},
			finding: base,
			want:    true,
		},
		{
			name:    "tool qualified rule",
			rule:    config.SuppressionRule{Rule: "pylint:W0702"},
			finding: base,
			want:    true,
		},
		{
			name:    "other tool does not match",
			rule:    config.SuppressionRule{Rule: "flake8:W0702"},
			finding: base,
			want:    false,
		},
		{
			name:    "qualified rule matches any contributing tool",
			rule:    config.SuppressionRule{Rule: "flake8:W0702"},
			finding: merged,
			want:    true,
		},
		{
			name:    "path narrows the match",
			rule:    config.SuppressionRule{Rule: "W0702", Path: "legacy/**"},
			finding: base,
			want:    true,
		},
		{
			name:    "path excludes other files",
			rule:    config.SuppressionRule{Rule: "W0702", Path: "vendor/**"},
			finding: base,
			want:    false,
		},
		{
			name:    "path rule never matches a finding without location",
			rule:    config.SuppressionRule{Rule: "W0702", Path: "legacy/**"},
			finding: noLocation,
			want:    false,
		},
		{
			name:    "no location still matches when rule has no path",
			rule:    config.SuppressionRule{Rule: "W0702"},
			finding: noLocation,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(&tt.finding))
		})
	}
}

func TestSuppressionValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    config.SuppressionRule
		wantErr string
	}{
		{
			name: "valid fingerprint rule",
			rule: config.SuppressionRule{Fingerprint: "a1b2c3d4e5f60718", Justification: "known flake"},
		},
		{
			name: "valid rule and path",
			rule: config.SuppressionRule{Rule: "pylint:W0611", Path: "legacy/**", Justification: "cleanup"},
		},
		{
			name:    "neither fingerprint nor rule",
			rule:    config.SuppressionRule{Justification: "nothing to match"},
			wantErr: "fingerprint or a rule",
		},
		{
			name:    "fingerprint and rule together",
			rule:    config.SuppressionRule{Fingerprint: "a1b2c3d4e5f60718", Rule: "W0702", Justification: "x"},
			wantErr: "use one or the other",
		},
		{
			name:    "missing justification",
			rule:    config.SuppressionRule{Rule: "W0702"},
			wantErr: "justification",
		},
		{
			name:    "bad rule glob",
			rule:    config.SuppressionRule{Rule: "[W07", Justification: "x"},
			wantErr: "bad rule glob",
		},
		{
			name:    "bad path glob",
			rule:    config.SuppressionRule{Rule: "W0702", Path: "[legacy", Justification: "x"},
			wantErr: "bad path glob",
		},
		{
			name:    "fingerprint with path",
			rule:    config.SuppressionRule{Fingerprint: "a1b2c3d4e5f60718", Path: "legacy/**", Justification: "x"},
			wantErr: "cannot carry a path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeSuppressions(t *testing.T) {
	jan := mustDate(t, "2026-01-01")
	jun := mustDate(t, "2026-06-01")

	inline := []config.SuppressionRule{
		{Rule: "pylint:W0611", Expires: jan, Justification: "import cleanup"},
		{Rule: "mypy:*", Justification: "typing migration"},
	}
	fromFile := []config.SuppressionRule{
		{Rule: "pylint:W0611", Expires: jun, Justification: "extended"},
		{Fingerprint: "a1b2c3d4e5f60718", Justification: "known flake"},
	}

	merged := config.MergeSuppressions(inline, fromFile)

	require.Len(t, merged, 3)
	assert.Equal(t, "pylint:W0611", merged[0].Rule)
	assert.Equal(t, jun.Time, merged[0].Expires.Time)
	assert.Equal(t, "mypy:*", merged[1].Rule)
	assert.Equal(t, "a1b2c3d4e5f60718", merged[2].Fingerprint)
}

func TestMergeSuppressionsNoExpiryWins(t *testing.T) {
	dated := config.SuppressionRule{Rule: "W0702", Expires: mustDate(t, "2026-01-01"), Justification: "a"}
	open := config.SuppressionRule{Rule: "W0702", Justification: "b"}

	merged := config.MergeSuppressions([]config.SuppressionRule{dated}, []config.SuppressionRule{open})
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Expires.IsZero())

	merged = config.MergeSuppressions([]config.SuppressionRule{open}, []config.SuppressionRule{dated})
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Expires.IsZero())
}
