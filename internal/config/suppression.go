package config

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// Date is a day-granular expiry date ("2006-01-02", RFC3339 accepted).
type Date struct {
	time.Time
}

// UnmarshalText parses a date from its YAML/env string form.
func (d *Date) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
	}
	d.Time = t
	return nil
}

// MarshalText renders the date in its day form.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.Format("2006-01-02")), nil
}

// SuppressionRule mutes findings matched by fingerprint or rule pattern.
type SuppressionRule struct {
	// Fingerprint matches exactly one deduplicated finding
	Fingerprint string `koanf:"fingerprint" yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`

	// Rule is a glob matched against tool:rule_id and bare rule_id
	Rule string `koanf:"rule" yaml:"rule,omitempty" json:"rule,omitempty"`

	// Path narrows a rule match to files matching this glob
	Path string `koanf:"path" yaml:"path,omitempty" json:"path,omitempty"`

	// Expires makes the rule inert (and reported stale) after this date
	Expires Date `koanf:"expires" yaml:"expires,omitempty" json:"expires,omitempty"`

	// Justification records why the finding is muted; required
	Justification string `koanf:"justification" yaml:"justification" json:"justification"`
}

// Validate checks the rule shape.
func (r *SuppressionRule) Validate() error {
	if r.Fingerprint == "" && r.Rule == "" {
		return errors.NewSuppressionInvalidError("needs a fingerprint or a rule pattern")
	}
	if r.Fingerprint != "" && r.Rule != "" {
		return errors.NewSuppressionInvalidError(fmt.Sprintf("fingerprint %s also has a rule pattern; use one or the other", r.Fingerprint))
	}
	if r.Justification == "" {
		return errors.NewSuppressionInvalidError(fmt.Sprintf("%s has no justification", r.identity()))
	}
	if r.Rule != "" && !doublestar.ValidatePattern(r.Rule) {
		return errors.NewSuppressionInvalidError(fmt.Sprintf("bad rule glob %q", r.Rule))
	}
	if r.Path != "" && !doublestar.ValidatePattern(r.Path) {
		return errors.NewSuppressionInvalidError(fmt.Sprintf("bad path glob %q", r.Path))
	}
	if r.Path != "" && r.Fingerprint != "" {
		return errors.NewSuppressionInvalidError("a fingerprint match cannot carry a path glob")
	}
	return nil
}

// Expired reports whether the rule has lapsed. The expiry day itself still
// counts as active; the rule turns stale at the next UTC midnight.
func (r *SuppressionRule) Expired(now time.Time) bool {
	if r.Expires.IsZero() {
		return false
	}
	cutoff := r.Expires.AddDate(0, 0, 1).Truncate(24 * time.Hour)
	return !now.Before(cutoff)
}

// Matches reports whether the rule applies to the finding. Expiry is not
// considered here; the policy engine separates matching from lapsing.
func (r *SuppressionRule) Matches(f *finding.Finding) bool {
	if r.Fingerprint != "" {
		return r.Fingerprint == f.Fingerprint
	}

	matched := false
	if ok, _ := doublestar.Match(r.Rule, f.RuleID); ok {
		matched = true
	}
	if !matched {
		for _, tool := range f.ContributingTools() {
			if ok, _ := doublestar.Match(r.Rule, tool+":"+f.RuleID); ok {
				matched = true
				break
			}
		}
	}
	if !matched {
		return false
	}

	if r.Path != "" {
		if f.Location == nil {
			return false
		}
		ok, _ := doublestar.Match(r.Path, f.Location.File)
		return ok
	}
	return true
}

func (r *SuppressionRule) identity() string {
	if r.Fingerprint != "" {
		return "fingerprint " + r.Fingerprint
	}
	if r.Path != "" {
		return fmt.Sprintf("rule %q path %q", r.Rule, r.Path)
	}
	return fmt.Sprintf("rule %q", r.Rule)
}

// MergeSuppressions combines rule lists, deduplicating rules with the same
// identity. On conflict the later expiry wins; a rule without expiry counts
// as latest. First-seen order is preserved.
func MergeSuppressions(lists ...[]SuppressionRule) []SuppressionRule {
	index := make(map[string]int)
	var out []SuppressionRule
	for _, list := range lists {
		for _, r := range list {
			key := r.Fingerprint + "\x00" + r.Rule + "\x00" + r.Path
			i, seen := index[key]
			if !seen {
				index[key] = len(out)
				out = append(out, r)
				continue
			}
			if laterExpiry(r.Expires, out[i].Expires) {
				out[i] = r
			}
		}
	}
	return out
}

// laterExpiry reports whether a should replace b.
func laterExpiry(a, b Date) bool {
	if b.IsZero() {
		return false
	}
	if a.IsZero() {
		return true
	}
	return a.After(b.Time)
}
