package aggregate

import (
	"sort"

	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// Dedupe merges findings that share a fingerprint. The merged finding
// keeps the first-seen message and location, carries the union of the
// reporting tools and the most severe severity. Deduplicating an already
// deduplicated list is a no-op.
func Dedupe(findings []finding.Finding) []finding.Finding {
	if len(findings) == 0 {
		return nil
	}

	index := make(map[string]int, len(findings))
	out := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		i, seen := index[f.Fingerprint]
		if !seen {
			index[f.Fingerprint] = len(out)
			out = append(out, f)
			continue
		}
		out[i] = merge(out[i], f)
	}
	return out
}

func merge(a, b finding.Finding) finding.Finding {
	merged := a
	merged.Severity = finding.Max(a.Severity, b.Severity)
	merged.Tools = unionTools(a, b)
	return merged
}

func unionTools(a, b finding.Finding) []string {
	seen := make(map[string]bool)
	var tools []string
	for _, t := range append(a.ContributingTools(), b.ContributingTools()...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// Sort orders findings by (file, line, column, rule), findings without a
// location last. The fingerprint tiebreak makes the order total, so equal
// inputs always render identically.
func Sort(findings []finding.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		return less(findings[i], findings[j])
	})
}

func less(a, b finding.Finding) bool {
	switch {
	case a.Location == nil && b.Location == nil:
		// compare on rule below
	case a.Location == nil:
		return false
	case b.Location == nil:
		return true
	default:
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	return a.Fingerprint < b.Fingerprint
}
