package adapter

import "strings"

// ruleCategories maps analyzer rule codes to tool-independent defect
// classes. Codes sharing a class produce colliding fingerprints at the
// same location, which is how the same defect reported by two analyzers
// merges into one finding.
var ruleCategories = map[string]string{
	// pylint W0702, flake8 E722
	"W0702": "bare-except",
	"E722":  "bare-except",

	// pylint W0611, flake8 F401
	"W0611": "unused-import",
	"F401":  "unused-import",

	// pylint W0612, flake8 F841
	"W0612": "unused-variable",
	"F841":  "unused-variable",

	// pylint E0602, flake8 F821
	"E0602": "undefined-name",
	"F821":  "undefined-name",

	// pylint W0123, bandit B307
	"W0123": "eval-use",
	"B307":  "eval-use",

	// pylint W0122, bandit B102
	"W0122": "exec-use",
	"B102":  "exec-use",

	// bandit B110 (try/except/pass)
	"B110": "swallowed-exception",

	"W0603": "global-statement",
	"R1732": "unclosed-resource",
	"W1514": "unspecified-encoding",
}

// Category returns the canonical defect class for a rule code, or "" when
// the code has no cross-tool mapping.
func Category(ruleID string) string {
	return ruleCategories[strings.ToUpper(strings.TrimSpace(ruleID))]
}
