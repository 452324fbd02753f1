package finding

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"
)

// Fingerprint computes the stable identity of a finding: the blake3 hash of
// a canonical JSON document built from the defect class and the location.
// The tool name and the raw rule code are deliberately excluded so that the
// same defect reported by two different analyzers collides. When no
// canonical category is known, the normalized message and the lowercased
// rule code stand in, which keeps unknown rules distinct per tool family.
func Fingerprint(f Finding) (string, error) {
	message := f.Category
	rule := f.Category
	if f.Category == "" {
		message = NormalizeMessage(f.Message)
		rule = strings.ToLower(strings.TrimSpace(f.RuleID))
	}

	location := map[string]interface{}{}
	if f.Location != nil {
		location["file"] = filepath.ToSlash(f.Location.File)
		if f.Location.Line > 0 {
			location["line"] = f.Location.Line
		}
	}

	// encoding/json emits map keys in sorted order, which makes the
	// marshaled form canonical without extra bookkeeping.
	identity := map[string]interface{}{
		"message":  message,
		"location": location,
		"rule":     rule,
	}

	canonical, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("canonicalize finding: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash finding: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// NormalizeMessage reduces a message to a comparable form: lowercased,
// whitespace collapsed, digit runs replaced with #. Replacing digits keeps
// messages like "line too long (92 > 79)" stable across edits that only
// shift the measured values.
func NormalizeMessage(msg string) string {
	var b strings.Builder
	b.Grow(len(msg))

	lastSpace := false
	lastHash := false
	for _, r := range strings.ToLower(strings.TrimSpace(msg)) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
			lastHash = false
		case unicode.IsDigit(r):
			if !lastHash {
				b.WriteByte('#')
			}
			lastSpace = false
			lastHash = true
		default:
			b.WriteRune(r)
			lastSpace = false
			lastHash = false
		}
	}

	return strings.TrimRight(b.String(), " ")
}
