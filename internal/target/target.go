package target

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/lintgate/internal/errors"
)

// Range is an inclusive line range within a file.
type Range struct {
	Start int
	End   int
}

// Contains reports whether line falls inside the range.
func (r Range) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Scope is a set of files with optional changed-line ranges. A file mapped
// to no ranges is covered in full.
type Scope struct {
	files map[string][]Range
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{files: make(map[string][]Range)}
}

// Add records a file in the scope. Without ranges the whole file is
// covered; adding ranges narrows coverage to those lines. A later Add
// without ranges widens the file back to full coverage.
func (s *Scope) Add(path string, ranges ...Range) {
	key := normalize(path)
	if len(ranges) == 0 {
		s.files[key] = nil
		return
	}
	if existing, ok := s.files[key]; ok && existing == nil {
		// Already covered in full.
		return
	}
	s.files[key] = append(s.files[key], ranges...)
}

// Len returns the number of files in the scope.
func (s *Scope) Len() int {
	return len(s.files)
}

// Files returns the covered file paths in sorted order.
func (s *Scope) Files() []string {
	out := make([]string, 0, len(s.files))
	for f := range s.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether the file appears in the scope at all.
func (s *Scope) Contains(file string) bool {
	_, ok := s.files[normalize(file)]
	return ok
}

// InScope reports whether a finding at (file, line) falls inside the
// changed ranges. Line 0 means the finding has no line information; it
// stays in scope whenever its file is covered.
func (s *Scope) InScope(file string, line int) bool {
	ranges, ok := s.files[normalize(file)]
	if !ok {
		return false
	}
	if len(ranges) == 0 || line <= 0 {
		return true
	}
	for _, r := range ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// ParseLine parses one diff-scope line of the form path, path:line or
// path:start-end.
func ParseLine(line string) (string, []Range, error) {
	path, spec, found := strings.Cut(line, ":")
	if path == "" {
		return "", nil, errors.NewTargetInvalidError(fmt.Sprintf("missing path in %q", line))
	}
	if !found {
		return path, nil, nil
	}

	start, end, ranged := strings.Cut(spec, "-")
	s, err := strconv.Atoi(start)
	if err != nil || s < 1 {
		return "", nil, errors.NewTargetInvalidError(fmt.Sprintf("bad line number in %q", line))
	}
	e := s
	if ranged {
		e, err = strconv.Atoi(end)
		if err != nil || e < s {
			return "", nil, errors.NewTargetInvalidError(fmt.Sprintf("bad line range in %q", line))
		}
	}
	return path, []Range{{Start: s, End: e}}, nil
}

// Load reads a diff-scope file: one path[:start[-end]] entry per line.
// Blank lines and # comments are skipped.
func Load(r io.Reader) (*Scope, error) {
	scope := NewScope()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		path, ranges, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		scope.Add(path, ranges...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read diff scope", err)
	}
	return scope, nil
}

// LoadFile reads a diff-scope file from disk.
func LoadFile(path string) (*Scope, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return Load(f)
}

func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
