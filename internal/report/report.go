// Package report renders gate results for humans and CI systems.
// The terminal format is for people, json is the stable machine form
// that attestations sign, sarif feeds code-annotation pipelines.
package report

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/gate"
)

// Formatter renders one gate result to a writer.
type Formatter interface {
	Render(w io.Writer, res *gate.Result) error
}

// Options contains configuration shared by the formatters.
type Options struct {
	// NoColor disables styling in the terminal format; the NO_COLOR
	// environment variable does the same
	NoColor bool

	// Version stamps machine reports with the producing binary
	Version string
}

// New creates a formatter for the requested format. An empty format means
// terminal.
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "terminal", "":
		return &TerminalFormatter{styles: newStyles(opts.NoColor)}, nil
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "sarif":
		return &SARIFFormatter{opts: opts}, nil
	default:
		return nil, errors.NewConfigInvalidError(
			fmt.Sprintf("report format must be one of terminal, json, sarif; got %q", format))
	}
}

// Compile-time verification that formatters implement Formatter
var _ Formatter = (*TerminalFormatter)(nil)
var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*SARIFFormatter)(nil)
