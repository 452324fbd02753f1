// Package adapter normalizes the output of external static analyzers into
// findings. Each adapter knows how to invoke one tool and parse its report;
// everything downstream works on the normalized form only.
package adapter

import (
	"context"
	"time"

	"github.com/felixgeelhaar/lintgate/internal/finding"
)

// Status classifies how a tool run ended.
type Status string

const (
	// StatusOK means the tool ran and its output parsed
	StatusOK Status = "ok"

	// StatusTimeout means the tool was cancelled by its own deadline or
	// the global budget
	StatusTimeout Status = "timeout"

	// StatusCrashed means the tool failed to start, was killed, or
	// produced unparseable output
	StatusCrashed Status = "crashed"
)

// RawResult is the captured output of one analyzer invocation. A non-zero
// exit code is a normal outcome: linters signal findings through it.
type RawResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Adapter runs one analyzer and normalizes its report.
//
// Invoke must honor ctx cancellation and must not write to the inspected
// tree. Parse works on captured output only; a parse error degrades the
// tool to crashed status without aborting the run.
type Adapter interface {
	// Name is the configured tool name, unique within a run
	Name() string

	// Kind is the adapter kind (pylint, flake8, ...)
	Kind() string

	// Security reports whether findings and failures of this tool are
	// security-relevant for gating
	Security() bool

	// Invoke runs the analyzer over the targets and captures its output
	Invoke(ctx context.Context, targets []string) (*RawResult, error)

	// Parse converts captured output into normalized findings
	Parse(raw *RawResult) ([]finding.Finding, error)
}

// Run records one tool execution for the decision report and the cache.
type Run struct {
	// Tool is the configured tool name
	Tool string `json:"tool"`

	// Kind is the adapter kind that produced the run
	Kind string `json:"kind"`

	// Status tells how the execution ended
	Status Status `json:"status"`

	// Security marks security-class tools
	Security bool `json:"security,omitempty"`

	// Cached is set when the findings were served from the result cache
	Cached bool `json:"cached,omitempty"`

	// Duration is the wall time of invoke plus parse
	Duration time.Duration `json:"duration"`

	// Findings counts the findings the tool contributed before dedup
	Findings int `json:"findings"`

	// Error carries the degradation detail for timeout and crashed runs
	Error string `json:"error,omitempty"`
}
