package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/gate"
	"github.com/felixgeelhaar/lintgate/internal/policy"
)

// JSONDocument is the stable machine report. Field order is fixed and the
// embedded decision slices are deterministically sorted, so identical runs
// produce byte-identical documents; attestation relies on that.
type JSONDocument struct {
	Tool      string           `json:"tool"`
	Version   string           `json:"version,omitempty"`
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Targets   []string         `json:"targets"`
	Decision  *policy.Decision `json:"decision"`
}

// JSONFormatter renders the machine-readable report.
type JSONFormatter struct {
	opts Options
}

// Render writes the result as indented JSON.
func (f *JSONFormatter) Render(w io.Writer, res *gate.Result) error {
	doc := JSONDocument{
		Tool:      "lintgate",
		Version:   f.opts.Version,
		RunID:     res.RunID,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
		Targets:   res.Targets,
		Decision:  res.Decision,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return errors.NewReportRenderError("json", err)
	}
	return nil
}
