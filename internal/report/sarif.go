package report

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/gate"
)

// SARIF represents a SARIF 2.1.0 report structure
type SARIF struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single run in a SARIF report
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the tool that generated the report
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata
type SARIFDriver struct {
	Name            string `json:"name"`
	InformationURI  string `json:"informationUri,omitempty"`
	SemanticVersion string `json:"semanticVersion,omitempty"`
}

// SARIFResult represents a single finding
type SARIFResult struct {
	RuleID              string             `json:"ruleId"`
	Level               string             `json:"level"` // "error", "warning", "note"
	Message             SARIFMessage       `json:"message"`
	Locations           []SARIFLocation    `json:"locations,omitempty"`
	PartialFingerprints map[string]string  `json:"partialFingerprints,omitempty"`
	Suppressions        []SARIFSuppression `json:"suppressions,omitempty"`
	Properties          map[string]any     `json:"properties,omitempty"`
}

// SARIFMessage contains the finding message
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where the finding occurred
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation provides file and line location
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies the artifact
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion narrows a location to a line and column
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFSuppression records why a result is muted
type SARIFSuppression struct {
	Kind          string `json:"kind"`
	Justification string `json:"justification,omitempty"`
}

// SARIFFormatter renders the report for CI annotation pipelines.
type SARIFFormatter struct {
	opts Options
}

// Render writes the result as a SARIF 2.1.0 document. Active findings come
// first in their deterministic order, suppressed ones follow with their
// justification attached, so annotation pipelines can show both.
func (f *SARIFFormatter) Render(w io.Writer, res *gate.Result) error {
	d := res.Decision

	results := make([]SARIFResult, 0, len(d.Findings)+len(d.Suppressed))
	for _, fd := range d.Findings {
		results = append(results, toSARIFResult(fd, nil))
	}
	for _, s := range d.Suppressed {
		suppression := []SARIFSuppression{{
			Kind:          "external",
			Justification: s.Rule.Justification,
		}}
		results = append(results, toSARIFResult(s.Finding, suppression))
	}

	doc := &SARIF{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:            "lintgate",
						InformationURI:  "https://github.com/felixgeelhaar/lintgate",
						SemanticVersion: f.opts.Version,
					},
				},
				Results: results,
			},
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewReportRenderError("sarif", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.NewReportRenderError("sarif", err)
	}
	return nil
}

// toSARIFResult converts one finding
func toSARIFResult(fd finding.Finding, suppressions []SARIFSuppression) SARIFResult {
	level := "warning"
	switch fd.Severity {
	case finding.SeverityError, finding.SeveritySecurity:
		level = "error"
	case finding.SeverityInfo:
		level = "note"
	}

	ruleID := fd.RuleID
	if ruleID == "" {
		ruleID = fd.Tool
	}

	properties := map[string]any{
		"severity": fd.Severity.String(),
		"tools":    fd.ContributingTools(),
	}
	if fd.Category != "" {
		properties["category"] = fd.Category
	}

	result := SARIFResult{
		RuleID:  ruleID,
		Level:   level,
		Message: SARIFMessage{Text: fd.Message},
		PartialFingerprints: map[string]string{
			"lintgateFingerprint/v1": fd.Fingerprint,
		},
		Suppressions: suppressions,
		Properties:   properties,
	}

	if fd.Location != nil {
		physical := SARIFPhysicalLocation{
			ArtifactLocation: SARIFArtifactLocation{
				URI: filepath.ToSlash(fd.Location.File),
			},
		}
		if fd.Location.Line > 0 {
			physical.Region = &SARIFRegion{
				StartLine:   fd.Location.Line,
				StartColumn: fd.Location.Column,
			}
		}
		result.Locations = []SARIFLocation{{PhysicalLocation: physical}}
	}

	return result
}
