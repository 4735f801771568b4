package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masmgr/hglineage/internal/hg"
)

// CIGraphWriter writes graph reports as NDJSON (one JSON object per line) for CI pipelines.
type CIGraphWriter struct{}

// CISummary is the first line of CI output, containing aggregate statistics.
type CISummary struct {
	Type            string `json:"type"`
	Total           int    `json:"total"`
	Merges          int    `json:"merges"`
	SubstateUpdates int    `json:"substateUpdates"`
	SubRepos        int    `json:"subRepos"`
	Warnings        int    `json:"warnings"`
	Errors          int    `json:"errors"`
}

// CIChangeSetEntry represents a single change set in CI output.
type CIChangeSetEntry struct {
	Type      string        `json:"type"`
	ChangeSet JSONChangeSet `json:"changeset"`
}

// CIDiagnosticEntry represents a single diagnostic in CI output.
type CIDiagnosticEntry struct {
	Type       string         `json:"type"`
	Diagnostic JSONDiagnostic `json:"diagnostic"`
}

// Write outputs the graph report as NDJSON.
func (w *CIGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CISummary{
		Type:            "summary",
		Total:           report.Summary.Total,
		Merges:          report.Summary.MergeCount,
		SubstateUpdates: report.Summary.SubstateCount,
		SubRepos:        len(report.SubRepositories),
	}
	for _, d := range report.Diagnostics {
		if d.Severity == hg.SeverityError {
			summary.Errors++
		} else {
			summary.Warnings++
		}
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, item := range limitTop(report.Items, options.Top) {
		entry := CIChangeSetEntry{Type: "changeset", ChangeSet: jsonChangeSet(item)}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	for _, d := range diagnosticsOf(report.Diagnostics) {
		if err := writeNDJSONLine(out, CIDiagnosticEntry{Type: "diagnostic", Diagnostic: d}); err != nil {
			return err
		}
	}
	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
