package output

import (
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/coupling"
	"github.com/masmgr/hglineage/internal/hg"
)

// Compile-time interface conformance checks.
var (
	_ GraphReportWriter = (*ConsoleGraphWriter)(nil)
	_ GraphReportWriter = (*JSONGraphWriter)(nil)
	_ GraphReportWriter = (*CSVGraphWriter)(nil)
	_ GraphReportWriter = (*MarkdownGraphWriter)(nil)
	_ GraphReportWriter = (*CIGraphWriter)(nil)

	_ RangeReportWriter = (*ConsoleRangeWriter)(nil)
	_ RangeReportWriter = (*JSONRangeWriter)(nil)
	_ RangeReportWriter = (*CSVRangeWriter)(nil)
	_ RangeReportWriter = (*MarkdownRangeWriter)(nil)

	_ SubstateReportWriter = (*ConsoleSubstateWriter)(nil)
	_ SubstateReportWriter = (*JSONSubstateWriter)(nil)
	_ SubstateReportWriter = (*CSVSubstateWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
}

// GraphReport holds a resolved repository: its change sets, statistics and
// the diagnostics raised while resolving it.
type GraphReport struct {
	RepoPath        string
	GeneratedAt     time.Time
	Summary         aggregation.Summary
	Items           []aggregation.ChangeSetMetrics
	SubRepositories []string
	Couplings       []coupling.SubRepoCoupling
	Diagnostics     []hg.Diagnostic
}

// RangeReport holds the change sets between two points of one repository.
type RangeReport struct {
	RepoPath    string
	Repository  string
	From        string
	To          string
	Tag         string
	AncestorsOf string
	GeneratedAt time.Time
	Items       []aggregation.ChangeSetMetrics
}

// SubstateReport holds the merged sub-repository transitions of one revision.
type SubstateReport struct {
	RepoPath    string
	Rev         string
	GeneratedAt time.Time
	Transitions []hg.SubState
}

// GraphReportWriter writes graph reports.
type GraphReportWriter interface {
	Write(report *GraphReport, options OutputOptions) error
}

// RangeReportWriter writes range reports.
type RangeReportWriter interface {
	Write(report *RangeReport, options OutputOptions) error
}

// SubstateReportWriter writes sub-repository transition reports.
type SubstateReportWriter interface {
	Write(report *SubstateReport, options OutputOptions) error
}

// NewGraphReportWriter creates a graph report writer for the specified format.
func NewGraphReportWriter(format OutputFormat) GraphReportWriter {
	switch format {
	case FormatJSON:
		return &JSONGraphWriter{}
	case FormatCSV:
		return &CSVGraphWriter{}
	case FormatMarkdown:
		return &MarkdownGraphWriter{}
	case FormatCI:
		return &CIGraphWriter{}
	default:
		return &ConsoleGraphWriter{}
	}
}

// NewRangeReportWriter creates a range report writer for the specified format.
func NewRangeReportWriter(format OutputFormat) RangeReportWriter {
	switch format {
	case FormatJSON:
		return &JSONRangeWriter{}
	case FormatCSV:
		return &CSVRangeWriter{}
	case FormatMarkdown:
		return &MarkdownRangeWriter{}
	default:
		return &ConsoleRangeWriter{}
	}
}

// NewSubstateReportWriter creates a transition report writer for the specified format.
func NewSubstateReportWriter(format OutputFormat) SubstateReportWriter {
	switch format {
	case FormatJSON:
		return &JSONSubstateWriter{}
	case FormatCSV:
		return &CSVSubstateWriter{}
	default:
		return &ConsoleSubstateWriter{}
	}
}
