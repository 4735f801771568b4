package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/hg"
)

// MarkdownGraphWriter writes graph reports as Markdown.
type MarkdownGraphWriter struct{}

// Write outputs the graph report as Markdown.
func (w *MarkdownGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	s := report.Summary
	fmt.Fprintln(out, "# Change Graph")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Period:** %s\n\n", spanLabel(s))
	fmt.Fprintf(out, "**Change Sets:** %d (merges %d, tagged %d, sub-repository updates %d)\n\n",
		s.Total, s.MergeCount, s.TaggedCount, s.SubstateCount)

	if len(s.SubRepos) > 0 {
		fmt.Fprintln(out, "## Sub-repositories")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| Name | Updates | Change Sets | Contributors | Ownership | Burst |")
		fmt.Fprintln(out, "|------|---------|-------------|--------------|-----------|-------|")
		for _, m := range limitTop(s.SubRepos, options.Top) {
			fmt.Fprintf(out, "| `%s` | %d | %d | %d | %.2f | %.2f |\n",
				m.Name, m.TransitionCount, m.ChangeSetCount, m.ContributorCount(), m.OwnershipRatio(), m.BurstScore)
		}
		fmt.Fprintln(out)
	}

	if len(report.Couplings) > 0 {
		fmt.Fprintln(out, "## Coupled Sub-repositories")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| A | B | Together | Jaccard | Confidence | Lift |")
		fmt.Fprintln(out, "|---|---|----------|---------|------------|------|")
		for _, c := range limitTop(report.Couplings, options.Top) {
			fmt.Fprintf(out, "| `%s` | `%s` | %d | %.3f | %.3f | %.2f |\n",
				c.A, c.B, c.CoUpdateCount, c.JaccardCoefficient, c.Confidence, c.Lift)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "## Change Sets")
	fmt.Fprintln(out)
	writeChangeSetMarkdown(out, limitTop(report.Items, options.Top))

	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Diagnostics")
		fmt.Fprintln(out)
		for _, d := range report.Diagnostics {
			fmt.Fprintf(out, "- %s %s\n", severityEmoji(d.Severity), escapeMarkdown(d.String()))
		}
	}
	return nil
}

// MarkdownRangeWriter writes range reports as Markdown.
type MarkdownRangeWriter struct{}

// Write outputs the range report as Markdown.
func (w *MarkdownRangeWriter) Write(report *RangeReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintf(out, "# Change Sets of %s\n", report.Repository)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Range:** %s\n\n", rangeLabel(report))
	fmt.Fprintf(out, "**Total Change Sets:** %d\n\n", len(report.Items))
	writeChangeSetMarkdown(out, limitTop(report.Items, options.Top))
	return nil
}

func writeChangeSetMarkdown(out io.Writer, items []aggregation.ChangeSetMetrics) {
	fmt.Fprintln(out, "| ID | Hash | Branch | Tag | Type | Author | Files | Pulled | Summary |")
	fmt.Fprintln(out, "|----|------|--------|-----|------|--------|-------|--------|---------|")
	for _, item := range items {
		fmt.Fprintf(out, "| %d | `%s` | %s | %s | %s | %s | %d | %d | %s |\n",
			item.ID,
			shortHash(item.Hash),
			escapeMarkdown(item.Branch),
			escapeMarkdown(item.Tag),
			item.Type,
			escapeMarkdown(item.Author.Name),
			item.FileCount,
			item.PulledCount,
			escapeMarkdown(truncateMessage(item.Summary, 60)),
		)
	}
}

func severityEmoji(s hg.Severity) string {
	if s == hg.SeverityError {
		return "🔴"
	}
	return "🟡"
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
