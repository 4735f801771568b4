package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/hg"
)

// ConsoleGraphWriter writes graph reports to the console.
type ConsoleGraphWriter struct{}

// Write outputs the graph report to the console.
func (w *ConsoleGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	s := report.Summary
	color.New(color.FgGreen).Fprintln(out, "Change Graph")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Period: %s\n", spanLabel(s))
	fmt.Fprintf(out, "Change sets: %d, Merges: %d, Tagged: %d, Sub-repository updates: %d\n\n",
		s.Total, s.MergeCount, s.TaggedCount, s.SubstateCount)

	if len(s.Types) > 0 {
		fmt.Fprint(out, "Types:")
		for _, c := range s.Types {
			fmt.Fprintf(out, " %s=%d", c.Key, c.Count)
		}
		fmt.Fprintln(out)
	}

	if len(s.SubRepos) > 0 {
		fmt.Fprintln(out)
		color.New(color.FgGreen).Fprintln(out, "Sub-repositories")
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Name\tUpdates\tChange sets\tContributors\tOwnership\tBurst")
		for _, m := range limitTop(s.SubRepos, options.Top) {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%.2f\n",
				m.Name, m.TransitionCount, m.ChangeSetCount, m.ContributorCount(), m.OwnershipRatio(), m.BurstScore)
		}
		tw.Flush()
	}

	if len(report.Couplings) > 0 {
		fmt.Fprintln(out)
		color.New(color.FgGreen).Fprintln(out, "Coupled Sub-repositories")
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "A\tB\tTogether\tJaccard\tConfidence\tLift")
		for _, c := range limitTop(report.Couplings, options.Top) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.3f\t%.3f\t%.2f\n",
				c.A, c.B, c.CoUpdateCount, c.JaccardCoefficient, c.Confidence, c.Lift)
		}
		tw.Flush()
	}

	fmt.Fprintln(out)
	writeChangeSetTable(out, limitTop(report.Items, options.Top))

	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(out)
		color.New(color.FgYellow).Fprintf(out, "Diagnostics (%d)\n", len(report.Diagnostics))
		for _, d := range report.Diagnostics {
			severityColor(d.Severity).Fprintln(out, d.String())
		}
	}
	return nil
}

// ConsoleRangeWriter writes range reports to the console.
type ConsoleRangeWriter struct{}

// Write outputs the range report to the console.
func (w *ConsoleRangeWriter) Write(report *RangeReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.New(color.FgGreen).Fprintln(out, "Change Set Range")
	fmt.Fprintf(out, "Repository: %s\n", report.Repository)
	fmt.Fprintf(out, "Range: %s\n", rangeLabel(report))
	fmt.Fprintf(out, "Change sets: %d\n\n", len(report.Items))

	if len(report.Items) == 0 {
		fmt.Fprintln(out, "No change sets in range.")
		return nil
	}
	writeChangeSetTable(out, limitTop(report.Items, options.Top))
	return nil
}

// ConsoleSubstateWriter writes transition reports to the console.
type ConsoleSubstateWriter struct{}

// Write outputs the sub-repository transitions to the console.
func (w *ConsoleSubstateWriter) Write(report *SubstateReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.New(color.FgGreen).Fprintln(out, "Sub-repository Transitions")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Revision: %s\n\n", report.Rev)

	if len(report.Transitions) == 0 {
		fmt.Fprintln(out, "No sub-repository changes.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tFrom\tTo")
	for _, s := range limitTop(report.Transitions, options.Top) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, orDash(shortHash(s.Removed)), orDash(shortHash(s.Added)))
	}
	return tw.Flush()
}

func writeChangeSetTable(out io.Writer, items []aggregation.ChangeSetMetrics) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHash\tBranch\tTag\tType\tAuthor\tFiles\tSub\tSummary")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			item.ID,
			shortHash(item.Hash),
			item.Branch,
			item.Tag,
			typeColor(item.Type)(item.Type.String()),
			item.Author.Name,
			item.FileCount,
			item.PulledCount,
			truncateMessage(item.Summary, 40),
		)
	}
	tw.Flush()
}

func typeColor(t hg.ChangeType) func(string, ...interface{}) string {
	switch t {
	case hg.ChangeTypeBugfix:
		return color.RedString
	case hg.ChangeTypeMerge, hg.ChangeTypeSystem:
		return color.YellowString
	case hg.ChangeTypeFeature, hg.ChangeTypeSpecification:
		return color.GreenString
	default:
		return fmt.Sprintf
	}
}

func severityColor(s hg.Severity) *color.Color {
	if s == hg.SeverityError {
		return color.New(color.FgRed)
	}
	return color.New(color.FgYellow)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
