package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/masmgr/hglineage/internal/aggregation"
)

var changeSetHeaders = []string{"ID", "Hash", "Branch", "Tag", "Date", "Type", "Author", "Mail",
	"Files", "Directories", "Subsystems", "Entropy", "Parents", "Children", "SubRepos", "Pulled", "Summary"}

// CSVGraphWriter writes graph reports as CSV, one row per change set.
type CSVGraphWriter struct{}

// Write outputs the graph report as CSV.
func (w *CSVGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	return writeChangeSetsCSV(limitTop(report.Items, options.Top), options.OutputPath)
}

// CSVRangeWriter writes range reports as CSV.
type CSVRangeWriter struct{}

// Write outputs the range report as CSV.
func (w *CSVRangeWriter) Write(report *RangeReport, options OutputOptions) error {
	return writeChangeSetsCSV(limitTop(report.Items, options.Top), options.OutputPath)
}

// CSVSubstateWriter writes transition reports as CSV.
type CSVSubstateWriter struct{}

// Write outputs the transition report as CSV.
func (w *CSVSubstateWriter) Write(report *SubstateReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Name", "From", "To"}); err != nil {
		return err
	}
	for _, s := range limitTop(report.Transitions, options.Top) {
		if err := writer.Write([]string{s.Name, s.Removed, s.Added}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeChangeSetsCSV(items []aggregation.ChangeSetMetrics, outputPath string) error {
	writer, file, err := createCSVWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write(changeSetHeaders); err != nil {
		return err
	}

	for _, item := range items {
		row := []string{
			strconv.Itoa(item.ID),
			item.Hash,
			item.Branch,
			item.Tag,
			formatTime(item.When),
			item.Type.String(),
			item.Author.Name,
			item.Author.Mail,
			fmt.Sprintf("%d", item.FileCount),
			fmt.Sprintf("%d", item.DirectoryCount),
			fmt.Sprintf("%d", item.SubsystemCount),
			fmt.Sprintf("%.6f", item.Entropy),
			fmt.Sprintf("%d", item.ParentCount),
			fmt.Sprintf("%d", item.ChildCount),
			fmt.Sprintf("%d", item.SubRepoCount),
			fmt.Sprintf("%d", item.PulledCount),
			strings.ReplaceAll(item.Summary, "\n", " "),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return csv.NewWriter(file), file, nil
	}
	return csv.NewWriter(os.Stdout), nil, nil
}
