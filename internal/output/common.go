package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

// spanLabel renders the date range of a summary, or "-" when it has no dates.
func spanLabel(s aggregation.Summary) string {
	if s.First.IsZero() {
		return "-"
	}
	return s.First.Format(reportDateLayout) + " to " + s.Last.Format(reportDateLayout)
}

func rangeLabel(report *RangeReport) string {
	if report.AncestorsOf != "" {
		return "ancestors of " + shortHash(report.AncestorsOf)
	}
	if report.Tag != "" {
		return "tag " + report.Tag
	}
	return fmt.Sprintf("%s..%s", shortHash(report.From), shortHash(report.To))
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(reportDateTimeLayout)
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}
