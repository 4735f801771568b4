package aggregation

import (
	"strings"
	"time"

	"github.com/masmgr/hglineage/internal/entropy"
	"github.com/masmgr/hglineage/internal/hg"
)

// ChangeSetMetrics holds the diffusion and lineage metrics of a single change set.
type ChangeSetMetrics struct {
	ID             int
	Hash           string
	Branch         string
	Tag            string
	When           time.Time
	Author         hg.Author
	Type           hg.ChangeType
	Summary        string
	FileCount      int     // NF: Number of files
	DirectoryCount int     // ND: Number of directories
	SubsystemCount int     // NS: Number of subsystems (top-level directories)
	Entropy        float64 // spread of files over subsystems, 0..1
	ParentCount    int
	ChildCount     int
	SubRepoCount   int // sub-repositories moved by this change set
	PulledCount    int // change sets pulled in from sub-repositories
}

// IsMerge reports whether the change set has more than one parent.
func (m *ChangeSetMetrics) IsMerge() bool {
	return m.ParentCount > 1
}

// ChangeSetMetricsCalculator calculates metrics for change sets.
type ChangeSetMetricsCalculator struct {
	entropyCalc *entropy.Calculator
}

// NewChangeSetMetricsCalculator creates a new change set metrics calculator.
func NewChangeSetMetricsCalculator() *ChangeSetMetricsCalculator {
	return &ChangeSetMetricsCalculator{entropyCalc: entropy.NewCalculator()}
}

// Calculate computes metrics for a single change set.
func (c *ChangeSetMetricsCalculator) Calculate(cs *hg.ChangeSet) ChangeSetMetrics {
	directories := make(map[string]struct{})
	subsystems := make(map[string]struct{})
	perSubsystem := make(map[string]int) // root files count under ""

	for _, path := range cs.Files {
		dir, subsystem := extractPathComponents(path)
		if dir != "" {
			directories[strings.ToLower(dir)] = struct{}{}
		}
		if subsystem != "" {
			subsystems[strings.ToLower(subsystem)] = struct{}{}
		}
		perSubsystem[strings.ToLower(subsystem)]++
	}

	counts := make([]int, 0, len(perSubsystem))
	for _, n := range perSubsystem {
		counts = append(counts, n)
	}

	subsystemCount := len(subsystems)
	if subsystemCount == 0 && len(cs.Files) > 0 {
		subsystemCount = 1
	}

	pulled := 0
	for _, changeSets := range cs.SubRepoChanges {
		pulled += len(changeSets)
	}

	return ChangeSetMetrics{
		ID:             cs.ID,
		Hash:           cs.Hash,
		Branch:         cs.Branch,
		Tag:            cs.Tag,
		When:           cs.Date,
		Author:         cs.Author,
		Type:           cs.Type,
		Summary:        truncateMessage(cs.Summary),
		FileCount:      len(cs.Files),
		DirectoryCount: len(directories),
		SubsystemCount: subsystemCount,
		Entropy:        c.entropyCalc.Spread(counts),
		ParentCount:    len(cs.Parents),
		ChildCount:     len(cs.Children),
		SubRepoCount:   len(cs.SubRepoChanges),
		PulledCount:    pulled,
	}
}

// CalculateAll computes metrics for all change sets, keeping their order.
func (c *ChangeSetMetricsCalculator) CalculateAll(changeSets []*hg.ChangeSet) []ChangeSetMetrics {
	results := make([]ChangeSetMetrics, 0, len(changeSets))
	for _, cs := range changeSets {
		results = append(results, c.Calculate(cs))
	}
	return results
}

// extractPathComponents extracts directory path and subsystem from a file path.
// Subsystem is the first directory component (e.g., "src", "tests", "docs").
func extractPathComponents(path string) (directory, subsystem string) {
	if path == "" {
		return "", ""
	}

	normalizedPath := strings.ReplaceAll(path, "\\", "/")

	lastSlash := strings.LastIndex(normalizedPath, "/")
	if lastSlash <= 0 {
		// File is in root directory
		return "", ""
	}

	directory = normalizedPath[:lastSlash]
	subsystem = normalizedPath[:strings.Index(normalizedPath, "/")]
	return directory, subsystem
}

// truncateMessage truncates a summary to its first line, max 100 chars.
func truncateMessage(message string) string {
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		message = message[:i]
	}
	if len(message) > 100 {
		return message[:97] + "..."
	}
	return message
}
