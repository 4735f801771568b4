package output

import (
	"os"
	"testing"
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/coupling"
	"github.com/masmgr/hglineage/internal/hg"
)

var reportTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleItems() []aggregation.ChangeSetMetrics {
	return []aggregation.ChangeSetMetrics{
		{
			ID:          2,
			Hash:        "cccccccccccccccccccccccccccccccccccccccc",
			Branch:      "default",
			Tag:         "v1.1",
			When:        reportTime,
			Author:      hg.Author{Name: "Alice", Mail: "alice@example.com"},
			Type:        hg.ChangeTypeBugfix,
			Summary:     "fix | pipe_in *summary*",
			FileCount:   2,
			ParentCount: 1,
			PulledCount: 3,
		},
		{
			ID:           1,
			Hash:         "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Branch:       "default",
			When:         reportTime.Add(-time.Hour),
			Author:       hg.Author{Name: "Bob"},
			Type:         hg.ChangeTypeSystem,
			Summary:      "bump core",
			FileCount:    1,
			ParentCount:  1,
			ChildCount:   1,
			SubRepoCount: 1,
		},
		{
			ID:         0,
			Hash:       "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			Branch:     "default",
			When:       reportTime.Add(-2 * time.Hour),
			Author:     hg.Author{Name: "Alice", Mail: "alice@example.com"},
			Type:       hg.ChangeTypeFeature,
			Summary:    "initial",
			FileCount:  4,
			ChildCount: 1,
		},
	}
}

func sampleGraphReport() *GraphReport {
	core := aggregation.NewSubRepoMetrics("core")
	core.TransitionCount = 1
	core.ChangeSetCount = 3
	core.BurstScore = 0.75
	return &GraphReport{
		RepoPath:    "/repos/product",
		GeneratedAt: reportTime,
		Summary: aggregation.Summary{
			Total:         3,
			TaggedCount:   1,
			SubstateCount: 1,
			First:         reportTime.Add(-2 * time.Hour),
			Last:          reportTime,
			Types:         []aggregation.Count{{Key: "bugfix", Count: 1}, {Key: "feature", Count: 1}, {Key: "system", Count: 1}},
			Branches:      []aggregation.Count{{Key: "default", Count: 3}},
			SubRepos:      []*aggregation.SubRepoMetrics{core},
		},
		Items:           sampleItems(),
		SubRepositories: []string{"core", "ui"},
		Couplings: []coupling.SubRepoCoupling{
			{A: "core", B: "ui", CoUpdateCount: 2, UpdateCountA: 2, UpdateCountB: 4, JaccardCoefficient: 0.5, Confidence: 1, Lift: 1.5},
		},
		Diagnostics: []hg.Diagnostic{
			{Severity: hg.SeverityWarning, Repository: "product", ChangeSet: 1, Field: "user", Message: "user line missing"},
			{Severity: hg.SeverityError, Repository: "product", ChangeSet: 2, Field: "subrepo", Message: "duplicate transition"},
		},
	}
}

func outputPath(t *testing.T, name string) string {
	t.Helper()
	return t.TempDir() + "/" + name
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}
