package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/hg"
)

// JSONChangeSet is the JSON output structure for a single change set.
type JSONChangeSet struct {
	ID          int     `json:"id"`
	Hash        string  `json:"hash"`
	Branch      string  `json:"branch"`
	Tag         string  `json:"tag,omitempty"`
	Date        string  `json:"date,omitempty"`
	Type        string  `json:"type"`
	Author      string  `json:"author"`
	Mail        string  `json:"mail,omitempty"`
	Summary     string  `json:"summary"`
	Files       int     `json:"files"`
	Entropy     float64 `json:"entropy"`
	Parents     int     `json:"parents"`
	Children    int     `json:"children"`
	SubRepos    int     `json:"subRepos"`
	PulledCount int     `json:"pulled"`
}

// JSONSubRepo is the JSON output structure for sub-repository metrics.
type JSONSubRepo struct {
	Name           string  `json:"name"`
	Updates        int     `json:"updates"`
	ChangeSets     int     `json:"changeSets"`
	Contributors   int     `json:"contributors"`
	OwnershipRatio float64 `json:"ownershipRatio"`
	BurstScore     float64 `json:"burstScore"`
	LastUpdated    string  `json:"lastUpdated,omitempty"`
}

// JSONCoupling is the JSON output structure for a coupled sub-repository pair.
type JSONCoupling struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Together   int     `json:"together"`
	Jaccard    float64 `json:"jaccard"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

// JSONDiagnostic is the JSON output structure for a diagnostic.
type JSONDiagnostic struct {
	Severity   string `json:"severity"`
	Repository string `json:"repository"`
	ChangeSet  int    `json:"changeset"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// JSONGraphReport is the JSON output structure for a graph report.
type JSONGraphReport struct {
	RepoPath        string           `json:"repo"`
	GeneratedAt     string           `json:"generatedAt"`
	Total           int              `json:"total"`
	Merges          int              `json:"merges"`
	Tagged          int              `json:"tagged"`
	SubstateUpdates int              `json:"substateUpdates"`
	First           string           `json:"first,omitempty"`
	Last            string           `json:"last,omitempty"`
	Types           map[string]int   `json:"types"`
	Branches        map[string]int   `json:"branches"`
	SubRepos        []JSONSubRepo    `json:"subRepos"`
	Couplings       []JSONCoupling   `json:"couplings"`
	Items           []JSONChangeSet  `json:"items"`
	Diagnostics     []JSONDiagnostic `json:"diagnostics,omitempty"`
	Resolved        []string         `json:"resolvedSubRepos,omitempty"`
}

// JSONGraphWriter writes graph reports as JSON.
type JSONGraphWriter struct{}

// Write outputs the graph report as JSON.
func (w *JSONGraphWriter) Write(report *GraphReport, options OutputOptions) error {
	s := report.Summary
	subRepos := limitTop(s.SubRepos, options.Top)
	jsonSubRepos := make([]JSONSubRepo, len(subRepos))
	for i, m := range subRepos {
		jsonSubRepos[i] = JSONSubRepo{
			Name:           m.Name,
			Updates:        m.TransitionCount,
			ChangeSets:     m.ChangeSetCount,
			Contributors:   m.ContributorCount(),
			OwnershipRatio: m.OwnershipRatio(),
			BurstScore:     m.BurstScore,
			LastUpdated:    formatRFC3339(m.LastUpdatedAt),
		}
	}

	couplings := limitTop(report.Couplings, options.Top)
	jsonCouplings := make([]JSONCoupling, len(couplings))
	for i, c := range couplings {
		jsonCouplings[i] = JSONCoupling{
			A:          c.A,
			B:          c.B,
			Together:   c.CoUpdateCount,
			Jaccard:    c.JaccardCoefficient,
			Confidence: c.Confidence,
			Lift:       c.Lift,
		}
	}

	jsonReport := JSONGraphReport{
		RepoPath:        report.RepoPath,
		GeneratedAt:     report.GeneratedAt.Format(time.RFC3339),
		Total:           s.Total,
		Merges:          s.MergeCount,
		Tagged:          s.TaggedCount,
		SubstateUpdates: s.SubstateCount,
		First:           formatRFC3339(s.First),
		Last:            formatRFC3339(s.Last),
		Types:           countMap(s.Types),
		Branches:        countMap(s.Branches),
		SubRepos:        jsonSubRepos,
		Couplings:       jsonCouplings,
		Items:           jsonChangeSets(limitTop(report.Items, options.Top)),
		Diagnostics:     diagnosticsOf(report.Diagnostics),
		Resolved:        report.SubRepositories,
	}
	return writeJSON(jsonReport, options.OutputPath)
}

// JSONRangeReport is the JSON output structure for a range report.
type JSONRangeReport struct {
	RepoPath    string          `json:"repo"`
	Repository  string          `json:"repository"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
	Tag         string          `json:"tag,omitempty"`
	AncestorsOf string          `json:"ancestorsOf,omitempty"`
	GeneratedAt string          `json:"generatedAt"`
	Total       int             `json:"total"`
	Items       []JSONChangeSet `json:"items"`
}

// JSONRangeWriter writes range reports as JSON.
type JSONRangeWriter struct{}

// Write outputs the range report as JSON.
func (w *JSONRangeWriter) Write(report *RangeReport, options OutputOptions) error {
	return writeJSON(JSONRangeReport{
		RepoPath:    report.RepoPath,
		Repository:  report.Repository,
		From:        report.From,
		To:          report.To,
		Tag:         report.Tag,
		AncestorsOf: report.AncestorsOf,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Total:       len(report.Items),
		Items:       jsonChangeSets(limitTop(report.Items, options.Top)),
	}, options.OutputPath)
}

// JSONTransition is the JSON output structure for one sub-repository transition.
type JSONTransition struct {
	Name    string `json:"name"`
	Removed string `json:"from,omitempty"`
	Added   string `json:"to,omitempty"`
}

// JSONSubstateReport is the JSON output structure for a transition report.
type JSONSubstateReport struct {
	RepoPath    string           `json:"repo"`
	Rev         string           `json:"rev"`
	GeneratedAt string           `json:"generatedAt"`
	Transitions []JSONTransition `json:"transitions"`
}

// JSONSubstateWriter writes transition reports as JSON.
type JSONSubstateWriter struct{}

// Write outputs the transition report as JSON.
func (w *JSONSubstateWriter) Write(report *SubstateReport, options OutputOptions) error {
	transitions := limitTop(report.Transitions, options.Top)
	items := make([]JSONTransition, len(transitions))
	for i, s := range transitions {
		items[i] = JSONTransition{Name: s.Name, Removed: s.Removed, Added: s.Added}
	}
	return writeJSON(JSONSubstateReport{
		RepoPath:    report.RepoPath,
		Rev:         report.Rev,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Transitions: items,
	}, options.OutputPath)
}

func jsonChangeSets(items []aggregation.ChangeSetMetrics) []JSONChangeSet {
	out := make([]JSONChangeSet, len(items))
	for i, item := range items {
		out[i] = jsonChangeSet(item)
	}
	return out
}

func jsonChangeSet(item aggregation.ChangeSetMetrics) JSONChangeSet {
	return JSONChangeSet{
		ID:          item.ID,
		Hash:        item.Hash,
		Branch:      item.Branch,
		Tag:         item.Tag,
		Date:        formatRFC3339(item.When),
		Type:        item.Type.String(),
		Author:      item.Author.Name,
		Mail:        item.Author.Mail,
		Summary:     item.Summary,
		Files:       item.FileCount,
		Entropy:     item.Entropy,
		Parents:     item.ParentCount,
		Children:    item.ChildCount,
		SubRepos:    item.SubRepoCount,
		PulledCount: item.PulledCount,
	}
}

func countMap(counts []aggregation.Count) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Key] = c.Count
	}
	return m
}

func formatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func writeJSON(data interface{}, outputPath string) error {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func diagnosticsOf(items []hg.Diagnostic) []JSONDiagnostic {
	out := make([]JSONDiagnostic, len(items))
	for i, d := range items {
		out[i] = JSONDiagnostic{
			Severity:   string(d.Severity),
			Repository: d.Repository,
			ChangeSet:  d.ChangeSet,
			Field:      d.Field,
			Message:    d.Message,
		}
	}
	return out
}
