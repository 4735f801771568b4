package aggregation

import (
	"sort"
	"time"

	"github.com/masmgr/hglineage/internal/hg"
)

// SubRepoMetrics holds aggregated metrics for one sub-repository as seen from
// the change sets of its owner.
type SubRepoMetrics struct {
	Name                       string
	TransitionCount            int // owner change sets that moved it
	ChangeSetCount             int // change sets pulled in through those transitions
	LastUpdatedAt              time.Time
	TransitionTimes            []time.Time
	BurstScore                 float64 // set by burst.Calculator
	Contributors               map[string]struct{}
	ContributorChangeSetCounts map[string]int
	TypeCounts                 map[hg.ChangeType]int
}

// NewSubRepoMetrics creates a new SubRepoMetrics instance.
func NewSubRepoMetrics(name string) *SubRepoMetrics {
	return &SubRepoMetrics{
		Name:                       name,
		Contributors:               make(map[string]struct{}),
		ContributorChangeSetCounts: make(map[string]int),
		TypeCounts:                 make(map[hg.ChangeType]int),
	}
}

// ContributorCount returns number of unique contributors.
func (m *SubRepoMetrics) ContributorCount() int {
	return len(m.Contributors)
}

// OwnershipRatio returns the proportion of pulled change sets written by the
// top contributor. No change sets means full ownership.
func (m *SubRepoMetrics) OwnershipRatio() float64 {
	if m.ChangeSetCount == 0 || len(m.ContributorChangeSetCounts) == 0 {
		return 1.0
	}

	maxCount := 0
	for _, count := range m.ContributorChangeSetCounts {
		if count > maxCount {
			maxCount = count
		}
	}
	return float64(maxCount) / float64(m.ChangeSetCount)
}

// AddTransition adds one owner change set and the sub-repository change sets it pulled in.
func (m *SubRepoMetrics) AddTransition(owner *hg.ChangeSet, pulled []*hg.ChangeSet) {
	m.TransitionCount++
	if !owner.Date.IsZero() {
		m.TransitionTimes = append(m.TransitionTimes, owner.Date)
	}
	if m.LastUpdatedAt.IsZero() || owner.Date.After(m.LastUpdatedAt) {
		m.LastUpdatedAt = owner.Date
	}

	for _, cs := range pulled {
		m.ChangeSetCount++
		key := cs.Author.ContributorKey()
		m.Contributors[key] = struct{}{}
		m.ContributorChangeSetCounts[key]++
		m.TypeCounts[cs.Type]++
	}
}

// SubRepoAggregator aggregates sub-repository transitions from change sets.
type SubRepoAggregator struct {
	metrics map[string]*SubRepoMetrics
}

// NewSubRepoAggregator creates a new aggregator.
func NewSubRepoAggregator() *SubRepoAggregator {
	return &SubRepoAggregator{
		metrics: make(map[string]*SubRepoMetrics),
	}
}

// Process aggregates the sub-repository changes of every change set.
func (a *SubRepoAggregator) Process(changeSets []*hg.ChangeSet) map[string]*SubRepoMetrics {
	for _, cs := range changeSets {
		for name, pulled := range cs.SubRepoChanges {
			if _, exists := a.metrics[name]; !exists {
				a.metrics[name] = NewSubRepoMetrics(name)
			}
			a.metrics[name].AddTransition(cs, pulled)
		}
	}
	return a.metrics
}

// Sorted returns the metrics ordered by pulled change sets, then name.
func (a *SubRepoAggregator) Sorted() []*SubRepoMetrics {
	out := make([]*SubRepoMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChangeSetCount != out[j].ChangeSetCount {
			return out[i].ChangeSetCount > out[j].ChangeSetCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
