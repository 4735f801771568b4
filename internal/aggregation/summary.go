package aggregation

import (
	"sort"
	"time"

	"github.com/masmgr/hglineage/internal/hg"
)

// Count is a named tally.
type Count struct {
	Key   string
	Count int
}

// Summary holds statistics over a list of change sets.
type Summary struct {
	Total         int
	MergeCount    int
	TaggedCount   int
	SubstateCount int // change sets touching the composite-state file
	First         time.Time
	Last          time.Time
	Types         []Count
	Authors       []Count
	Branches      []Count
	SubRepos      []*SubRepoMetrics
}

// Summarize computes statistics over the change sets. Tallies are ordered by
// count, then key.
func Summarize(changeSets []*hg.ChangeSet) Summary {
	s := Summary{Total: len(changeSets)}
	types := make(map[string]int)
	authors := make(map[string]int)
	branches := make(map[string]int)

	for _, cs := range changeSets {
		if len(cs.Parents) > 1 || cs.Type == hg.ChangeTypeMerge {
			s.MergeCount++
		}
		if cs.Tag != "" {
			s.TaggedCount++
		}
		if cs.TouchesSubstate() {
			s.SubstateCount++
		}
		if !cs.Date.IsZero() {
			if s.First.IsZero() || cs.Date.Before(s.First) {
				s.First = cs.Date
			}
			if cs.Date.After(s.Last) {
				s.Last = cs.Date
			}
		}
		types[cs.Type.String()]++
		authors[authorLabel(cs.Author)]++
		branches[cs.Branch]++
	}

	s.Types = sortedCounts(types)
	s.Authors = sortedCounts(authors)
	s.Branches = sortedCounts(branches)

	agg := NewSubRepoAggregator()
	agg.Process(changeSets)
	s.SubRepos = agg.Sorted()
	return s
}

// Span returns the time between the oldest and newest change set.
func (s Summary) Span() time.Duration {
	if s.First.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

func authorLabel(a hg.Author) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Mail
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
