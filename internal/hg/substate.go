package hg

import (
	"regexp"
	"strings"
)

var (
	removedSubStatePattern = regexp.MustCompile(`-([0-9a-fA-F]{40})\s(.*)`)
	addedSubStatePattern   = regexp.MustCompile(`\+([0-9a-fA-F]{40})\s(.*)`)
)

// ParseSubState classifies one line of a zero-context diff over the
// composite-state file. Lines that are neither a removal nor an addition of a
// "<hash> <name>" record yield a fragment with an empty name.
func ParseSubState(line string) SubState {
	line = trimCR(line)
	var s SubState
	if m := removedSubStatePattern.FindStringSubmatch(line); m != nil {
		s.Removed = m[1]
		s.Name = m[2]
	}
	if m := addedSubStatePattern.FindStringSubmatch(line); m != nil {
		s.Added = m[1]
		s.Name = m[2]
	}
	return s
}

// ParseSubStates parses every line of a composite-state diff and drops the
// fragments that carry no sub-repository.
func ParseSubStates(diff string) []SubState {
	lines := strings.Split(diff, "\n")
	states := make([]SubState, 0, len(lines))
	for _, line := range lines {
		if s := ParseSubState(line); s.Name != "" {
			states = append(states, s)
		}
	}
	return states
}

// MergeSubStates pairs the removal and addition fragments of the same
// sub-repository into transitions.
//
// Fragments are visited in order. A fragment merges with the first fragment of
// the same name whose Added and Removed both differ from its own; the target
// is then dropped from the result. Earlier merges are visible to later
// candidates. The input slice is left untouched.
func MergeSubStates(states []SubState) []SubState {
	working := make([]SubState, 0, len(states))
	for _, s := range states {
		if s.Name != "" {
			working = append(working, s)
		}
	}

	consumed := make([]bool, len(working))
	for i := range working {
		j := mergeTarget(working, i)
		if j < 0 {
			continue
		}
		if working[i].TryMerge(working[j]) {
			consumed[j] = true
		}
	}

	merged := make([]SubState, 0, len(working))
	for i, s := range working {
		if !consumed[i] {
			merged = append(merged, s)
		}
	}
	return merged
}

func mergeTarget(states []SubState, i int) int {
	candidate := states[i]
	for j, s := range states {
		if s.Name == candidate.Name &&
			s.Added != candidate.Added &&
			s.Removed != candidate.Removed {
			return j
		}
	}
	return -1
}
