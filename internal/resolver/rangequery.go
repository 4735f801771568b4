package resolver

import (
	"sort"

	"github.com/masmgr/hglineage/internal/hg"
)

// ChangeSetsBetween returns the change sets on the branch of the change set
// fromHash names whose id is greater than its id and not greater than the id
// of toHash, in ascending id order. Unknown hashes yield an empty list.
func ChangeSetsBetween(repo *hg.Repository, fromHash, toHash string) []*hg.ChangeSet {
	result := []*hg.ChangeSet{}
	if repo == nil {
		return result
	}
	lower := repo.ChangeSetByHash(fromHash)
	upper := repo.ChangeSetByHash(toHash)
	if lower == nil || upper == nil {
		return result
	}

	for _, cs := range repo.ChangeSets {
		if cs.Branch == lower.Branch && cs.ID > lower.ID && cs.ID <= upper.ID {
			result = append(result, cs)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// ChangeSetsBetweenTags returns the change sets introduced by a tag: those
// after the nearest earlier tagged change set on the same branch, up to and
// including the tagged one.
func ChangeSetsBetweenTags(repo *hg.Repository, tag string) []*hg.ChangeSet {
	if repo == nil {
		return []*hg.ChangeSet{}
	}
	tagged := repo.ChangeSetByTag(tag)
	if tagged == nil {
		return []*hg.ChangeSet{}
	}
	previous := PreviousTagged(repo, tagged)
	if previous == nil {
		return []*hg.ChangeSet{}
	}
	return ChangeSetsBetween(repo, previous.Hash, tagged.Hash)
}

// PreviousTagged returns the tagged change set with the largest id smaller
// than cs.ID on the branch of cs, or nil.
func PreviousTagged(repo *hg.Repository, cs *hg.ChangeSet) *hg.ChangeSet {
	var previous *hg.ChangeSet
	for _, candidate := range repo.ChangeSets {
		if candidate.Tag == "" || candidate.Branch != cs.Branch || candidate.ID >= cs.ID {
			continue
		}
		if previous == nil || candidate.ID > previous.ID {
			previous = candidate
		}
	}
	return previous
}
