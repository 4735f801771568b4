package resolver

import "github.com/masmgr/hglineage/internal/hg"

type ancestorFrame struct {
	cs   *hg.ChangeSet
	next int
}

// Ancestors returns the distinct transitive parents of cs, deepest first.
// cs itself is not included.
func Ancestors(repo *hg.Repository, cs *hg.ChangeSet) []*hg.ChangeSet {
	ancestors := []*hg.ChangeSet{}
	if repo == nil || cs == nil {
		return ancestors
	}

	visited := map[int]bool{cs.ID: true}
	stack := []ancestorFrame{{cs: cs}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.cs.Parents) {
			id := top.cs.Parents[top.next]
			top.next++
			if visited[id] {
				continue
			}
			visited[id] = true
			if parent := repo.ChangeSetByID(id); parent != nil {
				stack = append(stack, ancestorFrame{cs: parent})
			}
			continue
		}

		done := top.cs
		stack = stack[:len(stack)-1]
		if done != cs {
			ancestors = append(ancestors, done)
		}
	}
	return ancestors
}
