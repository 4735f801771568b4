package hg

import (
	"path/filepath"
	"strings"
	"time"
)

// CompositeStateFile is the file recording the pinned revision of every sub-repository.
const CompositeStateFile = ".hgsubstate"

// ChangeType classifies a change set by its summary prefix.
type ChangeType int

const (
	ChangeTypeFeature ChangeType = iota
	ChangeTypeSpecification
	ChangeTypeMerge
	ChangeTypeRefactoring
	ChangeTypeBugfix
	ChangeTypeSystem
)

// String returns a string representation of the change type.
func (t ChangeType) String() string {
	switch t {
	case ChangeTypeFeature:
		return "feature"
	case ChangeTypeSpecification:
		return "specification"
	case ChangeTypeMerge:
		return "merge"
	case ChangeTypeRefactoring:
		return "refactoring"
	case ChangeTypeBugfix:
		return "bugfix"
	case ChangeTypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// MarshalText encodes the change type by name.
func (t ChangeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Author represents the committer of a change set.
type Author struct {
	Name string
	Mail string
}

// ContributorKey returns a normalized identifier for grouping authors.
func (a Author) ContributorKey() string {
	if a.Mail != "" {
		return strings.ToLower(a.Mail)
	}
	return strings.ToLower(a.Name)
}

// ParentID is one entry of the parents line: a numeric id and the matching hash.
type ParentID struct {
	ID   int
	Hash string
}

// ChangeSet is one parsed record of repository history.
type ChangeSet struct {
	ID         int
	Hash       string
	Branch     string
	Tag        string
	Date       time.Time
	Summary    string
	Type       ChangeType
	Author     Author
	Files      []string
	Repository string

	// ParentIDs keeps the parents line in source order. It is nil when the
	// record has no parents line and empty when the line lists nothing, in
	// which case the predecessor id is the implicit parent.
	ParentIDs []ParentID

	// Parents and Children hold ids of change sets in the same repository,
	// filled by the resolver.
	Parents  []int
	Children []int

	// SubRepoChanges maps a lowercase sub-repository name to the change sets
	// this change set pulled into it. Only allocated when Files contains
	// CompositeStateFile.
	SubRepoChanges map[string][]*ChangeSet
}

// ShortHash returns the first 12 characters of the hash.
func (cs *ChangeSet) ShortHash() string {
	if len(cs.Hash) > 12 {
		return cs.Hash[:12]
	}
	return cs.Hash
}

// TouchesSubstate reports whether the change set modified the composite-state file.
func (cs *ChangeSet) TouchesSubstate() bool {
	for _, f := range cs.Files {
		if f == CompositeStateFile {
			return true
		}
	}
	return false
}

// HasParentsLine reports whether the record carried a parents line at all.
func (cs *ChangeSet) HasParentsLine() bool {
	return cs.ParentIDs != nil
}

// Repository owns the ordered change sets read from one repository.
type Repository struct {
	LocalPath  string
	Name       string
	ChangeSets []*ChangeSet

	byID   map[int]int
	byHash map[string]int
}

// NewRepository creates an empty repository model for the given path.
func NewRepository(localPath string) *Repository {
	return &Repository{
		LocalPath: localPath,
		Name:      repositoryName(localPath),
	}
}

// SetChangeSets assigns the change sets in source order and rebuilds the lookup indexes.
// When ids or hashes repeat, lookups return the first occurrence.
func (r *Repository) SetChangeSets(changeSets []*ChangeSet) {
	r.ChangeSets = changeSets
	r.byID = make(map[int]int, len(changeSets))
	r.byHash = make(map[string]int, len(changeSets))
	for i, cs := range changeSets {
		if _, ok := r.byID[cs.ID]; !ok {
			r.byID[cs.ID] = i
		}
		if _, ok := r.byHash[cs.Hash]; !ok {
			r.byHash[cs.Hash] = i
		}
	}
}

// ChangeSetByID returns the change set with the given id, or nil.
func (r *Repository) ChangeSetByID(id int) *ChangeSet {
	if i, ok := r.byID[id]; ok {
		return r.ChangeSets[i]
	}
	return nil
}

// ChangeSetByHash returns the change set with the given hash, or nil.
func (r *Repository) ChangeSetByHash(hash string) *ChangeSet {
	if hash == "" {
		return nil
	}
	if i, ok := r.byHash[hash]; ok {
		return r.ChangeSets[i]
	}
	return nil
}

// ChangeSetByTag returns the first change set in source order carrying the tag, or nil.
func (r *Repository) ChangeSetByTag(tag string) *ChangeSet {
	if tag == "" {
		return nil
	}
	for _, cs := range r.ChangeSets {
		if cs.Tag == tag {
			return cs
		}
	}
	return nil
}

// ParentsOf returns the resolved parents of cs.
func (r *Repository) ParentsOf(cs *ChangeSet) []*ChangeSet {
	return r.lookupAll(cs.Parents)
}

// ChildrenOf returns the resolved children of cs.
func (r *Repository) ChildrenOf(cs *ChangeSet) []*ChangeSet {
	return r.lookupAll(cs.Children)
}

func (r *Repository) lookupAll(ids []int) []*ChangeSet {
	out := make([]*ChangeSet, 0, len(ids))
	for _, id := range ids {
		if cs := r.ChangeSetByID(id); cs != nil {
			out = append(out, cs)
		}
	}
	return out
}

// SubState is a directional fragment of a composite-state diff for one sub-repository.
type SubState struct {
	Name    string
	Removed string
	Added   string
}

// IsTransition reports whether the fragment carries both the old and the new revision.
func (s SubState) IsTransition() bool {
	return s.Removed != "" && s.Added != ""
}

// TryMerge copies the field s lacks from other. Added is filled before Removed.
func (s *SubState) TryMerge(other SubState) bool {
	if s.Name != other.Name {
		return false
	}
	if s.Added == "" && other.Added != "" {
		s.Added = other.Added
		return true
	}
	if s.Removed == "" && other.Removed != "" {
		s.Removed = other.Removed
		return true
	}
	return false
}

func repositoryName(localPath string) string {
	parts := strings.FieldsFunc(localPath, func(r rune) bool {
		return r == filepath.Separator || r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
