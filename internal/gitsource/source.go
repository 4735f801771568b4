// Package gitsource renders Git history in the Mercurial log grammar so Git
// repositories with submodules can be resolved like Mercurial ones.
//
// Commits reachable from the branch are numbered in topological order,
// parents first. Submodule gitlinks stand in for the composite-state file:
// a commit changing a gitlink lists hg.CompositeStateFile among its files and
// its Diff shows the gitlink lines as "<sha> <path>".
package gitsource

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/masmgr/hglineage/internal/hg"
	"github.com/pmezard/go-difflib/difflib"
)

// detachedBranch names the branch of a detached HEAD.
const detachedBranch = "default"

// Source implements hg.TextSource on top of go-git.
type Source struct {
	// Branch is the short branch name to read. Empty means HEAD.
	Branch string

	mu        sync.Mutex
	histories map[string]*history
}

// New creates a Source reading the given branch, or HEAD when empty.
func New(branch string) *Source {
	return &Source{
		Branch:    strings.TrimSpace(branch),
		histories: make(map[string]*history),
	}
}

// history is the numbered commit list of one repository.
type history struct {
	branch  string
	commits []*object.Commit
	ids     map[plumbing.Hash]int
	tags    map[plumbing.Hash][]string
}

// Log renders every commit reachable from the branch, newest first.
func (s *Source) Log(ctx context.Context, repoPath string) (string, error) {
	h, err := s.history(ctx, repoPath)
	if err != nil {
		return "", &hg.SourceError{Op: "log", RepoPath: repoPath, Err: err}
	}

	var b strings.Builder
	for id := len(h.commits) - 1; id >= 0; id-- {
		if err := ctx.Err(); err != nil {
			return "", &hg.SourceError{Op: "log", RepoPath: repoPath, Err: err}
		}
		rec, err := h.record(ctx, id)
		if err != nil {
			return "", &hg.SourceError{Op: "log", RepoPath: repoPath, Err: err}
		}
		b.WriteString(rec.String())
	}
	return b.String(), nil
}

// Diff renders the gitlink changes of a single commit ("12") or between two
// commits ("10:20") as a zero-context unified diff.
func (s *Source) Diff(ctx context.Context, repoPath, rev string) (string, error) {
	h, err := s.history(ctx, repoPath)
	if err != nil {
		return "", &hg.SourceError{Op: "diff", RepoPath: repoPath, Rev: rev, Err: err}
	}
	from, to, err := h.revisions(rev)
	if err != nil {
		return "", &hg.SourceError{Op: "diff", RepoPath: repoPath, Rev: rev, Err: err}
	}
	diff, err := substateDiff(ctx, from, to)
	if err != nil {
		return "", &hg.SourceError{Op: "diff", RepoPath: repoPath, Rev: rev, Err: err}
	}
	return diff, nil
}

// history returns the cached numbered history of the repository, reading it on first use.
func (s *Source) history(ctx context.Context, repoPath string) (*history, error) {
	key := filepath.Clean(repoPath)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.histories == nil {
		s.histories = make(map[string]*history)
	}
	if h, ok := s.histories[key]; ok {
		return h, nil
	}
	h, err := readHistory(ctx, repoPath, s.Branch)
	if err != nil {
		return nil, err
	}
	s.histories[key] = h
	return h, nil
}

func readHistory(ctx context.Context, repoPath, branch string) (*history, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	ref, err := branchReference(repo, branch)
	if err != nil {
		return nil, err
	}
	head, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read head commit: %w", err)
	}

	commits, err := topological(ctx, head)
	if err != nil {
		return nil, err
	}
	h := &history{
		branch:  detachedBranch,
		commits: commits,
		ids:     make(map[plumbing.Hash]int, len(commits)),
	}
	if ref.Name().IsBranch() {
		h.branch = ref.Name().Short()
	}
	for id, c := range commits {
		h.ids[c.Hash] = id
	}

	h.tags, err = commitTags(repo)
	if err != nil {
		return nil, err
	}
	if len(h.tags[head.Hash]) == 0 {
		h.tags[head.Hash] = []string{"tip"}
	}
	return h, nil
}

func branchReference(repo *git.Repository, branch string) (*plumbing.Reference, error) {
	if branch == "" {
		ref, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolve HEAD: %w", err)
		}
		return ref, nil
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, fmt.Errorf("resolve branch %q: %w", branch, err)
	}
	return ref, nil
}

// topological orders the commits reachable from head so every parent comes
// before its children. Parents are visited in their recorded order.
func topological(ctx context.Context, head *object.Commit) ([]*object.Commit, error) {
	type frame struct {
		commit *object.Commit
		next   int
	}

	var ordered []*object.Commit
	visited := map[plumbing.Hash]bool{head.Hash: true}
	stack := []frame{{commit: head}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := &stack[len(stack)-1]
		if top.next < top.commit.NumParents() {
			parentHash := top.commit.ParentHashes[top.next]
			top.next++
			if visited[parentHash] {
				continue
			}
			visited[parentHash] = true
			parent, err := top.commit.Parent(top.next - 1)
			if err != nil {
				return nil, fmt.Errorf("read parent %s: %w", parentHash, err)
			}
			stack = append(stack, frame{commit: parent})
			continue
		}
		ordered = append(ordered, top.commit)
		stack = stack[:len(stack)-1]
	}
	return ordered, nil
}

// commitTags maps commit hashes to their sorted tag names. Annotated tags are
// peeled to the commit they point at.
func commitTags(repo *git.Repository) (map[plumbing.Hash][]string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	tags := make(map[plumbing.Hash][]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tag, err := repo.TagObject(target); err == nil {
			commit, err := tag.Commit()
			if err != nil {
				return nil
			}
			target = commit.Hash
		}
		tags[target] = append(tags[target], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	for _, names := range tags {
		sort.Strings(names)
	}
	return tags, nil
}

// record renders the commit with the given id.
func (h *history) record(ctx context.Context, id int) (hg.LogRecord, error) {
	c := h.commits[id]
	files, err := changedFiles(ctx, c)
	if err != nil {
		return hg.LogRecord{}, fmt.Errorf("changes of %s: %w", c.Hash, err)
	}

	_, offset := c.Author.When.Zone()
	return hg.LogRecord{
		Tags:    strings.Join(h.tags[c.Hash], " "),
		ID:      id,
		Hash:    c.Hash.String(),
		Branch:  h.branch,
		Epoch:   c.Author.When.Unix(),
		Offset:  -offset,
		Summary: firstLine(c.Message),
		User:    hg.FormatUser(c.Author.Name, c.Author.Email),
		Files:   files,
		Parents: h.parents(id),
	}, nil
}

// parents lists the parents of a commit, or nothing when the only parent is
// the previous id.
func (h *history) parents(id int) []hg.ParentID {
	c := h.commits[id]
	if len(c.ParentHashes) == 1 && h.ids[c.ParentHashes[0]] == id-1 {
		return []hg.ParentID{}
	}
	parents := make([]hg.ParentID, 0, len(c.ParentHashes))
	for _, ph := range c.ParentHashes {
		if pid, ok := h.ids[ph]; ok {
			parents = append(parents, hg.ParentID{ID: pid, Hash: ph.String()})
		}
	}
	return parents
}

// revisions resolves a single id or an "a:b" id range into the commits to compare.
// A single commit is compared with its first parent.
func (h *history) revisions(rev string) (*object.Commit, *object.Commit, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return nil, nil, fmt.Errorf("revision not specified")
	}
	if from, to, ok := strings.Cut(rev, ":"); ok {
		a, err := h.commit(from)
		if err != nil {
			return nil, nil, err
		}
		b, err := h.commit(to)
		if err != nil {
			return nil, nil, err
		}
		return a, b, nil
	}

	c, err := h.commit(rev)
	if err != nil {
		return nil, nil, err
	}
	if c.NumParents() == 0 {
		return nil, c, nil
	}
	parent, err := c.Parent(0)
	if err != nil {
		return nil, nil, fmt.Errorf("read parent of %s: %w", c.Hash, err)
	}
	return parent, c, nil
}

func (h *history) commit(rev string) (*object.Commit, error) {
	id, err := strconv.Atoi(strings.TrimSpace(rev))
	if err != nil {
		return nil, fmt.Errorf("invalid revision %q: %w", rev, err)
	}
	if id < 0 || id >= len(h.commits) {
		return nil, fmt.Errorf("unknown revision %d", id)
	}
	return h.commits[id], nil
}

// changedFiles lists the paths changed against the first parent, sorted.
// hg.CompositeStateFile is added when a gitlink changed.
func changedFiles(ctx context.Context, c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	parentTree := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(changes)+1)
	files := make([]string, 0, len(changes)+1)
	add := func(path string) {
		if path != "" && !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	gitlinkChanged := false
	for _, change := range changes {
		if change.From.TreeEntry.Mode == filemode.Submodule || change.To.TreeEntry.Mode == filemode.Submodule {
			gitlinkChanged = true
		}
		if change.To.Name != "" {
			add(change.To.Name)
		} else {
			add(change.From.Name)
		}
	}
	if gitlinkChanged {
		add(hg.CompositeStateFile)
	}
	sort.Strings(files)
	return files, nil
}

// substateDiff renders the gitlinks of both commits as composite-state lines
// and diffs them with no context. A nil from is an empty state.
func substateDiff(ctx context.Context, from, to *object.Commit) (string, error) {
	a, err := gitlinkLines(ctx, from)
	if err != nil {
		return "", err
	}
	b, err := gitlinkLines(ctx, to)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "a/" + hg.CompositeStateFile,
		ToFile:   "b/" + hg.CompositeStateFile,
		Context:  0,
	})
}

// gitlinkLines returns "<sha> <path>\n" for every submodule entry of the commit tree, sorted by path.
func gitlinkLines(ctx context.Context, c *object.Commit) ([]string, error) {
	if c == nil {
		return nil, nil
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	var lines []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if entry.Mode == filemode.Submodule {
			lines = append(lines, fmt.Sprintf("%s %s\n", entry.Hash, name))
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		return gitlinkPath(lines[i]) < gitlinkPath(lines[j])
	})
	return lines, nil
}

func gitlinkPath(line string) string {
	_, path, _ := strings.Cut(strings.TrimSuffix(line, "\n"), " ")
	return path
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = message[:idx]
	}
	return strings.TrimSuffix(message, "\r")
}

// Compile-time interface conformance check.
var _ hg.TextSource = (*Source)(nil)
