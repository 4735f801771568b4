package gitsource

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/masmgr/hglineage/internal/hg"
	"github.com/masmgr/hglineage/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coreA = plumbing.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	coreB = plumbing.NewHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	utilC = plumbing.NewHash("cccccccccccccccccccccccccccccccccccccccc")
)

// linearHistory builds four commits:
//
//	0 README
//	1 adds gitlink core@A            (tag v1.0)
//	2 edits README                   (annotated tag v2.0)
//	3 moves core to B, adds libs/util@C
func linearHistory(t *testing.T) (*fixture, []plumbing.Hash) {
	f := newFixture(t, t.TempDir())
	readme1 := f.blob("hello\n")
	readme2 := f.blob("hello again\n")

	c0 := f.commit("F: initial\n\nlonger description", f.tree(file("README", readme1)))
	c1 := f.commit("S: add core", f.tree(file("README", readme1), gitlink("core", coreA)), c0)
	c2 := f.commit("B: fix readme", f.tree(file("README", readme2), gitlink("core", coreA)), c1)
	libs := f.tree(gitlink("util", utilC))
	c3 := f.commit("R: bump core", f.tree(file("README", readme2), gitlink("core", coreB), subtree("libs", libs)), c2)

	f.setBranch("master", c3)
	f.tag("v1.0", c1, false)
	f.tag("v2.0", c2, true)
	return f, []plumbing.Hash{c0, c1, c2, c3}
}

func TestSource_Log(t *testing.T) {
	f, commits := linearHistory(t)

	text, err := New("").Log(context.Background(), f.dir)
	require.NoError(t, err)

	diags := hg.NewDiagnostics(nil)
	changeSets := hg.ParseLog(text, f.dir, diags)
	require.Empty(t, diags.Items())
	require.Len(t, changeSets, 4)

	for i, cs := range changeSets {
		id := len(changeSets) - 1 - i
		assert.Equal(t, id, cs.ID, "records are listed newest first")
		assert.Equal(t, commits[id].String(), cs.Hash)
		assert.Equal(t, "master", cs.Branch)
		assert.Equal(t, "Test Author", cs.Author.Name)
		assert.Equal(t, "test@example.com", cs.Author.Mail)
		assert.Empty(t, cs.ParentIDs, "linear parents are implicit")
		assert.True(t, cs.HasParentsLine())
	}

	head, tagged2, tagged1, root := changeSets[0], changeSets[1], changeSets[2], changeSets[3]
	assert.Equal(t, "", head.Tag, "tip is not a tag")
	assert.Equal(t, "v2.0", tagged2.Tag)
	assert.Equal(t, "v1.0", tagged1.Tag)

	assert.Equal(t, []string{hg.CompositeStateFile, "core", "libs/util"}, head.Files)
	assert.Equal(t, []string{"README"}, tagged2.Files)
	assert.Equal(t, []string{hg.CompositeStateFile, "core"}, tagged1.Files)
	assert.NotNil(t, tagged1.SubRepoChanges)
	assert.Nil(t, tagged2.SubRepoChanges)

	assert.Equal(t, "initial", root.Summary)
	assert.Equal(t, hg.ChangeTypeFeature, root.Type)
	assert.Equal(t, hg.ChangeTypeBugfix, tagged2.Type)
	assert.Equal(t, hg.ChangeTypeRefactoring, head.Type)

	c0, err := f.repo.CommitObject(commits[0])
	require.NoError(t, err)
	assert.Equal(t, c0.Author.When.Unix(), root.Date.Unix())
	assert.Contains(t, text, "date:"+"1704067260.0-32400\n")
}

func TestSource_Diff(t *testing.T) {
	f, _ := linearHistory(t)
	src := New("")

	tests := []struct {
		name     string
		rev      string
		expected []hg.SubState
	}{
		{
			name: "Gitlink moved and added",
			rev:  "3",
			expected: []hg.SubState{
				{Name: "core", Removed: coreA.String(), Added: coreB.String()},
				{Name: "libs/util", Added: utilC.String()},
			},
		},
		{
			name:     "Gitlink added",
			rev:      "1",
			expected: []hg.SubState{{Name: "core", Added: coreA.String()}},
		},
		{
			name:     "No gitlink change",
			rev:      "2",
			expected: []hg.SubState{},
		},
		{
			name:     "Root commit",
			rev:      "0",
			expected: []hg.SubState{},
		},
		{
			name: "Range",
			rev:  "1:3",
			expected: []hg.SubState{
				{Name: "core", Removed: coreA.String(), Added: coreB.String()},
				{Name: "libs/util", Added: utilC.String()},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := src.Diff(context.Background(), f.dir, tt.rev)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hg.MergeSubStates(hg.ParseSubStates(diff)))
		})
	}
}

func TestSource_DiffHeaders(t *testing.T) {
	f, _ := linearHistory(t)

	diff, err := New("").Diff(context.Background(), f.dir, "1")
	require.NoError(t, err)

	assert.Contains(t, diff, "--- a/"+hg.CompositeStateFile)
	assert.Contains(t, diff, "+++ b/"+hg.CompositeStateFile)
	assert.Contains(t, diff, "+"+coreA.String()+" core\n")
}

func TestSource_DiffErrors(t *testing.T) {
	f, _ := linearHistory(t)
	src := New("")

	for _, rev := range []string{"", "9", "x", "1:9", "-1"} {
		t.Run(rev, func(t *testing.T) {
			_, err := src.Diff(context.Background(), f.dir, rev)
			var srcErr *hg.SourceError
			require.True(t, errors.As(err, &srcErr), "got %v", err)
			assert.Equal(t, "diff", srcErr.Op)
		})
	}
}

func TestSource_MergeParents(t *testing.T) {
	f := newFixture(t, t.TempDir())
	tree := f.tree(file("README", f.blob("x\n")))
	c0 := f.commit("F: root", tree)
	left := f.commit("F: left", tree, c0)
	right := f.commit("F: right", tree, c0)
	merge := f.commit("Merge", tree, left, right)
	f.setBranch("master", merge)

	text, err := New("").Log(context.Background(), f.dir)
	require.NoError(t, err)
	changeSets := hg.ParseLog(text, f.dir, nil)
	require.Len(t, changeSets, 4)

	byID := map[int]*hg.ChangeSet{}
	for _, cs := range changeSets {
		byID[cs.ID] = cs
	}
	assert.Equal(t, left.String(), byID[1].Hash)
	assert.Equal(t, right.String(), byID[2].Hash)
	assert.Empty(t, byID[1].ParentIDs)
	assert.Equal(t, []hg.ParentID{{ID: 0, Hash: c0.String()}}, byID[2].ParentIDs)
	assert.Equal(t, []hg.ParentID{{ID: 1, Hash: left.String()}, {ID: 2, Hash: right.String()}}, byID[3].ParentIDs)
	assert.Equal(t, hg.ChangeTypeMerge, byID[3].Type)
}

func TestSource_Branch(t *testing.T) {
	f, commits := linearHistory(t)
	f.setBranch("feature", commits[1])

	text, err := New("feature").Log(context.Background(), f.dir)
	require.NoError(t, err)
	changeSets := hg.ParseLog(text, f.dir, nil)
	require.Len(t, changeSets, 2)
	assert.Equal(t, "feature", changeSets[0].Branch)
	assert.Equal(t, "v1.0", changeSets[0].Tag)

	_, err = New("missing").Log(context.Background(), f.dir)
	var srcErr *hg.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "log", srcErr.Op)
}

func TestSource_NotARepository(t *testing.T) {
	_, err := New("").Log(context.Background(), t.TempDir())
	var srcErr *hg.SourceError
	require.True(t, errors.As(err, &srcErr))
}

func TestSource_Cancelled(t *testing.T) {
	f, _ := linearHistory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("").Log(ctx, f.dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_ResolvesSubmoduleRanges(t *testing.T) {
	root := t.TempDir()

	super := newFixture(t, root)
	sub := newFixture(t, filepath.Join(root, "core"))
	subTree := sub.tree(file("lib.go", sub.blob("package core\n")))
	s0 := sub.commit("F: core start", subTree)
	s1 := sub.commit("F: core api", subTree, s0)
	s2 := sub.commit("B: core fix", subTree, s1)
	sub.setBranch("master", s2)

	readme := super.blob("product\n")
	p0 := super.commit("F: product", super.tree(file("README", readme), gitlink("core", s0)))
	p1 := super.commit("R: bump core", super.tree(file("README", readme), gitlink("core", s2)), p0)
	super.setBranch("master", p1)

	r := resolver.New(New(""))
	repo, err := r.Resolve(context.Background(), root)
	require.NoError(t, err)

	bumped := repo.ChangeSetByID(1)
	require.NotNil(t, bumped)
	require.Contains(t, bumped.SubRepoChanges, "core")
	assert.Equal(t, []string{s1.String(), s2.String()}, hashes(bumped.SubRepoChanges["core"]))
	assert.Equal(t, []int{0}, bumped.Parents)

	core := r.SubRepository("core")
	require.NotNil(t, core)
	assert.Len(t, core.ChangeSets, 3)
}

func hashes(changeSets []*hg.ChangeSet) []string {
	out := make([]string, len(changeSets))
	for i, cs := range changeSets {
		out[i] = cs.Hash
	}
	return out
}
