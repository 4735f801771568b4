package gitsource

import (
	"os"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// fixture writes objects straight into a repository so tests control every
// tree entry, gitlinks included.
type fixture struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	when time.Time
}

// newFixture initializes a non-bare repository in dir.
func newFixture(t *testing.T, dir string) *fixture {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return &fixture{
		t:    t,
		dir:  dir,
		repo: repo,
		when: time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600)),
	}
}

func (f *fixture) blob(content string) plumbing.Hash {
	f.t.Helper()
	obj := f.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		f.t.Fatalf("blob writer: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		f.t.Fatalf("write blob: %v", err)
	}
	if err := w.Close(); err != nil {
		f.t.Fatalf("close blob: %v", err)
	}
	h, err := f.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		f.t.Fatalf("store blob: %v", err)
	}
	return h
}

func (f *fixture) tree(entries ...object.TreeEntry) plumbing.Hash {
	f.t.Helper()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	tree := &object.Tree{Entries: entries}
	obj := f.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		f.t.Fatalf("encode tree: %v", err)
	}
	h, err := f.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		f.t.Fatalf("store tree: %v", err)
	}
	return h
}

// commit stores a commit one minute after the previous one.
func (f *fixture) commit(message string, tree plumbing.Hash, parents ...plumbing.Hash) plumbing.Hash {
	f.t.Helper()
	f.when = f.when.Add(time.Minute)
	sig := object.Signature{Name: "Test Author", Email: "test@example.com", When: f.when}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := f.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		f.t.Fatalf("encode commit: %v", err)
	}
	h, err := f.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		f.t.Fatalf("store commit: %v", err)
	}
	return h
}

// setBranch points a branch at h; "master" is also what HEAD refers to.
func (f *fixture) setBranch(name string, h plumbing.Hash) {
	f.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), h)
	if err := f.repo.Storer.SetReference(ref); err != nil {
		f.t.Fatalf("SetReference: %v", err)
	}
	if name == "master" {
		head := plumbing.NewSymbolicReference(plumbing.HEAD, ref.Name())
		if err := f.repo.Storer.SetReference(head); err != nil {
			f.t.Fatalf("SetReference HEAD: %v", err)
		}
	}
}

func (f *fixture) tag(name string, h plumbing.Hash, annotated bool) {
	f.t.Helper()
	var opts *git.CreateTagOptions
	if annotated {
		opts = &git.CreateTagOptions{
			Message: "release " + name,
			Tagger:  &object.Signature{Name: "Test Author", Email: "test@example.com", When: f.when},
		}
	}
	if _, err := f.repo.CreateTag(name, h, opts); err != nil {
		f.t.Fatalf("CreateTag %s: %v", name, err)
	}
}

func file(name string, h plumbing.Hash) object.TreeEntry {
	return object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: h}
}

func subtree(name string, h plumbing.Hash) object.TreeEntry {
	return object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: h}
}

func gitlink(name string, h plumbing.Hash) object.TreeEntry {
	return object.TreeEntry{Name: name, Mode: filemode.Submodule, Hash: h}
}
