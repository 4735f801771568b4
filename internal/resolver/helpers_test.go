package resolver

import (
	"fmt"
	"strings"

	"github.com/masmgr/hglineage/internal/hg"
)

func hash(n int) string {
	return fmt.Sprintf("%040x", n)
}

// logRecord builds a record on branch "default" whose parents line is empty,
// so the predecessor id is the implicit parent.
func logRecord(id int, files ...string) hg.LogRecord {
	return hg.LogRecord{
		ID:      id,
		Hash:    hash(id),
		Branch:  "default",
		Epoch:   int64(1700000000 + id*60),
		Summary: fmt.Sprintf("F: change %d", id),
		User:    hg.FormatUser("Alice", "alice@example.com"),
		Files:   files,
		Parents: []hg.ParentID{},
	}
}

// logText renders records newest first, the order the log prints them.
func logText(records ...hg.LogRecord) string {
	var b strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		b.WriteString(records[i].String())
	}
	return b.String()
}

// linearLog renders ids from..to with hashes offset by base.
func linearLog(base, from, to int) string {
	records := make([]hg.LogRecord, 0, to-from+1)
	for id := from; id <= to; id++ {
		rec := logRecord(id)
		rec.Hash = hash(base + id)
		records = append(records, rec)
	}
	return logText(records...)
}

func substateDiff(lines ...string) string {
	return "diff -r 000000000000 -r 111111111111 .hgsubstate\n" +
		"--- a/.hgsubstate\n" +
		"+++ b/.hgsubstate\n" +
		"@@ -1,1 +1,1 @@\n" +
		strings.Join(lines, "\n") + "\n"
}

func removed(h, name string) string { return "-" + h + " " + name }
func added(h, name string) string   { return "+" + h + " " + name }

func repository(changeSets ...*hg.ChangeSet) *hg.Repository {
	repo := hg.NewRepository("/work/repo")
	repo.SetChangeSets(changeSets)
	return repo
}

func changeSet(id int, branch, tag string) *hg.ChangeSet {
	return &hg.ChangeSet{ID: id, Hash: hash(id), Branch: branch, Tag: tag}
}

func ids(changeSets []*hg.ChangeSet) []int {
	out := make([]int, len(changeSets))
	for i, cs := range changeSets {
		out[i] = cs.ID
	}
	return out
}
