package hg

import (
	"fmt"
	"strings"
)

// LogRecord holds the raw field values of one record of the log grammar.
// It is used by sources that render history themselves.
type LogRecord struct {
	Tags    string
	ID      int
	Hash    string
	Branch  string
	Epoch   int64
	Offset  int // seconds west of UTC
	Summary string
	User    string
	Files   []string
	Parents []ParentID
}

// String renders the record, including the trailing blank line separator.
func (r LogRecord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tag:%s\n", r.Tags)
	fmt.Fprintf(&b, "changeset:%d:%s\n", r.ID, r.Hash)
	fmt.Fprintf(&b, "branch:%s\n", r.Branch)
	fmt.Fprintf(&b, "date:%d.0%s\n", r.Epoch, formatOffset(r.Offset))
	fmt.Fprintf(&b, "summary:%s\n", r.Summary)
	fmt.Fprintf(&b, "user:%s\n", r.User)
	fmt.Fprintf(&b, "files:%s\n", strings.Join(r.Files, " "))

	parents := make([]string, len(r.Parents))
	for i, p := range r.Parents {
		parents[i] = fmt.Sprintf("%d:%s", p.ID, p.Hash)
	}
	fmt.Fprintf(&b, "parents:%s\n", strings.Join(parents, " "))
	b.WriteString("\n")
	return b.String()
}

func formatOffset(offset int) string {
	if offset < 0 {
		return fmt.Sprintf("-%d", -offset)
	}
	return fmt.Sprintf("+%d", offset)
}

// FormatUser renders an author the way the log prints it.
func FormatUser(name, mail string) string {
	if mail == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, mail)
}
