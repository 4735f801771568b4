package hg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// tipTag is reported by the log for the newest change set; it is not a real tag.
const tipTag = "tip"

var (
	changesetPattern = regexp.MustCompile(`(?m)^changeset:(\d{1,6}):([0-9a-fA-F]{40})`)
	branchPattern    = regexp.MustCompile(`(?m)^branch:(.*)$`)
	tagPattern       = regexp.MustCompile(`(?m)^tag:(.*)$`)
	datePattern      = regexp.MustCompile(`(?m)^date:(.*)\.0(-|\+)(\d*)`)
	summaryPattern   = regexp.MustCompile(`(?m)^summary:(.*)$`)
	filesPattern     = regexp.MustCompile(`(?m)^files:(.*)$`)
	parentsPattern   = regexp.MustCompile(`(?m)^parents:(.*)$`)

	// The name class also spans line breaks, so without a mail address the
	// capture runs into the next field label and stops at its colon.
	userPattern = regexp.MustCompile(`(?m)^user:([^<:]*)(?:<([^>:]*)>)?`)
)

// recordSeparator separates two records in the log output.
const recordSeparator = "\n\n"

// ParseLog splits the full log text into records and parses each of them,
// preserving source order.
func ParseLog(text, repoPath string, diags *Diagnostics) []*ChangeSet {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	records := strings.Split(text, recordSeparator)
	changeSets := make([]*ChangeSet, 0, len(records))
	for _, record := range records {
		if record == "" {
			continue
		}
		changeSets = append(changeSets, ParseChangeSet(record, repoPath, diags))
	}
	return changeSets
}

// ParseChangeSet parses one log record. Each field is extracted on its own;
// a missing or malformed field is reported to diags and left at its zero value.
func ParseChangeSet(record, repoPath string, diags *Diagnostics) *ChangeSet {
	cs := &ChangeSet{Repository: repositoryName(repoPath)}
	p := recordParser{cs: cs, diags: diags}

	p.parseIdentity(record)
	p.parseBranch(record)
	p.parseTag(record)
	p.parseDate(record)
	p.parseSummary(record)
	p.parseUser(record)
	p.parseFiles(record)
	p.parseParents(record)

	return cs
}

type recordParser struct {
	cs    *ChangeSet
	diags *Diagnostics
}

func (p *recordParser) warn(field, format string, args ...interface{}) {
	p.diags.Add(Diagnostic{
		Severity:   SeverityWarning,
		Repository: p.cs.Repository,
		ChangeSet:  p.cs.ID,
		Field:      field,
		Message:    fmt.Sprintf(format, args...),
	})
}

func (p *recordParser) parseIdentity(record string) {
	m := changesetPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("changeset", "changeset line missing or malformed")
		return
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		p.warn("changeset", "invalid changeset id %q", m[1])
	} else {
		p.cs.ID = id
	}
	p.cs.Hash = m[2]
}

func (p *recordParser) parseBranch(record string) {
	m := branchPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("branch", "branch line missing")
		return
	}
	p.cs.Branch = trimCR(m[1])
}

func (p *recordParser) parseTag(record string) {
	m := tagPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("tag", "tag line missing")
		return
	}
	if tag := trimCR(m[1]); tag != tipTag {
		p.cs.Tag = tag
	}
}

func (p *recordParser) parseDate(record string) {
	m := datePattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("date", "date line missing or malformed")
		return
	}
	seconds, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		p.warn("date", "invalid unix timestamp %q", m[1])
		seconds = 0
	}
	p.cs.Date = time.Unix(seconds, 0).Local()
}

func (p *recordParser) parseSummary(record string) {
	m := summaryPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("summary", "summary line missing")
		return
	}
	p.cs.Type, p.cs.Summary = ClassifySummary(trimCR(m[1]))
}

func (p *recordParser) parseUser(record string) {
	m := userPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("user", "user line missing")
		return
	}
	name := strings.TrimSuffix(m[1], "files")
	p.cs.Author = Author{
		Name: strings.TrimSpace(name),
		Mail: strings.TrimSpace(m[2]),
	}
}

func (p *recordParser) parseFiles(record string) {
	m := filesPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("files", "files line missing")
		return
	}
	p.cs.Files = strings.Fields(m[1])
	if p.cs.TouchesSubstate() {
		p.cs.SubRepoChanges = make(map[string][]*ChangeSet)
	}
}

func (p *recordParser) parseParents(record string) {
	m := parentsPattern.FindStringSubmatch(record)
	if m == nil {
		p.warn("parents", "parents line missing")
		return
	}
	p.cs.ParentIDs = []ParentID{}
	seen := make(map[int]struct{})
	for _, entry := range strings.Fields(m[1]) {
		parts := strings.FieldsFunc(entry, func(r rune) bool { return r == ':' })
		if len(parts) == 0 {
			continue
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		parent := ParentID{ID: id}
		if len(parts) > 1 {
			parent.Hash = parts[1]
		}
		p.cs.ParentIDs = append(p.cs.ParentIDs, parent)
	}
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
