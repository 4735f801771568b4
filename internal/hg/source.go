package hg

import (
	"context"
	"fmt"
)

// TextSource provides the raw history text of a repository.
// This abstraction allows for easier testing and alternative backends.
type TextSource interface {
	// Log returns the full history of the repository at repoPath in the
	// record grammar produced by LogTemplate.
	Log(ctx context.Context, repoPath string) (string, error)

	// Diff returns the zero-context unified diff of CompositeStateFile for a
	// single revision ("12") or a revision range ("10:20").
	Diff(ctx context.Context, repoPath, rev string) (string, error)
}

// LogTemplate renders one record per change set, separated by a blank line.
const LogTemplate = `tag:{tags}\nchangeset:{rev}:{node}\nbranch:{branch}\ndate:{date}\nsummary:{desc|firstline}\nuser:{author}\nfiles:{files}\nparents:{parents}\n\n`

// SourceError reports a text source failure. Its output is never parsed.
type SourceError struct {
	Op       string
	RepoPath string
	Rev      string
	Stderr   string
	Err      error
}

func (e *SourceError) Error() string {
	target := e.RepoPath
	if e.Rev != "" {
		target = fmt.Sprintf("%s@%s", e.RepoPath, e.Rev)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Op, target, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
