package hg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultExecutable is the Mercurial executable looked up on PATH.
const DefaultExecutable = "hg"

// CLISource reads history by running the Mercurial executable.
type CLISource struct {
	Executable string
}

// NewCLISource creates a source running the given executable, or "hg" when empty.
func NewCLISource(executable string) *CLISource {
	if strings.TrimSpace(executable) == "" {
		executable = DefaultExecutable
	}
	return &CLISource{Executable: executable}
}

// Log runs "hg log" with LogTemplate.
func (s *CLISource) Log(ctx context.Context, repoPath string) (string, error) {
	return s.run(ctx, "log", repoPath, "", []string{"log", "--template", LogTemplate})
}

// Diff runs "hg diff" restricted to the composite-state file with zero context.
// A rev containing ':' is passed as a range, anything else as a single change.
func (s *CLISource) Diff(ctx context.Context, repoPath, rev string) (string, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return "", &SourceError{Op: "diff", RepoPath: repoPath, Err: fmt.Errorf("revision not specified")}
	}
	flag := "-c"
	if strings.Contains(rev, ":") {
		flag = "-r"
	}
	return s.run(ctx, "diff", repoPath, rev, []string{"diff", flag, rev, CompositeStateFile, "-U", "0"})
}

func (s *CLISource) run(ctx context.Context, op, repoPath, rev string, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &SourceError{Op: op, RepoPath: repoPath, Rev: rev, Err: err}
	}
	cmd := exec.CommandContext(ctx, s.Executable, args...)
	cmd.Dir = repoPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &SourceError{
			Op:       op,
			RepoPath: repoPath,
			Rev:      rev,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return stdout.String(), nil
}

// Compile-time interface conformance check.
var _ TextSource = (*CLISource)(nil)
