package hg

import (
	"context"
	"path/filepath"
	"sync"
)

// MockTextSource is a test double for TextSource.
// It serves predefined log and diff texts keyed by cleaned repository path.
type MockTextSource struct {
	mu       sync.Mutex
	logs     map[string]string
	diffs    map[string]map[string]string
	errors   map[string]error
	logCalls map[string]int
}

// NewMockTextSource creates an empty MockTextSource.
func NewMockTextSource() *MockTextSource {
	return &MockTextSource{
		logs:     make(map[string]string),
		diffs:    make(map[string]map[string]string),
		errors:   make(map[string]error),
		logCalls: make(map[string]int),
	}
}

// SetLog registers the log text of a repository.
func (m *MockTextSource) SetLog(repoPath, text string) *MockTextSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[filepath.Clean(repoPath)] = text
	return m
}

// SetDiff registers the composite-state diff of a revision.
func (m *MockTextSource) SetDiff(repoPath, rev, text string) *MockTextSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := filepath.Clean(repoPath)
	if m.diffs[key] == nil {
		m.diffs[key] = make(map[string]string)
	}
	m.diffs[key][rev] = text
	return m
}

// SetError makes every call for the repository fail with err.
func (m *MockTextSource) SetError(repoPath string, err error) *MockTextSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[filepath.Clean(repoPath)] = err
	return m
}

// LogCalls returns how many times Log was called for the repository.
func (m *MockTextSource) LogCalls(repoPath string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logCalls[filepath.Clean(repoPath)]
}

// Log returns the registered log text. Unknown repositories have an empty log.
func (m *MockTextSource) Log(ctx context.Context, repoPath string) (string, error) {
	key := filepath.Clean(repoPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logCalls[key]++
	if err := ctx.Err(); err != nil {
		return "", &SourceError{Op: "log", RepoPath: repoPath, Err: err}
	}
	if err := m.errors[key]; err != nil {
		return "", &SourceError{Op: "log", RepoPath: repoPath, Err: err}
	}
	return m.logs[key], nil
}

// Diff returns the registered diff text, or an empty diff.
func (m *MockTextSource) Diff(ctx context.Context, repoPath, rev string) (string, error) {
	key := filepath.Clean(repoPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", &SourceError{Op: "diff", RepoPath: repoPath, Rev: rev, Err: err}
	}
	if err := m.errors[key]; err != nil {
		return "", &SourceError{Op: "diff", RepoPath: repoPath, Rev: rev, Err: err}
	}
	return m.diffs[key][rev], nil
}

// Compile-time interface conformance check.
var _ TextSource = (*MockTextSource)(nil)
