package resolver

import (
	"errors"
	"fmt"
)

// ErrSubRepositoryCycle is returned when a sub-repository refers back to a
// repository that is still being resolved.
var ErrSubRepositoryCycle = errors.New("sub-repository cycle")

// ResolveError reports the repository whose resolution failed.
type ResolveError struct {
	RepoPath string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.RepoPath, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
