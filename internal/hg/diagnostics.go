package hg

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a recoverable problem found while parsing or resolving.
type Diagnostic struct {
	Severity   Severity
	Repository string
	ChangeSet  int
	Field      string
	Message    string
}

// String formats the diagnostic on one line.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s@%d %s: %s", d.Severity, d.Repository, d.ChangeSet, d.Field, d.Message)
}

// Diagnostics collects diagnostics and forwards them to a logger.
// A nil *Diagnostics discards everything. It is safe for concurrent use.
type Diagnostics struct {
	mu     sync.Mutex
	items  []Diagnostic
	logger *zap.Logger
}

// NewDiagnostics creates a collector. A nil logger is replaced with a no-op one.
func NewDiagnostics(logger *zap.Logger) *Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostics{logger: logger}
}

// Add records a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.items = append(d.items, diag)
	d.mu.Unlock()

	fields := []zap.Field{
		zap.String("repository", diag.Repository),
		zap.Int("changeset", diag.ChangeSet),
		zap.String("field", diag.Field),
	}
	if diag.Severity == SeverityError {
		d.logger.Error(diag.Message, fields...)
		return
	}
	d.logger.Warn(diag.Message, fields...)
}

// Items returns a copy of the recorded diagnostics in insertion order.
func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

// Count returns the number of diagnostics with the given severity.
func (d *Diagnostics) Count(severity Severity) int {
	n := 0
	for _, item := range d.Items() {
		if item.Severity == severity {
			n++
		}
	}
	return n
}
