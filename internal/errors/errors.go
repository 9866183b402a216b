// Package errors defines the diagnostic type produced when a rendering pass
// is halted or degraded, and a collector that aggregates diagnostics across
// a pass for the validate command and the preview error overlay.
package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Diag is a positioned rendering diagnostic. It implements error so macros
// can halt a pass by returning it from Render.
type Diag struct {
	// Doc is the document path, empty when rendering outside a document.
	Doc string
	// Line and Column locate the problem in the source document. Zero means
	// the position is unknown (e.g. a failure inside a deferred fragment).
	Line   int
	Column int
	// Macro names the macro that raised the diagnostic.
	Macro string
	// Severity classifies the diagnostic.
	Severity Severity
	// Message is the human-readable description.
	Message string
	// Timestamp records when the diagnostic was raised.
	Timestamp time.Time
}

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (d *Diag) Error() string {
	pos := d.Doc
	if d.Line > 0 {
		pos = fmt.Sprintf("%s:%d:%d", d.Doc, d.Line, d.Column)
	}
	if pos == "" {
		pos = "<render>"
	}
	if d.Macro != "" {
		return fmt.Sprintf("%s: %s: %s: %s", pos, d.Severity, d.Macro, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", pos, d.Severity, d.Message)
}

// Newf builds an error-severity diagnostic for the named macro.
func Newf(macro, format string, args ...any) *Diag {
	return &Diag{
		Macro:     macro,
		Severity:  SeverityError,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// Warnf builds a warning-severity diagnostic for the named macro.
func Warnf(macro, format string, args ...any) *Diag {
	d := Newf(macro, format, args...)
	d.Severity = SeverityWarning
	return d
}

// Collector aggregates diagnostics raised during one or more rendering
// passes. The preview server shares a collector across requests, so access
// is guarded.
type Collector struct {
	diags []Diag
	mutex sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{diags: make([]Diag, 0)}
}

// Add records a diagnostic, stamping it if the caller did not.
func (c *Collector) Add(d Diag) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}
	c.diags = append(c.diags, d)
}

// AddError records an arbitrary error. A *Diag keeps its position and
// severity; anything else becomes an error-severity diagnostic.
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	if d, ok := err.(*Diag); ok {
		c.Add(*d)
		return
	}
	c.Add(Diag{Severity: SeverityError, Message: err.Error()})
}

// Diags returns a copy of the collected diagnostics, ordered by position.
func (c *Collector) Diags() []Diag {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]Diag, len(c.diags))
	copy(out, c.diags)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Doc != out[j].Doc {
			return out[i].Doc < out[j].Doc
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// HasErrors reports whether any collected diagnostic is error or fatal.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, d := range c.diags {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.diags)
}

// Reset discards all collected diagnostics.
func (c *Collector) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.diags = c.diags[:0]
}
