package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem in a tree file
type Diagnostic struct {
	Severity Severity
	Code     Code // empty for load failures
	Message  string
	Line     int
	Column   int
	File     string
	Hint     string
}

// Diagnostics collects the diagnostics of one or more tree files in report
// order
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{}
}

// Add appends a prepared diagnostic
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// ErrorfInFile adds an uncoded error for file
func (d *Diagnostics) ErrorfInFile(file string, line, col int, format string, args ...interface{}) {
	d.Add(Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
		File:     file,
	})
}

// Merge appends every diagnostic of other
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

func (d *Diagnostics) count(s Severity) int {
	n := 0
	for _, item := range d.items {
		if item.Severity == s {
			n++
		}
	}
	return n
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int { return d.count(Error) }

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int { return d.count(Warning) }

// HasErrors reports whether any diagnostic is an error
func (d *Diagnostics) HasErrors() bool { return d.ErrorCount() > 0 }

// Format renders one line per diagnostic, followed by an indented hint
// line when the diagnostic has one. Diagnostics without a File are
// attributed to filename.
//
//	error[stories/a.yaml:3:10]: variable `x` has not been defined
//	  hint: ...
//	warning[stories/a.yaml:5:1]: parameter 'z' in 'f' is never used
func (d *Diagnostics) Format(filename string) string {
	lines := make([]string, 0, len(d.items))
	for _, item := range d.items {
		file := item.File
		if file == "" {
			file = filename
		}
		line := fmt.Sprintf("%s[%s:%d:%d]: %s", item.Severity, file, item.Line, item.Column, item.Message)
		if item.Hint != "" {
			line += "\n  hint: " + item.Hint
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
