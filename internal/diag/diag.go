// Package diag defines the compiler's only error-reporting channel.
//
// Every problem found during compilation becomes a Diagnostic appended to a
// List; no stage aborts on the first problem and nothing is ever thrown as
// control flow. Error-severity diagnostics gate document emission
// all-or-nothing, warnings and infos never block output.
package diag

import (
	"fmt"
	"sort"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the stable external name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText makes severities serialize by name, not by number.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Pos is a source position: 1-based line and column in a named file.
type Pos struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a single reported problem. The Code is a stable
// machine-readable identifier namespaced by the originating phase; its
// meaning is never reassigned across compiler versions.
type Diagnostic struct {
	Severity   Severity `json:"severity"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Message    string   `json:"message"`
	Code       Code     `json:"code"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// String renders the diagnostic in the conventional file:line:col form.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]", d.File, d.Line, d.Column, d.Severity, d.Message, d.Code)
}

// List is an append-only collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic whose severity is derived from its code.
func (l *List) Add(code Code, pos Pos, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Severity: code.Severity(),
		File:     pos.File,
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
	})
}

// AddWithSuggestion is Add plus a machine-applicable suggestion.
func (l *List) AddWithSuggestion(code Code, pos Pos, suggestion, format string, args ...any) {
	l.Add(code, pos, format, args...)
	(*l)[len(*l)-1].Suggestion = suggestion
}

// Extend appends every diagnostic from other.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// HasErrors reports whether at least one error-severity diagnostic is present.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// ByCode returns the diagnostics carrying the given code, preserving order.
func (l List) ByCode(code Code) List {
	var out List
	for _, d := range l {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders diagnostics by file, line, column, then code. Stage output is
// already deterministic; sorting is for presentation only.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
}
