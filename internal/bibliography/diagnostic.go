package bibliography

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a single observation produced while processing entries.
// Diagnostics never mutate entries; they only describe what a pass saw.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Key      string   `json:"key,omitempty"`   // Citation key of the affected entry
	Field    string   `json:"field,omitempty"` // Field name, when field-specific
}

// String formats a diagnostic with enough context to locate the source.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Severity))
	if d.Key != "" {
		fmt.Fprintf(&b, " [%s", d.Key)
		if d.Field != "" {
			fmt.Fprintf(&b, ".%s", d.Field)
		}
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Infof builds an info diagnostic for an entry.
func Infof(key, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Key: key, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a warning diagnostic for an entry field.
func Warningf(key, field, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Key: key, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error diagnostic for an entry.
func Errorf(key, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityError, Key: key, Message: fmt.Sprintf(format, args...)}
}

// Report accumulates diagnostics across pipeline passes.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Add appends diagnostics to the report.
func (r *Report) Add(diags ...Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, diags...)
}

// Failed reports whether any error-severity diagnostic was recorded.
func (r *Report) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics at the given severity.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}
