// Package diag collects structured compiler diagnostics.
//
// No pass of the binder returns an error for a problem in the user's program.
// Every problem is appended to a Collector and the pass carries on with a
// fallback result, so one compile surfaces every independent problem.
package diag

import (
	"fmt"
	"strings"

	"github.com/streamdl/streamdl/internal/syntax"
)

// Severity orders diagnostics: Info < Warning < Error < Fatal.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

var severityNames = [...]string{
	Info:    "info",
	Warning: "warning",
	Error:   "error",
	Fatal:   "fatal",
}

func (s Severity) String() string {
	if s < Info || s > Fatal {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity accepts the lower-case severity names.
func ParseSeverity(s string) (Severity, error) {
	for i, name := range severityNames {
		if strings.EqualFold(s, name) {
			return Severity(i), nil
		}
	}
	return Info, fmt.Errorf("unknown severity %q (want info, warning, error or fatal)", s)
}

// Kind classifies where a diagnostic comes from.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Internal
)

var kindNames = [...]string{
	Lexical:   "lexical",
	Syntactic: "syntactic",
	Semantic:  "semantic",
	Internal:  "internal",
}

func (k Kind) String() string { return kindNames[k] }

// Entry is one diagnostic.
type Entry struct {
	Range    syntax.Range `json:"range"`
	Kind     Kind         `json:"kind"`
	Code     Code         `json:"code"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s [%s] %s", e.Range, e.Severity, e.Code, e.Message)
}

// Collector is an append-only list of entries. It belongs to one compile and
// is not safe for concurrent use.
type Collector struct {
	entries []Entry
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{}
}

// Add appends e.
func (c *Collector) Add(e Entry) {
	c.entries = append(c.entries, e)
}

// Errorf reports a semantic error at r.
func (c *Collector) Errorf(r syntax.Range, code Code, format string, args ...any) {
	c.report(r, Semantic, code, Error, format, args...)
}

// Warnf reports a semantic warning at r.
func (c *Collector) Warnf(r syntax.Range, code Code, format string, args ...any) {
	c.report(r, Semantic, code, Warning, format, args...)
}

// Fatalf reports a semantic problem after which the output must not be used.
func (c *Collector) Fatalf(r syntax.Range, code Code, format string, args ...any) {
	c.report(r, Semantic, code, Fatal, format, args...)
}

// Internalf reports a broken binder invariant.
func (c *Collector) Internalf(r syntax.Range, code Code, format string, args ...any) {
	c.report(r, Internal, code, Error, format, args...)
}

// Syntaxf reports a problem found by an external parser adapter.
func (c *Collector) Syntaxf(r syntax.Range, code Code, format string, args ...any) {
	c.report(r, Syntactic, code, Error, format, args...)
}

func (c *Collector) report(r syntax.Range, kind Kind, code Code, sev Severity, format string, args ...any) {
	c.Add(Entry{
		Range:    r,
		Kind:     kind,
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Entries returns every entry in report order.
func (c *Collector) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Collector) Len() int {
	return len(c.entries)
}

// AtLeast returns the entries whose severity is min or higher, in report order.
func (c *Collector) AtLeast(min Severity) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Severity >= min {
			out = append(out, e)
		}
	}
	return out
}

// HasAtLeast reports whether any entry reaches min.
func (c *Collector) HasAtLeast(min Severity) bool {
	for _, e := range c.entries {
		if e.Severity >= min {
			return true
		}
	}
	return false
}

// Mark returns the current end of the entry list, for use with ErrorsSince.
func (c *Collector) Mark() int {
	return len(c.entries)
}

// ErrorsSince reports whether an error or fatal entry was added after mark.
func (c *Collector) ErrorsSince(mark int) bool {
	for _, e := range c.entries[mark:] {
		if e.Severity >= Error {
			return true
		}
	}
	return false
}
