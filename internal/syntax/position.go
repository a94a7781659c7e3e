package syntax

import (
	"fmt"
	"strings"
)

// Position is a line/column location in program source. Lines and columns are 1-based;
// the zero Position means "unknown".
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	if p.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is the source extent of a node.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (r Range) String() string {
	return r.Start.String()
}

// QualifiedName is a dotted name. A rooted name is resolved from the root context,
// a relative one from the current context outwards.
type QualifiedName struct {
	Parts  []string `json:"parts"`
	Rooted bool     `json:"rooted,omitempty"`
}

// ParseQualifiedName splits a dotted name. A leading dot marks the name as rooted.
func ParseQualifiedName(s string) QualifiedName {
	rooted := strings.HasPrefix(s, ".")
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return QualifiedName{Rooted: rooted}
	}
	return QualifiedName{Parts: strings.Split(s, "."), Rooted: rooted}
}

// Name builds a relative qualified name from its segments.
func Name(parts ...string) QualifiedName {
	return QualifiedName{Parts: parts}
}

// String returns the fully joined dotted form, used for equality and lookup.
func (q QualifiedName) String() string {
	return strings.Join(q.Parts, ".")
}

// IsRoot reports whether q names the root context.
func (q QualifiedName) IsRoot() bool {
	return len(q.Parts) == 0
}

// Last returns the final segment, or "" for the root.
func (q QualifiedName) Last() string {
	if len(q.Parts) == 0 {
		return ""
	}
	return q.Parts[len(q.Parts)-1]
}

// Parent drops the final segment.
func (q QualifiedName) Parent() QualifiedName {
	if len(q.Parts) == 0 {
		return q
	}
	parts := make([]string, len(q.Parts)-1)
	copy(parts, q.Parts)
	return QualifiedName{Parts: parts, Rooted: q.Rooted}
}

// Join appends other to q. A rooted other replaces q entirely.
func (q QualifiedName) Join(other QualifiedName) QualifiedName {
	if other.Rooted {
		return QualifiedName{Parts: append([]string(nil), other.Parts...), Rooted: true}
	}
	parts := make([]string, 0, len(q.Parts)+len(other.Parts))
	parts = append(parts, q.Parts...)
	parts = append(parts, other.Parts...)
	return QualifiedName{Parts: parts, Rooted: q.Rooted}
}

// Append adds a single segment.
func (q QualifiedName) Append(name string) QualifiedName {
	return q.Join(QualifiedName{Parts: []string{name}})
}
