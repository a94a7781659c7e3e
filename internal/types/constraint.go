package types

import (
	"fmt"
	"sort"
)

// Bindings maps the identifiers a constraint refers to onto values.
type Bindings map[string]Value

// EvalFunc evaluates a compiled expression.
type EvalFunc func(Bindings) (Value, error)

// Constraint is a bound CHECK clause. Name is empty for a scalar check.
type Constraint struct {
	Name string
	// Refs lists every identifier the expression reads, sorted and without duplicates.
	Refs []string
	eval EvalFunc
}

// NewConstraint wraps a compiled expression.
func NewConstraint(name string, refs []string, eval EvalFunc) *Constraint {
	seen := make(map[string]bool, len(refs))
	var uniq []string
	for _, r := range refs {
		if !seen[r] {
			seen[r] = true
			uniq = append(uniq, r)
		}
	}
	sort.Strings(uniq)
	return &Constraint{Name: name, Refs: uniq, eval: eval}
}

// Holds evaluates the constraint. A null result counts as satisfied, as in SQL.
func (c *Constraint) Holds(b Bindings) (bool, error) {
	if c.eval == nil {
		return true, nil
	}
	v, err := c.eval(b)
	if err != nil {
		return false, err
	}
	switch v := Unwrap(v).(type) {
	case BoolValue:
		return v.V, nil
	case NullValue:
		return true, nil
	}
	return false, fmt.Errorf("constraint %q produced %s, not Boolean", c.Name, v.Type())
}

// Eval evaluates the constraint expression and returns its raw result.
func (c *Constraint) Eval(b Bindings) (Value, error) {
	if c.eval == nil {
		return NullValue{T: Boolean}, nil
	}
	return c.eval(b)
}
