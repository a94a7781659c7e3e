package binder

import (
	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// bindScalarCheck binds the single CHECK of a scalar in a scope holding only
// "value", typed as the scalar's base primitive.
func (b *Binder) bindScalarCheck(s *types.Scalar, checks []*syntax.Check) *types.Constraint {
	for _, extra := range checks[1:] {
		b.diags.Errorf(extra.Span(), diag.CodeInvalidCheck, "Scalar '%s' may have only one CHECK", s.Name)
	}
	return b.bindCheck(checks[0], Scope{"value": s.Base})
}

// bindStructChecks binds the named constraints of a struct in a scope holding
// every field of the struct under construction.
func (b *Binder) bindStructChecks(s *types.Struct, checks []*syntax.Check) []*types.Constraint {
	if len(checks) == 0 {
		return nil
	}
	scope := fieldScope(s)
	seen := make(map[string]bool)
	var out []*types.Constraint
	for _, c := range checks {
		if c.Name == "" {
			b.diags.Errorf(c.Span(), diag.CodeInvalidCheck,
				"CHECK on struct '%s' must be named: CONSTRAINT name CHECK (...)", s.Name)
			continue
		}
		if seen[c.Name] {
			b.diags.Errorf(c.Span(), diag.CodeDuplicateMember,
				"Constraint '%s' is declared more than once on struct '%s'", c.Name, s.Name)
			continue
		}
		seen[c.Name] = true
		if con := b.bindCheck(c, scope); con != nil {
			out = append(out, con)
		}
	}
	return out
}

func (b *Binder) bindCheck(c *syntax.Check, scope Scope) *types.Constraint {
	if c.Expr == nil {
		b.diags.Errorf(c.Span(), diag.CodeInvalidCheck, "CHECK has no expression")
		return nil
	}
	mark := b.diags.Mark()
	t := b.bindExpr(c.Expr, scope)
	if b.diags.ErrorsSince(mark) {
		return nil
	}
	if !types.IsBoolean(t) {
		b.diags.Errorf(c.Expr.Span(), diag.CodeCheckType, "CHECK must be a Boolean expression, got %s", t)
		return nil
	}
	return types.NewConstraint(c.Name, references(c.Expr), compile(c.Expr))
}

// references lists the identifiers an expression reads.
func references(e syntax.Expr) []string {
	var refs []string
	syntax.Inspect(e, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			refs = append(refs, id.Name)
		}
		return true
	})
	return refs
}
