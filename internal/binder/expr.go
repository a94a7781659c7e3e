package binder

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// Scope maps the names visible to an expression onto their types. Scopes are
// flat: a caller wanting nesting builds the merged map itself.
type Scope map[string]types.Type

// fieldScope exposes every field of s by its bare name.
func fieldScope(s *types.Struct) Scope {
	fields := s.Fields()
	scope := make(Scope, len(fields))
	for _, f := range fields {
		scope[f.Name] = f.Type
	}
	return scope
}

// BindExpr infers the type of e in scope, recording the type of every
// sub-expression in the environment. Problems are reported and the result
// degrades to Void or Boolean rather than aborting.
func (b *Binder) BindExpr(e syntax.Expr, scope Scope) types.Type {
	b.arena.Number(e)
	return b.bindExpr(e, scope)
}

func (b *Binder) bindExpr(e syntax.Expr, scope Scope) types.Type {
	if t, ok := b.env.Type(e); ok {
		return t
	}
	var t types.Type
	switch e := e.(type) {
	case *syntax.Ident:
		t = b.bindIdent(e, scope)
	case *syntax.ParenExpr:
		t = b.bindExpr(e.Inner, scope)
	case *syntax.LiteralExpr:
		t = b.bindLiteralExpr(e)
	case *syntax.MemberExpr:
		t = b.bindMember(e, scope)
	case *syntax.IndexExpr:
		t = b.bindIndex(e, scope)
	case *syntax.UnaryExpr:
		t = b.bindUnary(e, scope)
	case *syntax.PostfixExpr:
		b.bindExpr(e.Operand, scope)
		t = types.Boolean
	case *syntax.BinaryExpr:
		t = b.bindBinary(e, scope)
	case *syntax.BetweenExpr:
		t = b.bindBetween(e, scope)
	default:
		b.diags.Internalf(e.Span(), diag.CodeTypeMismatch, "Unsupported expression %T", e)
		t = types.Void
	}
	return b.env.BindType(e, t)
}

func (b *Binder) bindIdent(e *syntax.Ident, scope Scope) types.Type {
	t, ok := scope[e.Name]
	if !ok {
		b.diags.Errorf(e.Span(), diag.CodeUnknownIdentifier, "Unknown identifier '%s'", e.Name)
		return types.Void
	}
	return t
}

// bindLiteralExpr gives a literal its provisional, context-free type. This is
// deliberately not the expected-type binding of BindLiteral.
func (b *Binder) bindLiteralExpr(e *syntax.LiteralExpr) types.Type {
	t := provisionalType(e.Value)
	if t == nil {
		b.diags.Errorf(e.Span(), diag.CodeTypeMismatch,
			"A %s literal cannot appear in an expression", e.Value.Describe())
		return types.Void
	}
	return t
}

func provisionalType(l syntax.Literal) types.Type {
	switch l := l.(type) {
	case *syntax.NullLit:
		return types.Void
	case *syntax.BoolLit:
		return types.Boolean
	case *syntax.NumberLit:
		return types.Numeric
	case *syntax.StringLit:
		return types.String
	case *syntax.BytesLit:
		return types.Bytes
	case *syntax.ListLit:
		item := types.Void
		for _, it := range l.Items {
			t := provisionalType(it)
			if t == nil {
				return nil
			}
			if !types.IsVoid(t) {
				item = t
				break
			}
		}
		return &types.List{Item: item}
	}
	return nil
}

func (b *Binder) bindMember(e *syntax.MemberExpr, scope Scope) types.Type {
	target := b.bindExpr(e.Target, scope)
	if types.IsVoid(target) {
		return types.Void
	}
	s, ok := target.(*types.Struct)
	if !ok {
		b.diags.Errorf(e.Span(), diag.CodeTypeMismatch,
			"Cannot access member '%s' of %s; only structs have members", e.Member, target)
		return types.Void
	}
	f, ok := s.Field(e.Member)
	if !ok {
		b.diags.Errorf(e.Span(), diag.CodeUnknownField, "%s has no field '%s'", s, e.Member)
		return types.Void
	}
	return f.Type
}

func (b *Binder) bindIndex(e *syntax.IndexExpr, scope Scope) types.Type {
	target := b.bindExpr(e.Target, scope)
	index := b.bindExpr(e.Index, scope)
	switch t := target.(type) {
	case *types.List:
		if lit, ok := literalNumber(e.Index); ok {
			b.checkListIndex(lit)
		} else if !types.IsVoid(index) && !types.IsInteger(index) {
			b.diags.Errorf(e.Index.Span(), diag.CodeTypeMismatch, "List index must be an integer, got %s", index)
		}
		return t.Item
	case *types.Map:
		if !types.Assignable(t.Key, index) {
			b.diags.Errorf(e.Index.Span(), diag.CodeTypeMismatch,
				"Map key must be %s, got %s", t.Key, index)
		}
		return t.Value
	}
	if !types.IsVoid(target) {
		b.diags.Errorf(e.Span(), diag.CodeTypeMismatch, "Cannot index into %s", target)
	}
	return types.Void
}

func literalNumber(e syntax.Expr) (*syntax.NumberLit, bool) {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			break
		}
		e = p.Inner
	}
	le, ok := e.(*syntax.LiteralExpr)
	if !ok {
		return nil, false
	}
	n, ok := le.Value.(*syntax.NumberLit)
	return n, ok
}

// checkListIndex requires a literal list index to be a non-negative whole
// number within Int32.
func (b *Binder) checkListIndex(n *syntax.NumberLit) {
	d, err := decimal.NewFromString(n.Text)
	switch {
	case err != nil, !d.IsInteger():
		b.diags.Errorf(n.Span(), diag.CodeInvalidIndex, "List index %s is not a whole number", n.Text)
	case d.IsNegative():
		b.diags.Errorf(n.Span(), diag.CodeInvalidIndex, "List index %s is negative", n.Text)
	case d.GreaterThan(decimal.NewFromInt(math.MaxInt32)):
		b.diags.Errorf(n.Span(), diag.CodeInvalidIndex, "List index %s does not fit Int32", n.Text)
	}
}

func (b *Binder) bindUnary(e *syntax.UnaryExpr, scope Scope) types.Type {
	t := b.bindExpr(e.Operand, scope)
	switch e.Op {
	case syntax.OpNot:
		if !types.IsVoid(t) && !types.IsBoolean(t) {
			b.diags.Errorf(e.Operand.Span(), diag.CodeTypeMismatch, "NOT needs a Boolean operand, got %s", t)
		}
		return types.Boolean
	default:
		if !types.IsVoid(t) && !types.IsNumeric(t) {
			b.diags.Errorf(e.Operand.Span(), diag.CodeTypeMismatch, "Negation needs a numeric operand, got %s", t)
		}
		return t
	}
}

func (b *Binder) bindBinary(e *syntax.BinaryExpr, scope Scope) types.Type {
	l := b.bindExpr(e.Left, scope)
	r := b.bindExpr(e.Right, scope)

	switch {
	case e.Op.IsLogical():
		for _, operand := range []struct {
			expr syntax.Expr
			typ  types.Type
		}{{e.Left, l}, {e.Right, r}} {
			if !types.IsVoid(operand.typ) && !types.IsBoolean(operand.typ) {
				b.diags.Errorf(operand.expr.Span(), diag.CodeTypeMismatch,
					"%s needs Boolean operands, got %s", e.Op, operand.typ)
			}
		}
		return types.Boolean

	case e.Op.IsComparison():
		if !types.Comparable(l, r) {
			b.diags.Errorf(e.Span(), diag.CodeTypeMismatch, "Cannot compare %s with %s using %s", l, r, e.Op)
		}
		return types.Boolean

	case e.Op.IsArithmetic():
		if !numericOrVoid(l) || !numericOrVoid(r) {
			b.diags.Errorf(e.Span(), diag.CodeTypeMismatch, "%s needs numeric operands, got %s and %s", e.Op, l, r)
		}
		return arithmeticResult(l, r)

	case e.Op.IsBitwise():
		if !integerOrVoid(l) || !integerOrVoid(r) {
			b.diags.Errorf(e.Span(), diag.CodeTypeMismatch, "%s needs integer operands, got %s and %s", e.Op, l, r)
		}
		return l

	case e.Op == syntax.OpIn:
		list, ok := r.(*types.List)
		switch {
		case ok:
			if !types.Comparable(l, list.Item) {
				b.diags.Errorf(e.Span(), diag.CodeTypeMismatch, "Cannot look for %s in %s", l, list)
			}
		case !types.IsVoid(r):
			b.diags.Errorf(e.Right.Span(), diag.CodeTypeMismatch, "IN needs a list on the right, got %s", r)
		}
		return types.Boolean
	}
	return types.Void
}

func (b *Binder) bindBetween(e *syntax.BetweenExpr, scope Scope) types.Type {
	t := b.bindExpr(e.Target, scope)
	for _, bound := range []syntax.Expr{e.Low, e.High} {
		bt := b.bindExpr(bound, scope)
		if !types.Comparable(t, bt) {
			b.diags.Errorf(bound.Span(), diag.CodeTypeMismatch, "BETWEEN bound %s is not comparable with %s", bt, t)
		}
	}
	return types.Boolean
}

func numericOrVoid(t types.Type) bool {
	return types.IsVoid(t) || types.IsNumeric(t)
}

func integerOrVoid(t types.Type) bool {
	return types.IsVoid(t) || types.IsInteger(t) || t.Kind() == types.KindNumeric
}

// arithmeticResult takes the left operand's type, except that a concrete
// numeric type beats the untyped literal type and any numeric type beats a
// non-numeric one.
func arithmeticResult(l, r types.Type) types.Type {
	switch {
	case l.Kind() == types.KindNumeric && types.IsNumeric(r):
		return r
	case !types.IsNumeric(l) && types.IsNumeric(r):
		return r
	case types.IsNumeric(l):
		return l
	}
	return types.Void
}
