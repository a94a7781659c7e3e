// Package sqlexpr parses CHECK, projection and WHERE expressions written in
// SQL syntax into syntax.Expr trees, using the PostgreSQL grammar via
// pg_query.
//
// The expression text is wrapped as "SELECT <expr>" and the first target of
// the resulting select statement is translated. Only the subset of SQL that
// the binder understands is accepted; anything else is a parse error.
package sqlexpr

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/streamdl/streamdl/internal/syntax"
)

const prefix = "SELECT "

// Error is a parse failure at a position in the expression source.
type Error struct {
	Pos     syntax.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parse translates text into an expression tree. at is the source position of
// the first byte of text and is used to position every node.
func Parse(text string, at syntax.Position) (syntax.Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Pos: at, Message: "empty expression"}
	}
	result, err := pg_query.Parse(prefix + text)
	if err != nil {
		return nil, &Error{Pos: at, Message: fmt.Sprintf("pg_query parse error: %v", err)}
	}
	if len(result.Stmts) != 1 {
		return nil, &Error{Pos: at, Message: "expected a single expression"}
	}
	sel := result.Stmts[0].Stmt.GetSelectStmt()
	if sel == nil || len(sel.TargetList) != 1 || len(sel.FromClause) != 0 || sel.WhereClause != nil {
		return nil, &Error{Pos: at, Message: "expected a single expression"}
	}
	target := sel.TargetList[0].GetResTarget()
	if target == nil || target.Val == nil || target.Name != "" {
		return nil, &Error{Pos: at, Message: "expected a single expression"}
	}

	t := &translator{src: text, at: at}
	e, err := t.expr(target.Val)
	if err != nil {
		return nil, err
	}
	return e, nil
}

type translator struct {
	src string
	at  syntax.Position
}

// pos converts a pg_query location, which counts bytes from the start of the
// wrapped statement, into a source position.
func (t *translator) pos(loc int32) syntax.Position {
	off := int(loc) - len(prefix)
	if off < 0 || off > len(t.src) || t.at.Line == 0 {
		return t.at
	}
	p := t.at
	for _, r := range t.src[:off] {
		if r == '\n' {
			p.Line++
			p.Column = 1
			continue
		}
		p.Column++
	}
	return p
}

func (t *translator) base(loc int32) syntax.Base {
	p := t.pos(loc)
	return syntax.At(syntax.Range{Start: p, End: p})
}

func (t *translator) errorf(loc int32, format string, args ...any) error {
	return &Error{Pos: t.pos(loc), Message: fmt.Sprintf(format, args...)}
}

func (t *translator) expr(n *pg_query.Node) (syntax.Expr, error) {
	switch n := n.Node.(type) {
	case *pg_query.Node_ColumnRef:
		return t.columnRef(n.ColumnRef)
	case *pg_query.Node_AConst:
		l, err := t.constant(n.AConst)
		if err != nil {
			return nil, err
		}
		return &syntax.LiteralExpr{Base: syntax.At(l.Span()), Value: l}, nil
	case *pg_query.Node_AArrayExpr:
		l, err := t.array(n.AArrayExpr.Elements, n.AArrayExpr.Location)
		if err != nil {
			return nil, err
		}
		return &syntax.LiteralExpr{Base: syntax.At(l.Span()), Value: l}, nil
	case *pg_query.Node_BoolExpr:
		return t.boolExpr(n.BoolExpr)
	case *pg_query.Node_AExpr:
		return t.aExpr(n.AExpr)
	case *pg_query.Node_NullTest:
		operand, err := t.expr(n.NullTest.Arg)
		if err != nil {
			return nil, err
		}
		op := syntax.OpIsNull
		if n.NullTest.Nulltesttype == pg_query.NullTestType_IS_NOT_NULL {
			op = syntax.OpIsNotNull
		}
		return &syntax.PostfixExpr{Base: t.base(n.NullTest.Location), Op: op, Operand: operand}, nil
	case *pg_query.Node_AIndirection:
		return t.indirection(n.AIndirection)
	case *pg_query.Node_TypeCast:
		return nil, t.errorf(n.TypeCast.Location, "type casts are not supported")
	case *pg_query.Node_FuncCall:
		return nil, t.errorf(n.FuncCall.Location, "function calls are not supported")
	}
	return nil, &Error{Pos: t.at, Message: fmt.Sprintf("unsupported expression %T", n.Node)}
}

// columnRef turns a.b.c into member accesses on the identifier a. Names are
// recovered from the source so that their case survives the SQL lexer.
func (t *translator) columnRef(c *pg_query.ColumnRef) (syntax.Expr, error) {
	names := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		s := f.GetString_()
		if s == nil {
			return nil, t.errorf(c.Location, "'*' is not an expression")
		}
		names = append(names, s.Sval)
	}
	if orig := t.originalNames(c.Location, len(names)); orig != nil {
		names = orig
	}
	b := t.base(c.Location)
	var e syntax.Expr = &syntax.Ident{Base: b, Name: names[0]}
	for _, m := range names[1:] {
		e = &syntax.MemberExpr{Base: b, Target: e, Member: m}
	}
	return e, nil
}

// originalNames reads n dotted identifiers from the source at loc. It returns
// nil when the source does not have that shape, e.g. with blanks around dots.
func (t *translator) originalNames(loc int32, n int) []string {
	off := int(loc) - len(prefix)
	if off < 0 || off >= len(t.src) {
		return nil
	}
	rest := t.src[off:]
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if !strings.HasPrefix(rest, ".") {
				return nil
			}
			rest = rest[1:]
		}
		name, tail, ok := scanIdent(rest)
		if !ok {
			return nil
		}
		names = append(names, name)
		rest = tail
	}
	return names
}

func scanIdent(s string) (name, rest string, ok bool) {
	if strings.HasPrefix(s, `"`) {
		var sb strings.Builder
		for i := 1; i < len(s); i++ {
			if s[i] != '"' {
				sb.WriteByte(s[i])
				continue
			}
			if i+1 < len(s) && s[i+1] == '"' {
				sb.WriteByte('"')
				i++
				continue
			}
			return sb.String(), s[i+1:], true
		}
		return "", s, false
	}
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if r != '_' && r != '$' && !isLetter(r) && !(end > 0 && r >= '0' && r <= '9') {
			break
		}
		end += size
	}
	if end == 0 {
		return "", s, false
	}
	return s[:end], s[end:], true
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= utf8.RuneSelf
}

func (t *translator) constant(c *pg_query.A_Const) (syntax.Literal, error) {
	b := t.base(c.Location)
	if c.Isnull {
		return &syntax.NullLit{Base: b}, nil
	}
	switch v := c.Val.(type) {
	case *pg_query.A_Const_Ival:
		return &syntax.NumberLit{Base: b, Text: strconv.FormatInt(int64(v.Ival.Ival), 10)}, nil
	case *pg_query.A_Const_Fval:
		return &syntax.NumberLit{Base: b, Text: v.Fval.Fval}, nil
	case *pg_query.A_Const_Boolval:
		return &syntax.BoolLit{Base: b, Value: v.Boolval.Boolval}, nil
	case *pg_query.A_Const_Sval:
		return &syntax.StringLit{Base: b, Value: v.Sval.Sval}, nil
	case *pg_query.A_Const_Bsval:
		// x'0a1b' arrives as "x0a1b"; b'0101' bit strings are not bytes.
		s := v.Bsval.Bsval
		if !strings.HasPrefix(s, "x") && !strings.HasPrefix(s, "X") {
			return nil, t.errorf(c.Location, "bit string literals are not supported")
		}
		raw, err := hex.DecodeString(s[1:])
		if err != nil {
			return nil, t.errorf(c.Location, "invalid bytes literal: %v", err)
		}
		return &syntax.BytesLit{Base: b, Value: raw}, nil
	}
	return nil, t.errorf(c.Location, "unsupported constant")
}

// array turns a list of constants into a list literal.
func (t *translator) array(items []*pg_query.Node, loc int32) (*syntax.ListLit, error) {
	l := &syntax.ListLit{Base: t.base(loc)}
	for _, it := range items {
		c := it.GetAConst()
		if c == nil {
			return nil, t.errorf(loc, "list items must be literals")
		}
		v, err := t.constant(c)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, v)
	}
	return l, nil
}

func (t *translator) boolExpr(e *pg_query.BoolExpr) (syntax.Expr, error) {
	args := make([]syntax.Expr, 0, len(e.Args))
	for _, a := range e.Args {
		x, err := t.expr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, x)
	}
	b := t.base(e.Location)
	switch e.Boolop {
	case pg_query.BoolExprType_NOT_EXPR:
		return &syntax.UnaryExpr{Base: b, Op: syntax.OpNot, Operand: args[0]}, nil
	case pg_query.BoolExprType_AND_EXPR:
		return fold(b, syntax.OpAnd, args), nil
	case pg_query.BoolExprType_OR_EXPR:
		return fold(b, syntax.OpOr, args), nil
	}
	return nil, t.errorf(e.Location, "unsupported boolean operator")
}

// fold left-associates a flattened AND/OR argument list.
func fold(b syntax.Base, op syntax.BinaryOp, args []syntax.Expr) syntax.Expr {
	e := args[0]
	for _, a := range args[1:] {
		e = &syntax.BinaryExpr{Base: b, Op: op, Left: e, Right: a}
	}
	return e
}

var binaryOps = map[string]syntax.BinaryOp{
	"=":  syntax.OpEq,
	"<>": syntax.OpNe,
	"!=": syntax.OpNe,
	"<":  syntax.OpLt,
	"<=": syntax.OpLe,
	">":  syntax.OpGt,
	">=": syntax.OpGe,
	"+":  syntax.OpAdd,
	"-":  syntax.OpSub,
	"*":  syntax.OpMul,
	"/":  syntax.OpDiv,
	"%":  syntax.OpMod,
	"&":  syntax.OpBitAnd,
	"|":  syntax.OpBitOr,
	"<<": syntax.OpShl,
	">>": syntax.OpShr,
	// PostgreSQL has no logical XOR; its bitwise XOR operator stands in.
	"#": syntax.OpXor,
}

func operatorName(e *pg_query.A_Expr) string {
	if len(e.Name) == 0 {
		return ""
	}
	if s := e.Name[len(e.Name)-1].GetString_(); s != nil {
		return s.Sval
	}
	return ""
}

func (t *translator) aExpr(e *pg_query.A_Expr) (syntax.Expr, error) {
	b := t.base(e.Location)
	name := operatorName(e)

	switch e.Kind {
	case pg_query.A_Expr_Kind_AEXPR_OP:
		right, err := t.expr(e.Rexpr)
		if err != nil {
			return nil, err
		}
		if e.Lexpr == nil {
			switch name {
			case "-":
				return &syntax.UnaryExpr{Base: b, Op: syntax.OpNeg, Operand: right}, nil
			case "+":
				return right, nil
			}
			return nil, t.errorf(e.Location, "unsupported prefix operator %q", name)
		}
		op, ok := binaryOps[name]
		if !ok {
			return nil, t.errorf(e.Location, "unsupported operator %q", name)
		}
		left, err := t.expr(e.Lexpr)
		if err != nil {
			return nil, err
		}
		return &syntax.BinaryExpr{Base: b, Op: op, Left: left, Right: right}, nil

	case pg_query.A_Expr_Kind_AEXPR_IN:
		left, err := t.expr(e.Lexpr)
		if err != nil {
			return nil, err
		}
		list := e.Rexpr.GetList()
		if list == nil {
			return nil, t.errorf(e.Location, "IN needs a parenthesized list")
		}
		items, err := t.array(list.Items, e.Location)
		if err != nil {
			return nil, err
		}
		var in syntax.Expr = &syntax.BinaryExpr{
			Base: b, Op: syntax.OpIn, Left: left,
			Right: &syntax.LiteralExpr{Base: syntax.At(items.Span()), Value: items},
		}
		if name == "<>" {
			in = &syntax.UnaryExpr{Base: b, Op: syntax.OpNot, Operand: in}
		}
		return in, nil

	case pg_query.A_Expr_Kind_AEXPR_OP_ANY:
		// x = ANY(list) is the only way to test membership in a list column.
		if name != "=" {
			return nil, t.errorf(e.Location, "only = ANY(...) is supported")
		}
		left, err := t.expr(e.Lexpr)
		if err != nil {
			return nil, err
		}
		right, err := t.expr(e.Rexpr)
		if err != nil {
			return nil, err
		}
		return &syntax.BinaryExpr{Base: b, Op: syntax.OpIn, Left: left, Right: right}, nil

	case pg_query.A_Expr_Kind_AEXPR_BETWEEN, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN:
		target, err := t.expr(e.Lexpr)
		if err != nil {
			return nil, err
		}
		bounds := e.Rexpr.GetList()
		if bounds == nil || len(bounds.Items) != 2 {
			return nil, t.errorf(e.Location, "BETWEEN needs two bounds")
		}
		low, err := t.expr(bounds.Items[0])
		if err != nil {
			return nil, err
		}
		high, err := t.expr(bounds.Items[1])
		if err != nil {
			return nil, err
		}
		return &syntax.BetweenExpr{
			Base: b, Target: target, Low: low, High: high,
			Not: e.Kind == pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN,
		}, nil
	}
	return nil, t.errorf(e.Location, "unsupported expression")
}

func (t *translator) indirection(ind *pg_query.A_Indirection) (syntax.Expr, error) {
	e, err := t.expr(ind.Arg)
	if err != nil {
		return nil, err
	}
	for _, step := range ind.Indirection {
		switch s := step.Node.(type) {
		case *pg_query.Node_AIndices:
			if s.AIndices.IsSlice || s.AIndices.Uidx == nil {
				return nil, &Error{Pos: e.Span().Start, Message: "slices are not supported"}
			}
			idx, err := t.expr(s.AIndices.Uidx)
			if err != nil {
				return nil, err
			}
			e = &syntax.IndexExpr{Base: syntax.At(e.Span()), Target: e, Index: idx}
		case *pg_query.Node_String_:
			e = &syntax.MemberExpr{Base: syntax.At(e.Span()), Target: e, Member: s.String_.Sval}
		default:
			return nil, &Error{Pos: e.Span().Start, Message: "unsupported indirection"}
		}
	}
	return e, nil
}
