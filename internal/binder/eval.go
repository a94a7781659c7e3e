package binder

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

var errDivisionByZero = errors.New("division by zero")

var null = types.NullValue{}

// compile turns a type-checked expression into a closure over named values.
// Evaluation follows SQL three-valued logic: null operands yield null, except
// for IS [NOT] NULL and the short-circuiting sides of AND and OR. Arithmetic
// is carried out on arbitrary-precision decimals.
func compile(e syntax.Expr) types.EvalFunc {
	switch e := e.(type) {
	case *syntax.Ident:
		name := e.Name
		return func(b types.Bindings) (types.Value, error) {
			if v, ok := b[name]; ok {
				return v, nil
			}
			return null, nil
		}

	case *syntax.ParenExpr:
		return compile(e.Inner)

	case *syntax.LiteralExpr:
		v, err := provisionalValue(e.Value)
		return func(types.Bindings) (types.Value, error) { return v, err }

	case *syntax.MemberExpr:
		target, member := compile(e.Target), e.Member
		return func(b types.Bindings) (types.Value, error) {
			v, err := target(b)
			if err != nil {
				return nil, err
			}
			if s, ok := v.(types.StructValue); ok {
				if f, ok := s.Field(member); ok {
					return f, nil
				}
			}
			return null, nil
		}

	case *syntax.IndexExpr:
		target, index := compile(e.Target), compile(e.Index)
		return func(b types.Bindings) (types.Value, error) {
			v, err := target(b)
			if err != nil {
				return nil, err
			}
			i, err := index(b)
			if err != nil {
				return nil, err
			}
			return evalIndex(v, i), nil
		}

	case *syntax.UnaryExpr:
		operand, op := compile(e.Operand), e.Op
		return func(b types.Bindings) (types.Value, error) {
			v, err := operand(b)
			if err != nil || isNull(v) {
				return v, err
			}
			if op == syntax.OpNot {
				x, err := asBool(v)
				return types.BoolValue{V: !x}, err
			}
			d, ok := types.AsDecimal(v)
			if !ok {
				return nil, fmt.Errorf("cannot negate %s", v.Type())
			}
			return numeric(d.Neg()), nil
		}

	case *syntax.PostfixExpr:
		operand, op := compile(e.Operand), e.Op
		return func(b types.Bindings) (types.Value, error) {
			v, err := operand(b)
			if err != nil {
				return nil, err
			}
			return types.BoolValue{V: isNull(v) == (op == syntax.OpIsNull)}, nil
		}

	case *syntax.BetweenExpr:
		target, low, high, not := compile(e.Target), compile(e.Low), compile(e.High), e.Not
		return func(b types.Bindings) (types.Value, error) {
			vals, err := evalAll(b, target, low, high)
			if err != nil || anyNull(vals...) {
				return null, err
			}
			lo, okLo := types.Compare(vals[0], vals[1])
			hi, okHi := types.Compare(vals[0], vals[2])
			if !okLo || !okHi {
				return nil, fmt.Errorf("cannot order %s between %s and %s", vals[0].Type(), vals[1].Type(), vals[2].Type())
			}
			in := lo >= 0 && hi <= 0
			return types.BoolValue{V: in != not}, nil
		}

	case *syntax.BinaryExpr:
		return compileBinary(e)
	}
	return func(types.Bindings) (types.Value, error) {
		return nil, fmt.Errorf("cannot evaluate %T", e)
	}
}

func compileBinary(e *syntax.BinaryExpr) types.EvalFunc {
	left, right, op := compile(e.Left), compile(e.Right), e.Op

	if op == syntax.OpAnd || op == syntax.OpOr {
		// A false left side of AND, or a true one of OR, decides alone.
		decisive := op == syntax.OpOr
		return func(b types.Bindings) (types.Value, error) {
			l, err := left(b)
			if err != nil {
				return nil, err
			}
			if !isNull(l) {
				x, err := asBool(l)
				if err != nil {
					return nil, err
				}
				if x == decisive {
					return types.BoolValue{V: decisive}, nil
				}
			}
			r, err := right(b)
			if err != nil {
				return nil, err
			}
			if isNull(r) {
				return null, nil
			}
			y, err := asBool(r)
			if err != nil {
				return nil, err
			}
			if y == decisive {
				return types.BoolValue{V: decisive}, nil
			}
			if isNull(l) {
				return null, nil
			}
			return types.BoolValue{V: !decisive}, nil
		}
	}

	return func(b types.Bindings) (types.Value, error) {
		vals, err := evalAll(b, left, right)
		if err != nil {
			return nil, err
		}
		if anyNull(vals...) {
			return null, nil
		}
		return evalBinary(op, vals[0], vals[1])
	}
}

func evalBinary(op syntax.BinaryOp, l, r types.Value) (types.Value, error) {
	switch {
	case op == syntax.OpXor:
		x, err := asBool(l)
		if err != nil {
			return nil, err
		}
		y, err := asBool(r)
		if err != nil {
			return nil, err
		}
		return types.BoolValue{V: x != y}, nil

	case op == syntax.OpEq:
		return types.BoolValue{V: types.Equal(l, r)}, nil
	case op == syntax.OpNe:
		return types.BoolValue{V: !types.Equal(l, r)}, nil

	case op.IsComparison():
		c, ok := types.Compare(l, r)
		if !ok {
			return nil, fmt.Errorf("cannot order %s and %s", l.Type(), r.Type())
		}
		var res bool
		switch op {
		case syntax.OpLt:
			res = c < 0
		case syntax.OpLe:
			res = c <= 0
		case syntax.OpGt:
			res = c > 0
		case syntax.OpGe:
			res = c >= 0
		}
		return types.BoolValue{V: res}, nil

	case op.IsArithmetic():
		x, okX := types.AsDecimal(l)
		y, okY := types.AsDecimal(r)
		if !okX || !okY {
			return nil, fmt.Errorf("%s needs numbers, got %s and %s", op, l.Type(), r.Type())
		}
		switch op {
		case syntax.OpAdd:
			return numeric(x.Add(y)), nil
		case syntax.OpSub:
			return numeric(x.Sub(y)), nil
		case syntax.OpMul:
			return numeric(x.Mul(y)), nil
		case syntax.OpDiv:
			if y.IsZero() {
				return nil, errDivisionByZero
			}
			return numeric(x.Div(y)), nil
		default:
			if y.IsZero() {
				return nil, errDivisionByZero
			}
			return numeric(x.Mod(y)), nil
		}

	case op.IsBitwise():
		x, err := asInt(l)
		if err != nil {
			return nil, err
		}
		y, err := asInt(r)
		if err != nil {
			return nil, err
		}
		switch op {
		case syntax.OpBitAnd:
			return types.IntValue{T: types.Int64, V: x & y}, nil
		case syntax.OpBitOr:
			return types.IntValue{T: types.Int64, V: x | y}, nil
		}
		if y < 0 || y > 63 {
			return nil, fmt.Errorf("shift count %d out of range", y)
		}
		if op == syntax.OpShl {
			return types.IntValue{T: types.Int64, V: x << uint(y)}, nil
		}
		return types.IntValue{T: types.Int64, V: x >> uint(y)}, nil

	case op == syntax.OpIn:
		list, ok := r.(types.ListValue)
		if !ok {
			return nil, fmt.Errorf("IN needs a list, got %s", r.Type())
		}
		for _, it := range list.Items {
			if types.Equal(l, it) {
				return types.BoolValue{V: true}, nil
			}
		}
		return types.BoolValue{V: false}, nil
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}

func evalIndex(v, i types.Value) types.Value {
	switch v := v.(type) {
	case types.ListValue:
		n, err := asInt(i)
		if err != nil || n < 0 || n >= int64(len(v.Items)) {
			return null
		}
		return v.Items[n]
	case types.MapValue:
		for _, e := range v.Entries {
			if types.Equal(e.Key, i) {
				return e.Value
			}
		}
	}
	return null
}

// provisionalValue is the context-free value of a literal inside an expression.
func provisionalValue(l syntax.Literal) (types.Value, error) {
	switch l := l.(type) {
	case *syntax.NullLit:
		return null, nil
	case *syntax.BoolLit:
		return types.BoolValue{V: l.Value}, nil
	case *syntax.NumberLit:
		d, err := decimal.NewFromString(l.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", l.Text, err)
		}
		return numeric(d), nil
	case *syntax.StringLit:
		return types.StringValue{T: types.String, V: l.Value}, nil
	case *syntax.BytesLit:
		return types.BytesValue{T: types.Bytes, V: l.Value}, nil
	case *syntax.ListLit:
		items := make([]types.Value, 0, len(l.Items))
		for _, it := range l.Items {
			v, err := provisionalValue(it)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		t, _ := provisionalType(l).(*types.List)
		return types.ListValue{T: t, Items: items}, nil
	}
	return nil, fmt.Errorf("a %s literal cannot be evaluated", l.Describe())
}

func evalAll(b types.Bindings, fns ...types.EvalFunc) ([]types.Value, error) {
	vals := make([]types.Value, len(fns))
	for i, f := range fns {
		v, err := f(b)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func numeric(d decimal.Decimal) types.Value {
	return types.DecimalValue{T: types.Numeric, V: d}
}

func isNull(v types.Value) bool {
	_, ok := types.Unwrap(v).(types.NullValue)
	return ok
}

func anyNull(vals ...types.Value) bool {
	for _, v := range vals {
		if isNull(v) {
			return true
		}
	}
	return false
}

func asBool(v types.Value) (bool, error) {
	b, ok := types.Unwrap(v).(types.BoolValue)
	if !ok {
		return false, fmt.Errorf("expected Boolean, got %s", v.Type())
	}
	return b.V, nil
}

func asInt(v types.Value) (int64, error) {
	d, ok := types.AsDecimal(v)
	if !ok || !d.IsInteger() {
		return 0, fmt.Errorf("expected an integer, got %s", v.Type())
	}
	return d.IntPart(), nil
}
