package binder

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

func intv(n int64) types.Value { return types.IntValue{T: types.Int32, V: n} }

func TestEvalThreeValuedLogic(t *testing.T) {
	t_, f_, n_ := lit(boolean(true)), lit(boolean(false)), lit(&syntax.NullLit{})
	tests := []struct {
		name string
		expr syntax.Expr
		want string
	}{
		{"false and null", bin(syntax.OpAnd, f_, n_), "false"},
		{"null and false", bin(syntax.OpAnd, n_, f_), "false"},
		{"true and null", bin(syntax.OpAnd, t_, n_), "null"},
		{"true or null", bin(syntax.OpOr, t_, n_), "true"},
		{"null or true", bin(syntax.OpOr, n_, t_), "true"},
		{"false or null", bin(syntax.OpOr, f_, n_), "null"},
		{"xor", bin(syntax.OpXor, t_, f_), "true"},
		{"not null", &syntax.UnaryExpr{Op: syntax.OpNot, Operand: n_}, "null"},
		{"null = null", bin(syntax.OpEq, n_, n_), "null"},
		{"is null", &syntax.PostfixExpr{Op: syntax.OpIsNull, Operand: ident("missing")}, "true"},
		{"is not null", &syntax.PostfixExpr{Op: syntax.OpIsNotNull, Operand: ident("x")}, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := compile(tt.expr)(types.Bindings{"x": intv(1)})
			if err != nil {
				t.Fatal(err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEvalArithmeticAndComparison(t *testing.T) {
	b := types.Bindings{
		"age":   intv(41),
		"score": types.FloatValue{T: types.Float64, V: 2.5},
		"price": types.DecimalValue{T: types.NewDecimal(5, 2), V: decimal.RequireFromString("10.25")},
		"name":  types.StringValue{T: types.String, V: "ann"},
		"tags": types.ListValue{T: &types.List{Item: types.String}, Items: []types.Value{
			types.StringValue{T: types.String, V: "a"},
			types.StringValue{T: types.String, V: "b"},
		}},
	}
	tests := []struct {
		name string
		expr syntax.Expr
		want string
	}{
		{"add", bin(syntax.OpAdd, ident("age"), lit(num("1"))), "42"},
		{"decimal exactness", bin(syntax.OpAdd, lit(num("0.1")), lit(num("0.2"))), "0.3"},
		{"mixed", bin(syntax.OpMul, ident("score"), ident("price")), "25.625"},
		{"mod", bin(syntax.OpMod, ident("age"), lit(num("5"))), "1"},
		{"negate", &syntax.UnaryExpr{Op: syntax.OpNeg, Operand: ident("age")}, "-41"},
		{"ge", bin(syntax.OpGe, ident("age"), lit(num("30"))), "true"},
		{"lt across kinds", bin(syntax.OpLt, ident("score"), ident("age")), "true"},
		{"string eq", bin(syntax.OpEq, ident("name"), lit(str("ann"))), "true"},
		{"bit and", bin(syntax.OpBitAnd, ident("age"), lit(num("15"))), "9"},
		{"shift", bin(syntax.OpShl, lit(num("1")), lit(num("4"))), "16"},
		{"between", &syntax.BetweenExpr{Target: ident("age"), Low: lit(num("40")), High: lit(num("41"))}, "true"},
		{"not between", &syntax.BetweenExpr{Target: ident("age"), Low: lit(num("40")), High: lit(num("41")), Not: true}, "false"},
		{"in", bin(syntax.OpIn, ident("name"), lit(&syntax.ListLit{Items: []syntax.Literal{str("bob"), str("ann")}})), "true"},
		{"index", &syntax.IndexExpr{Target: ident("tags"), Index: lit(num("1"))}, "'b'"},
		{"index out of range", &syntax.IndexExpr{Target: ident("tags"), Index: lit(num("5"))}, "null"},
		{"null arithmetic", bin(syntax.OpAdd, ident("age"), ident("missing")), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := compile(tt.expr)(b)
			if err != nil {
				t.Fatal(err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	_, err := compile(bin(syntax.OpDiv, lit(num("1")), lit(num("0"))))(nil)
	if !errors.Is(err, errDivisionByZero) {
		t.Errorf("Expected division by zero, got %v", err)
	}
	if _, err := compile(bin(syntax.OpShr, lit(num("1")), lit(num("64"))))(nil); err == nil {
		t.Error("Expected an out of range shift to fail")
	}
	if _, err := compile(bin(syntax.OpAnd, lit(num("1")), lit(boolean(true))))(nil); err == nil {
		t.Error("Expected a non-Boolean AND operand to fail")
	}
}

func TestConstraintOnStruct(t *testing.T) {
	res := Bind(inShop(&syntax.CreateStruct{
		Name: syntax.Name("Range"),
		Fields: []*syntax.Field{
			field("Lo", prim("Int32")),
			nullField("Hi", prim("Int32")),
		},
		Checks: []*syntax.Check{{Name: "ordered", Expr: bin(syntax.OpLe, ident("Lo"), ident("Hi"))}},
	}))
	requireNoDiagnostics(t, res.Diagnostics)

	typ, _ := res.Catalog.Type("shop.Range")
	checks := typ.(*types.Struct).Checks()
	if len(checks) != 1 {
		t.Fatalf("Expected one constraint, got %d", len(checks))
	}
	c := checks[0]
	if c.Name != "ordered" || len(c.Refs) != 2 || c.Refs[0] != "Hi" || c.Refs[1] != "Lo" {
		t.Errorf("Unexpected constraint %s %v", c.Name, c.Refs)
	}
	for _, tc := range []struct {
		b    types.Bindings
		want bool
	}{
		{types.Bindings{"Lo": intv(1), "Hi": intv(2)}, true},
		{types.Bindings{"Lo": intv(3), "Hi": intv(2)}, false},
		{types.Bindings{"Lo": intv(3)}, true},
	} {
		ok, err := c.Holds(tc.b)
		if err != nil {
			t.Fatal(err)
		}
		if ok != tc.want {
			t.Errorf("Expected %v for %v, got %v", tc.want, tc.b, ok)
		}
	}
}
