package binder

import (
	"testing"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
)

// line places a node on its own source line so diagnostics can be told apart.
func line(n int) syntax.Base {
	return syntax.At(syntax.Range{
		Start: syntax.Position{Line: n, Column: 1},
		End:   syntax.Position{Line: n, Column: 80},
	})
}

func program(stmts ...syntax.Statement) *syntax.Program {
	return &syntax.Program{Statements: stmts}
}

// inShop opens a context named shop and makes it current.
func inShop(stmts ...syntax.Statement) *syntax.Program {
	return program(append([]syntax.Statement{
		&syntax.CreateContext{Name: syntax.Name("shop")},
		&syntax.UseContext{Name: syntax.Name("shop")},
	}, stmts...)...)
}

func prim(name string, params ...int) *syntax.PrimitiveType {
	return &syntax.PrimitiveType{Name: name, Params: params}
}

func named(name string) *syntax.NamedType {
	return &syntax.NamedType{Name: syntax.ParseQualifiedName(name)}
}

func field(name string, t syntax.TypeExpr) *syntax.Field {
	return &syntax.Field{Name: name, Type: t}
}

func nullField(name string, t syntax.TypeExpr) *syntax.Field {
	return &syntax.Field{Name: name, Type: t, Nullable: true}
}

func structDecl(name string, fields ...*syntax.Field) *syntax.CreateStruct {
	return &syntax.CreateStruct{Name: syntax.Name(name), Fields: fields}
}

func streamDecl(name string, aliases ...*syntax.Alias) *syntax.CreateStream {
	return &syntax.CreateStream{Name: syntax.Name(name), Aliases: aliases}
}

func num(text string) *syntax.NumberLit { return &syntax.NumberLit{Text: text} }
func str(s string) *syntax.StringLit    { return &syntax.StringLit{Value: s} }
func boolean(v bool) *syntax.BoolLit    { return &syntax.BoolLit{Value: v} }

func structLit(fields ...*syntax.FieldInit) *syntax.StructLit {
	return &syntax.StructLit{Fields: fields}
}

func fi(name string, v syntax.Literal) *syntax.FieldInit {
	return &syntax.FieldInit{Name: name, Value: v}
}

func ident(name string) *syntax.Ident { return &syntax.Ident{Name: name} }

func lit(l syntax.Literal) *syntax.LiteralExpr { return &syntax.LiteralExpr{Value: l} }

func bin(op syntax.BinaryOp, l, r syntax.Expr) *syntax.BinaryExpr {
	return &syntax.BinaryExpr{Op: op, Left: l, Right: r}
}

func codes(entries []diag.Entry) []diag.Code {
	out := make([]diag.Code, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Code)
	}
	return out
}

func requireNoDiagnostics(t *testing.T, c *diag.Collector) {
	t.Helper()
	if c.Len() != 0 {
		for _, e := range c.Entries() {
			t.Log(e)
		}
		t.Fatalf("Expected no diagnostics, got %d", c.Len())
	}
}

func requireCodes(t *testing.T, c *diag.Collector, want ...diag.Code) {
	t.Helper()
	got := codes(c.Entries())
	if len(got) != len(want) {
		for _, e := range c.Entries() {
			t.Log(e)
		}
		t.Fatalf("Expected diagnostics %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected diagnostics %v, got %v", want, got)
		}
	}
}
