package binder

import (
	"strings"
	"testing"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

func TestIntegerBoundaries(t *testing.T) {
	tests := []struct {
		typ     *types.Primitive
		text    string
		wantErr bool
	}{
		{types.Int8, "127", false},
		{types.Int8, "-128", false},
		{types.Int8, "128", true},
		{types.Int8, "-129", true},
		{types.Int16, "32767", false},
		{types.Int16, "-32768", false},
		{types.Int16, "32768", true},
		{types.Int32, "2147483647", false},
		{types.Int32, "-2147483648", false},
		{types.Int32, "2147483648", true},
		{types.Int64, "9223372036854775807", false},
		{types.Int64, "-9223372036854775808", false},
		{types.Int64, "9223372036854775808", true},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String()+"/"+tt.text, func(t *testing.T) {
			b := New()
			v := b.BindLiteral(num(tt.text), tt.typ)
			if tt.wantErr {
				requireCodes(t, b.Diagnostics(), diag.CodeOutOfRange)
				if v != nil {
					t.Errorf("Expected no value, got %s", v)
				}
				return
			}
			requireNoDiagnostics(t, b.Diagnostics())
			if got := v.String(); got != tt.text {
				t.Errorf("Expected %s, got %s", tt.text, got)
			}
		})
	}
}

func TestFloatBounds(t *testing.T) {
	tests := []struct {
		typ     *types.Primitive
		text    string
		wantErr bool
	}{
		{types.Float32, "3.4e38", false},
		{types.Float32, "3.5e38", true},
		{types.Float64, "3.5e38", false},
		{types.Float64, "-1.7e308", false},
		{types.Float64, "1.8e308", true},
		{types.Float64, "0.1", false},
	}
	for _, tt := range tests {
		b := New()
		v := b.BindLiteral(num(tt.text), tt.typ)
		if tt.wantErr {
			requireCodes(t, b.Diagnostics(), diag.CodeOutOfRange)
			continue
		}
		requireNoDiagnostics(t, b.Diagnostics())
		if _, ok := v.(types.FloatValue); !ok {
			t.Errorf("Expected a float value for %s, got %T", tt.text, v)
		}
	}
}

func TestDecimalPrecisionAndScale(t *testing.T) {
	dec := types.NewDecimal(5, 2)
	tests := []struct {
		text string
		typ  *types.Primitive
		want diag.Code
	}{
		{"123.45", dec, ""},
		{"-999.99", dec, ""},
		{"0.5", dec, ""},
		{"1234.5", dec, diag.CodePrecision},
		{"1.234", dec, diag.CodeScale},
		{"12", types.NewDecimal(2, 0), ""},
		{"1" + strings.Repeat("0", 38), types.NewDecimal(38, 0), diag.CodePrecision},
		{"0." + strings.Repeat("1", 39), types.NewDecimal(38, 38), diag.CodePrecision},
		{"12.3.4", dec, diag.CodeInvalidLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			b := New()
			v := b.BindLiteral(num(tt.text), tt.typ)
			if tt.want == "" {
				requireNoDiagnostics(t, b.Diagnostics())
				if _, ok := v.(types.DecimalValue); !ok {
					t.Errorf("Expected a decimal value, got %T", v)
				}
				return
			}
			requireCodes(t, b.Diagnostics(), tt.want)
			if v != nil {
				t.Errorf("Expected no value, got %s", v)
			}
		})
	}
}

func TestIntegerRejectsFraction(t *testing.T) {
	b := New()
	if v := b.BindLiteral(num("1.5"), types.Int32); v != nil {
		t.Errorf("Expected no value, got %s", v)
	}
	requireCodes(t, b.Diagnostics(), diag.CodeInvalidLiteral)
}

func TestTemporalLiterals(t *testing.T) {
	ts3 := types.NewTemporal(types.KindTimestamp, 3)
	tests := []struct {
		name string
		typ  *types.Primitive
		text string
		want []diag.Code
		out  string
	}{
		{"date", types.Date, "2024-02-29", nil, "'2024-02-29'"},
		{"bad date", types.Date, "2023-02-29", []diag.Code{diag.CodeInvalidLiteral}, ""},
		{"time", types.NewTemporal(types.KindTime, 0), "23:59:58", nil, "'23:59:58'"},
		{"timestamp", ts3, "2024-01-02 03:04:05.120", nil, "'2024-01-02 03:04:05.120'"},
		{"timestamp with T", ts3, "2024-01-02T03:04:05", nil, "'2024-01-02 03:04:05.000'"},
		{"timestamp too precise", ts3, "2024-01-02 03:04:05.1234", []diag.Code{diag.CodePrecision}, ""},
		{"too precise and malformed", ts3, "2024-13-02 03:04:05.1234", []diag.Code{diag.CodePrecision, diag.CodeInvalidLiteral}, ""},
		{"timestamptz", types.NewTemporal(types.KindTimestampTz, 0), "2024-01-02T03:04:05+02:00", nil, "'2024-01-02 03:04:05+02:00'"},
		{"timestamptz without zone", types.NewTemporal(types.KindTimestampTz, 0), "2024-01-02 03:04:05", []diag.Code{diag.CodeInvalidLiteral}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			v := b.BindLiteral(str(tt.text), tt.typ)
			requireCodes(t, b.Diagnostics(), tt.want...)
			if tt.out == "" {
				if v != nil {
					t.Errorf("Expected no value, got %s", v)
				}
				return
			}
			if got := v.String(); got != tt.out {
				t.Errorf("Expected %s, got %s", tt.out, got)
			}
		})
	}
}

func TestStringBytesUuid(t *testing.T) {
	tests := []struct {
		name string
		l    syntax.Literal
		typ  types.Type
		want []diag.Code
	}{
		{"bounded string", str("héllo"), types.NewString(5), nil},
		{"string too long", str("hello!"), types.NewString(5), []diag.Code{diag.CodeTooLong}},
		{"bytes", &syntax.BytesLit{Value: []byte{1, 2}}, types.NewBytes(2), nil},
		{"bytes too long", &syntax.BytesLit{Value: []byte{1, 2, 3}}, types.NewBytes(2), []diag.Code{diag.CodeTooLong}},
		{"uuid", str("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), types.Uuid, nil},
		{"bad uuid", str("not-a-uuid"), types.Uuid, []diag.Code{diag.CodeInvalidLiteral}},
		{"number for string", num("1"), types.String, []diag.Code{diag.CodeTypeMismatch}},
		{"string for boolean", str("true"), types.Boolean, []diag.Code{diag.CodeTypeMismatch}},
		{"null anywhere", &syntax.NullLit{}, types.Int32, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			v := b.BindLiteral(tt.l, tt.typ)
			requireCodes(t, b.Diagnostics(), tt.want...)
			if (v == nil) != (len(tt.want) > 0) {
				t.Errorf("Expected value presence %v, got %v", len(tt.want) == 0, v)
			}
		})
	}
}

func TestScalarCheckIsEvaluated(t *testing.T) {
	res := Bind(inShop(
		&syntax.CreateScalar{
			Name:    syntax.Name("Percent"),
			Type:    prim("Int8"),
			Default: num("120"),
			Checks: []*syntax.Check{{Expr: &syntax.BetweenExpr{
				Target: ident("value"), Low: lit(num("0")), High: lit(num("100")),
			}}},
		},
	))
	requireCodes(t, res.Diagnostics, diag.CodeCheckFailed)
	if _, ok := res.Defaults.Type("shop.Percent"); ok {
		t.Error("Expected the failing default to be dropped")
	}

	typ, _ := res.Catalog.Type("shop.Percent")
	b := New()
	v := b.BindLiteral(num("42"), typ)
	requireNoDiagnostics(t, b.Diagnostics())
	if sv, ok := v.(types.ScalarValue); !ok || sv.V.String() != "42" {
		t.Errorf("Expected scalar 42, got %v", v)
	}
}

func TestUnionLiterals(t *testing.T) {
	res := Bind(inShop(&syntax.CreateUnion{
		Name: syntax.Name("Key"),
		Members: []*syntax.Member{
			{Name: "Id", Type: prim("Int32")},
			{Name: "Name", Type: prim("String")},
		},
	}))
	requireNoDiagnostics(t, res.Diagnostics)
	key, _ := res.Catalog.Type("shop.Key")

	b := New()
	if v := b.BindLiteral(&syntax.UnionLit{Member: "Foo", Value: num("1")}, key); v != nil {
		t.Errorf("Expected no value, got %s", v)
	}
	requireCodes(t, b.Diagnostics(), diag.CodeUnknownMember)

	b = New()
	v := b.BindLiteral(&syntax.UnionLit{Member: "Name", Value: str("ann")}, key)
	requireNoDiagnostics(t, b.Diagnostics())
	if got := v.String(); got != "Name('ann')" {
		t.Errorf("Expected Name('ann'), got %s", got)
	}
}

func TestCompositeLiterals(t *testing.T) {
	res := Bind(inShop(
		&syntax.CreateEnum{Name: syntax.Name("Color"), Symbols: []*syntax.EnumSymbol{{Name: "Red"}, {Name: "Green"}}},
		structDecl("Item",
			field("Sku", prim("String")),
			field("Tags", &syntax.ListType{Item: prim("String")}),
			field("Attrs", &syntax.MapType{Key: prim("String"), Value: prim("Int32")}),
			nullField("Color", named("Color")),
		),
	))
	requireNoDiagnostics(t, res.Diagnostics)
	item, _ := res.Catalog.Type("shop.Item")

	tests := []struct {
		name string
		l    syntax.Literal
		want []diag.Code
		out  string
	}{
		{
			name: "full",
			l: structLit(
				fi("Sku", str("A1")),
				fi("Tags", &syntax.ListLit{Items: []syntax.Literal{str("x"), str("x")}}),
				fi("Attrs", &syntax.MapLit{Entries: []*syntax.MapEntry{{Key: str("w"), Value: num("3")}}}),
				fi("Color", &syntax.EnumLit{Symbol: "Green"}),
			),
			out: "@{Sku: 'A1', Tags: ['x', 'x'], Attrs: {'w': 3}, Color: Green}",
		},
		{
			name: "empty composites coerce",
			l:    structLit(fi("Attrs", &syntax.StructLit{})),
			out:  "@{Attrs: {}}",
		},
		{
			name: "empty map literal as struct",
			l:    &syntax.MapLit{},
			out:  "@{}",
		},
		{
			name: "unknown field",
			l:    structLit(fi("Nope", num("1"))),
			want: []diag.Code{diag.CodeUnknownField},
		},
		{
			name: "duplicate field",
			l:    structLit(fi("Sku", str("a")), fi("Sku", str("b"))),
			want: []diag.Code{diag.CodeDuplicateKey},
		},
		{
			name: "null for required",
			l:    structLit(fi("Sku", &syntax.NullLit{})),
			want: []diag.Code{diag.CodeNotNullable},
		},
		{
			name: "null for nullable",
			l:    structLit(fi("Color", &syntax.NullLit{})),
			out:  "@{Color: null}",
		},
		{
			name: "unknown symbol",
			l:    structLit(fi("Color", &syntax.EnumLit{Symbol: "Blue"})),
			want: []diag.Code{diag.CodeUnknownSymbol},
		},
		{
			name: "duplicate map key",
			l: structLit(fi("Attrs", &syntax.MapLit{Entries: []*syntax.MapEntry{
				{Key: str("k"), Value: num("1")},
				{Key: str("k"), Value: num("2")},
			}})),
			want: []diag.Code{diag.CodeDuplicateKey},
		},
		{
			name: "bad list item",
			l:    structLit(fi("Tags", &syntax.ListLit{Items: []syntax.Literal{str("ok"), num("1")}})),
			want: []diag.Code{diag.CodeTypeMismatch},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			v := b.BindLiteral(tt.l, item)
			requireCodes(t, b.Diagnostics(), tt.want...)
			if tt.out == "" {
				if v != nil {
					t.Errorf("Expected no value, got %s", v)
				}
				return
			}
			if v == nil {
				t.Fatal("Expected a value, got nil")
			}
			if got := v.String(); got != tt.out {
				t.Errorf("Expected %s, got %s", tt.out, got)
			}
		})
	}
}

func TestBindLiteralIsMemoized(t *testing.T) {
	b := New()
	l := num("1")
	first := b.BindLiteral(l, types.Int32)
	second := b.BindLiteral(l, types.Int64)
	if first != second {
		t.Errorf("Expected the cached value %s, got %s", first, second)
	}
	if id := l.ID(); id == 0 {
		t.Error("Expected the literal to be numbered")
	}
}
