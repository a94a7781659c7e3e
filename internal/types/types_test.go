package types

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestPrimitiveString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int32, "Int32"},
		{NewDecimal(5, 2), "Decimal(5, 2)"},
		{NewString(0), "String"},
		{NewString(40), "String(40)"},
		{NewBytes(16), "Bytes(16)"},
		{NewTemporal(KindTimestamp, 3), "Timestamp(3)"},
		{&List{Item: Int8}, "List<Int8>"},
		{&Map{Key: String, Value: &List{Item: Uuid}}, "Map<String, List<Uuid>>"},
		{Void, "Void"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestIdentical(t *testing.T) {
	s := NewStruct("shop.Customer", "")
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same singleton", Int32, Int32, true},
		{"equal decimals", NewDecimal(5, 2), NewDecimal(5, 2), true},
		{"different scale", NewDecimal(5, 2), NewDecimal(5, 3), false},
		{"structural lists", &List{Item: Int8}, &List{Item: Int8}, true},
		{"named struct to itself", s, s, true},
		{"distinct structs of one name", s, NewStruct("shop.Customer", ""), false},
		{"void", Void, Void, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identical(tt.a, tt.b); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComparable(t *testing.T) {
	age := &Scalar{Name: "shop.Age", Base: Int16}
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"int and decimal", Int32, NewDecimal(10, 2), true},
		{"int and untyped", Int8, Numeric, true},
		{"scalar over int and int", age, Int64, true},
		{"bounded and unbounded string", NewString(10), String, true},
		{"int and string", Int32, String, false},
		{"date and timestamp", Date, NewTemporal(KindTimestamp, 6), false},
		{"void with anything", Void, Uuid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Comparable(tt.a, tt.b); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStructWithDefaults(t *testing.T) {
	s := NewStruct("shop.Customer", "")
	s.SetFields([]Field{
		{Name: "Id", Type: Int32},
		{Name: "Tier", Type: String},
	})
	row := s.WithDefaults(map[string]Value{"Tier": StringValue{T: String, V: "basic"}})

	if row == s {
		t.Fatal("Expected a copy, got the shared struct")
	}
	f, _ := row.Field("Tier")
	if f.Default == nil || f.Default.String() != "'basic'" {
		t.Errorf("Expected default 'basic', got %v", f.Default)
	}
	orig, _ := s.Field("Tier")
	if orig.Default != nil {
		t.Errorf("Expected shared struct to stay without defaults, got %v", orig.Default)
	}
}

func TestSealedTypesRejectChanges(t *testing.T) {
	s := NewStruct("shop.Customer", "")
	s.SetFields([]Field{{Name: "Id", Type: Int32}})
	s.Seal()
	e := NewEnum("shop.Color", Int8, "")
	e.Seal()
	u := NewUnion("shop.Key", "")
	u.Seal()

	tests := []struct {
		name   string
		change func()
	}{
		{"struct fields", func() { s.SetFields(nil) }},
		{"struct checks", func() { s.SetChecks(nil) }},
		{"enum symbols", func() { e.SetSymbols(nil) }},
		{"union members", func() { u.SetMembers(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected a panic changing a sealed %s", tt.name)
				}
			}()
			tt.change()
		})
	}

	if _, ok := s.Field("Id"); !ok {
		t.Error("Expected the sealed struct to keep its fields")
	}
	row := s.WithDefaults(nil)
	if _, ok := row.Field("Id"); !ok {
		t.Error("Expected WithDefaults to copy the fields of a sealed struct")
	}
}

func TestEnumSymbols(t *testing.T) {
	e := NewEnum("shop.Color", Int8, "")
	e.SetSymbols([]EnumSymbol{{"Red", 0}, {"Green", 5}, {"Blue", 6}})

	want := []EnumSymbol{{"Red", 0}, {"Green", 5}, {"Blue", 6}}
	if diff := cmp.Diff(want, e.Symbols()); diff != "" {
		t.Errorf("Symbols mismatch (-want +got):\n%s", diff)
	}
	if s, ok := e.Symbol("Green"); !ok || s.Value != 5 {
		t.Errorf("Expected Green=5, got %v (found %v)", s, ok)
	}
	if _, ok := e.Symbol("Purple"); ok {
		t.Error("Expected Purple to be unknown")
	}
}

func TestEqualAndCompare(t *testing.T) {
	dec := func(s string) DecimalValue {
		return DecimalValue{T: NewDecimal(10, 2), V: decimal.RequireFromString(s)}
	}
	if !Equal(IntValue{T: Int8, V: 3}, dec("3.00")) {
		t.Error("Expected Int8 3 to equal Decimal 3.00")
	}
	if c, ok := Compare(IntValue{T: Int32, V: 2}, FloatValue{T: Float64, V: 2.5}); !ok || c != -1 {
		t.Errorf("Expected 2 < 2.5, got %d (ok=%v)", c, ok)
	}
	if _, ok := Compare(StringValue{T: String, V: "a"}, IntValue{T: Int32, V: 1}); ok {
		t.Error("Expected string and int to be unordered")
	}
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !Equal(TemporalValue{T: Date, V: day}, TemporalValue{T: Date, V: day}) {
		t.Error("Expected equal dates")
	}
	list := ListValue{T: &List{Item: Int32}, Items: []Value{IntValue{T: Int32, V: 1}, IntValue{T: Int32, V: 1}}}
	if !Equal(list, list) {
		t.Error("Expected list to equal itself")
	}
}

func TestValueString(t *testing.T) {
	s := NewStruct("shop.Customer", "")
	v := StructValue{T: s, Fields: []FieldValue{
		{Name: "Id", Value: IntValue{T: Int32, V: 1}},
		{Name: "Name", Value: StringValue{T: String, V: "O'Hara"}},
	}}
	if got, want := v.String(), "@{Id: 1, Name: 'O''Hara'}"; got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	ts := TemporalValue{T: NewTemporal(KindTimestamp, 3), V: time.Date(2024, 5, 6, 7, 8, 9, 120000000, time.UTC)}
	if got, want := ts.String(), "'2024-05-06 07:08:09.120'"; got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	d := DecimalValue{T: NewDecimal(5, 2), V: decimal.RequireFromString("1.5")}
	if got, want := d.String(), "1.50"; got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestConstraintHolds(t *testing.T) {
	c := NewConstraint("positive", []string{"b", "a", "b"}, func(b Bindings) (Value, error) {
		v, ok := b["a"].(IntValue)
		if !ok {
			return nil, errors.New("a is not bound")
		}
		return BoolValue{V: v.V > 0}, nil
	})
	if diff := cmp.Diff([]string{"a", "b"}, c.Refs); diff != "" {
		t.Errorf("Refs mismatch (-want +got):\n%s", diff)
	}
	ok, err := c.Holds(Bindings{"a": IntValue{T: Int32, V: 1}})
	if err != nil || !ok {
		t.Errorf("Expected constraint to hold, got %v (%v)", ok, err)
	}
	ok, err = c.Holds(Bindings{"a": IntValue{T: Int32, V: -1}})
	if err != nil || ok {
		t.Errorf("Expected constraint to fail, got %v (%v)", ok, err)
	}
	if _, err := c.Holds(Bindings{}); err == nil {
		t.Error("Expected an evaluation error for a missing binding")
	}
}
