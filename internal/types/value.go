package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Value is a literal bound against a runtime type.
type Value interface {
	Type() Type
	String() string
	isValue()
}

// NullValue is the bound form of the null literal. T is the type it was bound
// against, or Void inside expressions.
type NullValue struct {
	T Type
}

type BoolValue struct {
	V bool
}

// IntValue holds every integer width and enum ordinals.
type IntValue struct {
	T *Primitive
	V int64
}

type FloatValue struct {
	T *Primitive
	V float64
}

// DecimalValue holds Decimal values and the untyped Numeric intermediate.
type DecimalValue struct {
	T *Primitive
	V decimal.Decimal
}

type StringValue struct {
	T *Primitive
	V string
}

type BytesValue struct {
	T *Primitive
	V []byte
}

type UuidValue struct {
	V uuid.UUID
}

// TemporalValue holds Date, Time, Timestamp and TimestampTz values. Time
// values are anchored on 0000-01-01 UTC.
type TemporalValue struct {
	T *Primitive
	V time.Time
}

// ScalarValue wraps a primitive value checked against a scalar type.
type ScalarValue struct {
	T *Scalar
	V Value
}

type EnumValue struct {
	T      *Enum
	Symbol EnumSymbol
}

// FieldValue is one present field of a struct value.
type FieldValue struct {
	Name  string
	Value Value
}

// StructValue lists present fields in literal order. Omitted fields are absent,
// never present as null.
type StructValue struct {
	T      *Struct
	Fields []FieldValue
}

type UnionValue struct {
	T      *Union
	Member string
	V      Value
}

type ListValue struct {
	T     *List
	Items []Value
}

type MapEntryValue struct {
	Key   Value
	Value Value
}

type MapValue struct {
	T       *Map
	Entries []MapEntryValue
}

func (v NullValue) Type() Type {
	if v.T == nil {
		return Void
	}
	return v.T
}
func (BoolValue) Type() Type       { return Boolean }
func (v IntValue) Type() Type      { return v.T }
func (v FloatValue) Type() Type    { return v.T }
func (v DecimalValue) Type() Type  { return v.T }
func (v StringValue) Type() Type   { return v.T }
func (v BytesValue) Type() Type    { return v.T }
func (UuidValue) Type() Type       { return Uuid }
func (v TemporalValue) Type() Type { return v.T }
func (v ScalarValue) Type() Type   { return v.T }
func (v EnumValue) Type() Type     { return v.T }
func (v StructValue) Type() Type   { return v.T }
func (v UnionValue) Type() Type    { return v.T }
func (v ListValue) Type() Type     { return v.T }
func (v MapValue) Type() Type      { return v.T }

func (NullValue) isValue()     {}
func (BoolValue) isValue()     {}
func (IntValue) isValue()      {}
func (FloatValue) isValue()    {}
func (DecimalValue) isValue()  {}
func (StringValue) isValue()   {}
func (BytesValue) isValue()    {}
func (UuidValue) isValue()     {}
func (TemporalValue) isValue() {}
func (ScalarValue) isValue()   {}
func (EnumValue) isValue()     {}
func (StructValue) isValue()   {}
func (UnionValue) isValue()    {}
func (ListValue) isValue()     {}
func (MapValue) isValue()      {}

func (NullValue) String() string    { return "null" }
func (v BoolValue) String() string  { return strconv.FormatBool(v.V) }
func (v IntValue) String() string   { return strconv.FormatInt(v.V, 10) }
func (v DecimalValue) String() string {
	if v.T != nil && v.T.Kind() == KindDecimal {
		return v.V.StringFixed(int32(v.T.Scale))
	}
	return v.V.String()
}
func (v StringValue) String() string { return quote(v.V) }
func (v BytesValue) String() string  { return "x'" + hex.EncodeToString(v.V) + "'" }
func (v UuidValue) String() string   { return quote(v.V.String()) }
func (v ScalarValue) String() string { return v.V.String() }
func (v EnumValue) String() string   { return v.Symbol.Name }

func (v FloatValue) String() string {
	bits := 64
	if v.T != nil && v.T.Kind() == KindFloat32 {
		bits = 32
	}
	return strconv.FormatFloat(v.V, 'g', -1, bits)
}

func (v TemporalValue) String() string {
	return quote(FormatTemporal(v.T, v.V))
}

func (v StructValue) String() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return "@{" + strings.Join(parts, ", ") + "}"
}

func (v UnionValue) String() string {
	return v.Member + "(" + v.V.String() + ")"
}

func (v ListValue) String() string {
	parts := make([]string, len(v.Items))
	for i, it := range v.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v MapValue) String() string {
	parts := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		parts[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Field returns the value of a present field.
func (v StructValue) Field(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// FormatTemporal renders t in the canonical literal form of a temporal type,
// with exactly the type's fractional-second precision.
func FormatTemporal(p *Primitive, t time.Time) string {
	frac := ""
	if p.Precision > 0 {
		frac = "." + strings.Repeat("0", p.Precision)
	}
	switch p.Kind() {
	case KindDate:
		return t.Format("2006-01-02")
	case KindTime:
		return t.Format("15:04:05" + frac)
	case KindTimestamp:
		return t.Format("2006-01-02 15:04:05" + frac)
	case KindTimestampTz:
		return t.Format("2006-01-02 15:04:05" + frac + "Z07:00")
	}
	return t.String()
}

// Equal reports whether two bound values denote the same datum. Numeric values
// of different widths compare by magnitude; scalars compare by their payload.
func Equal(a, b Value) bool {
	a, b = Unwrap(a), Unwrap(b)
	if c, ok := Compare(a, b); ok {
		return c == 0
	}
	switch a := a.(type) {
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case BoolValue:
		b, ok := b.(BoolValue)
		return ok && a.V == b.V
	case BytesValue:
		b, ok := b.(BytesValue)
		return ok && bytes.Equal(a.V, b.V)
	case UuidValue:
		b, ok := b.(UuidValue)
		return ok && a.V == b.V
	case EnumValue:
		b, ok := b.(EnumValue)
		return ok && a.T == b.T && a.Symbol == b.Symbol
	case UnionValue:
		b, ok := b.(UnionValue)
		return ok && a.T == b.T && a.Member == b.Member && Equal(a.V, b.V)
	case ListValue:
		b, ok := b.(ListValue)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case MapValue:
		b, ok := b.(MapValue)
		if !ok || len(a.Entries) != len(b.Entries) {
			return false
		}
		for i := range a.Entries {
			if !Equal(a.Entries[i].Key, b.Entries[i].Key) || !Equal(a.Entries[i].Value, b.Entries[i].Value) {
				return false
			}
		}
		return true
	case StructValue:
		b, ok := b.(StructValue)
		if !ok || len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			other, ok := b.Field(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values of an ordered family: numbers, strings, temporal
// values and enums (by ordinal). ok is false when the values are not mutually
// ordered.
func Compare(a, b Value) (c int, ok bool) {
	a, b = Unwrap(a), Unwrap(b)
	if x, isNum := AsDecimal(a); isNum {
		y, isNum := AsDecimal(b)
		if !isNum {
			return 0, false
		}
		return x.Cmp(y), true
	}
	switch a := a.(type) {
	case StringValue:
		if b, isStr := b.(StringValue); isStr {
			return strings.Compare(a.V, b.V), true
		}
	case TemporalValue:
		if b, isTemp := b.(TemporalValue); isTemp && a.T.Kind() == b.T.Kind() {
			return a.V.Compare(b.V), true
		}
	case EnumValue:
		if b, isEnum := b.(EnumValue); isEnum && a.T == b.T {
			switch {
			case a.Symbol.Value < b.Symbol.Value:
				return -1, true
			case a.Symbol.Value > b.Symbol.Value:
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// AsDecimal converts any numeric value to an arbitrary-precision decimal.
func AsDecimal(v Value) (decimal.Decimal, bool) {
	switch v := Unwrap(v).(type) {
	case IntValue:
		return decimal.NewFromInt(v.V), true
	case FloatValue:
		return decimal.NewFromFloat(v.V), true
	case DecimalValue:
		return v.V, true
	}
	return decimal.Decimal{}, false
}

// Unwrap returns the payload of a scalar value and any other value unchanged.
func Unwrap(v Value) Value {
	if s, ok := v.(ScalarValue); ok {
		return s.V
	}
	return v
}

// Describe is a short human form of a value for diagnostics.
func Describe(v Value) string {
	s := v.String()
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return fmt.Sprintf("%s %s", v.Type(), s)
}
