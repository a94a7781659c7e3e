package binder

import (
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// BindLiteral binds lit against the type expected at its site. It returns nil,
// after reporting why, when the literal does not fit.
func (b *Binder) BindLiteral(lit syntax.Literal, expected types.Type) types.Value {
	b.arena.Number(lit)
	return b.bindLiteral(lit, expected)
}

func (b *Binder) bindLiteral(lit syntax.Literal, expected types.Type) types.Value {
	if v, ok := b.env.Value(lit); ok {
		return v
	}
	if types.IsVoid(expected) {
		// The expected type failed to build and has been reported already.
		return nil
	}
	if _, ok := lit.(*syntax.NullLit); ok {
		return b.env.BindValue(lit, types.NullValue{T: expected})
	}

	var v types.Value
	switch t := expected.(type) {
	case *types.Primitive:
		v = b.bindPrimitive(lit, t)
	case *types.Scalar:
		v = b.bindScalar(lit, t)
	case *types.Enum:
		v = b.bindEnum(lit, t)
	case *types.Struct:
		v = b.bindStruct(lit, t)
	case *types.Union:
		v = b.bindUnion(lit, t)
	case *types.List:
		v = b.bindList(lit, t)
	case *types.Map:
		v = b.bindMap(lit, t)
	case *types.Reference:
		b.diags.Internalf(lit.Span(), diag.CodeUnresolvedReference,
			"Literal bound against unresolved type %s", t.Name)
	}
	if v == nil {
		return nil
	}
	return b.env.BindValue(lit, v)
}

func (b *Binder) mismatch(lit syntax.Literal, expected types.Type) {
	b.diags.Errorf(lit.Span(), diag.CodeTypeMismatch,
		"Expected a %s value, got a %s literal", expected, lit.Describe())
}

func (b *Binder) bindPrimitive(lit syntax.Literal, p *types.Primitive) types.Value {
	switch p.Kind() {
	case types.KindBoolean:
		if l, ok := lit.(*syntax.BoolLit); ok {
			return types.BoolValue{V: l.Value}
		}
	case types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64:
		if l, ok := lit.(*syntax.NumberLit); ok {
			return b.bindInteger(l, p)
		}
	case types.KindFloat32, types.KindFloat64:
		if l, ok := lit.(*syntax.NumberLit); ok {
			return b.bindFloat(l, p)
		}
	case types.KindDecimal:
		if l, ok := lit.(*syntax.NumberLit); ok {
			return b.bindDecimal(l, p)
		}
	case types.KindString:
		if l, ok := lit.(*syntax.StringLit); ok {
			if p.Length > 0 && utf8.RuneCountInString(l.Value) > p.Length {
				b.diags.Errorf(l.Span(), diag.CodeTooLong,
					"String of %d characters exceeds %s", utf8.RuneCountInString(l.Value), p)
				return nil
			}
			return types.StringValue{T: p, V: l.Value}
		}
	case types.KindBytes:
		if l, ok := lit.(*syntax.BytesLit); ok {
			if p.Length > 0 && len(l.Value) > p.Length {
				b.diags.Errorf(l.Span(), diag.CodeTooLong, "%d bytes exceed %s", len(l.Value), p)
				return nil
			}
			return types.BytesValue{T: p, V: l.Value}
		}
	case types.KindUuid:
		if l, ok := lit.(*syntax.StringLit); ok {
			id, err := uuid.Parse(l.Value)
			if err != nil {
				b.diags.Errorf(l.Span(), diag.CodeInvalidLiteral, "'%s' is not a valid Uuid: %v", l.Value, err)
				return nil
			}
			return types.UuidValue{V: id}
		}
	case types.KindDate, types.KindTime, types.KindTimestamp, types.KindTimestampTz:
		if l, ok := lit.(*syntax.StringLit); ok {
			return b.bindTemporal(l, p)
		}
	}
	b.mismatch(lit, p)
	return nil
}

func (b *Binder) parseNumber(l *syntax.NumberLit, p *types.Primitive) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(l.Text)
	if err != nil {
		b.diags.Errorf(l.Span(), diag.CodeInvalidLiteral, "'%s' is not a valid %s literal", l.Text, p)
		return decimal.Decimal{}, false
	}
	return d, true
}

func (b *Binder) bindInteger(l *syntax.NumberLit, p *types.Primitive) types.Value {
	d, ok := b.parseNumber(l, p)
	if !ok {
		return nil
	}
	if !d.IsInteger() {
		b.diags.Errorf(l.Span(), diag.CodeInvalidLiteral, "%s is not a whole number as %s requires", l.Text, p)
		return nil
	}
	if !fitsInt(d, p.Kind()) {
		lo, hi := intRange(p.Kind())
		b.diags.Errorf(l.Span(), diag.CodeOutOfRange, "%s is out of range for %s [%d, %d]", l.Text, p, lo, hi)
		return nil
	}
	return types.IntValue{T: p, V: d.IntPart()}
}

func (b *Binder) bindFloat(l *syntax.NumberLit, p *types.Primitive) types.Value {
	d, ok := b.parseNumber(l, p)
	if !ok {
		return nil
	}
	if !fitsFloat(d, p.Kind()) {
		b.diags.Errorf(l.Span(), diag.CodeOutOfRange, "%s is out of range for %s", l.Text, p)
		return nil
	}
	bits := 64
	if p.Kind() == types.KindFloat32 {
		bits = 32
	}
	f, err := strconv.ParseFloat(d.String(), bits)
	if err != nil {
		b.diags.Errorf(l.Span(), diag.CodeOutOfRange, "%s is out of range for %s", l.Text, p)
		return nil
	}
	return types.FloatValue{T: p, V: f}
}

// bindDecimal checks, in order: the absolute precision limit, the declared
// scale, and the integer digits left over by the declared scale.
func (b *Binder) bindDecimal(l *syntax.NumberLit, p *types.Primitive) types.Value {
	d, ok := b.parseNumber(l, p)
	if !ok {
		return nil
	}
	intDigits, scale := decimalShape(d)
	switch {
	case intDigits+scale > types.MaxDecimalPrecision:
		b.diags.Errorf(l.Span(), diag.CodePrecision,
			"%s has %d digits, more than the maximum precision %d", l.Text, intDigits+scale, types.MaxDecimalPrecision)
		return nil
	case scale > p.Scale:
		b.diags.Errorf(l.Span(), diag.CodeScale,
			"%s has %d fractional digits, %s allows %d", l.Text, scale, p, p.Scale)
		return nil
	case intDigits > p.Precision-p.Scale:
		b.diags.Errorf(l.Span(), diag.CodePrecision,
			"%s has %d integer digits, %s allows %d", l.Text, intDigits, p, p.Precision-p.Scale)
		return nil
	}
	return types.DecimalValue{T: p, V: d}
}

// bindTemporal reports a precision violation first and still attempts to
// parse, so a literal that is both too precise and malformed gets two errors.
func (b *Binder) bindTemporal(l *syntax.StringLit, p *types.Primitive) types.Value {
	failed := false
	if digits := fractionDigits(l.Value); digits > p.Precision {
		b.diags.Errorf(l.Span(), diag.CodePrecision,
			"'%s' has %d fractional second digits, %s allows %d", l.Value, digits, p, p.Precision)
		failed = true
	}
	t, err := parseTemporal(p, l.Value)
	if err != nil {
		b.diags.Errorf(l.Span(), diag.CodeInvalidLiteral, "'%s' is not a valid %s literal", l.Value, p)
		return nil
	}
	if failed {
		return nil
	}
	return types.TemporalValue{T: p, V: t}
}

func (b *Binder) bindScalar(lit syntax.Literal, s *types.Scalar) types.Value {
	if s.Base == nil {
		return nil
	}
	v := b.bindPrimitive(lit, s.Base)
	if v == nil {
		return nil
	}
	if s.Check != nil {
		ok, err := s.Check.Holds(types.Bindings{"value": v})
		switch {
		case err != nil:
			b.diags.Errorf(lit.Span(), diag.CodeCheckFailed, "CHECK of scalar '%s' could not be evaluated for %s: %v", s.Name, v, err)
			return nil
		case !ok:
			b.diags.Errorf(lit.Span(), diag.CodeCheckFailed, "Value %s violates the CHECK of scalar '%s'", v, s.Name)
			return nil
		}
	}
	return types.ScalarValue{T: s, V: v}
}

func (b *Binder) bindEnum(lit syntax.Literal, e *types.Enum) types.Value {
	l, ok := lit.(*syntax.EnumLit)
	if !ok {
		b.mismatch(lit, e)
		return nil
	}
	sym, ok := e.Symbol(l.Symbol)
	if !ok {
		b.diags.Errorf(l.Span(), diag.CodeUnknownSymbol, "Enum '%s' has no symbol '%s'", e.Name, l.Symbol)
		return nil
	}
	return types.EnumValue{T: e, Symbol: sym}
}

// bindStruct binds the fields present in the literal. Omitted fields stay
// absent; whether that is acceptable is decided by the caller.
func (b *Binder) bindStruct(lit syntax.Literal, s *types.Struct) types.Value {
	if syntax.IsEmptyComposite(lit) {
		return types.StructValue{T: s}
	}
	l, ok := lit.(*syntax.StructLit)
	if !ok {
		b.mismatch(lit, s)
		return nil
	}
	mark := b.diags.Mark()
	seen := make(map[string]bool, len(l.Fields))
	fields := make([]types.FieldValue, 0, len(l.Fields))
	for _, fi := range l.Fields {
		if seen[fi.Name] {
			b.diags.Errorf(fi.Span(), diag.CodeDuplicateKey, "Field '%s' is given more than once", fi.Name)
			continue
		}
		seen[fi.Name] = true
		f, ok := s.Field(fi.Name)
		if !ok {
			b.diags.Errorf(fi.Span(), diag.CodeUnknownField, "%s has no field '%s'", s, fi.Name)
			continue
		}
		if _, isNull := fi.Value.(*syntax.NullLit); isNull && !f.Nullable {
			b.diags.Errorf(fi.Span(), diag.CodeNotNullable, "Field '%s' of %s is not nullable", fi.Name, s)
			continue
		}
		if v := b.bindLiteral(fi.Value, f.Type); v != nil {
			fields = append(fields, types.FieldValue{Name: fi.Name, Value: v})
		}
	}
	if b.diags.ErrorsSince(mark) {
		return nil
	}
	return types.StructValue{T: s, Fields: fields}
}

func (b *Binder) bindUnion(lit syntax.Literal, u *types.Union) types.Value {
	l, ok := lit.(*syntax.UnionLit)
	if !ok {
		b.mismatch(lit, u)
		return nil
	}
	m, ok := u.Member(l.Member)
	if !ok {
		b.diags.Errorf(l.Span(), diag.CodeUnknownMember, "Union '%s' has no member '%s'", u.Name, l.Member)
		return nil
	}
	v := b.bindLiteral(l.Value, m.Type)
	if v == nil {
		return nil
	}
	return types.UnionValue{T: u, Member: m.Name, V: v}
}

func (b *Binder) bindList(lit syntax.Literal, t *types.List) types.Value {
	l, ok := lit.(*syntax.ListLit)
	if !ok {
		b.mismatch(lit, t)
		return nil
	}
	items := make([]types.Value, 0, len(l.Items))
	failed := false
	for _, it := range l.Items {
		v := b.bindLiteral(it, t.Item)
		if v == nil {
			failed = true
			continue
		}
		items = append(items, v)
	}
	if failed {
		return nil
	}
	return types.ListValue{T: t, Items: items}
}

func (b *Binder) bindMap(lit syntax.Literal, t *types.Map) types.Value {
	if syntax.IsEmptyComposite(lit) {
		return types.MapValue{T: t}
	}
	l, ok := lit.(*syntax.MapLit)
	if !ok {
		b.mismatch(lit, t)
		return nil
	}
	mark := b.diags.Mark()
	entries := make([]types.MapEntryValue, 0, len(l.Entries))
	for _, e := range l.Entries {
		k := b.bindLiteral(e.Key, t.Key)
		v := b.bindLiteral(e.Value, t.Value)
		if k == nil || v == nil {
			continue
		}
		dup := false
		for _, prev := range entries {
			if types.Equal(prev.Key, k) {
				dup = true
				break
			}
		}
		if dup {
			b.diags.Errorf(e.Key.Span(), diag.CodeDuplicateKey, "Map key %s is given more than once", k)
			continue
		}
		entries = append(entries, types.MapEntryValue{Key: k, Value: v})
	}
	if b.diags.ErrorsSince(mark) {
		return nil
	}
	return types.MapValue{T: t, Entries: entries}
}
