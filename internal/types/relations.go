package types

// Underlying strips a scalar down to its base primitive.
func Underlying(t Type) Type {
	if s, ok := t.(*Scalar); ok && s.Base != nil {
		return s.Base
	}
	return t
}

// IsVoid reports the Void placeholder.
func IsVoid(t Type) bool {
	return t == nil || t.Kind() == KindVoid
}

// IsNumeric reports integer, floating point, decimal and untyped numeric types,
// looking through scalars.
func IsNumeric(t Type) bool {
	switch Underlying(t).Kind() {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindFloat32, KindFloat64, KindDecimal, KindNumeric:
		return true
	}
	return false
}

// IsInteger reports the integer widths, looking through scalars.
func IsInteger(t Type) bool {
	switch Underlying(t).Kind() {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// IsBoolean reports Boolean, looking through scalars.
func IsBoolean(t Type) bool {
	return Underlying(t).Kind() == KindBoolean
}

// IsTemporal reports Date, Time, Timestamp and TimestampTz.
func IsTemporal(t Type) bool {
	switch t.Kind() {
	case KindDate, KindTime, KindTimestamp, KindTimestampTz:
		return true
	}
	return false
}

// Identical reports whether two types denote the same type. Named types are
// identical only to themselves; primitives, lists and maps compare structurally.
func Identical(a, b Type) bool {
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *Primitive:
		b, ok := b.(*Primitive)
		return ok && *a == *b
	case *List:
		b, ok := b.(*List)
		return ok && Identical(a.Item, b.Item)
	case *Map:
		b, ok := b.(*Map)
		return ok && Identical(a.Key, b.Key) && Identical(a.Value, b.Value)
	case voidType:
		return b != nil && b.Kind() == KindVoid
	}
	return false
}

// SameFamily is Identical, except that primitives of one kind match regardless
// of their length or precision parameters (String(10) and String).
func SameFamily(a, b Type) bool {
	pa, ok1 := a.(*Primitive)
	pb, ok2 := b.(*Primitive)
	if ok1 && ok2 {
		return pa.kind == pb.kind
	}
	return Identical(a, b)
}

// Comparable reports whether two expression types may be compared: both
// numeric, or the same concrete type after unwrapping scalars. Void is
// comparable with everything so that one unresolved operand yields one error.
func Comparable(a, b Type) bool {
	if IsVoid(a) || IsVoid(b) {
		return true
	}
	if IsNumeric(a) && IsNumeric(b) {
		return true
	}
	return SameFamily(Underlying(a), Underlying(b))
}

// Assignable reports whether a value of type src can stand where dst is
// expected: the untyped numeric fits every numeric type, and otherwise the
// types must share a family after unwrapping scalars.
func Assignable(dst, src Type) bool {
	if IsVoid(src) || IsVoid(dst) {
		return true
	}
	if src.Kind() == KindNumeric {
		return IsNumeric(dst)
	}
	return SameFamily(Underlying(dst), Underlying(src))
}
