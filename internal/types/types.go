// Package types holds the runtime type graph produced by the binder, the typed
// values bound from literals, and compiled CHECK constraints.
//
// Types are built once per compile and shared by reference: two fields that
// refer to the same declaration point at the same object. Composite types are
// allocated before their members are filled in so that recursive declarations
// resolve to the object under construction. The Set methods exist for that
// construction step only: the binder seals every composite once it is built,
// and a Set call on a sealed type panics.
package types

import (
	"fmt"
	"strings"
)

// Kind enumerates every runtime type variant.
type Kind int

const (
	KindVoid Kind = iota
	KindBoolean
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindBytes
	KindUuid
	KindDate
	KindTime
	KindTimestamp
	KindTimestampTz
	// KindNumeric is the provisional type of a numeric literal inside an expression.
	KindNumeric
	KindScalar
	KindEnum
	KindStruct
	KindUnion
	KindList
	KindMap
	KindReference
)

var kindNames = [...]string{
	KindVoid:        "Void",
	KindBoolean:     "Boolean",
	KindInt8:        "Int8",
	KindInt16:       "Int16",
	KindInt32:       "Int32",
	KindInt64:       "Int64",
	KindFloat32:     "Float32",
	KindFloat64:     "Float64",
	KindDecimal:     "Decimal",
	KindString:      "String",
	KindBytes:       "Bytes",
	KindUuid:        "Uuid",
	KindDate:        "Date",
	KindTime:        "Time",
	KindTimestamp:   "Timestamp",
	KindTimestampTz: "TimestampTz",
	KindNumeric:     "Numeric",
	KindScalar:      "Scalar",
	KindEnum:        "Enum",
	KindStruct:      "Struct",
	KindUnion:       "Union",
	KindList:        "List",
	KindMap:         "Map",
	KindReference:   "Reference",
}

func (k Kind) String() string { return kindNames[k] }

// Type is a node of the runtime type graph.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// Primitive is a built-in type. Precision and Scale apply to Decimal,
// Precision alone to the temporal kinds; Length bounds String and Bytes
// (zero means unbounded).
type Primitive struct {
	kind      Kind
	Precision int
	Scale     int
	Length    int
}

const (
	// MaxDecimalPrecision is the widest Decimal the binder accepts.
	MaxDecimalPrecision = 38
	// MaxTemporalPrecision is the finest fractional-second precision (nanoseconds).
	MaxTemporalPrecision = 9
	// DefaultTemporalPrecision applies when Time/Timestamp carry no parameter.
	DefaultTemporalPrecision = 6
)

var (
	Boolean = &Primitive{kind: KindBoolean}
	Int8    = &Primitive{kind: KindInt8}
	Int16   = &Primitive{kind: KindInt16}
	Int32   = &Primitive{kind: KindInt32}
	Int64   = &Primitive{kind: KindInt64}
	Float32 = &Primitive{kind: KindFloat32}
	Float64 = &Primitive{kind: KindFloat64}
	String  = &Primitive{kind: KindString}
	Bytes   = &Primitive{kind: KindBytes}
	Uuid    = &Primitive{kind: KindUuid}
	Date    = &Primitive{kind: KindDate}
	Numeric = &Primitive{kind: KindNumeric}

	Void Type = voidType{}
)

// NewDecimal returns Decimal(precision, scale). Parameters are validated by the binder.
func NewDecimal(precision, scale int) *Primitive {
	return &Primitive{kind: KindDecimal, Precision: precision, Scale: scale}
}

// NewString returns String(length); zero length is unbounded.
func NewString(length int) *Primitive {
	if length == 0 {
		return String
	}
	return &Primitive{kind: KindString, Length: length}
}

// NewBytes returns Bytes(length); zero length is unbounded.
func NewBytes(length int) *Primitive {
	if length == 0 {
		return Bytes
	}
	return &Primitive{kind: KindBytes, Length: length}
}

// NewTemporal returns Time, Timestamp or TimestampTz with the given precision.
func NewTemporal(kind Kind, precision int) *Primitive {
	switch kind {
	case KindTime, KindTimestamp, KindTimestampTz:
		return &Primitive{kind: kind, Precision: precision}
	}
	panic(fmt.Sprintf("types: %s is not a temporal kind with precision", kind))
}

func (p *Primitive) Kind() Kind { return p.kind }
func (*Primitive) isType()      {}

func (p *Primitive) String() string {
	switch p.kind {
	case KindDecimal:
		return fmt.Sprintf("Decimal(%d, %d)", p.Precision, p.Scale)
	case KindString, KindBytes:
		if p.Length > 0 {
			return fmt.Sprintf("%s(%d)", p.kind, p.Length)
		}
	case KindTime, KindTimestamp, KindTimestampTz:
		return fmt.Sprintf("%s(%d)", p.kind, p.Precision)
	}
	return p.kind.String()
}

type voidType struct{}

func (voidType) Kind() Kind     { return KindVoid }
func (voidType) String() string { return "Void" }
func (voidType) isType()        {}

// Scalar is a named refinement of one primitive with an optional CHECK.
type Scalar struct {
	Name  string
	Base  *Primitive
	Check *Constraint
	Doc   string
}

func (*Scalar) Kind() Kind       { return KindScalar }
func (s *Scalar) String() string { return s.Name }
func (*Scalar) isType()          {}

// EnumSymbol is one name with its normalized integer value.
type EnumSymbol struct {
	Name  string
	Value int64
}

// Enum is an ordered symbol set over an integer base type.
type Enum struct {
	Name    string
	Base    *Primitive
	Doc     string
	symbols []EnumSymbol
	index   map[string]int
	sealed  bool
}

// NewEnum returns an enum without symbols.
func NewEnum(name string, base *Primitive, doc string) *Enum {
	return &Enum{Name: name, Base: base, Doc: doc, index: map[string]int{}}
}

// SetSymbols installs the symbol list while the enum is under construction.
func (e *Enum) SetSymbols(symbols []EnumSymbol) {
	mustBeOpen(e.sealed, e.Name)
	e.symbols = append([]EnumSymbol(nil), symbols...)
	e.index = make(map[string]int, len(symbols))
	for i, s := range e.symbols {
		e.index[s.Name] = i
	}
}

// Symbols returns the symbols in declaration order.
func (e *Enum) Symbols() []EnumSymbol {
	return append([]EnumSymbol(nil), e.symbols...)
}

// Symbol looks up a symbol by name.
func (e *Enum) Symbol(name string) (EnumSymbol, bool) {
	i, ok := e.index[name]
	if !ok {
		return EnumSymbol{}, false
	}
	return e.symbols[i], true
}

// Seal ends construction; later Set calls panic.
func (e *Enum) Seal() { e.sealed = true }

func (*Enum) Kind() Kind       { return KindEnum }
func (e *Enum) String() string { return e.Name }
func (*Enum) isType()          {}

// Field is one struct field. Default is nil unless the struct was produced by
// WithDefaults.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
	Default  Value
	Doc      string
}

// Struct is an ordered field record with named constraints.
type Struct struct {
	Name   string
	Doc    string
	fields []Field
	index  map[string]int
	checks []*Constraint
	sealed bool
}

// NewStruct returns a struct shell without fields.
func NewStruct(name, doc string) *Struct {
	return &Struct{Name: name, Doc: doc, index: map[string]int{}}
}

// SetFields installs the field list of a shell under construction.
func (s *Struct) SetFields(fields []Field) {
	mustBeOpen(s.sealed, s.Name)
	s.setFields(fields)
}

func (s *Struct) setFields(fields []Field) {
	s.fields = append([]Field(nil), fields...)
	s.index = make(map[string]int, len(fields))
	for i, f := range s.fields {
		s.index[f.Name] = i
	}
}

// SetChecks installs the named constraints of a shell under construction.
func (s *Struct) SetChecks(checks []*Constraint) {
	mustBeOpen(s.sealed, s.Name)
	s.checks = append([]*Constraint(nil), checks...)
}

// Fields returns the fields in declaration order.
func (s *Struct) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Field looks up a field by name.
func (s *Struct) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Checks returns the named constraints.
func (s *Struct) Checks() []*Constraint {
	return append([]*Constraint(nil), s.checks...)
}

// WithDefaults returns a copy of s whose fields carry the given defaults. The
// copy shares field types and constraints with s.
func (s *Struct) WithDefaults(defaults map[string]Value) *Struct {
	out := &Struct{Name: s.Name, Doc: s.Doc, checks: s.checks, sealed: true}
	fields := s.Fields()
	for i := range fields {
		if v, ok := defaults[fields[i].Name]; ok {
			fields[i].Default = v
		}
	}
	out.setFields(fields)
	return out
}

// Seal ends construction; later Set calls panic.
func (s *Struct) Seal() { s.sealed = true }

func (*Struct) Kind() Kind { return KindStruct }
func (*Struct) isType()    {}

func (s *Struct) String() string {
	if s.Name != "" {
		return s.Name
	}
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Name + " " + f.Type.String()
	}
	return "Struct(" + strings.Join(parts, ", ") + ")"
}

// UnionMember is one alternative of a union.
type UnionMember struct {
	Name string
	Type Type
}

// Union is an ordered tagged choice.
type Union struct {
	Name    string
	Doc     string
	members []UnionMember
	index   map[string]int
	sealed  bool
}

// NewUnion returns a union shell without members.
func NewUnion(name, doc string) *Union {
	return &Union{Name: name, Doc: doc, index: map[string]int{}}
}

// SetMembers installs the members of a shell under construction.
func (u *Union) SetMembers(members []UnionMember) {
	mustBeOpen(u.sealed, u.Name)
	u.members = append([]UnionMember(nil), members...)
	u.index = make(map[string]int, len(members))
	for i, m := range u.members {
		u.index[m.Name] = i
	}
}

// Members returns the members in declaration order.
func (u *Union) Members() []UnionMember {
	return append([]UnionMember(nil), u.members...)
}

// Member looks up a member by name.
func (u *Union) Member(name string) (UnionMember, bool) {
	i, ok := u.index[name]
	if !ok {
		return UnionMember{}, false
	}
	return u.members[i], true
}

// Seal ends construction; later Set calls panic.
func (u *Union) Seal() { u.sealed = true }

func (*Union) Kind() Kind       { return KindUnion }
func (u *Union) String() string { return u.Name }
func (*Union) isType()          {}

// List is List<Item>.
type List struct {
	Item Type
}

func (*List) Kind() Kind       { return KindList }
func (l *List) String() string { return "List<" + l.Item.String() + ">" }
func (*List) isType()          {}

// Map is Map<Key, Value>; keys are always primitive.
type Map struct {
	Key   *Primitive
	Value Type
}

func (*Map) Kind() Kind       { return KindMap }
func (m *Map) String() string { return "Map<" + m.Key.String() + ", " + m.Value.String() + ">" }
func (*Map) isType()          {}

// Reference is an unresolved named type. A finished type graph never contains one.
type Reference struct {
	Name string
}

func (*Reference) Kind() Kind       { return KindReference }
func (r *Reference) String() string { return "&" + r.Name }
func (*Reference) isType()          {}

func mustBeOpen(sealed bool, name string) {
	if sealed {
		panic(fmt.Sprintf("types: %s is sealed and cannot be modified", name))
	}
}
