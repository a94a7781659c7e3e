package syntax

// Literal is value syntax. Literals are untyped: the binder decides what they
// mean from the type expected at the site where they appear.
type Literal interface {
	Node
	literal()
	// Describe names the literal form for diagnostics ("number", "struct", ...).
	Describe() string
}

type NullLit struct {
	Base
}

type BoolLit struct {
	Base
	Value bool
}

// NumberLit keeps the source text so that no precision is lost before binding.
type NumberLit struct {
	Base
	Text string
}

// StringLit also carries temporal and uuid literals, which are string-encoded.
type StringLit struct {
	Base
	Value string
}

type BytesLit struct {
	Base
	Value []byte
}

type ListLit struct {
	Base
	Items []Literal
}

type MapLit struct {
	Base
	Entries []*MapEntry
}

type MapEntry struct {
	Base
	Key   Literal
	Value Literal
}

type StructLit struct {
	Base
	Fields []*FieldInit
}

type FieldInit struct {
	Base
	Name  string
	Value Literal
}

// EnumLit names an enum symbol.
type EnumLit struct {
	Base
	Symbol string
}

// UnionLit is Member(payload).
type UnionLit struct {
	Base
	Member string
	Value  Literal
}

func (*NullLit) literal()   {}
func (*BoolLit) literal()   {}
func (*NumberLit) literal() {}
func (*StringLit) literal() {}
func (*BytesLit) literal()  {}
func (*ListLit) literal()   {}
func (*MapLit) literal()    {}
func (*StructLit) literal() {}
func (*EnumLit) literal()   {}
func (*UnionLit) literal()  {}

func (*NullLit) Describe() string   { return "null" }
func (*BoolLit) Describe() string   { return "boolean" }
func (*NumberLit) Describe() string { return "number" }
func (*StringLit) Describe() string { return "string" }
func (*BytesLit) Describe() string  { return "bytes" }
func (*ListLit) Describe() string   { return "list" }
func (*MapLit) Describe() string    { return "map" }
func (*StructLit) Describe() string { return "struct" }
func (*EnumLit) Describe() string   { return "enum" }
func (*UnionLit) Describe() string  { return "union" }

// IsEmptyComposite reports an empty struct or map literal. Which of the two it
// denotes is decided by the expected type.
func IsEmptyComposite(l Literal) bool {
	switch l := l.(type) {
	case *StructLit:
		return len(l.Fields) == 0
	case *MapLit:
		return len(l.Entries) == 0
	}
	return false
}
