// Package syntax defines the parsed program handed to the semantic core.
//
// The tree is produced by an external parser and is never mutated by the
// binder, with one exception: node identifiers, which an Arena assigns so that
// later passes can key side tables by NodeID instead of by pointer.
package syntax

// NodeID is the stable arena index of a node. Zero means "not yet numbered".
type NodeID int

// Node is implemented by every syntax tree node.
type Node interface {
	ID() NodeID
	Span() Range
	base() *Base
}

// Base carries the identity and source range shared by all nodes.
type Base struct {
	id    NodeID
	Range Range
}

func (b *Base) ID() NodeID  { return b.id }
func (b *Base) Span() Range { return b.Range }
func (b *Base) base() *Base { return b }

// At returns a Base positioned at r, for use in composite literals.
func At(r Range) Base { return Base{Range: r} }

// Program is an ordered sequence of statements.
type Program struct {
	Base
	Statements []Statement
}

// Statement is one top-level statement.
type Statement interface {
	Node
	stmt()
}

// Declaration is a statement that introduces a name into a context.
type Declaration interface {
	Statement
	DeclName() QualifiedName
	DeclKind() DeclKind
}

// DeclKind records which syntactic declaration introduced a name.
type DeclKind int

const (
	DeclContext DeclKind = iota
	DeclScalar
	DeclEnum
	DeclStruct
	DeclUnion
	DeclStream
)

var declKindNames = [...]string{
	DeclContext: "context",
	DeclScalar:  "scalar",
	DeclEnum:    "enum",
	DeclStruct:  "struct",
	DeclUnion:   "union",
	DeclStream:  "stream",
}

func (k DeclKind) String() string { return declKindNames[k] }

// UseContext switches the current context: USE CONTEXT a.b
type UseContext struct {
	Base
	Name QualifiedName
}

// CreateContext declares a namespace: CREATE CONTEXT a.b
type CreateContext struct {
	Base
	Name    QualifiedName
	Comment string
}

// CreateScalar declares a named refinement of a primitive type.
type CreateScalar struct {
	Base
	Name    QualifiedName
	Type    TypeExpr
	Default Literal
	Checks  []*Check
	Comment string
}

// CreateEnum declares a name-to-integer symbol set. BaseType may be nil (Int32).
type CreateEnum struct {
	Base
	Name     QualifiedName
	BaseType TypeExpr
	Symbols  []*EnumSymbol
	Default  Literal
	Comment  string
}

// EnumSymbol is one enum member. A nil Value means "previous value + 1".
type EnumSymbol struct {
	Base
	Name  string
	Value Literal
}

// CreateStruct declares a field record.
type CreateStruct struct {
	Base
	Name    QualifiedName
	Fields  []*Field
	Checks  []*Check
	Comment string
}

// Field is a struct field declaration.
type Field struct {
	Base
	Name     string
	Type     TypeExpr
	Nullable bool
	Default  Literal
	Comment  string
}

// CreateUnion declares a tagged choice.
type CreateUnion struct {
	Base
	Name    QualifiedName
	Members []*Member
	Default Literal
	Comment string
}

// Member is one union member.
type Member struct {
	Base
	Name string
	Type TypeExpr
}

// CreateStream declares a multiplexed sequence of rows, one row type per alias.
type CreateStream struct {
	Base
	Name    QualifiedName
	Aliases []*Alias
	Comment string
}

// Alias names a row shape of a stream: an inline StructType or a NamedType.
type Alias struct {
	Base
	Name string
	Type TypeExpr
}

// Check is a CHECK clause. Name is empty for the unnamed form.
type Check struct {
	Base
	Name string
	Expr Expr
}

// Read is READ FROM stream with one block per alias.
type Read struct {
	Base
	Stream QualifiedName
	Blocks []*ReadBlock
}

// ReadBlock projects one alias of a stream.
type ReadBlock struct {
	Base
	Alias       string
	Star        bool
	Projections []Expr
	Where       Expr
}

// Write is WRITE TO stream.alias VALUES(...).
type Write struct {
	Base
	Stream QualifiedName
	Alias  string
	Values []Literal
}

func (*UseContext) stmt()    {}
func (*CreateContext) stmt() {}
func (*CreateScalar) stmt()  {}
func (*CreateEnum) stmt()    {}
func (*CreateStruct) stmt()  {}
func (*CreateUnion) stmt()   {}
func (*CreateStream) stmt()  {}
func (*Read) stmt()          {}
func (*Write) stmt()         {}

func (d *CreateContext) DeclName() QualifiedName { return d.Name }
func (d *CreateScalar) DeclName() QualifiedName  { return d.Name }
func (d *CreateEnum) DeclName() QualifiedName    { return d.Name }
func (d *CreateStruct) DeclName() QualifiedName  { return d.Name }
func (d *CreateUnion) DeclName() QualifiedName   { return d.Name }
func (d *CreateStream) DeclName() QualifiedName  { return d.Name }

func (*CreateContext) DeclKind() DeclKind { return DeclContext }
func (*CreateScalar) DeclKind() DeclKind  { return DeclScalar }
func (*CreateEnum) DeclKind() DeclKind    { return DeclEnum }
func (*CreateStruct) DeclKind() DeclKind  { return DeclStruct }
func (*CreateUnion) DeclKind() DeclKind   { return DeclUnion }
func (*CreateStream) DeclKind() DeclKind  { return DeclStream }
