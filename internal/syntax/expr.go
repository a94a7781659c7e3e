package syntax

// TypeExpr is a type reference as written in a declaration.
type TypeExpr interface {
	Node
	typeExpr()
}

// PrimitiveType is a built-in type name with optional numeric parameters,
// e.g. Decimal(5, 2), String(40), Timestamp(3).
type PrimitiveType struct {
	Base
	Name   string
	Params []int
}

// NamedType refers to a declared scalar, enum, struct or union.
type NamedType struct {
	Base
	Name QualifiedName
}

// ListType is List<Item>.
type ListType struct {
	Base
	Item TypeExpr
}

// MapType is Map<Key, Value>.
type MapType struct {
	Base
	Key   TypeExpr
	Value TypeExpr
}

// StructType is an inline struct shape, used by stream aliases.
type StructType struct {
	Base
	Fields []*Field
}

func (*PrimitiveType) typeExpr() {}
func (*NamedType) typeExpr()     {}
func (*ListType) typeExpr()      {}
func (*MapType) typeExpr()       {}
func (*StructType) typeExpr()    {}

// Expr is a node of the expression language used by CHECK, WHERE and projections.
type Expr interface {
	Node
	expr()
}

// Ident is a bare identifier.
type Ident struct {
	Base
	Name string
}

// MemberExpr is target.member.
type MemberExpr struct {
	Base
	Target Expr
	Member string
}

// IndexExpr is target[index].
type IndexExpr struct {
	Base
	Target Expr
	Index  Expr
}

// UnaryExpr is a prefix operator application.
type UnaryExpr struct {
	Base
	Op      UnaryOp
	Operand Expr
}

// PostfixExpr is IS NULL / IS NOT NULL.
type PostfixExpr struct {
	Base
	Op      PostfixOp
	Operand Expr
}

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	Base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// BetweenExpr is target [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Base
	Target Expr
	Low    Expr
	High   Expr
	Not    bool
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Base
	Inner Expr
}

// LiteralExpr embeds a literal in an expression.
type LiteralExpr struct {
	Base
	Value Literal
}

func (*Ident) expr()       {}
func (*MemberExpr) expr()  {}
func (*IndexExpr) expr()   {}
func (*UnaryExpr) expr()   {}
func (*PostfixExpr) expr() {}
func (*BinaryExpr) expr()  {}
func (*BetweenExpr) expr() {}
func (*ParenExpr) expr()   {}
func (*LiteralExpr) expr() {}

type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "NOT"
	}
	return "-"
}

type PostfixOp int

const (
	OpIsNull PostfixOp = iota
	OpIsNotNull
)

func (op PostfixOp) String() string {
	if op == OpIsNull {
		return "IS NULL"
	}
	return "IS NOT NULL"
}

type BinaryOp int

const (
	OpAnd BinaryOp = iota
	OpOr
	OpXor
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpShl
	OpShr
	OpIn
)

var binaryOpNames = [...]string{
	OpAnd:    "AND",
	OpOr:     "OR",
	OpXor:    "XOR",
	OpEq:     "=",
	OpNe:     "<>",
	OpLt:     "<",
	OpLe:     "<=",
	OpGt:     ">",
	OpGe:     ">=",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpMod:    "%",
	OpBitAnd: "&",
	OpBitOr:  "|",
	OpShl:    "<<",
	OpShr:    ">>",
	OpIn:     "IN",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// IsLogical reports AND, OR and XOR.
func (op BinaryOp) IsLogical() bool { return op <= OpXor }

// IsComparison reports =, <>, <, <=, >, >=.
func (op BinaryOp) IsComparison() bool { return op >= OpEq && op <= OpGe }

// IsArithmetic reports +, -, *, / and %.
func (op BinaryOp) IsArithmetic() bool { return op >= OpAdd && op <= OpMod }

// IsBitwise reports &, |, << and >>.
func (op BinaryOp) IsBitwise() bool { return op >= OpBitAnd && op <= OpShr }
