package syntax

import "reflect"

// Arena hands out node identifiers. One arena belongs to one compile; IDs are
// never reused within it.
type Arena struct {
	next NodeID
}

// NewArena returns an arena whose first identifier is 1.
func NewArena() *Arena {
	return &Arena{next: 1}
}

// Number assigns identifiers, in preorder, to every node under root that does
// not have one yet. Numbering an already numbered tree is a no-op.
func (a *Arena) Number(root Node) {
	Inspect(root, func(n Node) bool {
		if b := n.base(); b.id == 0 {
			b.id = a.next
			a.next++
		}
		return true
	})
}

// Len returns how many identifiers have been handed out.
func (a *Arena) Len() int {
	return int(a.next) - 1
}

// Inspect traverses the tree rooted at n in preorder, calling f for every
// non-nil node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	walk := func(c Node) { Inspect(c, f) }

	switch n := n.(type) {
	case *Program:
		for _, s := range n.Statements {
			walk(s)
		}
	case *UseContext, *CreateContext:
	case *CreateScalar:
		walk(n.Type)
		walk(n.Default)
		for _, c := range n.Checks {
			walk(c)
		}
	case *CreateEnum:
		walk(n.BaseType)
		for _, s := range n.Symbols {
			walk(s)
		}
		walk(n.Default)
	case *EnumSymbol:
		walk(n.Value)
	case *CreateStruct:
		for _, fd := range n.Fields {
			walk(fd)
		}
		for _, c := range n.Checks {
			walk(c)
		}
	case *Field:
		walk(n.Type)
		walk(n.Default)
	case *CreateUnion:
		for _, m := range n.Members {
			walk(m)
		}
		walk(n.Default)
	case *Member:
		walk(n.Type)
	case *CreateStream:
		for _, al := range n.Aliases {
			walk(al)
		}
	case *Alias:
		walk(n.Type)
	case *Check:
		walk(n.Expr)
	case *Read:
		for _, b := range n.Blocks {
			walk(b)
		}
	case *ReadBlock:
		for _, p := range n.Projections {
			walk(p)
		}
		walk(n.Where)
	case *Write:
		for _, v := range n.Values {
			walk(v)
		}

	case *PrimitiveType, *NamedType:
	case *ListType:
		walk(n.Item)
	case *MapType:
		walk(n.Key)
		walk(n.Value)
	case *StructType:
		for _, fd := range n.Fields {
			walk(fd)
		}

	case *Ident:
	case *MemberExpr:
		walk(n.Target)
	case *IndexExpr:
		walk(n.Target)
		walk(n.Index)
	case *UnaryExpr:
		walk(n.Operand)
	case *PostfixExpr:
		walk(n.Operand)
	case *BinaryExpr:
		walk(n.Left)
		walk(n.Right)
	case *BetweenExpr:
		walk(n.Target)
		walk(n.Low)
		walk(n.High)
	case *ParenExpr:
		walk(n.Inner)
	case *LiteralExpr:
		walk(n.Value)

	case *NullLit, *BoolLit, *NumberLit, *StringLit, *BytesLit, *EnumLit:
	case *ListLit:
		for _, it := range n.Items {
			walk(it)
		}
	case *MapLit:
		for _, e := range n.Entries {
			walk(e)
		}
	case *MapEntry:
		walk(n.Key)
		walk(n.Value)
	case *StructLit:
		for _, fi := range n.Fields {
			walk(fi)
		}
	case *FieldInit:
		walk(n.Value)
	case *UnionLit:
		walk(n.Value)
	}
}

// isNil catches typed nils stored in interface fields (a nil *NullLit in a Literal).
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
