package binder

import (
	"github.com/streamdl/streamdl/internal/syntax"
)

// Symbol is one declared name.
type Symbol struct {
	// Name is the fully qualified name, without a leading dot.
	Name string
	Kind syntax.DeclKind
	Decl syntax.Declaration
	// Context is the enclosing context the declaration was made in.
	Context syntax.QualifiedName
}

// SymbolTable maps fully qualified names to declarations. The root context
// always exists and has the empty name.
type SymbolTable struct {
	symbols map[string]*Symbol
	byDecl  map[syntax.NodeID]*Symbol
	order   []*Symbol
}

// NewSymbolTable returns a table holding only the root context.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: map[string]*Symbol{
			"": {Kind: syntax.DeclContext},
		},
		byDecl: make(map[syntax.NodeID]*Symbol),
	}
}

// Qualify resolves a declared name against the current context: rooted names
// are absolute, relative ones are placed under cur.
func Qualify(cur, name syntax.QualifiedName) syntax.QualifiedName {
	if name.Rooted {
		return syntax.QualifiedName{Parts: name.Parts}
	}
	return syntax.QualifiedName{Parts: cur.Join(name).Parts}
}

// Declare registers d under full. It returns the symbol already holding that
// name, and false, when the name is taken.
func (t *SymbolTable) Declare(full syntax.QualifiedName, cur syntax.QualifiedName, d syntax.Declaration) (*Symbol, bool) {
	name := full.String()
	if prev, ok := t.symbols[name]; ok {
		return prev, false
	}
	sym := &Symbol{Name: name, Kind: d.DeclKind(), Decl: d, Context: cur}
	t.symbols[name] = sym
	t.byDecl[d.ID()] = sym
	t.order = append(t.order, sym)
	return sym, true
}

// Lookup finds a symbol by its fully qualified name.
func (t *SymbolTable) Lookup(full string) (*Symbol, bool) {
	sym, ok := t.symbols[full]
	return sym, ok
}

// IsContext reports whether full names a context (the root included).
func (t *SymbolTable) IsContext(full string) bool {
	sym, ok := t.symbols[full]
	return ok && sym.Kind == syntax.DeclContext
}

// Resolve looks name up from the current context outwards: cur.name, then the
// parent of cur joined with name, and so on up to the root. A rooted name is
// looked up only from the root.
func (t *SymbolTable) Resolve(cur, name syntax.QualifiedName) (*Symbol, bool) {
	if name.IsRoot() {
		return nil, false
	}
	if name.Rooted {
		return t.Lookup(name.String())
	}
	ctx := syntax.QualifiedName{Parts: cur.Parts}
	for {
		if sym, ok := t.Lookup(ctx.Join(name).String()); ok {
			return sym, true
		}
		if ctx.IsRoot() {
			return nil, false
		}
		ctx = ctx.Parent()
	}
}

// Symbols returns every declared symbol in declaration order, excluding the root.
func (t *SymbolTable) Symbols() []*Symbol {
	return append([]*Symbol(nil), t.order...)
}

// ByDecl returns the symbol registered for d.
func (t *SymbolTable) ByDecl(d syntax.Declaration) (*Symbol, bool) {
	sym, ok := t.byDecl[d.ID()]
	return sym, ok
}
