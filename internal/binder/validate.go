package binder

import (
	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// validateGraph walks every built type and reports any Reference placeholder
// still present. Such a placeholder means the type builder broke its own
// invariant; valid or invalid user input never produces one.
func (b *Binder) validateGraph() {
	visited := make(map[types.Type]bool)
	for _, sym := range b.symbols.Symbols() {
		switch sym.Kind {
		case syntax.DeclContext:
			continue
		case syntax.DeclStream:
			if st, ok := b.streams[sym.Name]; ok {
				for _, a := range st.Aliases() {
					b.findReferences(a.Row, sym, visited)
				}
			}
		default:
			if t, ok := b.env.Type(sym.Decl); ok {
				b.findReferences(t, sym, visited)
			}
		}
	}
}

func (b *Binder) findReferences(t types.Type, owner *Symbol, visited map[types.Type]bool) {
	if t == nil || visited[t] {
		return
	}
	visited[t] = true
	switch t := t.(type) {
	case *types.Reference:
		b.diags.Internalf(owner.Decl.Span(), diag.CodeUnresolvedReference,
			"Type '%s' still refers to unresolved '%s' after type building", owner.Name, t.Name)
	case *types.Scalar:
		if t.Base != nil {
			b.findReferences(t.Base, owner, visited)
		}
	case *types.Struct:
		for _, f := range t.Fields() {
			b.findReferences(f.Type, owner, visited)
		}
	case *types.Union:
		for _, m := range t.Members() {
			b.findReferences(m.Type, owner, visited)
		}
	case *types.List:
		b.findReferences(t.Item, owner, visited)
	case *types.Map:
		b.findReferences(t.Key, owner, visited)
		b.findReferences(t.Value, owner, visited)
	}
}
