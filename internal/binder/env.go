package binder

import (
	"fmt"
	"sort"

	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// Entry is what a syntax node was resolved to. A literal may carry both the
// type it was bound against and its value.
type Entry struct {
	Type  types.Type
	Value types.Value
	Decl  syntax.Declaration
}

// Env is the binding environment: a side table from node identifier to the
// artifact the node resolved to. A node is bound at most once per compile;
// binding it again keeps and returns the first artifact.
type Env struct {
	entries map[syntax.NodeID]Entry
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{entries: make(map[syntax.NodeID]Entry)}
}

func key(n syntax.Node) syntax.NodeID {
	id := n.ID()
	if id == 0 {
		panic(fmt.Sprintf("binder: unnumbered %T at %s", n, n.Span()))
	}
	return id
}

// BindType records t for n unless n is already bound, and returns the type in
// effect for n.
func (e *Env) BindType(n syntax.Node, t types.Type) types.Type {
	id := key(n)
	ent := e.entries[id]
	if ent.Type != nil {
		return ent.Type
	}
	ent.Type = t
	e.entries[id] = ent
	return t
}

// Type returns the type bound to n.
func (e *Env) Type(n syntax.Node) (types.Type, bool) {
	ent, ok := e.entries[key(n)]
	if !ok || ent.Type == nil {
		return nil, false
	}
	return ent.Type, true
}

// BindValue records v for n unless n is already bound.
func (e *Env) BindValue(n syntax.Node, v types.Value) types.Value {
	id := key(n)
	ent := e.entries[id]
	if ent.Value != nil {
		return ent.Value
	}
	ent.Value = v
	e.entries[id] = ent
	return v
}

// Value returns the value bound to n.
func (e *Env) Value(n syntax.Node) (types.Value, bool) {
	ent, ok := e.entries[key(n)]
	if !ok || ent.Value == nil {
		return nil, false
	}
	return ent.Value, true
}

// BindDecl records that n refers to the declaration d.
func (e *Env) BindDecl(n syntax.Node, d syntax.Declaration) {
	id := key(n)
	ent := e.entries[id]
	if ent.Decl != nil {
		return
	}
	ent.Decl = d
	e.entries[id] = ent
}

// Decl returns the declaration n refers to.
func (e *Env) Decl(n syntax.Node) (syntax.Declaration, bool) {
	ent, ok := e.entries[key(n)]
	if !ok || ent.Decl == nil {
		return nil, false
	}
	return ent.Decl, true
}

// Lookup returns the raw entry for an identifier.
func (e *Env) Lookup(id syntax.NodeID) (Entry, bool) {
	ent, ok := e.entries[id]
	return ent, ok
}

// Len returns the number of bound nodes.
func (e *Env) Len() int {
	return len(e.entries)
}

// IDs returns every bound identifier in ascending order.
func (e *Env) IDs() []syntax.NodeID {
	ids := make([]syntax.NodeID, 0, len(e.entries))
	for id := range e.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
