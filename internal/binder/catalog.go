package binder

import (
	"strconv"

	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// CatalogType is one declared type.
type CatalogType struct {
	Name string
	Kind syntax.DeclKind
	Type types.Type
}

// Catalog lists the declared types and streams of a compile in declaration order.
type Catalog struct {
	types   []CatalogType
	streams []*types.Stream
	byName  map[string]types.Type
}

func newCatalog() *Catalog {
	return &Catalog{byName: make(map[string]types.Type)}
}

func (c *Catalog) addType(name string, kind syntax.DeclKind, t types.Type) {
	c.types = append(c.types, CatalogType{Name: name, Kind: kind, Type: t})
	c.byName[name] = t
}

func (c *Catalog) addStream(s *types.Stream) {
	c.streams = append(c.streams, s)
}

// Types returns the declared types.
func (c *Catalog) Types() []CatalogType {
	return append([]CatalogType(nil), c.types...)
}

// Streams returns the declared streams.
func (c *Catalog) Streams() []*types.Stream {
	return append([]*types.Stream(nil), c.streams...)
}

// Type looks a declared type up by its fully qualified name.
func (c *Catalog) Type(name string) (types.Type, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Stream looks a stream up by its fully qualified name.
func (c *Catalog) Stream(name string) (*types.Stream, bool) {
	for _, s := range c.streams {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// normalizeEnum returns a copy of d whose symbols all carry their integer
// value as a canonical number literal. The copy keeps the node identifiers of
// d; only the synthesized literals are numbered afresh.
func (b *Binder) normalizeEnum(d *syntax.CreateEnum) *syntax.CreateEnum {
	t, ok := b.env.Type(d)
	if !ok {
		return d
	}
	e, ok := t.(*types.Enum)
	if !ok {
		return d
	}
	cp := *d
	cp.Symbols = make([]*syntax.EnumSymbol, 0, len(d.Symbols))
	for _, s := range d.Symbols {
		sc := *s
		if sym, ok := e.Symbol(s.Name); ok {
			sc.Value = &syntax.NumberLit{
				Base: syntax.At(s.Span()),
				Text: strconv.FormatInt(sym.Value, 10),
			}
		}
		cp.Symbols = append(cp.Symbols, &sc)
	}
	b.arena.Number(&cp)
	return &cp
}
