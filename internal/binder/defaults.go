package binder

import (
	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// Defaults holds the bound default values of a compile. Shared types never
// carry defaults themselves; row types get them attached from here.
type Defaults struct {
	types  map[string]types.Value
	fields map[*types.Struct]map[string]types.Value
}

func newDefaults() *Defaults {
	return &Defaults{
		types:  make(map[string]types.Value),
		fields: make(map[*types.Struct]map[string]types.Value),
	}
}

// Type returns the default of a scalar, enum or union by qualified name.
func (d *Defaults) Type(name string) (types.Value, bool) {
	v, ok := d.types[name]
	return v, ok
}

// Field returns the default of one struct field.
func (d *Defaults) Field(s *types.Struct, field string) (types.Value, bool) {
	v, ok := d.fields[s][field]
	return v, ok
}

// Fields returns every field default of s.
func (d *Defaults) Fields(s *types.Struct) map[string]types.Value {
	out := make(map[string]types.Value, len(d.fields[s]))
	for k, v := range d.fields[s] {
		out[k] = v
	}
	return out
}

func (d *Defaults) setField(s *types.Struct, field string, v types.Value) {
	m, ok := d.fields[s]
	if !ok {
		m = make(map[string]types.Value)
		d.fields[s] = m
	}
	m[field] = v
}

// typeDefault returns the declared default of a named type, if any.
func (d *Defaults) typeDefault(t types.Type) (types.Value, bool) {
	switch t := t.(type) {
	case *types.Scalar:
		return d.Type(t.Name)
	case *types.Enum:
		return d.Type(t.Name)
	case *types.Union:
		return d.Type(t.Name)
	}
	return nil, false
}

// bindDefaults binds every declared default. Type defaults are bound first so
// that a field without its own default inherits the default of its type.
func (b *Binder) bindDefaults() {
	syms := b.symbols.Symbols()
	for _, sym := range syms {
		var lit syntax.Literal
		switch d := sym.Decl.(type) {
		case *syntax.CreateScalar:
			lit = d.Default
		case *syntax.CreateEnum:
			lit = d.Default
		case *syntax.CreateUnion:
			lit = d.Default
		}
		if lit == nil {
			continue
		}
		t, ok := b.env.Type(sym.Decl)
		if !ok {
			continue
		}
		if v := b.bindLiteral(lit, t); v != nil {
			b.defaults.types[sym.Name] = v
		}
	}

	for _, sym := range syms {
		switch d := sym.Decl.(type) {
		case *syntax.CreateStruct:
			if t, ok := b.env.Type(d); ok {
				if s, ok := t.(*types.Struct); ok {
					b.bindFieldDefaults(s, d.Fields)
				}
			}
		case *syntax.CreateStream:
			for _, a := range d.Aliases {
				inline, ok := a.Type.(*syntax.StructType)
				if !ok {
					continue
				}
				if t, ok := b.env.Type(inline); ok {
					if s, ok := t.(*types.Struct); ok {
						b.bindFieldDefaults(s, inline.Fields)
					}
				}
			}
		}
	}
}

func (b *Binder) bindFieldDefaults(s *types.Struct, decls []*syntax.Field) {
	seen := make(map[string]bool, len(decls))
	for _, fd := range decls {
		f, ok := s.Field(fd.Name)
		if !ok || seen[fd.Name] {
			continue
		}
		seen[fd.Name] = true
		if fd.Default == nil {
			if v, ok := b.defaults.typeDefault(f.Type); ok {
				b.defaults.setField(s, f.Name, v)
			}
			continue
		}
		if _, isNull := fd.Default.(*syntax.NullLit); isNull && !f.Nullable {
			b.diags.Errorf(fd.Default.Span(), diag.CodeNotNullable,
				"Field '%s' of %s is not nullable and cannot default to null", f.Name, s)
			continue
		}
		if v := b.bindLiteral(fd.Default, f.Type); v != nil {
			b.defaults.setField(s, f.Name, v)
		}
	}
}

// rowType returns s with its field defaults attached, cached per struct.
func (b *Binder) rowType(s *types.Struct) *types.Struct {
	if row, ok := b.rows[s]; ok {
		return row
	}
	row := s.WithDefaults(b.defaults.Fields(s))
	b.rows[s] = row
	return row
}
