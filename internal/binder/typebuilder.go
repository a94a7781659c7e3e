package binder

import (
	"math"
	"strings"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// BuildType returns the runtime type of a scalar, enum, struct or union
// declaration. The first call builds and caches it; later calls return the
// cached object.
func (b *Binder) BuildType(d syntax.Declaration) types.Type {
	b.arena.Number(d)
	sym, ok := b.symbols.ByDecl(d)
	if !ok {
		b.diags.Internalf(d.Span(), diag.CodeUnresolvedReference,
			"%s '%s' was never declared", d.DeclKind(), d.DeclName())
		return types.Void
	}
	return b.buildDecl(sym)
}

// buildDecl caches every composite before building its members, so a
// declaration that refers to itself, directly or through others, resolves to
// the object under construction instead of recursing.
func (b *Binder) buildDecl(sym *Symbol) types.Type {
	if t, ok := b.env.Type(sym.Decl); ok {
		return t
	}
	switch d := sym.Decl.(type) {
	case *syntax.CreateScalar:
		return b.buildScalar(sym, d)
	case *syntax.CreateEnum:
		return b.buildEnum(sym, d)
	case *syntax.CreateStruct:
		return b.buildStruct(sym, d)
	case *syntax.CreateUnion:
		return b.buildUnion(sym, d)
	}
	return types.Void
}

func (b *Binder) buildScalar(sym *Symbol, d *syntax.CreateScalar) types.Type {
	s := &types.Scalar{Name: sym.Name, Doc: d.Comment}
	b.env.BindType(d, s)

	switch base := b.typeOf(d.Type, sym.Context).(type) {
	case *types.Primitive:
		s.Base = base
	default:
		if !types.IsVoid(base) {
			b.diags.Errorf(d.Type.Span(), diag.CodeInvalidScalarBase,
				"Scalar '%s' must wrap a primitive type, got %s", sym.Name, base)
		}
	}
	if s.Base != nil && len(d.Checks) > 0 {
		s.Check = b.bindScalarCheck(s, d.Checks)
	}
	b.log.Debug("Built scalar", "name", sym.Name, "base", s.Base, "check", s.Check != nil)
	return s
}

func (b *Binder) buildEnum(sym *Symbol, d *syntax.CreateEnum) types.Type {
	e := types.NewEnum(sym.Name, types.Int32, d.Comment)
	b.env.BindType(d, e)

	base := types.Int32
	if d.BaseType != nil {
		t := b.typeOf(d.BaseType, sym.Context)
		if p, ok := t.(*types.Primitive); ok && types.IsInteger(p) {
			base = p
		} else if !types.IsVoid(t) {
			b.diags.Errorf(d.BaseType.Span(), diag.CodeInvalidEnumBase,
				"Enum '%s' must be based on an integer type, got %s", sym.Name, t)
		}
	}
	e.Base = base

	lo, hi := intRange(base.Kind())
	var (
		symbols  []types.EnumSymbol
		names    = make(map[string]bool)
		values   = make(map[int64]string)
		next     int64
		overflow bool
	)
	for _, s := range d.Symbols {
		if names[s.Name] {
			b.diags.Errorf(s.Span(), diag.CodeDuplicateMember,
				"Enum '%s' declares symbol '%s' more than once", sym.Name, s.Name)
			continue
		}
		names[s.Name] = true

		val := next
		if s.Value != nil {
			iv, ok := b.bindLiteral(s.Value, base).(types.IntValue)
			if !ok {
				continue
			}
			val = iv.V
		} else if overflow || val < lo || val > hi {
			b.diags.Errorf(s.Span(), diag.CodeOutOfRange,
				"Enum symbol '%s' would get a value outside the range of %s", s.Name, base)
			continue
		}
		if other, dup := values[val]; dup {
			b.diags.Errorf(s.Span(), diag.CodeDuplicateMember,
				"Enum symbol '%s' reuses value %d of '%s'", s.Name, val, other)
			continue
		}
		values[val] = s.Name
		symbols = append(symbols, types.EnumSymbol{Name: s.Name, Value: val})
		overflow = val == math.MaxInt64
		next = val + 1
	}
	e.SetSymbols(symbols)
	e.Seal()
	b.log.Debug("Built enum", "name", sym.Name, "symbols", len(symbols))
	return e
}

func (b *Binder) buildStruct(sym *Symbol, d *syntax.CreateStruct) types.Type {
	s := types.NewStruct(sym.Name, d.Comment)
	b.env.BindType(d, s)
	s.SetFields(b.buildFields(d.Fields, sym.Context))
	s.SetChecks(b.bindStructChecks(s, d.Checks))
	s.Seal()
	b.log.Debug("Built struct", "name", sym.Name, "fields", len(s.Fields()), "checks", len(s.Checks()))
	return s
}

func (b *Binder) buildUnion(sym *Symbol, d *syntax.CreateUnion) types.Type {
	u := types.NewUnion(sym.Name, d.Comment)
	b.env.BindType(d, u)

	seen := make(map[string]bool)
	members := make([]types.UnionMember, 0, len(d.Members))
	for _, m := range d.Members {
		if seen[m.Name] {
			b.diags.Errorf(m.Span(), diag.CodeDuplicateMember,
				"Union '%s' declares member '%s' more than once", sym.Name, m.Name)
			continue
		}
		seen[m.Name] = true
		t := b.typeOf(m.Type, sym.Context)
		b.env.BindType(m, t)
		members = append(members, types.UnionMember{Name: m.Name, Type: t})
	}
	u.SetMembers(members)
	u.Seal()
	b.log.Debug("Built union", "name", sym.Name, "members", len(members))
	return u
}

func (b *Binder) buildFields(fields []*syntax.Field, cur syntax.QualifiedName) []types.Field {
	seen := make(map[string]bool)
	out := make([]types.Field, 0, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			b.diags.Errorf(f.Span(), diag.CodeDuplicateMember, "Field '%s' is declared more than once", f.Name)
			continue
		}
		seen[f.Name] = true
		t := b.typeOf(f.Type, cur)
		b.env.BindType(f, t)
		out = append(out, types.Field{Name: f.Name, Type: t, Nullable: f.Nullable, Doc: f.Comment})
	}
	return out
}

// buildStream resolves every alias of a stream to its row struct. Inline
// shapes become structs named after the stream and alias.
func (b *Binder) buildStream(sym *Symbol) *types.Stream {
	d, ok := sym.Decl.(*syntax.CreateStream)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	aliases := make([]types.StreamAlias, 0, len(d.Aliases))
	for _, a := range d.Aliases {
		if seen[a.Name] {
			b.diags.Errorf(a.Span(), diag.CodeDuplicateMember,
				"Stream '%s' declares alias '%s' more than once", sym.Name, a.Name)
			continue
		}
		seen[a.Name] = true

		var row *types.Struct
		if inline, ok := a.Type.(*syntax.StructType); ok {
			row = b.inlineStruct(inline, sym.Name+"."+a.Name, sym.Context)
		} else {
			t := b.typeOf(a.Type, sym.Context)
			s, ok := t.(*types.Struct)
			if !ok {
				if !types.IsVoid(t) {
					b.diags.Errorf(a.Type.Span(), diag.CodeInvalidStreamAlias,
						"Alias '%s' of stream '%s' must be a struct type, got %s", a.Name, sym.Name, t)
				}
				continue
			}
			row = s
		}
		b.env.BindType(a, row)
		aliases = append(aliases, types.StreamAlias{Name: a.Name, Row: row})
	}
	st := types.NewStream(sym.Name, d.Comment, aliases)
	b.streams[sym.Name] = st
	b.log.Debug("Built stream", "name", sym.Name, "aliases", len(aliases))
	return st
}

func (b *Binder) inlineStruct(te *syntax.StructType, name string, cur syntax.QualifiedName) *types.Struct {
	if t, ok := b.env.Type(te); ok {
		if s, ok := t.(*types.Struct); ok {
			return s
		}
	}
	s := types.NewStruct(name, "")
	b.env.BindType(te, s)
	s.SetFields(b.buildFields(te.Fields, cur))
	s.Seal()
	return s
}

// typeOf resolves a type expression written inside the context cur.
func (b *Binder) typeOf(te syntax.TypeExpr, cur syntax.QualifiedName) types.Type {
	if te == nil {
		return types.Void
	}
	if t, ok := b.env.Type(te); ok {
		return t
	}
	var t types.Type
	switch te := te.(type) {
	case *syntax.PrimitiveType:
		t = b.primitive(te)
	case *syntax.NamedType:
		t = b.named(te, cur)
	case *syntax.ListType:
		t = &types.List{Item: b.typeOf(te.Item, cur)}
	case *syntax.MapType:
		key := b.typeOf(te.Key, cur)
		val := b.typeOf(te.Value, cur)
		if kp, ok := key.(*types.Primitive); ok {
			t = &types.Map{Key: kp, Value: val}
		} else {
			if !types.IsVoid(key) {
				b.diags.Errorf(te.Key.Span(), diag.CodeInvalidMapKey,
					"Map key must be a primitive type, got %s", key)
			}
			t = types.Void
		}
	case *syntax.StructType:
		return b.inlineStruct(te, "", cur)
	default:
		t = types.Void
	}
	return b.env.BindType(te, t)
}

func (b *Binder) named(te *syntax.NamedType, cur syntax.QualifiedName) types.Type {
	sym, ok := b.symbols.Resolve(cur, te.Name)
	if !ok {
		if len(te.Name.Parts) == 1 && !te.Name.Rooted {
			if _, isPrim := primitiveSpecs[strings.ToLower(te.Name.Last())]; isPrim {
				return b.primitive(&syntax.PrimitiveType{Base: syntax.At(te.Span()), Name: te.Name.Last()})
			}
		}
		b.diags.Errorf(te.Span(), diag.CodeUnknownType, "Type '%s' is not declared", te.Name)
		return types.Void
	}
	switch sym.Kind {
	case syntax.DeclContext, syntax.DeclStream:
		b.diags.Errorf(te.Span(), diag.CodeNotAType, "'%s' is a %s, not a type", sym.Name, sym.Kind)
		return types.Void
	}
	return b.buildDecl(sym)
}

type primitiveSpec struct {
	kind      types.Kind
	maxParams int
}

var primitiveSpecs = map[string]primitiveSpec{
	"boolean":     {types.KindBoolean, 0},
	"int8":        {types.KindInt8, 0},
	"int16":       {types.KindInt16, 0},
	"int32":       {types.KindInt32, 0},
	"int64":       {types.KindInt64, 0},
	"float32":     {types.KindFloat32, 0},
	"float64":     {types.KindFloat64, 0},
	"decimal":     {types.KindDecimal, 2},
	"string":      {types.KindString, 1},
	"bytes":       {types.KindBytes, 1},
	"uuid":        {types.KindUuid, 0},
	"date":        {types.KindDate, 0},
	"time":        {types.KindTime, 1},
	"timestamp":   {types.KindTimestamp, 1},
	"timestamptz": {types.KindTimestampTz, 1},
}

var fixedPrimitives = map[types.Kind]*types.Primitive{
	types.KindBoolean: types.Boolean,
	types.KindInt8:    types.Int8,
	types.KindInt16:   types.Int16,
	types.KindInt32:   types.Int32,
	types.KindInt64:   types.Int64,
	types.KindFloat32: types.Float32,
	types.KindFloat64: types.Float64,
	types.KindUuid:    types.Uuid,
	types.KindDate:    types.Date,
}

// defaultDecimal is Decimal written without parameters.
var defaultDecimal = [2]int{18, 0}

func (b *Binder) primitive(te *syntax.PrimitiveType) types.Type {
	spec, ok := primitiveSpecs[strings.ToLower(te.Name)]
	if !ok {
		b.diags.Errorf(te.Span(), diag.CodeUnknownType, "Unknown primitive type '%s'", te.Name)
		return types.Void
	}
	if len(te.Params) > spec.maxParams {
		b.diags.Errorf(te.Span(), diag.CodeInvalidTypeParameter,
			"%s takes at most %d parameter(s), got %d", spec.kind, spec.maxParams, len(te.Params))
		return types.Void
	}
	if p, ok := fixedPrimitives[spec.kind]; ok {
		return p
	}

	switch spec.kind {
	case types.KindDecimal:
		precision, scale := defaultDecimal[0], defaultDecimal[1]
		if len(te.Params) > 0 {
			precision, scale = te.Params[0], 0
		}
		if len(te.Params) > 1 {
			scale = te.Params[1]
		}
		if precision < 1 || precision > types.MaxDecimalPrecision {
			b.diags.Errorf(te.Span(), diag.CodeInvalidTypeParameter,
				"Decimal precision must be between 1 and %d, got %d", types.MaxDecimalPrecision, precision)
			return types.Void
		}
		if scale < 0 || scale > precision {
			b.diags.Errorf(te.Span(), diag.CodeInvalidTypeParameter,
				"Decimal scale must be between 0 and the precision %d, got %d", precision, scale)
			return types.Void
		}
		return types.NewDecimal(precision, scale)

	case types.KindString, types.KindBytes:
		if len(te.Params) == 0 {
			if spec.kind == types.KindString {
				return types.String
			}
			return types.Bytes
		}
		if te.Params[0] < 1 {
			b.diags.Errorf(te.Span(), diag.CodeInvalidTypeParameter,
				"%s length must be positive, got %d", spec.kind, te.Params[0])
			return types.Void
		}
		if spec.kind == types.KindString {
			return types.NewString(te.Params[0])
		}
		return types.NewBytes(te.Params[0])

	default:
		precision := types.DefaultTemporalPrecision
		if len(te.Params) > 0 {
			precision = te.Params[0]
		}
		if precision < 0 || precision > types.MaxTemporalPrecision {
			b.diags.Errorf(te.Span(), diag.CodeInvalidTypeParameter,
				"%s precision must be between 0 and %d, got %d", spec.kind, types.MaxTemporalPrecision, precision)
			return types.Void
		}
		return types.NewTemporal(spec.kind, precision)
	}
}
