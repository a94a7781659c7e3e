package binder

import (
	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// ReadBinding is a bound READ statement.
type ReadBinding struct {
	Stmt   *syntax.Read
	Stream *types.Stream
	Blocks []*ReadBlockBinding
}

// ReadBlockBinding is one bound alias block of a READ.
type ReadBlockBinding struct {
	Block *syntax.ReadBlock
	Alias string
	Row   *types.Struct
	// Projections holds one type per projected expression, or the row type
	// alone for a star projection.
	Projections []types.Type
	// Where is nil when the block has no WHERE clause.
	Where types.Type
}

// WriteBinding is a bound WRITE statement.
type WriteBinding struct {
	Stmt   *syntax.Write
	Stream *types.Stream
	Alias  string
	Row    *types.Struct
	// Values holds the rows that bound and passed the completeness check.
	Values []types.StructValue
}

// resolveStream finds the stream a READ or WRITE names, relative to cur.
func (b *Binder) resolveStream(n syntax.Statement, name syntax.QualifiedName, cur syntax.QualifiedName) *types.Stream {
	sym, ok := b.symbols.Resolve(cur, name)
	if !ok || sym.Kind != syntax.DeclStream {
		b.diags.Errorf(n.Span(), diag.CodeUnknownStream, "Stream '%s' does not exist", name)
		return nil
	}
	st, ok := b.streams[sym.Name]
	if !ok {
		return nil
	}
	b.env.BindDecl(n, sym.Decl)
	return st
}

func (b *Binder) resolveAlias(n syntax.Node, st *types.Stream, alias string) (*types.Struct, bool) {
	a, ok := st.Alias(alias)
	if !ok {
		b.diags.Errorf(n.Span(), diag.CodeUnknownAlias, "Stream '%s' has no alias '%s'", st.Name, alias)
		return nil, false
	}
	return b.rowType(a.Row), true
}

func (b *Binder) bindRead(r *syntax.Read, cur syntax.QualifiedName) *ReadBinding {
	st := b.resolveStream(r, r.Stream, cur)
	if st == nil {
		return nil
	}
	rb := &ReadBinding{Stmt: r, Stream: st}
	for _, blk := range r.Blocks {
		row, ok := b.resolveAlias(blk, st, blk.Alias)
		if !ok {
			continue
		}
		b.env.BindType(blk, row)
		scope := readScope(row, blk.Alias)
		bb := &ReadBlockBinding{Block: blk, Alias: blk.Alias, Row: row}
		if blk.Star {
			bb.Projections = []types.Type{row}
		} else {
			for _, p := range blk.Projections {
				bb.Projections = append(bb.Projections, b.bindExpr(p, scope))
			}
		}
		if blk.Where != nil {
			w := b.bindExpr(blk.Where, scope)
			if !types.IsVoid(w) && !types.IsBoolean(w) {
				b.diags.Errorf(blk.Where.Span(), diag.CodeTypeMismatch, "WHERE must be a Boolean expression, got %s", w)
			}
			bb.Where = w
		}
		rb.Blocks = append(rb.Blocks, bb)
	}
	b.log.Debug("Bound READ", "stream", st.Name, "blocks", len(rb.Blocks))
	return rb
}

// readScope exposes the fields of row by bare name and the whole row under its
// alias, so both Age and p.Age resolve. A field named like the alias wins.
func readScope(row *types.Struct, alias string) Scope {
	scope := fieldScope(row)
	if _, taken := scope[alias]; !taken {
		scope[alias] = row
	}
	return scope
}

func (b *Binder) bindWrite(w *syntax.Write, cur syntax.QualifiedName) *WriteBinding {
	st := b.resolveStream(w, w.Stream, cur)
	if st == nil {
		return nil
	}
	row, ok := b.resolveAlias(w, st, w.Alias)
	if !ok {
		return nil
	}
	wb := &WriteBinding{Stmt: w, Stream: st, Alias: w.Alias, Row: row}
	target := st.Name + "." + w.Alias
	for _, lit := range w.Values {
		mark := b.diags.Mark()
		v, _ := b.bindLiteral(lit, row).(types.StructValue)
		if sl, ok := lit.(*syntax.StructLit); ok {
			b.checkComplete(sl, row, target)
		} else if syntax.IsEmptyComposite(lit) {
			b.checkComplete(&syntax.StructLit{Base: syntax.At(lit.Span())}, row, target)
		}
		if b.diags.ErrorsSince(mark) || v.T == nil {
			continue
		}
		wb.Values = append(wb.Values, v)
	}
	b.log.Debug("Bound WRITE", "target", target, "rows", len(wb.Values))
	return wb
}

// checkComplete requires every field of row to be present in lit, nullable,
// or defaulted.
func (b *Binder) checkComplete(lit *syntax.StructLit, row *types.Struct, target string) {
	present := make(map[string]bool, len(lit.Fields))
	for _, fi := range lit.Fields {
		present[fi.Name] = true
	}
	for _, f := range row.Fields() {
		if present[f.Name] || f.Nullable || f.Default != nil {
			continue
		}
		b.diags.Errorf(lit.Span(), diag.CodeMissingField,
			"Required field '%s' is missing from the row written to %s", f.Name, target)
	}
}
