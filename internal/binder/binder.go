// Package binder turns a parsed program into a resolved, type-checked and
// constraint-validated one.
//
// A compile runs four passes over the statement list, in this order:
//
//  1. declare: registers every declaration in the symbol table and records the
//     context each READ and WRITE runs in;
//  2. types: builds the runtime type of every declaration, binding CHECK
//     clauses while the owning struct or scalar is under construction;
//  3. defaults: binds declared default literals against the built types;
//  4. statements: binds READ and WRITE statements.
//
// Problems in the program are reported to a diag.Collector and never returned
// as errors; each pass keeps going with a fallback so one compile surfaces as
// many independent problems as possible.
package binder

import (
	"log/slog"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/logger"
	"github.com/streamdl/streamdl/internal/syntax"
	"github.com/streamdl/streamdl/internal/types"
)

// Binder holds the state of one compile. A Binder must not be reused for a
// second program; concurrent compiles each need their own.
type Binder struct {
	arena    *syntax.Arena
	env      *Env
	symbols  *SymbolTable
	diags    *diag.Collector
	defaults *Defaults
	catalog  *Catalog
	streams  map[string]*types.Stream
	rows     map[*types.Struct]*types.Struct
	stmtCtx  map[syntax.NodeID]syntax.QualifiedName
	log      *slog.Logger
}

// New returns a binder with fresh state.
func New() *Binder {
	return &Binder{
		arena:    syntax.NewArena(),
		env:      NewEnv(),
		symbols:  NewSymbolTable(),
		diags:    diag.New(),
		defaults: newDefaults(),
		catalog:  newCatalog(),
		streams:  make(map[string]*types.Stream),
		rows:     make(map[*types.Struct]*types.Struct),
		stmtCtx:  make(map[syntax.NodeID]syntax.QualifiedName),
		log:      logger.For("binder"),
	}
}

// Bind compiles prog with a fresh binder.
func Bind(prog *syntax.Program) *Result {
	return New().Bind(prog)
}

// Result is the output of a compile. Callers must check Diagnostics for
// errors before using anything else; after a fatal diagnostic Statements is
// truncated and nothing but the diagnostics may be interpreted.
type Result struct {
	// Statements is a copy of the input statements with enum symbol values
	// normalized to their integer values.
	Statements  []syntax.Statement
	Catalog     *Catalog
	Defaults    *Defaults
	Reads       []*ReadBinding
	Writes      []*WriteBinding
	Env         *Env
	Symbols     *SymbolTable
	Diagnostics *diag.Collector
}

// OK reports whether the compile produced no error or fatal diagnostic.
func (r *Result) OK() bool {
	return !r.Diagnostics.HasAtLeast(diag.Error)
}

// Bind compiles prog.
func (b *Binder) Bind(prog *syntax.Program) *Result {
	b.arena.Number(prog)
	b.log.Debug("Binding program", "statements", len(prog.Statements), "nodes", b.arena.Len())

	b.declare(prog)
	b.buildTypes()
	b.validateGraph()
	b.bindDefaults()
	stmts, reads, writes := b.bindStatements(prog)

	b.log.Debug("Bound program",
		"types", len(b.catalog.Types()),
		"streams", len(b.catalog.Streams()),
		"diagnostics", b.diags.Len())

	return &Result{
		Statements:  stmts,
		Catalog:     b.catalog,
		Defaults:    b.defaults,
		Reads:       reads,
		Writes:      writes,
		Env:         b.env,
		Symbols:     b.symbols,
		Diagnostics: b.diags,
	}
}

// Diagnostics returns the collector the binder reports to.
func (b *Binder) Diagnostics() *diag.Collector {
	return b.diags
}

// Env returns the binding environment.
func (b *Binder) Env() *Env {
	return b.env
}

func (b *Binder) declare(prog *syntax.Program) {
	var cur syntax.QualifiedName
	for _, st := range prog.Statements {
		switch st := st.(type) {
		case *syntax.UseContext:
			full, ok := b.resolveContext(cur, st.Name)
			if !ok {
				b.diags.Errorf(st.Span(), diag.CodeUnknownContext, "Context '%s' does not exist", st.Name)
				continue
			}
			cur = full
		case *syntax.CreateContext:
			b.declareName(cur, st)
		case syntax.Declaration:
			if cur.IsRoot() {
				b.diags.Errorf(st.Span(), diag.CodeNoContext,
					"Cannot declare %s '%s' in the root context; use USE CONTEXT first", st.DeclKind(), st.DeclName())
				continue
			}
			b.declareName(cur, st)
		case *syntax.Read, *syntax.Write:
			b.stmtCtx[st.ID()] = cur
		}
	}
}

func (b *Binder) declareName(cur syntax.QualifiedName, d syntax.Declaration) {
	full := Qualify(cur, d.DeclName())
	if full.IsRoot() {
		b.diags.Errorf(d.Span(), diag.CodeDuplicateName, "The root context cannot be redeclared")
		return
	}
	if parent := full.Parent(); !b.symbols.IsContext(parent.String()) {
		b.diags.Errorf(d.Span(), diag.CodeUnknownContext,
			"Context '%s' enclosing '%s' does not exist", parent, full)
		return
	}
	if prev, ok := b.symbols.Declare(full, cur, d); !ok {
		b.diags.Errorf(d.Span(), diag.CodeDuplicateName,
			"'%s' is already declared as a %s", full, prev.Kind)
	}
}

func (b *Binder) resolveContext(cur, name syntax.QualifiedName) (syntax.QualifiedName, bool) {
	if name.IsRoot() {
		return syntax.QualifiedName{}, name.Rooted
	}
	sym, ok := b.symbols.Resolve(cur, name)
	if !ok || sym.Kind != syntax.DeclContext {
		return cur, false
	}
	return syntax.ParseQualifiedName(sym.Name), true
}

func (b *Binder) buildTypes() {
	for _, sym := range b.symbols.Symbols() {
		switch sym.Kind {
		case syntax.DeclContext:
		case syntax.DeclStream:
			if st := b.buildStream(sym); st != nil {
				b.catalog.addStream(st)
			}
		default:
			b.catalog.addType(sym.Name, sym.Kind, b.buildDecl(sym))
		}
	}
}

func (b *Binder) bindStatements(prog *syntax.Program) ([]syntax.Statement, []*ReadBinding, []*WriteBinding) {
	var (
		out    = make([]syntax.Statement, 0, len(prog.Statements))
		reads  []*ReadBinding
		writes []*WriteBinding
	)
	fatal := b.diags.HasAtLeast(diag.Fatal)

loop:
	for _, st := range prog.Statements {
		switch s := st.(type) {
		case *syntax.Read, *syntax.Write:
			if fatal {
				break loop
			}
			cur := b.stmtCtx[s.ID()]
			if cur.IsRoot() {
				b.diags.Fatalf(s.Span(), diag.CodeNoContext,
					"READ and WRITE need a current context; use USE CONTEXT first")
				fatal = true
				break loop
			}
			if r, ok := s.(*syntax.Read); ok {
				if rb := b.bindRead(r, cur); rb != nil {
					reads = append(reads, rb)
				}
			} else if wb := b.bindWrite(s.(*syntax.Write), cur); wb != nil {
				writes = append(writes, wb)
			}
		case *syntax.CreateEnum:
			st = b.normalizeEnum(s)
		}
		out = append(out, st)
	}
	return out, reads, writes
}
