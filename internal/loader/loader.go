// Package loader reads program documents into syntax trees.
//
// A program document is a YAML sequence of statements. Each statement is a
// mapping whose first key names the statement kind:
//
//	- context: shop
//	- use: shop
//	- scalar: Percent
//	  type: Int8
//	  check: value BETWEEN 0 AND 100
//	- struct: Customer
//	  fields:
//	    - {name: Id, type: Int32}
//	    - {name: Name, type: String(40), nullable: true}
//	  constraints:
//	    positive_id: Id > 0
//	- stream: Customers
//	  aliases:
//	    customer: Customer
//	- write: Customers
//	  alias: customer
//	  values:
//	    - {Id: 1, Name: ann}
//
// Expressions are SQL text and go through sqlexpr. Structural problems in the
// document become syntactic diagnostics; only unreadable files and malformed
// YAML are returned as errors.
package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/include"
	"github.com/streamdl/streamdl/internal/logger"
	"github.com/streamdl/streamdl/internal/syntax"
)

// Document is a loaded program.
type Document struct {
	Program *syntax.Program
	// Source maps lines of the program back to the files they came from. It
	// is nil for documents parsed from memory.
	Source *include.Source
	// Diagnostics holds the problems found while loading.
	Diagnostics *diag.Collector
}

// Options controls file loading.
type Options struct {
	// MaxIncludeDepth bounds \i nesting; zero means include.DefaultMaxDepth.
	MaxIncludeDepth int
}

// LoadFile reads path, splices in its includes and parses the result.
func LoadFile(path string, opts Options) (*Document, error) {
	src, err := include.NewProcessor(filepath.Dir(path)).
		WithMaxDepth(opts.MaxIncludeDepth).
		ProcessFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse([]byte(src.Text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc.Source = src
	logger.For("loader").Debug("Loaded program", "path", path, "files", len(src.Files()), "statements", len(doc.Program.Statements))
	return doc, nil
}

// Parse reads a program document from memory.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	l := &loader{diags: diag.New(), log: logger.For("loader")}
	prog := &syntax.Program{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return &Document{Program: prog, Diagnostics: l.diags}, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: a program must be a sequence of statements", top.Line)
	}
	prog.Base = l.base(top)
	for _, item := range top.Content {
		if st := l.statement(item); st != nil {
			prog.Statements = append(prog.Statements, st)
		}
	}
	l.log.Debug("Parsed program", "statements", len(prog.Statements), "diagnostics", l.diags.Len())
	return &Document{Program: prog, Diagnostics: l.diags}, nil
}

type loader struct {
	diags *diag.Collector
	log   *slog.Logger
}

func position(n *yaml.Node) syntax.Position {
	return syntax.Position{Line: n.Line, Column: n.Column}
}

func (l *loader) base(n *yaml.Node) syntax.Base {
	p := position(n)
	return syntax.At(syntax.Range{Start: p, End: p})
}

func (l *loader) errorf(n *yaml.Node, format string, args ...any) {
	l.diags.Syntaxf(l.base(n).Range, diag.CodeParse, format, args...)
}

func (l *loader) warnf(n *yaml.Node, format string, args ...any) {
	l.diags.Add(diag.Entry{
		Range:    l.base(n).Range,
		Kind:     diag.Syntactic,
		Code:     diag.CodeParse,
		Severity: diag.Warning,
		Message:  fmt.Sprintf(format, args...),
	})
}

// fields is a statement mapping split into its keys.
type fields struct {
	node   *yaml.Node
	kind   string
	head   *yaml.Node
	values map[string]*yaml.Node
	keys   map[string]*yaml.Node
}

func (l *loader) fieldsOf(n *yaml.Node) (*fields, bool) {
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		l.errorf(n, "A statement must be a mapping such as {struct: Name, ...}")
		return nil, false
	}
	f := &fields{
		node:   n,
		kind:   n.Content[0].Value,
		head:   resolveAlias(n.Content[1]),
		values: make(map[string]*yaml.Node),
		keys:   make(map[string]*yaml.Node),
	}
	for i := 2; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if _, dup := f.values[k.Value]; dup {
			l.errorf(k, "Key '%s' is given more than once", k.Value)
			continue
		}
		f.values[k.Value] = resolveAlias(n.Content[i+1])
		f.keys[k.Value] = k
	}
	return f, true
}

// take removes and returns the value of key.
func (f *fields) take(key string) *yaml.Node {
	v := f.values[key]
	delete(f.values, key)
	return v
}

// done warns about keys no statement handler consumed.
func (l *loader) done(f *fields) {
	for k := range f.values {
		l.warnf(f.keys[k], "Unknown key '%s' in %s statement is ignored", k, f.kind)
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func (l *loader) scalar(n *yaml.Node, what string) (string, bool) {
	if n == nil {
		return "", false
	}
	if n.Kind != yaml.ScalarNode {
		l.errorf(n, "%s must be a scalar", what)
		return "", false
	}
	return n.Value, true
}

func (l *loader) name(n *yaml.Node, what string) (syntax.QualifiedName, bool) {
	s, ok := l.scalar(n, what)
	if !ok || s == "" {
		if n != nil && ok {
			l.errorf(n, "%s must not be empty", what)
		}
		return syntax.QualifiedName{}, false
	}
	return syntax.ParseQualifiedName(s), true
}

func (l *loader) comment(f *fields) string {
	s, _ := l.scalar(f.take("comment"), "comment")
	return s
}

func (l *loader) boolean(n *yaml.Node, what string) bool {
	if n == nil {
		return false
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		l.errorf(n, "%s must be true or false", what)
	}
	return v
}
