package loader

import (
	"context"
	"errors"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/sqlexpr"
	"github.com/streamdl/streamdl/internal/syntax"
)

func (l *loader) statement(n *yaml.Node) syntax.Statement {
	f, ok := l.fieldsOf(n)
	if !ok {
		return nil
	}
	var st syntax.Statement
	switch f.kind {
	case "context":
		st = l.context(f)
	case "use":
		if name, ok := l.name(f.head, "context name"); ok {
			st = &syntax.UseContext{Base: l.base(f.node), Name: name}
		}
	case "scalar":
		st = l.createScalar(f)
	case "enum":
		st = l.createEnum(f)
	case "struct":
		st = l.createStruct(f)
	case "union":
		st = l.createUnion(f)
	case "stream":
		st = l.createStream(f)
	case "read":
		st = l.read(f)
	case "write":
		st = l.write(f)
	default:
		l.errorf(f.node, "Unknown statement '%s'", f.kind)
		return nil
	}
	l.done(f)
	return st
}

func (l *loader) context(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "context name")
	if !ok {
		return nil
	}
	return &syntax.CreateContext{Base: l.base(f.node), Name: name, Comment: l.comment(f)}
}

func (l *loader) createScalar(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "scalar name")
	if !ok {
		return nil
	}
	d := &syntax.CreateScalar{Base: l.base(f.node), Name: name, Comment: l.comment(f)}
	if t := f.take("type"); t != nil {
		d.Type = l.typeExpr(t)
	} else {
		l.errorf(f.node, "Scalar '%s' needs a type", name)
		return nil
	}
	if v := f.take("default"); v != nil {
		d.Default = l.literal(v)
	}
	if c := f.take("check"); c != nil {
		if e := l.expr(c); e != nil {
			d.Checks = append(d.Checks, &syntax.Check{Base: l.base(c), Expr: e})
		}
	}
	d.Checks = append(d.Checks, l.unnamedChecks(f.take("checks"))...)
	return d
}

func (l *loader) createEnum(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "enum name")
	if !ok {
		return nil
	}
	d := &syntax.CreateEnum{Base: l.base(f.node), Name: name, Comment: l.comment(f)}
	if b := f.take("base"); b != nil {
		d.BaseType = l.typeExpr(b)
	}
	syms := f.take("symbols")
	if syms == nil || syms.Kind != yaml.SequenceNode {
		l.errorf(f.node, "Enum '%s' needs a sequence of symbols", name)
		return nil
	}
	for _, s := range syms.Content {
		s = resolveAlias(s)
		switch {
		case s.Kind == yaml.ScalarNode:
			d.Symbols = append(d.Symbols, &syntax.EnumSymbol{Base: l.base(s), Name: s.Value})
		case s.Kind == yaml.MappingNode && len(s.Content) == 2:
			d.Symbols = append(d.Symbols, &syntax.EnumSymbol{
				Base:  l.base(s),
				Name:  s.Content[0].Value,
				Value: l.literal(s.Content[1]),
			})
		default:
			l.errorf(s, "An enum symbol is a name or a single {Name: value} pair")
		}
	}
	if v := f.take("default"); v != nil {
		d.Default = l.literal(v)
	}
	return d
}

func (l *loader) createStruct(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "struct name")
	if !ok {
		return nil
	}
	d := &syntax.CreateStruct{Base: l.base(f.node), Name: name, Comment: l.comment(f)}
	d.Fields = l.fieldList(f.take("fields"))
	if cs := f.take("constraints"); cs != nil {
		if cs.Kind != yaml.MappingNode {
			l.errorf(cs, "constraints must map names to CHECK expressions")
		} else {
			for i := 0; i+1 < len(cs.Content); i += 2 {
				if e := l.expr(cs.Content[i+1]); e != nil {
					d.Checks = append(d.Checks, &syntax.Check{Base: l.base(cs.Content[i]), Name: cs.Content[i].Value, Expr: e})
				}
			}
		}
	}
	d.Checks = append(d.Checks, l.unnamedChecks(f.take("checks"))...)
	return d
}

func (l *loader) unnamedChecks(n *yaml.Node) []*syntax.Check {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		l.errorf(n, "checks must be a sequence of expressions")
		return nil
	}
	var out []*syntax.Check
	for _, c := range n.Content {
		if e := l.expr(c); e != nil {
			out = append(out, &syntax.Check{Base: l.base(c), Expr: e})
		}
	}
	return out
}

func (l *loader) fieldList(n *yaml.Node) []*syntax.Field {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		l.errorf(n, "fields must be a sequence")
		return nil
	}
	var out []*syntax.Field
	for _, item := range n.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.MappingNode {
			l.errorf(item, "A field is a mapping {name: ..., type: ...}")
			continue
		}
		fd := &syntax.Field{Base: l.base(item)}
		var typ *yaml.Node
		for i := 0; i+1 < len(item.Content); i += 2 {
			k, v := item.Content[i], resolveAlias(item.Content[i+1])
			switch k.Value {
			case "name":
				fd.Name, _ = l.scalar(v, "field name")
			case "type":
				typ = v
			case "nullable":
				fd.Nullable = l.boolean(v, "nullable")
			case "default":
				fd.Default = l.literal(v)
			case "comment":
				fd.Comment, _ = l.scalar(v, "comment")
			default:
				l.warnf(k, "Unknown key '%s' in field is ignored", k.Value)
			}
		}
		if fd.Name == "" || typ == nil {
			l.errorf(item, "A field needs a name and a type")
			continue
		}
		fd.Type = l.typeExpr(typ)
		out = append(out, fd)
	}
	return out
}

func (l *loader) createUnion(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "union name")
	if !ok {
		return nil
	}
	d := &syntax.CreateUnion{Base: l.base(f.node), Name: name, Comment: l.comment(f)}
	for _, fd := range l.fieldList(f.take("members")) {
		d.Members = append(d.Members, &syntax.Member{Base: fd.Base, Name: fd.Name, Type: fd.Type})
	}
	if v := f.take("default"); v != nil {
		d.Default = l.literal(v)
	}
	return d
}

func (l *loader) createStream(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "stream name")
	if !ok {
		return nil
	}
	d := &syntax.CreateStream{Base: l.base(f.node), Name: name, Comment: l.comment(f)}
	aliases := f.take("aliases")
	if aliases == nil || aliases.Kind != yaml.MappingNode {
		l.errorf(f.node, "Stream '%s' needs a mapping of aliases", name)
		return nil
	}
	for i := 0; i+1 < len(aliases.Content); i += 2 {
		k := aliases.Content[i]
		d.Aliases = append(d.Aliases, &syntax.Alias{
			Base: l.base(k),
			Name: k.Value,
			Type: l.typeExpr(aliases.Content[i+1]),
		})
	}
	return d
}

func (l *loader) read(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "stream name")
	if !ok {
		return nil
	}
	r := &syntax.Read{Base: l.base(f.node), Stream: name}
	blocks := f.take("blocks")
	if blocks == nil || blocks.Kind != yaml.SequenceNode {
		l.errorf(f.node, "READ needs a sequence of blocks")
		return nil
	}
	for _, b := range blocks.Content {
		if blk := l.readBlock(resolveAlias(b)); blk != nil {
			r.Blocks = append(r.Blocks, blk)
		}
	}
	return r
}

func (l *loader) readBlock(n *yaml.Node) *syntax.ReadBlock {
	if n.Kind != yaml.MappingNode {
		l.errorf(n, "A READ block is a mapping {alias: ..., select: ..., where: ...}")
		return nil
	}
	blk := &syntax.ReadBlock{Base: l.base(n)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolveAlias(n.Content[i+1])
		switch k.Value {
		case "alias":
			blk.Alias, _ = l.scalar(v, "alias")
		case "select":
			l.projections(blk, v)
		case "where":
			blk.Where = l.expr(v)
		default:
			l.warnf(k, "Unknown key '%s' in READ block is ignored", k.Value)
		}
	}
	if blk.Alias == "" {
		l.errorf(n, "A READ block needs an alias")
		return nil
	}
	if !blk.Star && len(blk.Projections) == 0 {
		blk.Star = true
	}
	return blk
}

func (l *loader) projections(blk *syntax.ReadBlock, v *yaml.Node) {
	if v.Kind == yaml.ScalarNode && v.Value == "*" {
		blk.Star = true
		return
	}
	if v.Kind != yaml.SequenceNode {
		l.errorf(v, "select must be '*' or a sequence of expressions")
		return
	}
	for _, p := range v.Content {
		if p.Kind == yaml.ScalarNode && p.Value == "*" {
			blk.Star = true
			continue
		}
		if e := l.expr(p); e != nil {
			blk.Projections = append(blk.Projections, e)
		}
	}
}

func (l *loader) write(f *fields) syntax.Statement {
	name, ok := l.name(f.head, "stream name")
	if !ok {
		return nil
	}
	w := &syntax.Write{Base: l.base(f.node), Stream: name}
	alias, ok := l.scalar(f.take("alias"), "alias")
	values := f.take("values")
	if !ok || alias == "" {
		l.errorf(f.node, "WRITE needs an alias")
		return nil
	}
	w.Alias = alias
	if values == nil || values.Kind != yaml.SequenceNode {
		l.errorf(f.node, "WRITE needs a sequence of values")
		return nil
	}
	for _, v := range values.Content {
		w.Values = append(w.Values, l.literal(v))
	}
	return w
}

// expr parses an expression scalar, reporting failures at their position.
func (l *loader) expr(n *yaml.Node) syntax.Expr {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode {
		l.errorf(n, "An expression must be a string")
		return nil
	}
	e, err := sqlexpr.Parse(n.Value, textStart(n))
	if err != nil {
		var perr *sqlexpr.Error
		if errors.As(err, &perr) {
			p := perr.Pos
			l.diags.Syntaxf(syntax.Range{Start: p, End: p}, diag.CodeParse, "Invalid expression: %s", perr.Message)
			return nil
		}
		l.errorf(n, "Invalid expression: %v", err)
		return nil
	}
	if l.log.Enabled(context.Background(), slog.LevelDebug) {
		l.log.Debug("Parsed expression", "line", n.Line, "expr", sqlexpr.Format(e))
	}
	return e
}

// textStart is where the text of a scalar begins in the source.
func textStart(n *yaml.Node) syntax.Position {
	p := position(n)
	switch n.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		p.Column++
	case yaml.LiteralStyle, yaml.FoldedStyle:
		// Block content starts on the next line; its indent is not recorded.
		p.Line++
		p.Column = 1
	}
	return p
}
