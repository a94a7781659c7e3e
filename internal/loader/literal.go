package loader

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/streamdl/streamdl/internal/syntax"
)

// Local tags that pick a literal form YAML cannot express on its own.
const (
	tagBytes  = "!bytes"
	tagEnum   = "!enum"
	tagUnion  = "!union"
	tagMap    = "!map"
	tagStruct = "!struct"
)

// literal reads an untyped literal. Plain YAML scalars keep their source
// text: numbers become NumberLit with the exact digits written, and dates or
// timestamps stay strings for the binder to parse against the expected type.
// A mapping is a struct literal unless tagged !map or !union.
func (l *loader) literal(n *yaml.Node) syntax.Literal {
	n = resolveAlias(n)
	b := l.base(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return l.scalarLiteral(n, b)

	case yaml.SequenceNode:
		list := &syntax.ListLit{Base: b}
		for _, it := range n.Content {
			list.Items = append(list.Items, l.literal(it))
		}
		return list

	case yaml.MappingNode:
		switch n.Tag {
		case tagMap:
			m := &syntax.MapLit{Base: b}
			for i := 0; i+1 < len(n.Content); i += 2 {
				k := n.Content[i]
				m.Entries = append(m.Entries, &syntax.MapEntry{
					Base:  l.base(k),
					Key:   l.literal(k),
					Value: l.literal(n.Content[i+1]),
				})
			}
			return m
		case tagUnion:
			if len(n.Content) != 2 {
				l.errorf(n, "A union literal is a single {Member: value} pair")
				return &syntax.NullLit{Base: b}
			}
			return &syntax.UnionLit{Base: b, Member: n.Content[0].Value, Value: l.literal(n.Content[1])}
		}
		s := &syntax.StructLit{Base: b}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			s.Fields = append(s.Fields, &syntax.FieldInit{
				Base:  l.base(k),
				Name:  k.Value,
				Value: l.literal(n.Content[i+1]),
			})
		}
		return s
	}
	l.errorf(n, "Unsupported literal")
	return &syntax.NullLit{Base: b}
}

func (l *loader) scalarLiteral(n *yaml.Node, b syntax.Base) syntax.Literal {
	switch n.Tag {
	case tagBytes:
		raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(n.Value), "0x"))
		if err != nil {
			l.errorf(n, "Invalid hex bytes '%s'", n.Value)
			return &syntax.NullLit{Base: b}
		}
		return &syntax.BytesLit{Base: b, Value: raw}
	case tagEnum:
		return &syntax.EnumLit{Base: b, Symbol: n.Value}
	case tagMap, tagStruct:
		if n.Value == "" {
			if n.Tag == tagMap {
				return &syntax.MapLit{Base: b}
			}
			return &syntax.StructLit{Base: b}
		}
	}

	switch n.ShortTag() {
	case "!!null":
		return &syntax.NullLit{Base: b}
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			l.errorf(n, "Invalid boolean '%s'", n.Value)
		}
		return &syntax.BoolLit{Base: b, Value: v}
	case "!!int", "!!float":
		return &syntax.NumberLit{Base: b, Text: n.Value}
	case "!!binary":
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			l.errorf(n, "Invalid base64 bytes")
			return &syntax.NullLit{Base: b}
		}
		return &syntax.BytesLit{Base: b, Value: raw}
	}
	return &syntax.StringLit{Base: b, Value: n.Value}
}
