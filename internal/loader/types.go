package loader

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/streamdl/streamdl/internal/syntax"
)

// typePattern matches "Name" and "Name(p, ...)". A dotted name may be rooted
// with a leading dot.
var typePattern = regexp.MustCompile(`^\s*(\.?[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*(?:\(\s*([0-9]+(?:\s*,\s*[0-9]+)*)\s*\))?\s*$`)

// typeExpr reads a type reference. Scalars are type names, optionally with
// parameters; mappings spell composite types:
//
//	{list: Int32}
//	{map: [String, Int64]}
//	{fields: [{name: At, type: Timestamp}]}
//
// A name without parameters stays a NamedType; the binder falls back to the
// primitive of that name when nothing is declared under it.
func (l *loader) typeExpr(n *yaml.Node) syntax.TypeExpr {
	n = resolveAlias(n)
	b := l.base(n)
	switch n.Kind {
	case yaml.ScalarNode:
		m := typePattern.FindStringSubmatch(n.Value)
		if m == nil {
			l.errorf(n, "Invalid type '%s'", n.Value)
			return &syntax.NamedType{Base: b, Name: syntax.ParseQualifiedName(n.Value)}
		}
		if m[2] == "" {
			return &syntax.NamedType{Base: b, Name: syntax.ParseQualifiedName(m[1])}
		}
		var params []int
		for _, p := range strings.Split(m[2], ",") {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				l.errorf(n, "Invalid type parameter '%s'", p)
				continue
			}
			params = append(params, v)
		}
		return &syntax.PrimitiveType{Base: b, Name: m[1], Params: params}

	case yaml.MappingNode:
		if len(n.Content) != 2 {
			break
		}
		k, v := n.Content[0].Value, resolveAlias(n.Content[1])
		switch k {
		case "list":
			return &syntax.ListType{Base: b, Item: l.typeExpr(v)}
		case "map":
			if v.Kind != yaml.SequenceNode || len(v.Content) != 2 {
				l.errorf(v, "A map type is {map: [KeyType, ValueType]}")
				return &syntax.NamedType{Base: b}
			}
			return &syntax.MapType{Base: b, Key: l.typeExpr(v.Content[0]), Value: l.typeExpr(v.Content[1])}
		case "fields":
			return &syntax.StructType{Base: b, Fields: l.fieldList(v)}
		}
	}
	l.errorf(n, "A type is a name, {list: T}, {map: [K, V]} or {fields: [...]}")
	return &syntax.NamedType{Base: b}
}
