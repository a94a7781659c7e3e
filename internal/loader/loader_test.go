package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamdl/streamdl/internal/binder"
	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/sqlexpr"
	"github.com/streamdl/streamdl/internal/syntax"
)

const shopProgram = `
- context: shop
  comment: Web shop
- use: shop
- scalar: Percent
  type: Int8
  default: 10
  check: value BETWEEN 0 AND 100
- enum: Tier
  base: Int16
  symbols: [Free, {Paid: 10}, Gold]
  default: !enum Free
- struct: Customer
  fields:
    - {name: Id, type: Int32}
    - {name: Name, type: String(40), nullable: true}
    - {name: Price, type: "Decimal(5, 2)", default: 1.50}
    - {name: Discount, type: Percent}
    - {name: Tier, type: Tier}
    - {name: Tags, type: {list: String}}
    - {name: Attrs, type: {map: [String, Int64]}}
  constraints:
    positive_id: Id > 0
- union: Key
  members:
    - {name: Id, type: Int32}
    - {name: Name, type: String}
  default: !union {Id: 0}
- stream: Customers
  aliases:
    customer: Customer
    click:
      fields:
        - {name: At, type: Timestamp(3)}
        - {name: Raw, type: Bytes}
- read: Customers
  blocks:
    - alias: customer
      select: [Id, Price * 2]
      where: Discount >= 5 AND Name IS NOT NULL
    - alias: click
      select: "*"
- write: Customers
  alias: customer
  values:
    - {Id: 1, Name: ann, Tags: [a, b], Attrs: !map {w: 3}}
- write: Customers
  alias: click
  values:
    - {At: "2024-01-02 03:04:05.120", Raw: !bytes 0aff}
`

func TestParseProgram(t *testing.T) {
	doc, err := Parse([]byte(shopProgram))
	require.NoError(t, err)
	require.Zero(t, doc.Diagnostics.Len(), "%v", doc.Diagnostics.Entries())
	require.Len(t, doc.Program.Statements, 10)

	ctx := doc.Program.Statements[0].(*syntax.CreateContext)
	assert.Equal(t, "shop", ctx.Name.String())
	assert.Equal(t, "Web shop", ctx.Comment)

	scalar := doc.Program.Statements[2].(*syntax.CreateScalar)
	assert.Equal(t, "Percent", scalar.Name.String())
	require.Len(t, scalar.Checks, 1)
	assert.Equal(t, "(value BETWEEN 0 AND 100)", sqlexpr.Format(scalar.Checks[0].Expr))
	assert.Equal(t, &syntax.NumberLit{Base: scalar.Default.(*syntax.NumberLit).Base, Text: "10"}, scalar.Default)

	enum := doc.Program.Statements[3].(*syntax.CreateEnum)
	require.Len(t, enum.Symbols, 3)
	assert.Nil(t, enum.Symbols[0].Value)
	assert.Equal(t, "10", enum.Symbols[1].Value.(*syntax.NumberLit).Text)
	assert.Equal(t, "Free", enum.Default.(*syntax.EnumLit).Symbol)

	st := doc.Program.Statements[4].(*syntax.CreateStruct)
	require.Len(t, st.Fields, 7)
	assert.Equal(t, &syntax.PrimitiveType{Base: st.Fields[1].Type.(*syntax.PrimitiveType).Base, Name: "String", Params: []int{40}}, st.Fields[1].Type)
	assert.Equal(t, []int{5, 2}, st.Fields[2].Type.(*syntax.PrimitiveType).Params)
	assert.Equal(t, "1.50", st.Fields[2].Default.(*syntax.NumberLit).Text, "number literals keep their digits")
	assert.IsType(t, &syntax.NamedType{}, st.Fields[3].Type)
	assert.IsType(t, &syntax.ListType{}, st.Fields[5].Type)
	assert.IsType(t, &syntax.MapType{}, st.Fields[6].Type)
	assert.True(t, st.Fields[1].Nullable)
	require.Len(t, st.Checks, 1)
	assert.Equal(t, "positive_id", st.Checks[0].Name)

	union := doc.Program.Statements[5].(*syntax.CreateUnion)
	assert.Equal(t, "Id", union.Default.(*syntax.UnionLit).Member)

	stream := doc.Program.Statements[6].(*syntax.CreateStream)
	require.Len(t, stream.Aliases, 2)
	assert.Equal(t, "customer", stream.Aliases[0].Name)
	assert.IsType(t, &syntax.StructType{}, stream.Aliases[1].Type)

	read := doc.Program.Statements[7].(*syntax.Read)
	require.Len(t, read.Blocks, 2)
	assert.Len(t, read.Blocks[0].Projections, 2)
	assert.Equal(t, "((Discount >= 5) AND (Name IS NOT NULL))", sqlexpr.Format(read.Blocks[0].Where))
	assert.True(t, read.Blocks[1].Star)

	w := doc.Program.Statements[8].(*syntax.Write)
	assert.Equal(t, "customer", w.Alias)
	row := w.Values[0].(*syntax.StructLit)
	require.Len(t, row.Fields, 4)
	assert.IsType(t, &syntax.ListLit{}, row.Fields[2].Value)
	assert.IsType(t, &syntax.MapLit{}, row.Fields[3].Value)

	click := doc.Program.Statements[9].(*syntax.Write).Values[0].(*syntax.StructLit)
	assert.Equal(t, []byte{0x0a, 0xff}, click.Fields[1].Value.(*syntax.BytesLit).Value)
}

func TestLoadedProgramBinds(t *testing.T) {
	doc, err := Parse([]byte(shopProgram))
	require.NoError(t, err)

	res := binder.Bind(doc.Program)
	require.True(t, res.OK(), "%v", res.Diagnostics.Entries())
	require.Len(t, res.Writes, 2)
	assert.Equal(t, "@{Id: 1, Name: 'ann', Tags: ['a', 'b'], Attrs: {'w': 3}}", res.Writes[0].Values[0].String())
	assert.Equal(t, "@{At: '2024-01-02 03:04:05.120', Raw: x'0aff'}", res.Writes[1].Values[0].String())

	price, ok := res.Writes[0].Row.Field("Price")
	require.True(t, ok)
	assert.Equal(t, "1.50", price.Default.String())
}

func TestPositions(t *testing.T) {
	doc, err := Parse([]byte("- context: shop\n- use: shop\n- struct: S\n  constraints:\n    c: Id >\n"))
	require.NoError(t, err)

	entries := doc.Diagnostics.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, diag.Syntactic, entries[0].Kind)
	assert.Equal(t, diag.CodeParse, entries[0].Code)
	assert.Equal(t, 5, entries[0].Range.Start.Line)

	use := doc.Program.Statements[1]
	assert.Equal(t, syntax.Position{Line: 2, Column: 3}, use.Span().Start)
}

func TestStructuralProblems(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		severity diag.Severity
		message  string
	}{
		{"unknown statement", "- table: T\n", diag.Error, "Unknown statement 'table'"},
		{"unknown key", "- context: shop\n  colour: red\n", diag.Warning, "Unknown key 'colour'"},
		{"field without type", "- struct: S\n  fields:\n    - {name: Id}\n", diag.Error, "needs a name and a type"},
		{"bad type", "- struct: S\n  fields:\n    - {name: Id, type: \"Decimal(5\"}\n", diag.Error, "Invalid type"},
		{"bad bytes", "- write: S\n  alias: a\n  values:\n    - !bytes zz\n", diag.Error, "Invalid hex bytes"},
		{"enum without symbols", "- enum: E\n", diag.Error, "needs a sequence of symbols"},
		{"write without alias", "- write: S\n  values: []\n", diag.Error, "WRITE needs an alias"},
		{"scalar statement", "- shop\n", diag.Error, "must be a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			entries := doc.Diagnostics.Entries()
			require.Len(t, entries, 1, "%v", entries)
			assert.Equal(t, tt.severity, entries[0].Severity)
			assert.Contains(t, entries[0].Message, tt.message)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("context: shop\n"))
	assert.ErrorContains(t, err, "sequence of statements")

	_, err = Parse([]byte("- [unclosed\n"))
	assert.ErrorContains(t, err, "invalid YAML")

	doc, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Program.Statements)
}

func TestLoadFileWithIncludes(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.yaml")
	require.NoError(t, os.WriteFile(main, []byte("- context: shop\n- use: shop\n\\i types.yaml\n- struct: Order\n  fields:\n    - {name: Who, type: Customr}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.yaml"), []byte("- struct: Customer\n  fields:\n    - {name: Id, type: Int32}\n"), 0644))

	doc, err := LoadFile(main, Options{})
	require.NoError(t, err)
	require.NotNil(t, doc.Source)
	require.Len(t, doc.Program.Statements, 4)

	res := binder.Bind(doc.Program)
	entries := res.Diagnostics.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, diag.CodeUnknownType, entries[0].Code)

	origin := doc.Source.Origin(entries[0].Range.Start.Line)
	assert.Equal(t, "main.yaml", filepath.Base(origin.File))
	assert.Equal(t, 6, origin.Line)

	customer := doc.Program.Statements[2]
	origin = doc.Source.Origin(customer.Span().Start.Line)
	assert.Equal(t, "types.yaml", filepath.Base(origin.File))
	assert.Equal(t, 1, origin.Line)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	assert.ErrorContains(t, err, "failed to read file")
}
