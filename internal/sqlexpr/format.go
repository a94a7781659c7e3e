package sqlexpr

import (
	"encoding/hex"
	"strings"

	"github.com/streamdl/streamdl/internal/syntax"
)

// Format renders e fully parenthesized, for debug output and tests.
func Format(e syntax.Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e)
	return sb.String()
}

func formatExpr(sb *strings.Builder, e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.Ident:
		sb.WriteString(e.Name)
	case *syntax.MemberExpr:
		formatExpr(sb, e.Target)
		sb.WriteString(".")
		sb.WriteString(e.Member)
	case *syntax.IndexExpr:
		formatExpr(sb, e.Target)
		sb.WriteString("[")
		formatExpr(sb, e.Index)
		sb.WriteString("]")
	case *syntax.ParenExpr:
		formatExpr(sb, e.Inner)
	case *syntax.LiteralExpr:
		formatLiteral(sb, e.Value)
	case *syntax.UnaryExpr:
		sb.WriteString("(")
		if e.Op == syntax.OpNot {
			sb.WriteString("NOT ")
		} else {
			sb.WriteString("-")
		}
		formatExpr(sb, e.Operand)
		sb.WriteString(")")
	case *syntax.PostfixExpr:
		sb.WriteString("(")
		formatExpr(sb, e.Operand)
		sb.WriteString(" " + e.Op.String() + ")")
	case *syntax.BinaryExpr:
		sb.WriteString("(")
		formatExpr(sb, e.Left)
		sb.WriteString(" " + e.Op.String() + " ")
		formatExpr(sb, e.Right)
		sb.WriteString(")")
	case *syntax.BetweenExpr:
		sb.WriteString("(")
		formatExpr(sb, e.Target)
		if e.Not {
			sb.WriteString(" NOT")
		}
		sb.WriteString(" BETWEEN ")
		formatExpr(sb, e.Low)
		sb.WriteString(" AND ")
		formatExpr(sb, e.High)
		sb.WriteString(")")
	}
}

func formatLiteral(sb *strings.Builder, l syntax.Literal) {
	switch l := l.(type) {
	case *syntax.NullLit:
		sb.WriteString("NULL")
	case *syntax.BoolLit:
		if l.Value {
			sb.WriteString("TRUE")
		} else {
			sb.WriteString("FALSE")
		}
	case *syntax.NumberLit:
		sb.WriteString(l.Text)
	case *syntax.StringLit:
		sb.WriteString("'" + strings.ReplaceAll(l.Value, "'", "''") + "'")
	case *syntax.BytesLit:
		sb.WriteString("x'" + hex.EncodeToString(l.Value) + "'")
	case *syntax.ListLit:
		sb.WriteString("[")
		for i, it := range l.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatLiteral(sb, it)
		}
		sb.WriteString("]")
	default:
		sb.WriteString("<" + l.Describe() + ">")
	}
}
