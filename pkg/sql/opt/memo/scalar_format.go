// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/errors"
)

// Binding strength of infix operators, used to decide where parentheses are
// needed. Higher binds tighter.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCmp
	precAdd
	precMult
	precAtom
)

var infixSymbols = map[opt.Operator]string{
	opt.AndOp:   "AND",
	opt.OrOp:    "OR",
	opt.EqOp:    "=",
	opt.NeOp:    "!=",
	opt.LtOp:    "<",
	opt.LeOp:    "<=",
	opt.GtOp:    ">",
	opt.GeOp:    ">=",
	opt.PlusOp:  "+",
	opt.MinusOp: "-",
	opt.MultOp:  "*",
	opt.DivOp:   "/",
}

// FormatScalar renders the scalar expression as infix SQL-like text. Column
// references are rendered using their aliases when a factory is given, and as
// "@<id>" otherwise.
func FormatScalar(e opt.ScalarExpr, f opt.ColumnFactory) string {
	if e == nil {
		return ""
	}
	var buf strings.Builder
	sf := scalarFormatter{buf: &buf, f: f}
	sf.format(e)
	return buf.String()
}

type scalarFormatter struct {
	buf *strings.Builder
	f   opt.ColumnFactory
}

func precedence(e opt.Expr) int {
	switch e.Op() {
	case opt.OrOp:
		return precOr
	case opt.AndOp:
		return precAnd
	case opt.NotOp:
		return precNot
	case opt.EqOp, opt.NeOp, opt.LtOp, opt.LeOp, opt.GtOp, opt.GeOp, opt.IsNullOp:
		return precCmp
	case opt.PlusOp, opt.MinusOp:
		return precAdd
	case opt.MultOp, opt.DivOp:
		return precMult
	}
	return precAtom
}

// formatOperand renders a child, adding parentheses if it binds more loosely
// than its parent. The right operand of a non-associative operator is also
// parenthesized when it binds equally.
func (sf *scalarFormatter) formatOperand(parent, child opt.Expr, right bool) {
	pp, cp := precedence(parent), precedence(child)
	paren := cp < pp
	if right && cp == pp {
		switch parent.Op() {
		case opt.MinusOp, opt.DivOp:
			paren = true
		case opt.EqOp, opt.NeOp, opt.LtOp, opt.LeOp, opt.GtOp, opt.GeOp:
			paren = true
		}
	}
	if paren {
		sf.buf.WriteByte('(')
		sf.format(child)
		sf.buf.WriteByte(')')
		return
	}
	sf.format(child)
}

func (sf *scalarFormatter) format(e opt.Expr) {
	switch t := e.(type) {
	case *VariableExpr:
		if sf.f == nil {
			fmt.Fprintf(sf.buf, "@%d", t.Col)
		} else {
			sf.buf.WriteString(sf.f.ColumnMeta(t.Col).Alias)
		}

	case *ConstExpr:
		sf.buf.WriteString(t.Value.String())

	case *NullExpr:
		sf.buf.WriteString("NULL")

	case *TrueExpr:
		sf.buf.WriteString("true")

	case *FalseExpr:
		sf.buf.WriteString("false")

	case *NotExpr:
		sf.buf.WriteString("NOT ")
		sf.formatOperand(e, t.Input, false)

	case *IsNullExpr:
		sf.formatOperand(e, t.Input, false)
		sf.buf.WriteString(" IS NULL")

	case *FunctionExpr:
		sf.buf.WriteString(t.Name)
		sf.buf.WriteByte('(')
		for i, arg := range t.Args {
			if i > 0 {
				sf.buf.WriteString(", ")
			}
			sf.format(arg)
		}
		sf.buf.WriteByte(')')

	case *AndExpr, *OrExpr, *ComparisonExpr, *ArithmeticExpr:
		sf.formatOperand(e, e.Child(0), false)
		sf.buf.WriteByte(' ')
		sf.buf.WriteString(infixSymbols[e.Op()])
		sf.buf.WriteByte(' ')
		sf.formatOperand(e, e.Child(1), true)

	default:
		panic(errors.AssertionFailedf("unhandled scalar expression %T", e))
	}
}
