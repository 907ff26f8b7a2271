// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/sem/tree"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/cockroachdb/errors"
)

// VariableExpr is a reference to a column produced by an input of the
// enclosing operator.
type VariableExpr struct {
	Col opt.ColumnID
	Typ *types.T
}

// ConstExpr is a typed constant value.
type ConstExpr struct {
	Value tree.Datum
}

// NullExpr is the NULL constant with a given type.
type NullExpr struct {
	Typ *types.T
}

// TrueExpr is the boolean true constant.
type TrueExpr struct{}

// FalseExpr is the boolean false constant.
type FalseExpr struct{}

// AndExpr is the boolean conjunction of two operands.
type AndExpr struct {
	Left, Right opt.ScalarExpr
}

// OrExpr is the boolean disjunction of two operands.
type OrExpr struct {
	Left, Right opt.ScalarExpr
}

// NotExpr is the boolean negation of its input.
type NotExpr struct {
	Input opt.ScalarExpr
}

// ComparisonExpr compares two operands. Its operator is one of EqOp, NeOp,
// LtOp, LeOp, GtOp or GeOp.
type ComparisonExpr struct {
	op          opt.Operator
	Left, Right opt.ScalarExpr
}

// IsNullExpr tests whether its input is NULL.
type IsNullExpr struct {
	Input opt.ScalarExpr
}

// ArithmeticExpr is a binary arithmetic operation. Its operator is one of
// PlusOp, MinusOp, MultOp or DivOp.
type ArithmeticExpr struct {
	op          opt.Operator
	Left, Right opt.ScalarExpr
	typ         *types.T
}

// FunctionExpr is a call to a named scalar or aggregate function.
type FunctionExpr struct {
	Name string
	Args []opt.ScalarExpr
	Typ  *types.T
}

// TrueSingleton and FalseSingleton are shared instances of the boolean
// constants.
var (
	TrueSingleton  = &TrueExpr{}
	FalseSingleton = &FalseExpr{}
)

var (
	_ opt.ScalarExpr = &VariableExpr{}
	_ opt.ScalarExpr = &ConstExpr{}
	_ opt.ScalarExpr = &NullExpr{}
	_ opt.ScalarExpr = &TrueExpr{}
	_ opt.ScalarExpr = &FalseExpr{}
	_ opt.ScalarExpr = &AndExpr{}
	_ opt.ScalarExpr = &OrExpr{}
	_ opt.ScalarExpr = &NotExpr{}
	_ opt.ScalarExpr = &ComparisonExpr{}
	_ opt.ScalarExpr = &IsNullExpr{}
	_ opt.ScalarExpr = &ArithmeticExpr{}
	_ opt.ScalarExpr = &FunctionExpr{}
)

// NewVariable returns a reference to the given column. The column type is
// resolved through the factory.
func NewVariable(f opt.ColumnFactory, col opt.ColumnID) *VariableExpr {
	return &VariableExpr{Col: col, Typ: f.ColumnMeta(col).Type}
}

// NewConst wraps a datum in a constant expression.
func NewConst(d tree.Datum) opt.ScalarExpr {
	if d == tree.DNull {
		return &NullExpr{Typ: types.Unknown}
	}
	return &ConstExpr{Value: d}
}

// NewAnd returns the conjunction of the two operands.
func NewAnd(left, right opt.ScalarExpr) *AndExpr {
	return &AndExpr{Left: left, Right: right}
}

// NewOr returns the disjunction of the two operands.
func NewOr(left, right opt.ScalarExpr) *OrExpr {
	return &OrExpr{Left: left, Right: right}
}

// NewNot returns the negation of the input.
func NewNot(input opt.ScalarExpr) *NotExpr {
	return &NotExpr{Input: input}
}

// NewIsNull returns an IS NULL test of the input.
func NewIsNull(input opt.ScalarExpr) *IsNullExpr {
	return &IsNullExpr{Input: input}
}

// NewComparison constructs a comparison with the given operator.
func NewComparison(op opt.Operator, left, right opt.ScalarExpr) *ComparisonExpr {
	if !opt.IsComparisonOp(op) {
		panic(errors.AssertionFailedf("%s is not a comparison operator", op))
	}
	return &ComparisonExpr{op: op, Left: left, Right: right}
}

// NewEq is a shorthand for NewComparison(opt.EqOp, left, right).
func NewEq(left, right opt.ScalarExpr) *ComparisonExpr {
	return NewComparison(opt.EqOp, left, right)
}

// NewArithmetic constructs a binary arithmetic operation. The result type is
// the wider of the operand types.
func NewArithmetic(op opt.Operator, left, right opt.ScalarExpr) *ArithmeticExpr {
	switch op {
	case opt.PlusOp, opt.MinusOp, opt.MultOp, opt.DivOp:
	default:
		panic(errors.AssertionFailedf("%s is not an arithmetic operator", op))
	}
	return &ArithmeticExpr{op: op, Left: left, Right: right, typ: widerType(left.DataType(), right.DataType())}
}

// NewFunction constructs a function call.
func NewFunction(name string, typ *types.T, args ...opt.ScalarExpr) *FunctionExpr {
	return &FunctionExpr{Name: name, Args: args, Typ: typ}
}

func widerType(l, r *types.T) *types.T {
	if l.Family() == types.UnknownFamily {
		return r
	}
	if r.Family() == types.UnknownFamily || l.Family() == r.Family() {
		return l
	}
	rank := func(t *types.T) int {
		switch t.Family() {
		case types.IntFamily:
			return 1
		case types.DecimalFamily:
			return 2
		case types.FloatFamily:
			return 3
		}
		return 0
	}
	if rank(r) > rank(l) {
		return r
	}
	return l
}

func (e *VariableExpr) Op() opt.Operator       { return opt.VariableOp }
func (e *VariableExpr) ChildCount() int        { return 0 }
func (e *VariableExpr) Child(nth int) opt.Expr { panic(errors.AssertionFailedf("child index out of range")) }
func (e *VariableExpr) DataType() *types.T     { return e.Typ }

func (e *ConstExpr) Op() opt.Operator       { return opt.ConstOp }
func (e *ConstExpr) ChildCount() int        { return 0 }
func (e *ConstExpr) Child(nth int) opt.Expr { panic(errors.AssertionFailedf("child index out of range")) }
func (e *ConstExpr) DataType() *types.T     { return e.Value.ResolvedType() }

func (e *NullExpr) Op() opt.Operator       { return opt.NullOp }
func (e *NullExpr) ChildCount() int        { return 0 }
func (e *NullExpr) Child(nth int) opt.Expr { panic(errors.AssertionFailedf("child index out of range")) }
func (e *NullExpr) DataType() *types.T     { return e.Typ }

func (e *TrueExpr) Op() opt.Operator       { return opt.TrueOp }
func (e *TrueExpr) ChildCount() int        { return 0 }
func (e *TrueExpr) Child(nth int) opt.Expr { panic(errors.AssertionFailedf("child index out of range")) }
func (e *TrueExpr) DataType() *types.T     { return types.Bool }

func (e *FalseExpr) Op() opt.Operator       { return opt.FalseOp }
func (e *FalseExpr) ChildCount() int        { return 0 }
func (e *FalseExpr) Child(nth int) opt.Expr { panic(errors.AssertionFailedf("child index out of range")) }
func (e *FalseExpr) DataType() *types.T     { return types.Bool }

func (e *AndExpr) Op() opt.Operator       { return opt.AndOp }
func (e *AndExpr) ChildCount() int        { return 2 }
func (e *AndExpr) Child(nth int) opt.Expr { return binaryChild(e.Left, e.Right, nth) }
func (e *AndExpr) DataType() *types.T     { return types.Bool }

func (e *OrExpr) Op() opt.Operator       { return opt.OrOp }
func (e *OrExpr) ChildCount() int        { return 2 }
func (e *OrExpr) Child(nth int) opt.Expr { return binaryChild(e.Left, e.Right, nth) }
func (e *OrExpr) DataType() *types.T     { return types.Bool }

func (e *NotExpr) Op() opt.Operator   { return opt.NotOp }
func (e *NotExpr) ChildCount() int    { return 1 }
func (e *NotExpr) DataType() *types.T { return types.Bool }
func (e *NotExpr) Child(nth int) opt.Expr {
	if nth != 0 {
		panic(errors.AssertionFailedf("child index out of range"))
	}
	return e.Input
}

func (e *ComparisonExpr) Op() opt.Operator       { return e.op }
func (e *ComparisonExpr) ChildCount() int        { return 2 }
func (e *ComparisonExpr) Child(nth int) opt.Expr { return binaryChild(e.Left, e.Right, nth) }
func (e *ComparisonExpr) DataType() *types.T     { return types.Bool }

func (e *IsNullExpr) Op() opt.Operator   { return opt.IsNullOp }
func (e *IsNullExpr) ChildCount() int    { return 1 }
func (e *IsNullExpr) DataType() *types.T { return types.Bool }
func (e *IsNullExpr) Child(nth int) opt.Expr {
	if nth != 0 {
		panic(errors.AssertionFailedf("child index out of range"))
	}
	return e.Input
}

func (e *ArithmeticExpr) Op() opt.Operator       { return e.op }
func (e *ArithmeticExpr) ChildCount() int        { return 2 }
func (e *ArithmeticExpr) Child(nth int) opt.Expr { return binaryChild(e.Left, e.Right, nth) }
func (e *ArithmeticExpr) DataType() *types.T     { return e.typ }

func (e *FunctionExpr) Op() opt.Operator       { return opt.FunctionOp }
func (e *FunctionExpr) ChildCount() int        { return len(e.Args) }
func (e *FunctionExpr) Child(nth int) opt.Expr { return e.Args[nth] }
func (e *FunctionExpr) DataType() *types.T     { return e.Typ }

func binaryChild(left, right opt.ScalarExpr, nth int) opt.Expr {
	switch nth {
	case 0:
		return left
	case 1:
		return right
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

// OuterCols returns the set of columns referenced by the scalar expression.
// A nil expression references no columns.
func OuterCols(e opt.ScalarExpr) opt.ColSet {
	var cols opt.ColSet
	if e != nil {
		collectOuterCols(e, &cols)
	}
	return cols
}

func collectOuterCols(e opt.Expr, cols *opt.ColSet) {
	if v, ok := e.(*VariableExpr); ok {
		cols.Add(v.Col)
		return
	}
	for i, n := 0, e.ChildCount(); i < n; i++ {
		collectOuterCols(e.Child(i), cols)
	}
}

// IsColumnRef returns true if the expression is a bare column reference.
func IsColumnRef(e opt.ScalarExpr) bool {
	_, ok := e.(*VariableExpr)
	return ok
}

// IsConstant returns true if the expression references no columns.
func IsConstant(e opt.ScalarExpr) bool {
	return OuterCols(e).Empty()
}

// ReplaceColumns returns an expression in which every column reference for
// which replace returns true is substituted by the returned expression.
// Subtrees without substitutions are shared with the original.
func ReplaceColumns(
	e opt.ScalarExpr, replace func(col opt.ColumnID) (opt.ScalarExpr, bool),
) opt.ScalarExpr {
	r := func(child opt.ScalarExpr) opt.ScalarExpr { return ReplaceColumns(child, replace) }
	switch t := e.(type) {
	case *VariableExpr:
		if res, ok := replace(t.Col); ok {
			return res
		}
		return e

	case *ConstExpr, *NullExpr, *TrueExpr, *FalseExpr:
		return e

	case *AndExpr:
		if l, rt := r(t.Left), r(t.Right); l != t.Left || rt != t.Right {
			return NewAnd(l, rt)
		}

	case *OrExpr:
		if l, rt := r(t.Left), r(t.Right); l != t.Left || rt != t.Right {
			return NewOr(l, rt)
		}

	case *NotExpr:
		if in := r(t.Input); in != t.Input {
			return NewNot(in)
		}

	case *IsNullExpr:
		if in := r(t.Input); in != t.Input {
			return NewIsNull(in)
		}

	case *ComparisonExpr:
		if l, rt := r(t.Left), r(t.Right); l != t.Left || rt != t.Right {
			return NewComparison(t.op, l, rt)
		}

	case *ArithmeticExpr:
		if l, rt := r(t.Left), r(t.Right); l != t.Left || rt != t.Right {
			return NewArithmetic(t.op, l, rt)
		}

	case *FunctionExpr:
		var args []opt.ScalarExpr
		for i, arg := range t.Args {
			if newArg := r(arg); newArg != arg && args == nil {
				args = make([]opt.ScalarExpr, len(t.Args))
				copy(args, t.Args[:i])
				args[i] = newArg
			} else if args != nil {
				args[i] = newArg
			}
		}
		if args != nil {
			return NewFunction(t.Name, t.Typ, args...)
		}

	default:
		panic(errors.AssertionFailedf("unhandled scalar expression %T", e))
	}
	return e
}
