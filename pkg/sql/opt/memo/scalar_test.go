// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo_test

import (
	"testing"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/sem/tree"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/stretchr/testify/require"
)

func TestOuterCols(t *testing.T) {
	md := opt.NewMetadata()
	x := md.AddColumn("x", types.Int)
	y := md.AddColumn("y", types.Int)
	z := md.AddColumn("z", types.String)

	vx, vy, vz := memo.NewVariable(md, x), memo.NewVariable(md, y), memo.NewVariable(md, z)
	one := memo.NewConst(tree.NewDInt(1))

	require.True(t, memo.OuterCols(nil).Empty())
	require.True(t, memo.OuterCols(one).Empty())
	require.True(t, memo.IsConstant(one))
	require.Equal(t, "(1)", memo.OuterCols(vx).String())

	e := memo.NewAnd(
		memo.NewEq(memo.NewArithmetic(opt.PlusOp, vx, one), vy),
		memo.NewNot(memo.NewIsNull(memo.NewFunction("lower", types.String, vz))),
	)
	require.Equal(t, "(1-3)", memo.OuterCols(e).String())
	require.False(t, memo.IsConstant(e))

	require.True(t, memo.IsColumnRef(vx))
	require.False(t, memo.IsColumnRef(one))
	require.False(t, memo.IsColumnRef(e))
}

func TestScalarTypes(t *testing.T) {
	md := opt.NewMetadata()
	x := memo.NewVariable(md, md.AddColumn("x", types.Int))
	f := memo.NewVariable(md, md.AddColumn("f", types.Float))
	d, err := tree.ParseDDecimal("1.50")
	require.NoError(t, err)

	require.Equal(t, types.Int, x.DataType())
	require.Equal(t, types.Float, memo.NewArithmetic(opt.MultOp, x, f).DataType())
	require.Equal(t, types.Decimal, memo.NewArithmetic(opt.PlusOp, x, memo.NewConst(d)).DataType())
	require.Equal(t, types.Int, memo.NewArithmetic(opt.PlusOp, x, memo.NewConst(tree.DNull)).DataType())
	require.Equal(t, types.Bool, memo.NewComparison(opt.LtOp, x, f).DataType())
	require.Equal(t, types.Unknown, memo.NewConst(tree.DNull).DataType())

	require.Panics(t, func() { memo.NewComparison(opt.PlusOp, x, f) })
	require.Panics(t, func() { memo.NewArithmetic(opt.EqOp, x, f) })
}

func TestFormatScalar(t *testing.T) {
	md := opt.NewMetadata()
	a := memo.NewVariable(md, md.AddColumn("a", types.Int))
	b := memo.NewVariable(md, md.AddColumn("b", types.Int))
	c := memo.NewVariable(md, md.AddColumn("c", types.Bool))
	one := memo.NewConst(tree.NewDInt(1))

	testCases := []struct {
		e        opt.ScalarExpr
		expected string
	}{
		{e: memo.NewEq(a, b), expected: "a = b"},
		{e: memo.NewComparison(opt.GeOp, a, one), expected: "a >= 1"},
		{e: memo.NewConst(tree.NewDString("it's")), expected: "'it''s'"},
		{e: memo.NewConst(tree.DNull), expected: "NULL"},
		{e: memo.NewOr(memo.NewAnd(c, c), c), expected: "c AND c OR c"},
		{e: memo.NewAnd(memo.NewOr(c, c), c), expected: "(c OR c) AND c"},
		{e: memo.NewNot(memo.NewAnd(c, memo.TrueSingleton)), expected: "NOT (c AND true)"},
		{e: memo.NewNot(c), expected: "NOT c"},
		{
			e:        memo.NewArithmetic(opt.MultOp, memo.NewArithmetic(opt.PlusOp, a, b), one),
			expected: "(a + b) * 1",
		},
		{
			e:        memo.NewArithmetic(opt.MinusOp, a, memo.NewArithmetic(opt.MinusOp, b, one)),
			expected: "a - (b - 1)",
		},
		{
			e:        memo.NewArithmetic(opt.MinusOp, memo.NewArithmetic(opt.MinusOp, a, b), one),
			expected: "a - b - 1",
		},
		{e: memo.NewIsNull(memo.NewArithmetic(opt.PlusOp, a, b)), expected: "a + b IS NULL"},
		{e: memo.NewFunction("abs", types.Int, memo.NewArithmetic(opt.DivOp, a, b)), expected: "abs(a / b)"},
		{e: memo.NewFunction("now", types.Int), expected: "now()"},
		{e: memo.NewComparison(opt.NeOp, a, memo.FalseSingleton), expected: "a != false"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, memo.FormatScalar(tc.e, md))
		})
	}

	require.Equal(t, "@1 = @2", memo.FormatScalar(memo.NewEq(a, b), nil))
	require.Equal(t, "", memo.FormatScalar(nil, md))
}

func TestReplaceColumns(t *testing.T) {
	md := opt.NewMetadata()
	x := md.AddColumn("x", types.Int)
	y := md.AddColumn("y", types.Int)
	z := md.AddColumn("z", types.Int)
	vx, vy := memo.NewVariable(md, x), memo.NewVariable(md, y)
	one := memo.NewConst(tree.NewDInt(1))

	// Replace y with x + 1.
	yExpr := memo.NewArithmetic(opt.PlusOp, vx, one)
	replace := func(col opt.ColumnID) (opt.ScalarExpr, bool) {
		if col == y {
			return yExpr, true
		}
		return nil, false
	}

	untouched := memo.NewEq(vx, one)
	require.Same(t, untouched, memo.ReplaceColumns(untouched, replace))

	e := memo.NewAnd(
		memo.NewComparison(opt.LtOp, vy, memo.NewVariable(md, z)),
		memo.NewNot(memo.NewIsNull(memo.NewFunction("abs", types.Int, vx, vy))),
	)
	res := memo.ReplaceColumns(e, replace)
	require.Equal(t, "x + 1 < z AND NOT abs(x, x + 1) IS NULL", memo.FormatScalar(res, md))
	require.Equal(t, "(1,3)", memo.OuterCols(res).String())
	// The original is unchanged.
	require.Equal(t, "y < z AND NOT abs(x, y) IS NULL", memo.FormatScalar(e, md))
}
