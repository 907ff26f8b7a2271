// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/sem/tree"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

const numBoolCols = 4

// boolColumns returns metadata with numBoolCols boolean columns p1..pN.
func boolColumns() *opt.Metadata {
	md := opt.NewMetadata()
	for i := 1; i <= numBoolCols; i++ {
		md.AddColumn(fmt.Sprintf("p%d", i), types.Bool)
	}
	return md
}

// evalBool evaluates a boolean predicate over boolean columns. Bit i-1 of
// assignment is the value of column i. A nil predicate is true.
func evalBool(e opt.ScalarExpr, assignment uint8) bool {
	switch t := e.(type) {
	case nil:
		return true
	case *memo.VariableExpr:
		return assignment&(1<<uint(t.Col-1)) != 0
	case *memo.TrueExpr:
		return true
	case *memo.FalseExpr:
		return false
	case *memo.AndExpr:
		return evalBool(t.Left, assignment) && evalBool(t.Right, assignment)
	case *memo.OrExpr:
		return evalBool(t.Left, assignment) || evalBool(t.Right, assignment)
	case *memo.NotExpr:
		return !evalBool(t.Input, assignment)
	}
	panic(fmt.Sprintf("unexpected expression %T", e))
}

// randBoolExpr builds a random boolean expression of at most the given depth.
func randBoolExpr(rng *rand.Rand, md *opt.Metadata, depth int) opt.ScalarExpr {
	if depth == 0 || rng.Intn(3) == 0 {
		switch rng.Intn(6) {
		case 0:
			return memo.TrueSingleton
		case 1:
			return memo.FalseSingleton
		default:
			return memo.NewVariable(md, opt.ColumnID(rng.Intn(numBoolCols)+1))
		}
	}
	switch rng.Intn(3) {
	case 0:
		return memo.NewAnd(randBoolExpr(rng, md, depth-1), randBoolExpr(rng, md, depth-1))
	case 1:
		return memo.NewOr(randBoolExpr(rng, md, depth-1), randBoolExpr(rng, md, depth-1))
	default:
		return memo.NewNot(randBoolExpr(rng, md, depth-1))
	}
}

func genPredicate(md *opt.Metadata) gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		return gopter.NewGenResult(randBoolExpr(genParams.Rng, md, 4), gopter.NoShrinker)
	}
}

func genAssignment() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		return gopter.NewGenResult(uint8(genParams.Rng.Intn(1<<numBoolCols)), gopter.NoShrinker)
	}
}

func TestExtractConjuncts(t *testing.T) {
	md := boolColumns()
	p1, p2, p3 := memo.NewVariable(md, 1), memo.NewVariable(md, 2), memo.NewVariable(md, 3)

	require.Empty(t, memo.ExtractConjuncts(nil))
	require.Equal(t, []opt.ScalarExpr{p1}, memo.ExtractConjuncts(p1))

	or := memo.NewOr(p1, p2)
	require.Equal(t, []opt.ScalarExpr{or}, memo.ExtractConjuncts(or))

	left := memo.NewAnd(memo.NewAnd(p1, p2), p3)
	require.Equal(t, []opt.ScalarExpr{p1, p2, p3}, memo.ExtractConjuncts(left))

	right := memo.NewAnd(p1, memo.NewAnd(p2, p3))
	require.Equal(t, []opt.ScalarExpr{p1, p2, p3}, memo.ExtractConjuncts(right))

	// ANDs below a non-AND node are not flattened.
	nested := memo.NewAnd(p1, memo.NewNot(memo.NewAnd(p2, p3)))
	require.Len(t, memo.ExtractConjuncts(nested), 2)
}

func TestCompoundAnd(t *testing.T) {
	md := boolColumns()
	p1, p2, p3 := memo.NewVariable(md, 1), memo.NewVariable(md, 2), memo.NewVariable(md, 3)

	require.Nil(t, memo.CompoundAnd(nil))
	require.Nil(t, memo.CompoundAnd([]opt.ScalarExpr{}))
	require.Nil(t, memo.CompoundAnd([]opt.ScalarExpr{nil}))

	// A single element is returned unchanged.
	require.Same(t, p1, memo.CompoundAnd([]opt.ScalarExpr{p1}))

	and := memo.CompoundAnd([]opt.ScalarExpr{p1, p2, p3})
	require.Equal(t, "p1 AND p2 AND p3", memo.FormatScalar(and, md))
	require.Equal(t, []opt.ScalarExpr{p1, p2, p3}, memo.ExtractConjuncts(and))

	require.Equal(t, "p1 AND p3", memo.FormatScalar(memo.CompoundAnd([]opt.ScalarExpr{p1, nil, p3}), md))
}

func TestDisjuncts(t *testing.T) {
	md := boolColumns()
	p1, p2, p3 := memo.NewVariable(md, 1), memo.NewVariable(md, 2), memo.NewVariable(md, 3)

	require.Empty(t, memo.ExtractDisjuncts(nil))
	require.Nil(t, memo.CompoundOr(nil))

	or := memo.CompoundOr([]opt.ScalarExpr{p1, p2, p3})
	require.Equal(t, "p1 OR p2 OR p3", memo.FormatScalar(or, md))
	require.Equal(t, []opt.ScalarExpr{p1, p2, p3}, memo.ExtractDisjuncts(or))

	// An AND is a single disjunct.
	and := memo.NewAnd(p1, p2)
	require.Equal(t, []opt.ScalarExpr{and}, memo.ExtractDisjuncts(and))
}

func TestExtractConstDatum(t *testing.T) {
	md := boolColumns()
	testCases := []struct {
		e        opt.ScalarExpr
		expected tree.Datum
	}{
		{e: memo.NewConst(tree.DNull), expected: tree.DNull},
		{e: memo.TrueSingleton, expected: tree.DBoolTrue},
		{e: memo.FalseSingleton, expected: tree.DBoolFalse},
		{e: memo.NewConst(tree.NewDInt(7)), expected: tree.NewDInt(7)},
		{e: memo.NewConst(tree.NewDString("x")), expected: tree.NewDString("x")},
	}
	for _, tc := range testCases {
		require.True(t, memo.CanExtractConstDatum(tc.e))
		require.Equal(t, tc.expected, memo.ExtractConstDatum(tc.e))
	}

	p1 := memo.NewVariable(md, 1)
	require.False(t, memo.CanExtractConstDatum(p1))
	require.False(t, memo.CanExtractConstDatum(memo.NewNot(memo.TrueSingleton)))
	require.Panics(t, func() { memo.ExtractConstDatum(p1) })
}

// TestConjunctRoundTrip checks that folding the extracted conjuncts of any
// predicate yields a predicate with the same truth table.
func TestConjunctRoundTrip(t *testing.T) {
	md := boolColumns()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(parameters)

	properties.Property("and-roundtrip", prop.ForAll(
		func(p opt.ScalarExpr, assignment uint8) string {
			folded := memo.CompoundAnd(memo.ExtractConjuncts(p))
			if evalBool(folded, assignment) != evalBool(p, assignment) {
				return fmt.Sprintf("%s != %s", memo.FormatScalar(folded, md), memo.FormatScalar(p, md))
			}
			return ""
		},
		genPredicate(md), genAssignment(),
	))

	properties.Property("or-roundtrip", prop.ForAll(
		func(p opt.ScalarExpr, assignment uint8) string {
			folded := memo.CompoundOr(memo.ExtractDisjuncts(p))
			if evalBool(folded, assignment) != evalBool(p, assignment) {
				return fmt.Sprintf("%s != %s", memo.FormatScalar(folded, md), memo.FormatScalar(p, md))
			}
			return ""
		},
		genPredicate(md), genAssignment(),
	))

	// Three conjuncts, for each way of nesting them.
	properties.Property("three-conjuncts", prop.ForAll(
		func(p1, p2, p3 opt.ScalarExpr, assignment uint8) string {
			for _, p := range []opt.ScalarExpr{
				memo.NewAnd(memo.NewAnd(p1, p2), p3),
				memo.NewAnd(p1, memo.NewAnd(p2, p3)),
				memo.CompoundAnd([]opt.ScalarExpr{p1, p2, p3}),
			} {
				folded := memo.CompoundAnd(memo.ExtractConjuncts(p))
				if evalBool(folded, assignment) != evalBool(p, assignment) {
					return "mismatch for " + memo.FormatScalar(p, md)
				}
			}
			return ""
		},
		genPredicate(md), genPredicate(md), genPredicate(md), genAssignment(),
	))

	properties.TestingRun(t)
}
