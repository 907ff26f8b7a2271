// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pattern_test

import (
	"testing"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/pattern"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	md := opt.NewMetadata()
	scan := func(name string) *memo.Plan {
		tab := md.AddTable(name, []opt.TableColumn{{Name: name + "1", Type: types.Int}})
		return memo.NewPlan(&memo.ScanOperator{Table: tab, Cols: md.TableMeta(tab).ColumnIDs()})
	}
	a, b, c := scan("a"), scan("b"), scan("c")
	join := func(l, r *memo.Plan) *memo.Plan {
		return memo.NewPlan(&memo.JoinOperator{JoinType: memo.InnerJoin}, l, r)
	}
	leftDeep := join(join(a, b), c)
	rightDeep := join(a, join(b, c))
	limit := memo.NewPlan(&memo.LimitOperator{Count: 1}, leftDeep)

	assoc := pattern.Create(opt.JoinOp,
		pattern.Create(opt.JoinOp, pattern.Leaf(), pattern.Leaf()),
		pattern.Leaf(),
	)
	multi := pattern.Create(opt.JoinOp,
		pattern.Create(opt.JoinOp, pattern.MultiLeaf()),
		pattern.Leaf(),
	)
	prefix := pattern.Create(opt.JoinOp, pattern.Create(opt.JoinOp), pattern.MultiLeaf())
	scanOnly := pattern.Create(opt.ScanOp)

	testCases := []struct {
		name     string
		pattern  *pattern.Pattern
		plan     *memo.Plan
		expected bool
	}{
		{name: "leaf-matches-anything", pattern: pattern.Leaf(), plan: leftDeep, expected: true},
		{name: "multi-leaf-matches-anything", pattern: pattern.MultiLeaf(), plan: a, expected: true},
		{name: "assoc-left-deep", pattern: assoc, plan: leftDeep, expected: true},
		{name: "assoc-right-deep", pattern: assoc, plan: rightDeep, expected: false},
		{name: "assoc-scan", pattern: assoc, plan: a, expected: false},
		{name: "assoc-two-scans", pattern: assoc, plan: join(a, b), expected: false},
		{name: "assoc-limit", pattern: assoc, plan: limit, expected: false},
		{name: "multi-left-deep", pattern: multi, plan: leftDeep, expected: true},
		{name: "multi-right-deep", pattern: multi, plan: rightDeep, expected: false},
		// The child before the multi-leaf is still matched, and it expects a join
		// with no inputs.
		{name: "prefix-left-deep", pattern: prefix, plan: leftDeep, expected: false},
		{name: "scan", pattern: scanOnly, plan: a, expected: true},
		{name: "scan-join", pattern: scanOnly, plan: leftDeep, expected: false},
		{name: "join-no-children", pattern: pattern.Create(opt.JoinOp), plan: leftDeep, expected: false},
		{
			name:     "join-multi-only",
			pattern:  pattern.Create(opt.JoinOp, pattern.MultiLeaf()),
			plan:     leftDeep,
			expected: true,
		},
		{
			name:     "limit-join",
			pattern:  pattern.Create(opt.LimitOp, assoc),
			plan:     limit,
			expected: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.pattern.Matches(tc.plan))
		})
	}
}

func TestCreate(t *testing.T) {
	require.Panics(t, func() { pattern.Create(opt.EqOp) })
	require.Panics(t, func() { pattern.Create(opt.JoinOp, pattern.MultiLeaf(), pattern.Leaf()) })

	children := []*pattern.Pattern{pattern.Leaf(), pattern.Leaf()}
	p := pattern.Create(opt.JoinOp, children...)
	children[0] = pattern.MultiLeaf()
	require.True(t, p.Child(0).IsLeaf())
	require.Equal(t, 2, p.ChildCount())
	require.Equal(t, opt.JoinOp, p.Op())
}

func TestString(t *testing.T) {
	p := pattern.Create(opt.JoinOp,
		pattern.Create(opt.JoinOp, pattern.Leaf(), pattern.MultiLeaf()),
		pattern.Create(opt.ScanOp),
	)
	require.Equal(t, "(join (join * ...) scan)", p.String())
	require.Equal(t, "*", pattern.Leaf().String())
}
