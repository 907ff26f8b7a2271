// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/errors"
)

// VerifyPlan does sanity checking on a plan tree. It panics with an assertion
// failure if any node reads a column that its inputs do not produce.
//
// Callers run it on rewritten plans when buildutil.Invariants is set, which
// keeps the cost out of regular builds.
func VerifyPlan(p *Plan) {
	for i := 0; i < p.ChildCount(); i++ {
		VerifyPlan(p.Input(i))
	}

	op := p.Operator()
	inputCols := make([]opt.ColSet, p.ChildCount())
	var allInputCols opt.ColSet
	for i := range inputCols {
		inputCols[i] = p.Input(i).OutputCols()
		allInputCols.UnionWith(inputCols[i])
	}
	raw := op.rawOutputCols(inputCols)

	switch t := op.(type) {
	case *JoinOperator:
		checkBound("join condition", t.On, allInputCols)
		if t.JoinType == CrossJoin && t.On != nil {
			panic(errors.AssertionFailedf("cross join has a join condition"))
		}

	case *SelectOperator:
		if t.Pred == nil {
			panic(errors.AssertionFailedf("select has no filter"))
		}

	case *ProjectOperator:
		if t.Proj == nil {
			panic(errors.AssertionFailedf("project has no projection"))
		}

	case *GroupByOperator:
		if !t.GroupingCols.SubsetOf(allInputCols) {
			panic(errors.AssertionFailedf(
				"grouping columns %s not produced by input %s", t.GroupingCols, allInputCols,
			))
		}
		if t.Aggregations != nil {
			for i := 0; i < t.Aggregations.Len(); i++ {
				checkBound("aggregation", t.Aggregations.Item(i).Element, allInputCols)
			}
		}

	case *ValuesOperator:
		for i, row := range t.Rows {
			if len(row) != len(t.Cols) {
				panic(errors.AssertionFailedf(
					"values row %d has %d elements, expected %d", i, len(row), len(t.Cols),
				))
			}
		}

	case *LimitOperator:
		if t.Count < 0 || t.Offset < 0 {
			panic(errors.AssertionFailedf("negative limit or offset"))
		}
	}

	if op.HasLimit() && op.Limit() < 0 {
		panic(errors.AssertionFailedf("negative row limit %d", op.Limit()))
	}
	checkBound("predicate", op.Predicate(), raw)
	if proj := op.Projection(); proj != nil {
		for i := 0; i < proj.Len(); i++ {
			checkBound("projection", proj.Item(i).Element, raw)
		}
	}
}

func checkBound(what string, e opt.ScalarExpr, available opt.ColSet) {
	if e == nil {
		return
	}
	if cols := OuterCols(e); !cols.SubsetOf(available) {
		panic(errors.AssertionFailedf(
			"%s references columns %s not produced by its inputs %s",
			errors.Safe(what), cols.Difference(available), available,
		))
	}
}
