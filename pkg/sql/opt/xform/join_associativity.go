// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/pattern"
	"github.com/cockroachdb/errors"
)

// joinAssociativity rewrites a left-deep join into a right-deep one:
//
//	(A ⋈ B) ⋈ C  =>  A ⋈ (B ⋈ C)
//
// The conjuncts of both join conditions are pooled. Those that only read
// columns of B and C move to the new lower join and the rest stay on top.
// The rewrite is abandoned if either join would be left without a condition,
// so that it never introduces a cross join.
type joinAssociativity struct{}

var joinAssociativityPattern = pattern.Create(opt.JoinOp,
	pattern.Create(opt.JoinOp, pattern.Leaf(), pattern.Leaf()),
	pattern.Leaf(),
)

func (joinAssociativity) Name() RuleName { return JoinAssociativity }

func (joinAssociativity) Pattern() *pattern.Pattern { return joinAssociativityPattern }

// Check is part of the Rule interface.
func (joinAssociativity) Check(p *memo.Plan, sc *SearchContext) bool {
	top := p.Operator().(*memo.JoinOperator)
	leftPlan := p.Input(0)
	left := leftPlan.Operator().(*memo.JoinOperator)

	if top.Hint != "" || left.Hint != "" {
		return false
	}
	if left.HasLimit() {
		return false
	}
	if top.JoinType != memo.InnerJoin {
		return false
	}
	if !left.JoinType.IsInnerOrCross() {
		return false
	}

	// A computed column of the lower join that reads both A and B cannot be
	// computed on either side once A and B are split.
	if proj := left.Projection(); proj != nil {
		aCols := leftPlan.Input(0).OutputCols()
		bCols := leftPlan.Input(1).OutputCols()
		for _, item := range proj.Derived() {
			used := memo.OuterCols(item.Element)
			if used.Intersects(aCols) && used.Intersects(bCols) {
				return false
			}
		}
	}
	return true
}

// Transform is part of the Rule interface.
func (joinAssociativity) Transform(p *memo.Plan, sc *SearchContext) []*memo.Plan {
	top := p.Operator().(*memo.JoinOperator)
	leftPlan := p.Input(0)
	left := leftPlan.Operator().(*memo.JoinOperator)
	if !left.JoinType.IsInnerOrCross() {
		return nil
	}
	a, b, c := leftPlan.Input(0), leftPlan.Input(1), p.Input(1)

	// The post-filter of an inner or cross join is equivalent to a join
	// condition, so it is pooled as well.
	conjuncts := memo.ExtractConjuncts(top.On)
	conjuncts = append(conjuncts, memo.ExtractConjuncts(left.On)...)
	conjuncts = append(conjuncts, memo.ExtractConjuncts(left.Pred)...)

	newRightCols := b.OutputCols()
	newRightCols.UnionWith(c.OutputCols())

	// A conjunct without columns is a subset of any set, so it moves to the
	// lower join.
	var topConjuncts, rightConjuncts []opt.ScalarExpr
	for _, cond := range conjuncts {
		if memo.OuterCols(cond).SubsetOf(newRightCols) {
			rightConjuncts = append(rightConjuncts, cond)
		} else {
			topConjuncts = append(topConjuncts, cond)
		}
	}
	if len(topConjuncts) == 0 || len(rightConjuncts) == 0 {
		return nil
	}

	newTop := top.WithType(memo.InnerJoin).WithOn(memo.CompoundAnd(topConjuncts))

	// Split the computed columns of the lower join between the two sides.
	var leftItems, rightItems []memo.ProjectionItem
	if proj := left.Projection(); proj != nil {
		aCols := a.OutputCols()
		for _, item := range proj.Derived() {
			used := memo.OuterCols(item.Element)
			switch {
			case used.SubsetOf(newRightCols):
				rightItems = append(rightItems, item)
			case used.SubsetOf(aCols):
				leftItems = append(leftItems, item)
			default:
				panic(errors.AssertionFailedf(
					"column %d reads %s, which is neither in %s nor in %s",
					item.Col, used, aCols, newRightCols,
				))
			}
		}
	}

	// The new lower join only exposes the columns needed above it.
	required := p.OutputCols()
	required.UnionWith(newTop.RequiredInputCols())
	rightOutputCols := newRightCols.Intersection(required)
	newRightJoin := &memo.JoinOperator{JoinType: memo.InnerJoin, On: memo.CompoundAnd(rightConjuncts)}
	newRightJoin.Proj = memo.IdentityProjection(sc.Factory, rightOutputCols).Merge(rightItems...)
	newRight := memo.NewPlan(newRightJoin, b, c)

	newLeft := a
	if len(leftItems) > 0 {
		newLeft = a.WithOperator(a.Operator().WithProjection(extendProjection(sc, a, leftItems)))
	}

	res := memo.NewPlan(newTop, newLeft, newRight)
	if top.Projection() == nil && !res.OutputCols().Equals(p.OutputCols()) {
		res = res.WithOperator(newTop.WithProjection(memo.IdentityProjection(sc.Factory, p.OutputCols())))
	}
	return []*memo.Plan{res}
}

// extendProjection returns the projection of a extended with the given items,
// which read the output columns of a. If a already has a projection, the
// items are rewritten in terms of the columns that projection reads.
func extendProjection(sc *SearchContext, a *memo.Plan, items []memo.ProjectionItem) *memo.Projection {
	proj := a.Operator().Projection()
	if proj == nil {
		return memo.IdentityProjection(sc.Factory, a.OutputCols()).Merge(items...)
	}
	inlined := make([]memo.ProjectionItem, len(items))
	for i, item := range items {
		inlined[i] = memo.ProjectionItem{
			Col: item.Col,
			Element: memo.ReplaceColumns(item.Element, func(col opt.ColumnID) (opt.ScalarExpr, bool) {
				return proj.Get(col)
			}),
		}
	}
	return proj.Merge(inlined...)
}
