// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/pattern"
)

// joinCommutativity swaps the inputs of a join:
//
//	A ⋈ B  =>  B ⋈ A
//
// Left and right outer joins swap their type. Semi and anti joins only
// return the columns of their left input and are not commutative.
type joinCommutativity struct{}

var joinCommutativityPattern = pattern.Create(opt.JoinOp, pattern.Leaf(), pattern.Leaf())

var commutedJoinTypes = map[memo.JoinType]memo.JoinType{
	memo.InnerJoin:      memo.InnerJoin,
	memo.CrossJoin:      memo.CrossJoin,
	memo.LeftOuterJoin:  memo.RightOuterJoin,
	memo.RightOuterJoin: memo.LeftOuterJoin,
	memo.FullOuterJoin:  memo.FullOuterJoin,
}

func (joinCommutativity) Name() RuleName { return JoinCommutativity }

func (joinCommutativity) Pattern() *pattern.Pattern { return joinCommutativityPattern }

// Check is part of the Rule interface.
func (joinCommutativity) Check(p *memo.Plan, sc *SearchContext) bool {
	join := p.Operator().(*memo.JoinOperator)
	if join.Hint != "" {
		return false
	}
	_, ok := commutedJoinTypes[join.JoinType]
	return ok
}

// Transform is part of the Rule interface.
func (joinCommutativity) Transform(p *memo.Plan, sc *SearchContext) []*memo.Plan {
	join := p.Operator().(*memo.JoinOperator)
	newType, ok := commutedJoinTypes[join.JoinType]
	if !ok {
		return nil
	}
	return []*memo.Plan{memo.NewPlan(join.WithType(newType), p.Input(1), p.Input(0))}
}
