// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "github.com/cockroachdb/cascades/pkg/sql/opt"

// NoLimit is the RowLimit of an operator that returns all of its rows.
const NoLimit int64 = 0

// RelOperator is the logical operator of a plan node. The set of
// implementations is closed (see the unexported method); consumers switch on
// the concrete type.
//
// Every operator can carry three optional properties besides its own fields:
// a row limit, a post-filter predicate evaluated on the operator's
// unprojected output, and an output projection. When the projection is
// present, it alone determines the visible output columns.
//
// Operators are immutable once placed in a plan. The With* methods return
// modified copies.
type RelOperator interface {
	// Op returns the operator tag.
	Op() opt.Operator

	// Arity returns the number of inputs the operator consumes.
	Arity() int

	// Limit returns the row limit, or NoLimit.
	Limit() int64

	// HasLimit returns true if the operator carries a row limit.
	HasLimit() bool

	// Predicate returns the post-filter predicate, or nil.
	Predicate() opt.ScalarExpr

	// Projection returns the output projection, or nil.
	Projection() *Projection

	// RequiredInputCols returns the columns that the operator reads from its
	// inputs (or, for a scan, from its table).
	RequiredInputCols() opt.ColSet

	// OutputCols returns the visible output columns given the output columns
	// of the inputs, in order.
	OutputCols(inputs []opt.ColSet) opt.ColSet

	// WithProjection returns a copy of the operator with the given projection.
	WithProjection(p *Projection) RelOperator

	// rawOutputCols returns the output columns before projection.
	rawOutputCols(inputs []opt.ColSet) opt.ColSet
}

// OperatorBase holds the properties shared by all relational operators.
type OperatorBase struct {
	// RowLimit is the maximum number of rows to return, or NoLimit.
	RowLimit int64
	// Pred filters the operator's output before projection.
	Pred opt.ScalarExpr
	// Proj, if set, computes the operator's visible output columns.
	Proj *Projection
}

// Limit is part of the RelOperator interface.
func (b *OperatorBase) Limit() int64 { return b.RowLimit }

// HasLimit is part of the RelOperator interface.
func (b *OperatorBase) HasLimit() bool { return b.RowLimit != NoLimit }

// Predicate is part of the RelOperator interface.
func (b *OperatorBase) Predicate() opt.ScalarExpr { return b.Pred }

// Projection is part of the RelOperator interface.
func (b *OperatorBase) Projection() *Projection { return b.Proj }

// ownCols returns the columns read by the predicate and the projection.
func (b *OperatorBase) ownCols() opt.ColSet {
	cols := OuterCols(b.Pred)
	if b.Proj != nil {
		cols.UnionWith(b.Proj.OuterCols())
	}
	return cols
}

func (b *OperatorBase) outputCols(op RelOperator, inputs []opt.ColSet) opt.ColSet {
	if b.Proj != nil {
		return b.Proj.Cols()
	}
	return op.rawOutputCols(inputs)
}

// JoinType distinguishes the kinds of joins.
type JoinType uint8

const (
	InnerJoin JoinType = iota
	CrossJoin
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	SemiJoin
	AntiJoin
)

var joinTypeNames = [...]string{
	InnerJoin:      "inner",
	CrossJoin:      "cross",
	LeftOuterJoin:  "left",
	RightOuterJoin: "right",
	FullOuterJoin:  "full",
	SemiJoin:       "semi",
	AntiJoin:       "anti",
}

func (t JoinType) String() string {
	if int(t) >= len(joinTypeNames) {
		return "unknown"
	}
	return joinTypeNames[t]
}

// SafeValue implements the redact.SafeValue interface.
func (JoinType) SafeValue() {}

// JoinTypeByName returns the join type with the given name.
func JoinTypeByName(name string) (JoinType, bool) {
	for i, n := range joinTypeNames {
		if n == name {
			return JoinType(i), true
		}
	}
	return 0, false
}

// IsInnerOrCross returns true for the join types that are associative and
// commutative without restriction.
func (t JoinType) IsInnerOrCross() bool {
	return t == InnerJoin || t == CrossJoin
}

// ScanOperator reads columns of a base table.
type ScanOperator struct {
	OperatorBase
	Table opt.TableID
	Cols  opt.ColSet
}

// ValuesOperator produces a constant set of rows.
type ValuesOperator struct {
	OperatorBase
	Cols opt.ColList
	Rows [][]opt.ScalarExpr
}

// SelectOperator filters its input with the predicate in OperatorBase.
type SelectOperator struct {
	OperatorBase
}

// ProjectOperator computes its output with the projection in OperatorBase.
type ProjectOperator struct {
	OperatorBase
}

// JoinOperator combines the rows of its two inputs.
type JoinOperator struct {
	OperatorBase
	JoinType JoinType
	// On is the join condition. Nil means no condition.
	On opt.ScalarExpr
	// Hint pins the join's physical shape. Empty means no hint.
	Hint string
}

// LimitOperator returns Count rows of its input after skipping Offset rows.
type LimitOperator struct {
	OperatorBase
	Count  int64
	Offset int64
}

// GroupByOperator groups the rows of its input by GroupingCols and computes
// the aggregations for each group.
type GroupByOperator struct {
	OperatorBase
	GroupingCols opt.ColSet
	Aggregations *Projection
}

var (
	_ RelOperator = &ScanOperator{}
	_ RelOperator = &ValuesOperator{}
	_ RelOperator = &SelectOperator{}
	_ RelOperator = &ProjectOperator{}
	_ RelOperator = &JoinOperator{}
	_ RelOperator = &LimitOperator{}
	_ RelOperator = &GroupByOperator{}
)

func (op *ScanOperator) Op() opt.Operator { return opt.ScanOp }
func (op *ScanOperator) Arity() int       { return 0 }

// RequiredInputCols is part of the RelOperator interface.
func (op *ScanOperator) RequiredInputCols() opt.ColSet { return op.Cols.Copy() }

// OutputCols is part of the RelOperator interface.
func (op *ScanOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *ScanOperator) rawOutputCols([]opt.ColSet) opt.ColSet { return op.Cols.Copy() }

// WithProjection is part of the RelOperator interface.
func (op *ScanOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

func (op *ValuesOperator) Op() opt.Operator { return opt.ValuesOp }
func (op *ValuesOperator) Arity() int       { return 0 }

// RequiredInputCols is part of the RelOperator interface.
func (op *ValuesOperator) RequiredInputCols() opt.ColSet { return opt.ColSet{} }

// OutputCols is part of the RelOperator interface.
func (op *ValuesOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *ValuesOperator) rawOutputCols([]opt.ColSet) opt.ColSet { return op.Cols.ToSet() }

// WithProjection is part of the RelOperator interface.
func (op *ValuesOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

func (op *SelectOperator) Op() opt.Operator { return opt.SelectOp }
func (op *SelectOperator) Arity() int       { return 1 }

// RequiredInputCols is part of the RelOperator interface.
func (op *SelectOperator) RequiredInputCols() opt.ColSet { return op.ownCols() }

// OutputCols is part of the RelOperator interface.
func (op *SelectOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *SelectOperator) rawOutputCols(inputs []opt.ColSet) opt.ColSet { return inputs[0].Copy() }

// WithProjection is part of the RelOperator interface.
func (op *SelectOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

func (op *ProjectOperator) Op() opt.Operator { return opt.ProjectOp }
func (op *ProjectOperator) Arity() int       { return 1 }

// RequiredInputCols is part of the RelOperator interface.
func (op *ProjectOperator) RequiredInputCols() opt.ColSet { return op.ownCols() }

// OutputCols is part of the RelOperator interface.
func (op *ProjectOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *ProjectOperator) rawOutputCols(inputs []opt.ColSet) opt.ColSet { return inputs[0].Copy() }

// WithProjection is part of the RelOperator interface.
func (op *ProjectOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

func (op *JoinOperator) Op() opt.Operator { return opt.JoinOp }
func (op *JoinOperator) Arity() int       { return 2 }

// RequiredInputCols is part of the RelOperator interface. It includes the
// columns of the join condition.
func (op *JoinOperator) RequiredInputCols() opt.ColSet {
	cols := op.ownCols()
	cols.UnionWith(OuterCols(op.On))
	return cols
}

// OutputCols is part of the RelOperator interface.
func (op *JoinOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *JoinOperator) rawOutputCols(inputs []opt.ColSet) opt.ColSet {
	switch op.JoinType {
	case SemiJoin, AntiJoin:
		return inputs[0].Copy()
	}
	return inputs[0].Union(inputs[1])
}

// WithProjection is part of the RelOperator interface.
func (op *JoinOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

// WithOn returns a copy of the join with the given join condition.
func (op *JoinOperator) WithOn(on opt.ScalarExpr) *JoinOperator {
	res := *op
	res.On = on
	return &res
}

// WithType returns a copy of the join with the given join type.
func (op *JoinOperator) WithType(t JoinType) *JoinOperator {
	res := *op
	res.JoinType = t
	return &res
}

func (op *LimitOperator) Op() opt.Operator { return opt.LimitOp }
func (op *LimitOperator) Arity() int       { return 1 }

// RequiredInputCols is part of the RelOperator interface.
func (op *LimitOperator) RequiredInputCols() opt.ColSet { return op.ownCols() }

// OutputCols is part of the RelOperator interface.
func (op *LimitOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *LimitOperator) rawOutputCols(inputs []opt.ColSet) opt.ColSet { return inputs[0].Copy() }

// WithProjection is part of the RelOperator interface.
func (op *LimitOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

func (op *GroupByOperator) Op() opt.Operator { return opt.GroupByOp }
func (op *GroupByOperator) Arity() int       { return 1 }

// RequiredInputCols is part of the RelOperator interface. The predicate and
// projection may read aggregate outputs, which are not input columns.
func (op *GroupByOperator) RequiredInputCols() opt.ColSet {
	cols := op.GroupingCols.Copy()
	if op.Aggregations != nil {
		cols.UnionWith(op.Aggregations.OuterCols())
		cols.UnionWith(op.ownCols().Difference(op.Aggregations.Cols()))
	} else {
		cols.UnionWith(op.ownCols())
	}
	return cols
}

// OutputCols is part of the RelOperator interface.
func (op *GroupByOperator) OutputCols(inputs []opt.ColSet) opt.ColSet {
	return op.outputCols(op, inputs)
}

func (op *GroupByOperator) rawOutputCols([]opt.ColSet) opt.ColSet {
	cols := op.GroupingCols.Copy()
	if op.Aggregations != nil {
		cols.UnionWith(op.Aggregations.Cols())
	}
	return cols
}

// WithProjection is part of the RelOperator interface.
func (op *GroupByOperator) WithProjection(p *Projection) RelOperator {
	res := *op
	res.Proj = p
	return &res
}

// OperatorName returns the display name of the operator, which for joins
// includes the join type (e.g. "inner-join").
func OperatorName(op RelOperator) string {
	if j, ok := op.(*JoinOperator); ok {
		return j.JoinType.String() + "-join"
	}
	return op.Op().String()
}
