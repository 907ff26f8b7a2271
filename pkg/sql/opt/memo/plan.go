// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/errors"
)

// Plan is a node of a logical plan tree: a relational operator plus its
// ordered inputs. Plans are immutable. A rewrite builds new nodes, which may
// share unchanged subtrees with the original, and the original stays valid.
type Plan struct {
	op     RelOperator
	inputs []*Plan

	// outputCols is derived from op and the inputs at construction.
	outputCols opt.ColSet
}

// NewPlan constructs a plan node. The number of inputs must match the
// operator's arity.
func NewPlan(op RelOperator, inputs ...*Plan) *Plan {
	if op == nil {
		panic(errors.AssertionFailedf("plan node requires an operator"))
	}
	if len(inputs) != op.Arity() {
		panic(errors.AssertionFailedf(
			"%s expects %d inputs, got %d", op.Op(), op.Arity(), len(inputs),
		))
	}
	p := &Plan{op: op}
	var inputCols []opt.ColSet
	if len(inputs) > 0 {
		p.inputs = make([]*Plan, len(inputs))
		copy(p.inputs, inputs)
		inputCols = make([]opt.ColSet, len(inputs))
		for i, in := range inputs {
			if in == nil {
				panic(errors.AssertionFailedf("%s input %d is nil", op.Op(), i))
			}
			inputCols[i] = in.outputCols
		}
	}
	p.outputCols = op.OutputCols(inputCols)
	return p
}

// Operator returns the node's relational operator.
func (p *Plan) Operator() RelOperator {
	return p.op
}

// Op returns the node's operator tag.
func (p *Plan) Op() opt.Operator {
	return p.op.Op()
}

// ChildCount returns the number of inputs.
func (p *Plan) ChildCount() int {
	return len(p.inputs)
}

// Input returns the nth input.
func (p *Plan) Input(nth int) *Plan {
	return p.inputs[nth]
}

// Inputs returns the inputs in order. The returned slice may be modified by
// the caller.
func (p *Plan) Inputs() []*Plan {
	res := make([]*Plan, len(p.inputs))
	copy(res, p.inputs)
	return res
}

// OutputCols returns the columns produced by the node.
func (p *Plan) OutputCols() opt.ColSet {
	return p.outputCols.Copy()
}

// WithOperator returns a node with the given operator and the same inputs.
func (p *Plan) WithOperator(op RelOperator) *Plan {
	return NewPlan(op, p.inputs...)
}

// WithInputs returns a node with the same operator and the given inputs.
func (p *Plan) WithInputs(inputs ...*Plan) *Plan {
	return NewPlan(p.op, inputs...)
}
