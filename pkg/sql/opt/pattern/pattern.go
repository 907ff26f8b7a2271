// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pattern describes the shapes of plan trees that exploration rules
// apply to. A pattern is a tree of operator tags. Matching is purely
// structural: it never looks at predicates, projections or any other operator
// field, so it is a cheap filter to run before a rule's semantic check.
//
// Two wildcards are available. Leaf matches any single subtree without
// looking at its inputs. MultiLeaf, which may only appear as the last child of
// a pattern, matches any sequence of zero or more remaining inputs. For
// example, join associativity applies to a join whose left input is also a
// join:
//
//	pattern.Create(opt.JoinOp,
//	  pattern.Create(opt.JoinOp, pattern.Leaf(), pattern.Leaf()),
//	  pattern.Leaf(),
//	)
package pattern

import (
	"strings"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/errors"
)

// Pattern is a node of a pattern tree. Patterns are immutable and may be
// shared between concurrent searches.
type Pattern struct {
	op       opt.Operator
	children []*Pattern
}

var (
	leaf      = &Pattern{op: opt.PatternLeafOp}
	multiLeaf = &Pattern{op: opt.PatternMultiLeafOp}
)

// Leaf returns the wildcard that matches any single subtree.
func Leaf() *Pattern { return leaf }

// MultiLeaf returns the wildcard that matches zero or more trailing inputs.
func MultiLeaf() *Pattern { return multiLeaf }

// Create returns a pattern that matches nodes with the given relational
// operator whose inputs match the given children.
func Create(op opt.Operator, children ...*Pattern) *Pattern {
	if !opt.IsRelationalOp(op) {
		panic(errors.AssertionFailedf("pattern operator %s is not relational", op))
	}
	for i, c := range children {
		if c.op == opt.PatternMultiLeafOp && i != len(children)-1 {
			panic(errors.AssertionFailedf("multi-leaf must be the last child of a pattern"))
		}
	}
	p := &Pattern{op: op}
	if len(children) > 0 {
		p.children = make([]*Pattern, len(children))
		copy(p.children, children)
	}
	return p
}

// Op returns the pattern's operator tag.
func (p *Pattern) Op() opt.Operator { return p.op }

// ChildCount returns the number of child patterns.
func (p *Pattern) ChildCount() int { return len(p.children) }

// Child returns the nth child pattern.
func (p *Pattern) Child(nth int) *Pattern { return p.children[nth] }

// IsLeaf returns true if the pattern is the single-subtree wildcard.
func (p *Pattern) IsLeaf() bool { return p.op == opt.PatternLeafOp }

// IsMultiLeaf returns true if the pattern is the multi-subtree wildcard.
func (p *Pattern) IsMultiLeaf() bool { return p.op == opt.PatternMultiLeafOp }

// Matches returns true if the plan has the pattern's shape.
func (p *Pattern) Matches(plan *memo.Plan) bool {
	if p.IsLeaf() || p.IsMultiLeaf() {
		return true
	}
	if plan.Op() != p.op {
		return false
	}

	children := p.children
	trailingMulti := len(children) > 0 && children[len(children)-1].IsMultiLeaf()
	if trailingMulti {
		children = children[:len(children)-1]
		if plan.ChildCount() < len(children) {
			return false
		}
	} else if plan.ChildCount() != len(children) {
		return false
	}

	for i, c := range children {
		if !c.Matches(plan.Input(i)) {
			return false
		}
	}
	return true
}

// String renders the pattern, for example "(join (join * *) *)". Leaf is
// shown as "*" and MultiLeaf as "...".
func (p *Pattern) String() string {
	var buf strings.Builder
	p.format(&buf)
	return buf.String()
}

func (p *Pattern) format(buf *strings.Builder) {
	switch {
	case p.IsLeaf():
		buf.WriteByte('*')
		return
	case p.IsMultiLeaf():
		buf.WriteString("...")
		return
	}
	if len(p.children) == 0 {
		buf.WriteString(p.op.String())
		return
	}
	buf.WriteByte('(')
	buf.WriteString(p.op.String())
	for _, c := range p.children {
		buf.WriteByte(' ')
		c.format(buf)
	}
	buf.WriteByte(')')
}
