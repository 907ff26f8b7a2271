// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import "github.com/cockroachdb/cascades/pkg/sql/types"

// Expr is a node in a scalar expression tree. Expression trees are read-only
// once constructed; rewrites build new trees and may share unchanged
// subtrees with the original.
type Expr interface {
	// Op returns the operator type of the expression.
	Op() Operator

	// ChildCount returns the number of children of the expression.
	ChildCount() int

	// Child returns the nth child of the expression.
	Child(nth int) Expr
}

// ScalarExpr is an Expr that computes a single value.
type ScalarExpr interface {
	Expr

	// DataType is the SQL type of the expression.
	DataType() *types.T
}
