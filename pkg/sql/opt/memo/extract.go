// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/sem/tree"
	"github.com/cockroachdb/errors"
)

// This file contains various helper functions that extract useful information
// from expressions.

// ExtractConjuncts splits a predicate into its AND-connected clauses, in
// left-to-right order. A predicate whose root is not an AND yields a single
// element, and a nil predicate yields an empty list.
func ExtractConjuncts(e opt.ScalarExpr) []opt.ScalarExpr {
	if e == nil {
		return nil
	}
	return appendConjuncts(nil, e)
}

func appendConjuncts(list []opt.ScalarExpr, e opt.ScalarExpr) []opt.ScalarExpr {
	if and, ok := e.(*AndExpr); ok {
		list = appendConjuncts(list, and.Left)
		return appendConjuncts(list, and.Right)
	}
	return append(list, e)
}

// CompoundAnd folds a list of conjuncts into a single predicate. An empty
// list yields nil, which means "no predicate" and is logically true. A list
// with one element returns that element unchanged. Longer lists produce a
// balanced AND tree. Nil entries are skipped.
func CompoundAnd(conjuncts []opt.ScalarExpr) opt.ScalarExpr {
	return compound(conjuncts, func(l, r opt.ScalarExpr) opt.ScalarExpr { return NewAnd(l, r) })
}

// ExtractDisjuncts splits a predicate into its OR-connected clauses. It
// follows the same conventions as ExtractConjuncts.
func ExtractDisjuncts(e opt.ScalarExpr) []opt.ScalarExpr {
	if e == nil {
		return nil
	}
	return appendDisjuncts(nil, e)
}

func appendDisjuncts(list []opt.ScalarExpr, e opt.ScalarExpr) []opt.ScalarExpr {
	if or, ok := e.(*OrExpr); ok {
		list = appendDisjuncts(list, or.Left)
		return appendDisjuncts(list, or.Right)
	}
	return append(list, e)
}

// CompoundOr folds a list of disjuncts into a single predicate. An empty list
// yields nil.
func CompoundOr(disjuncts []opt.ScalarExpr) opt.ScalarExpr {
	return compound(disjuncts, func(l, r opt.ScalarExpr) opt.ScalarExpr { return NewOr(l, r) })
}

func compound(list []opt.ScalarExpr, combine func(l, r opt.ScalarExpr) opt.ScalarExpr) opt.ScalarExpr {
	nonNil := list[:0:0]
	for _, e := range list {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	var build func(items []opt.ScalarExpr) opt.ScalarExpr
	build = func(items []opt.ScalarExpr) opt.ScalarExpr {
		switch len(items) {
		case 0:
			return nil
		case 1:
			return items[0]
		}
		mid := len(items) / 2
		return combine(build(items[:mid]), build(items[mid:]))
	}
	return build(nonNil)
}

// CanExtractConstDatum returns true if a constant datum can be created from
// the given expression.
func CanExtractConstDatum(e opt.Expr) bool {
	return opt.IsConstValueOp(e.Op())
}

// ExtractConstDatum returns the Datum that represents the value of an
// expression with a constant value.
func ExtractConstDatum(e opt.Expr) tree.Datum {
	switch t := e.(type) {
	case *NullExpr:
		return tree.DNull

	case *TrueExpr:
		return tree.DBoolTrue

	case *FalseExpr:
		return tree.DBoolFalse

	case *ConstExpr:
		return t.Value
	}
	panic(errors.AssertionFailedf("non-const expression: %+v", e))
}
