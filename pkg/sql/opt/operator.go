// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"fmt"

	"github.com/cockroachdb/redact"
)

// Operator describes the type of operation that a plan node or scalar
// expression performs. The set of operators is closed; every consumer that
// switches on an Operator is expected to handle all of the operators of the
// relevant class.
type Operator uint16

const (
	UnknownOp Operator = iota

	// -- Relational operators --

	// ScanOp reads a subset of a base table's columns.
	ScanOp
	// ValuesOp produces constant rows.
	ValuesOp
	// SelectOp filters the rows of its input.
	SelectOp
	// ProjectOp computes new columns from its input. Its projection is its
	// reason to exist, unlike other operators where it is optional.
	ProjectOp
	// JoinOp combines two inputs. The JoinType distinguishes inner, cross,
	// outer, semi and anti joins.
	JoinOp
	// LimitOp restricts the number of rows of its input.
	LimitOp
	// GroupByOp groups rows and computes aggregates.
	GroupByOp

	// -- Scalar operators --

	VariableOp
	ConstOp
	NullOp
	TrueOp
	FalseOp
	AndOp
	OrOp
	NotOp
	EqOp
	NeOp
	LtOp
	LeOp
	GtOp
	GeOp
	IsNullOp
	PlusOp
	MinusOp
	MultOp
	DivOp
	FunctionOp

	// -- Pattern operators --

	// PatternLeafOp matches any single subtree.
	PatternLeafOp
	// PatternMultiLeafOp matches any sequence of zero or more subtrees.
	PatternMultiLeafOp

	// NumOperators tracks the total count of operators. This should be last.
	NumOperators
)

type operatorClass uint8

const (
	relationalClass operatorClass = iota + 1
	scalarClass
	patternClass
)

type operatorFlags uint8

const (
	comparisonFlag operatorFlags = 1 << iota
	binaryFlag
	constValueFlag
	booleanFlag
)

type operatorInfo struct {
	name  string
	class operatorClass
	flags operatorFlags
}

var operatorTab = [NumOperators]operatorInfo{
	UnknownOp: {name: "unknown"},

	ScanOp:    {name: "scan", class: relationalClass},
	ValuesOp:  {name: "values", class: relationalClass},
	SelectOp:  {name: "select", class: relationalClass},
	ProjectOp: {name: "project", class: relationalClass},
	JoinOp:    {name: "join", class: relationalClass},
	LimitOp:   {name: "limit", class: relationalClass},
	GroupByOp: {name: "group-by", class: relationalClass},

	VariableOp: {name: "variable", class: scalarClass},
	ConstOp:    {name: "const", class: scalarClass, flags: constValueFlag},
	NullOp:     {name: "null", class: scalarClass, flags: constValueFlag},
	TrueOp:     {name: "true", class: scalarClass, flags: constValueFlag | booleanFlag},
	FalseOp:    {name: "false", class: scalarClass, flags: constValueFlag | booleanFlag},
	AndOp:      {name: "and", class: scalarClass, flags: binaryFlag | booleanFlag},
	OrOp:       {name: "or", class: scalarClass, flags: binaryFlag | booleanFlag},
	NotOp:      {name: "not", class: scalarClass, flags: booleanFlag},
	EqOp:       {name: "eq", class: scalarClass, flags: comparisonFlag | binaryFlag | booleanFlag},
	NeOp:       {name: "ne", class: scalarClass, flags: comparisonFlag | binaryFlag | booleanFlag},
	LtOp:       {name: "lt", class: scalarClass, flags: comparisonFlag | binaryFlag | booleanFlag},
	LeOp:       {name: "le", class: scalarClass, flags: comparisonFlag | binaryFlag | booleanFlag},
	GtOp:       {name: "gt", class: scalarClass, flags: comparisonFlag | binaryFlag | booleanFlag},
	GeOp:       {name: "ge", class: scalarClass, flags: comparisonFlag | binaryFlag | booleanFlag},
	IsNullOp:   {name: "is-null", class: scalarClass, flags: booleanFlag},
	PlusOp:     {name: "plus", class: scalarClass, flags: binaryFlag},
	MinusOp:    {name: "minus", class: scalarClass, flags: binaryFlag},
	MultOp:     {name: "mult", class: scalarClass, flags: binaryFlag},
	DivOp:      {name: "div", class: scalarClass, flags: binaryFlag},
	FunctionOp: {name: "function", class: scalarClass},

	PatternLeafOp:      {name: "pattern-leaf", class: patternClass},
	PatternMultiLeafOp: {name: "pattern-multi-leaf", class: patternClass},
}

func (op Operator) String() string {
	if op >= NumOperators {
		return fmt.Sprintf("Operator(%d)", op)
	}
	return operatorTab[op].name
}

// SafeValue implements redact.SafeValue.
func (Operator) SafeValue() {}

var _ redact.SafeValue = Operator(0)

// OperatorByName returns the operator with the given name, as rendered by
// String.
func OperatorByName(name string) (Operator, bool) {
	for op := range operatorTab {
		if operatorTab[op].name == name {
			return Operator(op), true
		}
	}
	return UnknownOp, false
}

// IsRelationalOp returns true if the operator produces rows.
func IsRelationalOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].class == relationalClass
}

// IsScalarOp returns true if the operator computes a single value.
func IsScalarOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].class == scalarClass
}

// IsPatternOp returns true if the operator is a pattern wildcard.
func IsPatternOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].class == patternClass
}

// IsComparisonOp returns true for the binary comparison operators (Eq, Ne,
// Lt, Le, Gt, Ge).
func IsComparisonOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].flags&comparisonFlag != 0
}

// IsBinaryOp returns true for scalar operators with exactly two operands.
func IsBinaryOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].flags&binaryFlag != 0
}

// IsConstValueOp returns true for operators that evaluate to a constant.
func IsConstValueOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].flags&constValueFlag != 0
}

// IsBooleanOp returns true for scalar operators that always produce a bool.
func IsBooleanOp(op Operator) bool {
	return op < NumOperators && operatorTab[op].flags&booleanFlag != 0
}
