// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package types describes the data types of columns and scalar expressions.
// Only the type family is modeled; precision, width and collation are not
// needed to reason about plan shapes.
package types

import "github.com/cockroachdb/redact"

// Family groups types with the same physical representation.
type Family int32

const (
	UnknownFamily Family = iota
	BoolFamily
	IntFamily
	FloatFamily
	DecimalFamily
	StringFamily
)

var familyNames = [...]string{
	UnknownFamily: "unknown",
	BoolFamily:    "bool",
	IntFamily:     "int",
	FloatFamily:   "float",
	DecimalFamily: "decimal",
	StringFamily:  "string",
}

// T is an immutable type descriptor. The package-level instances below are
// the only values; compare with ==.
type T struct {
	family Family
}

var (
	// Unknown is the type of an expression that statically evaluates to NULL.
	Unknown = &T{family: UnknownFamily}
	Bool    = &T{family: BoolFamily}
	Int     = &T{family: IntFamily}
	Float   = &T{family: FloatFamily}
	Decimal = &T{family: DecimalFamily}
	String  = &T{family: StringFamily}
)

// Family returns the type's family.
func (t *T) Family() Family { return t.family }

// Name returns the SQL name of the type.
func (t *T) Name() string { return familyNames[t.family] }

// String implements fmt.Stringer.
func (t *T) String() string { return t.Name() }

// SafeValue implements redact.SafeValue. Type names never contain user data.
func (t *T) SafeValue() {}

var _ redact.SafeValue = (*T)(nil)

// Equivalent returns true if the two types share a family. Unknown is
// equivalent to every type, since NULL can take the place of any value.
func (t *T) Equivalent(other *T) bool {
	return t.family == other.family || t.family == UnknownFamily || other.family == UnknownFamily
}

// IsNumeric returns true for int, float and decimal.
func (t *T) IsNumeric() bool {
	switch t.family {
	case IntFamily, FloatFamily, DecimalFamily:
		return true
	}
	return false
}

// ByName resolves a SQL type name. Common aliases are accepted.
func ByName(name string) (*T, bool) {
	switch name {
	case "bool", "boolean":
		return Bool, true
	case "int", "integer", "int8", "bigint":
		return Int, true
	case "float", "float8", "double":
		return Float, true
	case "decimal", "numeric":
		return Decimal, true
	case "string", "text", "varchar":
		return String, true
	case "unknown":
		return Unknown, true
	}
	return nil, false
}
