// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/cockroachdb/errors"
)

// Datum represents a SQL constant value.
type Datum interface {
	// ResolvedType returns the type of the value.
	ResolvedType() *types.T
	// String renders the value as a SQL literal.
	String() string

	datum()
}

// DBool is the boolean Datum.
type DBool bool

var (
	// DBoolTrue is a pointer to the DBool(true) value and can be used in
	// comparisons against Datum types.
	DBoolTrue = &constDBoolTrue
	// DBoolFalse is a pointer to the DBool(false) value.
	DBoolFalse = &constDBoolFalse

	constDBoolTrue  DBool = true
	constDBoolFalse DBool = false
)

// MakeDBool converts its argument to a *DBool, returning either DBoolTrue or
// DBoolFalse.
func MakeDBool(d DBool) *DBool {
	if d {
		return DBoolTrue
	}
	return DBoolFalse
}

// ResolvedType implements the Datum interface.
func (*DBool) ResolvedType() *types.T { return types.Bool }

func (d *DBool) String() string { return strconv.FormatBool(bool(*d)) }

// DInt is the int Datum.
type DInt int64

// NewDInt is a helper routine to create a *DInt initialized from its
// argument.
func NewDInt(d DInt) *DInt { return &d }

// ResolvedType implements the Datum interface.
func (*DInt) ResolvedType() *types.T { return types.Int }

func (d *DInt) String() string { return strconv.FormatInt(int64(*d), 10) }

// DFloat is the float Datum.
type DFloat float64

// NewDFloat is a helper routine to create a *DFloat initialized from its
// argument.
func NewDFloat(d DFloat) *DFloat { return &d }

// ResolvedType implements the Datum interface.
func (*DFloat) ResolvedType() *types.T { return types.Float }

func (d *DFloat) String() string {
	s := strconv.FormatFloat(float64(*d), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		// Keep a decimal point so that the literal reads back as a float.
		s += ".0"
	}
	return s
}

// DDecimal is the decimal Datum.
type DDecimal struct {
	apd.Decimal
}

// ParseDDecimal parses and returns the *DDecimal Datum value represented by
// the provided string, or an error if parsing is unsuccessful.
func ParseDDecimal(s string) (*DDecimal, error) {
	dd := &DDecimal{}
	if _, _, err := dd.SetString(s); err != nil {
		return nil, errors.Wrapf(err, "could not parse %q as type decimal", s)
	}
	return dd, nil
}

// ResolvedType implements the Datum interface.
func (*DDecimal) ResolvedType() *types.T { return types.Decimal }

func (d *DDecimal) String() string { return d.Decimal.String() }

// DString is the string Datum.
type DString string

// NewDString is a helper routine to create a *DString initialized from its
// argument.
func NewDString(d string) *DString {
	r := DString(d)
	return &r
}

// ResolvedType implements the Datum interface.
func (*DString) ResolvedType() *types.T { return types.String }

func (d *DString) String() string {
	return "'" + strings.ReplaceAll(string(*d), "'", "''") + "'"
}

type dNull struct{}

// DNull is the NULL Datum.
var DNull Datum = dNull{}

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() *types.T { return types.Unknown }

func (dNull) String() string { return "NULL" }

func (*DBool) datum()    {}
func (*DInt) datum()     {}
func (*DFloat) datum()   {}
func (*DDecimal) datum() {}
func (*DString) datum()  {}
func (dNull) datum()     {}
