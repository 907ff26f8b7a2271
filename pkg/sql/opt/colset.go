// Copyright 2019 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// ColumnID uniquely identifies the usage of a column within the scope of a
// query. ColumnID 0 is reserved to mean "unknown column". See the comment for
// Metadata for more details.
type ColumnID int32

// SafeValue implements redact.SafeValue.
func (ColumnID) SafeValue() {}

var _ redact.SafeValue = ColumnID(0)

// ColSet efficiently stores an unordered set of column ids. The zero value is
// an empty set.
//
// Assigning a ColSet to another variable shares the underlying storage. Use
// Copy before modifying a set that may be referenced elsewhere.
type ColSet struct {
	set *bitset.BitSet
}

// MakeColSet returns a set initialized with the given values.
func MakeColSet(vals ...ColumnID) ColSet {
	var res ColSet
	for _, v := range vals {
		res.Add(v)
	}
	return res
}

// Add adds a column to the set. No-op if the column is already in the set.
func (s *ColSet) Add(col ColumnID) {
	if col <= 0 {
		panic(errors.AssertionFailedf("col must be greater than 0"))
	}
	if s.set == nil {
		s.set = bitset.New(uint(col) + 1)
	}
	s.set.Set(uint(col))
}

// Remove removes a column from the set. No-op if the column is not in the set.
func (s *ColSet) Remove(col ColumnID) {
	if s.set == nil || col <= 0 {
		return
	}
	s.set.Clear(uint(col))
}

// Contains returns true if the set contains the column.
func (s ColSet) Contains(col ColumnID) bool {
	return col > 0 && s.set != nil && s.set.Test(uint(col))
}

// Empty returns true if the set is empty.
func (s ColSet) Empty() bool { return s.set == nil || s.set.None() }

// Len returns the number of the columns in the set.
func (s ColSet) Len() int {
	if s.set == nil {
		return 0
	}
	return int(s.set.Count())
}

// Next returns the first value in the set which is >= startVal. If there is no
// such column, the second return value is false.
func (s ColSet) Next(startVal ColumnID) (ColumnID, bool) {
	if s.set == nil {
		return 0, false
	}
	if startVal < 0 {
		startVal = 0
	}
	i, ok := s.set.NextSet(uint(startVal))
	return ColumnID(i), ok
}

// ForEach calls a function for each column in the set (in increasing order).
func (s ColSet) ForEach(f func(col ColumnID)) {
	for c, ok := s.Next(0); ok; c, ok = s.Next(c + 1) {
		f(c)
	}
}

// Copy returns a copy of s which can be modified independently.
func (s ColSet) Copy() ColSet {
	if s.set == nil {
		return ColSet{}
	}
	return ColSet{set: s.set.Clone()}
}

// UnionWith adds all the columns from rhs to this set.
func (s *ColSet) UnionWith(rhs ColSet) {
	if rhs.Empty() {
		return
	}
	if s.set == nil {
		s.set = rhs.set.Clone()
		return
	}
	s.set.InPlaceUnion(rhs.set)
}

// Union returns the union of s and rhs as a new set.
func (s ColSet) Union(rhs ColSet) ColSet {
	r := s.Copy()
	r.UnionWith(rhs)
	return r
}

// IntersectionWith removes any columns not in rhs from this set.
func (s *ColSet) IntersectionWith(rhs ColSet) {
	if s.set == nil {
		return
	}
	if rhs.set == nil {
		s.set = nil
		return
	}
	s.set.InPlaceIntersection(rhs.set)
}

// Intersection returns the intersection of s and rhs as a new set.
func (s ColSet) Intersection(rhs ColSet) ColSet {
	r := s.Copy()
	r.IntersectionWith(rhs)
	return r
}

// DifferenceWith removes any elements in rhs from this set.
func (s *ColSet) DifferenceWith(rhs ColSet) {
	if s.set == nil || rhs.set == nil {
		return
	}
	s.set.InPlaceDifference(rhs.set)
}

// Difference returns the elements of s that are not in rhs as a new set.
func (s ColSet) Difference(rhs ColSet) ColSet {
	r := s.Copy()
	r.DifferenceWith(rhs)
	return r
}

// Intersects returns true if s has any elements in common with rhs.
func (s ColSet) Intersects(rhs ColSet) bool {
	if s.set == nil || rhs.set == nil {
		return false
	}
	return s.set.IntersectionCardinality(rhs.set) > 0
}

// Equals returns true if the two sets are identical.
func (s ColSet) Equals(rhs ColSet) bool {
	return s.Len() == rhs.Len() && s.SubsetOf(rhs)
}

// SubsetOf returns true if rhs contains all the elements in s. The empty set
// is a subset of every set.
func (s ColSet) SubsetOf(rhs ColSet) bool {
	if s.Empty() {
		return true
	}
	if rhs.set == nil {
		return false
	}
	return rhs.set.IsSuperSet(s.set)
}

// SingleColumn returns the single column in s. Panics if s does not contain
// exactly one column.
func (s ColSet) SingleColumn() ColumnID {
	if s.Len() != 1 {
		panic(errors.AssertionFailedf("expected a single column but found %d columns", s.Len()))
	}
	col, _ := s.Next(0)
	return col
}

// ToList converts the set to a ColList, in column ID order.
func (s ColSet) ToList() ColList {
	res := make(ColList, 0, s.Len())
	s.ForEach(func(x ColumnID) {
		res = append(res, x)
	})
	return res
}

// String returns a list representation of elements. Sequential runs of
// numbers are shown as ranges. For example, for the set {1, 2, 3  5, 6, 10},
// the output is "(1-3,5,6,10)".
func (s ColSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	appendRange := func(start, end ColumnID) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		switch {
		case start == end:
			fmt.Fprintf(&buf, "%d", start)
		case start+1 == end:
			fmt.Fprintf(&buf, "%d,%d", start, end)
		default:
			fmt.Fprintf(&buf, "%d-%d", start, end)
		}
	}
	rangeStart, rangeEnd := ColumnID(-1), ColumnID(-1)
	s.ForEach(func(c ColumnID) {
		if c == rangeEnd+1 && rangeStart != -1 {
			rangeEnd = c
			return
		}
		if rangeStart != -1 {
			appendRange(rangeStart, rangeEnd)
		}
		rangeStart, rangeEnd = c, c
	})
	if rangeStart != -1 {
		appendRange(rangeStart, rangeEnd)
	}
	buf.WriteByte(')')
	return buf.String()
}

// SafeValue implements redact.SafeValue. A ColSet only renders column ids.
func (ColSet) SafeValue() {}

// ColList is a list of column ids.
type ColList []ColumnID

// ToSet converts a column id list to a column id set.
func (cl ColList) ToSet() ColSet {
	var r ColSet
	for _, col := range cl {
		r.Add(col)
	}
	return r
}

// Equals returns true if this column list has the same columns as the given
// column list, in the same order.
func (cl ColList) Equals(other ColList) bool {
	if len(cl) != len(other) {
		return false
	}
	for i := range cl {
		if cl[i] != other[i] {
			return false
		}
	}
	return true
}
