// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"sort"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/errors"
)

// ProjectionItem computes the output column Col from Element.
type ProjectionItem struct {
	Col     opt.ColumnID
	Element opt.ScalarExpr
}

// IsPassthrough returns true if the item forwards an input column unchanged
// under the same id.
func (pi ProjectionItem) IsPassthrough() bool {
	v, ok := pi.Element.(*VariableExpr)
	return ok && v.Col == pi.Col
}

// Projection maps the visible output columns of an operator to the scalar
// expressions that compute them from the operator's unprojected output. Items
// are kept sorted by column id and the keys are unique. A Projection is
// immutable; every method that changes it returns a new value.
type Projection struct {
	items []ProjectionItem
	cols  opt.ColSet
}

// NewProjection builds a projection from the given items. Duplicate output
// columns are an assertion failure.
func NewProjection(items ...ProjectionItem) *Projection {
	p := &Projection{items: make([]ProjectionItem, len(items))}
	copy(p.items, items)
	sort.Slice(p.items, func(i, j int) bool { return p.items[i].Col < p.items[j].Col })
	for i := range p.items {
		if p.cols.Contains(p.items[i].Col) {
			panic(errors.AssertionFailedf("duplicate projection column %d", p.items[i].Col))
		}
		if p.items[i].Element == nil {
			panic(errors.AssertionFailedf("projection column %d has no expression", p.items[i].Col))
		}
		p.cols.Add(p.items[i].Col)
	}
	return p
}

// IdentityProjection returns a projection that passes through each of the
// given columns.
func IdentityProjection(f opt.ColumnFactory, cols opt.ColSet) *Projection {
	items := make([]ProjectionItem, 0, cols.Len())
	cols.ForEach(func(col opt.ColumnID) {
		items = append(items, ProjectionItem{Col: col, Element: NewVariable(f, col)})
	})
	return NewProjection(items...)
}

// Len returns the number of output columns.
func (p *Projection) Len() int {
	return len(p.items)
}

// Item returns the nth item, in ascending column order.
func (p *Projection) Item(nth int) ProjectionItem {
	return p.items[nth]
}

// Get returns the expression that computes the given column.
func (p *Projection) Get(col opt.ColumnID) (opt.ScalarExpr, bool) {
	i := sort.Search(len(p.items), func(i int) bool { return p.items[i].Col >= col })
	if i < len(p.items) && p.items[i].Col == col {
		return p.items[i].Element, true
	}
	return nil, false
}

// Cols returns the set of output columns.
func (p *Projection) Cols() opt.ColSet {
	return p.cols.Copy()
}

// OuterCols returns the set of input columns read by the projection.
func (p *Projection) OuterCols() opt.ColSet {
	var cols opt.ColSet
	for i := range p.items {
		cols.UnionWith(OuterCols(p.items[i].Element))
	}
	return cols
}

// HasDerived returns true if any item is not a pass-through.
func (p *Projection) HasDerived() bool {
	for i := range p.items {
		if !p.items[i].IsPassthrough() {
			return true
		}
	}
	return false
}

// Derived returns the items that are not pass-throughs.
func (p *Projection) Derived() []ProjectionItem {
	var res []ProjectionItem
	for i := range p.items {
		if !p.items[i].IsPassthrough() {
			res = append(res, p.items[i])
		}
	}
	return res
}

// Merge returns a projection with the items of both projections. Items of
// other replace items of p with the same output column.
func (p *Projection) Merge(other ...ProjectionItem) *Projection {
	var replaced opt.ColSet
	for i := range other {
		replaced.Add(other[i].Col)
	}
	items := make([]ProjectionItem, 0, len(p.items)+len(other))
	for i := range p.items {
		if !replaced.Contains(p.items[i].Col) {
			items = append(items, p.items[i])
		}
	}
	return NewProjection(append(items, other...)...)
}
