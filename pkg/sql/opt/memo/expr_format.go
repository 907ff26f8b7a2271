// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/xlab/treeprint"
)

// FormatPlan returns a multi-line tree rendering of the plan. Column and
// table names are resolved through the metadata; if it is nil, columns are
// shown by id only. For example:
//
//	inner-join
//	├── columns: a1:1 b1:2
//	├── scan a
//	│   └── columns: a1:1
//	├── scan b
//	│   └── columns: b1:2
//	└── on: a1 = b1
func FormatPlan(p *Plan, md *opt.Metadata) string {
	f := planFmtCtx{md: md}
	tp := treeprint.NewWithRoot(f.label(p))
	f.formatNode(tp, p)
	return tp.String()
}

// Format is shorthand for FormatPlan(p, md).
func (p *Plan) Format(md *opt.Metadata) string {
	return FormatPlan(p, md)
}

// String renders the plan without metadata.
func (p *Plan) String() string {
	return FormatPlan(p, nil)
}

type planFmtCtx struct {
	md *opt.Metadata
}

func (f *planFmtCtx) label(p *Plan) string {
	if scan, ok := p.Operator().(*ScanOperator); ok && f.md != nil && scan.Table != 0 {
		return "scan " + f.md.TableMeta(scan.Table).Name
	}
	return OperatorName(p.Operator())
}

func (f *planFmtCtx) formatNode(tp treeprint.Tree, p *Plan) {
	op := p.Operator()
	if cols := p.OutputCols(); cols.Empty() {
		tp.AddNode("columns: <none>")
	} else {
		tp.AddNode("columns: " + f.colList(cols))
	}

	switch t := op.(type) {
	case *JoinOperator:
		if t.Hint != "" {
			tp.AddNode("hint: " + t.Hint)
		}

	case *LimitOperator:
		tp.AddNode(fmt.Sprintf("count: %d", t.Count))
		if t.Offset != 0 {
			tp.AddNode(fmt.Sprintf("offset: %d", t.Offset))
		}

	case *GroupByOperator:
		if !t.GroupingCols.Empty() {
			tp.AddNode("grouping columns: " + f.colList(t.GroupingCols))
		}

	case *ValuesOperator:
		rows := tp.AddBranch("rows")
		for _, row := range t.Rows {
			elems := make([]string, len(row))
			for i := range row {
				elems[i] = f.scalar(row[i])
			}
			rows.AddNode("(" + strings.Join(elems, ", ") + ")")
		}
	}

	if op.HasLimit() {
		tp.AddNode(fmt.Sprintf("limit: %d", op.Limit()))
	}

	for i := 0; i < p.ChildCount(); i++ {
		in := p.Input(i)
		f.formatNode(tp.AddBranch(f.label(in)), in)
	}

	switch t := op.(type) {
	case *JoinOperator:
		if t.On != nil {
			tp.AddNode("on: " + f.scalar(t.On))
		}

	case *GroupByOperator:
		if t.Aggregations != nil && t.Aggregations.Len() > 0 {
			f.formatProjection(tp.AddBranch("aggregations"), t.Aggregations)
		}
	}

	if pred := op.Predicate(); pred != nil {
		tp.AddNode("predicate: " + f.scalar(pred))
	}
	if proj := op.Projection(); proj != nil {
		f.formatProjection(tp.AddBranch("projection"), proj)
	}
}

func (f *planFmtCtx) formatProjection(tp treeprint.Tree, proj *Projection) {
	for i := 0; i < proj.Len(); i++ {
		item := proj.Item(i)
		if item.IsPassthrough() {
			tp.AddNode(f.col(item.Col))
			continue
		}
		tp.AddNode(f.col(item.Col) + " := " + f.scalar(item.Element))
	}
}

func (f *planFmtCtx) scalar(e opt.ScalarExpr) string {
	if f.md == nil {
		return FormatScalar(e, nil)
	}
	return FormatScalar(e, f.md)
}

func (f *planFmtCtx) col(id opt.ColumnID) string {
	if f.md == nil {
		return fmt.Sprintf("@%d", id)
	}
	return fmt.Sprintf("%s:%d", f.md.ColumnMeta(id).Alias, id)
}

func (f *planFmtCtx) colList(cols opt.ColSet) string {
	var buf strings.Builder
	cols.ForEach(func(id opt.ColumnID) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(f.col(id))
	})
	return buf.String()
}
