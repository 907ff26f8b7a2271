// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package planspec

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// nodeSpec is the YAML shape of a plan node. Not every field applies to
// every operator.
type nodeSpec struct {
	Op           string        `yaml:"op"`
	Type         string        `yaml:"type"`
	Hint         string        `yaml:"hint"`
	Table        string        `yaml:"table"`
	Columns      []string      `yaml:"columns"`
	Rows         [][]yaml.Node `yaml:"rows"`
	Limit        int64         `yaml:"limit"`
	Count        int64         `yaml:"count"`
	Offset       int64         `yaml:"offset"`
	On           yaml.Node     `yaml:"on"`
	Predicate    yaml.Node     `yaml:"predicate"`
	Projection   []yaml.Node   `yaml:"projection"`
	Grouping     []string      `yaml:"grouping"`
	Aggregations []yaml.Node   `yaml:"aggregations"`
	Inputs       []yaml.Node   `yaml:"inputs"`
}

// allowedKeys lists the keys that are meaningful for each operator, on top
// of op, limit, predicate and projection, which every operator accepts.
var allowedKeys = map[opt.Operator][]string{
	opt.ScanOp:    {"table", "columns"},
	opt.ValuesOp:  {"columns", "rows"},
	opt.SelectOp:  {"inputs"},
	opt.ProjectOp: {"inputs"},
	opt.JoinOp:    {"type", "hint", "on", "inputs"},
	opt.LimitOp:   {"count", "offset", "inputs"},
	opt.GroupByOp: {"grouping", "aggregations", "inputs"},
}

// scope resolves column names while building a single plan.
type scope struct {
	b    *Builder
	cols map[string]opt.ColumnID
}

func (s *scope) buildNode(n *yaml.Node) (*memo.Plan, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorf(n, "plan node must be a mapping")
	}
	var spec nodeSpec
	if err := n.Decode(&spec); err != nil {
		return nil, errors.Wrapf(err, "line %d", n.Line)
	}
	op, ok := opt.OperatorByName(spec.Op)
	if !ok || !opt.IsRelationalOp(op) {
		return nil, errorf(n, "unknown operator %q", spec.Op)
	}
	if err := checkKeys(n, op); err != nil {
		return nil, err
	}

	inputs := make([]*memo.Plan, len(spec.Inputs))
	for i := range spec.Inputs {
		input, err := s.buildNode(&spec.Inputs[i])
		if err != nil {
			return nil, err
		}
		inputs[i] = input
	}

	var relOp memo.RelOperator
	var base memo.OperatorBase
	var err error
	switch op {
	case opt.ScanOp:
		relOp, err = s.buildScan(n, &spec)
	case opt.ValuesOp:
		relOp, err = s.buildValues(n, &spec)
	case opt.SelectOp:
		relOp = &memo.SelectOperator{}
	case opt.ProjectOp:
		relOp = &memo.ProjectOperator{}
	case opt.JoinOp:
		relOp, err = s.buildJoin(n, &spec)
	case opt.LimitOp:
		relOp = &memo.LimitOperator{Count: spec.Count, Offset: spec.Offset}
	case opt.GroupByOp:
		relOp, err = s.buildGroupBy(n, &spec)
	}
	if err != nil {
		return nil, err
	}
	if relOp.Arity() != len(inputs) {
		return nil, errorf(n, "%s expects %d inputs, found %d", spec.Op, relOp.Arity(), len(inputs))
	}

	if spec.Limit < 0 {
		return nil, errorf(n, "limit must be positive")
	}
	base.RowLimit = spec.Limit
	if !isAbsent(&spec.Predicate) {
		if base.Pred, err = s.buildScalar(&spec.Predicate); err != nil {
			return nil, err
		}
	}
	if spec.Projection != nil {
		if base.Proj, err = s.buildProjection(spec.Projection); err != nil {
			return nil, err
		}
	}
	relOp = withBase(relOp, base)
	return memo.NewPlan(relOp, inputs...), nil
}

// withBase sets the properties that every operator shares.
func withBase(op memo.RelOperator, base memo.OperatorBase) memo.RelOperator {
	switch t := op.(type) {
	case *memo.ScanOperator:
		t.OperatorBase = base
	case *memo.ValuesOperator:
		t.OperatorBase = base
	case *memo.SelectOperator:
		t.OperatorBase = base
	case *memo.ProjectOperator:
		t.OperatorBase = base
	case *memo.JoinOperator:
		t.OperatorBase = base
	case *memo.LimitOperator:
		t.OperatorBase = base
	case *memo.GroupByOperator:
		t.OperatorBase = base
	default:
		panic(errors.AssertionFailedf("unhandled operator %T", op))
	}
	return op
}

func checkKeys(n *yaml.Node, op opt.Operator) error {
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i].Value
		switch key {
		case "op", "limit", "predicate", "projection":
			continue
		}
		found := false
		for _, allowed := range allowedKeys[op] {
			if key == allowed {
				found = true
				break
			}
		}
		if !found {
			return errorf(n.Content[i], "%s does not accept %q", op, key)
		}
	}
	return nil
}

func (s *scope) buildScan(n *yaml.Node, spec *nodeSpec) (memo.RelOperator, error) {
	tab, ok := s.b.tables[spec.Table]
	if !ok {
		return nil, errorf(n, "unknown table %q", spec.Table)
	}
	scan := &memo.ScanOperator{Table: tab}
	if spec.Columns == nil {
		scan.Cols = s.b.md.TableMeta(tab).ColumnIDs()
		return scan, nil
	}
	all := s.b.md.TableMeta(tab).ColumnIDs()
	for _, name := range spec.Columns {
		col, err := s.resolve(n, name)
		if err != nil {
			return nil, err
		}
		if !all.Contains(col) {
			return nil, errorf(n, "column %q does not belong to table %q", name, spec.Table)
		}
		scan.Cols.Add(col)
	}
	return scan, nil
}

func (s *scope) buildValues(n *yaml.Node, spec *nodeSpec) (memo.RelOperator, error) {
	values := &memo.ValuesOperator{Cols: make(opt.ColList, len(spec.Columns))}
	for i, def := range spec.Columns {
		name, typ, err := parseColumnDef(def)
		if err != nil {
			return nil, errorf(n, "%v", err)
		}
		if values.Cols[i], err = s.define(n, name, typ); err != nil {
			return nil, err
		}
	}
	values.Rows = make([][]opt.ScalarExpr, len(spec.Rows))
	for i, row := range spec.Rows {
		if len(row) != len(values.Cols) {
			return nil, errorf(n, "values row %d has %d elements, expected %d", i+1, len(row), len(values.Cols))
		}
		values.Rows[i] = make([]opt.ScalarExpr, len(row))
		for j := range row {
			e, err := s.buildScalar(&row[j])
			if err != nil {
				return nil, err
			}
			if !memo.CanExtractConstDatum(e) {
				return nil, errorf(&row[j], "values row %d has a non-constant element", i+1)
			}
			col := s.b.md.ColumnMeta(values.Cols[j])
			if d := memo.ExtractConstDatum(e); !d.ResolvedType().Equivalent(col.Type) {
				return nil, errorf(&row[j], "cannot use %s value %s for %s column %q",
					d.ResolvedType(), d, col.Type, col.Alias)
			}
			values.Rows[i][j] = e
		}
	}
	return values, nil
}

func (s *scope) buildJoin(n *yaml.Node, spec *nodeSpec) (memo.RelOperator, error) {
	join := &memo.JoinOperator{JoinType: memo.InnerJoin, Hint: spec.Hint}
	if spec.Type != "" {
		typ, ok := memo.JoinTypeByName(spec.Type)
		if !ok {
			return nil, errorf(n, "unknown join type %q", spec.Type)
		}
		join.JoinType = typ
	}
	if !isAbsent(&spec.On) {
		on, err := s.buildScalar(&spec.On)
		if err != nil {
			return nil, err
		}
		join.On = on
	}
	return join, nil
}

func (s *scope) buildGroupBy(n *yaml.Node, spec *nodeSpec) (memo.RelOperator, error) {
	gb := &memo.GroupByOperator{}
	for _, name := range spec.Grouping {
		col, err := s.resolve(n, name)
		if err != nil {
			return nil, err
		}
		gb.GroupingCols.Add(col)
	}
	if spec.Aggregations != nil {
		aggs, err := s.buildProjection(spec.Aggregations)
		if err != nil {
			return nil, err
		}
		gb.Aggregations = aggs
	}
	return gb, nil
}

// buildProjection builds a projection from a sequence whose entries are
// either a column name, which passes the column through, or a single-key
// mapping from a new column name to its defining expression.
func (s *scope) buildProjection(items []yaml.Node) (*memo.Projection, error) {
	res := make([]memo.ProjectionItem, 0, len(items))
	for i := range items {
		n := &items[i]
		switch n.Kind {
		case yaml.ScalarNode:
			col, err := s.resolve(n, n.Value)
			if err != nil {
				return nil, err
			}
			res = append(res, memo.ProjectionItem{Col: col, Element: memo.NewVariable(s.b.md, col)})

		case yaml.MappingNode:
			if len(n.Content) != 2 {
				return nil, errorf(n, "projection item must have exactly one column")
			}
			e, err := s.buildScalar(n.Content[1])
			if err != nil {
				return nil, err
			}
			col, err := s.define(n, n.Content[0].Value, e.DataType())
			if err != nil {
				return nil, err
			}
			res = append(res, memo.ProjectionItem{Col: col, Element: e})

		default:
			return nil, errorf(n, "invalid projection item")
		}
	}
	for i := range res {
		for j := 0; j < i; j++ {
			if res[i].Col == res[j].Col {
				return nil, errorf(&items[i], "column %q projected twice", s.b.md.ColumnMeta(res[i].Col).Alias)
			}
		}
	}
	return memo.NewProjection(res...), nil
}

func (s *scope) resolve(n *yaml.Node, name string) (opt.ColumnID, error) {
	col, ok := s.cols[name]
	if !ok {
		return 0, errorf(n, "unknown column %q", name)
	}
	if col == 0 {
		return 0, errorf(n, "ambiguous column %q", name)
	}
	return col, nil
}

// define adds a synthesized column to the metadata and makes it visible for
// the rest of the plan.
func (s *scope) define(n *yaml.Node, name string, typ *types.T) (opt.ColumnID, error) {
	if name == "" {
		return 0, errorf(n, "column without a name")
	}
	if _, ok := s.cols[name]; ok {
		return 0, errorf(n, "column %q already exists", name)
	}
	col := s.b.md.AddColumn(name, typ)
	s.cols[name] = col
	return col, nil
}
