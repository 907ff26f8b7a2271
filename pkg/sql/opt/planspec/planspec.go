// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package planspec builds plan trees from YAML descriptions. It is used by
// the command line tool and by data-driven tests, which need to construct
// plans without a SQL front end.
//
// A document lists tables and a plan:
//
//	tables:
//	  - name: a
//	    columns: [a1, a2:string]
//	plan:
//	  op: join
//	  type: inner
//	  on: {eq: [a1, b1]}
//	  inputs:
//	    - {op: scan, table: a}
//	    - {op: scan, table: b}
//
// Column types default to int. Scalars are written as single-key mappings
// named after the operator (eq, lt, and, not, plus, is-null, ...), with the
// operands as a sequence. Bare strings are column references; YAML numbers,
// booleans and null are constants; {string: x} and {decimal: "1.5"} are
// string and decimal constants. Any other key is a function call.
package planspec

import (
	"os"
	"strings"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

type document struct {
	Tables []tableSpec `yaml:"tables"`
	Plan   yaml.Node   `yaml:"plan"`
}

type tableSpec struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// Builder accumulates table definitions in a Metadata and builds plans over
// them. Columns synthesized by a plan (projections, values, aggregations)
// are only visible within that plan.
type Builder struct {
	md *opt.Metadata

	tables map[string]opt.TableID
	// cols maps both "alias" and "table.alias" to the column id. An alias
	// used by more than one table maps to 0, which marks it ambiguous.
	cols map[string]opt.ColumnID
}

// NewBuilder returns a Builder with an empty Metadata.
func NewBuilder() *Builder {
	return &Builder{
		md:     opt.NewMetadata(),
		tables: make(map[string]opt.TableID),
		cols:   make(map[string]opt.ColumnID),
	}
}

// Metadata returns the metadata that the built plans refer to.
func (b *Builder) Metadata() *opt.Metadata {
	return b.md
}

// Parse builds the plan described by a complete document, along with the
// metadata it refers to.
func Parse(data []byte) (*opt.Metadata, *memo.Plan, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(err, "parsing plan spec")
	}
	if isAbsent(&doc.Plan) {
		return nil, nil, errors.New("plan spec has no plan")
	}
	b := NewBuilder()
	for _, t := range doc.Tables {
		if _, err := b.addTable(t); err != nil {
			return nil, nil, err
		}
	}
	p, err := b.build(&doc.Plan)
	if err != nil {
		return nil, nil, err
	}
	return b.md, p, nil
}

// ParseFile reads and parses a document from the given path.
func ParseFile(path string) (*opt.Metadata, *memo.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading plan spec")
	}
	md, p, err := Parse(data)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s", path)
	}
	return md, p, nil
}

// AddTables adds the tables of a YAML sequence of table definitions and
// returns their ids.
func (b *Builder) AddTables(data []byte) ([]opt.TableID, error) {
	var tables []tableSpec
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, errors.Wrap(err, "parsing tables")
	}
	res := make([]opt.TableID, 0, len(tables))
	for _, t := range tables {
		tab, err := b.addTable(t)
		if err != nil {
			return nil, err
		}
		res = append(res, tab)
	}
	return res, nil
}

// BuildPlan builds the plan described by a YAML plan node.
func (b *Builder) BuildPlan(data []byte) (*memo.Plan, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(err, "parsing plan")
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return b.build(n.Content[0])
	}
	return nil, errors.New("empty plan")
}

func (b *Builder) addTable(t tableSpec) (opt.TableID, error) {
	if t.Name == "" {
		return 0, errors.New("table without a name")
	}
	if _, ok := b.tables[t.Name]; ok {
		return 0, errors.Newf("table %q already exists", t.Name)
	}
	cols := make([]opt.TableColumn, len(t.Columns))
	for i, def := range t.Columns {
		name, typ, err := parseColumnDef(def)
		if err != nil {
			return 0, errors.Wrapf(err, "table %q", t.Name)
		}
		for j := 0; j < i; j++ {
			if cols[j].Name == name {
				return 0, errors.Newf("table %q: duplicate column %q", t.Name, name)
			}
		}
		cols[i] = opt.TableColumn{Name: name, Type: typ}
	}
	tab := b.md.AddTable(t.Name, cols)
	b.tables[t.Name] = tab
	for i, col := range cols {
		id := tab.ColumnID(i)
		if _, ok := b.cols[col.Name]; ok {
			b.cols[col.Name] = 0
		} else {
			b.cols[col.Name] = id
		}
		b.cols[t.Name+"."+col.Name] = id
	}
	return tab, nil
}

// parseColumnDef splits a "name:type" column definition. The type defaults
// to int.
func parseColumnDef(def string) (string, *types.T, error) {
	name, typName, found := strings.Cut(def, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, errors.Newf("invalid column definition %q", def)
	}
	if !found {
		return name, types.Int, nil
	}
	typ, ok := types.ByName(strings.TrimSpace(typName))
	if !ok {
		return "", nil, errors.Newf("column %q: unknown type %q", name, typName)
	}
	return name, typ, nil
}

// build constructs a plan and checks that it is well-formed.
func (b *Builder) build(n *yaml.Node) (_ *memo.Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(opt.CatchOptimizerError(r), "invalid plan")
		}
	}()
	s := &scope{b: b, cols: make(map[string]opt.ColumnID, len(b.cols))}
	for name, id := range b.cols {
		s.cols[name] = id
	}
	p, err := s.buildNode(n)
	if err != nil {
		return nil, err
	}
	memo.VerifyPlan(p)
	return p, nil
}

// isAbsent returns true if the key holding n was missing from its mapping.
// Raw nodes must be decoded into yaml.Node values, not pointers, which are
// left zero when the key is missing.
func isAbsent(n *yaml.Node) bool {
	return n.Kind == 0
}

// errorf returns an error annotated with the position of the node in the
// document.
func errorf(n *yaml.Node, format string, args ...interface{}) error {
	return errors.Wrapf(errors.Newf(format, args...), "line %d", n.Line)
}
