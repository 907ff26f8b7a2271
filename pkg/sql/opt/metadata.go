// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/cockroachdb/errors"
)

// ColumnMeta stores information about one of the columns stored in the
// metadata. It is immutable once added.
type ColumnMeta struct {
	// MetaID is the identifier for this column that is unique within the query
	// metadata.
	MetaID ColumnID

	// Alias is the best-effort name of this column. Since the same column can
	// have multiple names (e.g. aliased by AS), this is only useful for
	// display.
	Alias string

	// Type is the scalar SQL type of this column.
	Type *types.T

	// Table is the base table to which this column belongs. It is 0 for
	// synthesized columns.
	Table TableID
}

// ColumnFactory mints column ids and resolves them back to their
// descriptors. Rules that need fresh columns obtain them from the factory in
// their search context; ids are never allocated from process-wide state.
type ColumnFactory interface {
	// AddColumn allocates a new, unique ColumnID.
	AddColumn(alias string, typ *types.T) ColumnID

	// ColumnMeta returns the descriptor of a column previously returned by
	// AddColumn.
	ColumnMeta(id ColumnID) *ColumnMeta
}

// Metadata assigns unique ids to the columns and tables referenced by a
// query. A Metadata instance is owned by a single query compilation and is
// not safe for concurrent use.
//
// Columns are numbered densely from 1. ColumnID 0 is reserved to mean
// "unknown column".
type Metadata struct {
	// cols stores information about each metadata column, indexed by
	// ColumnID - 1.
	cols []ColumnMeta

	// tables stores information about each metadata table, indexed by
	// TableID.index().
	tables []TableMeta
}

var _ ColumnFactory = (*Metadata)(nil)

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{}
}

// AddColumn is part of the ColumnFactory interface.
func (md *Metadata) AddColumn(alias string, typ *types.T) ColumnID {
	return md.addColumn(alias, typ, 0 /* table */)
}

func (md *Metadata) addColumn(alias string, typ *types.T, tab TableID) ColumnID {
	colID := ColumnID(len(md.cols) + 1)
	md.cols = append(md.cols, ColumnMeta{MetaID: colID, Alias: alias, Type: typ, Table: tab})
	return colID
}

// NumColumns returns the count of columns tracked by this Metadata instance.
func (md *Metadata) NumColumns() int {
	return len(md.cols)
}

// ColumnMeta is part of the ColumnFactory interface.
func (md *Metadata) ColumnMeta(colID ColumnID) *ColumnMeta {
	if colID <= 0 || int(colID) > len(md.cols) {
		panic(errors.AssertionFailedf("unknown column %d", colID))
	}
	return &md.cols[colID-1]
}

// AddTable adds a new table with the given columns to the metadata. The
// columns receive consecutive ids.
func (md *Metadata) AddTable(name string, cols []TableColumn) TableID {
	tabID := makeTableID(len(md.tables), ColumnID(len(md.cols)+1))
	md.tables = append(md.tables, TableMeta{MetaID: tabID, Name: name, ColumnCount: len(cols)})
	for _, col := range cols {
		md.addColumn(col.Name, col.Type, tabID)
	}
	return tabID
}

// TableMeta looks up the metadata for the table associated with the given
// table id.
func (md *Metadata) TableMeta(tabID TableID) *TableMeta {
	idx := tabID.index()
	if idx < 0 || idx >= len(md.tables) {
		panic(errors.AssertionFailedf("unknown table %d", tabID))
	}
	return &md.tables[idx]
}

// QualifiedAlias returns the column alias, prefixed with the table name if
// the column belongs to a base table.
func (md *Metadata) QualifiedAlias(colID ColumnID) string {
	cm := md.ColumnMeta(colID)
	if cm.Table == 0 {
		return cm.Alias
	}
	return md.TableMeta(cm.Table).Name + "." + cm.Alias
}
