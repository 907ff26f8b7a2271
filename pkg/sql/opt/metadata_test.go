// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"sync"
	"testing"

	"github.com/cockroachdb/cascades/pkg/sql/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestMetadataColumns(t *testing.T) {
	md := NewMetadata()
	x := md.AddColumn("x", types.Int)
	y := md.AddColumn("y", types.String)
	require.Equal(t, ColumnID(1), x)
	require.Equal(t, ColumnID(2), y)
	require.Equal(t, 2, md.NumColumns())

	cm := md.ColumnMeta(y)
	require.Equal(t, "y", cm.Alias)
	require.Same(t, types.String, cm.Type)
	require.Equal(t, TableID(0), cm.Table)
	require.Equal(t, "y", md.QualifiedAlias(y))

	require.Panics(t, func() { md.ColumnMeta(0) })
	require.Panics(t, func() { md.ColumnMeta(3) })
}

func TestMetadataTables(t *testing.T) {
	md := NewMetadata()
	md.AddColumn("z", types.Int)
	a := md.AddTable("a", []TableColumn{{Name: "a1", Type: types.Int}, {Name: "a2", Type: types.Bool}})
	b := md.AddTable("b", []TableColumn{{Name: "b1", Type: types.Int}})

	require.Equal(t, ColumnID(2), a.ColumnID(0))
	require.Equal(t, ColumnID(3), a.ColumnID(1))
	require.Equal(t, ColumnID(4), b.ColumnID(0))
	require.Equal(t, "a", md.TableMeta(a).Name)
	require.Equal(t, "(2,3)", md.TableMeta(a).ColumnIDs().String())
	require.Equal(t, "b.b1", md.QualifiedAlias(b.ColumnID(0)))
	require.Equal(t, a, md.ColumnMeta(3).Table)

	require.Panics(t, func() { md.TableMeta(0) })
}

// Independent metadata instances never share ids, so concurrent compilations
// can each mint columns without coordination.
func TestMetadataIndependence(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]ColList, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			md := NewMetadata()
			for j := 0; j < 100; j++ {
				results[i] = append(results[i], md.AddColumn("c", types.Int))
			}
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		require.True(t, results[0].Equals(results[i]))
	}
}

func TestOperator(t *testing.T) {
	require.Equal(t, "join", JoinOp.String())
	require.Equal(t, "pattern-leaf", PatternLeafOp.String())
	require.Equal(t, "Operator(999)", Operator(999).String())

	op, ok := OperatorByName("group-by")
	require.True(t, ok)
	require.Equal(t, GroupByOp, op)
	_, ok = OperatorByName("merge-join")
	require.False(t, ok)

	require.True(t, IsRelationalOp(JoinOp))
	require.False(t, IsRelationalOp(EqOp))
	require.True(t, IsScalarOp(EqOp))
	require.True(t, IsComparisonOp(GeOp))
	require.False(t, IsComparisonOp(AndOp))
	require.True(t, IsBinaryOp(AndOp))
	require.True(t, IsBooleanOp(NotOp))
	require.True(t, IsConstValueOp(NullOp))
	require.True(t, IsPatternOp(PatternMultiLeafOp))

	// Every operator has a name.
	for op := Operator(0); op < NumOperators; op++ {
		require.NotEmpty(t, op.String())
	}
}

func TestCatchOptimizerError(t *testing.T) {
	run := func(f func()) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = CatchOptimizerError(r)
			}
		}()
		f()
		return nil
	}

	err := run(func() { panic(errors.AssertionFailedf("bad plan")) })
	require.True(t, errors.IsAssertionFailure(err))

	err = run(func() {
		var s []int
		_ = s[3]
	})
	require.True(t, errors.IsAssertionFailure(err))

	require.NoError(t, run(func() {}))
	require.Panics(t, func() { _ = run(func() { panic("not an error") }) })
}
