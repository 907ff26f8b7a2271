// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/pattern"
	"github.com/cockroachdb/cascades/pkg/sql/opt/xform"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/cascades/pkg/util/metric"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestExplorer(t *testing.T) {
	tt := makeTestTables()
	a1, b1, c1 := tt.cols[0][0], tt.cols[1][0], tt.cols[2][0]
	p := tt.join3(tt.eq(a1, b1), tt.eq(b1, c1))

	t.Run("associativity only", func(t *testing.T) {
		settings := xform.DefaultSettings()
		settings.DisabledRules.Add(xform.JoinCommutativity)
		metrics := xform.NewExplorerMetrics(metric.NewRegistry())
		e := xform.NewExplorer(xform.NewSearchContext(context.Background(), tt.md, settings), metrics)

		res, err := e.Explore(p)
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Same(t, tt.a, res[0].Input(0))
		inner := res[0].Input(1)
		require.Same(t, tt.b, inner.Input(0))
		require.Same(t, tt.c, inner.Input(1))

		name := xform.JoinAssociativity.String()
		require.Equal(t, 1.0, testutil.ToFloat64(metrics.Matches.WithLabelValues(name)))
		require.Equal(t, 0.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues(name)))
		require.Equal(t, 1.0, testutil.ToFloat64(metrics.Candidates.WithLabelValues(name)))
		require.Equal(t, 0.0, testutil.ToFloat64(
			metrics.Matches.WithLabelValues(xform.JoinCommutativity.String())))
	})

	t.Run("candidate limit", func(t *testing.T) {
		settings := xform.DefaultSettings()
		settings.MaxCandidates = 1
		e := xform.NewExplorer(xform.NewSearchContext(context.Background(), tt.md, settings), nil)
		res, err := e.Explore(p)
		require.NoError(t, err)
		require.Len(t, res, 1)
	})

	t.Run("distinct candidates", func(t *testing.T) {
		e := xform.NewExplorer(tt.sc(), nil)
		res, err := e.Explore(p)
		require.NoError(t, err)
		require.Greater(t, len(res), 1)
		seen := map[string]struct{}{p.String(): {}}
		for _, alt := range res {
			key := alt.String()
			require.NotContains(t, seen, key)
			seen[key] = struct{}{}
			require.True(t, alt.OutputCols().Equals(p.OutputCols()))
		}
	})

	t.Run("rejections", func(t *testing.T) {
		semi := memo.NewPlan(&memo.JoinOperator{JoinType: memo.SemiJoin, On: tt.eq(a1, b1)}, tt.a, tt.b)
		top := memo.NewPlan(&memo.JoinOperator{JoinType: memo.InnerJoin, On: tt.eq(a1, c1)}, semi, tt.c)
		metrics := xform.NewExplorerMetrics(metric.NewRegistry())
		settings := xform.DefaultSettings()
		settings.DisabledRules.Add(xform.JoinCommutativity)
		e := xform.NewExplorer(xform.NewSearchContext(context.Background(), tt.md, settings), metrics)
		res, err := e.Explore(top)
		require.NoError(t, err)
		require.Empty(t, res)

		name := xform.JoinAssociativity.String()
		require.Equal(t, 1.0, testutil.ToFloat64(metrics.Matches.WithLabelValues(name)))
		require.Equal(t, 1.0, testutil.ToFloat64(metrics.Rejections.WithLabelValues(name)))
		require.Equal(t, 0.0, testutil.ToFloat64(metrics.Candidates.WithLabelValues(name)))
	})
}

func TestExplorerApplyRule(t *testing.T) {
	tt := makeTestTables()
	a1, b1, c1 := tt.cols[0][0], tt.cols[1][0], tt.cols[2][0]
	p := tt.join3(tt.eq(a1, b1), tt.eq(b1, c1))

	// Commutativity applies at the root and at the child join.
	e := xform.NewExplorer(tt.sc(), nil)
	res, err := e.ApplyRule(xform.RuleByName(xform.JoinCommutativity), p)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Same(t, tt.c, res[0].Input(0))
	require.Same(t, tt.c, res[1].Input(1))
	require.Same(t, tt.b, res[1].Input(0).Input(0))

	res, err = e.ApplyRule(joinAssociativity(), tt.a)
	require.NoError(t, err)
	require.Empty(t, res)
}

// failingRule matches every join and fails its transform with an assertion.
type failingRule struct{}

func (failingRule) Name() xform.RuleName { return xform.JoinCommutativity }

func (failingRule) Pattern() *pattern.Pattern {
	return pattern.Create(opt.JoinOp, pattern.Leaf(), pattern.Leaf())
}

func (failingRule) Check(*memo.Plan, *xform.SearchContext) bool { return true }

func (failingRule) Transform(*memo.Plan, *xform.SearchContext) []*memo.Plan {
	panic(errors.AssertionFailedf("transform invoked on a broken plan"))
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, log.ApplyConfig(&buf, log.Config{Format: "crdb-v1", MinSeverity: log.SeverityInfo}))
	t.Cleanup(func() {
		require.NoError(t, log.ApplyConfig(os.Stderr, log.DefaultConfig()))
	})
	return &buf
}

func TestExplorerLogging(t *testing.T) {
	tt := makeTestTables()
	a1, b1, c1 := tt.cols[0][0], tt.cols[1][0], tt.cols[2][0]
	p := tt.join3(tt.eq(a1, b1), tt.eq(b1, c1))

	t.Run("failure", func(t *testing.T) {
		buf := captureLogs(t)
		_, err := xform.NewExplorer(tt.sc(), nil).ApplyRule(failingRule{}, p)
		require.Error(t, err)
		require.True(t, errors.HasAssertionFailure(err))
		log.Flush()
		require.Contains(t, buf.String(), "applying JoinCommutativity failed")
		require.Contains(t, buf.String(), "transform invoked on a broken plan")
	})

	t.Run("candidates", func(t *testing.T) {
		buf := captureLogs(t)
		e := xform.NewExplorer(tt.sc(), nil)
		_, err := e.ApplyRule(xform.RuleByName(xform.JoinCommutativity), p)
		require.NoError(t, err)
		log.Flush()
		require.NotContains(t, buf.String(), "candidate 1:")

		defer log.SetVerbosity(2)()
		res, err := e.ApplyRule(xform.RuleByName(xform.JoinCommutativity), p)
		require.NoError(t, err)
		log.Flush()
		require.Len(t, res, 2)
		require.Contains(t, buf.String(), "candidate 1:")
		require.Contains(t, buf.String(), "candidate 2:")
		require.NotContains(t, buf.String(), "failed")
	})
}
