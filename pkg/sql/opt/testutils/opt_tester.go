// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testutils

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/planspec"
	"github.com/cockroachdb/cascades/pkg/sql/opt/xform"
	"github.com/cockroachdb/cascades/pkg/util/metric"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xlab/treeprint"
)

// OptTester is a helper for testing the various optimizer components. It
// contains the boiler-plate code for the following useful tasks:
//   - Define the tables that plans read
//   - Build a plan tree from its YAML description
//   - Apply a single rule to the root of a plan
//   - Explore every plan reachable through the enabled rules
//
// The OptTester is used by tests in various sub-packages of the opt package.
type OptTester struct {
	Flags OptTesterFlags

	ctx     context.Context
	builder *planspec.Builder
}

// OptTesterFlags are control knobs for tests. Note that specific testcases can
// override these defaults.
type OptTesterFlags struct {
	// DisableRules is a set of rules that are not allowed to run.
	DisableRules xform.RuleSet

	// Rule is the rule used by the check and apply commands.
	Rule xform.RuleName

	// ExpectedRules is a set of rules which must produce a candidate for the
	// test to pass.
	ExpectedRules xform.RuleSet

	// UnexpectedRules is a set of rules which must not produce a candidate
	// for the test to pass.
	UnexpectedRules xform.RuleSet

	// MaxCandidates bounds the explore command.
	MaxCandidates int

	// Verbose indicates whether verbose test debugging information will be
	// output to stdout when commands run.
	Verbose bool
}

// NewOptTester constructs a new instance of the OptTester with no tables.
func NewOptTester() *OptTester {
	return &OptTester{
		ctx:     context.Background(),
		builder: planspec.NewBuilder(),
	}
}

// Metadata returns the metadata of the tables and plans built so far.
func (ot *OptTester) Metadata() *opt.Metadata {
	return ot.builder.Metadata()
}

// RunCommand implements commands that are used by most tests:
//
//   - tables
//
//     Adds the tables described by a YAML sequence to the test metadata.
//
//   - build
//
//     Builds a plan from its YAML description and outputs it.
//
//   - check rule=<name>
//
//     Outputs whether the rule's pattern matches the root of the plan and,
//     if so, whether its check admits it.
//
//   - apply rule=<name>
//
//     Applies the rule to the root of the plan and outputs the candidates.
//
//   - explore [flags]
//
//     Applies the enabled rules everywhere in the plan and in every plan
//     derived from it, and outputs the distinct candidates.
//
//   - rulestats [flags]
//
//     Performs the exploration and outputs statistics about rule
//     applications.
//
// Supported flags:
//
//   - disable: disables rules by name. Examples:
//     explore disable=JoinCommutativity
//     explore disable=(JoinCommutativity,JoinAssociativity)
//
//   - max: the maximum number of candidates explore produces.
//
//   - expect: fail the test if the rules specified by name do not produce a
//     candidate.
//
//   - expect-not: fail the test if the rules specified by name produce a
//     candidate.
func (ot *OptTester) RunCommand(tb testing.TB, d *datadriven.TestData) string {
	// Flags only apply to the command that sets them.
	ot.Flags = OptTesterFlags{}
	for _, a := range d.CmdArgs {
		if err := ot.Flags.Set(a); err != nil {
			d.Fatalf(tb, "%s", err)
		}
	}
	ot.Flags.Verbose = testing.Verbose()

	switch d.Cmd {
	case "tables":
		tabs, err := ot.builder.AddTables([]byte(d.Input))
		if err != nil {
			return fmt.Sprintf("error: %s\n", err)
		}
		return ot.formatTables(tabs)

	case "build":
		p, err := ot.builder.BuildPlan([]byte(d.Input))
		if err != nil {
			return fmt.Sprintf("error: %s\n", err)
		}
		return p.Format(ot.Metadata())

	case "check":
		p := ot.buildPlan(tb, d)
		r := ot.rule(tb, d)
		if !r.Pattern().Matches(p) {
			return "no match\n"
		}
		return fmt.Sprintf("%t\n", r.Check(p, ot.searchContext()))

	case "apply":
		p := ot.buildPlan(tb, d)
		r := ot.rule(tb, d)
		res := xform.MatchAndApply(r, p, ot.searchContext())
		seen := xform.RuleSet{}
		if len(res) > 0 {
			seen.Add(r.Name())
		}
		ot.checkExpectedRules(tb, d, seen)
		return ot.formatCandidates(res)

	case "explore":
		p := ot.buildPlan(tb, d)
		res, metrics, err := ot.explore(p)
		if err != nil {
			return fmt.Sprintf("error: %s\n", err)
		}
		ot.checkExpectedRules(tb, d, appliedRules(metrics))
		return ot.formatCandidates(res)

	case "rulestats":
		p := ot.buildPlan(tb, d)
		_, metrics, err := ot.explore(p)
		if err != nil {
			return fmt.Sprintf("error: %s\n", err)
		}
		ot.checkExpectedRules(tb, d, appliedRules(metrics))
		return formatRuleStats(metrics)

	default:
		d.Fatalf(tb, "unsupported command: %s", d.Cmd)
		return ""
	}
}

func (ot *OptTester) buildPlan(tb testing.TB, d *datadriven.TestData) *memo.Plan {
	p, err := ot.builder.BuildPlan([]byte(d.Input))
	if err != nil {
		d.Fatalf(tb, "%v", err)
	}
	return p
}

func (ot *OptTester) rule(tb testing.TB, d *datadriven.TestData) xform.Rule {
	if ot.Flags.Rule == xform.InvalidRuleName {
		d.Fatalf(tb, "%s requires a rule argument", d.Cmd)
	}
	return xform.RuleByName(ot.Flags.Rule)
}

func (ot *OptTester) searchContext() *xform.SearchContext {
	settings := xform.DefaultSettings()
	settings.DisabledRules = ot.Flags.DisableRules.Copy()
	if ot.Flags.MaxCandidates > 0 {
		settings.MaxCandidates = ot.Flags.MaxCandidates
	}
	return xform.NewSearchContext(ot.ctx, ot.Metadata(), settings)
}

func (ot *OptTester) explore(p *memo.Plan) ([]*memo.Plan, *xform.ExplorerMetrics, error) {
	metrics := xform.NewExplorerMetrics(metric.NewRegistry())
	res, err := xform.NewExplorer(ot.searchContext(), metrics).Explore(p)
	return res, metrics, err
}

func (ot *OptTester) checkExpectedRules(tb testing.TB, d *datadriven.TestData, seen xform.RuleSet) {
	var unseen, unexpected []string
	ot.Flags.ExpectedRules.ForEach(func(r xform.RuleName) {
		if !seen.Contains(r) {
			unseen = append(unseen, r.String())
		}
	})
	ot.Flags.UnexpectedRules.ForEach(func(r xform.RuleName) {
		if seen.Contains(r) {
			unexpected = append(unexpected, r.String())
		}
	})
	if len(unseen) > 0 {
		d.Fatalf(tb, "expected to see %s, but was not triggered. Did see %s",
			strings.Join(unseen, ", "), seen)
	}
	if len(unexpected) > 0 {
		d.Fatalf(tb, "expected not to see %s, but it was triggered", strings.Join(unexpected, ", "))
	}
}

func (ot *OptTester) formatTables(tabs []opt.TableID) string {
	var buf strings.Builder
	md := ot.Metadata()
	for _, tab := range tabs {
		tm := md.TableMeta(tab)
		tp := treeprint.NewWithRoot("TABLE " + tm.Name)
		for i := 0; i < tm.ColumnCount; i++ {
			cm := md.ColumnMeta(tab.ColumnID(i))
			tp.AddNode(fmt.Sprintf("%s:%d %s", cm.Alias, cm.MetaID, cm.Type))
		}
		buf.WriteString(tp.String())
	}
	return buf.String()
}

func (ot *OptTester) formatCandidates(res []*memo.Plan) string {
	if len(res) == 0 {
		return "no candidates\n"
	}
	var buf strings.Builder
	for i, p := range res {
		if len(res) > 1 {
			fmt.Fprintf(&buf, "candidate %d:\n", i+1)
		}
		buf.WriteString(p.Format(ot.Metadata()))
	}
	return buf.String()
}

func appliedRules(metrics *xform.ExplorerMetrics) xform.RuleSet {
	var res xform.RuleSet
	for _, r := range xform.AllRules() {
		if testutil.ToFloat64(metrics.Candidates.WithLabelValues(r.Name().String())) > 0 {
			res.Add(r.Name())
		}
	}
	return res
}

func formatRuleStats(metrics *xform.ExplorerMetrics) string {
	var buf strings.Builder
	for _, r := range xform.AllRules() {
		name := r.Name().String()
		fmt.Fprintf(&buf, "%s: matches=%d rejections=%d candidates=%d\n", name,
			int(testutil.ToFloat64(metrics.Matches.WithLabelValues(name))),
			int(testutil.ToFloat64(metrics.Rejections.WithLabelValues(name))),
			int(testutil.ToFloat64(metrics.Candidates.WithLabelValues(name))),
		)
	}
	return buf.String()
}

func ruleNamesToRuleSet(args []string) (xform.RuleSet, error) {
	var result xform.RuleSet
	for _, r := range args {
		rn, ok := xform.RuleNameByName(r)
		if !ok {
			return result, errors.Newf("rule '%s' does not exist", r)
		}
		result.Add(rn)
	}
	return result, nil
}

// Set parses an argument that refers to a flag.
// See OptTester.RunCommand for supported flags.
func (f *OptTesterFlags) Set(arg datadriven.CmdArg) error {
	switch arg.Key {
	case "disable":
		if len(arg.Vals) == 0 {
			return errors.New("disable requires arguments")
		}
		var err error
		if f.DisableRules, err = ruleNamesToRuleSet(arg.Vals); err != nil {
			return err
		}

	case "rule":
		if len(arg.Vals) != 1 {
			return errors.New("rule requires one argument")
		}
		rn, ok := xform.RuleNameByName(arg.Vals[0])
		if !ok {
			return errors.Newf("rule '%s' does not exist", arg.Vals[0])
		}
		f.Rule = rn

	case "expect":
		var err error
		if f.ExpectedRules, err = ruleNamesToRuleSet(arg.Vals); err != nil {
			return err
		}

	case "expect-not":
		var err error
		if f.UnexpectedRules, err = ruleNamesToRuleSet(arg.Vals); err != nil {
			return err
		}

	case "max":
		if len(arg.Vals) != 1 {
			return errors.New("max requires one argument")
		}
		n, err := strconv.Atoi(arg.Vals[0])
		if err != nil || n <= 0 {
			return errors.Newf("invalid max %q", arg.Vals[0])
		}
		f.MaxCandidates = n

	default:
		return errors.Newf("unknown argument: %s", arg.Key)
	}
	return nil
}
