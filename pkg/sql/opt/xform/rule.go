// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package xform contains the exploration rules of the optimizer and the
// machinery to apply them to plan trees.
//
// A rule has three parts. Its pattern is a structural filter that is cheap to
// evaluate. Its check decides whether the rewrite is admissible once the
// pattern matched. Its transform produces zero or more plans that are
// equivalent to the input. Zero plans is a normal outcome, not an error.
// Rules never mutate their input, and they hold no state, so the same
// descriptor serves any number of concurrent searches.
//
// The search loop that decides where to apply rules and which candidates to
// keep belongs to the caller. Explorer is a simple exhaustive driver used by
// tools and tests.
package xform

import (
	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/pattern"
	"github.com/cockroachdb/cascades/pkg/util/buildutil"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
)

// Rule is an exploration rule.
type Rule interface {
	// Name identifies the rule.
	Name() RuleName

	// Pattern returns the shape of the plans the rule applies to.
	Pattern() *pattern.Pattern

	// Check returns true if the rule may be applied to a plan that matches its
	// pattern.
	Check(p *memo.Plan, sc *SearchContext) bool

	// Transform returns plans that produce the same rows as p. It must only be
	// called on plans that passed Check.
	Transform(p *memo.Plan, sc *SearchContext) []*memo.Plan
}

// ruleTab is the static table of rule descriptors, indexed by name.
var ruleTab = [NumRuleNames]Rule{
	JoinAssociativity: joinAssociativity{},
	JoinCommutativity: joinCommutativity{},
}

// AllRules returns every rule, ordered by name.
func AllRules() []Rule {
	res := make([]Rule, 0, NumRuleNames-1)
	for _, r := range ruleTab {
		if r != nil {
			res = append(res, r)
		}
	}
	return res
}

// RuleByName returns the descriptor for the given rule.
func RuleByName(name RuleName) Rule {
	if name == InvalidRuleName || name >= NumRuleNames {
		panic(errors.AssertionFailedf("invalid rule name %d", name))
	}
	return ruleTab[name]
}

// RulesForOperator returns the rules whose pattern can match a plan node with
// the given operator.
func RulesForOperator(op opt.Operator) []Rule {
	var res []Rule
	for _, r := range AllRules() {
		p := r.Pattern()
		if p.Op() == op || p.IsLeaf() || p.IsMultiLeaf() {
			res = append(res, r)
		}
	}
	return res
}

// ruleOutcome records how far a rule application progressed.
type ruleOutcome uint8

const (
	ruleDisabled ruleOutcome = iota
	ruleNoMatch
	ruleRejected
	ruleApplied
)

// MatchAndApply runs a rule against the root of p: the pattern first, then the
// check, then the transform. It returns the rewritten plans, which are empty
// if the rule is disabled, does not match, or is not admissible.
func MatchAndApply(r Rule, p *memo.Plan, sc *SearchContext) []*memo.Plan {
	res, _ := matchAndApply(r, p, sc)
	return res
}

func matchAndApply(r Rule, p *memo.Plan, sc *SearchContext) ([]*memo.Plan, ruleOutcome) {
	if sc.Settings.IsDisabled(r.Name()) {
		return nil, ruleDisabled
	}
	if !r.Pattern().Matches(p) {
		return nil, ruleNoMatch
	}

	ctx := logtags.AddTag(sc.Ctx, "rule", r.Name())
	sc = sc.withContext(ctx)
	if !r.Check(p, sc) {
		log.VEventf(ctx, 3, "check rejected %s", p.Op())
		return nil, ruleRejected
	}

	res := r.Transform(p, sc)
	if buildutil.Invariants {
		for _, candidate := range res {
			memo.VerifyPlan(candidate)
			if !candidate.OutputCols().Equals(p.OutputCols()) {
				panic(errors.AssertionFailedf(
					"%s changed output columns from %s to %s",
					r.Name(), p.OutputCols(), candidate.OutputCols(),
				))
			}
		}
	}
	log.VEventf(ctx, 2, "produced %d candidates", len(res))
	return res, ruleApplied
}
