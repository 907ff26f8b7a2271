// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// RuleName enumerates the exploration rules. Each name has exactly one
// stateless descriptor in the rule table.
type RuleName uint16

const (
	InvalidRuleName RuleName = iota

	// JoinAssociativity rewrites (A join B) join C into A join (B join C).
	JoinAssociativity

	// JoinCommutativity swaps the inputs of a join.
	JoinCommutativity

	// NumRuleNames tracks the total count of rule names.
	NumRuleNames
)

var ruleNames = [NumRuleNames]string{
	InvalidRuleName:   "InvalidRuleName",
	JoinAssociativity: "JoinAssociativity",
	JoinCommutativity: "JoinCommutativity",
}

func (r RuleName) String() string {
	if r >= NumRuleNames {
		return "InvalidRuleName"
	}
	return ruleNames[r]
}

// SafeValue implements the redact.SafeValue interface.
func (RuleName) SafeValue() {}

// RuleNameByName looks up a rule name, ignoring case.
func RuleNameByName(name string) (RuleName, bool) {
	for i := InvalidRuleName + 1; i < NumRuleNames; i++ {
		if strings.EqualFold(ruleNames[i], name) {
			return i, true
		}
	}
	return InvalidRuleName, false
}

// RuleSet is a set of rule names. The zero value is empty.
type RuleSet struct {
	set *bitset.BitSet
}

// MakeRuleSet returns a set with the given rules.
func MakeRuleSet(rules ...RuleName) RuleSet {
	var s RuleSet
	for _, r := range rules {
		s.Add(r)
	}
	return s
}

// Add adds a rule to the set.
func (s *RuleSet) Add(r RuleName) {
	if s.set == nil {
		s.set = bitset.New(uint(NumRuleNames))
	}
	s.set.Set(uint(r))
}

// Remove removes a rule from the set.
func (s *RuleSet) Remove(r RuleName) {
	if s.set != nil {
		s.set.Clear(uint(r))
	}
}

// Contains returns true if the rule is in the set.
func (s RuleSet) Contains(r RuleName) bool {
	return s.set != nil && s.set.Test(uint(r))
}

// Len returns the number of rules in the set.
func (s RuleSet) Len() int {
	if s.set == nil {
		return 0
	}
	return int(s.set.Count())
}

// ForEach calls f for each rule in the set, in ascending order.
func (s RuleSet) ForEach(f func(r RuleName)) {
	if s.set == nil {
		return
	}
	for i, ok := s.set.NextSet(0); ok; i, ok = s.set.NextSet(i + 1) {
		f(RuleName(i))
	}
}

// Copy returns an independent copy of the set.
func (s RuleSet) Copy() RuleSet {
	if s.set == nil {
		return RuleSet{}
	}
	return RuleSet{set: s.set.Clone()}
}

func (s RuleSet) String() string {
	var names []string
	s.ForEach(func(r RuleName) { names = append(names, r.String()) })
	return "[" + strings.Join(names, ", ") + "]"
}
