// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/errors"
)

// DefaultMaxCandidates bounds the number of plans an Explorer produces when
// the settings do not say otherwise.
const DefaultMaxCandidates = 64

// Settings holds the search-wide knobs that rules and the Explorer consult.
// Settings are read-only during a search.
type Settings struct {
	// DisabledRules are never applied.
	DisabledRules RuleSet

	// MaxCandidates bounds the number of distinct plans produced by an
	// Explorer. Zero or negative means DefaultMaxCandidates.
	MaxCandidates int

	// Verbosity is the log verbosity requested for the search. Tools apply it
	// with log.SetVerbosity; rules do not read it.
	Verbosity log.Level
}

// DefaultSettings returns settings with every rule enabled.
func DefaultSettings() *Settings {
	return &Settings{MaxCandidates: DefaultMaxCandidates}
}

// IsDisabled returns true if the rule must not be applied.
func (s *Settings) IsDisabled(r RuleName) bool {
	return s.DisabledRules.Contains(r)
}

// maxCandidates returns MaxCandidates or its default.
func (s *Settings) maxCandidates() int {
	if s.MaxCandidates <= 0 {
		return DefaultMaxCandidates
	}
	return s.MaxCandidates
}

// settingsFile is the TOML representation of Settings:
//
//	disabled_rules = ["JoinCommutativity"]
//	max_candidates = 16
//	verbosity = 2
type settingsFile struct {
	DisabledRules []string `toml:"disabled_rules"`
	MaxCandidates *int     `toml:"max_candidates"`
	Verbosity     int32    `toml:"verbosity"`
}

// ParseSettings parses settings in TOML format. Keys that are absent keep
// their default values; unknown keys and rule names are errors.
func ParseSettings(data string) (*Settings, error) {
	var f settingsFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf("unknown settings: %s", strings.Join(keys, ", "))
	}

	s := DefaultSettings()
	for _, name := range f.DisabledRules {
		r, ok := RuleNameByName(name)
		if !ok {
			return nil, errors.Newf("unknown rule %q", name)
		}
		s.DisabledRules.Add(r)
	}
	if f.MaxCandidates != nil {
		if *f.MaxCandidates <= 0 {
			return nil, errors.Newf("max_candidates must be positive, got %d", *f.MaxCandidates)
		}
		s.MaxCandidates = *f.MaxCandidates
	}
	s.Verbosity = log.Level(f.Verbosity)
	return s, nil
}

// LoadSettings reads settings from a TOML file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading settings")
	}
	s, err := ParseSettings(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return s, nil
}
