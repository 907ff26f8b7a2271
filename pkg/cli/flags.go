// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"io"
	"os"

	"github.com/cockroachdb/cascades/pkg/sql/opt/xform"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

// cliContext holds the flag values of one command tree.
type cliContext struct {
	// configPath names a TOML settings file. Flags override its values.
	configPath string
	// disable lists rules that are not applied, in addition to those
	// disabled by the settings file.
	disable []string
	// maxCandidates overrides the settings when positive.
	maxCandidates int
	// verbosity overrides the settings when non-negative.
	verbosity int
	logFormat string
	logLevel  string

	ruleName    string
	showMetrics bool
}

func (c *cliContext) setDefaults() {
	*c = cliContext{
		verbosity: -1,
		logFormat: log.DefaultConfig().Format,
		logLevel:  log.DefaultConfig().MinSeverity.String(),
	}
}

func (c *cliContext) addGlobalFlags(f *pflag.FlagSet) {
	f.StringVar(&c.configPath, "config", c.configPath,
		"TOML file holding the optimizer settings")
	f.StringSliceVar(&c.disable, "disable", c.disable,
		"comma-separated list of rules that must not be applied")
	f.IntVarP(&c.verbosity, "verbosity", "v", c.verbosity,
		"verbosity of the optimizer trace; negative uses the settings file")
	f.StringVar(&c.logFormat, "log-format", c.logFormat,
		`format of the log entries written to stderr ("crdb-v1" or "json")`)
	f.StringVar(&c.logLevel, "log-level", c.logLevel,
		"minimum severity of the log entries written to stderr (INFO, WARNING or ERROR)")
}

func (c *cliContext) addExploreFlags(f *pflag.FlagSet) {
	f.IntVar(&c.maxCandidates, "max-candidates", c.maxCandidates,
		"maximum number of plans produced; zero uses the settings file")
	f.BoolVar(&c.showMetrics, "metrics", c.showMetrics,
		"print the rule counters in Prometheus text format")
}

func (c *cliContext) setupLogging(w io.Writer) error {
	sev, ok := log.SeverityByName(c.logLevel)
	if !ok {
		return errors.Mark(errors.Newf("unknown log level %q", c.logLevel), errFlag)
	}
	cfg := log.DefaultConfig()
	cfg.Format = c.logFormat
	cfg.MinSeverity = sev
	if f, ok := w.(*os.File); ok {
		cfg.Color = isatty.IsTerminal(f.Fd())
	}
	if err := log.ApplyConfig(w, cfg); err != nil {
		return errors.Mark(err, errFlag)
	}
	return nil
}

// settings loads the settings file, if any, and applies the flag overrides.
func (c *cliContext) settings() (*xform.Settings, error) {
	s := xform.DefaultSettings()
	if c.configPath != "" {
		var err error
		if s, err = xform.LoadSettings(c.configPath); err != nil {
			return nil, errors.Mark(err, errInvalidInput)
		}
	}
	for _, name := range c.disable {
		r, ok := xform.RuleNameByName(name)
		if !ok {
			return nil, errors.Mark(errors.Newf("unknown rule %q", name), errFlag)
		}
		s.DisabledRules.Add(r)
	}
	switch {
	case c.maxCandidates > 0:
		s.MaxCandidates = c.maxCandidates
	case c.maxCandidates < 0:
		return nil, errors.Mark(
			errors.Newf("--max-candidates must not be negative, got %d", c.maxCandidates), errFlag)
	}
	if c.verbosity >= 0 {
		s.Verbosity = log.Level(c.verbosity)
	}
	return s, nil
}
