// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/cascades/pkg/cli/exit"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/stretchr/testify/require"
)

const threeWayJoin = `
tables:
  - {name: a, columns: [a1]}
  - {name: b, columns: [b1]}
  - {name: c, columns: [c1]}
plan:
  op: join
  on: {eq: [b1, c1]}
  inputs:
    - op: join
      on: {eq: [a1, b1]}
      inputs:
        - {op: scan, table: a}
        - {op: scan, table: b}
    - {op: scan, table: c}
`

// runCLI runs the tool with the given arguments and returns what it wrote to
// stdout and stderr.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, log.ApplyConfig(os.Stderr, log.DefaultConfig()))
	})
	var out, errOut bytes.Buffer
	cmd := NewCascadesCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestFormat(t *testing.T) {
	plan := writeFile(t, "plan.yaml", threeWayJoin)
	out, _, err := runCLI(t, "format", plan)
	require.NoError(t, err)
	expected := `inner-join
├── columns: a1:1 b1:2 c1:3
├── inner-join
│   ├── columns: a1:1 b1:2
│   ├── scan a
│   │   └── columns: a1:1
│   ├── scan b
│   │   └── columns: b1:2
│   └── on: a1 = b1
├── scan c
│   └── columns: c1:3
└── on: b1 = c1
`
	require.Equal(t, expected, out)
}

func TestExplore(t *testing.T) {
	plan := writeFile(t, "plan.yaml", threeWayJoin)

	out, stderr, err := runCLI(t, "explore", "--disable=JoinCommutativity",
		"--metrics", "--log-level=INFO", plan)
	require.NoError(t, err)
	expected := `candidate 1:
inner-join
├── columns: a1:1 b1:2 c1:3
├── scan a
│   └── columns: a1:1
├── inner-join
│   ├── columns: b1:2 c1:3
│   ├── scan b
│   │   └── columns: b1:2
│   ├── scan c
│   │   └── columns: c1:3
│   ├── on: b1 = c1
│   └── projection
│       ├── b1:2
│       └── c1:3
└── on: a1 = b1
`
	require.True(t, strings.HasPrefix(out, expected), out)
	require.Contains(t, out, `opt_rule_candidates{rule="JoinAssociativity"} 1`)
	require.Contains(t, out, `opt_rule_matches{rule="JoinAssociativity"} 1`)
	require.Contains(t, stderr, "found 1 plans")

	// The settings file bounds the search; flags override it.
	config := writeFile(t, "settings.toml", "max_candidates = 1\n")
	out, _, err = runCLI(t, "explore", "--config", config, plan)
	require.NoError(t, err)
	require.Contains(t, out, "candidate 1:")
	require.NotContains(t, out, "candidate 2:")
	require.NotContains(t, out, "opt_rule_candidates")

	out, _, err = runCLI(t, "explore", "--config", config, "--max-candidates=2", plan)
	require.NoError(t, err)
	require.Contains(t, out, "candidate 2:")
}

func TestApply(t *testing.T) {
	plan := writeFile(t, "plan.yaml", threeWayJoin)

	// Commutativity rewrites the root and the child join.
	out, _, err := runCLI(t, "apply", "--rule=JoinCommutativity", plan)
	require.NoError(t, err)
	require.Contains(t, out, "candidate 2:")
	require.NotContains(t, out, "candidate 3:")

	out, _, err = runCLI(t, "apply", "--rule=JoinAssociativity", "--disable=JoinAssociativity", plan)
	require.NoError(t, err)
	require.Equal(t, "no candidates\n", out)
}

func TestRules(t *testing.T) {
	out, _, err := runCLI(t, "rules", "--disable=JoinCommutativity")
	require.NoError(t, err)
	require.Contains(t, out, "(join (join * *) *)")
	require.Contains(t, out, "(2 rules)")
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "JoinAssociativity"):
			require.Contains(t, line, "true")
		case strings.Contains(line, "JoinCommutativity"):
			require.Contains(t, line, "false")
		}
	}
}

func TestErrors(t *testing.T) {
	plan := writeFile(t, "plan.yaml", threeWayJoin)
	badPlan := writeFile(t, "bad.yaml", "plan: {op: scan, table: nope}\n")
	badConfig := writeFile(t, "settings.toml", "max_candidates = -1\n")

	testCases := []struct {
		args     []string
		expected string
		code     exit.Code
	}{
		{
			args:     []string{"apply", "--rule=Nope", plan},
			expected: `unknown rule "Nope"`,
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"explore", "--disable=Nope", plan},
			expected: `unknown rule "Nope"`,
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"explore", "--bogus", plan},
			expected: "unknown flag: --bogus",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"explore", "--log-level=LOUD", plan},
			expected: `unknown log level "LOUD"`,
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"explore", "--max-candidates=-2", plan},
			expected: "--max-candidates must not be negative",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"format", filepath.Join(t.TempDir(), "missing.yaml")},
			expected: "reading plan spec",
			code:     exit.InvalidInput(),
		},
		{
			args:     []string{"format", badPlan},
			expected: `unknown table "nope"`,
			code:     exit.InvalidInput(),
		},
		{
			args:     []string{"explore", "--config", badConfig, plan},
			expected: "max_candidates must be positive",
			code:     exit.InvalidInput(),
		},
		{
			args:     []string{"apply", plan},
			expected: `required flag(s) "rule" not set`,
			code:     exit.UnspecifiedError(),
		},
		{
			args:     []string{"format"},
			expected: "accepts 1 arg(s), received 0",
			code:     exit.UnspecifiedError(),
		},
	}
	for _, tc := range testCases {
		t.Run(strings.Join(tc.args[:len(tc.args)-1], " "), func(t *testing.T) {
			_, _, err := runCLI(t, tc.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expected)
			require.Equal(t, tc.code, exitCode(err))
		})
	}
}
