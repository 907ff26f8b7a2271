// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"fmt"
	"os"

	"github.com/cockroachdb/cascades/pkg/cli/exit"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Proxy to allow overrides in tests.
var osStderr = os.Stderr

var (
	errFlag         = errors.New("command-line flag error")
	errInvalidInput = errors.New("invalid input")
)

// NewCascadesCommand returns the root command of the cascades tool. Every
// call returns a fresh command tree with its own flag values.
func NewCascadesCommand() *cobra.Command {
	cctx := &cliContext{}
	cctx.setDefaults()

	cascadesCmd := &cobra.Command{
		Use:   "cascades [command] (flags)",
		Short: "join reordering rule explorer",
		Long: `
Loads relational plans described in YAML and applies the join reordering
rules to them.
`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cctx.setupLogging(cmd.ErrOrStderr())
		},
	}
	cascadesCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Mark(err, errFlag)
	})
	cctx.addGlobalFlags(cascadesCmd.PersistentFlags())

	cobra.EnableCommandSorting = false
	cascadesCmd.AddCommand(
		newRulesCmd(cctx),
		newFormatCmd(cctx),
		newApplyCmd(cctx),
		newExploreCmd(cctx),
	)
	return cascadesCmd
}

// Main is the entry point for the cascades binary.
func Main() {
	err := Run(os.Args[1:])
	log.Flush()
	if err != nil {
		fmt.Fprintf(osStderr, "ERROR: %v\n", err)
		exit.WithCode(exitCode(err))
	}
	exit.WithCode(exit.Success())
}

// Run executes the command line given by args.
func Run(args []string) error {
	cmd := NewCascadesCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func exitCode(err error) exit.Code {
	switch {
	case errors.Is(err, errFlag):
		return exit.CommandLineFlagError()
	case errors.Is(err, errInvalidInput):
		return exit.InvalidInput()
	case errors.HasAssertionFailure(err):
		return exit.UnspecifiedGoPanic()
	}
	return exit.UnspecifiedError()
}
