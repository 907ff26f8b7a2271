// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"fmt"
	"io"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/opt/planspec"
	"github.com/cockroachdb/cascades/pkg/sql/opt/xform"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/cascades/pkg/util/metric"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/spf13/cobra"
)

func newFormatCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "format <plan.yaml>",
		Short: "print a plan",
		Long: `
Load a plan description and print the plan tree, with the columns that every
node produces.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, p, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), p.Format(md))
			return nil
		},
	}
}

func newApplyCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply --rule=<name> <plan.yaml>",
		Short: "apply one rule to a plan",
		Long: `
Apply a single rule at every node of a plan and print each rewritten plan.
The rewritten plans are not rewritten further.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := xform.RuleNameByName(cctx.ruleName)
			if !ok {
				return errors.Mark(errors.Newf("unknown rule %q", cctx.ruleName), errFlag)
			}
			s, err := cctx.settings()
			if err != nil {
				return err
			}
			md, p, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			defer log.SetVerbosity(s.Verbosity)()

			ctx := logtags.AddTag(cmd.Context(), "plan", args[0])
			sc := xform.NewSearchContext(ctx, md, s)
			res, err := xform.NewExplorer(sc, nil).ApplyRule(xform.RuleByName(r), p)
			if err != nil {
				return err
			}
			log.Infof(ctx, "%s produced %d plans", r, len(res))
			printCandidates(cmd.OutOrStdout(), md, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&cctx.ruleName, "rule", cctx.ruleName, "name of the rule to apply")
	_ = cmd.MarkFlagRequired("rule")
	return cmd
}

func newExploreCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [--config=<settings.toml>] [--metrics] <plan.yaml>",
		Short: "print every plan reachable through the enabled rules",
		Long: `
Apply the enabled rules at every node of a plan and of every plan derived
from it, until no new plan appears or the candidate limit is reached. Print
the distinct plans in the order they were found.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cctx.settings()
			if err != nil {
				return err
			}
			md, p, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			defer log.SetVerbosity(s.Verbosity)()

			ctx := logtags.AddTag(cmd.Context(), "plan", args[0])
			reg := metric.NewRegistry()
			e := xform.NewExplorer(xform.NewSearchContext(ctx, md, s), xform.NewExplorerMetrics(reg))
			res, err := e.Explore(p)
			if err != nil {
				return err
			}
			log.Infof(ctx, "found %d plans", len(res))

			w := cmd.OutOrStdout()
			printCandidates(w, md, res)
			if cctx.showMetrics {
				fmt.Fprintln(w)
				return metric.PrintAsText(w, reg)
			}
			return nil
		},
	}
	cctx.addExploreFlags(cmd.Flags())
	return cmd
}

func loadPlan(path string) (*opt.Metadata, *memo.Plan, error) {
	md, p, err := planspec.ParseFile(path)
	if err != nil {
		return nil, nil, errors.Mark(err, errInvalidInput)
	}
	return md, p, nil
}

func printCandidates(w io.Writer, md *opt.Metadata, res []*memo.Plan) {
	if len(res) == 0 {
		fmt.Fprintln(w, "no candidates")
		return
	}
	for i, p := range res {
		fmt.Fprintf(w, "candidate %d:\n", i+1)
		fmt.Fprint(w, p.Format(md))
	}
}
