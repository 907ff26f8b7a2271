// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"fmt"
	"io"

	"github.com/cockroachdb/cascades/pkg/sql/opt/xform"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newRulesCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "list the transformation rules",
		Long: `
List the transformation rules, the pattern each one matches and whether the
current settings enable it.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cctx.settings()
			if err != nil {
				return err
			}
			printRules(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printRules(w io.Writer, s *xform.Settings) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"rule", "pattern", "enabled"})
	rules := xform.AllRules()
	for _, r := range rules {
		table.Append([]string{
			r.Name().String(),
			r.Pattern().String(),
			fmt.Sprint(!s.IsDisabled(r.Name())),
		})
	}
	table.Render()
	fmt.Fprintf(w, "(%d rules)\n", len(rules))
}
