package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecalcCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Run one recalculation pass over the engine group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, _, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			report, err := eng.Recalculate(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("updated %d exchange(s), %d failure(s)\n", report.Updated, len(report.Failed))
			for _, f := range report.Failed {
				fmt.Printf("  %s -> %s [%s]: %v\n", f.Parent, f.Target, f.Formula, f.Err)
			}
			return nil
		},
	}
}
