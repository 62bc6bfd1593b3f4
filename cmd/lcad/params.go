package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newParamsCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Inspect engine-managed parameters",
	}
	cmd.AddCommand(newParamsListCmd(opts))
	return cmd
}

func newParamsListCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all parameters and their current values",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, _, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			params, err := eng.Store().Parameters(ctx)
			if err != nil {
				return err
			}
			if len(params) == 0 {
				fmt.Println("no parameters")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAMOUNT\tSOURCE\tUNITS")
			for _, p := range params {
				fmt.Fprintf(w, "%s\t%g\t%s\t%s\n", p.Name, p.Amount, p.SourceVariable, p.TargetUnits)
			}
			return w.Flush()
		},
	}
}
