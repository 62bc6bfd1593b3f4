package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove all engine-managed parameters and their exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, _, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Cleanup(ctx); err != nil {
				return err
			}
			fmt.Println("engine state cleaned up")
			return nil
		},
	}
}
