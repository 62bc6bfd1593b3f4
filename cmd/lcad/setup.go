package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSetupCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the configured nodes and register the configured mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, cfg, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := applySetup(ctx, eng, cfg); err != nil {
				return err
			}
			fmt.Printf("created %d node(s), registered %d mapping(s)\n", len(cfg.Nodes), len(cfg.Mappings))
			return nil
		},
	}
}
