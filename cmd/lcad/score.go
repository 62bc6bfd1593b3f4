package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecodesign-mdao/lca-core/internal/engine"
	"github.com/ecodesign-mdao/lca-core/internal/impact"
	"github.com/ecodesign-mdao/lca-core/pkg/config"
)

func newScoreCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Score the configured functional units against the current data model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, cfg, err := opts.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()
			return runScore(ctx, eng, cfg, os.Stdout)
		},
	}
}

// buildScorer assembles the impact collaborator from the configured methods.
func buildScorer(eng *engine.Engine, cfg *config.Config) (*impact.TraversalEngine, error) {
	if len(cfg.Methods) == 0 {
		return nil, fmt.Errorf("no impact methods configured; add a methods section to the config")
	}
	scorer := impact.NewTraversalEngine(eng.Store())
	for _, m := range cfg.Methods {
		for _, f := range m.Factors {
			scorer.SetFactor(m.Name, f.Flow.Key(), f.Factor)
		}
	}
	return scorer, nil
}

// runScore evaluates every configured scoring request against the graph as it
// currently stands. No synchronization pass runs; use recalc first if formula
// amounts are stale.
func runScore(ctx context.Context, eng *engine.Engine, cfg *config.Config, out io.Writer) error {
	if len(cfg.Scoring) == 0 {
		return fmt.Errorf("no scoring requests configured; add a scoring section to the config")
	}
	scorer, err := buildScorer(eng, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tSCORE")
	for _, s := range cfg.Scoring {
		score, err := scorer.Score(ctx, s.Demand(), s.Method)
		if err != nil {
			return fmt.Errorf("scoring request %s: %w", s.Name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%g\n", s.Name, s.Method, score)
	}
	return w.Flush()
}
