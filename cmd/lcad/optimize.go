package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecodesign-mdao/lca-core/internal/engine"
	"github.com/ecodesign-mdao/lca-core/internal/metrics"
	"github.com/ecodesign-mdao/lca-core/internal/optimize"
	"github.com/ecodesign-mdao/lca-core/internal/scoring"
	"github.com/ecodesign-mdao/lca-core/internal/sim"
	"github.com/ecodesign-mdao/lca-core/pkg/config"
	"github.com/ecodesign-mdao/lca-core/pkg/logger"
)

func newOptimizeCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Run the configured optimization study",
		Long: `Applies the configured nodes and mappings, builds the evaluation bridge
over the configured methods and scoring requests, and minimizes the configured
objectives with a random search. Design variables drive the mapped simulation
outputs directly.`,
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
			return runOptimize(ctx, eng, cfg, os.Stdout)
		},
	}
}

// runOptimize builds the scoring model from the configuration and minimizes
// the configured objectives over the design variables.
func runOptimize(ctx context.Context, eng *engine.Engine, cfg *config.Config, out io.Writer) error {
	oc := cfg.Optimization
	if oc == nil || !oc.Enabled {
		return fmt.Errorf("optimization not enabled in config")
	}
	if len(cfg.Scoring) == 0 {
		return fmt.Errorf("no scoring requests configured; add a scoring section to the config")
	}

	scorer, err := buildScorer(eng, cfg)
	if err != nil {
		return err
	}
	bridge := scoring.New(eng, scorer, scoring.Options{
		Metrics: metrics.NewCollector(),
		Logger:  logger.Default,
	})

	requests := make([]scoring.Request, 0, len(cfg.Scoring))
	for _, s := range cfg.Scoring {
		requests = append(requests, scoring.Request{
			Name:           s.Name,
			FunctionalUnit: s.Demand(),
			Method:         s.Method,
		})
	}
	comp, err := scoring.NewComponent(ctx, "lca", bridge, requests)
	if err != nil {
		return err
	}
	model := sim.NewModel()
	if err := model.Add(comp); err != nil {
		return err
	}

	vars := make([]optimize.DesignVar, 0, len(oc.DesignVars))
	varNames := make(map[string]bool, len(oc.DesignVars))
	for _, v := range oc.DesignVars {
		vars = append(vars, optimize.DesignVar{Name: v.Name, Size: v.Size, Lower: v.Lower, Upper: v.Upper})
		varNames[v.Name] = true
	}
	// Without an upstream discipline every mapped source variable must be a
	// design variable, or the bridge aborts on the first evaluation.
	for _, input := range comp.Inputs() {
		if !varNames[input] {
			return fmt.Errorf("mapped source variable %s is not covered by a design variable", input)
		}
	}

	problem, err := optimize.NewProblem(model, vars, oc.Objectives, oc.Constraints)
	if err != nil {
		return err
	}

	maxDuration, err := oc.GetMaxDuration()
	if err != nil {
		return err
	}
	result, err := optimize.NewRandomSearch(logger.Default).Minimize(ctx, problem, optimize.Options{
		MaxEvaluations:      oc.MaxEvaluations,
		MaxDuration:         maxDuration,
		NoImprovementWindow: oc.NoImprovementWindow,
		Seed:                oc.Seed,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "evaluated %d candidates, %d non-dominated\n\n", result.Evaluations, len(result.Set))
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(frontHeader(oc), "\t"))
	for _, c := range result.Set {
		cells := make([]string, 0, len(c.X)+len(c.F))
		for _, x := range c.X {
			cells = append(cells, fmt.Sprintf("%.4g", x))
		}
		for _, f := range c.F {
			cells = append(cells, fmt.Sprintf("%.4g", f))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// frontHeader names the columns of the printed front: one per design-vector
// slot, then one per objective.
func frontHeader(oc *config.Optimization) []string {
	var header []string
	for _, v := range oc.DesignVars {
		size := v.Size
		if size <= 1 {
			header = append(header, strings.ToUpper(v.Name))
			continue
		}
		for i := 0; i < size; i++ {
			header = append(header, fmt.Sprintf("%s[%d]", strings.ToUpper(v.Name), i))
		}
	}
	for _, name := range oc.Objectives {
		header = append(header, strings.ToUpper(name))
	}
	return header
}
