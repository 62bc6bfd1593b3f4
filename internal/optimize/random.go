package optimize

import (
	"context"
	"log/slog"

	"github.com/ecodesign-mdao/lca-core/pkg/utils"
)

// defaultEvaluations bounds a run whose options set no limit at all.
const defaultEvaluations = 100

// RandomSearch samples the design space uniformly within bounds. It is the
// reference optimizer for tests and the demo; production algorithms drive the
// Problem from outside.
type RandomSearch struct {
	log *slog.Logger
}

// NewRandomSearch creates a random search optimizer.
func NewRandomSearch(log *slog.Logger) *RandomSearch {
	if log == nil {
		log = slog.Default()
	}
	return &RandomSearch{log: log}
}

// Minimize evaluates uniformly sampled candidates until a stop condition
// holds and returns the non-dominated set. Evaluation errors abort the run;
// NaN objectives from failed scoring are archived and never dominate.
func (r *RandomSearch) Minimize(ctx context.Context, p *Problem, opts Options) (*Result, error) {
	if opts.MaxEvaluations == 0 && opts.MaxDuration == 0 && opts.NoImprovementWindow == 0 {
		opts.MaxEvaluations = defaultEvaluations
	}
	rng := utils.NewRandSource(opts.Seed)
	lower, upper := p.Bounds()
	archive := NewArchive()
	term := newTermination(opts)

	for !term.done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x := make([]float64, p.Dim())
		for i := range x {
			x[i] = rng.UniformFloat64(lower[i], upper[i])
		}
		c, err := p.EvaluateCandidate(ctx, x)
		if err != nil {
			return nil, err
		}
		improved := archive.Add(c)
		term.observe(improved)
		if improved {
			r.log.Debug("new non-dominated candidate", "id", c.ID, "objectives", c.F)
		}
	}

	return &Result{Set: archive.Front(), Evaluations: term.evals}, nil
}
