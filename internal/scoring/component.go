package scoring

import (
	"context"
	"sort"

	"github.com/ecodesign-mdao/lca-core/internal/sim"
)

// NewComponent adapts the bridge into a simulation component: its inputs are
// the source variables of every registered parameter, its outputs the request
// names. Adding it to a model makes a plain model run produce scores.
// Construct it after all mappings are registered; it snapshots the sourced
// parameters once.
func NewComponent(ctx context.Context, name string, b *Bridge, requests []Request) (*sim.FuncComponent, error) {
	params, err := b.eng.Store().ParametersWithSource(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(params))
	var inputs []string
	for _, p := range params {
		if !seen[p.SourceVariable] {
			seen[p.SourceVariable] = true
			inputs = append(inputs, p.SourceVariable)
		}
	}
	sort.Strings(inputs)

	outputs := make([]sim.OutputSpec, len(requests))
	for i, req := range requests {
		outputs[i] = sim.OutputSpec{Name: req.Name}
	}

	fn := func(ctx context.Context, in, out map[string][]float64) error {
		values := make(map[string]float64, len(in))
		for k := range in {
			values[k] = sim.Scalar(in, k)
		}
		scores, err := b.Evaluate(ctx, values, requests)
		if err != nil {
			return err
		}
		for i, req := range requests {
			out[req.Name] = []float64{scores[i]}
		}
		return nil
	}
	return sim.NewComponent(name, inputs, outputs, fn), nil
}
