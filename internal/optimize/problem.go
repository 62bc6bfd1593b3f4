// Package optimize exposes the evaluation pipeline to black-box
// multi-objective optimizers: a Problem flattens declared design variables
// into one vector, and one candidate evaluation is one model run followed by
// reads of the declared objective and constraint outputs. Real optimization
// algorithms live outside this module; a reference random search is included
// for tests and the demo.
package optimize

import (
	"context"
	"fmt"

	"github.com/ecodesign-mdao/lca-core/pkg/utils"
)

// ShapeError indicates a candidate vector whose length does not match the
// problem's flattened design space. Detected before any simulation run.
type ShapeError struct {
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("candidate has %d entries, design space has %d", e.Got, e.Want)
}

// MissingOutputError indicates a declared objective or constraint the model
// did not produce.
type MissingOutputError struct {
	Name string
	Err  error
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("model did not produce output %s: %v", e.Name, e.Err)
}

func (e *MissingOutputError) Unwrap() error {
	return e.Err
}

// Model is the slice of the simulation collaborator the optimization bridge
// drives.
type Model interface {
	SetInput(name string, values ...float64)
	Run(ctx context.Context) error
	Get(name string) (float64, error)
}

// DesignVar declares one design variable. Size > 1 declares a vector
// variable; every entry shares the same bounds.
type DesignVar struct {
	Name  string
	Size  int
	Lower float64
	Upper float64
}

// slot is the resolved layout of one design variable in the flat vector.
type slot struct {
	name   string
	offset int
	size   int
	lower  float64
	upper  float64
}

// Candidate is one evaluated design.
type Candidate struct {
	ID string
	// X is the flat design vector.
	X []float64
	// F holds the objective values, in declaration order. NaN marks a
	// failed score.
	F []float64
	// G holds the constraint values in g(x) <= 0 form.
	G []float64
}

// Problem binds a model to a flat design space and named outputs.
type Problem struct {
	model       Model
	slots       []slot
	dim         int
	objectives  []string
	constraints []string
}

// NewProblem lays out the design space. The layout is fixed for the problem's
// lifetime; candidate vectors are interpreted against it positionally.
func NewProblem(model Model, vars []DesignVar, objectives, constraints []string) (*Problem, error) {
	if model == nil {
		return nil, fmt.Errorf("problem requires a model")
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("problem requires at least one design variable")
	}
	if len(objectives) == 0 {
		return nil, fmt.Errorf("problem requires at least one objective")
	}

	p := &Problem{model: model, objectives: objectives, constraints: constraints}
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("design variable requires a name")
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("duplicate design variable %s", v.Name)
		}
		seen[v.Name] = true
		size := v.Size
		if size == 0 {
			size = 1
		}
		if size < 0 {
			return nil, fmt.Errorf("design variable %s has negative size", v.Name)
		}
		if v.Lower > v.Upper {
			return nil, fmt.Errorf("design variable %s has lower bound above upper", v.Name)
		}
		p.slots = append(p.slots, slot{
			name:   v.Name,
			offset: p.dim,
			size:   size,
			lower:  v.Lower,
			upper:  v.Upper,
		})
		p.dim += size
	}
	return p, nil
}

// Dim returns the flattened design space size.
func (p *Problem) Dim() int {
	return p.dim
}

// Objectives returns the declared objective names.
func (p *Problem) Objectives() []string {
	return p.objectives
}

// Constraints returns the declared constraint names.
func (p *Problem) Constraints() []string {
	return p.constraints
}

// Bounds returns the per-entry lower and upper bounds of the flat vector.
func (p *Problem) Bounds() (lower, upper []float64) {
	lower = make([]float64, p.dim)
	upper = make([]float64, p.dim)
	for _, s := range p.slots {
		for i := 0; i < s.size; i++ {
			lower[s.offset+i] = s.lower
			upper[s.offset+i] = s.upper
		}
	}
	return lower, upper
}

// EvaluateCandidate runs the model at x and reads the declared outputs. The
// shape check happens before any input is written, so a malformed candidate
// leaves the model untouched.
func (p *Problem) EvaluateCandidate(ctx context.Context, x []float64) (*Candidate, error) {
	if len(x) != p.dim {
		return nil, &ShapeError{Got: len(x), Want: p.dim}
	}
	for _, s := range p.slots {
		p.model.SetInput(s.name, x[s.offset:s.offset+s.size]...)
	}
	if err := p.model.Run(ctx); err != nil {
		return nil, fmt.Errorf("model run failed: %w", err)
	}

	c := &Candidate{
		ID: utils.GenerateCandidateID(),
		X:  append([]float64(nil), x...),
		F:  make([]float64, len(p.objectives)),
		G:  make([]float64, len(p.constraints)),
	}
	for i, name := range p.objectives {
		v, err := p.model.Get(name)
		if err != nil {
			return nil, &MissingOutputError{Name: name, Err: err}
		}
		c.F[i] = v
	}
	for i, name := range p.constraints {
		v, err := p.model.Get(name)
		if err != nil {
			return nil, &MissingOutputError{Name: name, Err: err}
		}
		c.G[i] = v
	}
	return c, nil
}
