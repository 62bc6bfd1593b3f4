// Package sim defines the simulation collaborator contract the
// synchronization engine drives, plus an in-process component model that
// implements it. Disciplines are registered as components with named inputs
// and outputs; one Run executes them in registration order.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownValue indicates a value that was never declared or computed
	ErrUnknownValue = errors.New("unknown value")
	// ErrDuplicateOutput indicates two components declaring the same output
	ErrDuplicateOutput = errors.New("duplicate output")
)

// Source is the read contract the scoring path uses to pull current
// simulation outputs.
type Source interface {
	Get(name string) (float64, error)
}

// Runner triggers one full simulation run.
type Runner interface {
	Run(ctx context.Context) error
}

// OutputSpec declares one component output.
type OutputSpec struct {
	Name    string
	Default float64
	Units   string
}

// ComputeFunc computes a component's outputs from its inputs. Values are
// vectors; scalars are vectors of length one.
type ComputeFunc func(ctx context.Context, in map[string][]float64, out map[string][]float64) error

// Component is one discipline in the model.
type Component interface {
	Name() string
	Inputs() []string
	Outputs() []OutputSpec
	Compute(ctx context.Context, in map[string][]float64, out map[string][]float64) error
}

// FuncComponent is a Component backed by a plain function.
type FuncComponent struct {
	name    string
	inputs  []string
	outputs []OutputSpec
	fn      ComputeFunc
}

// NewComponent creates a function-backed component.
func NewComponent(name string, inputs []string, outputs []OutputSpec, fn ComputeFunc) *FuncComponent {
	return &FuncComponent{name: name, inputs: inputs, outputs: outputs, fn: fn}
}

func (c *FuncComponent) Name() string { return c.name }

func (c *FuncComponent) Inputs() []string { return c.inputs }

func (c *FuncComponent) Outputs() []OutputSpec { return c.outputs }

func (c *FuncComponent) Compute(ctx context.Context, in map[string][]float64, out map[string][]float64) error {
	return c.fn(ctx, in, out)
}

// Model is a sequential component model. Components run in registration
// order; outputs of earlier components feed inputs of later ones.
type Model struct {
	mu         sync.RWMutex
	components []Component
	values     map[string][]float64
	units      map[string]string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		values: make(map[string][]float64),
		units:  make(map[string]string),
	}
}

// Add registers a component. Output names must be unique across the model.
func (m *Model) Add(c Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	declared := make(map[string]bool)
	for _, existing := range m.components {
		for _, spec := range existing.Outputs() {
			declared[spec.Name] = true
		}
	}
	for _, spec := range c.Outputs() {
		if declared[spec.Name] {
			return fmt.Errorf("%w: %s (component %s)", ErrDuplicateOutput, spec.Name, c.Name())
		}
	}
	m.components = append(m.components, c)
	for _, spec := range c.Outputs() {
		if _, ok := m.values[spec.Name]; !ok {
			m.values[spec.Name] = []float64{spec.Default}
		}
		if spec.Units != "" {
			m.units[spec.Name] = spec.Units
		}
	}
	return nil
}

// SetInput assigns a named input value.
func (m *Model) SetInput(name string, values ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]float64, len(values))
	copy(v, values)
	m.values[name] = v
}

// DeclareOutput seeds a named output with a default value. Implements the
// declarer contract the mapping registrar consumes at setup time.
func (m *Model) DeclareOutput(name string, defaultValue float64, units string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[name]; !ok {
		m.values[name] = []float64{defaultValue}
	}
	if units != "" {
		m.units[name] = units
	}
	return nil
}

// Get returns the scalar view of a value (its first element).
func (m *Model) Get(name string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	if !ok || len(v) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownValue, name)
	}
	return v[0], nil
}

// GetVec returns a copy of a vector value.
func (m *Model) GetVec(name string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValue, name)
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

// Units returns the declared units of a value, if any.
func (m *Model) Units(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.units[name]
}

// Run executes every component in registration order. A component's inputs
// must all be present when it runs; its outputs are merged into the model
// before the next component starts.
func (m *Model) Run(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.components {
		if err := ctx.Err(); err != nil {
			return err
		}
		in := make(map[string][]float64, len(c.Inputs()))
		for _, name := range c.Inputs() {
			v, ok := m.values[name]
			if !ok {
				return fmt.Errorf("component %s: %w: input %s", c.Name(), ErrUnknownValue, name)
			}
			cp := make([]float64, len(v))
			copy(cp, v)
			in[name] = cp
		}
		out := make(map[string][]float64)
		if err := c.Compute(ctx, in, out); err != nil {
			return fmt.Errorf("component %s failed: %w", c.Name(), err)
		}
		for name, v := range out {
			m.values[name] = v
		}
	}
	return nil
}

// Scalar reads the first element of a named vector from a compute input map.
func Scalar(values map[string][]float64, name string) float64 {
	v := values[name]
	if len(v) == 0 {
		return 0
	}
	return v[0]
}
