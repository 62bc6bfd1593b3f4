package optimize

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeModel records inputs and serves canned outputs.
type fakeModel struct {
	inputs map[string][]float64
	runs   int
	runErr error
	// compute derives outputs from inputs on Run; optional.
	compute func(inputs map[string][]float64) map[string]float64
	outputs map[string]float64
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		inputs:  make(map[string][]float64),
		outputs: make(map[string]float64),
	}
}

func (m *fakeModel) SetInput(name string, values ...float64) {
	m.inputs[name] = append([]float64(nil), values...)
}

func (m *fakeModel) Run(ctx context.Context) error {
	m.runs++
	if m.runErr != nil {
		return m.runErr
	}
	if m.compute != nil {
		for k, v := range m.compute(m.inputs) {
			m.outputs[k] = v
		}
	}
	return nil
}

func (m *fakeModel) Get(name string) (float64, error) {
	v, ok := m.outputs[name]
	if !ok {
		return 0, fmt.Errorf("no output %s", name)
	}
	return v, nil
}

func TestProblemLayout(t *testing.T) {
	p, err := NewProblem(newFakeModel(), []DesignVar{
		{Name: "x", Lower: 0, Upper: 1},
		{Name: "z", Size: 2, Lower: -10, Upper: 10},
	}, []string{"f"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	if p.Dim() != 3 {
		t.Errorf("expected dim 3, got %d", p.Dim())
	}
	lower, upper := p.Bounds()
	wantLower := []float64{0, -10, -10}
	wantUpper := []float64{1, 10, 10}
	for i := range wantLower {
		if lower[i] != wantLower[i] || upper[i] != wantUpper[i] {
			t.Errorf("bounds[%d] = (%v, %v), want (%v, %v)", i, lower[i], upper[i], wantLower[i], wantUpper[i])
		}
	}
}

func TestProblemRejectsBadDeclarations(t *testing.T) {
	m := newFakeModel()
	cases := []struct {
		name string
		vars []DesignVar
		objs []string
	}{
		{"no variables", nil, []string{"f"}},
		{"no objectives", []DesignVar{{Name: "x"}}, nil},
		{"unnamed variable", []DesignVar{{Name: ""}}, []string{"f"}},
		{"duplicate variable", []DesignVar{{Name: "x"}, {Name: "x"}}, []string{"f"}},
		{"inverted bounds", []DesignVar{{Name: "x", Lower: 1, Upper: 0}}, []string{"f"}},
	}
	for _, tc := range cases {
		if _, err := NewProblem(m, tc.vars, tc.objs, nil); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestEvaluateCandidateShapeCheckedBeforeRun(t *testing.T) {
	m := newFakeModel()
	p, err := NewProblem(m, []DesignVar{{Name: "x", Size: 2}}, []string{"f"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	_, err = p.EvaluateCandidate(context.Background(), []float64{1.0})
	var shape *ShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shape.Got != 1 || shape.Want != 2 {
		t.Errorf("unexpected shape detail: %+v", shape)
	}
	if m.runs != 0 {
		t.Errorf("expected no model run on shape error, got %d", m.runs)
	}
	if len(m.inputs) != 0 {
		t.Errorf("expected no inputs written on shape error, got %v", m.inputs)
	}
}

func TestEvaluateCandidateUnflattensVectors(t *testing.T) {
	m := newFakeModel()
	m.compute = func(in map[string][]float64) map[string]float64 {
		return map[string]float64{
			"f": in["x"][0] + in["z"][0] + in["z"][1],
			"g": in["x"][0] - 1,
		}
	}
	p, err := NewProblem(m, []DesignVar{
		{Name: "x"},
		{Name: "z", Size: 2},
	}, []string{"f"}, []string{"g"})
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	c, err := p.EvaluateCandidate(context.Background(), []float64{2.0, 3.0, 4.0})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(m.inputs["x"]) != 1 || m.inputs["x"][0] != 2.0 {
		t.Errorf("expected x=[2], got %v", m.inputs["x"])
	}
	if len(m.inputs["z"]) != 2 || m.inputs["z"][0] != 3.0 || m.inputs["z"][1] != 4.0 {
		t.Errorf("expected z=[3 4], got %v", m.inputs["z"])
	}
	if c.F[0] != 9.0 {
		t.Errorf("expected f=9, got %v", c.F[0])
	}
	if c.G[0] != 1.0 {
		t.Errorf("expected g=1, got %v", c.G[0])
	}
	if c.ID == "" {
		t.Error("expected candidate id")
	}
}

func TestEvaluateCandidateMissingOutput(t *testing.T) {
	m := newFakeModel()
	p, err := NewProblem(m, []DesignVar{{Name: "x"}}, []string{"absent"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	_, err = p.EvaluateCandidate(context.Background(), []float64{1.0})
	var missing *MissingOutputError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingOutputError, got %v", err)
	}
	if missing.Name != "absent" {
		t.Errorf("unexpected output name %q", missing.Name)
	}
}
