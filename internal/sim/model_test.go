package sim

import (
	"context"
	"errors"
	"testing"
)

func TestModelRunOrder(t *testing.T) {
	m := NewModel()

	double := NewComponent("double", []string{"x"}, []OutputSpec{{Name: "y"}},
		func(ctx context.Context, in, out map[string][]float64) error {
			out["y"] = []float64{Scalar(in, "x") * 2}
			return nil
		})
	addOne := NewComponent("add_one", []string{"y"}, []OutputSpec{{Name: "z"}},
		func(ctx context.Context, in, out map[string][]float64) error {
			out["z"] = []float64{Scalar(in, "y") + 1}
			return nil
		})

	if err := m.Add(double); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := m.Add(addOne); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	m.SetInput("x", 3.0)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	z, err := m.Get("z")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if z != 7.0 {
		t.Errorf("expected z=7.0, got %v", z)
	}
}

func TestModelMissingInput(t *testing.T) {
	m := NewModel()
	c := NewComponent("needs_x", []string{"x"}, []OutputSpec{{Name: "y"}},
		func(ctx context.Context, in, out map[string][]float64) error {
			out["y"] = []float64{Scalar(in, "x")}
			return nil
		})
	if err := m.Add(c); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := m.Run(context.Background())
	if !errors.Is(err, ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
}

func TestModelDuplicateOutput(t *testing.T) {
	m := NewModel()
	a := NewComponent("a", nil, []OutputSpec{{Name: "y"}},
		func(ctx context.Context, in, out map[string][]float64) error { return nil })
	b := NewComponent("b", nil, []OutputSpec{{Name: "y"}},
		func(ctx context.Context, in, out map[string][]float64) error { return nil })

	if err := m.Add(a); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	err := m.Add(b)
	if !errors.Is(err, ErrDuplicateOutput) {
		t.Fatalf("expected ErrDuplicateOutput, got %v", err)
	}
}

func TestModelDeclareOutput(t *testing.T) {
	m := NewModel()

	if err := m.DeclareOutput("alu_mass", 100.0, "kg"); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	v, err := m.Get("alu_mass")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != 100.0 {
		t.Errorf("expected default 100.0, got %v", v)
	}
	if m.Units("alu_mass") != "kg" {
		t.Errorf("expected kg units, got %q", m.Units("alu_mass"))
	}

	// Declaring again must not reset an already-present value.
	m.SetInput("alu_mass", 150.0)
	if err := m.DeclareOutput("alu_mass", 100.0, "kg"); err != nil {
		t.Fatalf("re-declare failed: %v", err)
	}
	v, _ = m.Get("alu_mass")
	if v != 150.0 {
		t.Errorf("expected value preserved on re-declare, got %v", v)
	}
}

func TestModelVectorValues(t *testing.T) {
	m := NewModel()
	m.SetInput("z", 1.0, 2.0)

	vec, err := m.GetVec("z")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 1.0 || vec[1] != 2.0 {
		t.Errorf("expected [1 2], got %v", vec)
	}

	// Scalar view returns the first element.
	v, err := m.Get("z")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != 1.0 {
		t.Errorf("expected scalar view 1.0, got %v", v)
	}
}

func TestModelRunCancelled(t *testing.T) {
	m := NewModel()
	c := NewComponent("noop", nil, []OutputSpec{{Name: "y"}},
		func(ctx context.Context, in, out map[string][]float64) error {
			out["y"] = []float64{1}
			return nil
		})
	if err := m.Add(c); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
