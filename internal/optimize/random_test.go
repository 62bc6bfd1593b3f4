package optimize

import (
	"context"
	"math"
	"testing"
	"time"
)

// biObjective is a model with a known trade-off: f1 = x^2, f2 = (x-2)^2.
func biObjective() *fakeModel {
	m := newFakeModel()
	m.compute = func(in map[string][]float64) map[string]float64 {
		x := in["x"][0]
		return map[string]float64{
			"f1": x * x,
			"f2": (x - 2) * (x - 2),
		}
	}
	return m
}

func TestRandomSearchFindsFront(t *testing.T) {
	p, err := NewProblem(biObjective(), []DesignVar{{Name: "x", Lower: -5, Upper: 5}},
		[]string{"f1", "f2"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	res, err := NewRandomSearch(nil).Minimize(context.Background(), p, Options{
		MaxEvaluations: 200,
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if res.Evaluations != 200 {
		t.Errorf("expected 200 evaluations, got %d", res.Evaluations)
	}
	if len(res.Set) == 0 {
		t.Fatal("expected a non-empty non-dominated set")
	}

	// Every non-dominated design of this problem lies in [0, 2].
	for _, c := range res.Set {
		x := c.X[0]
		if x < 0 || x > 2 {
			t.Errorf("candidate x=%v outside the true trade-off range [0, 2]", x)
		}
		if c.F[0] != x*x {
			t.Errorf("objective inconsistent with design: f1=%v for x=%v", c.F[0], x)
		}
	}
}

func TestRandomSearchRespectsBounds(t *testing.T) {
	m := newFakeModel()
	m.compute = func(in map[string][]float64) map[string]float64 {
		return map[string]float64{"f": in["x"][0]}
	}
	p, err := NewProblem(m, []DesignVar{{Name: "x", Lower: 3, Upper: 4}}, []string{"f"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	res, err := NewRandomSearch(nil).Minimize(context.Background(), p, Options{
		MaxEvaluations: 50,
		Seed:           1,
	})
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	for _, c := range res.Set {
		if c.X[0] < 3 || c.X[0] >= 4 {
			t.Errorf("candidate x=%v violates bounds [3, 4)", c.X[0])
		}
	}
}

func TestRandomSearchNoImprovementWindow(t *testing.T) {
	// Strictly worsening objective: only the first candidate improves the
	// front.
	n := 0
	m := newFakeModel()
	m.compute = func(in map[string][]float64) map[string]float64 {
		n++
		return map[string]float64{"f": float64(n)}
	}
	p, err := NewProblem(m, []DesignVar{{Name: "x", Lower: 0, Upper: 1}}, []string{"f"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	res, err := NewRandomSearch(nil).Minimize(context.Background(), p, Options{
		MaxEvaluations:      10000,
		NoImprovementWindow: 5,
		Seed:                7,
	})
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if res.Evaluations != 6 {
		t.Errorf("expected stop after 1 improvement + 5 stale evaluations, got %d", res.Evaluations)
	}
}

func TestRandomSearchCancelled(t *testing.T) {
	p, err := NewProblem(biObjective(), []DesignVar{{Name: "x", Lower: 0, Upper: 1}},
		[]string{"f1", "f2"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRandomSearch(nil).Minimize(ctx, p, Options{MaxEvaluations: 100}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRandomSearchMaxDuration(t *testing.T) {
	p, err := NewProblem(biObjective(), []DesignVar{{Name: "x", Lower: 0, Upper: 1}},
		[]string{"f1", "f2"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	start := time.Now()
	res, err := NewRandomSearch(nil).Minimize(context.Background(), p, Options{
		MaxDuration: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if res.Evaluations == 0 {
		t.Error("expected at least one evaluation before the deadline")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("run overshot the deadline by far")
	}
}

func TestRandomSearchArchivesNaNWithoutPromoting(t *testing.T) {
	// Every second evaluation fails to score.
	n := 0
	m := newFakeModel()
	m.compute = func(in map[string][]float64) map[string]float64 {
		n++
		if n%2 == 0 {
			return map[string]float64{"f": math.NaN()}
		}
		return map[string]float64{"f": in["x"][0]}
	}
	p, err := NewProblem(m, []DesignVar{{Name: "x", Lower: 0, Upper: 1}}, []string{"f"}, nil)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	res, err := NewRandomSearch(nil).Minimize(context.Background(), p, Options{
		MaxEvaluations: 40,
		Seed:           3,
	})
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	for _, c := range res.Set {
		if math.IsNaN(c.F[0]) {
			t.Error("expected no NaN candidate in the non-dominated set")
		}
	}
}
