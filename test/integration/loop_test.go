//go:build integration
// +build integration

package integration_test

import (
	"context"
	"testing"

	"github.com/ecodesign-mdao/lca-core/internal/engine"
	"github.com/ecodesign-mdao/lca-core/internal/impact"
	"github.com/ecodesign-mdao/lca-core/internal/metrics"
	"github.com/ecodesign-mdao/lca-core/internal/optimize"
	"github.com/ecodesign-mdao/lca-core/internal/scoring"
	"github.com/ecodesign-mdao/lca-core/internal/sim"
	"github.com/ecodesign-mdao/lca-core/pkg/config"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

const studyYAML = `
log_level: warn
store: ":memory:"
default_parent:
  database: demo
  code: panel
nodes:
  - {database: demo, code: panel, name: panel assembly, unit: unit}
  - {database: demo, code: aluminum, name: aluminium, unit: kg}
  - {database: demo, code: steel, name: steel, unit: kg}
  - {database: bio, code: co2, name: carbon dioxide, unit: kg}
mappings:
  - output_name: alu_mass
    value: 1.0
    units: kg
    target: {database: demo, code: aluminum}
  - output_name: steel_mass
    value: 1.0
    units: kg
    target: {database: demo, code: steel}
methods:
  - name: gwp
    factors:
      - flow: {database: bio, code: co2}
        factor: 1.0
scoring:
  - name: gwp
    method: gwp
    functional_unit:
      - node: {database: demo, code: panel}
        amount: 1.0
optimization:
  enabled: true
  max_evaluations: 150
  seed: 7
  design_vars:
    - {name: thickness, lower: 0.05, upper: 0.6}
    - {name: alu_fraction, lower: 0.0, upper: 1.0}
  objectives: [gwp, mass]
`

// TestFullStudyLoop drives the whole pipeline from configuration: environment
// setup, mapping registration, a sizing discipline feeding the engine, the
// scoring bridge, and an optimization run over the coupled model.
func TestFullStudyLoop(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.ParseConfigYAMLString(studyYAML)
	if err != nil {
		t.Fatalf("failed to parse study config: %v", err)
	}

	eng, err := engine.New(engine.Config{
		StorePath:     cfg.Store,
		Group:         cfg.Group,
		DefaultParent: cfg.DefaultParent.Key(),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()

	for _, n := range cfg.Nodes {
		if _, err := eng.Store().AddNode(ctx, n.Node()); err != nil {
			t.Fatalf("failed to add node: %v", err)
		}
	}
	keyAlu := models.NodeKey{Database: "demo", Code: "aluminum"}
	keySteel := models.NodeKey{Database: "demo", Code: "steel"}
	keyCO2 := models.NodeKey{Database: "bio", Code: "co2"}
	if _, err := eng.Store().UpsertExchange(ctx, keyAlu, keyCO2, 8.0, "", models.KindBiosphere); err != nil {
		t.Fatalf("failed to add emission: %v", err)
	}
	if _, err := eng.Store().UpsertExchange(ctx, keySteel, keyCO2, 2.0, "", models.KindBiosphere); err != nil {
		t.Fatalf("failed to add emission: %v", err)
	}

	for _, m := range cfg.Mappings {
		if err := eng.Register(ctx, engine.Mapping{
			OutputName: m.OutputName,
			Value:      m.Value,
			Units:      m.Units,
			TargetNode: m.Target.Key(),
		}); err != nil {
			t.Fatalf("failed to register mapping %s: %v", m.OutputName, err)
		}
	}

	scorer := impact.NewTraversalEngine(eng.Store())
	for _, method := range cfg.Methods {
		for _, f := range method.Factors {
			scorer.SetFactor(method.Name, f.Flow.Key(), f.Factor)
		}
	}
	bridge := scoring.New(eng, scorer, scoring.Options{Metrics: metrics.NewCollector()})

	model := sim.NewModel()
	sizing := sim.NewComponent("sizing",
		[]string{"thickness", "alu_fraction"},
		[]sim.OutputSpec{
			{Name: "alu_mass", Units: "kg"},
			{Name: "steel_mass", Units: "kg"},
			{Name: "mass", Units: "kg"},
		},
		func(ctx context.Context, in, out map[string][]float64) error {
			total := 50 * sim.Scalar(in, "thickness")
			r := sim.Scalar(in, "alu_fraction")
			out["alu_mass"] = []float64{total * r}
			out["steel_mass"] = []float64{total * (1 - r)}
			out["mass"] = []float64{total}
			return nil
		})
	if err := model.Add(sizing); err != nil {
		t.Fatalf("failed to add sizing component: %v", err)
	}

	var requests []scoring.Request
	for _, s := range cfg.Scoring {
		requests = append(requests, scoring.Request{
			Name:           s.Name,
			FunctionalUnit: s.Demand(),
			Method:         s.Method,
		})
	}
	lcaComp, err := scoring.NewComponent(ctx, "lca", bridge, requests)
	if err != nil {
		t.Fatalf("failed to build scoring component: %v", err)
	}
	if err := model.Add(lcaComp); err != nil {
		t.Fatalf("failed to add scoring component: %v", err)
	}

	var vars []optimize.DesignVar
	for _, v := range cfg.Optimization.DesignVars {
		vars = append(vars, optimize.DesignVar{Name: v.Name, Size: v.Size, Lower: v.Lower, Upper: v.Upper})
	}
	problem, err := optimize.NewProblem(model, vars, cfg.Optimization.Objectives, cfg.Optimization.Constraints)
	if err != nil {
		t.Fatalf("failed to build problem: %v", err)
	}

	result, err := optimize.NewRandomSearch(nil).Minimize(ctx, problem, optimize.Options{
		MaxEvaluations: cfg.Optimization.MaxEvaluations,
		Seed:           cfg.Optimization.Seed,
	})
	if err != nil {
		t.Fatalf("optimization failed: %v", err)
	}

	if result.Evaluations != 150 {
		t.Errorf("expected 150 evaluations, got %d", result.Evaluations)
	}
	if len(result.Set) == 0 {
		t.Fatal("expected a non-empty trade-off set")
	}
	for _, c := range result.Set {
		thickness, aluFraction := c.X[0], c.X[1]
		mass := 50 * thickness
		gwp := mass*aluFraction*8.0 + mass*(1-aluFraction)*2.0
		if diff := c.F[0] - gwp; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("score %v inconsistent with design (want %v)", c.F[0], gwp)
		}
		if diff := c.F[1] - mass; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("mass %v inconsistent with design (want %v)", c.F[1], mass)
		}
	}

	// The store reflects the last evaluated candidate, not stale state.
	last, err := eng.Store().Parameter(ctx, "alu_mass")
	if err != nil {
		t.Fatalf("parameter lookup failed: %v", err)
	}
	if last.Amount == 1.0 {
		t.Error("expected parameter to have moved off its registration default")
	}
}
