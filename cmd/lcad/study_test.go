package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ecodesign-mdao/lca-core/internal/engine"
	"github.com/ecodesign-mdao/lca-core/pkg/config"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

const studyYAML = `
log_level: warn
store: ":memory:"
default_parent:
  database: proj
  code: assembly
nodes:
  - database: proj
    code: assembly
    name: assembly
    unit: unit
  - database: db
    code: aluminum
    name: aluminium
    unit: kg
  - database: bio
    code: co2
    name: carbon dioxide
    unit: kg
mappings:
  - output_name: alu_mass
    value: 1.0
    units: kg
    target:
      database: db
      code: aluminum
    target_name: alu
methods:
  - name: gwp
    factors:
      - flow:
          database: bio
          code: co2
        factor: 1.0
scoring:
  - name: gwp_score
    method: gwp
    functional_unit:
      - node:
          database: proj
          code: assembly
        amount: 1.0
optimization:
  enabled: true
  max_evaluations: 50
  seed: 7
  design_vars:
    - name: alu_mass
      lower: 0.0
      upper: 2.0
  objectives:
    - gwp_score
`

// newStudyEngine loads the study config, applies its setup, and adds the
// upstream emission the config's methods characterize.
func newStudyEngine(t *testing.T) (*engine.Engine, *config.Config) {
	t.Helper()
	cfg, err := config.ParseConfigYAMLString(studyYAML)
	if err != nil {
		t.Fatalf("failed to parse study config: %v", err)
	}

	ctx := context.Background()
	eng, err := engine.New(engine.Config{
		StorePath:     cfg.Store,
		DefaultParent: cfg.DefaultParent.Key(),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	if err := applySetup(ctx, eng, cfg); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	// Producing one kg of aluminium emits 8 kg CO2.
	if _, err := eng.Store().UpsertExchange(ctx,
		models.NodeKey{Database: "db", Code: "aluminum"},
		models.NodeKey{Database: "bio", Code: "co2"},
		8.0, "", models.KindBiosphere); err != nil {
		t.Fatalf("failed to add biosphere exchange: %v", err)
	}
	return eng, cfg
}

func TestRunScoreFromConfig(t *testing.T) {
	eng, cfg := newStudyEngine(t)

	var buf bytes.Buffer
	if err := runScore(context.Background(), eng, cfg, &buf); err != nil {
		t.Fatalf("score failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one score line, got %q", buf.String())
	}
	fields := strings.Fields(lines[1])
	// The registered default of 1 kg aluminium at 8 kg CO2 each.
	if len(fields) != 3 || fields[0] != "gwp_score" || fields[1] != "gwp" || fields[2] != "8" {
		t.Errorf("unexpected score line: %q", lines[1])
	}
}

func TestRunScoreWithoutMethods(t *testing.T) {
	eng, cfg := newStudyEngine(t)
	cfg.Methods = nil

	err := runScore(context.Background(), eng, cfg, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no impact methods") {
		t.Fatalf("expected missing-methods error, got %v", err)
	}
}

func TestRunOptimizeFromConfig(t *testing.T) {
	eng, cfg := newStudyEngine(t)

	var buf bytes.Buffer
	if err := runOptimize(context.Background(), eng, cfg, &buf); err != nil {
		t.Fatalf("optimize failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "evaluated 50 candidates") {
		t.Errorf("expected 50 evaluations reported, got %q", out)
	}
	if !strings.Contains(out, "ALU_MASS") || !strings.Contains(out, "GWP_SCORE") {
		t.Errorf("expected front header columns, got %q", out)
	}
	// One objective over one variable leaves exactly one non-dominated point.
	if !strings.Contains(out, "1 non-dominated") {
		t.Errorf("expected a single non-dominated candidate, got %q", out)
	}
}

func TestRunOptimizeDisabled(t *testing.T) {
	eng, cfg := newStudyEngine(t)
	cfg.Optimization.Enabled = false

	err := runOptimize(context.Background(), eng, cfg, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "not enabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestRunOptimizeUncoveredSourceVariable(t *testing.T) {
	eng, cfg := newStudyEngine(t)

	// A second mapping whose source variable no design variable drives.
	if err := eng.Register(context.Background(), engine.Mapping{
		OutputName: "co2_direct",
		Value:      0.5,
		Units:      "kg",
		TargetNode: models.NodeKey{Database: "bio", Code: "co2"},
		Kind:       models.KindBiosphere,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	err := runOptimize(context.Background(), eng, cfg, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "co2_direct") {
		t.Fatalf("expected uncovered source variable error, got %v", err)
	}
}
