// Package engine owns the lifecycle of the parameter synchronization engine:
// it opens the shared store, wires the recalculator, and hosts the mapping
// registrar that binds simulation outputs to the LCA data model. The engine
// is an explicit context object; nothing in this module relies on
// process-wide singletons.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ecodesign-mdao/lca-core/internal/recalc"
	"github.com/ecodesign-mdao/lca-core/internal/store"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// DefaultGroup is the parameter group every registered exchange is tagged
// into. One group is used operationally; recalculation passes select it.
const DefaultGroup = "engine"

// OutputDeclarer is the subset of the simulation collaborator the registrar
// uses to declare new outputs at setup time.
type OutputDeclarer interface {
	DeclareOutput(name string, defaultValue float64, units string) error
}

// Config configures an engine context.
type Config struct {
	// StorePath is the SQLite database holding the shared data model.
	StorePath string
	// Group overrides the recalculation group name. Defaults to DefaultGroup.
	Group string
	// DefaultParent is the node receiving exchanges whose mapping does not
	// name a parent, typically the functional-unit assembly activity.
	DefaultParent models.NodeKey
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Engine is the context object every component of the synchronization engine
// hangs off. Initialize at process start, Close at teardown.
type Engine struct {
	store         *store.Store
	recalc        *recalc.Recalculator
	group         string
	defaultParent models.NodeKey
	declarer      OutputDeclarer
	log           *slog.Logger

	// evalMu serializes full evaluations against this engine's store so
	// every caller sees a consistent update-recalculate-score history, even
	// when several bridges share the engine.
	evalMu sync.Mutex
}

// New opens the store and builds an engine context.
func New(cfg Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine store: %w", err)
	}
	group := cfg.Group
	if group == "" {
		group = DefaultGroup
	}
	return &Engine{
		store:         s,
		recalc:        recalc.New(s, log),
		group:         group,
		defaultParent: cfg.DefaultParent,
		log:           log,
	}, nil
}

// Store exposes the underlying data model store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Recalculator exposes the recalculation engine.
func (e *Engine) Recalculator() *recalc.Recalculator {
	return e.recalc
}

// Group returns the recalculation group this engine manages.
func (e *Engine) Group() string {
	return e.group
}

// SetOutputDeclarer attaches the simulation collaborator so Register can
// declare mapped outputs at setup time.
func (e *Engine) SetOutputDeclarer(d OutputDeclarer) {
	e.declarer = d
}

// LockEvaluations takes the engine-wide evaluation lock and returns the
// release function. Callers hold it for the duration of one full evaluation.
func (e *Engine) LockEvaluations() func() {
	e.evalMu.Lock()
	return e.evalMu.Unlock
}

// Recalculate runs one recalculation pass over the engine's group.
func (e *Engine) Recalculate(ctx context.Context) (*recalc.Report, error) {
	return e.recalc.Recalculate(ctx, e.group)
}

// Cleanup removes all engine-managed parameters and their dependent
// exchanges, resetting persisted state between independent runs.
func (e *Engine) Cleanup(ctx context.Context) error {
	e.log.Info("cleaning up engine-managed state", "group", e.group)
	return e.store.Cleanup(ctx, e.group)
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}
