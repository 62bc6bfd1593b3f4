package impact

import (
	"context"
	"fmt"
	"sync"

	"github.com/ecodesign-mdao/lca-core/internal/store"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// TraversalEngine scores demands by recursive graph traversal over the store.
// Characterization factors are registered per method and biosphere flow.
// Biosphere flows without a factor contribute zero, matching how assessment
// methods characterize only the flows they know.
type TraversalEngine struct {
	mu      sync.RWMutex
	store   *store.Store
	factors map[string]map[models.NodeKey]float64
}

// NewTraversalEngine creates an engine over the given store with no methods.
func NewTraversalEngine(s *store.Store) *TraversalEngine {
	return &TraversalEngine{
		store:   s,
		factors: make(map[string]map[models.NodeKey]float64),
	}
}

// SetFactor registers the characterization factor of one biosphere flow under
// a method, creating the method on first use.
func (t *TraversalEngine) SetFactor(method string, flow models.NodeKey, factor float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.factors[method]
	if !ok {
		m = make(map[models.NodeKey]float64)
		t.factors[method] = m
	}
	m[flow] = factor
}

// Methods lists the registered method names.
func (t *TraversalEngine) Methods() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.factors))
	for name := range t.factors {
		names = append(names, name)
	}
	return names
}

// Score computes the impact of a demand: the sum over demanded processes of
// demand amount times process intensity. Intensities reflect the exchange
// amounts currently persisted, so a score taken after a recalculation pass
// sees the synchronized parameter values.
func (t *TraversalEngine) Score(ctx context.Context, demand models.FunctionalUnit, method string) (float64, error) {
	t.mu.RLock()
	cfs, ok := t.factors[method]
	t.mu.RUnlock()
	if !ok {
		return 0, &UnknownMethodError{Method: method}
	}

	w := &walk{
		store:  t.store,
		cfs:    cfs,
		memo:   make(map[int64]float64),
		onPath: make(map[int64]bool),
	}
	var total float64
	for key, amount := range demand {
		id, err := t.store.Resolve(ctx, key)
		if err != nil {
			return 0, err
		}
		intensity, err := w.intensity(ctx, id, key)
		if err != nil {
			return 0, err
		}
		total += amount * intensity
	}
	return total, nil
}

// walk carries the per-score traversal state. Memoization is per call so each
// score sees one consistent view of the graph.
type walk struct {
	store  *store.Store
	cfs    map[models.NodeKey]float64
	memo   map[int64]float64
	onPath map[int64]bool
}

func (w *walk) intensity(ctx context.Context, id int64, key models.NodeKey) (float64, error) {
	if v, ok := w.memo[id]; ok {
		return v, nil
	}
	if w.onPath[id] {
		return 0, &CycleError{Node: key}
	}
	w.onPath[id] = true
	defer delete(w.onPath, id)

	exchanges, err := w.store.ExchangesOf(ctx, id)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, ex := range exchanges {
		switch ex.Kind {
		case models.KindBiosphere:
			total += ex.Amount * w.cfs[ex.TargetKey]
		case models.KindTechnosphere:
			child, err := w.intensity(ctx, ex.TargetID, ex.TargetKey)
			if err != nil {
				return 0, err
			}
			total += ex.Amount * child
		default:
			return 0, fmt.Errorf("exchange %d has unknown kind %q", ex.ID, ex.Kind)
		}
	}
	w.memo[id] = total
	return total, nil
}
