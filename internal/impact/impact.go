// Package impact scores functional units against impact assessment methods.
// The default engine walks the exchange graph: the impact intensity of a
// process is the characterized sum of its biosphere flows plus the weighted
// intensities of its technosphere inputs.
package impact

import (
	"context"
	"fmt"

	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// Engine computes one impact score for a demand against a method.
type Engine interface {
	Score(ctx context.Context, demand models.FunctionalUnit, method string) (float64, error)
}

// UnknownMethodError indicates a method no factors were registered for.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown impact method %q", e.Method)
}

// CycleError indicates a cycle in the technosphere graph, which the traversal
// engine cannot score.
type CycleError struct {
	Node models.NodeKey
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle in exchange graph at node %s", e.Node)
}
