package engine

import (
	"context"
	"fmt"

	"github.com/ecodesign-mdao/lca-core/internal/formula"
	"github.com/ecodesign-mdao/lca-core/internal/store"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// unitless is the placeholder unit for mappings that declare none.
const unitless = "unit"

// Mapping declares how one simulation output feeds the LCA data model: one
// parameter carrying the output's value and one exchange whose formula is the
// parameter name.
type Mapping struct {
	// OutputName is the simulation output feeding the parameter.
	OutputName string
	// Value is the declared default, used until the first evaluation.
	Value float64
	// Units are the simulation-side units of the output.
	Units string
	// TargetNode is the node the exchange points at.
	TargetNode models.NodeKey
	// TargetUnits are the data-model units. Defaults to Units, or "unit".
	TargetUnits string
	// TargetName names the parameter. Defaults to OutputName.
	TargetName string
	// ParentNode owns the exchange. Defaults to the engine's default parent.
	ParentNode models.NodeKey
	// Kind defaults to technosphere.
	Kind models.ExchangeKind
}

// Register binds one simulation output into the data model: it upserts the
// exchange (formula = parameter name), upserts the parameter seeded with the
// declared default, and tags the parent's exchanges into the engine group.
// Re-registration with the same output and target is idempotent.
func (e *Engine) Register(ctx context.Context, m Mapping) error {
	if m.OutputName == "" {
		return &store.ValidationError{Reason: "mapping requires an output name"}
	}
	if m.TargetNode.IsZero() {
		return &store.ValidationError{Reason: fmt.Sprintf("mapping %s requires a target node", m.OutputName)}
	}

	if m.TargetName == "" {
		m.TargetName = m.OutputName
	}
	// The parameter name doubles as the exchange formula; an invalid name
	// must be rejected before either write so neither half persists alone.
	if !formula.ValidName(m.TargetName) {
		return &store.ValidationError{Reason: fmt.Sprintf("mapping %s: parameter name %q is not a valid identifier", m.OutputName, m.TargetName)}
	}
	if m.TargetUnits == "" {
		if m.Units != "" {
			m.TargetUnits = m.Units
		} else {
			m.TargetUnits = unitless
		}
	}
	if m.ParentNode.IsZero() {
		m.ParentNode = e.defaultParent
	}
	if m.ParentNode.IsZero() {
		return &store.ValidationError{Reason: fmt.Sprintf("mapping %s: no parent node and no default parent configured", m.OutputName)}
	}
	if m.Kind == "" {
		m.Kind = models.KindTechnosphere
	}

	targetID, err := e.store.Resolve(ctx, m.TargetNode)
	if err != nil {
		return err
	}
	if node, err := e.store.Node(ctx, targetID); err == nil {
		if node.Unit != "" && node.Unit != m.TargetUnits {
			e.log.Warn("unit mismatch between mapping and data model",
				"output", m.OutputName, "mapping_units", m.TargetUnits,
				"node", m.TargetNode.String(), "node_units", node.Unit)
		}
	}

	// Exchange, parameter, and group tag commit together; a failure on any
	// step leaves the data model at its pre-call state.
	err = e.store.InTx(ctx, func(tx *store.Tx) error {
		parentID, err := tx.UpsertExchange(ctx, m.ParentNode, m.TargetNode, m.Value, m.TargetName, m.Kind)
		if err != nil {
			return err
		}
		if err := tx.UpsertParameter(ctx, models.Parameter{
			Name:           m.TargetName,
			Amount:         m.Value,
			SourceVariable: m.OutputName,
			SourceUnits:    m.Units,
			TargetUnits:    m.TargetUnits,
		}); err != nil {
			return err
		}
		return tx.AddExchangesToGroup(ctx, e.group, parentID)
	})
	if err != nil {
		return err
	}

	if e.declarer != nil {
		if err := e.declarer.DeclareOutput(m.OutputName, m.Value, m.Units); err != nil {
			return fmt.Errorf("failed to declare output %s: %w", m.OutputName, err)
		}
	}

	e.log.Debug("registered mapping",
		"output", m.OutputName, "parameter", m.TargetName,
		"parent", m.ParentNode.String(), "target", m.TargetNode.String())
	return nil
}
