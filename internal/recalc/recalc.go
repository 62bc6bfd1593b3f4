// Package recalc propagates parameter values through the tagged subset of
// the exchange graph. One pass reads a single consistent snapshot of all
// parameters and rewrites the amount of every formula-bearing exchange in the
// group. This is the hot path during optimization: it runs once per model
// evaluation and stays O(number of tagged exchanges).
package recalc

import (
	"context"
	"log/slog"

	"github.com/ecodesign-mdao/lca-core/internal/formula"
	"github.com/ecodesign-mdao/lca-core/internal/store"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// Failure records one exchange whose formula could not be resolved. The rest
// of the pass is unaffected.
type Failure struct {
	ExchangeID int64
	Parent     models.NodeKey
	Target     models.NodeKey
	Formula    string
	Err        error
}

// Report summarizes one recalculation pass.
type Report struct {
	Updated int
	Failed  []Failure
}

// Recalculator resolves exchange formulas against the parameter store.
type Recalculator struct {
	store *store.Store
	log   *slog.Logger
}

// New creates a recalculator over the given store.
func New(s *store.Store, log *slog.Logger) *Recalculator {
	if log == nil {
		log = slog.Default()
	}
	return &Recalculator{store: s, log: log}
}

// Recalculate runs one pass over the group inside its own transaction.
func (r *Recalculator) Recalculate(ctx context.Context, group string) (*Report, error) {
	var report *Report
	err := r.store.InTx(ctx, func(tx *store.Tx) error {
		var err error
		report, err = r.RecalculateTx(ctx, tx, group)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RecalculateTx runs one pass inside a caller-owned transaction, so the
// preceding bulk parameter update and the recalculation commit together.
// Per-exchange formula failures are isolated in the report; only structural
// store failures abort the pass.
func (r *Recalculator) RecalculateTx(ctx context.Context, tx *store.Tx, group string) (*Report, error) {
	snapshot, err := tx.ParameterSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	exchanges, err := tx.ExchangesInGroup(ctx, group)
	if err != nil {
		return nil, err
	}

	evaluator := formula.NewEvaluator(snapshot)
	report := &Report{}
	for _, ex := range exchanges {
		if ex.Formula == "" {
			continue
		}
		amount, err := evaluator.Evaluate(ex.Formula)
		if err != nil {
			report.Failed = append(report.Failed, Failure{
				ExchangeID: ex.ID,
				Parent:     ex.ParentKey,
				Target:     ex.TargetKey,
				Formula:    ex.Formula,
				Err:        err,
			})
			r.log.Warn("formula resolution failed",
				"exchange", ex.ID, "parent", ex.ParentKey.String(),
				"target", ex.TargetKey.String(), "formula", ex.Formula, "error", err)
			continue
		}
		if amount == ex.Amount {
			continue
		}
		if err := tx.UpdateExchangeAmount(ctx, ex.ID, amount); err != nil {
			return nil, err
		}
		report.Updated++
	}
	return report, nil
}
