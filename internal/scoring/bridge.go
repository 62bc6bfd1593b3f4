// Package scoring is the evaluation bridge: it pulls current simulation
// outputs into the parameter store, drives one recalculation pass, and scores
// functional units against the impact collaborator. One Evaluate call is one
// atomic model evaluation.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ecodesign-mdao/lca-core/internal/engine"
	"github.com/ecodesign-mdao/lca-core/internal/impact"
	"github.com/ecodesign-mdao/lca-core/internal/metrics"
	"github.com/ecodesign-mdao/lca-core/internal/recalc"
	"github.com/ecodesign-mdao/lca-core/internal/store"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
	"github.com/ecodesign-mdao/lca-core/pkg/utils"
)

// MissingInputError indicates a registered parameter whose source variable is
// absent from the outputs passed to Evaluate. The evaluation aborts before any
// write.
type MissingInputError struct {
	Parameter      string
	SourceVariable string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("parameter %s: source variable %s missing from simulation outputs", e.Parameter, e.SourceVariable)
}

// ScoringError wraps the failure of one scoring request. The request's score
// becomes the NaN sentinel; sibling requests are unaffected.
type ScoringError struct {
	Request string
	Method  string
	Err     error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("request %s (method %s): %v", e.Request, e.Method, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// Request names one score to compute.
type Request struct {
	// Name labels the score, e.g. the objective name exposed to optimizers.
	Name string
	// FunctionalUnit is the demand to score.
	FunctionalUnit models.FunctionalUnit
	// Method selects the impact assessment method.
	Method string
}

// BatchReport is the full outcome of one evaluation.
type BatchReport struct {
	// Scores are in request order. Failed requests hold NaN.
	Scores []float64
	// Failures holds one ScoringError per failed request.
	Failures []*ScoringError
	// Recalc is the recalculation pass report.
	Recalc *recalc.Report
}

// Options carries the optional collaborators of a bridge.
type Options struct {
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Bridge evaluates scoring requests against the synchronized data model.
type Bridge struct {
	eng     *engine.Engine
	scorer  impact.Engine
	metrics *metrics.Collector
	log     *slog.Logger
}

// New creates a bridge over an engine and an impact collaborator.
func New(eng *engine.Engine, scorer impact.Engine, opts Options) *Bridge {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		eng:     eng,
		scorer:  scorer,
		metrics: opts.Metrics,
		log:     log,
	}
}

// Evaluate runs one full evaluation and returns the scores in request order.
// Failed requests score NaN; use EvaluateBatch for the failure detail.
func (b *Bridge) Evaluate(ctx context.Context, outputs map[string]float64, requests []Request) ([]float64, error) {
	report, err := b.EvaluateBatch(ctx, outputs, requests)
	if err != nil {
		return nil, err
	}
	return report.Scores, nil
}

// EvaluateBatch runs one full evaluation: push outputs into the sourced
// parameters, bulk update and recalculate inside one transaction, then score
// every request. The whole sequence holds the engine's evaluation lock, so
// concurrent callers see a serial history even across bridge instances.
// Structural failures (missing input, store errors) abort with the store at
// its pre-call state; per-request scoring failures are isolated as NaN
// sentinels.
func (b *Bridge) EvaluateBatch(ctx context.Context, outputs map[string]float64, requests []Request) (*BatchReport, error) {
	unlock := b.eng.LockEvaluations()
	defer unlock()

	start := time.Now()
	report, err := b.evaluateLocked(ctx, outputs, requests)
	if err != nil {
		b.metrics.ObserveEvaluation("error", time.Since(start).Seconds())
		return nil, err
	}
	b.metrics.ObserveEvaluation("ok", time.Since(start).Seconds())
	return report, nil
}

func (b *Bridge) evaluateLocked(ctx context.Context, outputs map[string]float64, requests []Request) (*BatchReport, error) {
	evalID := utils.GenerateEvaluationID()
	params, err := b.eng.Store().ParametersWithSource(ctx)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]float64, len(params))
	for _, p := range params {
		v, ok := outputs[p.SourceVariable]
		if !ok {
			return nil, &MissingInputError{Parameter: p.Name, SourceVariable: p.SourceVariable}
		}
		updates[p.Name] = v
	}

	report := &BatchReport{}
	err = b.eng.Store().InTx(ctx, func(tx *store.Tx) error {
		if err := tx.BulkUpdateParameters(ctx, updates); err != nil {
			return err
		}
		var err error
		report.Recalc, err = b.eng.Recalculator().RecalculateTx(ctx, tx, b.eng.Group())
		return err
	})
	if err != nil {
		return nil, err
	}
	if report.Recalc != nil {
		b.metrics.ObserveRecalc(report.Recalc.Updated, len(report.Recalc.Failed))
	}

	report.Scores = make([]float64, len(requests))
	for i, req := range requests {
		score, err := b.scorer.Score(ctx, req.FunctionalUnit, req.Method)
		if err != nil {
			serr := &ScoringError{Request: req.Name, Method: req.Method, Err: err}
			report.Failures = append(report.Failures, serr)
			report.Scores[i] = math.NaN()
			b.metrics.ObserveScoringFailure(req.Method)
			b.log.Warn("scoring request failed",
				"evaluation", evalID, "request", req.Name, "method", req.Method, "error", err)
			continue
		}
		report.Scores[i] = score
	}

	b.log.Debug("evaluation complete",
		"evaluation", evalID, "parameters", len(updates),
		"updated_exchanges", report.Recalc.Updated,
		"requests", len(requests), "failed_requests", len(report.Failures))
	return report, nil
}
