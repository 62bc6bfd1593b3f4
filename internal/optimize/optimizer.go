package optimize

import (
	"context"
	"time"
)

// Options bounds one optimization run.
type Options struct {
	// MaxEvaluations stops the run after this many candidate evaluations.
	// Zero means no evaluation limit.
	MaxEvaluations int
	// MaxDuration stops the run after this much wall time. Zero means no
	// time limit.
	MaxDuration time.Duration
	// NoImprovementWindow stops the run after this many consecutive
	// evaluations without a new non-dominated candidate. Zero disables the
	// check.
	NoImprovementWindow int
	// Seed makes sampling reproducible. Zero seeds from the clock.
	Seed int64
}

// Result is the outcome of one optimization run.
type Result struct {
	// Set is the non-dominated set over all evaluated candidates.
	Set []*Candidate
	// Evaluations counts candidate evaluations performed.
	Evaluations int
}

// Optimizer minimizes a problem's objectives within its bounds.
type Optimizer interface {
	Minimize(ctx context.Context, p *Problem, opts Options) (*Result, error)
}

// termination tracks the stop conditions of one run.
type termination struct {
	opts  Options
	start time.Time
	evals int
	stale int
}

func newTermination(opts Options) *termination {
	return &termination{opts: opts, start: time.Now()}
}

// observe records one evaluation and whether it improved the front.
func (t *termination) observe(improved bool) {
	t.evals++
	if improved {
		t.stale = 0
	} else {
		t.stale++
	}
}

// done reports whether any stop condition holds.
func (t *termination) done() bool {
	if t.opts.MaxEvaluations > 0 && t.evals >= t.opts.MaxEvaluations {
		return true
	}
	if t.opts.MaxDuration > 0 && time.Since(t.start) >= t.opts.MaxDuration {
		return true
	}
	if t.opts.NoImprovementWindow > 0 && t.stale >= t.opts.NoImprovementWindow {
		return true
	}
	return false
}
