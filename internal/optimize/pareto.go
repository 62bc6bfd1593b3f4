package optimize

import "math"

// violation sums the positive constraint values of a candidate. Zero means
// feasible.
func violation(c *Candidate) float64 {
	var v float64
	for _, g := range c.G {
		if g > 0 {
			v += g
		}
	}
	return v
}

func hasNaN(f []float64) bool {
	for _, v := range f {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Dominates reports whether a dominates b under feasibility-first Pareto
// ordering for minimization. A candidate with any NaN objective never
// dominates and is dominated by any candidate without one.
func Dominates(a, b *Candidate) bool {
	if hasNaN(a.F) {
		return false
	}
	if hasNaN(b.F) {
		return true
	}

	va, vb := violation(a), violation(b)
	if va == 0 && vb > 0 {
		return true
	}
	if va > 0 && vb == 0 {
		return false
	}
	if va > 0 && vb > 0 {
		return va < vb
	}

	better := false
	for i := range a.F {
		if a.F[i] > b.F[i] {
			return false
		}
		if a.F[i] < b.F[i] {
			better = true
		}
	}
	return better
}
