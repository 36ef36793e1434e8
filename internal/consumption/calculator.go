// Package consumption computes metered utility charges from a pair of
// readings and a rate. It is pure: no storage, no clock, no logging.
package consumption

import "math"

// Result is the priced outcome of a reading pair.
//
// RolledBack reports that the inputs were malformed (NaN) or that the
// current reading fell below the previous one, in which case both values
// are zero. The caller must surface this to the operator instead of
// treating it as a genuine zero-consumption period: a meter swap or data
// error silently billed as zero would mask a billing gap.
type Result struct {
	Consumption float64
	Total       float64
	RolledBack  bool
}

// Compute prices the consumption between two readings.
//
// consumption = current - previous, total = consumption * rate. No
// rounding is applied here; currency rounding happens once at invoice
// total time so error does not compound across charge lines. A negative
// charge is never produced: rollback or malformed input yields {0, 0}
// with RolledBack set.
func Compute(previous, current, rate float64) Result {
	if math.IsNaN(previous) || math.IsNaN(current) || math.IsNaN(rate) {
		return Result{RolledBack: true}
	}
	if current < previous {
		return Result{RolledBack: true}
	}

	consumed := current - previous
	return Result{
		Consumption: consumed,
		Total:       consumed * rate,
	}
}
