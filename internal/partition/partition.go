// Package partition computes the index split between the accelerator
// range and the host range for a single offload decision.
package partition

import "math"

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range covers no indices.
func (r Range) Empty() bool { return r.Len() == 0 }

// Split divides [0, n) into an accelerator range and a host range
// according to the offload ratio. The accelerator takes the leading
// ceil(n*ratio) indices and the host takes the remainder, so the two
// ranges always tile [0, n) exactly: no gap, no overlap.
//
// Split is the single source of truth for the partition. The driver
// computes it once per run and hands both ranges down; re-deriving the
// split at two call sites risks divergent rounding and, with it,
// overlapping writes.
func Split(n int, ratio float64) (accel, host Range) {
	if n < 0 {
		n = 0
	}
	cut := int(math.Ceil(float64(n) * ratio))
	if cut < 0 {
		cut = 0
	}
	if cut > n {
		cut = n
	}
	return Range{Start: 0, End: cut}, Range{Start: cut, End: n}
}
