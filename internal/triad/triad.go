// Package triad owns the shared vectors for a run and the elementwise
// kernel c[i] = a[i] + alpha*b[i] applied to them.
package triad

import "github.com/vk/hetgrid/internal/partition"

// Arrays holds the three equal-length vectors for exactly one run.
// A and B are read-only while the run is in flight. C is partitioned
// into disjoint ranges, each written by exactly one branch; that
// disjointness is what makes the concurrent writes safe without locks.
type Arrays struct {
	A []float32
	B []float32
	C []float32
}

// NewArrays allocates the three vectors and fills the inputs with the
// index ramp a[i] = b[i] = i.
func NewArrays(n int) *Arrays {
	if n < 0 {
		n = 0
	}
	ar := &Arrays{
		A: make([]float32, n),
		B: make([]float32, n),
		C: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		ar.A[i] = float32(i)
		ar.B[i] = float32(i)
	}
	return ar
}

// Len returns the shared vector length.
func (ar *Arrays) Len() int { return len(ar.C) }

// Compute applies the triad serially over [r.Start, r.End), writing
// only that slice of C.
func (ar *Arrays) Compute(alpha float64, r partition.Range) {
	coeff := float32(alpha)
	for i := r.Start; i < r.End; i++ {
		ar.C[i] = ar.A[i] + coeff*ar.B[i]
	}
}

// Reference recomputes the whole triad serially into a fresh vector,
// leaving C untouched.
func (ar *Arrays) Reference(alpha float64) []float32 {
	coeff := float32(alpha)
	ref := make([]float32, len(ar.C))
	for i := range ref {
		ref[i] = ar.A[i] + coeff*ar.B[i]
	}
	return ref
}
