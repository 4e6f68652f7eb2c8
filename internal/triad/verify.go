package triad

import "github.com/google/go-cmp/cmp"

// Verdict is the outcome of comparing the partitioned result against
// the serial reference.
type Verdict struct {
	// Correct reports whether every element of C matches the reference
	// bitwise.
	Correct bool
	// Diff is a human-readable rendering of the mismatch; empty when
	// Correct is true.
	Diff string
	// Output and Reference expose both vectors for verbose inspection.
	Output    []float32
	Reference []float32
}

// Verify recomputes the full triad serially and compares it against C
// element-wise for exact equality. Each element has exactly one
// producer in both the partitioned and the serial computation and the
// operations are order-insensitive per element, so bitwise equality is
// the correct expectation here, not an approximate tolerance.
func Verify(ar *Arrays, alpha float64) Verdict {
	ref := ar.Reference(alpha)
	diff := cmp.Diff(ref, ar.C)
	return Verdict{
		Correct:   diff == "",
		Diff:      diff,
		Output:    ar.C,
		Reference: ref,
	}
}
