// Package fidelity compares two state vectors.
package fidelity

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

var (
	// ErrLengthMismatch is returned when the vectors have different dimensions.
	ErrLengthMismatch = errors.New("fidelity: vector length mismatch")

	// ErrNonFinite is returned when either vector holds a NaN or infinite
	// amplitude. The accompanying fidelity is 0.
	ErrNonFinite = errors.New("fidelity: non-finite amplitude")
)

// Fidelity returns |⟨a,b⟩|² / (‖a‖²·‖b‖²) clamped to [0,1]. It is 0 when
// either vector has zero norm, and 0 with ErrNonFinite when the norms or the
// overlap are not finite.
func Fidelity(a, b []complex128) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(a), len(b))
	}
	na := real(cmplxs.Dot(a, a))
	nb := real(cmplxs.Dot(b, b))
	overlap := cmplx.Abs(cmplxs.Dot(a, b))
	if !finite(na) || !finite(nb) || !finite(overlap) {
		return 0, ErrNonFinite
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	f := overlap * overlap / (na * nb)
	switch {
	case math.IsNaN(f):
		return 0, ErrNonFinite
	case f < 0:
		return 0, nil
	case f > 1:
		return 1, nil
	}
	return f, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Divergent reports whether f falls short of 1 by more than tol. NaN is
// always divergent.
func Divergent(f, tol float64) bool {
	return math.IsNaN(f) || f < 1-tol
}
