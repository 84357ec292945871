package dense

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"qddcheck/internal/backend"
	"qddcheck/internal/circuit"
)

// cnotLocal is CNOT in the local convention with the control on bit 0.
var cnotLocal = mat.NewCDense(4, 4, []complex128{
	1, 0, 0, 0,
	0, 0, 0, 1,
	0, 0, 1, 0,
	0, 1, 0, 0,
})

// permutation builds the matrix sending basis state c to perm[c].
func permutation(perm []int) *mat.CDense {
	m := mat.NewCDense(len(perm), len(perm), nil)
	for c, r := range perm {
		m.Set(r, c, 1)
	}
	return m
}

func assertMatrixEqual(t *testing.T, want, got *mat.CDense) {
	t.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, [2]int{wr, wc}, [2]int{gr, gc}, "dimensions")
	for r := 0; r < wr; r++ {
		for c := 0; c < wc; c++ {
			w, g := want.At(r, c), got.At(r, c)
			assert.InDelta(t, real(w), real(g), 1e-12, "real part of [%d][%d]", r, c)
			assert.InDelta(t, imag(w), imag(g), 1e-12, "imag part of [%d][%d]", r, c)
		}
	}
}

func TestEmbedCNOTThreeQubits(t *testing.T) {
	tests := []struct {
		name    string
		targets []int
		want    *mat.CDense
	}{
		{
			// control q0, target q1: flip bit 1 when bit 0 is set.
			name:    "targets {0,1}",
			targets: []int{0, 1},
			want:    permutation([]int{0, 3, 2, 1, 4, 7, 6, 5}),
		},
		{
			// control q1, target q0: flip bit 0 when bit 1 is set.
			name:    "targets {1,0}",
			targets: []int{1, 0},
			want:    permutation([]int{0, 1, 3, 2, 4, 5, 7, 6}),
		},
		{
			// control q0, target q2: |001⟩↔|101⟩ and |011⟩↔|111⟩.
			name:    "targets {0,2}",
			targets: []int{0, 2},
			want: mat.NewCDense(8, 8, []complex128{
				1, 0, 0, 0, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 1, 0, 0,
				0, 0, 1, 0, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 1,
				0, 0, 0, 0, 1, 0, 0, 0,
				0, 1, 0, 0, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 1, 0,
				0, 0, 0, 1, 0, 0, 0, 0,
			}),
		},
		{
			// control q2, target q0: descending and non-adjacent.
			name:    "targets {2,0}",
			targets: []int{2, 0},
			want:    permutation([]int{0, 1, 2, 3, 5, 4, 7, 6}),
		},
		{
			// control q2, target q1.
			name:    "targets {2,1}",
			targets: []int{2, 1},
			want:    permutation([]int{0, 1, 2, 3, 6, 7, 4, 5}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Embed(cnotLocal, tt.targets, 3)
			require.NoError(t, err)
			assertMatrixEqual(t, tt.want, got)
		})
	}
}

func TestEmbedSingleQubitPlacement(t *testing.T) {
	x := mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})

	// X on qubit 1 of 2 flips bit 1: 0↔2, 1↔3.
	got, err := Embed(x, []int{1}, 2)
	require.NoError(t, err)
	assertMatrixEqual(t, permutation([]int{2, 3, 0, 1}), got)

	// X on qubit 0 of 2 flips bit 0: 0↔1, 2↔3.
	got, err = Embed(x, []int{0}, 2)
	require.NoError(t, err)
	assertMatrixEqual(t, permutation([]int{1, 0, 3, 2}), got)
}

// directColumn applies u to basis state c by acting only on the target bits.
func directColumn(u *mat.CDense, targets []int, n, c int) []complex128 {
	k := len(targets)
	var mask, lc int
	for j, q := range targets {
		mask |= 1 << q
		if c&(1<<q) != 0 {
			lc |= 1 << j
		}
	}
	out := make([]complex128, 1<<n)
	for lr := 0; lr < 1<<k; lr++ {
		r := c &^ mask
		for j, q := range targets {
			if lr&(1<<j) != 0 {
				r |= 1 << q
			}
		}
		out[r] = u.At(lr, lc)
	}
	return out
}

func TestEmbedMatchesDirectAction(t *testing.T) {
	const n = 4
	gates := []circuit.Operation{
		{Name: "u3", Params: []float64{0.3, 1.2, -0.4}},
		{Name: "crx", Params: []float64{0.9}},
		{Name: "cy"},
		{Name: "ch"},
		{Name: "cp", Params: []float64{2.1}},
		{Name: "swap"},
	}

	for _, g := range gates {
		arity, ok := circuit.ExpectedArity(g.Name)
		require.True(t, ok)

		var targetSets [][]int
		for a := 0; a < n; a++ {
			if arity == 1 {
				targetSets = append(targetSets, []int{a})
				continue
			}
			for b := 0; b < n; b++ {
				if a != b {
					targetSets = append(targetSets, []int{a, b})
				}
			}
		}

		for _, targets := range targetSets {
			op := g
			op.Targets = targets
			t.Run(fmt.Sprintf("%s %v", g.Name, targets), func(t *testing.T) {
				raw, err := backend.GateMatrix(op)
				require.NoError(t, err)
				dim := 1 << arity
				u := mat.NewCDense(dim, dim, raw)

				full, err := Embed(u, targets, n)
				require.NoError(t, err)

				for c := 0; c < 1<<n; c++ {
					want := directColumn(u, targets, n, c)
					for r := range want {
						got := full.At(r, c)
						if math.Abs(real(got)-real(want[r])) > 1e-12 || math.Abs(imag(got)-imag(want[r])) > 1e-12 {
							t.Fatalf("column %d row %d: got %v want %v", c, r, got, want[r])
						}
					}
				}
			})
		}
	}
}

func TestEmbedRejectsBadTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets []int
		n       int
	}{
		{"out of range", []int{0, 3}, 3},
		{"negative", []int{-1, 0}, 3},
		{"repeated", []int{1, 1}, 3},
		{"arity mismatch", []int{0}, 3},
		{"register too small", []int{0, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Embed(cnotLocal, tt.targets, tt.n)
			assert.ErrorIs(t, err, ErrInvalidTargets)
		})
	}
}

func TestEmbedDoesNotModifyInput(t *testing.T) {
	u := mat.NewCDense(4, 4, slices.Clone(cnotLocal.RawCMatrix().Data))
	_, err := Embed(u, []int{2, 0}, 3)
	require.NoError(t, err)
	assertMatrixEqual(t, cnotLocal, u)
}
