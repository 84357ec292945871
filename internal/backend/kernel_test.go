package backend

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qddcheck/internal/circuit"
)

// spreadState returns a normalised 3-qubit state with distinct amplitudes.
func spreadState() *kernelState {
	amps := make([]complex128, 8)
	var norm float64
	for i := range amps {
		amps[i] = complex(float64(i+1), float64(7-i)/3)
		norm += real(amps[i] * cmplx.Conj(amps[i]))
	}
	for i := range amps {
		amps[i] /= complex(math.Sqrt(norm), 0)
	}
	return &kernelState{amps: amps, n: 3}
}

func assertAmpsEqual(t *testing.T, want, got []complex128) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, real(want[i]), real(got[i]), 1e-12, "real part of amplitude %d", i)
		assert.InDelta(t, imag(want[i]), imag(got[i]), 1e-12, "imag part of amplitude %d", i)
	}
}

func TestKernelsMatchGateMatrices(t *testing.T) {
	ops := []circuit.Operation{
		{Name: "h", Targets: []int{1}},
		{Name: "x", Targets: []int{2}},
		{Name: "y", Targets: []int{0}},
		{Name: "z", Targets: []int{1}},
		{Name: "s", Targets: []int{2}},
		{Name: "sdg", Targets: []int{0}},
		{Name: "t", Targets: []int{1}},
		{Name: "tdg", Targets: []int{2}},
		{Name: "p", Targets: []int{0}, Params: []float64{0.3}},
		{Name: "rx", Targets: []int{1}, Params: []float64{1.1}},
		{Name: "ry", Targets: []int{2}, Params: []float64{-0.7}},
		{Name: "rz", Targets: []int{0}, Params: []float64{2.4}},
		{Name: "cx", Targets: []int{0, 2}},
		{Name: "cx", Targets: []int{2, 1}},
		{Name: "cz", Targets: []int{1, 0}},
		{Name: "swap", Targets: []int{0, 2}},
		{Name: "ccx", Targets: []int{2, 0, 1}},
	}

	for _, op := range ops {
		t.Run(op.String(), func(t *testing.T) {
			viaKernel := spreadState()
			k := NewKernel()
			require.NoError(t, k.applyGate(viaKernel, op))

			u, err := GateMatrix(op)
			require.NoError(t, err)
			viaMatrix := spreadState()
			viaMatrix.applyLocal(u, op.Targets)

			assertAmpsEqual(t, viaMatrix.amps, viaKernel.amps)
		})
	}
}

func TestGateMatricesAreUnitary(t *testing.T) {
	names := []struct {
		name   string
		arity  int
		params []float64
	}{
		{"sx", 1, nil}, {"sxdg", 1, nil}, {"u2", 1, []float64{0.2, 0.9}},
		{"u3", 1, []float64{0.4, -1.2, 2.2}}, {"cy", 2, nil}, {"ch", 2, nil},
		{"crx", 2, []float64{0.8}}, {"cry", 2, []float64{0.8}}, {"crz", 2, []float64{0.8}},
		{"cp", 2, []float64{0.8}}, {"cswap", 3, nil},
	}
	for _, g := range names {
		targets := make([]int, g.arity)
		for i := range targets {
			targets[i] = i
		}
		u, err := GateMatrix(circuit.Operation{Name: g.name, Targets: targets, Params: g.params})
		require.NoError(t, err, g.name)

		dim := 1 << g.arity
		require.Len(t, u, dim*dim, g.name)
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				var dot complex128
				for i := 0; i < dim; i++ {
					dot += cmplx.Conj(u[i*dim+r]) * u[i*dim+c]
				}
				want := 0.0
				if r == c {
					want = 1
				}
				assert.InDelta(t, want, real(dot), 1e-12, "%s: (U†U)[%d][%d]", g.name, r, c)
				assert.InDelta(t, 0, imag(dot), 1e-12, "%s: (U†U)[%d][%d]", g.name, r, c)
			}
		}
	}
}

func TestControlledNotLocalConvention(t *testing.T) {
	// Targets [control, target]: control is local bit 0, so |01⟩ (index 1)
	// and |11⟩ (index 3) swap.
	u, err := GateMatrix(circuit.Operation{Name: "cx", Targets: []int{0, 1}})
	require.NoError(t, err)
	assert.Equal(t, []complex128{
		1, 0, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
		0, 1, 0, 0,
	}, u)
}

func TestKernelApplyReturnsNewState(t *testing.T) {
	k := NewKernel()
	zero, err := k.ZeroState(2)
	require.NoError(t, err)

	next, err := k.Apply(zero, circuit.Operation{Name: "x", Targets: []int{1}, Unitary: true})
	require.NoError(t, err)

	before, err := k.Vector(zero)
	require.NoError(t, err)
	after, err := k.Vector(next)
	require.NoError(t, err)

	assert.Equal(t, []complex128{1, 0, 0, 0}, before)
	assert.Equal(t, []complex128{0, 0, 1, 0}, after)
	assert.Equal(t, 1, k.NodeCount(next))
	assert.Equal(t, 2, Edges(k, next))
}

func TestKernelApplyErrors(t *testing.T) {
	k := NewKernel()
	s, err := k.ZeroState(2)
	require.NoError(t, err)

	_, err = k.Apply(s, circuit.Operation{Name: "cx", Targets: []int{0}})
	assert.ErrorIs(t, err, ErrUnsupportedGate)

	_, err = k.Apply(s, circuit.Operation{Name: "h", Targets: []int{5}})
	assert.Error(t, err)

	_, err = k.Apply(s, circuit.Operation{Name: "measure", Targets: []int{0}})
	assert.ErrorIs(t, err, ErrUnsupportedGate)

	_, err = k.Apply(nil, circuit.Operation{Name: "h", Targets: []int{0}})
	assert.ErrorIs(t, err, ErrForeignState)

	_, err = k.ZeroState(0)
	assert.Error(t, err)
}

func TestKernelMatrixHandleAliasesCache(t *testing.T) {
	k := NewKernel()
	op := circuit.Operation{Name: "rx", Targets: []int{0}, Params: []float64{0.5}}

	first, err := k.FromOperation(op)
	require.NoError(t, err)
	second, err := k.FromOperation(op)
	require.NoError(t, err)

	a, err := first.Matrix(1)
	require.NoError(t, err)
	b, err := second.Matrix(1)
	require.NoError(t, err)
	assert.Same(t, &a[0], &b[0])

	_, err = first.Matrix(2)
	assert.Error(t, err)
}

func TestInstallPlaygroundHook(t *testing.T) {
	k := NewKernel()
	var seen int
	installed := InstallPlaygroundHook(k, func(amps []complex128) {
		seen = len(amps)
		for i, a := range amps {
			if cmplx.Abs(a) < 0.5 {
				amps[i] = 0
			}
		}
	})
	require.True(t, installed)

	s, err := k.ZeroState(1)
	require.NoError(t, err)
	s, err = k.Apply(s, circuit.Operation{Name: "ry", Targets: []int{0}, Params: []float64{0.2}})
	require.NoError(t, err)
	k.GarbageCollect()

	assert.Equal(t, 2, seen)
	assert.Equal(t, 1, k.NodeCount(s))
}

func TestRegistry(t *testing.T) {
	b, err := New(KernelName)
	require.NoError(t, err)
	assert.Equal(t, KernelName, b.Name())
	assert.Contains(t, Names(), KernelName)

	_, err = New("mqt-dd")
	assert.ErrorIs(t, err, ErrUnavailable)
}
