package dense

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"qddcheck/internal/backend"
	"qddcheck/internal/circuit"
	"qddcheck/internal/stats"
)

// mockSource is a MatrixSource double.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) FromOperation(op circuit.Operation) (backend.MatrixHandle, error) {
	args := m.Called(op)
	h, _ := args.Get(0).(backend.MatrixHandle)
	return h, args.Error(1)
}

// sliceHandle serves a fixed matrix.
type sliceHandle []complex128

func (h sliceHandle) Matrix(int) ([]complex128, error) { return h, nil }

func unitary(name string, params []float64, targets ...int) circuit.Operation {
	return circuit.Operation{Name: name, Targets: targets, Params: params, Unitary: true}
}

func TestBellState(t *testing.T) {
	e, err := NewEvolver(2, backend.NewKernel())
	require.NoError(t, err)
	assert.Equal(t, PhaseInitialized, e.Phase())

	records, err := e.Run([]circuit.Operation{
		unitary("h", nil, 0),
		unitary("cx", nil, 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, PhaseFinal, e.Phase())
	require.Len(t, records, 2)

	want := []float64{1 / math.Sqrt2, 0, 0, 1 / math.Sqrt2}
	state := e.State()
	for i, w := range want {
		assert.InDelta(t, w, cmplx.Abs(state[i]), 1e-9, "amplitude %d", i)
	}

	for _, rec := range records {
		assert.Equal(t, stats.EngineStateVector, rec.Engine)
		assert.Equal(t, 4, rec.Nodes)
		assert.Equal(t, 4, rec.Edges)
		assert.GreaterOrEqual(t, rec.RuntimeMS, 0.0)
		assert.Nil(t, rec.Fidelity)
	}
	assert.Equal(t, "h q[0]", records[0].Gate)
	assert.Equal(t, "cx q[0], q[1]", records[1].Gate)
}

func TestQubitBudgetRefusesBeforeAllocation(t *testing.T) {
	src := &mockSource{}
	_, err := NewEvolver(10, src)

	var budget *QubitBudgetError
	require.ErrorAs(t, err, &budget)
	assert.ErrorIs(t, err, ErrQubitBudgetExceeded)
	assert.Equal(t, 10, budget.Qubits)
	assert.Equal(t, DefaultMaxQubits, budget.Max)
	src.AssertNotCalled(t, "FromOperation", mock.Anything)

	e, err := NewEvolver(10, src, WithMaxQubits(10))
	require.NoError(t, err)
	assert.Len(t, e.State(), 1024)
}

func TestNonUnitaryOperationsAreSkipped(t *testing.T) {
	e, err := NewEvolver(1, backend.NewKernel())
	require.NoError(t, err)

	_, applied, err := e.Step(circuit.Operation{Name: "measure", Targets: []int{0}})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, PhaseInitialized, e.Phase())
	assert.Empty(t, e.Records())

	_, applied, err = e.Step(unitary("x", nil, 0))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, PhaseEvolving, e.Phase())
	assert.Equal(t, []complex128{0, 1}, e.State())
}

func TestStepAfterFinishFails(t *testing.T) {
	e, err := NewEvolver(1, backend.NewKernel())
	require.NoError(t, err)
	e.Finish()

	_, _, err = e.Step(unitary("x", nil, 0))
	assert.ErrorIs(t, err, ErrEvolverFinal)
}

func TestRunAbortsOnUnsupportedArity(t *testing.T) {
	e, err := NewEvolver(3, backend.NewKernel())
	require.NoError(t, err)

	records, err := e.Run([]circuit.Operation{
		unitary("x", nil, 0),
		unitary("ccx", nil, 0, 1, 2),
		unitary("x", nil, 1),
	})
	assert.ErrorIs(t, err, ErrUnsupportedArity)
	assert.Len(t, records, 1)
	assert.Equal(t, PhaseEvolving, e.Phase())
}

func TestEvolutionPreservesNorm(t *testing.T) {
	e, err := NewEvolver(3, backend.NewKernel())
	require.NoError(t, err)

	_, err = e.Run([]circuit.Operation{
		unitary("h", nil, 2),
		unitary("u3", []float64{0.4, 1.1, -2.0}, 0),
		unitary("crx", []float64{0.7}, 2, 0),
		unitary("swap", nil, 0, 2),
		unitary("cy", nil, 1, 2),
	})
	require.NoError(t, err)

	var norm float64
	for _, a := range e.State() {
		norm += real(a * cmplx.Conj(a))
	}
	assert.InDelta(t, 1.0, norm, 1e-12)
}

func TestExtractCopiesSourceMatrix(t *testing.T) {
	k := backend.NewKernel()
	op := unitary("h", nil, 0)

	first, err := Extract(k, op)
	require.NoError(t, err)
	first.Set(0, 0, 42)

	second, err := Extract(k, op)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt2, real(second.At(0, 0)), 1e-12)
}

func TestExtractErrors(t *testing.T) {
	k := backend.NewKernel()

	_, err := Extract(k, unitary("ccx", nil, 0, 1, 2))
	var arity *UnsupportedArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 3, arity.Arity)
	assert.ErrorIs(t, err, ErrUnsupportedArity)

	src := &mockSource{}
	src.On("FromOperation", mock.Anything).Return(nil, errors.New("engine offline")).Once()
	_, err = Extract(src, unitary("x", nil, 0))
	assert.ErrorContains(t, err, "engine offline")
	src.AssertExpectations(t)

	short := &mockSource{}
	short.On("FromOperation", mock.Anything).Return(sliceHandle{1, 0, 0}, nil)
	_, err = Extract(short, unitary("x", nil, 0))
	assert.ErrorContains(t, err, "entries")
}
