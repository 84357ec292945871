package dense

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedArity matches every *UnsupportedArityError.
	ErrUnsupportedArity = errors.New("unsupported gate arity")

	// ErrQubitBudgetExceeded matches every *QubitBudgetError.
	ErrQubitBudgetExceeded = errors.New("qubit budget exceeded")

	// ErrInvalidTargets is returned when a target set cannot be embedded.
	ErrInvalidTargets = errors.New("invalid target qubits")

	// ErrEvolverFinal is returned when stepping an evolver that already finished.
	ErrEvolverFinal = errors.New("evolver already final")
)

// UnsupportedArityError reports a gate whose matrix cannot be embedded.
type UnsupportedArityError struct {
	Gate  string
	Arity int
}

func (e *UnsupportedArityError) Error() string {
	return fmt.Sprintf("gate %s acts on %d qubits; dense extraction supports 1 or 2", e.Gate, e.Arity)
}

func (e *UnsupportedArityError) Is(target error) bool {
	return target == ErrUnsupportedArity
}

// QubitBudgetError reports a register too large for dense simulation.
type QubitBudgetError struct {
	Qubits int
	Max    int
}

func (e *QubitBudgetError) Error() string {
	return fmt.Sprintf("dense simulation refused: %d qubits exceeds the budget of %d", e.Qubits, e.Max)
}

func (e *QubitBudgetError) Is(target error) bool {
	return target == ErrQubitBudgetExceeded
}
