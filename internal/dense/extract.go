package dense

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"qddcheck/internal/backend"
	"qddcheck/internal/circuit"
)

// MaxGateArity is the widest gate the extractor accepts.
const MaxGateArity = 2

// Extract materialises the dense matrix of op as an owned 2^k×2^k matrix.
// The matrix comes from src and is copied, so later changes to the
// source's storage do not reach the result.
func Extract(src backend.MatrixSource, op circuit.Operation) (*mat.CDense, error) {
	k := op.Arity()
	if k < 1 || k > MaxGateArity {
		return nil, &UnsupportedArityError{Gate: op.Name, Arity: k}
	}

	handle, err := src.FromOperation(op)
	if err != nil {
		return nil, fmt.Errorf("matrix for %s: %w", op, err)
	}
	raw, err := handle.Matrix(k)
	if err != nil {
		return nil, fmt.Errorf("matrix for %s: %w", op, err)
	}

	dim := 1 << k
	if len(raw) != dim*dim {
		return nil, fmt.Errorf("matrix for %s has %d entries, want %d", op, len(raw), dim*dim)
	}
	owned := make([]complex128, len(raw))
	copy(owned, raw)
	return mat.NewCDense(dim, dim, owned), nil
}
