package backend

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"qddcheck/internal/circuit"
)

// GateMatrix returns the row-major unitary of op in the local convention:
// bit j of a local basis index is the state of op.Targets[j]. Controlled
// gates list their controls first, so the controls occupy the low bits.
func GateMatrix(op circuit.Operation) ([]complex128, error) {
	p := func(i int) float64 {
		if i < len(op.Params) {
			return op.Params[i]
		}
		return 0
	}

	switch op.Name {
	case "cx":
		return controlled(pauliX, 1), nil
	case "cy":
		return controlled(pauliY, 1), nil
	case "cz":
		return controlled(pauliZ, 1), nil
	case "ch":
		return controlled(hadamard, 1), nil
	case "crx":
		return controlled(rx(p(0)), 1), nil
	case "cry":
		return controlled(ry(p(0)), 1), nil
	case "crz":
		return controlled(rz(p(0)), 1), nil
	case "cp":
		return controlled(phase(p(0)), 1), nil
	case "swap":
		return swapMatrix(), nil
	case "ccx":
		return controlled(pauliX, 2), nil
	case "cswap":
		return controlled(swapMatrix(), 1), nil
	}

	u, err := singleQubit(op.Name, p)
	if err != nil {
		return nil, err
	}
	return slices.Clone(u), nil
}

var (
	identity2 = []complex128{1, 0, 0, 1}
	hadamard  = []complex128{
		complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
		complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
	}
	pauliX = []complex128{0, 1, 1, 0}
	pauliY = []complex128{0, -1i, 1i, 0}
	pauliZ = []complex128{1, 0, 0, -1}
)

func singleQubit(name string, p func(int) float64) ([]complex128, error) {
	switch name {
	case "id":
		return identity2, nil
	case "h":
		return hadamard, nil
	case "x":
		return pauliX, nil
	case "y":
		return pauliY, nil
	case "z":
		return pauliZ, nil
	case "s":
		return phase(math.Pi / 2), nil
	case "sdg":
		return phase(-math.Pi / 2), nil
	case "t":
		return phase(math.Pi / 4), nil
	case "tdg":
		return phase(-math.Pi / 4), nil
	case "sx":
		return []complex128{0.5 + 0.5i, 0.5 - 0.5i, 0.5 - 0.5i, 0.5 + 0.5i}, nil
	case "sxdg":
		return []complex128{0.5 - 0.5i, 0.5 + 0.5i, 0.5 + 0.5i, 0.5 - 0.5i}, nil
	case "rx":
		return rx(p(0)), nil
	case "ry":
		return ry(p(0)), nil
	case "rz":
		return rz(p(0)), nil
	case "p", "u1":
		return phase(p(0)), nil
	case "u2":
		return u3(math.Pi/2, p(0), p(1)), nil
	case "u3":
		return u3(p(0), p(1), p(2)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGate, name)
}

func rx(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return []complex128{c, js, js, c}
}

func ry(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return []complex128{c, -s, s, c}
}

func rz(theta float64) []complex128 {
	return []complex128{cmplx.Exp(complex(0, -theta/2)), 0, 0, cmplx.Exp(complex(0, theta/2))}
}

func phase(lambda float64) []complex128 {
	return []complex128{1, 0, 0, cmplx.Exp(complex(0, lambda))}
}

func u3(theta, phi, lambda float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return []complex128{
		c, -cmplx.Exp(complex(0, lambda)) * s,
		cmplx.Exp(complex(0, phi)) * s, cmplx.Exp(complex(0, phi+lambda)) * c,
	}
}

// swapMatrix exchanges the two local qubits.
func swapMatrix() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
}

// controlled wraps u (row-major, any power-of-two size) with nControls
// control qubits placed in the low local bits.
func controlled(u []complex128, nControls int) []complex128 {
	du := isqrt(len(u))
	mask := 1<<nControls - 1
	dim := du << nControls
	out := make([]complex128, dim*dim)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			switch {
			case r&mask == mask && c&mask == mask:
				out[r*dim+c] = u[(r>>nControls)*du+(c>>nControls)]
			case r == c:
				out[r*dim+c] = 1
			}
		}
	}
	return out
}

func isqrt(n int) int {
	d := 1
	for d*d < n {
		d++
	}
	return d
}
