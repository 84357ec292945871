package backend

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"qddcheck/internal/circuit"
)

// KernelName is the registry name of the bit-kernel backend.
const KernelName = "kernel"

func init() {
	Register(KernelName, func() (Backend, error) { return NewKernel(), nil })
}

// nodeEpsilon is the squared magnitude below which an amplitude does not
// count as a node.
const nodeEpsilon = 1e-12

// maxCachedMatrices bounds the gate-matrix cache between collections.
const maxCachedMatrices = 256

// kernelState is a state vector held by the kernel backend.
type kernelState struct {
	amps []complex128
	n    int
}

func (s *kernelState) NumQubits() int { return s.n }

// Kernel simulates circuits with per-gate bit kernels that update amplitude
// pairs in place. It never builds full-register operators, which makes it
// an independent check on the Kronecker-embedding reference. Qubit q is bit
// 1<<q of the basis index.
type Kernel struct {
	matrices map[string][]complex128
	hook     ReduceHook
	latest   *kernelState
}

// NewKernel returns an empty kernel backend.
func NewKernel() *Kernel {
	return &Kernel{matrices: make(map[string][]complex128)}
}

func (k *Kernel) Name() string { return KernelName }

func (k *Kernel) ZeroState(n int) (State, error) {
	if n < 1 || n > 30 {
		return nil, fmt.Errorf("kernel: register size %d out of range", n)
	}
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &kernelState{amps: amps, n: n}, nil
}

func (k *Kernel) state(s State) (*kernelState, error) {
	ks, ok := s.(*kernelState)
	if !ok || ks == nil {
		return nil, ErrForeignState
	}
	return ks, nil
}

// Apply copies the amplitudes of s and applies op to the copy.
func (k *Kernel) Apply(s State, op circuit.Operation) (State, error) {
	src, err := k.state(s)
	if err != nil {
		return nil, err
	}
	if want, ok := circuit.ExpectedArity(op.Name); !ok || want != op.Arity() {
		return nil, fmt.Errorf("%w: %s on %d qubits", ErrUnsupportedGate, op.Name, op.Arity())
	}
	for _, q := range op.Targets {
		if q < 0 || q >= src.n {
			return nil, fmt.Errorf("kernel: qubit %d out of range for %d-qubit register", q, src.n)
		}
	}

	next := &kernelState{amps: make([]complex128, len(src.amps)), n: src.n}
	copy(next.amps, src.amps)
	if err := k.applyGate(next, op); err != nil {
		return nil, err
	}
	k.latest = next
	return next, nil
}

func (k *Kernel) applyGate(s *kernelState, op circuit.Operation) error {
	t := op.Targets
	angle := func() float64 {
		if len(op.Params) > 0 {
			return op.Params[0]
		}
		return 0
	}

	switch op.Name {
	case "id":
	case "h":
		s.applyH(t[0])
	case "x":
		s.applyX(t[0])
	case "y":
		s.applyY(t[0])
	case "z":
		s.applyPhase(t[0], -1)
	case "s":
		s.applyPhase(t[0], 1i)
	case "sdg":
		s.applyPhase(t[0], -1i)
	case "t":
		s.applyPhase(t[0], cmplx.Exp(complex(0, math.Pi/4)))
	case "tdg":
		s.applyPhase(t[0], cmplx.Exp(complex(0, -math.Pi/4)))
	case "p", "u1":
		s.applyPhase(t[0], cmplx.Exp(complex(0, angle())))
	case "rx":
		s.applyRX(t[0], angle())
	case "ry":
		s.applyRY(t[0], angle())
	case "rz":
		s.applyRZ(t[0], angle())
	case "cx":
		s.applyCX(t[0], t[1])
	case "cz":
		s.applyCZ(t[0], t[1])
	case "swap":
		s.applySWAP(t[0], t[1])
	case "ccx":
		s.applyCCX(t[0], t[1], t[2])
	default:
		u, err := k.matrix(op)
		if err != nil {
			return err
		}
		s.applyLocal(u, t)
	}
	return nil
}

// matrix returns the cached gate matrix for op, building it on first use.
func (k *Kernel) matrix(op circuit.Operation) ([]complex128, error) {
	key := matrixKey(op)
	if u, ok := k.matrices[key]; ok {
		return u, nil
	}
	u, err := GateMatrix(op)
	if err != nil {
		return nil, err
	}
	k.matrices[key] = u
	return u, nil
}

func matrixKey(op circuit.Operation) string {
	var sb strings.Builder
	sb.WriteString(op.Name)
	for _, p := range op.Params {
		fmt.Fprintf(&sb, ":%x", math.Float64bits(p))
	}
	return sb.String()
}

// kernelMatrix is a handle into the kernel's matrix cache.
type kernelMatrix struct {
	name  string
	arity int
	data  []complex128
}

func (m *kernelMatrix) Matrix(k int) ([]complex128, error) {
	if k != m.arity {
		return nil, fmt.Errorf("kernel: %s acts on %d qubits, requested %d", m.name, m.arity, k)
	}
	return m.data, nil
}

// FromOperation returns a handle whose matrix aliases the kernel's cache.
func (k *Kernel) FromOperation(op circuit.Operation) (MatrixHandle, error) {
	u, err := k.matrix(op)
	if err != nil {
		return nil, err
	}
	if len(u) != 1<<(2*op.Arity()) {
		return nil, fmt.Errorf("kernel: %s matrix does not match %d targets", op.Name, op.Arity())
	}
	return &kernelMatrix{name: op.Name, arity: op.Arity(), data: u}, nil
}

func (k *Kernel) Vector(s State) ([]complex128, error) {
	ks, err := k.state(s)
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(ks.amps))
	copy(out, ks.amps)
	return out, nil
}

// NodeCount returns the number of non-negligible amplitudes of s.
func (k *Kernel) NodeCount(s State) int {
	ks, err := k.state(s)
	if err != nil {
		return 0
	}
	nodes := 0
	for _, a := range ks.amps {
		if real(a)*real(a)+imag(a)*imag(a) > nodeEpsilon {
			nodes++
		}
	}
	return nodes
}

// SetReduceCallback installs a hook run on the most recent state at every
// garbage collection.
func (k *Kernel) SetReduceCallback(hook ReduceHook) {
	k.hook = hook
}

// GarbageCollect trims the matrix cache and runs the reduce hook.
func (k *Kernel) GarbageCollect() {
	if len(k.matrices) > maxCachedMatrices {
		clear(k.matrices)
	}
	if k.hook != nil && k.latest != nil {
		k.hook(k.latest.amps)
	}
}

// ──────────────────────────── Bit kernels ────────────────────────────

func (s *kernelState) applyH(q int) {
	h := complex(1/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = h * (a + b)
			s.amps[j] = h * (a - b)
		}
	}
}

func (s *kernelState) applyX(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *kernelState) applyY(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = -1i*s.amps[j], 1i*s.amps[i]
		}
	}
}

// applyPhase multiplies every amplitude with qubit q set by factor.
func (s *kernelState) applyPhase(q int, factor complex128) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

func (s *kernelState) applyRX(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a + js*b
			s.amps[j] = js*a + c*b
		}
	}
}

func (s *kernelState) applyRY(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a - sn*b
			s.amps[j] = sn*a + c*b
		}
	}
}

func (s *kernelState) applyRZ(q int, theta float64) {
	bit := 1 << q
	up := cmplx.Exp(complex(0, theta/2))
	down := cmplx.Conj(up)
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= up
		} else {
			s.amps[i] *= down
		}
	}
}

func (s *kernelState) applyCX(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *kernelState) applyCZ(control, target int) {
	mask := 1<<control | 1<<target
	for i := range s.amps {
		if i&mask == mask {
			s.amps[i] = -s.amps[i]
		}
	}
}

func (s *kernelState) applySWAP(q1, q2 int) {
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := range s.amps {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *kernelState) applyCCX(c1, c2, target int) {
	mask := 1<<c1 | 1<<c2
	tBit := 1 << target
	for i := range s.amps {
		if i&mask == mask && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// applyLocal applies a row-major local matrix u to the given qubits by
// gathering each group of amplitudes that differ only on those qubits.
func (s *kernelState) applyLocal(u []complex128, qubits []int) {
	k := len(qubits)
	dim := 1 << k
	var mask int
	for _, q := range qubits {
		mask |= 1 << q
	}

	idx := make([]int, dim)
	in := make([]complex128, dim)
	for base := range s.amps {
		if base&mask != 0 {
			continue
		}
		for local := 0; local < dim; local++ {
			i := base
			for j, q := range qubits {
				if local&(1<<j) != 0 {
					i |= 1 << q
				}
			}
			idx[local] = i
			in[local] = s.amps[i]
		}
		for r := 0; r < dim; r++ {
			var sum complex128
			for c := 0; c < dim; c++ {
				sum += u[r*dim+c] * in[c]
			}
			s.amps[idx[r]] = sum
		}
	}
}
