// Package backend defines the simulation capability the cross-check is run
// against and a registry of concrete engines.
//
// A Backend stands in for a decision-diagram package: it produces states,
// applies operations, exposes the resulting amplitude vector, reports a node
// count, and serves as the source of dense gate matrices. Any simulator can
// be substituted behind it without touching the reference evolution or the
// comparison logic.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"qddcheck/internal/circuit"
)

var (
	// ErrUnavailable is returned when a backend name is not registered.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrForeignState is returned when a state handle was produced by another backend.
	ErrForeignState = errors.New("state handle does not belong to this backend")

	// ErrUnsupportedGate is returned when a backend cannot build or apply a gate.
	ErrUnsupportedGate = errors.New("unsupported gate")
)

// State is an opaque register state owned by a backend.
type State interface {
	NumQubits() int
}

// MatrixHandle gives access to the dense matrix of one operation. The slice
// returned by Matrix is row-major, 2^k×2^k, and may alias backend storage.
type MatrixHandle interface {
	Matrix(k int) ([]complex128, error)
}

// MatrixSource builds gate matrices for operations.
type MatrixSource interface {
	FromOperation(op circuit.Operation) (MatrixHandle, error)
}

// Backend is the engine under test.
type Backend interface {
	MatrixSource

	Name() string
	ZeroState(n int) (State, error)
	// Apply returns a new state; the input state is left unchanged.
	Apply(s State, op circuit.Operation) (State, error)
	Vector(s State) ([]complex128, error)
	NodeCount(s State) int
	GarbageCollect()
}

// EdgeCounter is implemented by backends that track edges separately from nodes.
type EdgeCounter interface {
	EdgeCount(s State) int
}

// ReduceHook receives the amplitudes of the most recent state during garbage
// collection and may rewrite them in place.
type ReduceHook func(amps []complex128)

// ReduceHookSetter is implemented by backends that accept custom reduction rules.
type ReduceHookSetter interface {
	SetReduceCallback(hook ReduceHook)
}

// InstallPlaygroundHook installs hook on b when b supports it and reports
// whether it did.
func InstallPlaygroundHook(b Backend, hook ReduceHook) bool {
	setter, ok := b.(ReduceHookSetter)
	if !ok {
		return false
	}
	setter.SetReduceCallback(hook)
	return true
}

// Edges returns the edge count of s, falling back to twice the node count
// when b does not track edges.
func Edges(b Backend, s State) int {
	if ec, ok := b.(EdgeCounter); ok {
		return ec.EdgeCount(s)
	}
	return 2 * b.NodeCount(s)
}

// Factory constructs a fresh backend.
type Factory func() (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New constructs the backend registered under name.
func New(name string) (Backend, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnavailable, name, Names())
	}
	return f()
}

// Names lists the registered backends in alphabetical order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
