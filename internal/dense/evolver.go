// Package dense is the reference simulator: it extracts dense gate
// matrices, embeds them into the full register and evolves an explicit
// state vector by matrix-vector products.
package dense

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"

	"qddcheck/internal/backend"
	"qddcheck/internal/circuit"
	"qddcheck/internal/stats"
)

// DefaultMaxQubits is the largest register simulated densely unless
// configured otherwise.
const DefaultMaxQubits = 8

// Phase is the lifecycle stage of an Evolver.
type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseEvolving
	PhaseFinal
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseEvolving:
		return "evolving"
	case PhaseFinal:
		return "final"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Option configures an Evolver.
type Option func(*Evolver)

// WithMaxQubits sets the qubit budget.
func WithMaxQubits(n int) Option {
	return func(e *Evolver) { e.maxQubits = n }
}

// WithCollector sets the statistics collector records are built with.
func WithCollector(c *stats.Collector) Option {
	return func(e *Evolver) { e.collector = c }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Evolver) { e.log = log }
}

// Evolver owns a dense 2^n amplitude vector and evolves it one operation at
// a time.
type Evolver struct {
	source    backend.MatrixSource
	n         int
	maxQubits int
	state     []complex128
	scratch   []complex128
	phase     Phase
	collector *stats.Collector
	records   []stats.Record
	log       zerolog.Logger
}

// NewEvolver prepares |0…0⟩ on n qubits. Registers above the qubit budget
// are refused before any state is allocated.
func NewEvolver(n int, source backend.MatrixSource, opts ...Option) (*Evolver, error) {
	e := &Evolver{
		source:    source,
		n:         n,
		maxQubits: DefaultMaxQubits,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if n < 1 {
		return nil, fmt.Errorf("dense: register of %d qubits", n)
	}
	if n > e.maxQubits {
		return nil, &QubitBudgetError{Qubits: n, Max: e.maxQubits}
	}
	if e.collector == nil {
		e.collector = stats.NewCollector(stats.EngineStateVector, nil)
	}

	dim := 1 << n
	e.state = make([]complex128, dim)
	e.scratch = make([]complex128, dim)
	e.state[0] = 1
	e.phase = PhaseInitialized
	return e, nil
}

// Step applies op. Non-unitary operations are skipped and reported with
// applied=false. The record's runtime covers the matrix-vector product only.
func (e *Evolver) Step(op circuit.Operation) (rec stats.Record, applied bool, err error) {
	if e.phase == PhaseFinal {
		return stats.Record{}, false, ErrEvolverFinal
	}
	if !op.Unitary {
		e.log.Debug().Str("gate", op.String()).Msg("skipping non-unitary operation")
		return stats.Record{}, false, nil
	}

	u, err := Extract(e.source, op)
	if err != nil {
		return stats.Record{}, false, err
	}
	full, err := Embed(u, op.Targets, e.n)
	if err != nil {
		return stats.Record{}, false, fmt.Errorf("embed %s: %w", op, err)
	}

	dim := len(e.state)
	start := time.Now()
	cblas128.Gemv(blas.NoTrans, 1, full.RawCMatrix(),
		cblas128.Vector{N: dim, Inc: 1, Data: e.state},
		0, cblas128.Vector{N: dim, Inc: 1, Data: e.scratch})
	runtime := time.Since(start)
	e.state, e.scratch = e.scratch, e.state

	e.phase = PhaseEvolving
	rec = e.collector.Collect(op.String(), dim, dim, runtime)
	e.records = append(e.records, rec)
	return rec, true, nil
}

// Run steps through ops and finishes the evolver. It stops at the first
// error, leaving the evolver in its current phase.
func (e *Evolver) Run(ops []circuit.Operation) ([]stats.Record, error) {
	for i, op := range ops {
		if _, _, err := e.Step(op); err != nil {
			return e.Records(), fmt.Errorf("operation %d: %w", i, err)
		}
	}
	e.Finish()
	return e.Records(), nil
}

// Finish marks the evolution complete; later steps fail.
func (e *Evolver) Finish() {
	e.phase = PhaseFinal
}

// Phase returns the lifecycle stage.
func (e *Evolver) Phase() Phase { return e.phase }

// NumQubits returns the register size.
func (e *Evolver) NumQubits() int { return e.n }

// State returns a copy of the amplitude vector.
func (e *Evolver) State() []complex128 {
	out := make([]complex128, len(e.state))
	copy(out, e.state)
	return out
}

// Records returns a copy of the per-gate log.
func (e *Evolver) Records() []stats.Record {
	out := make([]stats.Record, len(e.records))
	copy(out, e.records)
	return out
}
