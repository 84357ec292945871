package compare

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qddcheck/internal/backend"
	"qddcheck/internal/circuit"
	"qddcheck/internal/dense"
	"qddcheck/internal/fidelity"
	"qddcheck/internal/stats"
)

// Simulator runs a circuit on the engine under test, collecting per-gate
// statistics. When the register fits the dense budget it steps a reference
// evolver alongside and attaches the fidelity between the two states to
// every record.
type Simulator struct {
	circ    *circuit.Circuit
	backend backend.Backend
	opts    Options
	runID   string
	log     zerolog.Logger
}

// NewSimulator prepares a run of c on b.
func NewSimulator(c *circuit.Circuit, b backend.Backend, opts Options) *Simulator {
	opts = opts.withDefaults()
	runID := uuid.New().String()
	return &Simulator{
		circ:    c,
		backend: b,
		opts:    opts,
		runID:   runID,
		log: opts.Logger.With().
			Str("component", "simulator").
			Str("run_id", runID).
			Str("circuit", c.Name).
			Str("backend", b.Name()).
			Logger(),
	}
}

// RunID identifies this run in logs.
func (s *Simulator) RunID() string { return s.runID }

// Run applies every unitary operation in order and returns the records and
// the final state. Engine errors abort the run.
func (s *Simulator) Run() ([]stats.Record, backend.State, error) {
	n := s.circ.NumQubits
	state, err := s.backend.ZeroState(n)
	if err != nil {
		return nil, nil, fmt.Errorf("zero state: %w", err)
	}

	collector := stats.NewCollector(stats.EngineDecisionDiagram, s.opts.Sampler)
	ref := s.reference(n)

	records := make([]stats.Record, 0, s.circ.UnitaryCount())
	for i, op := range s.circ.Ops {
		if !op.Unitary {
			continue
		}

		start := time.Now()
		next, err := s.backend.Apply(state, op)
		runtime := time.Since(start)
		if err != nil {
			return records, state, fmt.Errorf("operation %d (%s): %w", i, op, err)
		}
		state = next
		s.backend.GarbageCollect()

		rec := collector.Collect(op.String(), s.backend.NodeCount(state), backend.Edges(s.backend, state), runtime)
		if ref != nil {
			ref = s.crossCheck(ref, op, state, &rec)
		}
		records = append(records, rec)
	}
	if ref != nil {
		ref.Finish()
	}

	s.log.Info().
		Str("engine", string(collector.Engine())).
		Int("gates", len(records)).
		Float64("runtime_ms", stats.TotalRuntimeMS(records)).
		Float64("peak_mb", collector.Peak()).
		Msg("run complete")
	return records, state, nil
}

func (s *Simulator) reference(n int) *dense.Evolver {
	if n > s.opts.MaxQubits {
		s.log.Debug().Int("qubits", n).Int("max", s.opts.MaxQubits).Msg("register above dense budget, fidelity not tracked")
		return nil
	}
	ref, err := dense.NewEvolver(n, s.backend,
		dense.WithMaxQubits(s.opts.MaxQubits),
		dense.WithCollector(stats.NewCollector(stats.EngineStateVector, s.opts.Sampler)),
		dense.WithLogger(s.log),
	)
	if err != nil {
		s.log.Warn().Err(err).Msg("reference evolver unavailable")
		return nil
	}
	return ref
}

// crossCheck advances ref by op and attaches the fidelity against state to
// rec. It returns nil once the reference can no longer follow the run.
func (s *Simulator) crossCheck(ref *dense.Evolver, op circuit.Operation, state backend.State, rec *stats.Record) *dense.Evolver {
	if _, _, err := ref.Step(op); err != nil {
		s.log.Warn().Err(err).Str("gate", op.String()).Msg("reference stopped, fidelity not tracked further")
		return nil
	}
	vec, err := s.backend.Vector(state)
	if err != nil {
		s.log.Warn().Err(err).Msg("backend vector unavailable")
		return nil
	}
	f, err := fidelity.Fidelity(ref.State(), vec)
	switch {
	case errors.Is(err, fidelity.ErrNonFinite):
		s.log.Warn().Err(err).Str("gate", op.String()).Msg("non-finite state")
	case err != nil:
		s.log.Warn().Err(err).Msg("fidelity")
		return nil
	}
	rec.SetFidelity(f)
	if fidelity.Divergent(f, s.opts.Tolerance) {
		s.log.Warn().Str("gate", op.String()).Float64("fidelity", f).Msg("engines diverged")
	}
	return ref
}

// RunReference evolves c densely from |0…0⟩ using source for gate matrices.
// Circuits with gates wider than the dense extractor supports are refused
// before any state is allocated.
func RunReference(c *circuit.Circuit, source backend.MatrixSource, opts Options) ([]stats.Record, []complex128, error) {
	opts = opts.withDefaults()
	if w := c.MaxArity(); w > dense.MaxGateArity {
		return nil, nil, fmt.Errorf("%s: %w", c.Name, &dense.UnsupportedArityError{Gate: widestGate(c), Arity: w})
	}
	e, err := dense.NewEvolver(c.NumQubits, source,
		dense.WithMaxQubits(opts.MaxQubits),
		dense.WithCollector(stats.NewCollector(stats.EngineStateVector, opts.Sampler)),
		dense.WithLogger(opts.Logger.With().Str("component", "reference").Str("circuit", c.Name).Logger()),
	)
	if err != nil {
		return nil, nil, err
	}
	records, err := e.Run(c.Ops)
	if err != nil {
		return records, nil, err
	}
	return records, e.State(), nil
}

func widestGate(c *circuit.Circuit) string {
	w := c.MaxArity()
	for _, op := range c.Ops {
		if op.Unitary && op.Arity() == w {
			return op.Name
		}
	}
	return ""
}
