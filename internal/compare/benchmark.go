package compare

import (
	"errors"
	"fmt"

	"qddcheck/internal/backend"
	"qddcheck/internal/circuit"
	"qddcheck/internal/dense"
	"qddcheck/internal/stats"
)

// BenchmarkRow is the total runtime of one engine on one circuit.
type BenchmarkRow struct {
	Circuit   string
	Engine    stats.Engine
	RuntimeMS float64
}

// Benchmark runs both engines over every circuit in paths, in order. Load and
// engine errors are fatal. A reference failure only drops that circuit's
// StateVector row.
func Benchmark(paths []string, opts Options) ([]BenchmarkRow, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With().Str("component", "benchmark").Logger()

	var rows []BenchmarkRow
	for _, path := range paths {
		c, err := circuit.Load(path)
		if err != nil {
			return rows, err
		}
		b, err := backend.New(opts.Backend)
		if err != nil {
			return rows, err
		}

		dd, _, err := NewSimulator(c, b, opts).Run()
		if err != nil {
			return rows, fmt.Errorf("%s: %w", c.Name, err)
		}
		rows = append(rows, BenchmarkRow{Circuit: c.Name, Engine: stats.EngineDecisionDiagram, RuntimeMS: stats.TotalRuntimeMS(dd)})

		sv, _, err := RunReference(c, b, opts)
		if err != nil {
			log.Warn().Err(err).Str("circuit", c.Name).Msg("reference skipped")
			continue
		}
		rows = append(rows, BenchmarkRow{Circuit: c.Name, Engine: stats.EngineStateVector, RuntimeMS: stats.TotalRuntimeMS(sv)})
		log.Info().Str("circuit", c.Name).Int("qubits", c.NumQubits).Msg("benchmarked")
	}
	return rows, nil
}

// CompareFile loads one circuit, runs both engines and merges their logs.
// A register above the dense budget yields a table with engine-under-test
// rows only.
func CompareFile(path string, opts Options) (Table, error) {
	opts = opts.withDefaults()
	c, err := circuit.Load(path)
	if err != nil {
		return Table{}, err
	}
	b, err := backend.New(opts.Backend)
	if err != nil {
		return Table{}, err
	}

	dd, _, err := NewSimulator(c, b, opts).Run()
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	sv, _, err := RunReference(c, b, opts)
	switch {
	case errors.Is(err, dense.ErrQubitBudgetExceeded):
		opts.Logger.Warn().Err(err).Str("circuit", c.Name).Msg("reference skipped")
		return Merge(dd, nil), nil
	case err != nil:
		return Merge(dd, sv), fmt.Errorf("%s reference: %w", c.Name, err)
	}
	return Merge(dd, sv), nil
}
