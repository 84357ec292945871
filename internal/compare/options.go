// Package compare drives the engine under test and the dense reference over
// the same circuits and merges their statistics.
package compare

import (
	"github.com/rs/zerolog"

	"qddcheck/internal/backend"
	"qddcheck/internal/dense"
	"qddcheck/internal/stats"
)

// DefaultTolerance is the fidelity shortfall tolerated before a gate is
// reported as divergent.
const DefaultTolerance = 1e-9

// Options configures a comparison run.
type Options struct {
	// Backend names the registered engine under test.
	Backend string
	// MaxQubits is the dense reference budget.
	MaxQubits int
	// Sampler reports process memory for both engines.
	Sampler stats.MemorySampler
	// Tolerance is the allowed fidelity shortfall per gate. Zero demands
	// exact agreement; negative values select DefaultTolerance.
	Tolerance float64
	Logger    zerolog.Logger
}

// DefaultOptions returns options for the kernel backend with sampling off.
func DefaultOptions() Options {
	return Options{
		Backend:   backend.KernelName,
		MaxQubits: dense.DefaultMaxQubits,
		Sampler:   stats.NopSampler{},
		Tolerance: DefaultTolerance,
		Logger:    zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = backend.KernelName
	}
	if o.MaxQubits <= 0 {
		o.MaxQubits = dense.DefaultMaxQubits
	}
	if o.Sampler == nil {
		o.Sampler = stats.NopSampler{}
	}
	if o.Tolerance < 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}
