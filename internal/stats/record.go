// Package stats turns engine-specific measurements into uniform per-gate
// statistics records.
package stats

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// Engine identifies which simulator produced a record.
type Engine string

const (
	EngineDecisionDiagram Engine = "DecisionDiagram"
	EngineStateVector     Engine = "StateVector"
)

// Record is the measurement taken after one gate on one engine. Runtime is
// always in milliseconds; conversion happens when the record is built.
type Record struct {
	Engine    Engine
	Gate      string
	Nodes     int
	Edges     int
	RuntimeMS float64
	RAMMB     float64
	PeakMB    float64
	// Fidelity against the reference state, nil when there is no reference.
	Fidelity *float64
}

// SetFidelity attaches a fidelity value to the record.
func (r *Record) SetFidelity(f float64) {
	r.Fidelity = &f
}

// Collector builds records for one engine and tracks the peak memory seen
// over its lifetime.
type Collector struct {
	engine  Engine
	sampler MemorySampler
	peak    float64
}

// NewCollector returns a collector for engine. A nil sampler reports 0 MB.
func NewCollector(engine Engine, sampler MemorySampler) *Collector {
	if sampler == nil {
		sampler = NopSampler{}
	}
	return &Collector{engine: engine, sampler: sampler}
}

// Engine returns the engine the collector tags records with.
func (c *Collector) Engine() Engine { return c.engine }

// Peak returns the highest memory sample seen so far, in MB.
func (c *Collector) Peak() float64 { return c.peak }

// Collect builds a record from a measured runtime.
func (c *Collector) Collect(gate string, nodes, edges int, runtime time.Duration) Record {
	return c.CollectSeconds(gate, nodes, edges, runtime.Seconds())
}

// CollectSeconds builds a record from a runtime given in seconds.
func (c *Collector) CollectSeconds(gate string, nodes, edges int, seconds float64) Record {
	ram := c.sampler.SampleMB()
	c.peak = max(c.peak, ram)
	return Record{
		Engine:    c.engine,
		Gate:      gate,
		Nodes:     nodes,
		Edges:     edges,
		RuntimeMS: seconds * 1000.0,
		RAMMB:     ram,
		PeakMB:    c.peak,
	}
}

// TotalRuntimeMS sums the runtimes of records.
func TotalRuntimeMS(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	runtimes := make([]float64, len(records))
	for i, r := range records {
		runtimes[i] = r.RuntimeMS
	}
	return floats.Sum(runtimes)
}
