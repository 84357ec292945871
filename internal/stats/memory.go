package stats

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

const bytesPerMB = 1 << 20

// MemorySampler reports the resident memory of the running process in MB.
type MemorySampler interface {
	SampleMB() float64
}

// NopSampler is used where process introspection is unavailable.
type NopSampler struct{}

func (NopSampler) SampleMB() float64 { return 0 }

// ProcessSampler reads the resident set size of the current process.
type ProcessSampler struct {
	proc *process.Process
}

// NewProcessSampler attaches to the current process.
func NewProcessSampler() (*ProcessSampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("attach to process %d: %w", os.Getpid(), err)
	}
	if _, err := proc.MemoryInfo(); err != nil {
		return nil, fmt.Errorf("read memory info: %w", err)
	}
	return &ProcessSampler{proc: proc}, nil
}

// SampleMB returns the current RSS, or 0 when the read fails.
func (s *ProcessSampler) SampleMB() float64 {
	info, err := s.proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return float64(info.RSS) / bytesPerMB
}

// NewSampler picks the sampler once, at configuration time: a process
// sampler when enabled and supported, otherwise NopSampler.
func NewSampler(enabled bool) MemorySampler {
	if !enabled {
		return NopSampler{}
	}
	s, err := NewProcessSampler()
	if err != nil {
		return NopSampler{}
	}
	return s
}
