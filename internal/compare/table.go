package compare

import (
	"fmt"
	"math"
	"strconv"

	"qddcheck/internal/stats"
)

// Row is one record of a merged table, indexed by its position in the log
// it came from.
type Row struct {
	GateIdx int
	stats.Record
}

// Table is the merged per-gate comparison of two engines.
type Table struct {
	Rows []Row
}

// Merge tags each record with its index within its own log and concatenates
// the logs, engine under test first. Logs of different lengths are kept as
// they are.
func Merge(dd, sv []stats.Record) Table {
	rows := make([]Row, 0, len(dd)+len(sv))
	for _, log := range [][]stats.Record{dd, sv} {
		for i, rec := range log {
			rows = append(rows, Row{GateIdx: i, Record: rec})
		}
	}
	return Table{Rows: rows}
}

var columns = []string{"gate_idx", "impl", "gate", "nodes", "edges", "runtime_ms", "ram_mb", "peak_mb", "fidelity"}

// Columns names the presentation columns in order.
func (t Table) Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Cells formats row i for display, one string per column.
func (t Table) Cells(i int) []string {
	r := t.Rows[i]
	fid := ""
	if r.Fidelity != nil {
		fid = strconv.FormatFloat(*r.Fidelity, 'f', 6, 64)
	}
	return []string{
		strconv.Itoa(r.GateIdx),
		string(r.Engine),
		r.Gate,
		strconv.Itoa(r.Nodes),
		strconv.Itoa(r.Edges),
		strconv.FormatFloat(r.RuntimeMS, 'f', 4, 64),
		strconv.FormatFloat(r.RAMMB, 'f', 2, 64),
		strconv.FormatFloat(r.PeakMB, 'f', 2, 64),
		fid,
	}
}

// Engines lists the engines present in the table in order of appearance.
func (t Table) Engines() []stats.Engine {
	var out []stats.Engine
	seen := make(map[stats.Engine]bool)
	for _, r := range t.Rows {
		if !seen[r.Engine] {
			seen[r.Engine] = true
			out = append(out, r.Engine)
		}
	}
	return out
}

// Metric is a numeric column that can be charted.
type Metric string

const (
	MetricNodes    Metric = "nodes"
	MetricEdges    Metric = "edges"
	MetricRuntime  Metric = "runtime_ms"
	MetricRAM      Metric = "ram_mb"
	MetricPeak     Metric = "peak_mb"
	MetricFidelity Metric = "fidelity"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricNodes, MetricEdges, MetricRuntime, MetricRAM, MetricPeak, MetricFidelity:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

func (m Metric) value(r stats.Record) float64 {
	switch m {
	case MetricNodes:
		return float64(r.Nodes)
	case MetricEdges:
		return float64(r.Edges)
	case MetricRuntime:
		return r.RuntimeMS
	case MetricRAM:
		return r.RAMMB
	case MetricPeak:
		return r.PeakMB
	case MetricFidelity:
		if r.Fidelity != nil {
			return *r.Fidelity
		}
	}
	return math.NaN()
}

// Series is one engine's values across the categories of a Pivot. Missing
// values are NaN.
type Series struct {
	Engine stats.Engine
	Values []float64
}

// Pivot is a grouped bar chart: one group per label, one bar per series.
type Pivot struct {
	Title  string
	Labels []string
	Series []Series
}

// Pivot groups metric by gate index with one series per engine.
func (t Table) Pivot(m Metric) Pivot {
	width := 0
	for _, r := range t.Rows {
		width = max(width, r.GateIdx+1)
	}
	p := Pivot{Title: string(m) + " per gate", Labels: make([]string, width)}
	for i := range p.Labels {
		p.Labels[i] = strconv.Itoa(i)
	}

	index := make(map[stats.Engine]int)
	for _, e := range t.Engines() {
		index[e] = len(p.Series)
		p.Series = append(p.Series, Series{Engine: e, Values: nanSlice(width)})
	}
	for _, r := range t.Rows {
		p.Series[index[r.Engine]].Values[r.GateIdx] = m.value(r.Record)
	}
	return p
}

// RuntimePivot groups benchmark totals by circuit with one series per engine.
func RuntimePivot(rows []BenchmarkRow) Pivot {
	p := Pivot{Title: "total runtime_ms per circuit"}
	circuits := make(map[string]int)
	engines := make(map[stats.Engine]int)
	for _, r := range rows {
		if _, ok := circuits[r.Circuit]; !ok {
			circuits[r.Circuit] = len(p.Labels)
			p.Labels = append(p.Labels, r.Circuit)
		}
		if _, ok := engines[r.Engine]; !ok {
			engines[r.Engine] = len(p.Series)
			p.Series = append(p.Series, Series{Engine: r.Engine})
		}
	}
	for i := range p.Series {
		p.Series[i].Values = nanSlice(len(p.Labels))
	}
	for _, r := range rows {
		p.Series[engines[r.Engine]].Values[circuits[r.Circuit]] = r.RuntimeMS
	}
	return p
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
