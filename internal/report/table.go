// Package report renders comparison tables and grouped bar charts, either
// as plain text or in an interactive terminal viewer.
package report

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"qddcheck/internal/compare"
	"qddcheck/internal/fidelity"
)

// fidelityColumn is the index of the fidelity column in compare.Table.Cells.
const fidelityColumn = 8

// RenderTable draws the merged per-gate table. Rows whose fidelity falls
// short of 1 by more than tol are highlighted.
func RenderTable(t compare.Table, tol float64) string {
	rows := make([][]string, len(t.Rows))
	for i := range t.Rows {
		rows[i] = t.Cells(i)
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(t.Columns()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == fidelityColumn && row >= 0 && row < len(t.Rows) {
				if f := t.Rows[row].Fidelity; f != nil && fidelity.Divergent(*f, tol) {
					return divergentStyle
				}
			}
			return cellStyle
		})
	return tbl.Render()
}

// RenderBenchmark draws the per-circuit totals.
func RenderBenchmark(rows []compare.BenchmarkRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Circuit, string(r.Engine), strconv.FormatFloat(r.RuntimeMS, 'f', 4, 64)}
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers("circuit", "impl", "runtime_ms").
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return tbl.Render()
}

// Summary is a one-line overview of a merged table.
func Summary(t compare.Table, tol float64) string {
	var checked, divergent int
	for _, r := range t.Rows {
		if r.Fidelity == nil {
			continue
		}
		checked++
		if fidelity.Divergent(*r.Fidelity, tol) {
			divergent++
		}
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(t.Rows)))
	sb.WriteString(" rows, ")
	sb.WriteString(strconv.Itoa(checked))
	sb.WriteString(" gates cross-checked, ")
	sb.WriteString(strconv.Itoa(divergent))
	sb.WriteString(" divergent")
	return sb.String()
}
