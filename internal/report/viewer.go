package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qddcheck/internal/compare"
)

// mode is which panel the viewer shows.
type mode int

const (
	modeTable mode = iota
	modeBars
)

var metrics = []compare.Metric{
	compare.MetricRuntime,
	compare.MetricNodes,
	compare.MetricEdges,
	compare.MetricRAM,
	compare.MetricPeak,
	compare.MetricFidelity,
}

// Viewer is an interactive browser over a merged comparison table.
type Viewer struct {
	title     string
	data      compare.Table
	tolerance float64
	table     table.Model
	mode      mode
	metric    int
	width     int
	height    int
}

// NewViewer builds a viewer for t, charting metric in bar mode.
func NewViewer(title string, t compare.Table, metric compare.Metric, tol float64) Viewer {
	cols := t.Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c)
	}
	rows := make([]table.Row, len(t.Rows))
	for i := range t.Rows {
		cells := t.Cells(i)
		for j, c := range cells {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
		rows[i] = table.Row(cells)
	}
	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		columns[i] = table.Column{Title: c, Width: widths[i]}
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows), 20)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1a1b26")).
		Background(lipgloss.Color("#ff9e64"))
	tbl.SetStyles(s)

	v := Viewer{title: title, data: t, tolerance: tol, table: tbl}
	for i, m := range metrics {
		if m == metric {
			v.metric = i
		}
	}
	return v
}

func (v Viewer) Init() tea.Cmd {
	return nil
}

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetHeight(max(msg.Height-8, 3))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return v, tea.Quit
		case "tab":
			if v.mode == modeTable {
				v.mode = modeBars
			} else {
				v.mode = modeTable
			}
			return v, nil
		case "m":
			v.metric = (v.metric + 1) % len(metrics)
			return v, nil
		}
	}

	if v.mode == modeTable {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}
	return v, nil
}

// Metric returns the metric currently charted.
func (v Viewer) Metric() compare.Metric { return metrics[v.metric] }

func (v Viewer) View() string {
	var body string
	switch v.mode {
	case modeBars:
		w := barWidth
		if v.width > 0 {
			w = max(v.width-labelWidth-32, 10)
		}
		body = RenderBars(v.data.Pivot(v.Metric()), w)
	default:
		body = v.table.View() + "\n" + v.selectedDetail()
	}

	header := titleStyle.Render(v.title) + "  " + dimStyle.Render(Summary(v.data, v.tolerance))
	controls := controlsStyle.Render(dimStyle.Render("↑↓ Row  ⇥ Table/Bars  m Metric (" + string(v.Metric()) + ")  q Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, header, panelStyle.Render(body), controls)
}

func (v Viewer) selectedDetail() string {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.data.Rows) {
		return ""
	}
	r := v.data.Rows[i]
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s #%d  %s", r.Engine, r.GateIdx, r.Gate))
	if r.Fidelity != nil {
		sb.WriteString(fmt.Sprintf("  fidelity %.12f", *r.Fidelity))
	}
	return dimStyle.Render(sb.String())
}

// Run shows v full screen until the user quits.
func Run(v Viewer) error {
	p := tea.NewProgram(v, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
