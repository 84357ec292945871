package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"qddcheck/internal/compare"
)

// Horizontal block elements for sub-cell resolution (1/8 to 7/8).
var eighths = [8]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

// RenderBars draws p as a grouped horizontal bar chart: one group per label,
// one bar per series, scaled so the largest value spans width cells. Missing
// values are shown as n/a.
func RenderBars(p compare.Pivot, width int) string {
	if width <= 0 {
		width = barWidth
	}
	peak := 0.0
	for _, s := range p.Series {
		for _, v := range s.Values {
			if !math.IsNaN(v) {
				peak = max(peak, v)
			}
		}
	}

	engineWidth := 0
	for _, s := range p.Series {
		engineWidth = max(engineWidth, lipgloss.Width(string(s.Engine)))
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(p.Title))
	sb.WriteString("\n")
	for i, label := range p.Labels {
		for j, s := range p.Series {
			head := ""
			if j == 0 {
				head = label
			}
			sb.WriteString(runewidth.FillRight(runewidth.Truncate(head, labelWidth, "…"), labelWidth))
			sb.WriteString(" ")
			sb.WriteString(dimStyle.Render(fmt.Sprintf("%-*s ", engineWidth, s.Engine)))

			v := s.Values[i]
			if math.IsNaN(v) {
				sb.WriteString(dimStyle.Render("n/a"))
			} else {
				sb.WriteString(engineStyle(s.Engine).Render(bar(v, peak, width)))
				sb.WriteString(" ")
				sb.WriteString(formatValue(v))
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// bar returns a run of block characters of length v/peak*width cells.
func bar(v, peak float64, width int) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	units := int(math.Round(v / peak * float64(width*8)))
	units = min(units, width*8)
	s := strings.Repeat("█", units/8)
	if rem := units % 8; rem > 0 {
		s += string(eighths[rem])
	}
	return s
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.4g", v)
}
