package report

import (
	"github.com/charmbracelet/lipgloss"

	"qddcheck/internal/stats"
)

const (
	// barWidth is the length in cells of the longest bar.
	barWidth   = 40
	labelWidth = 16
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7dcfff")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5")).
			Padding(0, 1)

	divergentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	borderColor = lipgloss.Color("#565f89")
)

// engineColors gives each engine a stable bar colour.
var engineColors = map[stats.Engine]lipgloss.Color{
	stats.EngineDecisionDiagram: lipgloss.Color("#7aa2f7"),
	stats.EngineStateVector:     lipgloss.Color("#bb9af7"),
}

func engineStyle(e stats.Engine) lipgloss.Style {
	c, ok := engineColors[e]
	if !ok {
		c = lipgloss.Color("#73daca")
	}
	return lipgloss.NewStyle().Foreground(c)
}
