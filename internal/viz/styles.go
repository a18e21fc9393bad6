package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	LevelHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	LevelMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	LevelLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))
)

// Metric renders one "label: value" line.
func Metric(label, value string) string {
	return MetricLabel.Render(label+":") + " " + MetricValue.Render(value)
}

// Separator renders a horizontal rule of the given width.
func Separator(width int) string {
	if width < 7 {
		return Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-2)
	right := strings.Repeat("─", width-mid-1)
	return Subtle.Render(left + " ◆ " + right)
}

// ProgressBar renders a bar filled to percent, clamped to [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := min(max(int(percent*float64(width)), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case percent > 0.8:
		return LevelHigh.Render(bar)
	case percent > 0.4:
		return LevelMid.Render(bar)
	}
	return LevelLow.Render(bar)
}

// Sparkline renders values as block characters scaled to [0, high], or to
// the range of values when high is not positive. Values are resampled to at
// most width characters.
func Sparkline(values []float64, width int, high float64) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	lo, hi := 0.0, high
	if high <= 0 {
		lo, hi = floats.Min(values), floats.Max(values)
	}
	rng := hi - lo
	if rng <= 0 {
		rng = 1
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := min(max((values[i*step]-lo)/rng, 0), 1)
		c := string(chars[int(norm*float64(len(chars)-1))])
		switch {
		case norm > 0.7:
			b.WriteString(LevelHigh.Render(c))
		case norm > 0.3:
			b.WriteString(LevelMid.Render(c))
		default:
			b.WriteString(LevelLow.Render(c))
		}
	}
	return b.String()
}
