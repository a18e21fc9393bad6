package viz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/grnsim/internal/sim"
)

var ErrNoData = errors.New("viz: no data to plot")

// Plot draws one asciigraph chart per named species. An empty names list
// plots every species of tr.
func Plot(tr *sim.Trajectory, names []string, width, height int) (string, error) {
	if tr == nil || tr.Len() == 0 {
		return "", ErrNoData
	}
	if len(names) == 0 {
		names = tr.Species
	}

	var b strings.Builder
	for _, name := range names {
		col, ok := tr.Column(name)
		if !ok {
			return "", fmt.Errorf("viz: unknown species %q", name)
		}
		b.WriteString(asciigraph.Plot(col,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(name),
		))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// Level classifies a concentration as a logic value: '1' at or above 3/4 of
// high, '0' at or below 1/4 of high, '~' in between.
func Level(v, high float64) rune {
	switch {
	case v >= 0.75*high:
		return '1'
	case v <= 0.25*high:
		return '0'
	default:
		return '~'
	}
}

// Timeline prints one row per species with the logic level each species
// settles to at the end of every segment.
//
//	CLK        0 1 0 1
//	CELL_1_Q   0 1 1 0
func Timeline(tr *sim.Trajectory, names []string, high float64) (string, error) {
	if tr == nil || tr.Len() == 0 || len(tr.Boundaries) == 0 {
		return "", ErrNoData
	}
	if len(names) == 0 {
		names = tr.Species
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	var b strings.Builder
	for _, name := range names {
		col, ok := tr.Column(name)
		if !ok {
			return "", fmt.Errorf("viz: unknown species %q", name)
		}
		b.WriteString(MetricLabel.Render(name))
		b.WriteString(strings.Repeat(" ", width-len(name)))
		for k := range tr.Boundaries {
			_, end := tr.Segment(k)
			if end <= 0 {
				continue
			}
			b.WriteByte(' ')
			switch l := Level(col[end-1], high); l {
			case '1':
				b.WriteString(LevelHigh.Render(string(l)))
			case '0':
				b.WriteString(LevelLow.Render(string(l)))
			default:
				b.WriteString(LevelMid.Render(string(l)))
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
