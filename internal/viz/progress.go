package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

const barWidth = 40

// GenerationMsg reports the best fitness after one generation of a search.
type GenerationMsg struct {
	Generation  int
	Generations int
	Best        float64
	Evaluations int
}

// DoneMsg ends the view. Err is nil when the search finished normally.
type DoneMsg struct{ Err error }

// Search follows a genetic search: a progress bar over generations, the
// current best fitness and a sparkline of its history. Pressing q or ctrl+c
// quits the view and marks it cancelled; stopping the search itself is left
// to the caller.
type Search struct {
	title       string
	generation  int
	generations int
	evaluations int
	best        []float64
	done        bool
	cancelled   bool
	err         error
}

func NewSearch(title string) Search {
	return Search{title: title}
}

func (m Search) Init() tea.Cmd { return nil }

func (m Search) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	case GenerationMsg:
		m.generation = msg.Generation
		m.generations = msg.Generations
		m.evaluations = msg.Evaluations
		m.best = append(m.best, msg.Best)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Cancelled reports whether the user quit before the search finished.
func (m Search) Cancelled() bool { return m.cancelled && !m.done }

func (m Search) percent() float64 {
	switch {
	case len(m.best) == 0:
		return 0
	case m.generations == 0:
		return 1
	}
	return float64(m.generation) / float64(m.generations)
}

func (m Search) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title) + "\n\n")

	b.WriteString(ProgressBar(m.percent(), barWidth))
	b.WriteString(fmt.Sprintf(" %3.0f%%  generation %d/%d\n", 100*m.percent(), m.generation, m.generations))

	if n := len(m.best); n > 0 {
		b.WriteString(Metric("best fitness", fmt.Sprintf("%.4f", m.best[n-1])) + "\n")
		b.WriteString(Metric("evaluations", humanize.Comma(int64(m.evaluations))) + "\n")
		b.WriteString(Sparkline(m.best, barWidth, 0) + "\n")
	}

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	if !m.done {
		b.WriteString(Subtle.Render("q: stop") + "\n")
	}
	return b.String()
}
