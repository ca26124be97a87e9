package status

import (
	"errors"
	"io"

	"github.com/bnema/farmhand/internal/application"
	"github.com/bnema/farmhand/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

// summary counts accounts per phase for the header line.
type summary struct {
	total   int
	enabled int
	phases  map[domain.WorkerPhase]int
}

type model struct {
	statuses []application.Status
	opts     RenderOptions
	styles   styles
	output   string
}

func newModel(statuses []application.Status, opts RenderOptions) model {
	return model{
		statuses: statuses,
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.statuses, summarize(m.statuses), m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func summarize(statuses []application.Status) summary {
	sum := summary{total: len(statuses), phases: map[domain.WorkerPhase]int{}}
	for _, status := range statuses {
		if status.Account.Enabled {
			sum.enabled++
		}
		if status.Runtime != nil {
			sum.phases[status.Runtime.Phase]++
		}
	}
	return sum
}

// Render lays the statuses out as a styled report using a headless
// bubbletea program.
func Render(statuses []application.Status, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(statuses, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
