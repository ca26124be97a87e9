package status

import (
	"github.com/bnema/farmhand/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	account    lipgloss.Style
	phone      lipgloss.Style
	detail     lipgloss.Style
	label      lipgloss.Style
	warning    lipgloss.Style
	failure    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	phases     map[domain.WorkerPhase]lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		phone:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		failure:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		phases: map[domain.WorkerPhase]lipgloss.Style{
			domain.PhaseLoggingIn:   lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
			domain.PhaseActive:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
			domain.PhaseSleeping:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
			domain.PhaseCoolingDown: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			domain.PhaseTerminated:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		},
	}
}

func (s styles) phase(p domain.WorkerPhase) lipgloss.Style {
	if style, ok := s.phases[p]; ok {
		return style
	}
	return s.detail
}
