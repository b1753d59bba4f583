// Package ui implements the interactive terminal frontend: login,
// dashboard, project workspace, and quiz history pages.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7C6FEB")
	colorAccent  = lipgloss.Color("#4DB6AC")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#E53935")
	colorWarn    = lipgloss.Color("#FFC107")
	colorOK      = lipgloss.Color("#8BC34A")
)

// Styles holds the styled components shared across pages.
type Styles struct {
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabDisabled lipgloss.Style

	Selected lipgloss.Style
	Banner   lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style

	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style

	OptionCorrect lipgloss.Style
	OptionWrong   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 2),
		Title: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(colorAccent),
		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),

		TabActive: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1),
		TabDisabled: lipgloss.NewStyle().
			Foreground(colorMuted).
			Faint(true).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		Banner: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(colorWarn),
		Success: lipgloss.NewStyle().
			Foreground(colorOK),

		UserTurn: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		AssistantTurn: lipgloss.NewStyle(),

		OptionCorrect: lipgloss.NewStyle().
			Foreground(colorOK).
			Bold(true),
		OptionWrong: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),
	}
}
