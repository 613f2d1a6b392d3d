package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/hyperjump/dealbrief/internal/view"
)

var (
	colorMuted  = lipgloss.Color("245")
	colorAccent = lipgloss.Color("33")
	colorError  = lipgloss.Color("196")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMuted)
	focusStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	tagStyle     = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("236"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	badgeStyles = map[view.BadgeKind]lipgloss.Style{
		view.BadgeProcessed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		view.BadgeFailed:    lipgloss.NewStyle().Foreground(colorError),
		view.BadgePending:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

func badge(b view.Badge) string {
	return badgeStyles[b.Kind].Render(b.Label)
}
