package chat

import "github.com/charmbracelet/lipgloss"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(special)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(subtle)
)
