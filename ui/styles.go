package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(midGray).
			Render

	dimStyle = lipgloss.NewStyle().
			Foreground(normalDim).
			Render
)

func logoView() string {
	return logoStyle.Render(" typedtext ")
}

func errorView(err error) string {
	return "\n  " + errorTitleStyle.Render("ERROR") + " " + dimStyle(err.Error()) + "\n\n  " +
		subtleStyle("press any key to exit") + "\n"
}
