package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary   = lipgloss.Color("#4ECDC4")
	Success   = lipgloss.Color("#95E1A3")
	Danger    = lipgloss.Color("#FF6B6B")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	StepActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	StepDoneStyle = lipgloss.NewStyle().
			Foreground(Success)

	StepLockedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	BodyStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Width(54)

	// Live price panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2).
			Width(30)

	PriceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Success)

	ErrorStyle   = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	MutedStyle = lipgloss.NewStyle().Foreground(TextMuted)
)
