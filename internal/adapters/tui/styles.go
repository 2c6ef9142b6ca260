package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mikey/email-classifier/internal/presentation"
)

// Color palette
const (
	colorPrimary   = "#1976D2"
	colorSecondary = "#9C27B0"
	colorSuccess   = "#2E7D32"
	colorWarning   = "#ED6C02"
	colorError     = "#D32F2F"
	colorInfo      = "#626262"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#874BFD"
)

// Styles for the TUI application
var (
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorPrimary)).
		MarginBottom(1)

	ActiveTabStyle = lipgloss.NewStyle().
		Bold(true).
		Underline(true).
		Foreground(lipgloss.Color(colorPrimary)).
		Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorInfo)).
		Padding(0, 1)

	InputStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colorInfo)).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorError)).
		Foreground(lipgloss.Color(colorError)).
		Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorInfo))

	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(1, 2)

	ChosenBoxStyle = BoxStyle.
		BorderForeground(lipgloss.Color(colorSuccess))
)

func chipStyle(background string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorHighlight)).
		Background(lipgloss.Color(background)).
		Padding(0, 1)
}

// TreatmentStyle returns the chip style of a category treatment
func TreatmentStyle(treatment string) lipgloss.Style {
	if treatment == "primary" {
		return chipStyle(colorPrimary)
	}
	return chipStyle(colorSecondary)
}

// TierStyle returns the chip style of a confidence tier
func TierStyle(tier presentation.Tier) lipgloss.Style {
	switch tier {
	case presentation.TierHigh:
		return chipStyle(colorSuccess)
	case presentation.TierMedium:
		return chipStyle(colorWarning)
	default:
		return chipStyle(colorError)
	}
}
