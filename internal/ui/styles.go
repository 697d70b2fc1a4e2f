package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/goodbytes/linkdetect/internal/parser"
)

// Color palette.
var (
	PrimaryColor   = lipgloss.Color("205") // Pink
	SecondaryColor = lipgloss.Color("241") // Gray
	SuccessColor   = lipgloss.Color("82")  // Green
	ErrorColor     = lipgloss.Color("196") // Red
	WarningColor   = lipgloss.Color("214") // Orange
	MutedColor     = lipgloss.Color("245") // Dimmed text

	BareColor       = lipgloss.Color("39")  // Blue
	MarkupColor     = lipgloss.Color("141") // Purple
	StructuredColor = lipgloss.Color("37")  // Teal
)

// Text styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			MarginTop(1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	DetailLabelStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)
)

// SpinnerStyle returns the style for the spinner.
func SpinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PrimaryColor)
}

func badge(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(bg).
		Padding(0, 1)
}

// Badge styles per link category.
var (
	BadgeBare       = badge(BareColor)
	BadgeMarkup     = badge(MarkupColor)
	BadgeStructured = badge(StructuredColor)
)

// CategoryStyle returns the text style of a link category.
func CategoryStyle(c parser.Category) lipgloss.Style {
	switch c {
	case parser.CategoryMarkup:
		return lipgloss.NewStyle().Foreground(MarkupColor)
	case parser.CategoryStructured:
		return lipgloss.NewStyle().Foreground(StructuredColor)
	default:
		return lipgloss.NewStyle().Foreground(BareColor)
	}
}

// TypeBadge returns a styled badge for the given link type.
func TypeBadge(t parser.LinkType) string {
	switch t.Category() {
	case parser.CategoryMarkup:
		return BadgeMarkup.Render(string(t))
	case parser.CategoryStructured:
		return BadgeStructured.Render(string(t))
	default:
		return BadgeBare.Render(string(t))
	}
}
