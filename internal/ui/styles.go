package ui

import (
	"github.com/charmbracelet/lipgloss"

	"badgeline/internal/config"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Valid       lipgloss.Style
	Invalid     lipgloss.Style
	Active      lipgloss.Style
	Gap         lipgloss.Style
	Cursor      lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Help        lipgloss.Style
	Label       lipgloss.Style
	Frame       lipgloss.Style
}

// NewStyles creates a new Styles instance from the configured theme
func NewStyles(theme config.Theme) *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Valid: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color(theme.Valid)).
			Padding(0, 1),
		Invalid: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color(theme.Invalid)).
			Padding(0, 1),
		Active: lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color(theme.Active)).
			Padding(0, 1),
		Gap: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Gap)),
		Cursor: lipgloss.NewStyle().
			Reverse(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Help: lipgloss.NewStyle().Faint(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("241")),
	}
}
