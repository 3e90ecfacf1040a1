// Package report renders solve results, program checks and run history as
// styled console text.
package report

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used by every report.
type Theme struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Header  lipgloss.Style
	Row     lipgloss.Style
	RowAlt  lipgloss.Style
	Border  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// Color palette.
var (
	ColorPrimary = lipgloss.Color("#4A90D9")
	ColorText    = lipgloss.Color("#E0E0E0")
	ColorDim     = lipgloss.Color("#8A8A8A")
	ColorSuccess = lipgloss.Color("#3CB371")
	ColorWarning = lipgloss.Color("#F0AD4E")
	ColorError   = lipgloss.Color("#D9534F")
)

// DefaultTheme returns the standard console theme.
func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(ColorDim).Width(18),
		Value:   lipgloss.NewStyle().Foreground(ColorText).Bold(true),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Row:     lipgloss.NewStyle().Foreground(ColorText),
		RowAlt:  lipgloss.NewStyle().Foreground(ColorDim),
		Border:  lipgloss.NewStyle().Foreground(ColorDim),
		Success: lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Muted:   lipgloss.NewStyle().Foreground(ColorDim),
	}
}
