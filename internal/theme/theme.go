// Package theme provides the Lip Gloss color palette and reusable styles
// for the Mugloar TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Outcome colors.
var (
	ColorSuccess = lipgloss.Color("#22c55e")
	ColorFailure = lipgloss.Color("#dc2626")
	ColorGold    = lipgloss.Color("#f59e0b")
	ColorBusy    = lipgloss.Color("#a855f7")
)

// Debug log kind colors.
var (
	ColorKindWS   = lipgloss.Color("#2563eb")
	ColorKindEvt  = lipgloss.Color("#06b6d4")
	ColorKindNav  = lipgloss.Color("#7c3aed")
	ColorKindHTTP = lipgloss.Color("#d97706")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// OutcomeColor returns the color for a solved/failed flag.
func OutcomeColor(success bool) lipgloss.Color {
	if success {
		return ColorSuccess
	}
	return ColorFailure
}

// BoolText renders a flag the way the server's result pages do.
func BoolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleButton = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(ColorBright).
			Background(ColorBusy)

	StyleButtonDisabled = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(ColorDimmed).
				Background(ColorBorder)
)
