// Package detail renders the processed-message flyout overlay.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/theme"
)

const (
	panelWidth = 64
	labelWidth = 16
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// Model holds the state for the detail overlay.
type Model struct {
	Message *client.ProcessedMessage
}

// New creates a detail model for the given message.
func New(pm *client.ProcessedMessage) Model {
	return Model{Message: pm}
}

// View renders the detail panel. Returns an empty string if no message is set.
func (m Model) View() string {
	if m.Message == nil {
		return ""
	}
	return stylePanel.Width(panelWidth).Render(m.renderInner(m.Message))
}

func (m Model) renderInner(pm *client.ProcessedMessage) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Message: "+truncate(pm.AdID, 40)) + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	writeRow(&b, "Ad ID", pm.AdID)
	writeRow(&b, "Message", wrap(pm.Message, panelWidth-labelWidth-4))
	writeRow(&b, "Turn", fmt.Sprintf("%d", pm.Turn))
	writeRow(&b, "Reward", fmt.Sprintf("%d", pm.Reward))

	outcome := lipgloss.NewStyle().Foreground(theme.OutcomeColor(pm.Success)).Render(theme.BoolText(pm.Success))
	writeRow(&b, "Success", outcome)

	// Only failures carry a reason worth showing.
	if strings.TrimSpace(pm.FailureReason) != "" {
		writeRow(&b, "Failure Reason", wrap(pm.FailureReason, panelWidth-labelWidth-4))
	}

	b.WriteString("\n")
	b.WriteString(styleFooter.Render("[esc] close"))

	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render(label+":"), styleValue.Render(value)) + "\n")
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
