// Package result renders a finished game: a markdown summary and the table of
// processed messages.
package result

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/theme"
)

const (
	pageRows  = 10
	wrapWidth = 72
)

// Source fetches a game result.
type Source interface {
	GetResult(ctx context.Context, gameID string) (*client.GameResult, error)
}

// LoadedMsg carries a fetched result or the fetch error.
type LoadedMsg struct {
	GameID string
	Result *client.GameResult
	Err    error
}

// Fetch loads the result of gameID.
func Fetch(ctx context.Context, src Source, gameID string) tea.Cmd {
	return func() tea.Msg {
		r, err := src.GetResult(ctx, gameID)
		return LoadedMsg{GameID: gameID, Result: r, Err: err}
	}
}

// Model holds the result view state.
type Model struct {
	GameID  string
	Result  *client.GameResult
	Err     error
	Loading bool

	summary string
	table   table.Model
}

var columns = []table.Column{
	{Title: "Turn", Width: 5},
	{Title: "Ad ID", Width: 12},
	{Title: "Message", Width: 36},
	{Title: "Reward", Width: 7},
	{Title: "Success", Width: 8},
}

// New creates an empty result view.
func New() Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(pageRows),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorBright).
		Background(theme.ColorBusy)
	t.SetStyles(styles)
	return Model{table: t}
}

// Load resets the view while gameID is being fetched.
func (m *Model) Load(gameID string) {
	m.GameID = gameID
	m.Result = nil
	m.Err = nil
	m.Loading = true
	m.summary = ""
	m.table.SetRows(nil)
	m.table.GotoTop()
}

// SetLoaded applies a fetch result. Results for another game are ignored.
func (m *Model) SetLoaded(msg LoadedMsg) {
	if msg.GameID != m.GameID {
		return
	}
	m.Loading = false
	m.Err = msg.Err
	m.Result = msg.Result
	if msg.Err != nil || msg.Result == nil {
		return
	}

	rows := make([]table.Row, 0, len(msg.Result.Messages))
	for _, pm := range msg.Result.Messages {
		rows = append(rows, table.Row{
			strconv.Itoa(pm.Turn),
			pm.AdID,
			pm.Message,
			strconv.Itoa(pm.Reward),
			theme.BoolText(pm.Success),
		})
	}
	m.table.SetRows(rows)
	m.summary = renderSummary(msg.Result)
}

// Selected returns the processed message under the cursor, if any.
func (m Model) Selected() *client.ProcessedMessage {
	if m.Result == nil {
		return nil
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.Result.Messages) {
		return nil
	}
	pm := m.Result.Messages[i]
	return &pm
}

// Update moves the table cursor.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// Summary formats the result header as markdown.
func Summary(r *client.GameResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Game %s\n\n", r.GameID)
	b.WriteString("| Final score | Lives left | Goal achieved | Finished at |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %s | %s |\n", r.FinalScore, r.LivesLeft, theme.BoolText(r.AchievedGoal), r.FinishedAt)
	if len(r.Messages) == 0 {
		b.WriteString("\n_No messages were processed._\n")
	}
	return b.String()
}

func renderSummary(r *client.GameResult) string {
	md := Summary(r)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// View renders the result view.
func (m Model) View() string {
	title := theme.StyleHeader.Render(" GAME RESULT ")
	help := theme.StyleDimmed.Render("j/k:select  enter:detail  esc:back")

	switch {
	case m.Loading:
		return lipgloss.JoinVertical(lipgloss.Left, title, "", theme.StyleDimmed.Render("  Loading "+m.GameID+"..."))
	case m.Err != nil:
		return lipgloss.JoinVertical(lipgloss.Left, title, "", theme.StyleError.Render("  "+m.Err.Error()), "", help)
	case m.Result == nil:
		return lipgloss.JoinVertical(lipgloss.Left, title, "", theme.StyleDimmed.Render("  No result selected."))
	}

	parts := []string{title, m.summary}
	if len(m.Result.Messages) > 0 {
		parts = append(parts, theme.StyleBorder.Render(m.table.View()))
	}
	parts = append(parts, help)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
