// Package history renders the paged list of finished games.
package history

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/theme"
)

// Source fetches history pages.
type Source interface {
	GetHistory(ctx context.Context, page, size int) (*client.HistoryPage, error)
}

// LoadedMsg carries one fetched page or the fetch error.
type LoadedMsg struct {
	Page int
	Data *client.HistoryPage
	Err  error
}

// Fetch loads page of the given size.
func Fetch(ctx context.Context, src Source, page, size int) tea.Cmd {
	return func() tea.Msg {
		p, err := src.GetHistory(ctx, page, size)
		return LoadedMsg{Page: page, Data: p, Err: err}
	}
}

var columns = []table.Column{
	{Title: "Game ID", Width: 12},
	{Title: "Score", Width: 7},
	{Title: "Lives", Width: 6},
	{Title: "Goal", Width: 6},
	{Title: "Finished", Width: 20},
}

// Model holds the history view state.
type Model struct {
	Page    int
	Size    int
	Loading bool
	Err     error

	entries []client.HistoryEntry
	hasNext bool
	table   table.Model
}

// New creates a history view showing size games per page.
func New(size int) Model {
	if size <= 0 {
		size = 10
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(size),
	)
	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.
		Foreground(theme.ColorBright).
		Background(theme.ColorBusy)
	t.SetStyles(styles)
	return Model{Size: size, table: t}
}

// Load marks page as in flight.
func (m *Model) Load(page int) {
	if page < 0 {
		page = 0
	}
	m.Page = page
	m.Loading = true
	m.Err = nil
}

// SetLoaded applies a fetched page. Pages other than the one requested are
// ignored.
func (m *Model) SetLoaded(msg LoadedMsg) {
	if msg.Page != m.Page {
		return
	}
	m.Loading = false
	m.Err = msg.Err
	if msg.Err != nil || msg.Data == nil {
		return
	}

	m.entries = m.entries[:0]
	rows := make([]table.Row, 0, len(msg.Data.Entries))
	for _, e := range msg.Data.Entries {
		if e.GameID == "" {
			continue
		}
		m.entries = append(m.entries, e)
		rows = append(rows, table.Row{
			e.GameID,
			strconv.Itoa(e.FinalScore),
			strconv.Itoa(e.LivesLeft),
			theme.BoolText(e.AchievedGoal),
			e.FinishedAt,
		})
	}
	m.hasNext = msg.Data.HasNext
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// HasNext reports whether a later page exists.
func (m Model) HasNext() bool { return m.hasNext }

// HasPrev reports whether an earlier page exists.
func (m Model) HasPrev() bool { return m.Page > 0 }

// Selected returns the game id under the cursor, or "".
func (m Model) Selected() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return ""
	}
	return m.entries[i].GameID
}

// Update moves the table cursor.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// View renders the history table.
func (m Model) View() string {
	title := theme.StyleHeader.Render(fmt.Sprintf(" GAME HISTORY  page %d ", m.Page+1))
	help := theme.StyleDimmed.Render("j/k:select  enter:open  n/p:page  esc:back")

	var body string
	switch {
	case m.Loading:
		body = theme.StyleDimmed.Render("  Loading...")
	case m.Err != nil:
		body = theme.StyleError.Render("  " + m.Err.Error())
	case len(m.entries) == 0:
		body = theme.StyleDimmed.Render("  No games played yet.")
	default:
		body = theme.StyleBorder.Render(m.table.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, help)
}
