// Package status renders the session status line: the current message with a
// cross-fade between texts, a busy spinner, and the channel indicator.
package status

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mugloar/tui/internal/schedule"
	"github.com/mugloar/tui/internal/theme"
)

// FadeDelay is how long the old text fades out before the new one swaps in.
const FadeDelay = 500 * time.Millisecond

const (
	fps    = 60
	settle = 0.01
)

var lastID atomic.Int64

// swapMsg replaces the visible text. seq orders overlapping SetMessage
// calls; a swap older than the one on screen is dropped.
type swapMsg struct {
	id   int64
	seq  uint64
	text string
}

type frameMsg struct {
	id int64
}

// Model holds the status line state.
type Model struct {
	Connected bool
	Width     int

	id        int64
	sched     schedule.Scheduler
	text      string
	requested string
	seq       uint64
	shown     uint64
	busy      bool
	spinner   spinner.Model

	spring    harmonica.Spring
	opacity   float64
	velocity  float64
	target    float64
	animating bool
}

// New creates a status line that schedules text swaps on sched.
func New(sched schedule.Scheduler) Model {
	return Model{
		id:    lastID.Add(1),
		sched: sched,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.ColorBusy)),
		),
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		opacity: 1,
		target:  1,
	}
}

// SetMessage fades out the current text and swaps in text after FadeDelay.
func (m *Model) SetMessage(text string) tea.Cmd {
	m.requested = text
	m.target = 0
	m.seq++
	_, swap := m.sched.After(FadeDelay, swapMsg{id: m.id, seq: m.seq, text: text})
	return tea.Batch(swap, m.animate())
}

// ShowBusy shows the spinner. Only the hidden to shown edge starts ticking.
func (m *Model) ShowBusy() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	return m.spinner.Tick
}

// HideBusy hides the spinner. The tick chain stops at the next tick.
func (m *Model) HideBusy() {
	m.busy = false
}

// Text is the text currently on screen.
func (m Model) Text() string { return m.text }

// Requested is the most recent text passed to SetMessage.
func (m Model) Requested() string { return m.requested }

func (m Model) Busy() bool { return m.busy }

func (m Model) Opacity() float64 { return m.opacity }

// Update advances the fade and the spinner.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case swapMsg:
		if msg.id != m.id || msg.seq <= m.shown {
			return nil
		}
		m.shown = msg.seq
		m.text = msg.text
		m.target = 1
		return m.animate()

	case frameMsg:
		if msg.id != m.id || !m.animating {
			return nil
		}
		m.opacity, m.velocity = m.spring.Update(m.opacity, m.velocity, m.target)
		if math.Abs(m.opacity-m.target) < settle && math.Abs(m.velocity) < settle {
			m.opacity, m.velocity = m.target, 0
			m.animating = false
			return nil
		}
		return m.frame()

	case spinner.TickMsg:
		if !m.busy {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) animate() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	id := m.id
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

// textColor blends from the background towards the foreground by opacity.
func (m Model) textColor() lipgloss.Color {
	o := math.Max(0, math.Min(1, m.opacity))
	bg, _ := colorful.Hex(string(theme.ColorBg))
	fg, _ := colorful.Hex(string(theme.ColorBright))
	return lipgloss.Color(bg.BlendLab(fg, o).Clamped().Hex())
}

// View renders the status line.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Live")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("○ Idle")
	}

	indicator := "  "
	if m.busy {
		indicator = m.spinner.View() + " "
	}
	text := lipgloss.NewStyle().Foreground(m.textColor()).Render(m.text)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + indicator + text

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
