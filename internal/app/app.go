package app

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/schedule"
	"github.com/mugloar/tui/internal/session"
	"github.com/mugloar/tui/internal/theme"
	"github.com/mugloar/tui/internal/views/debug"
	"github.com/mugloar/tui/internal/views/detail"
	"github.com/mugloar/tui/internal/views/history"
	"github.com/mugloar/tui/internal/views/result"
	"go.uber.org/zap"
)

// Screen identifies the main view.
type Screen int

const (
	ScreenLive Screen = iota
	ScreenResult
	ScreenHistory
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayDebug
)

// Backend is the HTTP side of the game server.
type Backend interface {
	session.Launcher
	result.Source
	history.Source
}

// Model is the root Bubble Tea model.
type Model struct {
	backend Backend
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger

	keys   KeyMap
	help   help.Model
	width  int
	height int

	screen  Screen
	overlay Overlay

	// Sub-views.
	session session.Controller
	result  result.Model
	history history.Model
	detail  detail.Model
	debug   debug.Model
}

// New creates the root model.
func New(backend Backend, ch session.Channel, sched schedule.Scheduler, pageSize int, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		backend: backend,
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		session: session.New(ctx, backend, ch, sched, log.Named("session")),
		result:  result.New(),
		history: history.New(pageSize),
		debug:   debug.New(),
	}
}

// Init sets the window title. Nothing connects until the trigger fires.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("Dragons of Mugloar")
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.session.Status.Width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case session.NavigateMsg:
		m.debug.Add("nav", client.ResultPath(msg.GameID))
		cmd := m.session.Update(msg)
		return m, tea.Batch(cmd, m.openResult(msg.GameID))

	case result.LoadedMsg:
		if msg.Err != nil {
			m.debug.Addf("err", "result %s: %v", msg.GameID, msg.Err)
		} else {
			m.debug.Addf("http", "result %s loaded", msg.GameID)
		}
		m.result.SetLoaded(msg)
		return m, nil

	case history.LoadedMsg:
		if msg.Err != nil {
			m.debug.Addf("err", "history page %d: %v", msg.Page, msg.Err)
		} else {
			m.debug.Addf("http", "history page %d loaded", msg.Page)
		}
		m.history.SetLoaded(msg)
		return m, nil
	}

	m.record(msg)
	return m, m.session.Update(msg)
}

// record logs session traffic to the debug overlay.
func (m *Model) record(msg tea.Msg) {
	switch msg := msg.(type) {
	case session.LaunchedMsg:
		m.debug.Addf("http", "game started %s", msg.GameID)
	case session.LaunchFailedMsg:
		m.debug.Addf("err", "start: %v", msg.Err)
	case session.ConnectedMsg:
		m.debug.Addf("ws", "subscribed %s", client.TopicFor(msg.GameID))
	case session.ConnectFailedMsg:
		m.debug.Addf("err", "connect: %v", msg.Err)
	case session.EventMsg:
		m.debug.Addf("evt", "%s %s", msg.Event.Tag, msg.Event.Message)
	case session.MalformedEventMsg:
		m.debug.Addf("err", "%v", msg.Err)
	case session.ChannelClosedMsg:
		m.debug.Addf("ws", "closed: %v", msg.Err)
	}
}

func (m *Model) openResult(gameID string) tea.Cmd {
	m.screen = ScreenResult
	m.overlay = OverlayNone
	m.result.Load(gameID)
	return result.Fetch(m.ctx, m.backend, gameID)
}

func (m *Model) openHistory(page int) tea.Cmd {
	m.screen = ScreenHistory
	m.history.Load(page)
	m.debug.Add("nav", client.HistoryPath)
	return history.Fetch(m.ctx, m.backend, m.history.Page, m.history.Size)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if err := m.session.Close(); err != nil {
			m.log.Warn("close session", zap.Error(err))
		}
		m.cancel()
		return m, tea.Quit
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Debug) {
		m.overlay = OverlayDebug
		return m, nil
	}

	switch m.screen {
	case ScreenResult:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.screen = ScreenLive
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			if pm := m.result.Selected(); pm != nil {
				m.detail = detail.New(pm)
				m.overlay = OverlayDetail
			}
			return m, nil
		}
		return m, m.result.Update(msg)

	case ScreenHistory:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.screen = ScreenLive
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			if id := m.history.Selected(); id != "" {
				m.debug.Add("nav", client.ResultPath(id))
				return m, m.openResult(id)
			}
			return m, nil
		case key.Matches(msg, m.keys.NextPage):
			if m.history.HasNext() && !m.history.Loading {
				return m, m.openHistory(m.history.Page + 1)
			}
			return m, nil
		case key.Matches(msg, m.keys.PrevPage):
			if m.history.HasPrev() && !m.history.Loading {
				return m, m.openHistory(m.history.Page - 1)
			}
			return m, nil
		}
		return m, m.history.Update(msg)
	}

	switch {
	case key.Matches(msg, m.session.Trigger()):
		return m, m.session.Start()
	case key.Matches(msg, m.keys.History):
		return m, m.openHistory(0)
	}
	return m, nil
}

func (m Model) helpView() string {
	var keys helpKeys
	switch m.screen {
	case ScreenResult:
		keys = helpKeys{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Escape}
	case ScreenHistory:
		keys = helpKeys{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.NextPage, m.keys.PrevPage, m.keys.Escape}
	default:
		keys = helpKeys{m.session.Trigger(), m.keys.History}
	}
	keys = append(keys, m.keys.Debug, m.keys.Quit)
	return m.help.View(keys)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayDebug:
		return m.debug.View(m.width, m.height)
	case OverlayDetail:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.detail.View())
	}

	header := theme.StyleHeader.Render("=== DRAGONS OF MUGLOAR ===")
	var body string
	switch m.screen {
	case ScreenResult:
		body = m.result.View()
	case ScreenHistory:
		body = m.history.View()
	default:
		body = m.session.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.helpView())
}
