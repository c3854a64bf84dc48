package session

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/schedule"
	"github.com/mugloar/tui/internal/theme"
	"github.com/mugloar/tui/internal/views/status"
	"go.uber.org/zap"
)

// Texts shown by the controller itself rather than derived from a tag.
const (
	TextStarting       = "Starting the game..."
	TextStartFailed    = "Error starting the game."
	TextConnectFailed  = "WebSocket connection error."
	TextInvalidEvent   = "Received invalid game state."
	TextConnectionLost = "Connection lost."

	LabelStart   = "Start New Game"
	LabelStarted = "Game Started!"
)

// Launcher requests a new game session.
type Launcher interface {
	StartGame(ctx context.Context) (string, error)
}

// Channel is the per-session notification stream.
type Channel interface {
	Connect(ctx context.Context, gameID string) error
	Next(ctx context.Context) (client.StatusEvent, error)
	Disconnect() error
}

// Phase is where the controller is in a session's lifetime.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhaseConnecting
	PhaseLive
	PhaseFinishing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseConnecting:
		return "connecting"
	case PhaseLive:
		return "live"
	case PhaseFinishing:
		return "finishing"
	default:
		return "unknown"
	}
}

// LaunchedMsg is sent when the server issued a game id.
type LaunchedMsg struct{ GameID string }

// LaunchFailedMsg is sent when the start request failed.
type LaunchFailedMsg struct{ Err error }

// ConnectedMsg is sent once the channel is subscribed and announced.
type ConnectedMsg struct{ GameID string }

// ConnectFailedMsg is sent when the channel handshake failed.
type ConnectFailedMsg struct{ Err error }

// EventMsg carries one decoded status event.
type EventMsg struct{ Event client.StatusEvent }

// MalformedEventMsg is sent for a payload that could not be decoded.
type MalformedEventMsg struct{ Err error }

// ChannelClosedMsg is sent when the channel dropped while live.
type ChannelClosedMsg struct{ Err error }

// NavigateMsg asks the app to show the result of GameID.
type NavigateMsg struct{ GameID string }

// Controller walks one session at a time from the start trigger through the
// live status stream to result navigation.
type Controller struct {
	ctx      context.Context
	launcher Launcher
	channel  Channel
	sched    schedule.Scheduler
	log      *zap.Logger

	Status  status.Model
	trigger key.Binding
	phase   Phase
	gameID  string
	nav     *schedule.Handle
}

// New creates an idle controller with the trigger enabled.
func New(ctx context.Context, launcher Launcher, channel Channel, sched schedule.Scheduler, log *zap.Logger) Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return Controller{
		ctx:      ctx,
		launcher: launcher,
		channel:  channel,
		sched:    sched,
		log:      log,
		Status:   status.New(sched),
		trigger: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", LabelStart),
		),
	}
}

// Trigger is the start binding. It is disabled while a session runs.
func (c Controller) Trigger() key.Binding { return c.trigger }

// Phase reports the current phase.
func (c Controller) Phase() Phase { return c.phase }

// GameID is the id of the current game, empty until a launch succeeds.
func (c Controller) GameID() string { return c.gameID }

// Navigation is the pending navigation, or nil.
func (c Controller) Navigation() *schedule.Handle { return c.nav }

func (c *Controller) setTrigger(enabled bool, label string) {
	c.trigger.SetEnabled(enabled)
	c.trigger.SetHelp("s", label)
}

// Start launches a new session. It is a no-op while the trigger is disabled.
func (c *Controller) Start() tea.Cmd {
	if !c.trigger.Enabled() {
		return nil
	}
	c.setTrigger(false, LabelStarted)
	c.phase = PhaseStarting
	c.gameID = ""
	c.log.Info("starting game")

	launcher, ctx := c.launcher, c.ctx
	launch := func() tea.Msg {
		id, err := launcher.StartGame(ctx)
		if err != nil {
			return LaunchFailedMsg{Err: err}
		}
		return LaunchedMsg{GameID: id}
	}
	return tea.Batch(c.Status.ShowBusy(), c.Status.SetMessage(TextStarting), launch)
}

// Update handles session messages and forwards presentation ticks.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LaunchedMsg:
		if c.phase != PhaseStarting {
			return nil
		}
		c.gameID = msg.GameID
		c.phase = PhaseConnecting
		c.log.Info("game started", zap.String("game_id", msg.GameID))
		return tea.Batch(c.Status.SetMessage("Game ID: "+msg.GameID), c.connect())

	case LaunchFailedMsg:
		if c.phase != PhaseStarting {
			return nil
		}
		c.log.Error("start game failed", zap.Error(msg.Err))
		return c.reset(TextStartFailed)

	case ConnectedMsg:
		if c.phase != PhaseConnecting || msg.GameID != c.gameID {
			return nil
		}
		c.phase = PhaseLive
		c.Status.Connected = true
		c.log.Info("channel live", zap.String("game_id", c.gameID))
		return c.next()

	case ConnectFailedMsg:
		if c.phase != PhaseConnecting {
			return nil
		}
		c.log.Error("channel connect failed", zap.String("game_id", c.gameID), zap.Error(msg.Err))
		return c.reset(TextConnectFailed)

	case EventMsg:
		if c.phase != PhaseLive {
			return nil
		}
		return c.apply(msg.Event)

	case MalformedEventMsg:
		if c.phase != PhaseLive {
			return nil
		}
		c.log.Warn("malformed status event", zap.Error(msg.Err))
		cmd := c.Status.SetMessage(TextInvalidEvent)
		c.Status.HideBusy()
		return tea.Batch(cmd, c.next())

	case ChannelClosedMsg:
		if c.phase != PhaseLive {
			return nil
		}
		c.log.Warn("channel closed", zap.String("game_id", c.gameID), zap.Error(msg.Err))
		c.disconnect()
		return c.reset(TextConnectionLost)

	case NavigateMsg:
		if c.phase != PhaseFinishing || msg.GameID != c.gameID {
			return nil
		}
		c.nav = nil
		c.phase = PhaseIdle
		c.Status.HideBusy()
		c.setTrigger(true, LabelStart)
		return nil
	}

	return c.Status.Update(msg)
}

// apply runs one interpreted event. Terminal events disconnect before the
// navigation is scheduled and stop the read loop.
func (c *Controller) apply(ev client.StatusEvent) tea.Cmd {
	a := Interpret(ev)
	c.log.Debug("status event",
		zap.String("game_id", c.gameID),
		zap.String("tag", ev.Tag),
		zap.Bool("busy", a.Busy),
	)

	cmds := []tea.Cmd{c.Status.SetMessage(a.StatusText)}
	if a.Busy {
		cmds = append(cmds, c.Status.ShowBusy())
	} else {
		c.Status.HideBusy()
	}

	if a.Terminal == nil {
		return tea.Batch(append(cmds, c.next())...)
	}

	c.disconnect()
	c.phase = PhaseFinishing
	h, navigate := c.sched.After(a.Terminal.Delay, NavigateMsg{GameID: c.gameID})
	c.nav = h
	c.log.Info("game finished", zap.String("game_id", c.gameID), zap.String("tag", ev.Tag))
	return tea.Batch(append(cmds, navigate)...)
}

func (c *Controller) connect() tea.Cmd {
	ch, ctx, id := c.channel, c.ctx, c.gameID
	return func() tea.Msg {
		if err := ch.Connect(ctx, id); err != nil {
			return ConnectFailedMsg{Err: err}
		}
		return ConnectedMsg{GameID: id}
	}
}

// next reads one event. Reads are issued one at a time so events are applied
// in delivery order.
func (c *Controller) next() tea.Cmd {
	ch, ctx := c.channel, c.ctx
	return func() tea.Msg {
		ev, err := ch.Next(ctx)
		if err == nil {
			return EventMsg{Event: ev}
		}
		var de *client.DecodeError
		if errors.As(err, &de) {
			return MalformedEventMsg{Err: err}
		}
		return ChannelClosedMsg{Err: err}
	}
}

func (c *Controller) disconnect() {
	if err := c.channel.Disconnect(); err != nil {
		c.log.Warn("disconnect", zap.String("game_id", c.gameID), zap.Error(err))
	}
	c.Status.Connected = false
}

// reset returns to idle after a failure, showing text.
func (c *Controller) reset(text string) tea.Cmd {
	c.phase = PhaseIdle
	c.Status.HideBusy()
	c.setTrigger(true, LabelStart)
	return c.Status.SetMessage(text)
}

// Close releases the channel and cancels a pending navigation.
func (c *Controller) Close() error {
	if c.nav != nil {
		c.nav.Stop()
	}
	return c.channel.Disconnect()
}

// View renders the status line above the trigger button.
func (c Controller) View() string {
	label := c.trigger.Help().Desc
	button := theme.StyleButtonDisabled.Render(label)
	if c.trigger.Enabled() {
		button = theme.StyleButton.Render(label) + theme.StyleDimmed.Render("  ["+c.trigger.Help().Key+"]")
	}
	return lipgloss.JoinVertical(lipgloss.Left, c.Status.View(), "", " "+button)
}
