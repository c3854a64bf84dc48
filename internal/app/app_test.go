package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/schedule"
	"github.com/mugloar/tui/internal/session"
	"github.com/mugloar/tui/internal/views/history"
	"github.com/mugloar/tui/internal/views/result"
)

type fakeBackend struct {
	starts      int
	resultCalls []string
	historyPage []int
}

func (f *fakeBackend) StartGame(context.Context) (string, error) {
	f.starts++
	return "g1", nil
}

func (f *fakeBackend) GetResult(_ context.Context, id string) (*client.GameResult, error) {
	f.resultCalls = append(f.resultCalls, id)
	return &client.GameResult{
		GameID:   id,
		Messages: []client.ProcessedMessage{{AdID: "a1", Message: "Escort", Success: true}},
	}, nil
}

func (f *fakeBackend) GetHistory(_ context.Context, page, size int) (*client.HistoryPage, error) {
	f.historyPage = append(f.historyPage, page)
	return &client.HistoryPage{
		Page:    page,
		Size:    size,
		HasNext: page == 0,
		Entries: []client.HistoryEntry{{GameID: "h1"}, {GameID: "h2"}},
	}, nil
}

type fakeChannel struct {
	disconnects int
}

func (f *fakeChannel) Connect(context.Context, string) error { return nil }

func (f *fakeChannel) Next(context.Context) (client.StatusEvent, error) {
	return client.StatusEvent{Tag: "game_over"}, nil
}

func (f *fakeChannel) Disconnect() error {
	f.disconnects++
	return nil
}

func newModel() (Model, *fakeBackend, *fakeChannel) {
	b := &fakeBackend{}
	ch := &fakeChannel{}
	m := New(b, ch, schedule.NewManual(), 10, nil)
	m.width = 100
	m.height = 30
	return m, b, ch
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestViewBeforeSize(t *testing.T) {
	m, _, _ := newModel()
	m.width = 0
	if v := m.View(); v != "Initializing..." {
		t.Errorf("View() = %q", v)
	}
}

func TestLiveViewShowsTrigger(t *testing.T) {
	m, _, _ := newModel()
	v := m.View()
	if !strings.Contains(v, session.LabelStart) {
		t.Error("live view should show the start button")
	}
	if !strings.Contains(v, "history") {
		t.Error("help footer should list history")
	}
}

func TestStartKeyLaunchesOnce(t *testing.T) {
	m, b, _ := newModel()

	m, cmd := press(m, "s")
	if cmd == nil {
		t.Fatal("start should return a command")
	}
	if m.session.Phase() != session.PhaseStarting {
		t.Errorf("phase = %v, want starting", m.session.Phase())
	}

	m, cmd2 := press(m, "s")
	if cmd2 != nil {
		t.Error("second start while disabled should be a no-op")
	}

	m, _ = send(m, session.LaunchedMsg{GameID: "g1"})
	if m.session.GameID() != "g1" {
		t.Errorf("GameID = %q", m.session.GameID())
	}
	if b.starts != 0 {
		t.Error("launch runs inside the returned command, not in Update")
	}
	if len(m.debug.Entries) == 0 || m.debug.Entries[0].Kind != "http" {
		t.Error("launch should be recorded in the debug log")
	}
}

func TestNavigateOpensResult(t *testing.T) {
	m, b, _ := newModel()

	m, cmd := send(m, session.NavigateMsg{GameID: "g7"})
	if m.screen != ScreenResult {
		t.Fatalf("screen = %v, want result", m.screen)
	}
	if !m.result.Loading {
		t.Error("result should be loading")
	}

	var loaded tea.Msg
	for _, msg := range runBatch(cmd) {
		if _, ok := msg.(result.LoadedMsg); ok {
			loaded = msg
		}
	}
	if loaded == nil {
		t.Fatal("navigate should fetch the result")
	}
	if len(b.resultCalls) != 1 || b.resultCalls[0] != "g7" {
		t.Errorf("result calls = %v", b.resultCalls)
	}

	m, _ = send(m, loaded)
	if !strings.Contains(m.View(), "Escort") {
		t.Error("result view should list processed messages")
	}

	m, _ = press(m, "enter")
	if m.overlay != OverlayDetail {
		t.Fatal("enter should open the detail overlay")
	}
	if !strings.Contains(m.View(), "a1") {
		t.Error("detail overlay should show the ad id")
	}

	m, _ = press(m, "esc")
	if m.overlay != OverlayNone {
		t.Error("esc should close the overlay")
	}
	m, _ = press(m, "esc")
	if m.screen != ScreenLive {
		t.Error("esc should return to the live view")
	}
}

func TestHistoryPaging(t *testing.T) {
	m, b, _ := newModel()

	m, cmd := press(m, "h")
	if m.screen != ScreenHistory {
		t.Fatal("h should open history")
	}
	m, _ = send(m, cmd().(history.LoadedMsg))

	if _, cmd = press(m, "p"); cmd != nil {
		t.Error("no previous page on page 0")
	}

	m, cmd = press(m, "n")
	if cmd == nil {
		t.Fatal("next page should fetch")
	}
	m, _ = send(m, cmd().(history.LoadedMsg))
	if m.history.Page != 1 {
		t.Errorf("page = %d, want 1", m.history.Page)
	}
	if _, cmd = press(m, "n"); cmd != nil {
		t.Error("no next page after the last one")
	}
	if len(b.historyPage) != 2 || b.historyPage[1] != 1 {
		t.Errorf("history pages fetched = %v", b.historyPage)
	}

	m, _ = press(m, "down")
	m, cmd = press(m, "enter")
	if m.screen != ScreenResult || m.result.GameID != "h2" {
		t.Errorf("enter should open the selected game, got screen %v id %q", m.screen, m.result.GameID)
	}
	if cmd == nil {
		t.Error("opening a game should fetch its result")
	}
}

func TestDebugOverlay(t *testing.T) {
	m, _, _ := newModel()
	m, _ = press(m, "d")
	if m.overlay != OverlayDebug {
		t.Fatal("d should open the debug overlay")
	}
	if !strings.Contains(m.View(), "DEBUG LOG") {
		t.Error("debug overlay should render")
	}
	m, _ = press(m, "s")
	if m.session.Phase() != session.PhaseIdle {
		t.Error("keys other than esc are swallowed by overlays")
	}
	m, _ = press(m, "esc")
	if m.overlay != OverlayNone {
		t.Error("esc should close the debug overlay")
	}
}

func TestQuitClosesChannel(t *testing.T) {
	m, _, ch := newModel()
	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("quit should return tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
	if ch.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", ch.disconnects)
	}
	if m.ctx.Err() == nil {
		t.Error("quit should cancel the app context")
	}
}

// runBatch executes cmd and flattens any batch it returns.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runBatch(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}
