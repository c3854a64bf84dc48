package mock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Interval == 0 {
		opts.Interval = time.Millisecond
	}
	s := NewServer(opts)
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		hs.Close()
	})
	return s, hs
}

func sendFrame(t *testing.T, conn *websocket.Conn, f *frame.Frame) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, frame.NewWriter(&buf).Write(f))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, buf.Bytes()))
}

func readFrame(t *testing.T, conn *websocket.Conn) *frame.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		f, err := frame.NewReader(bytes.NewReader(data)).Read()
		require.NoError(t, err)
		if f != nil {
			return f
		}
	}
}

func TestStartReturnsGameID(t *testing.T) {
	_, hs := newTestServer(t, Options{})

	resp, err := http.Post(hs.URL+"/game/start", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body["gameId"], 8)
}

func TestStartFailureInjection(t *testing.T) {
	_, hs := newTestServer(t, Options{FailStart: true})
	resp, err := http.Post(hs.URL+"/game/start", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestStartRequiresPost(t *testing.T) {
	s, hs := newTestServer(t, Options{})
	resp, err := http.Get(hs.URL + "/game/start")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, s.games)
}

func TestStompExchangePlaysScriptAndStoresResult(t *testing.T) {
	s, hs := newTestServer(t, Options{Script: []Step{
		{State: "now_solving_message", Message: "Ad#1", AdID: "a1"},
		{State: "message_solved", Message: "Ad#1", AdID: "a1", Reward: 120},
		{State: "game_over"},
	}})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http")+WebSocketPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	sendFrame(t, conn, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2", frame.Host, "localhost"))
	assert.Equal(t, frame.CONNECTED, readFrame(t, conn).Command)

	sendFrame(t, conn, frame.New(frame.SUBSCRIBE, frame.Id, "sub-0", frame.Destination, "/topic/game-status/g1"))
	send := frame.New(frame.SEND, frame.Destination, "/app/game-start")
	send.Body = []byte(`{"gameId":"g1"}`)
	sendFrame(t, conn, send)

	var states []string
	for i := 0; i < 3; i++ {
		f := readFrame(t, conn)
		require.Equal(t, frame.MESSAGE, f.Command)
		assert.Equal(t, "sub-0", f.Header.Get(frame.Subscription))
		var body map[string]string
		require.NoError(t, json.Unmarshal(f.Body, &body))
		assert.Equal(t, "g1", body["gameId"])
		states = append(states, body["state"])
	}
	assert.Equal(t, []string{"now_solving_message", "message_solved", "game_over"}, states)

	res, ok := s.Store().Get("g1")
	require.True(t, ok, "result must be stored before the terminal event is published")
	assert.Equal(t, 120, res.FinalScore)
	assert.Equal(t, 3, res.LivesLeft)
	assert.True(t, res.AchievedGoal)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, ProcessedMessage{AdID: "a1", Message: "Ad#1", Turn: 1, Reward: 120, Success: true}, res.Messages[0])
}

func TestStompRejectConnect(t *testing.T) {
	_, hs := newTestServer(t, Options{RejectConnect: true})
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http")+WebSocketPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	sendFrame(t, conn, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2"))
	f := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, f.Command)
	assert.Equal(t, "connection refused", f.Header.Get(frame.Message))
}

func TestStompDisconnectReceipt(t *testing.T) {
	_, hs := newTestServer(t, Options{})
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http")+WebSocketPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	sendFrame(t, conn, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2"))
	readFrame(t, conn)
	sendFrame(t, conn, frame.New(frame.DISCONNECT, frame.Receipt, "r-1"))

	f := readFrame(t, conn)
	assert.Equal(t, frame.RECEIPT, f.Command)
	assert.Equal(t, "r-1", f.Header.Get(frame.ReceiptId))
}

func TestResultAndHistoryPages(t *testing.T) {
	s, hs := newTestServer(t, Options{})
	s.Store().Put(&Result{GameID: "g1", FinalScore: 7, FinishedAt: time.Now()})

	resp, err := http.Get(hs.URL + "/game/g1")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `id="finalScore">7<`)

	resp, err = http.Get(hs.URL + "/game/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(hs.URL + "/game/history?page=0&size=5")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `data-gameid="g1"`)
	assert.NotContains(t, string(body), `rel="next"`)
}
