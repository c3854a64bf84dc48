// Package mock is a scripted stand-in for the Mugloar game server. It speaks
// the same HTTP and STOMP-over-WebSocket protocol as the real server and
// replays a fixed status script for every started game.
package mock

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// WebSocketPath is where the STOMP endpoint is mounted.
const WebSocketPath = "/game-websocket/websocket"

// Options controls the server's script and failure injection.
type Options struct {
	Interval time.Duration // delay before each published step
	Script   []Step

	FailStart     bool // POST /game/start answers 500
	RejectConnect bool // CONNECT is answered with an ERROR frame
	Log           *zap.Logger
}

type Server struct {
	opts     Options
	store    *Store
	router   *mux.Router
	upgrader websocket.Upgrader
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	conns map[*stompConn]bool
	games map[string]bool
}

func NewServer(opts Options) *Server {
	if opts.Script == nil {
		opts.Script = DefaultScript()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:   opts,
		store:  NewStore(),
		log:    opts.Log,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[*stompConn]bool),
		games:  make(map[string]bool),
		upgrader: websocket.Upgrader{
			Subprotocols: []string{"v12.stomp", "v11.stomp", "v10.stomp"},
			CheckOrigin:  func(*http.Request) bool { return true },
		},
	}
	s.router = mux.NewRouter()
	s.setupRoutes(s.router)
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes stored results, mainly for seeding history in tests.
func (s *Server) Store() *Store {
	return s.store
}

// Close stops every running script and drops all connections.
func (s *Server) Close() error {
	s.cancel()
	s.mu.Lock()
	conns := make([]*stompConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.conn.Close())
	}
	return err
}

func (s *Server) setupRoutes(r *mux.Router) {
	r.HandleFunc("/game/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/game/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/game/{id}", s.handleResult).Methods(http.MethodGet)
	r.HandleFunc(WebSocketPath, s.handleWS)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.opts.FailStart {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to start the game."}`))
		return
	}

	id := uuid.NewString()[:8]
	s.mu.Lock()
	s.games[id] = true
	s.mu.Unlock()

	s.log.Info("mock game started", zap.String("game_id", id))
	json.NewEncoder(w).Encode(map[string]string{"gameId": id})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	res, ok := s.store.Get(mux.Vars(r)["id"])
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		renderError(w, "Failed to retrieve game results.")
		return
	}
	if err := renderResult(w, res); err != nil {
		s.log.Error("render result", zap.Error(err))
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = 10
	}
	results, hasNext := s.store.Page(page, size)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	v := historyView{Results: results, HasNext: hasNext, Next: page + 1, Size: size}
	if err := renderHistory(w, v); err != nil {
		s.log.Error("render history", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade error", zap.Error(err))
		return
	}

	s.log.Debug("stomp client connected", zap.String("remote", r.RemoteAddr))
	c := newStompConn(s, conn)

	s.mu.Lock()
	s.conns[c] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, c)
			s.mu.Unlock()
			c.close()
			s.log.Debug("stomp client disconnected", zap.String("remote", r.RemoteAddr))
		}()
		c.readLoop()
	}()
}

func (s *Server) knownGame(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[id]
}

// play publishes the script for gameID to c, one step per interval.
func (s *Server) play(c *stompConn, gameID string) {
	t := newTally()
	for _, step := range s.opts.Script {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.opts.Interval):
		}

		t.apply(step)
		if isTerminal(step.State) {
			s.store.Put(&Result{
				GameID:       gameID,
				FinalScore:   t.score,
				LivesLeft:    t.lives,
				AchievedGoal: t.score >= goalScore,
				FinishedAt:   time.Now(),
				Messages:     t.messages,
			})
		}

		body := []byte(step.Raw)
		if step.Raw == "" {
			body, _ = json.Marshal(map[string]string{
				"gameId":    gameID,
				"state":     step.State,
				"message":   step.Message,
				"timestamp": time.Now().Format("2006-01-02T15:04:05"),
			})
		}
		if !c.publish("/topic/game-status/"+gameID, body) {
			return
		}
	}
}
