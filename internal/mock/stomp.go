package mock

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// stompConn is one client connection. Writes go through a single pump
// goroutine so frames are never interleaved.
type stompConn struct {
	srv  *Server
	conn *websocket.Conn
	send chan *frame.Frame

	mu     sync.Mutex
	subs   map[string]string // destination -> subscription id
	closed bool
}

func newStompConn(srv *Server, conn *websocket.Conn) *stompConn {
	c := &stompConn{
		srv:  srv,
		conn: conn,
		send: make(chan *frame.Frame, 256),
		subs: make(map[string]string),
	}
	go c.writePump()
	return c
}

func (c *stompConn) writePump() {
	defer c.conn.Close()
	for f := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		if err := frame.NewWriter(w).Write(f); err != nil {
			w.Close()
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}
}

// close stops the write pump once queued frames are flushed.
func (c *stompConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *stompConn) enqueue(f *frame.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- f:
		return true
	default:
		c.srv.log.Warn("stomp send buffer full, dropping frame", zap.String("command", f.Command))
		return false
	}
}

// publish delivers body to the subscriber of destination, if any.
func (c *stompConn) publish(destination string, body []byte) bool {
	c.mu.Lock()
	subID, ok := c.subs[destination]
	c.mu.Unlock()
	if !ok {
		return !c.isClosed()
	}
	f := frame.New(frame.MESSAGE,
		frame.Destination, destination,
		frame.Subscription, subID,
		frame.MessageId, uuid.NewString(),
		frame.ContentType, "application/json",
	)
	f.Body = body
	return c.enqueue(f)
}

func (c *stompConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *stompConn) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		r := frame.NewReader(bytes.NewReader(data))
		for {
			f, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				c.srv.log.Warn("bad stomp frame", zap.Error(err))
				break
			}
			if f == nil {
				continue
			}
			if !c.handle(f) {
				return
			}
		}
	}
}

// handle processes one client frame, returning false when the connection
// should end.
func (c *stompConn) handle(f *frame.Frame) bool {
	switch f.Command {
	case frame.CONNECT, frame.STOMP:
		if c.srv.opts.RejectConnect {
			c.enqueue(frame.New(frame.ERROR, frame.Message, "connection refused"))
			return false
		}
		c.enqueue(frame.New(frame.CONNECTED,
			frame.Version, "1.2",
			frame.HeartBeat, "0,0",
			frame.Server, "mugloar-mock",
		))

	case frame.SUBSCRIBE:
		c.mu.Lock()
		c.subs[f.Header.Get(frame.Destination)] = f.Header.Get(frame.Id)
		c.mu.Unlock()

	case frame.UNSUBSCRIBE:
		id := f.Header.Get(frame.Id)
		c.mu.Lock()
		for dest, sub := range c.subs {
			if sub == id {
				delete(c.subs, dest)
			}
		}
		c.mu.Unlock()

	case frame.SEND:
		if f.Header.Get(frame.Destination) != "/app/game-start" {
			return true
		}
		var body struct {
			GameID string `json:"gameId"`
		}
		if err := json.Unmarshal(f.Body, &body); err != nil || body.GameID == "" {
			c.enqueue(frame.New(frame.ERROR, frame.Message, "invalid game-start payload"))
			return true
		}
		if !c.srv.knownGame(body.GameID) {
			c.srv.log.Warn("announce for a game that was not started here", zap.String("game_id", body.GameID))
		}
		c.srv.log.Info("mock game announced", zap.String("game_id", body.GameID))
		go c.srv.play(c, body.GameID)

	case frame.DISCONNECT:
		if receipt := f.Header.Get(frame.Receipt); receipt != "" {
			c.enqueue(frame.New(frame.RECEIPT, frame.ReceiptId, receipt))
		}
		return false
	}
	return true
}
