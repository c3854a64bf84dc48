package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Subprotocols offered during the WebSocket upgrade.
var Subprotocols = []string{"v12.stomp", "v11.stomp"}

// ChannelOptions tunes the timeouts of a Channel.
type ChannelOptions struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// Channel is the session-scoped STOMP subscription carried over a WebSocket.
// At most one link is live at a time.
type Channel struct {
	url   string
	token string
	opts  ChannelOptions
	log   *zap.Logger

	mu         sync.Mutex
	writeMu    sync.Mutex // serialises all conn writes (announce, disconnect)
	link       *link
	connecting bool
}

// link is one live connection and its subscription.
type link struct {
	conn    *websocket.Conn
	gameID  string
	subID   string
	pending []*frame.Frame // frames decoded but not yet consumed; reader-owned
}

// NewChannel creates a channel that dials the given WebSocket URL.
func NewChannel(wsURL, token string, opts ChannelOptions, log *zap.Logger) *Channel {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Channel{url: wsURL, token: token, opts: opts, log: log}
}

// Connected reports whether a link is live.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.link != nil
}

// Connect dials the server, completes the STOMP handshake, subscribes to the
// game's status topic and announces the game start so the server begins
// publishing. Failures are reported as *HandshakeError.
func (c *Channel) Connect(ctx context.Context, gameID string) error {
	c.mu.Lock()
	if c.link != nil || c.connecting {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.connecting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	l, err := c.handshake(ctx, gameID)
	if err != nil {
		c.log.Warn("channel handshake failed", zap.String("game_id", gameID), zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.link = l
	c.mu.Unlock()
	c.log.Info("channel connected", zap.String("game_id", gameID), zap.String("subscription", l.subID))
	return nil
}

func (c *Channel) handshake(ctx context.Context, gameID string) (*link, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.opts.HandshakeTimeout,
		Subprotocols:     Subprotocols,
	}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, &HandshakeError{Stage: "dial", Err: err}
	}

	// The connection isn't shared yet, so no write mutex is needed until
	// the link is published.
	l := &link{conn: conn, gameID: gameID, subID: uuid.NewString()}
	fail := func(stage string, err error) (*link, error) {
		conn.Close()
		return nil, &HandshakeError{Stage: stage, Err: err}
	}

	host := "localhost"
	if u, err := url.Parse(c.url); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	connect := frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.1,1.2",
		frame.Host, host,
		frame.HeartBeat, "0,0",
	)
	if err := c.write(conn, connect); err != nil {
		return fail("connect", err)
	}

	deadline := time.Now().Add(c.opts.HandshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	reply, err := l.next()
	if err != nil {
		return fail("connect", err)
	}
	switch reply.Command {
	case frame.CONNECTED:
	case frame.ERROR:
		return fail("connect", serverError(reply))
	default:
		return fail("connect", fmt.Errorf("%w: %s", errHandshakeFrame, reply.Command))
	}
	conn.SetReadDeadline(time.Time{})

	sub := frame.New(frame.SUBSCRIBE,
		frame.Id, l.subID,
		frame.Destination, TopicFor(gameID),
		frame.Ack, "auto",
	)
	if err := c.write(conn, sub); err != nil {
		return fail("subscribe", err)
	}

	body, err := json.Marshal(announce{GameID: gameID})
	if err != nil {
		return fail("announce", err)
	}
	send := frame.New(frame.SEND,
		frame.Destination, AnnounceDestination,
		frame.ContentType, "application/json",
	)
	send.Body = body
	if err := c.write(conn, send); err != nil {
		return fail("announce", err)
	}
	return l, nil
}

// Next blocks until the next status event arrives on the subscription.
// A payload that cannot be decoded yields a *DecodeError and leaves the
// channel open. Any other error means the link is gone.
func (c *Channel) Next(ctx context.Context) (StatusEvent, error) {
	c.mu.Lock()
	l := c.link
	c.mu.Unlock()
	if l == nil {
		return StatusEvent{}, ErrNotConnected
	}

	stop := context.AfterFunc(ctx, func() {
		l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		f, err := l.next()
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				c.log.Warn("discarding malformed frame", zap.Error(err))
				return StatusEvent{}, err
			}
			c.drop(l)
			if ctx.Err() != nil {
				return StatusEvent{}, ctx.Err()
			}
			return StatusEvent{}, fmt.Errorf("channel read: %w", err)
		}

		switch f.Command {
		case frame.MESSAGE:
			if sub := f.Header.Get(frame.Subscription); sub != "" && sub != l.subID {
				continue
			}
			ev, err := DecodeStatus(f.Body)
			if err != nil {
				c.log.Warn("invalid status payload", zap.ByteString("body", f.Body), zap.Error(err))
				return StatusEvent{}, err
			}
			c.log.Debug("status event", zap.String("tag", ev.Tag), zap.String("message", ev.Message))
			return ev, nil
		case frame.ERROR:
			c.drop(l)
			return StatusEvent{}, serverError(f)
		default:
			c.log.Debug("ignoring frame", zap.String("command", f.Command))
		}
	}
}

// Disconnect closes the live link, if any. It is safe to call repeatedly;
// once closed, further calls return nil.
func (c *Channel) Disconnect() error {
	c.mu.Lock()
	l := c.link
	c.link = nil
	c.mu.Unlock()
	if l == nil {
		return nil
	}

	c.writeMu.Lock()
	bye := frame.New(frame.DISCONNECT, frame.Receipt, uuid.NewString())
	err := ignoreClosed(c.write(l.conn, bye))
	l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(c.opts.WriteTimeout))
	c.writeMu.Unlock()

	err = multierr.Append(err, ignoreClosed(l.conn.Close()))
	c.log.Info("channel disconnected", zap.String("game_id", l.gameID), zap.Error(err))
	return err
}

// drop forgets l after a read failure, unless a newer link replaced it.
func (c *Channel) drop(l *link) {
	c.mu.Lock()
	if c.link == l {
		c.link = nil
	}
	c.mu.Unlock()
	l.conn.Close()
}

func (c *Channel) write(conn *websocket.Conn, f *frame.Frame) error {
	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return writeFrame(conn, f)
}

// writeFrame sends f as a single text message.
func writeFrame(conn *websocket.Conn, f *frame.Frame) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := frame.NewWriter(w).Write(f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// next returns the next STOMP frame on the link, reading a new WebSocket
// message when the pending queue is empty.
func (l *link) next() (*frame.Frame, error) {
	for len(l.pending) == 0 {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		frames, err := splitFrames(data)
		if err != nil {
			return nil, &DecodeError{Body: data, Err: err}
		}
		l.pending = frames
	}
	f := l.pending[0]
	l.pending = l.pending[1:]
	return f, nil
}

// splitFrames decodes every frame in one WebSocket message, skipping
// heart-beats.
func splitFrames(data []byte) ([]*frame.Frame, error) {
	r := frame.NewReader(bytes.NewReader(data))
	var out []*frame.Frame
	for {
		f, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if f != nil {
			out = append(out, f)
		}
	}
}

func serverError(f *frame.Frame) error {
	return &ServerError{Message: f.Header.Get(frame.Message), Body: string(f.Body)}
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}
