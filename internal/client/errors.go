package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyConnected is returned by Connect while a channel is live.
	ErrAlreadyConnected = errors.New("channel already connected")
	// ErrNotConnected is returned by Next when no channel is live.
	ErrNotConnected = errors.New("channel not connected")

	errMissingState   = errors.New("missing state field")
	errMissingGameID  = errors.New("response has no gameId")
	errHandshakeFrame = errors.New("unexpected frame during handshake")
)

// StartError reports a failed session start: transport error, non-2xx
// status, or a malformed body.
type StartError struct {
	Status int // 0 when no response was received
	Err    error
}

func (e *StartError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("start game: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("start game: %v", e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// HandshakeError reports a failed WebSocket dial or STOMP CONNECT exchange.
type HandshakeError struct {
	Stage string // "dial", "connect", "subscribe", "announce"
	Err   error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.Stage, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// DecodeError reports a topic message that is not a valid status event.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid status payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ServerError carries the message header of a STOMP ERROR frame.
type ServerError struct {
	Message string
	Body    string
}

func (e *ServerError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server error: %s: %s", e.Message, e.Body)
	}
	return "server error: " + e.Message
}
