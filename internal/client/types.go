// Package client provides the HTTP and STOMP-over-WebSocket clients for the
// Mugloar game server. Types mirror the server wire protocol without
// importing server packages.
package client

import (
	"encoding/json"
	"time"
)

// Server paths.
const (
	StartPath           = "/game/start"
	HistoryPath         = "/game/history"
	AnnounceDestination = "/app/game-start"
	topicPrefix         = "/topic/game-status/"
	resultPrefix        = "/game/"
)

// TopicFor returns the status topic for a game session.
func TopicFor(gameID string) string {
	return topicPrefix + gameID
}

// ResultPath returns the navigation target shown once a game has ended.
func ResultPath(gameID string) string {
	return resultPrefix + gameID
}

// StatusEvent is one server-pushed progress update.
type StatusEvent struct {
	GameID     string
	Tag        string
	Message    string
	HasMessage bool
}

// statusWire is the JSON body published on the status topic.
type statusWire struct {
	GameID    string          `json:"gameId"`
	State     *string         `json:"state"`
	Message   *string         `json:"message"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// DecodeStatus parses a topic body. Bodies that are not JSON objects or that
// carry no state yield a *DecodeError.
func DecodeStatus(body []byte) (StatusEvent, error) {
	var w statusWire
	if err := json.Unmarshal(body, &w); err != nil {
		return StatusEvent{}, &DecodeError{Body: body, Err: err}
	}
	if w.State == nil || *w.State == "" {
		return StatusEvent{}, &DecodeError{Body: body, Err: errMissingState}
	}
	ev := StatusEvent{GameID: w.GameID, Tag: *w.State}
	if w.Message != nil {
		ev.Message = *w.Message
		ev.HasMessage = true
	}
	return ev, nil
}

// startRequest is the empty body sent to StartPath.
type startRequest struct{}

type startResponse struct {
	GameID *string `json:"gameId"`
}

type announce struct {
	GameID string `json:"gameId"`
}

// --- Result and history views ---

// ProcessedMessage is one row of a game's result table.
type ProcessedMessage struct {
	AdID          string
	Message       string
	Turn          int
	Reward        int
	Success       bool
	FailureReason string
}

// GameResult is the summary shown at ResultPath.
type GameResult struct {
	GameID       string
	FinalScore   int
	LivesLeft    int
	AchievedGoal bool
	FinishedAt   string
	Messages     []ProcessedMessage
}

// HistoryEntry is one row of the game history table.
type HistoryEntry struct {
	GameID       string
	FinalScore   int
	LivesLeft    int
	AchievedGoal bool
	FinishedAt   string
}

// HistoryPage is one page of HistoryPath.
type HistoryPage struct {
	Page    int
	Size    int
	Entries []HistoryEntry
	HasNext bool
	Fetched time.Time
}
