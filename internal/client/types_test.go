package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStatus(t *testing.T) {
	ev, err := DecodeStatus([]byte(`{"gameId":"g1","state":"now_solving_message","message":"Ad#7","timestamp":"2024-12-13T10:00:00"}`))
	require.NoError(t, err)
	assert.Equal(t, StatusEvent{GameID: "g1", Tag: "now_solving_message", Message: "Ad#7", HasMessage: true}, ev)
}

func TestDecodeStatusWithoutMessage(t *testing.T) {
	ev, err := DecodeStatus([]byte(`{"state":"game_completed"}`))
	require.NoError(t, err)
	assert.Equal(t, "game_completed", ev.Tag)
	assert.False(t, ev.HasMessage)
	assert.Empty(t, ev.Message)
}

func TestDecodeStatusTimestampArray(t *testing.T) {
	// Jackson may serialise LocalDateTime as an array.
	_, err := DecodeStatus([]byte(`{"state":"game_initialized","timestamp":[2024,12,13,10,0,0]}`))
	assert.NoError(t, err)
}

func TestDecodeStatusBlankStateIsAnUnknownTag(t *testing.T) {
	ev, err := DecodeStatus([]byte(`{"state":" "}`))
	require.NoError(t, err)
	assert.Equal(t, " ", ev.Tag)
}

func TestDecodeStatusMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `state=game_over`},
		{"missing state", `{"message":"hello"}`},
		{"empty state", `{"state":""}`},
		{"null state", `{"state":null}`},
		{"array", `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStatus([]byte(tt.body))
			var de *DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, tt.body, string(de.Body))
		})
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/topic/game-status/abc", TopicFor("abc"))
	assert.Equal(t, "/game/abc", ResultPath("abc"))
}
