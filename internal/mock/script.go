package mock

// Step is one status publication in a scripted game. Raw, when set, is sent
// verbatim instead of the JSON status record.
type Step struct {
	State   string
	Message string
	Raw     string

	// Bookkeeping for the stored result.
	AdID   string
	Reward int
}

const goalScore = 100

// DefaultScript plays a short game: one investigation, a few messages, a
// shop visit and a game over, followed by the result save the client never
// sees because it disconnects on game_over.
func DefaultScript() []Step {
	return []Step{
		{State: "game_initialized", Message: "Game initialized."},
		{State: "investigation_completed", Message: "Investigation phase completed."},
		{State: "now_solving_message", Message: "Help defending village from bandits", AdID: "dF3kq1"},
		{State: "message_solved", Message: "Help defending village from bandits", AdID: "dF3kq1", Reward: 31},
		{State: "now_solving_message", Message: "Escort the merchant to the capital", AdID: "Vx82Lm"},
		{State: "message_failed", Message: "Escort the merchant to the capital", AdID: "Vx82Lm", Reward: 45},
		{State: "missing_items", Message: "Missing items for message."},
		{State: "now_purchasing_item", Message: "Healing potion"},
		{State: "item_purchased", Message: "Healing potion"},
		{State: "item_effect_applied", Message: "Lives increased to 3."},
		{State: "shop_phase_completed", Message: "Completed Shop Phase."},
		{State: "now_solving_message", Message: "Steal super awesome diamond", AdID: "aQ9zT0"},
		{State: "message_solved", Message: "Steal super awesome diamond", AdID: "aQ9zT0", Reward: 78},
		{State: "no_suitable_messages", Message: "No suitable messages left to solve."},
		{State: "game_over", Message: "Game Over detected."},
		{State: "game_result_saved", Message: "Game result saved successfully."},
	}
}

// isTerminal mirrors the client's terminal subset; the result is stored
// before these are published so the result page exists when the client
// navigates to it.
func isTerminal(state string) bool {
	return state == "game_over" || state == "game_completed"
}

// tally tracks the game outcome while a script plays.
type tally struct {
	turn     int
	score    int
	lives    int
	messages []ProcessedMessage
}

func newTally() *tally {
	return &tally{lives: 3}
}

func (t *tally) apply(s Step) {
	switch s.State {
	case "now_solving_message":
		t.turn++
	case "message_solved":
		t.score += s.Reward
		t.messages = append(t.messages, ProcessedMessage{
			AdID: s.AdID, Message: s.Message, Turn: t.turn, Reward: s.Reward, Success: true,
		})
	case "message_failed":
		t.lives--
		t.messages = append(t.messages, ProcessedMessage{
			AdID: s.AdID, Message: s.Message, Turn: t.turn, Reward: s.Reward,
			FailureReason: "You were defeated.",
		})
	}
}
