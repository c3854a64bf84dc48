// Package session holds the game session status state machine: the tag
// interpreter and the controller that walks a session from start request to
// result navigation.
package session

import (
	"sort"
	"strings"
	"time"

	"github.com/mugloar/tui/internal/client"
)

// TerminalDelay is how long the final status stays visible before the
// controller navigates to the result view.
const TerminalDelay = 3 * time.Second

// Status tags published by the server.
const (
	TagGameInitialized       = "game_initialized"
	TagInvestigationFailed   = "investigation_failed"
	TagInvestigationComplete = "investigation_completed"
	TagNowSolvingMessage     = "now_solving_message"
	TagMessageSolved         = "message_solved"
	TagMessageFailed         = "message_failed"
	TagNowPurchasingItem     = "now_purchasing_item"
	TagItemPurchased         = "item_purchased"
	TagItemPurchaseFailed    = "item_purchase_failed"
	TagShopPhaseCompleted    = "shop_phase_completed"
	TagGameOver              = "game_over"
	TagGameCompleted         = "game_completed"
	TagNoMessagesAvailable   = "no_messages_available"
	TagNoSuitableMessages    = "no_suitable_messages"
	TagMissingItems          = "missing_items"
	TagShopItemNotFound      = "shop_item_not_found"
	TagNoMissingItems        = "no_missing_items"
	TagShopError             = "shop_error"
	TagShopUnexpectedError   = "shop_unexpected_error"
	TagPurchaseResponseNull  = "purchase_response_null"
	TagUnknownPurchaseEffect = "unknown_purchase_effect"
	TagItemEffectApplied     = "item_effect_applied"
	TagGameResultExists      = "game_result_exists"
	TagGameResultSaved       = "game_result_saved"
	TagDuplicateGameResult   = "duplicate_game_result"
	TagGameResultSaveFailed  = "game_result_save_failed"
	TagUnknownItemEffect     = "unknown_item_effect"
)

// Terminal ends the live phase: disconnect, then navigate after Delay.
type Terminal struct {
	Delay time.Duration
}

// Action is what the presenter should show for one event.
type Action struct {
	StatusText string
	Busy       bool
	Terminal   *Terminal
}

// descriptor renders one tag. Exactly one of text and render is set.
type descriptor struct {
	text     string
	render   func(msg string) string
	busy     bool
	terminal bool
}

func prefixed(prefix string) func(string) string {
	return func(msg string) string { return prefix + msg }
}

var table = map[string]descriptor{
	TagGameInitialized:       {text: "Game initialized."},
	TagInvestigationFailed:   {text: "Investigation failed."},
	TagInvestigationComplete: {text: "Investigation phase completed."},
	TagNowSolvingMessage:     {render: prefixed("Now solving message: "), busy: true},
	TagMessageSolved:         {render: prefixed("Successfully solved message: ")},
	TagMessageFailed:         {render: prefixed("Failed to solve message: ")},
	TagNowPurchasingItem:     {render: prefixed("Now purchasing item: "), busy: true},
	TagItemPurchased:         {render: prefixed("Successfully purchased item: ")},
	TagItemPurchaseFailed:    {render: prefixed("Failed to purchase item: ")},
	TagShopPhaseCompleted:    {text: "Shop phase completed."},
	TagGameOver:              {text: "Game Over. Redirecting to results...", busy: true, terminal: true},
	TagGameCompleted:         {text: "Game completed successfully! Redirecting to results...", busy: true, terminal: true},
	TagNoMessagesAvailable:   {text: "No messages available to solve."},
	TagNoSuitableMessages:    {text: "No suitable messages left to solve."},
	TagMissingItems:          {text: "Missing items for message. Attempting to purchase required items.", busy: true},
	TagShopItemNotFound:      {text: "Required shop item not found."},
	TagNoMissingItems:        {text: "No missing items to purchase."},
	TagShopError:             {text: "Encountered an error during shopping phase."},
	TagShopUnexpectedError:   {text: "Error occurred while purchasing item."},
	TagPurchaseResponseNull:  {text: "Purchase response is null."},
	TagUnknownPurchaseEffect: {text: "Purchase message is null or empty."},
	TagItemEffectApplied:     {render: itemEffect},
	TagGameResultExists:      {text: "Game result already exists. Skipping save."},
	TagGameResultSaved:       {text: "Game result saved successfully."},
	TagDuplicateGameResult:   {text: "Duplicate game result detected."},
	TagGameResultSaveFailed:  {text: "Failed to save game result."},
	TagUnknownItemEffect:     {render: prefixed("Unknown item effect: ")},
}

// The server sends the effect description as the whole message.
func itemEffect(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return "Item effect applied."
	}
	return msg
}

// Interpret maps a status event to the action the UI should take. It never
// fails: unrecognised tags produce an informational "Unknown state" line.
func Interpret(ev client.StatusEvent) Action {
	d, ok := table[ev.Tag]
	if !ok {
		return Action{StatusText: "Unknown state: " + ev.Tag}
	}

	a := Action{StatusText: d.text, Busy: d.busy}
	if d.render != nil {
		a.StatusText = d.render(ev.Message)
	}
	if d.terminal {
		a.Terminal = &Terminal{Delay: TerminalDelay}
	}
	return a
}

// Tags returns the recognised vocabulary in sorted order.
func Tags() []string {
	out := make([]string, 0, len(table))
	for tag := range table {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// IsTerminal reports whether tag ends the live phase.
func IsTerminal(tag string) bool {
	return table[tag].terminal
}
