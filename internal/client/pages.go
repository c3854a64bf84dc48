package client

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors used by the server's result and history templates.
const (
	selResultRows  = "#processedMessagesTable tbody tr.clickable-row"
	selHistoryRows = "#gameHistoryTable tbody tr.clickable-row"
	selNextPage    = "a[rel=next]"
	selErrorText   = "#errorMessage"
)

var errNoResult = errors.New("page contains no game result")

// ParseResult reads a rendered result page.
func ParseResult(r io.Reader) (*GameResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}

	if msg := strings.TrimSpace(doc.Find(selErrorText).First().Text()); msg != "" {
		return nil, fmt.Errorf("result page: %s", msg)
	}
	if doc.Find("#gameId").Length() == 0 {
		return nil, errNoResult
	}

	res := &GameResult{
		GameID:       text(doc.Selection, "#gameId"),
		FinalScore:   atoi(text(doc.Selection, "#finalScore")),
		LivesLeft:    atoi(text(doc.Selection, "#livesLeft")),
		AchievedGoal: truthy(text(doc.Selection, "#achievedGoal")),
		FinishedAt:   text(doc.Selection, "#finishedAt"),
	}

	doc.Find(selResultRows).Each(func(_ int, row *goquery.Selection) {
		res.Messages = append(res.Messages, ProcessedMessage{
			AdID:          row.AttrOr("data-adid", ""),
			Message:       row.AttrOr("data-message", ""),
			Turn:          atoi(row.AttrOr("data-turn", "")),
			Reward:        atoi(row.AttrOr("data-reward", "")),
			Success:       truthy(row.AttrOr("data-success", "")),
			FailureReason: strings.TrimSpace(row.AttrOr("data-failurereason", "")),
		})
	})
	return res, nil
}

// ParseHistory reads a rendered history page. Rows without a game id are
// skipped since they cannot be opened.
func ParseHistory(r io.Reader) (*HistoryPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse history page: %w", err)
	}
	if msg := strings.TrimSpace(doc.Find(selErrorText).First().Text()); msg != "" {
		return nil, fmt.Errorf("history page: %s", msg)
	}

	hp := &HistoryPage{HasNext: doc.Find(selNextPage).Length() > 0}
	doc.Find(selHistoryRows).Each(func(_ int, row *goquery.Selection) {
		id := strings.TrimSpace(row.AttrOr("data-gameid", ""))
		if id == "" {
			return
		}
		cells := row.Find("td")
		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}
		hp.Entries = append(hp.Entries, HistoryEntry{
			GameID:       id,
			FinalScore:   atoi(cell(1)),
			LivesLeft:    atoi(cell(2)),
			AchievedGoal: truthy(cell(3)),
			FinishedAt:   cell(4),
		})
	})
	return hp, nil
}

func text(s *goquery.Selection, sel string) string {
	return strings.TrimSpace(s.Find(sel).First().Text())
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func truthy(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
