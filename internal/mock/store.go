package mock

import (
	"sort"
	"sync"
	"time"
)

// ProcessedMessage is one solved or failed message in a stored result.
type ProcessedMessage struct {
	AdID          string
	Message       string
	Turn          int
	Reward        int
	Success       bool
	FailureReason string
}

// Result is a finished game as the result page renders it.
type Result struct {
	GameID       string
	FinalScore   int
	LivesLeft    int
	AchievedGoal bool
	FinishedAt   time.Time
	Messages     []ProcessedMessage
}

// Store keeps finished game results in memory.
type Store struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func NewStore() *Store {
	return &Store{
		results: make(map[string]*Result),
	}
}

func (s *Store) Get(id string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, false
	}
	copy := *r
	copy.Messages = append([]ProcessedMessage(nil), r.Messages...)
	return &copy, true
}

// Put stores r, reporting false when a result for the same game exists.
func (s *Store) Put(r *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[r.GameID]; ok {
		return false
	}
	copy := *r
	s.results[r.GameID] = &copy
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Page returns results newest first. hasNext reports whether a later page
// exists.
func (s *Store) Page(page, size int) (out []*Result, hasNext bool) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	s.mu.RLock()
	all := make([]*Result, 0, len(s.results))
	for _, r := range s.results {
		copy := *r
		all = append(all, &copy)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].FinishedAt.Equal(all[j].FinishedAt) {
			return all[i].GameID < all[j].GameID
		}
		return all[i].FinishedAt.After(all[j].FinishedAt)
	})

	start := page * size
	if start >= len(all) {
		return nil, false
	}
	end := min(start+size, len(all))
	return all[start:end], end < len(all)
}
