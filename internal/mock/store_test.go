package mock

import (
	"fmt"
	"testing"
	"time"
)

func TestStorePutRejectsDuplicate(t *testing.T) {
	s := NewStore()
	if !s.Put(&Result{GameID: "g1", FinalScore: 1}) {
		t.Fatal("first Put should succeed")
	}
	if s.Put(&Result{GameID: "g1", FinalScore: 2}) {
		t.Error("second Put for the same game should be rejected")
	}
	r, _ := s.Get("g1")
	if r.FinalScore != 1 {
		t.Errorf("FinalScore = %d, want 1 (original kept)", r.FinalScore)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Put(&Result{GameID: "g1", Messages: []ProcessedMessage{{AdID: "a"}}})

	r, ok := s.Get("g1")
	if !ok {
		t.Fatal("expected result")
	}
	r.FinalScore = 99
	r.Messages[0].AdID = "mutated"

	again, _ := s.Get("g1")
	if again.FinalScore != 0 || again.Messages[0].AdID != "a" {
		t.Error("mutating a returned result must not affect the store")
	}
}

func TestStorePage(t *testing.T) {
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Put(&Result{GameID: fmt.Sprintf("g%d", i), FinishedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	tests := []struct {
		page, size int
		wantIDs    []string
		wantNext   bool
	}{
		{0, 2, []string{"g4", "g3"}, true},
		{1, 2, []string{"g2", "g1"}, true},
		{2, 2, []string{"g0"}, false},
		{3, 2, nil, false},
		{-1, 10, []string{"g4", "g3", "g2", "g1", "g0"}, false},
	}
	for _, tt := range tests {
		got, next := s.Page(tt.page, tt.size)
		var ids []string
		for _, r := range got {
			ids = append(ids, r.GameID)
		}
		if fmt.Sprint(ids) != fmt.Sprint(tt.wantIDs) {
			t.Errorf("Page(%d,%d) ids = %v, want %v", tt.page, tt.size, ids, tt.wantIDs)
		}
		if next != tt.wantNext {
			t.Errorf("Page(%d,%d) hasNext = %v, want %v", tt.page, tt.size, next, tt.wantNext)
		}
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}
