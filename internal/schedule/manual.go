package schedule

import (
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Manual records scheduled deliveries and releases them only when Advance
// moves its clock past their deadline. The returned commands never block;
// they yield nil, and tests collect due messages from Advance instead.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*entry
}

type entry struct {
	at     time.Duration
	handle *Handle
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, msg tea.Msg) (*Handle, tea.Cmd) {
	h := newHandle(d, msg)
	m.mu.Lock()
	m.pending = append(m.pending, &entry{at: m.now + d, handle: h})
	m.mu.Unlock()
	return h, func() tea.Msg { return nil }
}

// Pending returns the handles that have not fired or been stopped, in
// deadline order.
func (m *Manual) Pending() []*Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortLocked()
	var out []*Handle
	for _, e := range m.pending {
		if !e.handle.Stopped() {
			out = append(out, e.handle)
		}
	}
	return out
}

// Advance moves the clock forward by d and returns the messages that became
// due, in deadline order.
func (m *Manual) Advance(d time.Duration) []tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	m.sortLocked()

	var due []tea.Msg
	keep := m.pending[:0]
	for _, e := range m.pending {
		switch {
		case e.handle.Stopped():
		case e.at <= m.now:
			due = append(due, e.handle.Msg)
		default:
			keep = append(keep, e)
		}
	}
	m.pending = keep
	return due
}

func (m *Manual) sortLocked() {
	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].at < m.pending[j].at
	})
}
