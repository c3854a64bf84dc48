// Package schedule turns delayed work into Bubble Tea commands with handles,
// so timing-dependent logic can run against a manual clock in tests.
package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler delivers msg to the program after d.
type Scheduler interface {
	After(d time.Duration, msg tea.Msg) (*Handle, tea.Cmd)
}

var nextID atomic.Uint64

// Handle identifies one scheduled delivery.
type Handle struct {
	ID    uint64
	Delay time.Duration
	Msg   tea.Msg

	once sync.Once
	stop chan struct{}
}

func newHandle(d time.Duration, msg tea.Msg) *Handle {
	return &Handle{
		ID:    nextID.Add(1),
		Delay: d,
		Msg:   msg,
		stop:  make(chan struct{}),
	}
}

// Stop prevents delivery if the timer has not fired yet. Safe to call more
// than once.
func (h *Handle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

// Real schedules on the wall clock. The deadline is fixed when After is
// called, not when the runtime gets around to running the command.
type Real struct{}

func (Real) After(d time.Duration, msg tea.Msg) (*Handle, tea.Cmd) {
	h := newHandle(d, msg)
	deadline := time.Now().Add(d)
	return h, func() tea.Msg {
		t := time.NewTimer(time.Until(deadline))
		defer t.Stop()
		select {
		case <-t.C:
			return msg
		case <-h.stop:
			return nil
		}
	}
}
