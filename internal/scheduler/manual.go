package scheduler

import (
	"sort"
	"time"
)

type manualEntry struct {
	at    time.Time
	frame func(time.Time)
	fn    func()
}

// Manual is a deterministic Scheduler for tests. Time only moves through
// Advance and Step; callbacks run synchronously inside those calls.
type Manual struct {
	now           time.Time
	frameInterval time.Duration
	next          Handle
	pending       map[Handle]*manualEntry
}

// NewManual starts a manual clock at start with the given frame interval.
func NewManual(start time.Time, frameInterval time.Duration) *Manual {
	if frameInterval <= 0 {
		frameInterval = FrameInterval(0)
	}
	return &Manual{
		now:           start,
		frameInterval: frameInterval,
		pending:       make(map[Handle]*manualEntry),
	}
}

func (m *Manual) Now() time.Time { return m.now }

// FrameInterval is the delay between a frame request and its callback.
func (m *Manual) FrameInterval() time.Duration { return m.frameInterval }

func (m *Manual) RequestFrame(cb func(now time.Time)) Handle {
	return m.add(&manualEntry{at: m.now.Add(m.frameInterval), frame: cb})
}

func (m *Manual) CancelFrame(h Handle) { delete(m.pending, h) }

func (m *Manual) SetTimer(d time.Duration, cb func()) Handle {
	return m.add(&manualEntry{at: m.now.Add(d), fn: cb})
}

func (m *Manual) ClearTimer(h Handle) { delete(m.pending, h) }

func (m *Manual) add(e *manualEntry) Handle {
	m.next++
	m.pending[m.next] = e
	return m.next
}

// Advance moves the clock forward by d, running every callback that comes
// due in time order. Callbacks scheduled while advancing run too if they
// fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		h, e := m.earliest(target)
		if e == nil {
			break
		}
		delete(m.pending, h)
		m.now = e.at
		if e.frame != nil {
			e.frame(m.now)
		} else if e.fn != nil {
			e.fn()
		}
	}
	m.now = target
}

// Step advances by n frame intervals.
func (m *Manual) Step(n int) {
	for i := 0; i < n; i++ {
		m.Advance(m.frameInterval)
	}
}

func (m *Manual) earliest(limit time.Time) (Handle, *manualEntry) {
	handles := make([]Handle, 0, len(m.pending))
	for h, e := range m.pending {
		if !e.at.After(limit) {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return 0, nil
	}
	sort.Slice(handles, func(i, j int) bool {
		a, b := m.pending[handles[i]], m.pending[handles[j]]
		if a.at.Equal(b.at) {
			return handles[i] < handles[j]
		}
		return a.at.Before(b.at)
	})
	return handles[0], m.pending[handles[0]]
}

// Pending returns the number of outstanding frame requests and timers.
func (m *Manual) Pending() int { return len(m.pending) }

// PendingTimers counts outstanding timers, excluding frame requests.
func (m *Manual) PendingTimers() int {
	n := 0
	for _, e := range m.pending {
		if e.fn != nil {
			n++
		}
	}
	return n
}
