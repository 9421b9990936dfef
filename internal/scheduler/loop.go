package scheduler

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FiredMsg is posted into the Bubble Tea program when a frame request or
// timer expires. The receiving model hands it back to [Loop.Dispatch].
type FiredMsg struct {
	Handle Handle
}

type loopEntry struct {
	timer *time.Timer
	frame func(time.Time)
	fn    func()
}

// Loop is a Scheduler backed by time.AfterFunc. Expirations only post a
// FiredMsg; the callback itself runs when the program dispatches the message.
type Loop struct {
	mu            sync.Mutex
	frameInterval time.Duration
	post          func(tea.Msg)
	next          Handle
	pending       map[Handle]*loopEntry
	stopped       bool
}

// NewLoop creates a Loop producing frames at fps.
func NewLoop(fps int) *Loop {
	return &Loop{
		frameInterval: FrameInterval(fps),
		pending:       make(map[Handle]*loopEntry),
	}
}

// Attach sets the function used to post messages, usually (*tea.Program).Send.
func (l *Loop) Attach(post func(tea.Msg)) {
	l.mu.Lock()
	l.post = post
	l.mu.Unlock()
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) RequestFrame(cb func(now time.Time)) Handle {
	return l.schedule(l.frameInterval, &loopEntry{frame: cb})
}

func (l *Loop) CancelFrame(h Handle) { l.cancel(h) }

func (l *Loop) SetTimer(d time.Duration, cb func()) Handle {
	return l.schedule(d, &loopEntry{fn: cb})
}

func (l *Loop) ClearTimer(h Handle) { l.cancel(h) }

func (l *Loop) schedule(d time.Duration, e *loopEntry) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return 0
	}
	l.next++
	h := l.next
	l.pending[h] = e
	e.timer = time.AfterFunc(d, func() { l.fire(h) })
	return h
}

func (l *Loop) fire(h Handle) {
	l.mu.Lock()
	_, ok := l.pending[h]
	post := l.post
	l.mu.Unlock()

	// Posting must happen outside the lock: Send blocks until the program
	// reads the message, and the program may be scheduling at that moment.
	if ok && post != nil {
		post(FiredMsg{Handle: h})
	}
}

func (l *Loop) cancel(h Handle) {
	if h == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.pending[h]; ok {
		e.timer.Stop()
		delete(l.pending, h)
	}
}

// Dispatch runs the callback for a fired handle. It reports false when the
// handle was cancelled after it fired.
func (l *Loop) Dispatch(msg FiredMsg) bool {
	l.mu.Lock()
	e, ok := l.pending[msg.Handle]
	if ok {
		delete(l.pending, msg.Handle)
	}
	l.mu.Unlock()

	if !ok {
		return false
	}
	if e.frame != nil {
		e.frame(time.Now())
	} else if e.fn != nil {
		e.fn()
	}
	return true
}

// Pending returns the number of outstanding frame requests and timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Stop cancels everything and refuses further scheduling.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopped = true
	for h, e := range l.pending {
		e.timer.Stop()
		delete(l.pending, h)
	}
}
