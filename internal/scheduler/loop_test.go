package scheduler

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLoop_PostsAndDispatches(t *testing.T) {
	t.Parallel()

	posted := make(chan tea.Msg, 1)
	l := NewLoop(60)
	l.Attach(func(msg tea.Msg) { posted <- msg })

	ran := false
	l.SetTimer(time.Millisecond, func() { ran = true })

	select {
	case msg := <-posted:
		fired, ok := msg.(FiredMsg)
		if !ok {
			t.Fatalf("posted %T, want FiredMsg", msg)
		}
		if !l.Dispatch(fired) {
			t.Fatal("Dispatch returned false for live handle")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never posted")
	}

	if !ran {
		t.Fatal("callback did not run on dispatch")
	}
	if l.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", l.Pending())
	}
}

func TestLoop_CancelledHandleNotDispatched(t *testing.T) {
	t.Parallel()

	l := NewLoop(60)
	h := l.SetTimer(time.Hour, func() { t.Error("cancelled timer ran") })
	l.ClearTimer(h)

	if l.Dispatch(FiredMsg{Handle: h}) {
		t.Fatal("Dispatch ran a cancelled handle")
	}
}

func TestLoop_StopReleasesEverything(t *testing.T) {
	t.Parallel()

	l := NewLoop(60)
	l.RequestFrame(func(time.Time) {})
	l.SetTimer(time.Hour, func() {})
	l.Stop()

	if l.Pending() != 0 {
		t.Fatalf("pending after Stop = %d, want 0", l.Pending())
	}
	if h := l.SetTimer(time.Millisecond, func() {}); h != 0 {
		t.Fatalf("SetTimer after Stop returned handle %d, want 0", h)
	}
}
