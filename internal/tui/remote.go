package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/nucleus/internal/engine"
)

// RemoteOp is a navigation request kind.
type RemoteOp int

const (
	RemoteGoTo RemoteOp = iota
	RemoteNext
	RemotePrev
)

// RemoteMsg asks the dashboard to navigate on behalf of a caller outside
// the program loop.
type RemoteMsg struct {
	Op    RemoteOp
	Index int
}

// Remote lets other goroutines drive the dashboard. Reads go through the
// engine's published snapshot; navigation is posted into the program so the
// engine is only ever touched by the event loop.
type Remote struct {
	dash *DashboardModel
	send func(tea.Msg)
}

// NewRemote wraps dash. send is usually (*tea.Program).Send.
func NewRemote(dash *DashboardModel, send func(tea.Msg)) *Remote {
	return &Remote{dash: dash, send: send}
}

func (r *Remote) Snapshot() engine.Snapshot { return r.dash.Snapshot() }
func (r *Remote) GoToSlide(index int)       { r.send(RemoteMsg{Op: RemoteGoTo, Index: index}) }
func (r *Remote) Next()                     { r.send(RemoteMsg{Op: RemoteNext}) }
func (r *Remote) Prev()                     { r.send(RemoteMsg{Op: RemotePrev}) }

func (m *DashboardModel) applyRemote(msg RemoteMsg) {
	e := m.engine()
	if e == nil || !m.started {
		return
	}
	switch msg.Op {
	case RemoteGoTo:
		e.GoToSlide(msg.Index)
	case RemoteNext:
		e.Next()
	case RemotePrev:
		e.Prev()
	}
}
