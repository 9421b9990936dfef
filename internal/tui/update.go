package tui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/nucleus/internal/engine"
	"github.com/tinytelemetry/nucleus/internal/scheduler"
	"github.com/tinytelemetry/nucleus/internal/ticker"
)

func (m *DashboardModel) Init() tea.Cmd { return nil }

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case scheduler.FiredMsg:
		m.opts.Loop.Dispatch(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tea.KeyMsg:
		return m.handleKeyPress(msg), nil

	case tea.MouseMsg:
		m.handleMouseEvent(msg)

	case tea.BlurMsg:
		// The terminal lost focus; no further motion will arrive to clear hover.
		m.drag = nil
		m.leaveZones()

	case RemoteMsg:
		m.applyRemote(msg)
	}
	return nil, nil
}

// handleKeyPress maps keys onto engine and appearance actions.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit, m.keys.Quit) {
		m.shutdown()
		return tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, m.keys.Skin):
		if m.skins != nil {
			log.Printf("tui: skin %s", m.skins.Next().Name)
		}
		return nil
	case key.Matches(msg, m.keys.ReducedMotion):
		m.motion.Store(!m.motion.Load())
		return nil
	}

	e := m.engine()
	if e == nil || !m.started {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Prev):
		e.Prev()
	case key.Matches(msg, m.keys.Next):
		e.Next()
	case key.Matches(msg, m.keys.Jump):
		n := int(msg.String()[0] - '1')
		if n < len(e.Slides()) {
			e.GoToSlide(n)
		}
	case key.Matches(msg, m.keys.Commit):
		link := strings.TrimSpace(m.tk.Link())
		if link == "" {
			return nil
		}
		m.committed = link
		m.shutdown()
		return tea.Quit
	}
	return nil
}

// zoneAt classifies a cell of the window.
func (m *DashboardModel) zoneAt(y int) (stage, strip bool) {
	_, h := m.stageSize()
	top := headerHeight
	return y >= top && y < top+h, y == top+h
}

// handleMouseEvent processes hover, clicks on the controls and swipes.
func (m *DashboardModel) handleMouseEvent(msg tea.MouseMsg) {
	e := m.engine()
	if e == nil || !m.started {
		return
	}
	inStage, inTicker := m.zoneAt(msg.Y)

	// Hover follows the pointer under the help overlay; clicks do not.
	if msg.Action == tea.MouseActionMotion {
		m.setHover(e, inStage, inTicker)
		return
	}
	if m.showHelp {
		m.drag = nil
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.setHover(e, inStage, inTicker)
		if msg.Button == tea.MouseButtonLeft && (inStage || inTicker) {
			m.drag = &dragState{x: msg.X, y: msg.Y}
		}

	case tea.MouseActionRelease:
		d := m.drag
		m.drag = nil
		if d == nil {
			return
		}
		if e.Swipe(msg.X-d.x, msg.Y-d.y) {
			return
		}
		m.click(e, msg.X, inStage, inTicker)
	}
}

// leaveZones clears hover as if the pointer left the window.
func (m *DashboardModel) leaveZones() {
	if e := m.engine(); e != nil && m.started {
		m.setHover(e, false, false)
	}
}

func (m *DashboardModel) setHover(e *engine.Engine, inStage, inTicker bool) {
	if m.hoverStage == inStage && m.hoverTicker == inTicker {
		return
	}
	m.hoverStage, m.hoverTicker = inStage, inTicker
	e.SetHover(engine.ZoneSurface, inStage)
	m.tk.SetHover(inTicker)
}

func (m *DashboardModel) click(e *engine.Engine, x int, inStage, inTicker bool) {
	switch {
	case inStage && x < stageMargin:
		e.Prev()
	case inStage && x >= m.width-stageMargin:
		e.Next()
	case inTicker:
		switch m.tk.ControlAt(x) {
		case ticker.ControlPrev:
			m.tk.Prev()
		case ticker.ControlNext:
			m.tk.Next()
		}
	}
}
