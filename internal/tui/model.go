package tui

import (
	"log"
	"math/rand/v2"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/tinytelemetry/nucleus/internal/engine"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/scheduler"
	"github.com/tinytelemetry/nucleus/internal/selection"
	"github.com/tinytelemetry/nucleus/internal/slides"
	"github.com/tinytelemetry/nucleus/internal/surface"
	"github.com/tinytelemetry/nucleus/internal/theme"
	"github.com/tinytelemetry/nucleus/internal/ticker"
)

// Layout constants, in cells.
const (
	headerHeight = 1
	tickerHeight = 1
	statusHeight = 1
	// stageMargin is the column reserved on each side of the stage for the
	// prev/next controls.
	stageMargin = 3
)

// Options configures the dashboard page.
type Options struct {
	Engine        engine.Config
	Ticker        ticker.Config
	Weights       selection.Weights
	ReducedMotion bool
	Keys          KeyMap
	// Loop drives every frame and timer. It must be attached to the
	// program before the dashboard receives its slides.
	Loop  *scheduler.Loop
	Theme *theme.Resolver
	// Skins is the runtime-switchable skin source, usually also one of
	// Theme's sources. May be nil.
	Skins *theme.Cycle
	Rand  *rand.Rand
}

// dragState tracks a pointer press until its release.
type dragState struct {
	x, y int
}

// DashboardModel hosts the engine and the ticker.
type DashboardModel struct {
	opts Options
	keys KeyMap
	help help.Model

	// eng is written once by Receive and read by the HTTP goroutine.
	eng    atomic.Pointer[engine.Engine]
	tk     *ticker.Controller
	motion atomic.Bool
	skins  *theme.Cycle

	dst     *surface.Surface
	started bool

	width  int
	height int

	showHelp    bool
	drag        *dragState
	hoverStage  bool
	hoverTicker bool
	committed   string
}

// NewDashboardModel creates the dashboard page. It stays empty until it
// receives the gathered slides.
func NewDashboardModel(opts Options) *DashboardModel {
	if opts.Keys.Quit.Keys() == nil {
		opts.Keys = DefaultKeyMap()
	}
	if opts.Loop == nil {
		opts.Loop = scheduler.NewLoop(model.DefaultFrameRate)
	}
	if opts.Theme == nil {
		var sources []theme.Source
		if opts.Skins != nil {
			sources = append(sources, opts.Skins)
		}
		opts.Theme = theme.NewResolver(sources...)
	}
	m := &DashboardModel{
		opts:  opts,
		keys:  opts.Keys,
		help:  help.New(),
		skins: opts.Skins,
	}
	m.help.ShowAll = true
	m.motion.Store(opts.ReducedMotion)
	return m
}

func (m *DashboardModel) ID() string { return "dashboard" }

// Receive builds the engine and the ticker over the gathered slides.
func (m *DashboardModel) Receive(params any) {
	list, _ := params.([]model.Slide)
	if m.engine() != nil {
		return
	}

	ecfg := m.opts.Engine
	ecfg.ReducedMotion = m.ReducedMotion
	deps := engine.Deps{
		Scheduler: m.opts.Loop,
		Theme:     m.opts.Theme,
		Rand:      m.opts.Rand,
	}
	if m.opts.Weights != (selection.Weights{}) {
		deps.Policy = selection.New(m.opts.Weights)
	}
	e := engine.New(ecfg, deps, list)

	tcfg := m.opts.Ticker
	tcfg.ReducedMotion = m.ReducedMotion
	m.tk = ticker.New(tcfg, e.Slides(), slides.ModeFor, e, m.opts.Loop)
	e.OnSlideChange(m.tk.OnSlideChange)

	m.eng.Store(e)
	log.Printf("tui: dashboard ready with %d slides", len(e.Slides()))
}

func (m *DashboardModel) engine() *engine.Engine { return m.eng.Load() }

// Engine returns the hosted engine, nil until the slides arrived.
func (m *DashboardModel) Engine() *engine.Engine { return m.engine() }

// Ticker returns the hosted ticker, nil until the slides arrived.
func (m *DashboardModel) Ticker() *ticker.Controller { return m.tk }

// ReducedMotion reports the current motion preference. It is read by the
// engine and the ticker on every change.
func (m *DashboardModel) ReducedMotion() bool { return m.motion.Load() }

// Committed returns the link the user chose to open on exit, if any.
func (m *DashboardModel) Committed() string { return m.committed }

// Snapshot returns the engine state for readers outside the program loop.
func (m *DashboardModel) Snapshot() engine.Snapshot {
	if e := m.engine(); e != nil {
		return e.Snapshot()
	}
	return engine.Snapshot{State: "loading"}
}

// stageSize is the drawable size of the surface for the current window.
func (m *DashboardModel) stageSize() (int, int) {
	return m.width - 2*stageMargin, m.height - headerHeight - tickerHeight - statusHeight
}

// resize creates or resizes the surface and starts the engine once there
// is room to draw.
func (m *DashboardModel) resize() {
	e := m.engine()
	if e == nil {
		return
	}
	w, h := m.stageSize()
	if w <= 0 || h <= 0 {
		return
	}
	if m.started {
		e.Resize(w, h)
		return
	}
	m.dst = surface.New(w, h)
	if err := e.Start(m.dst); err != nil {
		log.Printf("tui: engine start: %v", err)
		m.dst = nil
		return
	}
	m.started = true
}

// shutdown stops the ticker, the engine and every pending timer.
func (m *DashboardModel) shutdown() {
	if m.tk != nil {
		m.tk.Stop()
	}
	if e := m.engine(); e != nil {
		e.Stop()
	}
	if m.opts.Loop != nil {
		m.opts.Loop.Stop()
	}
}
