// Package engine owns the render surface, the active slide and the
// interaction state machine.
//
// Everything here runs on one goroutine: the scheduler's callbacks and the
// public methods must be called from the same loop (the Bubble Tea update
// goroutine in production). Snapshot is the only method safe to call from
// elsewhere.
package engine

import (
	"errors"
	"log"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/scheduler"
	"github.com/tinytelemetry/nucleus/internal/selection"
	"github.com/tinytelemetry/nucleus/internal/slides"
	"github.com/tinytelemetry/nucleus/internal/surface"
	"github.com/tinytelemetry/nucleus/internal/theme"
	"github.com/tinytelemetry/nucleus/internal/transition"
)

var (
	// ErrNoSurface is returned by Start when there is nothing to draw on.
	ErrNoSurface = errors.New("engine: no drawable surface")
	// ErrNoScheduler is returned by Start when Deps.Scheduler is nil.
	ErrNoScheduler = errors.New("engine: no scheduler")
)

// Effector draws transitions. *transition.Effector is the production
// implementation.
type Effector interface {
	Run(from, to model.Slide, onMidpoint, onComplete func()) bool
	Draw(dst *surface.Surface, width, height int, frame model.Frame, th model.Theme)
	Busy() bool
	Cancel()
}

// ThemeReader returns the current colour tokens.
type ThemeReader interface {
	Read() model.Theme
}

// Config holds the engine timings.
type Config struct {
	AutoAdvance time.Duration `mapstructure:"auto-advance"`
	Idle        time.Duration `mapstructure:"idle-timeout"`
	Transition  time.Duration `mapstructure:"transition"`
	// SwipeThreshold is the horizontal drag, in cells, a swipe must exceed.
	SwipeThreshold int `mapstructure:"swipe-threshold"`
	// ReducedMotion is consulted on every slide change.
	ReducedMotion func() bool `mapstructure:"-"`
}

func (c Config) withDefaults() Config {
	if c.AutoAdvance <= 0 {
		c.AutoAdvance = model.DefaultAutoAdvance
	}
	if c.Idle <= 0 {
		c.Idle = model.DefaultIdleTimeout
	}
	if c.Transition <= 0 {
		c.Transition = model.DefaultTransition
	}
	if c.SwipeThreshold <= 0 {
		c.SwipeThreshold = model.DefaultSwipeThreshold
	}
	return c
}

// Deps are the collaborators of the engine. Only Scheduler is required.
type Deps struct {
	Scheduler scheduler.Scheduler
	Renderers map[model.SlideID]slides.Renderer
	Effector  Effector
	Theme     ThemeReader
	Policy    selection.Policy
	Rand      *rand.Rand
}

// Engine is the orchestrator of the dashboard.
type Engine struct {
	cfg       Config
	sched     scheduler.Scheduler
	renderers map[model.SlideID]slides.Renderer
	effector  Effector
	theme     ThemeReader
	policy    selection.Policy
	rng       *rand.Rand

	slides []model.Slide
	active int
	state  State
	// settle is the state a running transition returns to.
	settle State

	dst    *surface.Surface
	frames uint64

	frameHandle scheduler.Handle
	idleHandle  scheduler.Handle
	autoHandle  scheduler.Handle
	autoDue     time.Time
	// autoLeft is the remaining auto-advance delay while paused by hover.
	autoLeft   time.Duration
	autoPaused bool

	hover [zoneCount]bool

	listeners []func(index int)
	started   bool
	stopped   bool

	snap atomic.Pointer[Snapshot]
}

// New builds an engine over list. An empty list is replaced by the single
// placeholder slide, so the engine always has something to draw.
func New(cfg Config, deps Deps, list []model.Slide) *Engine {
	cfg = cfg.withDefaults()
	if len(list) == 0 {
		list = []model.Slide{PlaceholderSlide()}
	}
	e := &Engine{
		cfg:       cfg,
		sched:     deps.Scheduler,
		renderers: deps.Renderers,
		theme:     deps.Theme,
		policy:    deps.Policy,
		rng:       deps.Rand,
		slides:    append([]model.Slide(nil), list...),
		state:     Ambient,
	}
	if e.renderers == nil {
		e.renderers = slides.Renderers()
	}
	if e.theme == nil {
		e.theme = theme.NewResolver()
	}
	if e.policy == (selection.Policy{}) {
		e.policy = selection.New(selection.DefaultWeights())
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.effector = deps.Effector
	if e.effector == nil {
		e.effector = transition.New(transition.Config{Duration: cfg.Transition, Rand: e.rng}, e.drawSlide)
	}
	e.publish()
	return e
}

// Start attaches the engine to dst, applies the initial slide without a
// transition and begins the frame loop. A nil or empty surface aborts
// initialization and nothing else happens.
func (e *Engine) Start(dst *surface.Surface) error {
	if dst == nil || dst.Width() <= 0 || dst.Height() <= 0 {
		return ErrNoSurface
	}
	if e.sched == nil {
		return ErrNoScheduler
	}
	if e.started {
		return nil
	}
	e.started = true
	e.dst = dst

	e.active = e.policy.Choose(e.slides, e.rng)
	e.state = Ambient
	e.resetRenderer(e.active)
	log.Printf("engine: starting on slide %d/%d (%s)", e.active+1, len(e.slides), e.slides[e.active].ID)

	e.armAuto(e.cfg.AutoAdvance)
	e.frameHandle = e.sched.RequestFrame(e.onFrame)
	e.notify()
	e.publish()
	return nil
}

// Stop releases the frame callback and every timer. The engine cannot be
// restarted.
func (e *Engine) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	if e.sched != nil {
		e.sched.CancelFrame(e.frameHandle)
		e.sched.ClearTimer(e.autoHandle)
		e.sched.ClearTimer(e.idleHandle)
	}
	e.frameHandle, e.autoHandle, e.idleHandle = 0, 0, 0
	e.autoPaused = false
	e.effector.Cancel()
	e.listeners = nil
	e.publish()
}

// OnSlideChange registers fn to be called with the active index after every
// completed change, including the initial one.
func (e *Engine) OnSlideChange(fn func(index int)) {
	if fn != nil {
		e.listeners = append(e.listeners, fn)
	}
}

func (e *Engine) Active() int               { return e.active }
func (e *Engine) State() State              { return e.state }
func (e *Engine) FrameCount() uint64        { return e.frames }
func (e *Engine) Surface() *surface.Surface { return e.dst }
func (e *Engine) Slides() []model.Slide     { return append([]model.Slide(nil), e.slides...) }
func (e *Engine) ActiveSlide() model.Slide  { return e.slides[e.active] }
func (e *Engine) Config() Config            { return e.cfg }
func (e *Engine) Hovered() bool             { return e.hovered() }
func (e *Engine) Stopped() bool             { return e.stopped }

// Snapshot returns the most recently published state. It is safe for
// concurrent use.
func (e *Engine) Snapshot() Snapshot {
	return *e.snap.Load()
}

// GoToSlide navigates to index on behalf of the user. Any integer is
// accepted and wrapped into range; the active index is a no-op, and
// requests during a transition are dropped.
func (e *Engine) GoToSlide(index int) {
	if !e.live() {
		return
	}
	n := len(e.slides)
	target := ((index % n) + n) % n
	if target == e.active || e.state == Scanning {
		return
	}

	e.clearAuto()
	e.state = Exploring
	e.armIdle()
	e.change(target, Exploring)
}

// RequestIndex is GoToSlide for untyped numeric input: non-finite values are
// ignored and fractions are truncated toward zero.
func (e *Engine) RequestIndex(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	n := float64(len(e.slides))
	e.GoToSlide(int(math.Mod(math.Trunc(v), n)))
}

// Next navigates to the following slide, wrapping around.
func (e *Engine) Next() { e.GoToSlide(e.active + 1) }

// Prev navigates to the preceding slide, wrapping around.
func (e *Engine) Prev() { e.GoToSlide(e.active - 1) }

// Swipe interprets a pointer drag. Horizontal drags longer than the swipe
// threshold that dominate the vertical movement navigate: leftward moves
// forward, rightward moves back.
func (e *Engine) Swipe(dx, dy int) bool {
	if abs(dx) <= e.cfg.SwipeThreshold || abs(dx) <= abs(dy) {
		return false
	}
	if dx < 0 {
		e.Next()
	} else {
		e.Prev()
	}
	return true
}

// SetHover records whether the pointer is over zone. While any zone is
// hovered the auto-advance countdown is paused; it resumes with the time it
// had left once the pointer leaves every zone.
func (e *Engine) SetHover(zone Zone, over bool) {
	if zone < 0 || zone >= zoneCount {
		return
	}
	was := e.hovered()
	e.hover[zone] = over
	now := e.hovered()
	switch {
	case !was && now:
		e.pauseAuto()
	case was && !now:
		e.resumeAuto()
	}
	e.publish()
}

// Resize matches the surface to its container. Frame count and active slide
// are kept.
func (e *Engine) Resize(width, height int) {
	if e.dst == nil || width <= 0 || height <= 0 {
		return
	}
	e.dst.Resize(width, height)
}

func (e *Engine) live() bool { return e.started && !e.stopped }

func (e *Engine) hovered() bool {
	for _, h := range e.hover {
		if h {
			return true
		}
	}
	return false
}

func (e *Engine) reducedMotion() bool {
	return e.cfg.ReducedMotion != nil && e.cfg.ReducedMotion()
}

// change activates target and settles into the given state afterwards.
func (e *Engine) change(target int, settle State) {
	if e.reducedMotion() {
		e.activate(target)
		e.state = settle
		e.settled()
		return
	}

	from, to := e.slides[e.active], e.slides[target]
	e.settle = settle
	ok := e.effector.Run(from, to,
		func() { e.activate(target) },
		func() {
			e.state = e.settle
			e.settled()
		},
	)
	if !ok {
		return
	}
	e.state = Scanning
	e.publish()
}

// activate makes index the active slide and resets its renderer before the
// slide is drawn again.
func (e *Engine) activate(index int) {
	e.active = index
	e.resetRenderer(index)
	e.publish()
}

// settled runs once a change has completed.
func (e *Engine) settled() {
	if e.state == Ambient {
		e.armAuto(e.cfg.AutoAdvance)
	}
	e.notify()
	e.publish()
}

func (e *Engine) resetRenderer(index int) {
	r, ok := e.renderers[e.slides[index].ID]
	if !ok {
		return
	}
	if rs, ok := r.(slides.Resetter); ok {
		rs.Reset()
	}
}

func (e *Engine) notify() {
	for _, fn := range e.listeners {
		fn(e.active)
	}
}

// armAuto schedules the next auto-advance after d, or records it as paused
// when the pointer is hovering.
func (e *Engine) armAuto(d time.Duration) {
	e.clearAuto()
	if e.hovered() {
		e.autoPaused = true
		e.autoLeft = d
		return
	}
	e.autoDue = e.sched.Now().Add(d)
	e.autoHandle = e.sched.SetTimer(d, e.onAuto)
}

func (e *Engine) clearAuto() {
	if e.autoHandle != 0 {
		e.sched.ClearTimer(e.autoHandle)
		e.autoHandle = 0
	}
	e.autoPaused = false
	e.autoLeft = 0
}

func (e *Engine) pauseAuto() {
	if e.autoHandle == 0 {
		return
	}
	left := e.autoDue.Sub(e.sched.Now())
	e.sched.ClearTimer(e.autoHandle)
	e.autoHandle = 0
	e.autoPaused = true
	e.autoLeft = max(left, 0)
}

func (e *Engine) resumeAuto() {
	if !e.autoPaused || !e.live() {
		return
	}
	e.armAuto(e.autoLeft)
}

func (e *Engine) onAuto() {
	e.autoHandle = 0
	if !e.live() || e.state != Ambient {
		return
	}
	if e.effector.Busy() {
		e.armAuto(e.cfg.AutoAdvance)
		return
	}
	target := (e.active + 1) % len(e.slides)
	if target == e.active {
		e.armAuto(e.cfg.AutoAdvance)
		return
	}
	e.change(target, Ambient)
}

func (e *Engine) armIdle() {
	if e.idleHandle != 0 {
		e.sched.ClearTimer(e.idleHandle)
	}
	e.idleHandle = e.sched.SetTimer(e.cfg.Idle, e.onIdle)
}

// onIdle hands control back to the engine. A user transition still in
// flight settles into ambient instead of exploring.
func (e *Engine) onIdle() {
	e.idleHandle = 0
	if !e.live() {
		return
	}
	switch e.state {
	case Exploring:
		e.state = Ambient
		e.armAuto(e.cfg.AutoAdvance)
		log.Printf("engine: idle, back to ambient on slide %d", e.active)
	case Scanning:
		e.settle = Ambient
	}
	e.publish()
}

func (e *Engine) onFrame(now time.Time) {
	e.frameHandle = 0
	if e.stopped {
		return
	}
	e.frames++
	frame := model.Frame{N: e.frames, At: now}
	th := e.theme.Read()
	w, h := e.dst.Width(), e.dst.Height()

	e.dst.Clear()
	drawn := false
	if e.state == Scanning && e.effector.Busy() {
		e.effector.Draw(e.dst, w, h, frame, th)
		// The effector draws nothing on the frame it completes.
		drawn = e.effector.Busy()
	}
	if !drawn {
		e.drawSlide(e.dst, w, h, frame, e.slides[e.active], th.WithAccent(e.slides[e.active].AccentOverride))
	}

	if !e.stopped {
		e.frameHandle = e.sched.RequestFrame(e.onFrame)
	}
	e.publishFrames()
}

// drawSlide renders one slide with its domain renderer, falling back to the
// placeholder renderer for unknown domains.
func (e *Engine) drawSlide(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	r, ok := e.renderers[slide.ID]
	if !ok {
		r, ok = e.renderers[model.SlidePlaceholder]
	}
	if !ok {
		return
	}
	r.Render(dst, width, height, frame, slide, th)
}

func (e *Engine) publish() {
	list := make([]SlideSummary, len(e.slides))
	for i, s := range e.slides {
		list[i] = summarize(i, s)
	}
	e.snap.Store(&Snapshot{
		State:     e.state.String(),
		Active:    e.active,
		Slide:     list[e.active],
		Slides:    list,
		Frames:    e.frames,
		Hovered:   e.hovered(),
		Running:   e.live(),
		UpdatedAt: e.now(),
	})
}

// publishFrames refreshes only the frame counter of the current snapshot.
func (e *Engine) publishFrames() {
	prev := e.snap.Load()
	next := *prev
	next.Frames = e.frames
	e.snap.Store(&next)
}

func (e *Engine) now() time.Time {
	if e.sched == nil {
		return time.Time{}
	}
	return e.sched.Now()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
