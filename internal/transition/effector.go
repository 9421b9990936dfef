// Package transition renders the scanning effect that bridges two slides.
package transition

import (
	"math/rand/v2"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

const (
	grainPeak     = 0.35
	fadeFloor     = 0.25
	scanlineTrail = 2
)

// DrawFunc renders one slide into dst. The effector calls it for the
// outgoing slide in phase one and the incoming slide in phase two.
type DrawFunc func(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme)

// Config tunes the effect.
type Config struct {
	Duration time.Duration
	Rand     *rand.Rand
}

// Effector runs one transition at a time. It holds no slide-activation
// state of its own: the caller swaps slides inside the midpoint callback.
type Effector struct {
	duration time.Duration
	rng      *rand.Rand
	draw     DrawFunc

	busy       bool
	started    bool
	midFired   bool
	start      time.Time
	from, to   model.Slide
	onMidpoint func()
	onComplete func()
}

// New creates an effector drawing slides through draw.
func New(cfg Config, draw DrawFunc) *Effector {
	if cfg.Duration <= 0 {
		cfg.Duration = model.DefaultTransition
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Effector{
		duration: cfg.Duration,
		rng:      cfg.Rand,
		draw:     draw,
	}
}

// Duration is the full length of a transition.
func (e *Effector) Duration() time.Duration { return e.duration }

// Busy reports whether a transition is in flight.
func (e *Effector) Busy() bool { return e.busy }

// Run starts a transition from one slide to another. It returns false and
// does nothing when a transition is already running. The clock starts on the
// first drawn frame.
func (e *Effector) Run(from, to model.Slide, onMidpoint, onComplete func()) bool {
	if e.busy {
		return false
	}
	e.busy = true
	e.started = false
	e.midFired = false
	e.from, e.to = from, to
	e.onMidpoint, e.onComplete = onMidpoint, onComplete
	return true
}

// Cancel abandons the running transition without firing callbacks.
func (e *Effector) Cancel() {
	e.reset()
}

func (e *Effector) reset() {
	e.busy = false
	e.started = false
	e.midFired = false
	e.from, e.to = model.Slide{}, model.Slide{}
	e.onMidpoint, e.onComplete = nil, nil
}

// progress returns the fraction of the transition elapsed at t, in [0, 1].
func (e *Effector) progress(t time.Time) float64 {
	p := float64(t.Sub(e.start)) / float64(e.duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Draw renders the transition for one frame. Callbacks fire from inside Draw:
// the midpoint before anything of the incoming slide is drawn, completion
// on the first frame at or past the full duration. On that final frame
// nothing is drawn; the caller draws the newly active slide.
func (e *Effector) Draw(dst *surface.Surface, width, height int, frame model.Frame, th model.Theme) {
	if !e.busy {
		return
	}
	if !e.started {
		e.start = frame.At
		e.started = true
	}

	p := e.progress(frame.At)

	if p >= 0.5 && !e.midFired {
		e.midFired = true
		if e.onMidpoint != nil {
			e.onMidpoint()
		}
	}

	if p >= 1 {
		done := e.onComplete
		e.reset()
		if done != nil {
			done()
		}
		return
	}

	scanY := int(p * float64(height))
	if p < 0.5 {
		local := p * 2
		e.drawSlide(dst, width, height, frame, e.from, th)
		dst.Fade(1 - (1-fadeFloor)*local)
		dst.Grain(e.rng, grainPeak*(1-local), th.Border)
		e.scanlines(dst, scanY, 1+int(local*scanlineTrail), th)
		return
	}

	local := (p - 0.5) * 2
	e.drawSlide(dst, width, height, frame, e.to, th)
	dst.Fade(fadeFloor + (1-fadeFloor)*local)
	dst.Grain(e.rng, grainPeak*0.5*(1-local), th.Border)
	e.scanlines(dst, scanY, 1+int((1-local)*scanlineTrail), th)
}

func (e *Effector) drawSlide(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	if e.draw == nil {
		return
	}
	e.draw(dst, width, height, frame, slide, th.WithAccent(slide.AccentOverride))
}

// scanlines paints a bright leading row with a dimmer trail above it.
func (e *Effector) scanlines(dst *surface.Surface, y, rows int, th model.Theme) {
	bg := dst.Background()
	for i := 0; i < rows; i++ {
		strength := 1 - float64(i)/float64(rows+1)
		dst.Scanline(y-i, bg.BlendRgb(th.Accent, strength).Clamped())
	}
}
