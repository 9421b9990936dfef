// Package ticker renders the statistic strip that mirrors the engine's
// active slide.
package ticker

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tinytelemetry/nucleus/internal/engine"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/scheduler"
)

const (
	prevGlyph = " ◀ "
	nextGlyph = " ▶ "
)

// Navigator is the engine surface the ticker talks back to.
type Navigator interface {
	GoToSlide(index int)
	SetHover(zone engine.Zone, over bool)
}

// Formatter projects a slide into its ticker mode.
type Formatter func(slide model.Slide) model.TickerMode

// Control is a clickable region of the ticker.
type Control int

const (
	ControlNone Control = iota
	ControlPrev
	ControlNext
)

// Config tunes the stat swap.
type Config struct {
	SwapDelay time.Duration `mapstructure:"swap-delay"`
	Fade      time.Duration `mapstructure:"fade"`
	// Blank lists stat values treated as missing.
	Blank         []string    `mapstructure:"blank-values"`
	ReducedMotion func() bool `mapstructure:"-"`
}

// Controller keeps its own copy of the active index, written only through
// OnSlideChange.
type Controller struct {
	cfg   Config
	nav   Navigator
	sched scheduler.Scheduler
	modes []model.TickerMode
	blank map[string]struct{}

	current int
	shown   int

	fadeOutAt  time.Time
	fadeInAt   time.Time
	swapHandle scheduler.Handle
	swapping   bool

	width int
}

// New builds a controller for slides. format is applied once per slide.
func New(cfg Config, list []model.Slide, format Formatter, nav Navigator, sched scheduler.Scheduler) *Controller {
	if cfg.SwapDelay <= 0 {
		cfg.SwapDelay = model.DefaultTickerSwapDelay
	}
	if cfg.Fade <= 0 {
		cfg.Fade = model.DefaultTickerFade
	}
	if cfg.Blank == nil {
		cfg.Blank = model.DefaultBlankValues
	}
	c := &Controller{
		cfg:   cfg,
		nav:   nav,
		sched: sched,
		blank: make(map[string]struct{}, len(cfg.Blank)),
	}
	for _, b := range cfg.Blank {
		c.blank[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}
	c.modes = make([]model.TickerMode, len(list))
	for i, s := range list {
		mode := format(s)
		mode.Stats = c.filter(mode.Stats)
		c.modes[i] = mode
	}
	return c
}

// Present reports whether a stat value carries data.
func (c *Controller) Present(value string) bool {
	_, blank := c.blank[strings.ToLower(strings.TrimSpace(value))]
	return !blank
}

// filter drops blank stats; an empty result becomes the placeholder pair.
func (c *Controller) filter(stats []model.Stat) []model.Stat {
	out := make([]model.Stat, 0, len(stats))
	for _, s := range stats {
		if c.Present(s.Value) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append(out, model.Stat{Value: model.DefaultPlaceholderValue, Unit: model.DefaultPlaceholderUnit})
	}
	return out
}

// CurrentModeIndex is the ticker's cached copy of the engine's active index.
func (c *Controller) CurrentModeIndex() int { return c.current }

// ShownIndex is the mode whose stats are on display; it trails
// CurrentModeIndex while a swap is pending.
func (c *Controller) ShownIndex() int { return c.shown }

// Mode returns the mode of the current index.
func (c *Controller) Mode() model.TickerMode {
	if len(c.modes) == 0 {
		return model.TickerMode{}
	}
	return c.modes[c.current]
}

// Link is the navigation target of the current slide.
func (c *Controller) Link() string { return c.Mode().Link }

// OnSlideChange is called by the engine after every completed change. The
// index updates immediately; the displayed stats fade out, swap after the
// swap delay, and fade back in.
func (c *Controller) OnSlideChange(index int) {
	if index < 0 || index >= len(c.modes) {
		return
	}
	c.current = index
	c.cancelSwap()

	if c.reducedMotion() || c.sched == nil {
		c.shown = index
		c.fadeOutAt, c.fadeInAt = time.Time{}, time.Time{}
		return
	}
	if c.shown == index {
		return
	}
	now := c.sched.Now()
	c.fadeOutAt = now
	c.swapping = true
	c.swapHandle = c.sched.SetTimer(c.cfg.SwapDelay, func() {
		c.swapHandle = 0
		c.swapping = false
		c.shown = c.current
		c.fadeInAt = c.sched.Now()
	})
}

func (c *Controller) cancelSwap() {
	if c.swapHandle != 0 && c.sched != nil {
		c.sched.ClearTimer(c.swapHandle)
	}
	c.swapHandle = 0
	c.swapping = false
}

// Opacity of the stat area at the scheduler's current time, 0..1.
func (c *Controller) Opacity() float64 {
	if c.sched == nil || c.reducedMotion() {
		return 1
	}
	now := c.sched.Now()
	if c.swapping {
		return 1 - ramp(now.Sub(c.fadeOutAt), c.cfg.Fade)
	}
	if c.fadeInAt.IsZero() {
		return 1
	}
	return ramp(now.Sub(c.fadeInAt), c.cfg.Fade)
}

func ramp(elapsed, d time.Duration) float64 {
	if d <= 0 || elapsed >= d {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(d)
}

// Prev asks the engine for the previous slide. The ticker's index only moves
// when the engine reports back.
func (c *Controller) Prev() {
	if c.nav != nil {
		c.nav.GoToSlide(c.current - 1)
	}
}

// Next asks the engine for the next slide.
func (c *Controller) Next() {
	if c.nav != nil {
		c.nav.GoToSlide(c.current + 1)
	}
}

// SetHover forwards pointer presence over the ticker to the engine.
func (c *Controller) SetHover(over bool) {
	if c.nav != nil {
		c.nav.SetHover(engine.ZoneTicker, over)
	}
}

// Stop clears the pending swap.
func (c *Controller) Stop() { c.cancelSwap() }

func (c *Controller) reducedMotion() bool {
	return c.cfg.ReducedMotion != nil && c.cfg.ReducedMotion()
}

// ControlAt resolves a click at column x of the last rendered view.
func (c *Controller) ControlAt(x int) Control {
	pw, nw := ansi.StringWidth(prevGlyph), ansi.StringWidth(nextGlyph)
	switch {
	case x >= 0 && x < pw:
		return ControlPrev
	case c.width > 0 && x >= c.width-nw && x < c.width:
		return ControlNext
	default:
		return ControlNone
	}
}

// View renders the strip at width cells.
func (c *Controller) View(width int, th model.Theme) string {
	c.width = width
	if width <= 0 || len(c.modes) == 0 {
		return ""
	}

	controlStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Border.Hex())).Bold(true)
	prev := controlStyle.Render(prevGlyph)
	next := controlStyle.Render(nextGlyph)

	// Identity follows the index at once; stats follow the swap.
	mode := c.modes[c.current]
	shown := c.modes[c.shown]
	head := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent.Hex())).Bold(true).
		Render(strings.TrimSpace(mode.Icon + " " + strings.ToUpper(mode.Service)))
	name := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Border.Hex())).Render(" · " + mode.Name)

	alpha := c.Opacity()
	bg := colorful.Color{}
	valueColor := bg.BlendRgb(th.Accent, alpha).Clamped()
	unitColor := bg.BlendRgb(th.Border, alpha).Clamped()
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(valueColor.Hex())).Bold(true)
	unitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(unitColor.Hex()))

	chips := make([]string, 0, len(shown.Stats))
	for _, s := range shown.Stats {
		chips = append(chips, valueStyle.Render(s.Value)+" "+unitStyle.Render(strings.ToUpper(s.Unit)))
	}

	left := prev + head + name
	if len(chips) > 0 {
		left += "   " + strings.Join(chips, "  ")
	}

	room := width - lipgloss.Width(next)
	if room <= 0 {
		return ansi.Truncate(prev+next, width, "")
	}
	if lipgloss.Width(left) > room-1 {
		left = ansi.Truncate(left, max(room-1, 0), "…")
	}
	gap := room - lipgloss.Width(left)
	return left + strings.Repeat(" ", max(gap, 0)) + next
}
