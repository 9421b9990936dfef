package engine

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/scheduler"
	"github.com/tinytelemetry/nucleus/internal/slides"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

var epoch = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

// settleTime comfortably covers one transition plus frame jitter.
const settleTime = 600 * time.Millisecond

type recordingRenderer struct {
	id  model.SlideID
	log *[]string
}

func (r *recordingRenderer) ID() model.SlideID { return r.id }

func (r *recordingRenderer) Render(*surface.Surface, int, int, model.Frame, model.Slide, model.Theme) {
	*r.log = append(*r.log, "render:"+string(r.id))
}

func (r *recordingRenderer) Reset() {
	*r.log = append(*r.log, "reset:"+string(r.id))
}

type spyEffector struct {
	runs int
}

func (s *spyEffector) Run(model.Slide, model.Slide, func(), func()) bool {
	s.runs++
	return true
}
func (s *spyEffector) Draw(*surface.Surface, int, int, model.Frame, model.Theme) {}
func (s *spyEffector) Busy() bool                                                { return false }
func (s *spyEffector) Cancel()                                                   {}

func testSlides(n int) []model.Slide {
	ids := model.SlideIDs()
	out := make([]model.Slide, n)
	for i := range out {
		out[i] = model.Slide{
			ID:        ids[i],
			Label:     string(ids[i]),
			UpdatedAt: epoch.AddDate(0, 0, -i).Format(time.RFC3339),
		}
	}
	return out
}

type harness struct {
	e       *Engine
	m       *scheduler.Manual
	log     []string
	changes []int
}

func newHarness(t *testing.T, n int, cfg Config, effector Effector) *harness {
	t.Helper()

	h := &harness{m: scheduler.NewManual(epoch, scheduler.FrameInterval(30))}
	list := testSlides(n)
	rs := make(map[model.SlideID]slides.Renderer, n)
	for _, s := range list {
		rs[s.ID] = &recordingRenderer{id: s.ID, log: &h.log}
	}
	h.e = New(cfg, Deps{
		Scheduler: h.m,
		Renderers: rs,
		Effector:  effector,
		Rand:      rand.New(rand.NewPCG(7, 11)),
	}, list)
	h.e.OnSlideChange(func(i int) { h.changes = append(h.changes, i) })
	if err := h.e.Start(surface.New(40, 12)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return h
}

func reduced() Config {
	return Config{ReducedMotion: func() bool { return true }}
}

func count(log []string, entry string) int {
	n := 0
	for _, l := range log {
		if l == entry {
			n++
		}
	}
	return n
}

func TestStart_NoSurface(t *testing.T) {
	t.Parallel()

	for _, dst := range []*surface.Surface{nil, surface.New(0, 0), surface.New(10, 0)} {
		m := scheduler.NewManual(epoch, 0)
		e := New(Config{}, Deps{Scheduler: m}, testSlides(3))
		if err := e.Start(dst); !errors.Is(err, ErrNoSurface) {
			t.Fatalf("Start = %v, want ErrNoSurface", err)
		}
		if m.Pending() != 0 {
			t.Fatalf("pending callbacks = %d after aborted start, want 0", m.Pending())
		}
		m.Advance(time.Minute)
		if e.FrameCount() != 0 {
			t.Fatal("aborted engine rendered frames")
		}
	}
}

func TestStart_NoScheduler(t *testing.T) {
	t.Parallel()

	e := New(Config{}, Deps{}, testSlides(2))
	if err := e.Start(surface.New(4, 4)); !errors.Is(err, ErrNoScheduler) {
		t.Fatalf("Start = %v, want ErrNoScheduler", err)
	}
}

func TestStart_ResetsInitialSlideBeforeFirstRender(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	id := string(h.e.ActiveSlide().ID)
	h.m.Step(1)

	if len(h.log) < 2 || h.log[0] != "reset:"+id || h.log[1] != "render:"+id {
		t.Fatalf("log = %v, want reset then render of %s", h.log, id)
	}
	if h.e.State() != Ambient {
		t.Fatalf("state = %s, want ambient", h.e.State())
	}
	if !slices.Equal(h.changes, []int{h.e.Active()}) {
		t.Fatalf("changes = %v, want initial index only", h.changes)
	}
}

func TestEmptyUniverse_UsesPlaceholder(t *testing.T) {
	t.Parallel()

	m := scheduler.NewManual(epoch, 0)
	e := New(Config{}, Deps{Scheduler: m}, nil)
	if got := e.Slides(); len(got) != 1 || got[0].ID != model.SlidePlaceholder {
		t.Fatalf("slides = %+v, want single placeholder", got)
	}
	if err := e.Start(surface.New(40, 10)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Step(3)

	if !strings.Contains(e.Surface().Plain(), "AWAITING SYNC") {
		t.Fatalf("placeholder not drawn:\n%s", e.Surface().Plain())
	}

	// A single slide never moves.
	e.Next()
	m.Advance(2 * time.Minute)
	if e.Active() != 0 || len(e.Slides()) != 1 {
		t.Fatalf("active = %d, slides = %d", e.Active(), len(e.Slides()))
	}
}

func TestGoToSlide_WrapsAnyInteger(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 7; n++ {
		h := newHarness(t, n, reduced(), nil)
		for i := -3 * n; i <= 3*n; i++ {
			h.e.GoToSlide(i)
			want := ((i % n) + n) % n
			if got := h.e.Active(); got != want {
				t.Fatalf("n=%d GoToSlide(%d) active = %d, want %d", n, i, got, want)
			}
		}
		for _, i := range []int{math.MaxInt, math.MinInt} {
			h.e.GoToSlide(i)
			want := ((i % n) + n) % n
			if got := h.e.Active(); got != want {
				t.Fatalf("n=%d GoToSlide(%d) active = %d, want %d", n, i, got, want)
			}
		}
	}
}

func TestGoToSlide_WithTransition(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	start := h.e.Active()

	h.e.GoToSlide(start + 7)
	if h.e.State() != Scanning {
		t.Fatalf("state = %s, want scanning", h.e.State())
	}
	h.m.Advance(settleTime)

	if got, want := h.e.Active(), (start+2)%5; got != want {
		t.Fatalf("active = %d, want %d", got, want)
	}
	if h.e.State() != Exploring {
		t.Fatalf("state = %s, want exploring", h.e.State())
	}
}

func TestGoToSlide_ActiveIndexIsNoop(t *testing.T) {
	t.Parallel()

	spy := &spyEffector{}
	h := newHarness(t, 4, Config{}, spy)
	h.m.Advance(10 * time.Second)
	h.log = nil
	frames := h.e.FrameCount()
	timers := h.m.PendingTimers()
	active := h.e.Active()

	h.e.GoToSlide(active)
	h.e.GoToSlide(active + 4)
	h.e.GoToSlide(active - 8)
	h.e.RequestIndex(float64(active))

	if spy.runs != 0 {
		t.Fatalf("transition started %d times", spy.runs)
	}
	if n := count(h.log, "reset:"+string(h.e.ActiveSlide().ID)); n != 0 {
		t.Fatalf("reset called %d times", n)
	}
	if h.e.State() != Ambient {
		t.Fatalf("state = %s, want ambient", h.e.State())
	}
	if h.e.FrameCount() != frames || h.m.PendingTimers() != timers {
		t.Fatal("no-op navigation touched the frame counter or timers")
	}
	if len(h.changes) != 1 {
		t.Fatalf("changes = %v, want only the initial one", h.changes)
	}
}

func TestRequestIndex(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, reduced(), nil)
	h.e.GoToSlide(0)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		h.e.RequestIndex(v)
		if h.e.Active() != 0 {
			t.Fatalf("RequestIndex(%v) moved to %d", v, h.e.Active())
		}
	}

	cases := []struct {
		in   float64
		want int
	}{
		{2.9, 2},
		{-1.5, 4},
		{12, 2},
		{1e300, int(math.Mod(1e300, 5))},
	}
	for _, tc := range cases {
		h.e.RequestIndex(tc.in)
		if got := h.e.Active(); got != tc.want {
			t.Fatalf("RequestIndex(%v) active = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTransition_ResetHappensBeforeFirstRender(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 3, Config{}, nil)
	h.m.Step(2)
	from := string(h.e.ActiveSlide().ID)
	h.log = nil

	h.e.Next()
	to := string(h.e.Slides()[(h.e.Active()+1)%3].ID)
	h.m.Advance(settleTime)

	resetAt := slices.Index(h.log, "reset:"+to)
	renderAt := slices.Index(h.log, "render:"+to)
	if resetAt < 0 || renderAt < 0 || resetAt > renderAt {
		t.Fatalf("log = %v, want reset:%s before render:%s", h.log, to, to)
	}
	if count(h.log, "reset:"+to) != 1 {
		t.Fatalf("reset:%s count = %d, want 1", to, count(h.log, "reset:"+to))
	}
	lastFrom := -1
	for i, l := range h.log {
		if l == "render:"+from {
			lastFrom = i
		}
	}
	if lastFrom > resetAt {
		t.Fatalf("outgoing slide drawn after the midpoint swap: %v", h.log)
	}
	if got := h.changes[len(h.changes)-1]; got != h.e.Active() {
		t.Fatalf("last change = %d, want %d", got, h.e.Active())
	}
}

func TestTransition_NavigationDuringScanIsDropped(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	start := h.e.Active()

	h.e.Next()
	h.e.Next()
	h.e.GoToSlide(start + 3)
	h.m.Advance(settleTime)

	if got, want := h.e.Active(), (start+1)%5; got != want {
		t.Fatalf("active = %d, want %d", got, want)
	}
	if len(h.changes) != 2 {
		t.Fatalf("changes = %v, want initial plus one", h.changes)
	}
}

func TestReducedMotion_BypassesEffector(t *testing.T) {
	t.Parallel()

	spy := &spyEffector{}
	h := newHarness(t, 4, reduced(), spy)
	start := h.e.Active()
	h.log = nil

	h.e.Next()

	if spy.runs != 0 {
		t.Fatalf("effector ran %d times under reduced motion", spy.runs)
	}
	want := (start + 1) % 4
	if h.e.Active() != want || h.e.State() != Exploring {
		t.Fatalf("active = %d state = %s, want %d exploring", h.e.Active(), h.e.State(), want)
	}
	if !slices.Equal(h.log, []string{"reset:" + string(h.e.ActiveSlide().ID)}) {
		t.Fatalf("log = %v, want a single reset", h.log)
	}
	if h.changes[len(h.changes)-1] != want {
		t.Fatalf("listener saw %v", h.changes)
	}

	// Auto-advance is instantaneous too.
	h.m.Advance(model.DefaultIdleTimeout + model.DefaultAutoAdvance + time.Millisecond)
	if spy.runs != 0 || h.e.Active() != (want+1)%4 {
		t.Fatalf("runs = %d active = %d", spy.runs, h.e.Active())
	}
}

func TestAutoAdvance_StepsOnceAfterPeriod(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	start := h.e.Active()

	h.m.Advance(model.DefaultAutoAdvance - time.Millisecond)
	if h.e.Active() != start {
		t.Fatal("advanced before the period elapsed")
	}
	h.m.Advance(time.Millisecond + settleTime)

	if got, want := h.e.Active(), (start+1)%5; got != want {
		t.Fatalf("active = %d, want %d", got, want)
	}
	if h.e.State() != Ambient {
		t.Fatalf("state = %s, want ambient", h.e.State())
	}

	h.m.Advance(model.DefaultAutoAdvance + settleTime)
	if got, want := h.e.Active(), (start+2)%5; got != want {
		t.Fatalf("second advance active = %d, want %d", got, want)
	}
}

func TestAutoAdvance_WrapsAround(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 3, Config{AutoAdvance: time.Second}, nil)
	start := h.e.Active()
	for i := 1; i <= 4; i++ {
		h.m.Advance(time.Second + settleTime)
		if got, want := h.e.Active(), (start+i)%3; got != want {
			t.Fatalf("advance %d active = %d, want %d", i, got, want)
		}
	}
}

func TestHover_SuspendsAutoAdvanceUntilLeave(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	start := h.e.Active()

	h.m.Advance(10 * time.Second)
	h.e.SetHover(ZoneSurface, true)
	h.m.Advance(time.Minute)
	if h.e.Active() != start {
		t.Fatal("advanced while hovered")
	}
	if h.e.State() != Ambient {
		t.Fatalf("hover changed state to %s", h.e.State())
	}

	h.e.SetHover(ZoneSurface, false)
	h.m.Advance(19 * time.Second)
	if h.e.Active() != start {
		t.Fatal("resume did not keep the remaining countdown")
	}
	h.m.Advance(time.Second + settleTime)
	if got, want := h.e.Active(), (start+1)%5; got != want {
		t.Fatalf("active = %d, want %d", got, want)
	}
}

func TestHover_AnyZoneKeepsPause(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4, Config{AutoAdvance: time.Second}, nil)
	start := h.e.Active()

	h.e.SetHover(ZoneSurface, true)
	h.e.SetHover(ZoneTicker, true)
	h.e.SetHover(ZoneSurface, false)
	h.m.Advance(10 * time.Second)
	if h.e.Active() != start {
		t.Fatal("advanced while the ticker was hovered")
	}
	if !h.e.Snapshot().Hovered {
		t.Fatal("snapshot does not report hover")
	}

	h.e.SetHover(ZoneTicker, false)
	h.m.Advance(time.Second + settleTime)
	if h.e.Active() == start {
		t.Fatal("did not resume after leaving every zone")
	}
}

func TestIdle_FallsBackToAmbientAndResumesWithNext(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	start := h.e.Active()

	h.e.Next()
	h.m.Advance(settleTime)
	if h.e.State() != Exploring {
		t.Fatalf("state = %s, want exploring", h.e.State())
	}

	// No auto-advance while exploring.
	h.m.Advance(model.DefaultIdleTimeout - settleTime - time.Millisecond)
	if h.e.State() != Exploring {
		t.Fatalf("state = %s before idle window, want exploring", h.e.State())
	}
	h.m.Advance(2 * time.Millisecond)
	if h.e.State() != Ambient {
		t.Fatalf("state = %s after idle window, want ambient", h.e.State())
	}

	h.m.Advance(model.DefaultAutoAdvance - time.Millisecond)
	if got, want := h.e.Active(), (start+1)%5; got != want {
		t.Fatalf("active = %d before auto-advance, want %d", got, want)
	}
	h.m.Advance(time.Millisecond + settleTime)
	if got, want := h.e.Active(), (start+2)%5; got != want {
		t.Fatalf("active = %d after auto-advance, want %d", got, want)
	}
}

func TestIdle_RearmedByEachNavigation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)

	h.e.Next()
	h.m.Advance(3 * time.Second)
	h.e.Next()
	h.m.Advance(3 * time.Second)
	if h.e.State() != Exploring {
		t.Fatalf("state = %s 3s after the second navigation, want exploring", h.e.State())
	}
	h.m.Advance(2*time.Second + time.Millisecond)
	if h.e.State() != Ambient {
		t.Fatalf("state = %s, want ambient", h.e.State())
	}
}

func TestIdle_DuringUserTransitionSettlesAmbient(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4, Config{Idle: 100 * time.Millisecond}, nil)
	start := h.e.Active()

	h.e.Next()
	h.m.Advance(settleTime)
	if h.e.State() != Ambient {
		t.Fatalf("state = %s, want ambient", h.e.State())
	}

	h.m.Advance(model.DefaultAutoAdvance + settleTime)
	if got, want := h.e.Active(), (start+2)%4; got != want {
		t.Fatalf("active = %d, want %d", got, want)
	}
}

func TestUserNavigation_CancelsPendingAutoAdvance(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{}, nil)
	start := h.e.Active()

	h.m.Advance(model.DefaultAutoAdvance - time.Second)
	h.e.Prev()
	h.m.Advance(2 * time.Second)

	if got, want := h.e.Active(), (start+4)%5; got != want {
		t.Fatalf("active = %d, want %d", got, want)
	}
}

func TestSwipe(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, reduced(), nil)
	h.e.GoToSlide(2)

	cases := []struct {
		dx, dy int
		moved  bool
		want   int
	}{
		{-3, 0, false, 2},
		{-10, 12, false, 2},
		{-10, 2, true, 3},
		{9, -1, true, 2},
		{8, 8, false, 2},
		{-8, 0, false, 2},
		{8, 0, false, 2},
		{-9, 0, true, 3},
		{9, 0, true, 2},
	}
	for _, tc := range cases {
		if got := h.e.Swipe(tc.dx, tc.dy); got != tc.moved {
			t.Fatalf("Swipe(%d,%d) = %v, want %v", tc.dx, tc.dy, got, tc.moved)
		}
		if h.e.Active() != tc.want {
			t.Fatalf("Swipe(%d,%d) active = %d, want %d", tc.dx, tc.dy, h.e.Active(), tc.want)
		}
	}
}

func TestResize_KeepsFramesAndActive(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 3, Config{}, nil)
	h.m.Step(5)
	active, frames := h.e.Active(), h.e.FrameCount()

	h.e.Resize(100, 30)
	h.e.Resize(0, 10)

	if w, ht := h.e.Surface().Width(), h.e.Surface().Height(); w != 100 || ht != 30 {
		t.Fatalf("surface = %dx%d, want 100x30", w, ht)
	}
	if h.e.Active() != active || h.e.FrameCount() != frames {
		t.Fatal("resize reset engine state")
	}
	h.m.Step(1)
	if h.e.FrameCount() != frames+1 {
		t.Fatalf("frames = %d, want %d", h.e.FrameCount(), frames+1)
	}
}

func TestStop_ReleasesEverything(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4, Config{}, nil)
	h.e.Next()
	h.m.Step(3)

	h.e.Stop()
	if h.m.Pending() != 0 {
		t.Fatalf("pending = %d after Stop, want 0", h.m.Pending())
	}
	frames := h.e.FrameCount()
	active := h.e.Active()
	h.m.Advance(time.Hour)
	if h.e.FrameCount() != frames || h.e.Active() != active {
		t.Fatal("engine kept running after Stop")
	}

	h.e.Next()
	h.e.SetHover(ZoneSurface, true)
	h.e.SetHover(ZoneSurface, false)
	if h.m.Pending() != 0 {
		t.Fatal("stopped engine scheduled work")
	}
	if h.e.Snapshot().Running {
		t.Fatal("snapshot still reports running")
	}
}

func TestSnapshot_TracksState(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 3, Config{}, nil)
	h.e.Next()
	snap := h.e.Snapshot()
	if snap.State != "scanning" || len(snap.Slides) != 3 || !snap.Running {
		t.Fatalf("snapshot = %+v", snap)
	}

	h.m.Advance(settleTime)
	snap = h.e.Snapshot()
	if snap.State != "exploring" || snap.Active != h.e.Active() || snap.Slide.ID != h.e.ActiveSlide().ID {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Frames != h.e.FrameCount() || snap.Frames == 0 {
		t.Fatalf("frames = %d, want %d", snap.Frames, h.e.FrameCount())
	}
}

func TestListeners_SeeEveryCompletedChange(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 5, Config{Idle: time.Hour}, nil)
	want := []int{h.e.Active()}

	for _, step := range []func(){h.e.Next, h.e.Next, h.e.Prev, func() { h.e.GoToSlide(h.e.Active() - 7) }} {
		step()
		h.m.Advance(settleTime)
		want = append(want, h.e.Active())
	}
	if !slices.Equal(h.changes, want) {
		t.Fatalf("changes = %v, want %v", h.changes, want)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{Ambient: "ambient", Scanning: "scanning", Exploring: "exploring", State(9): "unknown"} {
		if s.String() != want {
			t.Fatalf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
