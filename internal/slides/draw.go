package slides

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

const typeSpeed = 40 // characters per second

var (
	colorText  = colorful.Color{R: 0.9, G: 0.9, B: 0.92}
	colorMuted = colorful.Color{R: 0.45, G: 0.47, B: 0.52}
)

// dataAs extracts render data of type T, accepting T or a non-nil *T.
func dataAs[T any](v any) (T, bool) {
	switch d := v.(type) {
	case T:
		return d, true
	case *T:
		if d != nil {
			return *d, true
		}
	}
	var zero T
	return zero, false
}

// chrome draws the frame, the typed-out label and detail, and the context
// footer. It returns the first free row below the header.
func chrome(dst *surface.Surface, width, height int, slide model.Slide, th model.Theme, typed int) int {
	dst.Box(0, 0, width, height, th.Border)
	dst.Text(2, 1, truncate(prefix(strings.ToUpper(slide.Label), typed), width-4), th.Accent)
	dst.Text(2, 2, truncate(prefix(slide.Detail, max(0, typed-utf8.RuneCountInString(slide.Label))), width-4), colorMuted)
	footer(dst, width, height, slide.Context, th)
	return 4
}

// footer prints the slide context as "key value" pairs on the last inner row.
func footer(dst *surface.Surface, width, height int, ctx model.SlideContext, th model.Theme) {
	if len(ctx) == 0 || height < 6 {
		return
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(ctx[k]); v != "" {
			parts = append(parts, strings.ToUpper(k)+" "+v)
		}
	}
	dst.Text(2, height-2, truncate(strings.Join(parts, "  ·  "), width-4), dim(th.Border, 0.9))
}

// noData draws the degraded state centred in the content area.
func noData(dst *surface.Surface, width, height int, th model.Theme, reason string) {
	mid := height / 2
	dst.TextCentered(mid-1, "NO DATA", th.Accent)
	if reason == "" {
		reason = "AWAITING SYNC"
	}
	dst.TextCentered(mid+1, truncate(reason, width-4), colorMuted)
}

// typedChars returns how many characters a typewriter has produced after
// elapsedSeconds.
func typedChars(elapsedSeconds float64) int {
	return int(elapsedSeconds * typeSpeed)
}

func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string([]rune(s)[:n-1]) + "…"
}

// dim blends c toward black, keeping f of its intensity.
func dim(c model.Color, f float64) model.Color {
	return colorful.Color{}.BlendRgb(c, f).Clamped()
}

// arc plots the part of a circle from angle 0 (12 o'clock) clockwise through
// frac of a full turn, in sub-pixel space.
func arc(dst *surface.Surface, cx, cy, r int, frac float64, c model.Color) {
	if r <= 0 || frac <= 0 {
		return
	}
	steps := int(2 * math.Pi * float64(r) * 2)
	end := int(float64(steps) * math.Min(frac, 1))
	for i := 0; i <= end; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(math.Sin(theta)*float64(r)))
		y := cy - int(math.Round(math.Cos(theta)*float64(r)))
		dst.Pixel(x, y, c)
	}
}

// polyline scales values into the w x h sub-pixel box at (x, y) and draws
// the first frac of it.
func polyline(dst *surface.Surface, x, y, w, h int, values []float64, frac float64, c model.Color) {
	if len(values) < 2 || w <= 1 || h <= 1 {
		return
	}
	lo, hi := minMax(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	last := int(float64(len(values)-1) * math.Min(math.Max(frac, 0), 1))
	px := func(i int) (int, int) {
		fx := float64(i) / float64(len(values)-1)
		fy := (values[i] - lo) / span
		return x + int(fx*float64(w-1)), y + h - 1 - int(fy*float64(h-1))
	}
	for i := 0; i < last; i++ {
		x0, y0 := px(i)
		x1, y1 := px(i + 1)
		dst.Line(x0, y0, x1, y1, c)
	}
}

// sampleLimit bounds chart samples so spans between them stay finite.
const sampleLimit = 1e15

// finite drops NaN and infinite samples and clamps the rest to
// ±sampleLimit. The input is left untouched.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, math.Max(-sampleLimit, math.Min(sampleLimit, v)))
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// countUp animates a number from zero to v over the reveal.
func countUp(v, progress float64) float64 {
	return v * progress
}

// present formats a number, or "N/A" when it is zero or not finite.
func present(v float64, format string) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

func presentInt(v int) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", v)
}

// formatMinutes renders a minute count as "7h 32m".
func formatMinutes(m float64) string {
	if m <= 0 {
		return "N/A"
	}
	total := int(math.Round(m))
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
