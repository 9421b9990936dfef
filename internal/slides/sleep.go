package slides

import (
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// SleepData is the render data of the sleep and readiness slide.
type SleepData struct {
	Score       int       `json:"score"`
	Readiness   int       `json:"readiness"`
	DurationMin float64   `json:"duration_min"`
	RestingHR   float64   `json:"resting_hr"`
	HRV         float64   `json:"hrv"`
	HeartRate   []float64 `json:"heart_rate"` // overnight samples, bpm
}

func (d SleepData) empty() bool {
	return d.Score == 0 && d.Readiness == 0 && len(d.HeartRate) == 0
}

func sleepModule() Module {
	return Module{
		ID:          model.SlideSleep,
		Name:        "Sleep",
		Service:     "Oura",
		Logo:        "OURA",
		Icon:        "☾",
		NewRenderer: func() Renderer { return &sleepRenderer{base: base{id: model.SlideSleep}} },
		Stats:       sleepStats,
		Decode:      decodeJSON[SleepData](model.SlideSleep),
	}
}

type sleepRenderer struct {
	base
}

const sleepReveal = 2 * time.Second

func (r *sleepRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[SleepData](slide.RenderData)
	if !ok || data.empty() {
		noData(dst, width, height, th, "AWAITING SYNC")
		return
	}
	p := r.progress(frame, sleepReveal)

	// Two dials: sleep score and readiness, each out of 100.
	radius := min(height-top-4, 8)
	if radius >= 2 {
		dials := []struct {
			label string
			value int
		}{
			{"SLEEP", data.Score},
			{"READY", data.Readiness},
		}
		for i, d := range dials {
			cx := (4 + radius + i*(radius*2+4)) * 2
			cy := (top + radius/2 + 1) * 4
			rpx := radius * 2
			arc(dst, cx, cy, rpx, 1, dim(th.Border, 0.6))
			arc(dst, cx, cy, rpx, float64(d.value)/100*p, th.Accent)
			label := fmt.Sprintf("%3.0f", countUp(float64(d.value), p))
			dst.Text(cx/2-1, cy/4, label, colorText)
			dst.Text(cx/2-2, cy/4+1, d.label, colorMuted)
		}
	}

	// Heart-rate trend to the right of the dials.
	graphX := min(width/2, 4+(radius*2+4)*2)
	graphW := width - graphX - 4
	graphH := height - top - 4
	if hr := finite(data.HeartRate); len(hr) >= 2 && graphW > 10 && graphH >= 3 {
		samples := hr[:max(2, int(float64(len(hr))*p))]
		plot := asciigraph.Plot(samples,
			asciigraph.Height(graphH-1),
			asciigraph.Width(graphW-8),
			asciigraph.Caption("HEART RATE"),
		)
		dst.Blit(graphX, top, plot, th.Accent)
	}

	if data.DurationMin > 0 {
		dst.TextRight(width-2, top-1, formatMinutes(data.DurationMin)+" asleep", colorMuted)
	}
}

func sleepStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[SleepData](slide.RenderData)
	if !ok {
		return nil
	}
	return []model.Stat{
		{Value: presentInt(data.Score), Unit: "sleep"},
		{Value: presentInt(data.Readiness), Unit: "readiness"},
		{Value: formatMinutes(data.DurationMin), Unit: "asleep"},
		{Value: present(data.RestingHR, "%.0f"), Unit: "bpm rest"},
		{Value: present(data.HRV, "%.0f"), Unit: "ms hrv"},
	}
}
