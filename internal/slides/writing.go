package slides

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// WritingData is the render data of the writing slide.
type WritingData struct {
	LatestTitle string    `json:"latest_title"`
	Published   string    `json:"published"`
	Words       int       `json:"words"`
	Posts       int       `json:"posts"`
	DailyWords  []float64 `json:"daily_words"`
}

func writingModule() Module {
	return Module{
		ID:          model.SlideWriting,
		Name:        "Writing",
		Service:     "Blog",
		Logo:        "BLG",
		Icon:        "✎",
		NewRenderer: func() Renderer { return &writingRenderer{base: base{id: model.SlideWriting}} },
		Stats:       writingStats,
		Decode:      decodeJSON[WritingData](model.SlideWriting),
	}
}

type writingRenderer struct {
	base
}

const writingReveal = 1500 * time.Millisecond

func (r *writingRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[WritingData](slide.RenderData)
	if !ok || (data.LatestTitle == "" && len(data.DailyWords) == 0) {
		noData(dst, width, height, th, "NOTHING PUBLISHED")
		return
	}
	p := r.progress(frame, writingReveal)

	if data.LatestTitle != "" {
		dst.Text(2, top, truncate(data.LatestTitle, width-4), colorText)
	}
	if data.Published != "" {
		dst.Text(2, top+1, "published "+data.Published, colorMuted)
	}
	dst.TextRight(width-2, top+1, fmt.Sprintf("%.0f words", countUp(float64(data.Words), p)), th.Accent)

	chartTop := top + 3
	chartW := width - 6
	chartH := height - chartTop - 3
	days := finite(data.DailyWords)
	if len(days) == 0 || chartW < 4 || chartH < 2 {
		return
	}
	if len(days) > chartW {
		days = days[len(days)-chartW:]
	}
	shown := max(1, int(float64(len(days))*p))

	sl := sparkline.New(chartW, chartH)
	sl.PushAll(days[:shown])
	sl.Draw()
	dst.Blit(3, chartTop, sl.View(), th.Accent)
	dst.Text(3, chartTop+chartH, "DAILY WORDS", colorMuted)
}

func writingStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[WritingData](slide.RenderData)
	if !ok {
		return nil
	}
	return []model.Stat{
		{Value: presentInt(data.Words), Unit: "words"},
		{Value: presentInt(data.Posts), Unit: "posts"},
	}
}
