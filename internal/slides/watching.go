package slides

import (
	"fmt"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
	"github.com/tinytelemetry/nucleus/internal/theme"
)

// WatchingData is the render data of the watching slide.
type WatchingData struct {
	Title           string   `json:"title"`
	Show            string   `json:"show"`
	Season          int      `json:"season"`
	Episode         int      `json:"episode"`
	Progress        float64  `json:"progress"` // 0..1 through the episode
	Service         string   `json:"service"`
	WatchedThisWeek int      `json:"watched_this_week"`
	Palette         []string `json:"palette"` // poster colours, hex
}

func watchingModule() Module {
	return Module{
		ID:          model.SlideWatching,
		Name:        "Watching",
		Service:     "Trakt",
		Logo:        "TRK",
		Icon:        "▶",
		NewRenderer: func() Renderer { return &watchingRenderer{base: base{id: model.SlideWatching}} },
		Stats:       watchingStats,
		Decode:      decodeJSON[WatchingData](model.SlideWatching),
		Accent: func(data any) *model.Color {
			d, ok := dataAs[WatchingData](data)
			if !ok {
				return nil
			}
			return DominantColor(d.Palette)
		},
	}
}

type watchingRenderer struct {
	base
}

const watchingReveal = time.Second

func (r *watchingRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[WatchingData](slide.RenderData)
	if !ok || (data.Title == "" && data.Show == "") {
		noData(dst, width, height, th, "NOTHING ON SCREEN")
		return
	}
	p := r.progress(frame, watchingReveal)

	// Poster swatch built from the palette, one column band per colour.
	posterW := min(width/4, 16)
	posterH := height - top - 3
	if posterW >= 4 && posterH >= 3 && len(data.Palette) > 0 {
		for x := 0; x < posterW; x++ {
			hex := data.Palette[x*len(data.Palette)/posterW]
			c, ok := theme.ParseColor(hex)
			if !ok {
				c = th.Border
			}
			for y := 0; y < posterH; y++ {
				if float64(y) < float64(posterH)*p {
					dst.SetCell(2+x, top+y, '█', c)
				}
			}
		}
	}

	x := 2
	if posterW >= 4 && len(data.Palette) > 0 {
		x += posterW + 2
	}
	textW := width - x - 2
	title := data.Title
	if data.Show != "" {
		dst.Text(x, top, truncate(data.Show, textW), colorText)
		if data.Season > 0 || data.Episode > 0 {
			dst.Text(x, top+1, fmt.Sprintf("S%02dE%02d", data.Season, data.Episode), th.Accent)
		}
		dst.Text(x, top+2, truncate(title, textW), colorMuted)
	} else {
		dst.Text(x, top, truncate(title, textW), colorText)
	}

	if data.Progress > 0 && textW > 6 {
		dst.HBar(x, top+4, textW, data.Progress*p, th.Accent)
		dst.Text(x, top+5, fmt.Sprintf("%.0f%% watched", data.Progress*100), colorMuted)
	}
	if data.Service != "" {
		dst.TextRight(width-2, top, "on "+data.Service, colorMuted)
	}
}

func watchingStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[WatchingData](slide.RenderData)
	if !ok {
		return nil
	}
	episode := "N/A"
	if data.Season > 0 || data.Episode > 0 {
		episode = fmt.Sprintf("S%02dE%02d", data.Season, data.Episode)
	}
	return []model.Stat{
		{Value: episode, Unit: "episode"},
		{Value: present(data.Progress*100, "%.0f%%"), Unit: "watched"},
		{Value: presentInt(data.WatchedThisWeek), Unit: "this week"},
	}
}
