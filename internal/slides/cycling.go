package slides

import (
	"fmt"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// Ride is one recorded ride.
type Ride struct {
	Name       string    `json:"name"`
	DistanceKm float64   `json:"distance_km"`
	ElevationM float64   `json:"elevation_m"`
	MovingMin  float64   `json:"moving_min"`
	Profile    []float64 `json:"profile"` // elevation samples along the ride
}

// CyclingData is the render data of the cycling slide.
type CyclingData struct {
	Latest   Ride      `json:"latest"`
	WeeklyKm []float64 `json:"weekly_km"`
	YearKm   float64   `json:"year_km"`
}

func (d CyclingData) empty() bool {
	return d.Latest.DistanceKm == 0 && len(d.Latest.Profile) == 0 && len(d.WeeklyKm) == 0
}

func cyclingModule() Module {
	return Module{
		ID:          model.SlideCycling,
		Name:        "Cycling",
		Service:     "Strava",
		Logo:        "STR",
		Icon:        "⊙",
		NewRenderer: func() Renderer { return &cyclingRenderer{base: base{id: model.SlideCycling}} },
		Stats:       cyclingStats,
		Decode:      decodeJSON[CyclingData](model.SlideCycling),
	}
}

type cyclingRenderer struct {
	base
}

const cyclingReveal = 1500 * time.Millisecond

func (r *cyclingRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[CyclingData](slide.RenderData)
	if !ok || data.empty() {
		noData(dst, width, height, th, "NO RIDES SYNCED")
		return
	}
	p := r.progress(frame, cyclingReveal)

	// Headline numbers count up during the reveal.
	ride := data.Latest
	dst.Text(2, top, truncate(ride.Name, width-4), colorText)
	dst.Text(2, top+1, fmt.Sprintf("%6.1f km", countUp(ride.DistanceKm, p)), th.Accent)
	dst.Text(14, top+1, fmt.Sprintf("%5.0f m ↑", countUp(ride.ElevationM, p)), colorMuted)
	if ride.MovingMin > 0 {
		dst.Text(26, top+1, formatMinutes(ride.MovingMin), colorMuted)
	}

	// Elevation profile on the left two thirds, weekly bars on the right.
	chartTop := top + 3
	chartH := height - chartTop - 3
	profileW := (width - 6) * 2 / 3
	if chartH >= 2 && profileW > 4 {
		polyline(dst, 4, chartTop*4, profileW*2, chartH*4, finite(ride.Profile), p, th.Accent)
	}

	barsX := 4 + profileW + 2
	barsW := width - barsX - 2
	if weeks := finite(data.WeeklyKm); chartH >= 2 && barsW > 0 && len(weeks) > 0 {
		if len(weeks) > barsW {
			weeks = weeks[len(weeks)-barsW:]
		}
		_, hi := minMax(weeks)
		if hi <= 0 {
			hi = 1
		}
		floor := chartTop + chartH - 1
		for i, km := range weeks {
			// Bars grow in one after another, left to right.
			local := p*float64(len(weeks)) - float64(i)
			if local <= 0 {
				break
			}
			if local > 1 {
				local = 1
			}
			dst.VBar(barsX+i, floor, km/hi*float64(chartH)*local, dim(th.Accent, 0.5+0.5*float64(i+1)/float64(len(weeks))))
		}
		dst.Text(barsX, floor+1, "WEEKS", colorMuted)
	}
}

func cyclingStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[CyclingData](slide.RenderData)
	if !ok {
		return nil
	}
	return []model.Stat{
		{Value: present(data.Latest.DistanceKm, "%.1f"), Unit: "km"},
		{Value: present(data.Latest.ElevationM, "%.0f"), Unit: "m climb"},
		{Value: formatMinutes(data.Latest.MovingMin), Unit: "moving"},
		{Value: present(data.YearKm, "%.0f"), Unit: "km this year"},
	}
}
