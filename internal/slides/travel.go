package slides

import (
	"fmt"
	"math"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// Place is a named coordinate.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// TravelData is the render data of the travel slide.
type TravelData struct {
	From          Place     `json:"from"`
	To            Place     `json:"to"`
	Departure     time.Time `json:"departure"`
	Countries     int       `json:"countries"`
	TripsThisYear int       `json:"trips_this_year"`
	DistanceKm    float64   `json:"distance_km"`
}

func (d TravelData) empty() bool {
	return d.From.Name == "" && d.To.Name == ""
}

// valid reports whether the place lies on the globe. NaN fails both checks.
func (p Place) valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (d TravelData) valid() bool {
	return d.From.valid() && d.To.valid()
}

func travelModule() Module {
	return Module{
		ID:          model.SlideTravel,
		Name:        "Travel",
		Service:     "TripIt",
		Logo:        "TRP",
		Icon:        "✈",
		NewRenderer: func() Renderer { return &travelRenderer{base: base{id: model.SlideTravel}} },
		Stats:       travelStats,
		Decode:      decodeJSON[TravelData](model.SlideTravel),
	}
}

type travelRenderer struct {
	base
}

const travelReveal = 2 * time.Second

func (r *travelRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[TravelData](slide.RenderData)
	if !ok || data.empty() {
		noData(dst, width, height, th, "NO TRIPS PLANNED")
		return
	}
	if !data.valid() {
		noData(dst, width, height, th, "BAD COORDINATES")
		return
	}
	p := r.progress(frame, travelReveal)

	dst.Text(2, top, truncate(data.From.Name+" → "+data.To.Name, width-4), colorText)
	if !data.Departure.IsZero() {
		dst.Text(2, top+1, Countdown(data.Departure, frame.At), th.Accent)
	}

	// Equirectangular projection of the route into the lower area.
	mapX, mapY := 4, top+3
	mapW, mapH := width-8, height-mapY-3
	if mapW < 8 || mapH < 3 {
		return
	}
	project := func(pl Place) (int, int) {
		fx := (pl.Lon + 180) / 360
		fy := (90 - pl.Lat) / 180
		return mapX*2 + int(fx*float64(mapW*2-1)), mapY*4 + int(fy*float64(mapH*4-1))
	}
	x0, y0 := project(data.From)
	x1, y1 := project(data.To)

	// Dotted equator as a faint guide.
	guide := dim(th.Border, 0.5)
	for x := mapX * 2; x < (mapX+mapW)*2; x += 4 {
		dst.Pixel(x, mapY*4+mapH*2, guide)
	}

	// The route draws itself over the reveal with a plane at its head.
	hx := x0 + int(float64(x1-x0)*p)
	hy := y0 + int(float64(y1-y0)*p)
	dst.Line(x0, y0, hx, hy, th.Accent)
	dst.SetCell(x0/2, y0/4, '●', colorText)
	if p >= 1 {
		dst.SetCell(x1/2, y1/4, '●', th.Accent)
	} else {
		dst.SetCell(hx/2, hy/4, '✈', th.Accent)
	}

	km := data.DistanceKm
	if km == 0 {
		km = Haversine(data.From, data.To)
	}
	if km > 0 {
		dst.TextRight(width-2, top+1, fmt.Sprintf("%.0f km", countUp(km, p)), colorMuted)
	}
}

// Countdown describes the time from now until departure.
func Countdown(departure, now time.Time) string {
	d := departure.Sub(now)
	if d <= 0 {
		return "DEPARTED"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("T-%dd %02dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("T-%dh %02dm", hours, mins)
	default:
		return fmt.Sprintf("T-%dm %02ds", mins, int(d.Seconds())%60)
	}
}

// Haversine returns the great-circle distance between two places in km.
func Haversine(a, b Place) float64 {
	const earthRadiusKm = 6371.0
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func travelStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[TravelData](slide.RenderData)
	if !ok {
		return nil
	}
	dest := data.To.Name
	if dest == "" {
		dest = "N/A"
	}
	km := data.DistanceKm
	if km == 0 && !data.empty() && data.valid() {
		km = Haversine(data.From, data.To)
	}
	return []model.Stat{
		{Value: dest, Unit: "next"},
		{Value: present(km, "%.0f"), Unit: "km"},
		{Value: presentInt(data.Countries), Unit: "countries"},
		{Value: presentInt(data.TripsThisYear), Unit: "trips this year"},
	}
}
