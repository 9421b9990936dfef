package slides

import (
	"fmt"
	"math"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// Track identifies a song.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// ArtistPlays is one entry of the top-artists chart.
type ArtistPlays struct {
	Name  string `json:"name"`
	Plays int    `json:"plays"`
}

// ListeningData is the render data of the listening slide.
type ListeningData struct {
	NowPlaying Track         `json:"now_playing"`
	Playing    bool          `json:"playing"`
	TopArtists []ArtistPlays `json:"top_artists"`
	Scrobbles  int           `json:"scrobbles"`
	Artwork    []string      `json:"artwork"` // album art palette, hex
}

func listeningModule() Module {
	return Module{
		ID:          model.SlideListening,
		Name:        "Listening",
		Service:     "Last.fm",
		Logo:        "LFM",
		Icon:        "♪",
		NewRenderer: func() Renderer { return &listeningRenderer{base: base{id: model.SlideListening}} },
		Stats:       listeningStats,
		Decode:      decodeJSON[ListeningData](model.SlideListening),
		Accent: func(data any) *model.Color {
			d, ok := dataAs[ListeningData](data)
			if !ok {
				return nil
			}
			return DominantColor(d.Artwork)
		},
	}
}

type listeningRenderer struct {
	base
}

const listeningReveal = 1200 * time.Millisecond

func (r *listeningRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[ListeningData](slide.RenderData)
	if !ok || (data.NowPlaying.Title == "" && len(data.TopArtists) == 0) {
		noData(dst, width, height, th, "SILENCE")
		return
	}
	p := r.progress(frame, listeningReveal)

	half := width / 2
	if t := data.NowPlaying; t.Title != "" {
		state := "LAST PLAYED"
		if data.Playing {
			state = "NOW PLAYING"
		}
		dst.Text(2, top, state, colorMuted)
		dst.Text(2, top+1, truncate(t.Title, half-4), colorText)
		dst.Text(2, top+2, truncate(t.Artist, half-4), th.Accent)
		if t.Album != "" {
			dst.Text(2, top+3, truncate(t.Album, half-4), colorMuted)
		}
		if data.Playing {
			equalizer(dst, 2, top+7, elapsed, th.Accent)
		}
	}

	// Top artists as horizontal bars on the right half.
	if len(data.TopArtists) > 0 {
		most := 0
		for _, a := range data.TopArtists {
			most = max(most, a.Plays)
		}
		if most == 0 {
			most = 1
		}
		nameW := min(14, half/2)
		barW := width - half - nameW - 8
		rows := min(len(data.TopArtists), height-top-3)
		for i := 0; i < rows; i++ {
			a := data.TopArtists[i]
			y := top + i
			dst.Text(half, y, truncate(a.Name, nameW), colorText)
			if barW > 0 {
				dst.HBar(half+nameW+1, y, barW, float64(a.Plays)/float64(most)*p, dim(th.Accent, 1-0.1*float64(i)))
			}
			dst.TextRight(width-2, y, fmt.Sprintf("%d", a.Plays), colorMuted)
		}
	}
}

// equalizer animates a few bars from the time since the slide appeared.
func equalizer(dst *surface.Surface, x, base int, elapsed time.Duration, c model.Color) {
	t := elapsed.Seconds()
	for i := 0; i < 6; i++ {
		h := 1.5 + 1.5*math.Sin(t*4+float64(i)*1.3)
		dst.VBar(x+i*2, base, h, c)
	}
}

func listeningStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[ListeningData](slide.RenderData)
	if !ok {
		return nil
	}
	top := "N/A"
	if len(data.TopArtists) > 0 && data.TopArtists[0].Name != "" {
		top = data.TopArtists[0].Name
	}
	artist := data.NowPlaying.Artist
	if artist == "" {
		artist = "N/A"
	}
	return []model.Stat{
		{Value: artist, Unit: "artist"},
		{Value: presentInt(data.Scrobbles), Unit: "scrobbles"},
		{Value: top, Unit: "top artist"},
	}
}
