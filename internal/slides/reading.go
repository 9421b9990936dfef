package slides

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// ReadingData is the render data of the reading slide.
type ReadingData struct {
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Page          int       `json:"page"`
	Pages         int       `json:"pages"`
	BooksThisYear int       `json:"books_this_year"`
	PagesPerDay   []float64 `json:"pages_per_day"`
}

// Fraction is how far through the current book the reader is.
func (d ReadingData) Fraction() float64 {
	if d.Pages <= 0 {
		return 0
	}
	return min(1, float64(d.Page)/float64(d.Pages))
}

func readingModule() Module {
	return Module{
		ID:          model.SlideReading,
		Name:        "Reading",
		Service:     "Goodreads",
		Logo:        "GR",
		Icon:        "❒",
		NewRenderer: func() Renderer { return &readingRenderer{base: base{id: model.SlideReading}} },
		Stats:       readingStats,
		Decode:      decodeJSON[ReadingData](model.SlideReading),
	}
}

type readingRenderer struct {
	base
}

const readingReveal = 1500 * time.Millisecond

func (r *readingRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	elapsed := r.elapsed(frame)
	top := chrome(dst, width, height, slide, th, typedChars(elapsed.Seconds()))

	data, ok := dataAs[ReadingData](slide.RenderData)
	if !ok || data.Title == "" {
		noData(dst, width, height, th, "NO BOOK OPEN")
		return
	}
	p := r.progress(frame, readingReveal)

	dst.Text(2, top, truncate(data.Title, width-4), colorText)
	if data.Author != "" {
		dst.Text(2, top+1, truncate("by "+data.Author, width-4), colorMuted)
	}
	if data.Pages > 0 {
		barW := width - 16
		dst.HBar(2, top+3, barW, data.Fraction()*p, th.Accent)
		dst.Text(barW+3, top+3, fmt.Sprintf("%d/%d", data.Page, data.Pages), colorMuted)
	}

	chartTop := top + 5
	chartW := width - 6
	chartH := height - chartTop - 3
	days := finite(data.PagesPerDay)
	if len(days) == 0 || chartW < 4 || chartH < 2 {
		return
	}
	if len(days) > chartW/2 {
		days = days[len(days)-chartW/2:]
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent.Hex()))
	bc := barchart.New(chartW, chartH,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	shown := max(1, int(float64(len(days))*p))
	for _, v := range days[:shown] {
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "pages", Value: max(v, 0), Style: style}},
		})
	}
	bc.Draw()
	dst.Blit(3, chartTop, bc.View(), th.Accent)
}

func readingStats(slide model.Slide) []model.Stat {
	data, ok := dataAs[ReadingData](slide.RenderData)
	if !ok {
		return nil
	}
	progress := "N/A"
	if data.Pages > 0 {
		progress = fmt.Sprintf("%.0f%%", data.Fraction()*100)
	}
	return []model.Stat{
		{Value: progress, Unit: "through"},
		{Value: presentInt(data.BooksThisYear), Unit: "books this year"},
	}
}
