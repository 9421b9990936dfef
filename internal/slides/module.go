package slides

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
	"github.com/tinytelemetry/nucleus/internal/theme"
)

// Renderer draws one slide domain.
type Renderer interface {
	ID() model.SlideID
	Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme)
}

// Resetter is implemented by renderers that keep timing state across frames.
type Resetter interface {
	Reset()
}

// Module is the build-time registration of one domain.
type Module struct {
	ID      model.SlideID
	Name    string
	Service string
	Logo    string
	Icon    string

	NewRenderer func() Renderer
	// Stats formats the ticker statistics for a slide of this domain.
	Stats func(slide model.Slide) []model.Stat
	// Decode turns a provider payload into the domain's render data.
	Decode func(raw json.RawMessage) (any, error)
	// Accent optionally derives a colour from the content itself.
	Accent func(data any) *model.Color
}

// Mode projects slide into the ticker's view of it.
func (m Module) Mode(slide model.Slide) model.TickerMode {
	mode := model.TickerMode{
		Service: m.Service,
		Logo:    m.Logo,
		Icon:    m.Icon,
		Name:    m.Name,
		Link:    slide.Link,
	}
	if slide.Label != "" {
		mode.Name = slide.Label
	}
	if m.Stats != nil {
		mode.Stats = m.Stats(slide)
	}
	return mode
}

// Modules returns the fixed, ordered domain registry.
func Modules() []Module {
	return []Module{
		cyclingModule(),
		sleepModule(),
		watchingModule(),
		listeningModule(),
		travelModule(),
		writingModule(),
		readingModule(),
	}
}

// Lookup finds the module for id, including the placeholder.
func Lookup(id model.SlideID) (Module, bool) {
	if id == model.SlidePlaceholder {
		return PlaceholderModule(), true
	}
	for _, m := range Modules() {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Renderers instantiates one renderer per registered module plus the
// placeholder renderer, keyed by slide ID.
func Renderers() map[model.SlideID]Renderer {
	out := make(map[model.SlideID]Renderer, 8)
	for _, m := range Modules() {
		out[m.ID] = m.NewRenderer()
	}
	p := PlaceholderModule()
	out[p.ID] = p.NewRenderer()
	return out
}

// ModeFor projects any slide into a ticker mode using its module.
func ModeFor(slide model.Slide) model.TickerMode {
	m, ok := Lookup(slide.ID)
	if !ok {
		return model.TickerMode{Name: slide.Label, Link: slide.Link}
	}
	return m.Mode(slide)
}

// decodeJSON is the Decode implementation shared by every module.
func decodeJSON[T any](id model.SlideID) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		var v T
		if len(raw) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: decode render data: %w", id, err)
		}
		return v, nil
	}
}

// DominantColor picks the most frequent colour of a palette, preferring the
// more saturated colour on ties. Unparsable entries are skipped; an empty
// result is nil.
func DominantColor(palette []string) *model.Color {
	type bucket struct {
		c     colorful.Color
		count int
		sat   float64
	}
	buckets := map[string]*bucket{}
	for _, hex := range palette {
		c, ok := theme.ParseColor(hex)
		if !ok {
			continue
		}
		key := c.Hex()
		b, ok := buckets[key]
		if !ok {
			_, s, _ := c.Hsv()
			b = &bucket{c: c, sat: s}
			buckets[key] = b
		}
		b.count++
	}
	if len(buckets) == 0 {
		return nil
	}

	list := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		if list[i].sat != list[j].sat {
			return list[i].sat > list[j].sat
		}
		return list[i].c.Hex() < list[j].c.Hex()
	})
	c := list[0].c
	return &c
}
