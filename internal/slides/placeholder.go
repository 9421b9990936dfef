package slides

import (
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/surface"
)

// PlaceholderModule is used when no provider produced a slide.
func PlaceholderModule() Module {
	return Module{
		ID:          model.SlidePlaceholder,
		Name:        "Nucleus",
		Service:     "nucleus",
		Logo:        "NCL",
		Icon:        "◌",
		NewRenderer: func() Renderer { return placeholderRenderer{} },
	}
}

// placeholderRenderer has no timing state, so it does not implement Resetter.
type placeholderRenderer struct{}

func (placeholderRenderer) ID() model.SlideID { return model.SlidePlaceholder }

func (placeholderRenderer) Render(dst *surface.Surface, width, height int, frame model.Frame, slide model.Slide, th model.Theme) {
	dst.Box(0, 0, width, height, th.Border)
	label := slide.Label
	if label == "" {
		label = "NUCLEUS"
	}
	mid := height / 2
	dst.TextCentered(mid-1, label, th.Accent)
	// Blinking cursor keeps the surface visibly alive.
	status := "AWAITING SYNC"
	if frame.N/15%2 == 0 {
		status += " _"
	} else {
		status += "  "
	}
	dst.TextCentered(mid+1, status, colorMuted)
}
