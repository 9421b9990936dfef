package model

import (
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// SlideID identifies the domain a slide belongs to.
type SlideID string

// The fixed slide domains, in registration order.
const (
	SlideCycling   SlideID = "cycling"
	SlideSleep     SlideID = "sleep"
	SlideWatching  SlideID = "watching"
	SlideListening SlideID = "listening"
	SlideTravel    SlideID = "travel"
	SlideWriting   SlideID = "writing"
	SlideReading   SlideID = "reading"

	// SlidePlaceholder is synthesized when no provider produced a slide.
	SlidePlaceholder SlideID = "placeholder"
)

// SlideIDs lists every domain slide in registration order.
func SlideIDs() []SlideID {
	return []SlideID{
		SlideCycling,
		SlideSleep,
		SlideWatching,
		SlideListening,
		SlideTravel,
		SlideWriting,
		SlideReading,
	}
}

// Color is the colour type shared by themes, surfaces and slides.
type Color = colorful.Color

// SlideContext carries cross-cutting values a provider resolved alongside
// the render data (location, streaks, ...). Renderers read it; nothing writes it
// after the slide is built.
type SlideContext map[string]string

// Get returns the value for key, or "" when absent.
func (c SlideContext) Get(key string) string {
	if c == nil {
		return ""
	}
	return c[key]
}

// Slide is one domain's normalized, renderable record. A Slide is immutable
// once built; it is passed by value everywhere.
type Slide struct {
	ID             SlideID
	Label          string
	Detail         string
	Link           string
	UpdatedAt      string // ISO-8601; only the selection policy reads it
	AccentOverride *Color
	RenderData     any
	Context        SlideContext
}

// Updated parses UpdatedAt. Unparsable or empty values yield the zero time.
func (s Slide) Updated() time.Time {
	v := strings.TrimSpace(s.UpdatedAt)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Theme holds the two colour tokens read from the environment each frame.
type Theme struct {
	Accent Color
	Border Color
}

// WithAccent returns a copy of th with the accent replaced when c is non-nil.
func (th Theme) WithAccent(c *Color) Theme {
	if c != nil {
		th.Accent = *c
	}
	return th
}

// Frame describes the frame being drawn. N is the engine's monotonic frame
// counter; At is the scheduler time the frame callback ran.
type Frame struct {
	N  uint64
	At time.Time
}

// Stat is one ticker statistic chip.
type Stat struct {
	Value string
	Unit  string
}

// TickerMode is the ticker's projection of the active slide.
type TickerMode struct {
	Service string
	Logo    string
	Icon    string
	Name    string
	Link    string
	Stats   []Stat
}
