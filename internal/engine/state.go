package engine

import (
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
)

// State is the interaction mode of the engine.
type State int

const (
	// Ambient is hands-off: the engine advances on its own.
	Ambient State = iota
	// Scanning means a transition is in flight.
	Scanning
	// Exploring means the user has taken control; auto-advance is off.
	Exploring
)

func (s State) String() string {
	switch s {
	case Ambient:
		return "ambient"
	case Scanning:
		return "scanning"
	case Exploring:
		return "exploring"
	default:
		return "unknown"
	}
}

// Zone is a hover target that pauses auto-advance.
type Zone int

const (
	ZoneSurface Zone = iota
	ZoneTicker
	zoneCount
)

// SlideSummary is the externally visible part of a slide.
type SlideSummary struct {
	Index     int           `json:"index"`
	ID        model.SlideID `json:"id"`
	Label     string        `json:"label"`
	Detail    string        `json:"detail"`
	Link      string        `json:"link,omitempty"`
	UpdatedAt string        `json:"updated_at,omitempty"`
}

// Snapshot is a copy of the engine state that is safe to read from any
// goroutine.
type Snapshot struct {
	State     string         `json:"state"`
	Active    int            `json:"active"`
	Slide     SlideSummary   `json:"slide"`
	Slides    []SlideSummary `json:"slides"`
	Frames    uint64         `json:"frames"`
	Hovered   bool           `json:"hovered"`
	Running   bool           `json:"running"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func summarize(i int, s model.Slide) SlideSummary {
	return SlideSummary{
		Index:     i,
		ID:        s.ID,
		Label:     s.Label,
		Detail:    s.Detail,
		Link:      s.Link,
		UpdatedAt: s.UpdatedAt,
	}
}

// PlaceholderSlide is the single slide used when no provider produced one.
func PlaceholderSlide() model.Slide {
	return model.Slide{
		ID:     model.SlidePlaceholder,
		Label:  "NUCLEUS",
		Detail: "AWAITING SYNC",
	}
}
