package slides

import (
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
)

// Reveal records when each slide was first drawn since its last reset.
type Reveal struct {
	first map[model.SlideID]time.Time
}

// Reset forgets the first-seen time of id.
func (r *Reveal) Reset(id model.SlideID) {
	delete(r.first, id)
}

// Elapsed returns the time since id was first drawn, capturing at as the
// first-seen time when none is recorded.
func (r *Reveal) Elapsed(id model.SlideID, at time.Time) time.Duration {
	if r.first == nil {
		r.first = make(map[model.SlideID]time.Time)
	}
	first, ok := r.first[id]
	if !ok {
		r.first[id] = at
		return 0
	}
	if at.Before(first) {
		return 0
	}
	return at.Sub(first)
}

// Progress returns an eased 0..1 reveal fraction over d.
func (r *Reveal) Progress(id model.SlideID, at time.Time, d time.Duration) float64 {
	return easeOut(fraction(r.Elapsed(id, at), d))
}

func fraction(elapsed, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	f := float64(elapsed) / float64(d)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

func easeOut(t float64) float64 {
	inv := 1 - t
	return 1 - inv*inv*inv
}

// base carries the identity and timing state shared by every renderer.
type base struct {
	id     model.SlideID
	reveal Reveal
}

func (b *base) ID() model.SlideID { return b.id }

// Reset clears the renderer's timing state for its slide.
func (b *base) Reset() { b.reveal.Reset(b.id) }

func (b *base) elapsed(frame model.Frame) time.Duration {
	return b.reveal.Elapsed(b.id, frame.At)
}

func (b *base) progress(frame model.Frame, d time.Duration) float64 {
	return b.reveal.Progress(b.id, frame.At, d)
}
