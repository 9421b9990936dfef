package selection

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
)

func slidesAt(ages ...time.Duration) []model.Slide {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	out := make([]model.Slide, len(ages))
	for i, age := range ages {
		out[i] = model.Slide{
			ID:        model.SlideIDs()[i%len(model.SlideIDs())],
			UpdatedAt: base.Add(-age).Format(time.RFC3339),
		}
	}
	return out
}

func TestWeights_RankByRecency(t *testing.T) {
	t.Parallel()

	// Index 3 is freshest, then 0, then 4; 1 and 2 share the remainder.
	slides := slidesAt(2*time.Hour, 10*time.Hour, 9*time.Hour, time.Hour, 3*time.Hour)
	got := New(DefaultWeights()).Distribution(slides)

	want := []float64{0.25, 0.10, 0.10, 0.40, 0.15}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("weights = %v, want %v", got, want)
		}
	}
}

func TestWeights_FewerThanFour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ages  []time.Duration
		total float64
	}{
		{name: "one", ages: []time.Duration{0}, total: 0.40},
		{name: "two", ages: []time.Duration{0, time.Hour}, total: 0.65},
		{name: "three", ages: []time.Duration{0, time.Hour, 2 * time.Hour}, total: 0.80},
		{name: "four", ages: []time.Duration{0, time.Hour, 2 * time.Hour, 3 * time.Hour}, total: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sum := 0.0
			for _, w := range New(DefaultWeights()).Distribution(slidesAt(tt.ages...)) {
				sum += w
			}
			if math.Abs(sum-tt.total) > 1e-9 {
				t.Fatalf("sum = %v, want %v", sum, tt.total)
			}
		})
	}
}

func TestPick_BoundaryDraws(t *testing.T) {
	t.Parallel()

	slides := slidesAt(0, time.Hour, 2*time.Hour, 3*time.Hour, 4*time.Hour)
	p := New(DefaultWeights())

	if got := p.Pick(slides, 0); got != 0 {
		t.Fatalf("Pick(0) = %d, want 0", got)
	}
	if got := p.Pick(slides, 0.39); got != 0 {
		t.Fatalf("Pick(0.39) = %d, want 0", got)
	}
	if got := p.Pick(slides, 0.41); got != 1 {
		t.Fatalf("Pick(0.41) = %d, want 1", got)
	}
	if got := p.Pick(slides, 0.999999); got != 4 {
		t.Fatalf("Pick(0.999999) = %d, want 4", got)
	}
}

func TestPick_SingleSlide(t *testing.T) {
	t.Parallel()

	if got := New(DefaultWeights()).Pick(slidesAt(0), 0.9); got != 0 {
		t.Fatalf("Pick = %d, want 0", got)
	}
	if got := New(DefaultWeights()).Pick(nil, 0.5); got != 0 {
		t.Fatalf("Pick(nil) = %d, want 0", got)
	}
}

func TestChoose_EmpiricalFrequency(t *testing.T) {
	t.Parallel()

	slides := slidesAt(4*time.Hour, 3*time.Hour, time.Hour, 2*time.Hour, 5*time.Hour)
	p := New(DefaultWeights())
	rng := rand.New(rand.NewPCG(42, 7))

	const draws = 200000
	counts := make([]int, len(slides))
	for i := 0; i < draws; i++ {
		counts[p.Choose(slides, rng)]++
	}

	freshest := float64(counts[2]) / draws
	if math.Abs(freshest-0.40) > 0.01 {
		t.Fatalf("freshest frequency = %.4f, want 0.40 ± 0.01", freshest)
	}
	for i, c := range counts {
		if c == 0 {
			t.Fatalf("index %d never drawn: %v", i, counts)
		}
	}
}

func TestWeights_UnparsableRanksOldest(t *testing.T) {
	t.Parallel()

	slides := slidesAt(time.Hour, 2*time.Hour)
	slides = append(slides, model.Slide{ID: model.SlideReading, UpdatedAt: "yesterday-ish"})
	got := New(DefaultWeights()).Distribution(slides)

	if got[2] != DefaultWeights().Third {
		t.Fatalf("unparsable weight = %v, want %v", got[2], DefaultWeights().Third)
	}
}
