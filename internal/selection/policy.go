// Package selection picks the slide the engine opens on.
//
// Slides are ranked by freshness. The three most recently updated get fixed
// weights and the remainder is shared by everything older, so the opening
// view leans toward fresh data while every slide stays reachable.
package selection

import (
	"math/rand/v2"
	"sort"

	"github.com/tinytelemetry/nucleus/internal/model"
)

// Weights are the selection weights by freshness rank.
type Weights struct {
	First     float64 `mapstructure:"first"`
	Second    float64 `mapstructure:"second"`
	Third     float64 `mapstructure:"third"`
	Remainder float64 `mapstructure:"remainder"`
}

// DefaultWeights returns 0.40 / 0.25 / 0.15 with 0.20 shared by the rest.
func DefaultWeights() Weights {
	return Weights{
		First:     model.DefaultSelectionFirst,
		Second:    model.DefaultSelectionSecond,
		Third:     model.DefaultSelectionThird,
		Remainder: model.DefaultSelectionRemainder,
	}
}

// Policy is the recency-weighted start selection.
type Policy struct {
	Weights Weights
}

// New returns a policy with w, replacing negative weights with zero.
func New(w Weights) Policy {
	clamp := func(v float64) float64 { return max(v, 0) }
	return Policy{Weights: Weights{
		First:     clamp(w.First),
		Second:    clamp(w.Second),
		Third:     clamp(w.Third),
		Remainder: clamp(w.Remainder),
	}}
}

// rank returns slide indices ordered most recent first. Ties keep slide
// order; unparsable timestamps rank oldest.
func rank(slides []model.Slide) []int {
	order := make([]int, len(slides))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return slides[order[a]].Updated().After(slides[order[b]].Updated())
	})
	return order
}

// Distribution returns each slide's selection weight, indexed like slides. The
// weights are not normalised; with fewer than four slides they sum below one.
func (p Policy) Distribution(slides []model.Slide) []float64 {
	n := len(slides)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	rest := p.Weights.Remainder / float64(max(1, n-3))
	for pos, idx := range rank(slides) {
		switch pos {
		case 0:
			out[idx] = p.Weights.First
		case 1:
			out[idx] = p.Weights.Second
		case 2:
			out[idx] = p.Weights.Third
		default:
			out[idx] = rest
		}
	}
	return out
}

// Pick maps one uniform draw u in [0, 1) onto the cumulative weight
// distribution and returns the chosen slide index. An empty list yields 0.
func (p Policy) Pick(slides []model.Slide, u float64) int {
	weights := p.Distribution(slides)
	if len(weights) <= 1 {
		return 0
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}

	target := u * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	// Floating point slack: land on the last slide with any weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return 0
}

// Choose draws one index using rng.
func (p Policy) Choose(slides []model.Slide, rng *rand.Rand) int {
	var u float64
	if rng != nil {
		u = rng.Float64()
	} else {
		u = rand.Float64()
	}
	return p.Pick(slides, u)
}
