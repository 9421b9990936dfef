// Package provider resolves slides from their data sources.
//
// Every provider runs concurrently and independently. The join waits for
// all of them and never fails: an error, a timeout, a panic or an empty
// result only drops that provider's slide.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrNoSlide is recorded when a provider returns neither slide nor error.
var ErrNoSlide = errors.New("provider returned no slide")

// Result is the settled outcome of one provider.
type Result struct {
	ID      model.SlideID
	Slide   *model.Slide
	Err     error
	Elapsed time.Duration
}

// OK reports whether the provider produced a slide.
func (r Result) OK() bool { return r.Err == nil && r.Slide != nil }

// Gather runs every provider concurrently and waits for all of them. Each
// fetch is bounded by timeout (no bound when timeout <= 0). Results keep the
// order of providers.
func Gather(ctx context.Context, providers []model.Provider, timeout time.Duration) []Result {
	results := make([]Result, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			results[i] = fetch(ctx, p, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func fetch(ctx context.Context, p model.Provider, timeout time.Duration) Result {
	start := time.Now()
	res := Result{ID: p.ID()}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		slide *model.Slide
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		var o outcome
		defer func() {
			if r := recover(); r != nil {
				o = outcome{err: fmt.Errorf("panic: %v", r)}
			}
			done <- o
		}()
		o.slide, o.err = p.Fetch(ctx)
	}()

	// A provider that ignores its context is abandoned at the deadline.
	select {
	case o := <-done:
		res.Slide, res.Err = o.slide, o.err
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	if res.Err == nil && res.Slide == nil {
		res.Err = ErrNoSlide
	}
	if res.Err != nil {
		res.Slide = nil
	} else if res.Slide.ID == "" {
		res.Slide.ID = res.ID
	}
	res.Elapsed = time.Since(start)
	return res
}

// Successes returns the produced slides in provider order and logs every
// failure.
func Successes(results []Result) []model.Slide {
	out := make([]model.Slide, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			log.Printf("provider %s: omitted after %s: %v", r.ID, r.Elapsed.Round(time.Millisecond), r.Err)
			continue
		}
		out = append(out, *r.Slide)
	}
	return out
}

// Slides gathers and filters in one step.
func Slides(ctx context.Context, providers []model.Provider, timeout time.Duration) []model.Slide {
	return Successes(Gather(ctx, providers, timeout))
}
