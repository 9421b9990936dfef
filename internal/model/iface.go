package model

import "context"

// Provider fetches one domain's slide. A nil slide (with or without an error)
// means the slide is omitted for this session; it is never retried.
type Provider interface {
	ID() SlideID
	Fetch(ctx context.Context) (*Slide, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc struct {
	Slide SlideID
	Fn    func(ctx context.Context) (*Slide, error)
}

func (p ProviderFunc) ID() SlideID { return p.Slide }

func (p ProviderFunc) Fetch(ctx context.Context) (*Slide, error) {
	if p.Fn == nil {
		return nil, nil
	}
	return p.Fn(ctx)
}
