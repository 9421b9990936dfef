// Package theme resolves the accent and border colour tokens the engine reads
// once per frame.
package theme

import (
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tinytelemetry/nucleus/internal/model"
)

// Token names looked up in every source.
const (
	TokenAccent = "accent"
	TokenBorder = "border"
)

// Source yields raw token values. Sources are consulted in order; a missing
// or unparsable value falls through to the next one.
type Source interface {
	Lookup(token string) (string, bool)
}

// Resolver reads the current theme. It never caches across calls because the
// sources may change underneath it at any time.
type Resolver struct {
	sources  []Source
	fallback model.Theme
}

// NewResolver builds a resolver over sources, ending in the neutral default.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		fallback: model.Theme{
			Accent: mustParse(model.DefaultAccent),
			Border: mustParse(model.DefaultBorder),
		},
	}
}

// Read returns the accent and border colours in effect right now.
func (r *Resolver) Read() model.Theme {
	if r == nil {
		return NewResolver().fallback
	}
	return model.Theme{
		Accent: r.resolve(TokenAccent, r.fallback.Accent),
		Border: r.resolve(TokenBorder, r.fallback.Border),
	}
}

func (r *Resolver) resolve(token string, fallback model.Color) model.Color {
	for _, src := range r.sources {
		if src == nil {
			continue
		}
		raw, ok := src.Lookup(token)
		if !ok {
			continue
		}
		if c, ok := ParseColor(raw); ok {
			return c
		}
	}
	return fallback
}

// ParseColor parses "#rrggbb" or "#rgb" (the leading # is optional).
func ParseColor(raw string) (model.Color, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return model.Color{}, false
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return model.Color{}, false
	}
	return c, true
}

func mustParse(hex string) model.Color {
	c, ok := ParseColor(hex)
	if !ok {
		panic("theme: invalid built-in colour " + hex)
	}
	return c
}

// Static is a fixed token map.
type Static map[string]string

func (s Static) Lookup(token string) (string, bool) {
	v, ok := s[token]
	return v, ok
}

// Env reads tokens from environment variables named PREFIX_TOKEN, for example
// NUCLEUS_ACCENT. The environment is consulted on every lookup.
type Env struct {
	Prefix string
	Getenv func(string) string
}

func (e Env) Lookup(token string) (string, bool) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	name := strings.ToUpper(token)
	if e.Prefix != "" {
		name = strings.ToUpper(e.Prefix) + "_" + name
	}
	v := getenv(name)
	return v, v != ""
}
