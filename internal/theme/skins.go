package theme

import (
	"sync"
)

// Skin is a named pair of colour tokens. It is also the YAML shape of a skin file.
type Skin struct {
	Name   string `yaml:"name"`
	Accent string `yaml:"accent"`
	Border string `yaml:"border"`
}

func (s Skin) lookup(token string) (string, bool) {
	switch token {
	case TokenAccent:
		return s.Accent, s.Accent != ""
	case TokenBorder:
		return s.Border, s.Border != ""
	}
	return "", false
}

// Built-in skins.
var (
	SkinDefault   = Skin{Name: "default", Accent: "#7dd3fc", Border: "#475569"}
	SkinCyberpunk = Skin{Name: "cyberpunk", Accent: "#ff00ff", Border: "#00ffff"}
	SkinRetro     = Skin{Name: "retro", Accent: "#00ff00", Border: "#005500"}
	SkinOcean     = Skin{Name: "ocean", Accent: "#ffd700", Border: "#0077be"}
	SkinSunset    = Skin{Name: "sunset", Accent: "#ff9ff3", Border: "#ff6b6b"}

	BuiltinSkins = []Skin{SkinDefault, SkinCyberpunk, SkinRetro, SkinOcean, SkinSunset}
)

// Cycle is a Source over a list of skins with one selected at a time.
type Cycle struct {
	mu    sync.RWMutex
	skins []Skin
	idx   int
}

// NewCycle selects the skin called name, or the first skin when none matches.
func NewCycle(skins []Skin, name string) *Cycle {
	c := &Cycle{skins: append([]Skin(nil), skins...)}
	for i, s := range c.skins {
		if s.Name == name {
			c.idx = i
			break
		}
	}
	return c
}

// Has reports whether a skin with the given name exists.
func (c *Cycle) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.skins {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Current returns the selected skin.
func (c *Cycle) Current() Skin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.skins) == 0 {
		return Skin{}
	}
	return c.skins[c.idx]
}

// Next selects the following skin, wrapping around, and returns it.
func (c *Cycle) Next() Skin {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.skins) == 0 {
		return Skin{}
	}
	c.idx = (c.idx + 1) % len(c.skins)
	return c.skins[c.idx]
}

func (c *Cycle) Lookup(token string) (string, bool) {
	return c.Current().lookup(token)
}
