package provider

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/slides"
)

// Source names where slides come from.
const (
	SourceStore = "store"
	SourceFile  = "file"
	SourceNone  = "none"
)

// Config selects a provider per domain. An endpoint configured for a domain
// always wins over the default source.
type Config struct {
	Source      string            `mapstructure:"source"`
	FixturesDir string            `mapstructure:"fixtures-dir"`
	Endpoints   map[string]string `mapstructure:"endpoints"`
	Timeout     time.Duration     `mapstructure:"timeout"`
}

// Build returns one provider per registered module, in registration order.
// Domains without a usable source are skipped. reader may be nil unless the
// store source is selected.
func Build(cfg Config, reader SnapshotReader, client *http.Client) ([]model.Provider, error) {
	switch cfg.Source {
	case "", SourceStore, SourceFile, SourceNone:
	default:
		return nil, fmt.Errorf("unknown provider source %q", cfg.Source)
	}
	if (cfg.Source == "" || cfg.Source == SourceStore) && reader == nil {
		return nil, fmt.Errorf("provider source %q needs a snapshot store", SourceStore)
	}

	var out []model.Provider
	for _, m := range slides.Modules() {
		if url := cfg.Endpoints[string(m.ID)]; url != "" {
			out = append(out, NewHTTP(m.ID, url, client))
			continue
		}
		switch cfg.Source {
		case "", SourceStore:
			out = append(out, NewStore(m.ID, reader))
		case SourceFile:
			out = append(out, NewFile(m.ID, cfg.FixturesDir))
		}
	}
	return out, nil
}
