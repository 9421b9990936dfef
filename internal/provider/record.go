package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/slides"
	"github.com/tinytelemetry/nucleus/internal/theme"
	"gopkg.in/yaml.v3"
)

// ErrUnknownSlide is returned for records naming a domain with no module.
var ErrUnknownSlide = errors.New("unknown slide id")

// Record is the wire form of a slide shared by every adapter: JSON over
// HTTP, YAML fixtures and DuckDB snapshot rows.
type Record struct {
	ID        model.SlideID     `json:"id" yaml:"id"`
	Label     string            `json:"label" yaml:"label"`
	Detail    string            `json:"detail" yaml:"detail"`
	Link      string            `json:"link,omitempty" yaml:"link"`
	UpdatedAt string            `json:"updated_at,omitempty" yaml:"updated_at"`
	Accent    string            `json:"accent,omitempty" yaml:"accent"`
	Context   map[string]string `json:"context,omitempty" yaml:"context"`
	Data      json.RawMessage   `json:"data,omitempty" yaml:"-"`
}

// yamlRecord carries free-form data that is re-encoded as JSON.
type yamlRecord struct {
	Record `yaml:",inline"`
	Data   any `yaml:"data"`
}

func (y yamlRecord) record() (Record, error) {
	r := y.Record
	if y.Data != nil {
		raw, err := json.Marshal(y.Data)
		if err != nil {
			return Record{}, fmt.Errorf("%s: re-encode data: %w", r.ID, err)
		}
		r.Data = raw
	}
	return r, nil
}

// DecodeJSON parses one JSON record.
func DecodeJSON(raw []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// DecodeYAML parses one YAML record.
func DecodeYAML(raw []byte) (Record, error) {
	var y yamlRecord
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return y.record()
}

// DecodeYAMLList parses a YAML sequence of records.
func DecodeYAMLList(raw []byte) ([]Record, error) {
	var list []yamlRecord
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	out := make([]Record, 0, len(list))
	for _, y := range list {
		r, err := y.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Slide converts the record into a slide using its domain module. The
// accent field wins over a colour derived from the content.
func (r Record) Slide() (*model.Slide, error) {
	mod, ok := slides.Lookup(r.ID)
	if !ok || r.ID == model.SlidePlaceholder {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlide, r.ID)
	}
	var data any
	if mod.Decode != nil {
		var err error
		if data, err = mod.Decode(r.Data); err != nil {
			return nil, err
		}
	}

	s := &model.Slide{
		ID:         r.ID,
		Label:      strings.TrimSpace(r.Label),
		Detail:     strings.TrimSpace(r.Detail),
		Link:       r.Link,
		UpdatedAt:  r.UpdatedAt,
		RenderData: data,
	}
	if s.Label == "" {
		s.Label = mod.Name
	}
	if len(r.Context) > 0 {
		s.Context = make(model.SlideContext, len(r.Context))
		for k, v := range r.Context {
			s.Context[k] = v
		}
	}
	if c, ok := theme.ParseColor(r.Accent); ok {
		s.AccentOverride = &c
	} else if mod.Accent != nil {
		s.AccentOverride = mod.Accent(data)
	}
	return s, nil
}
