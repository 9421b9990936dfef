package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tinytelemetry/nucleus/internal/model"
)

// File reads one domain's record from <dir>/<id>.yml (or .yaml).
type File struct {
	id  model.SlideID
	dir string
}

// NewFile creates a fixture-file provider for id.
func NewFile(id model.SlideID, dir string) *File {
	return &File{id: id, dir: dir}
}

func (p *File) ID() model.SlideID { return p.id }

// Path returns the fixture path that exists, or the .yml path when neither
// does.
func (p *File) Path() string {
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(p.dir, string(p.id)+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(p.dir, string(p.id)+".yml")
}

func (p *File) Fetch(ctx context.Context) (*model.Slide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read fixture: %w", p.id, err)
	}
	rec, err := DecodeYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	if rec.ID == "" {
		rec.ID = p.id
	}
	if rec.ID != p.id {
		return nil, fmt.Errorf("%s: fixture declares id %q", p.id, rec.ID)
	}
	return rec.Slide()
}
