package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tinytelemetry/nucleus/internal/model"
)

const maxBodyBytes = 1 << 20

// HTTP fetches one domain's record as JSON from a URL.
type HTTP struct {
	id     model.SlideID
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP provider. A nil client uses http.DefaultClient.
func NewHTTP(id model.SlideID, url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{id: id, url: url, client: client}
}

func (p *HTTP) ID() model.SlideID { return p.id }

func (p *HTTP) Fetch(ctx context.Context) (*model.Slide, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", p.id, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %s", p.id, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", p.id, err)
	}
	rec, err := DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	if rec.ID == "" {
		rec.ID = p.id
	}
	return rec.Slide()
}
