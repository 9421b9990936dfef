package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type stubPage struct {
	id       string
	nav      *PageNav
	inits    int
	received any
	sizes    []tea.WindowSizeMsg
}

func (p *stubPage) ID() string { return p.id }

func (p *stubPage) Init() tea.Cmd {
	p.inits++
	return nil
}

func (p *stubPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.sizes = append(p.sizes, size)
	}
	nav := p.nav
	p.nav = nil
	return nil, nav
}

func (p *stubPage) View(width, height int) string { return p.id }

func (p *stubPage) Receive(params any) { p.received = params }

// runBatch executes cmd and every command it batches, returning the
// messages they produce.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runBatch(c)...)
	}
	return out
}

func TestApp_SwitchesPagesWithParams(t *testing.T) {
	t.Parallel()

	first := &stubPage{id: "first"}
	second := &stubPage{id: "second"}
	app := NewApp(first, second)

	if app.ActivePage() != "first" || app.View() != "first" {
		t.Fatalf("initial page = %q", app.ActivePage())
	}

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	first.nav = &PageNav{PageID: "second", Params: 42}
	_, cmd := app.Update(tea.KeyMsg{})

	if app.ActivePage() != "second" {
		t.Fatalf("active page = %q, want second", app.ActivePage())
	}
	if second.received != 42 || second.inits != 1 {
		t.Fatalf("second page received %v with %d inits", second.received, second.inits)
	}

	var replayed bool
	for _, msg := range runBatch(cmd) {
		if size, ok := msg.(tea.WindowSizeMsg); ok && size.Width == 80 && size.Height == 24 {
			replayed = true
		}
	}
	if !replayed {
		t.Fatal("window size not replayed to the new page")
	}
}

func TestApp_UnknownPageIgnored(t *testing.T) {
	t.Parallel()

	first := &stubPage{id: "first", nav: &PageNav{PageID: "missing"}}
	app := NewApp(first)

	app.Update(tea.KeyMsg{})
	if app.ActivePage() != "first" {
		t.Fatalf("active page = %q, want first", app.ActivePage())
	}
}

func TestApp_NoSizeReplayBeforeFirstResize(t *testing.T) {
	t.Parallel()

	first := &stubPage{id: "first", nav: &PageNav{PageID: "second"}}
	second := &stubPage{id: "second"}
	app := NewApp(first, second)

	_, cmd := app.Update(tea.KeyMsg{})
	for _, msg := range runBatch(cmd) {
		if _, ok := msg.(tea.WindowSizeMsg); ok {
			t.Fatal("zero window size replayed")
		}
	}
}
