package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/nucleus/internal/model"
)

// GatherFunc resolves the session's slides. It must settle even when every
// provider fails.
type GatherFunc func(ctx context.Context) []model.Slide

// slidesLoadedMsg carries the gathered slides back into the program.
type slidesLoadedMsg struct {
	slides []model.Slide
}

// LoadingPage shows a spinner while providers resolve, then hands the
// slides to the dashboard page.
type LoadingPage struct {
	ctx     context.Context
	gather  GatherFunc
	next    string
	keys    KeyMap
	spinner spinner.Model
}

// NewLoadingPage creates the first page. next is the page that receives the
// slides.
func NewLoadingPage(ctx context.Context, gather GatherFunc, next string, keys KeyMap) *LoadingPage {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)
	return &LoadingPage{
		ctx:     ctx,
		gather:  gather,
		next:    next,
		keys:    keys,
		spinner: s,
	}
}

func (p *LoadingPage) ID() string { return "loading" }

func (p *LoadingPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.gatherCmd())
}

func (p *LoadingPage) gatherCmd() tea.Cmd {
	return func() tea.Msg {
		if p.gather == nil {
			return slidesLoadedMsg{}
		}
		return slidesLoadedMsg{slides: p.gather(p.ctx)}
	}
}

func (p *LoadingPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case slidesLoadedMsg:
		return nil, &PageNav{PageID: p.next, Params: msg.slides}
	case tea.KeyMsg:
		if key.Matches(msg, p.keys.Quit, p.keys.ForceQuit) {
			return tea.Quit, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd, nil
	}
	return nil, nil
}

func (p *LoadingPage) View(width, height int) string {
	return renderLoadingPlaceholder(p.spinner.View(), width, height)
}

// renderLoadingPlaceholder renders the centered loading indicator.
func renderLoadingPlaceholder(frame string, width, height int) string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	text := renderBranding() + "\n\n" + frame + loadingStyle.Render(" syncing slides...")
	if width <= 0 || height <= 0 {
		return text
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
